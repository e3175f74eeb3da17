package structs

import (
	"encoding/json"
	"log/slog"
)

type EventName = string
type EventOpcode = int

const (
	EventNameReady         EventName = "READY"
	EventNameResumed       EventName = "RESUMED"
	EventNameGuildCreate   EventName = "GUILD_CREATE"
	EventNameMessageCreate EventName = "MESSAGE_CREATE"
)

// RawEvent is an inbound gateway payload. D is kept raw so the
// shape can be picked after looking at Op and T.
type RawEvent struct {
	Op EventOpcode     `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *uint64         `json:"s,omitempty"`
	T  EventName       `json:"t,omitempty"`
}

func (re *RawEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("op_code", re.Op),
		slog.String("event_name", re.T),
	}
	if re.S != nil {
		attrs = append(attrs, slog.Uint64("sequence", *re.S))
	}
	return slog.GroupValue(attrs...)
}

// Event is an outbound gateway payload. D is always serialized, a nil
// D becomes "d": null which is what a first heartbeat must carry.
type Event struct {
	Op EventOpcode `json:"op"`
	D  interface{} `json:"d"`
}

func (e *Event) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("op_code", e.Op))
}

type HelloEvent struct {
	HeartbeatInterval uint `json:"heartbeat_interval"`
}

type ReadyEvent struct {
	V                int             `json:"v"`
	User             User            `json:"user"`
	Guilds           json.RawMessage `json:"guilds,omitempty"`
	SessionID        string          `json:"session_id"`
	ResumeGatewayURL string          `json:"resume_gateway_url"`
	Shard            []uint          `json:"shard,omitempty"`
}

type IdentifyEvent struct {
	Token      string                  `json:"token"`
	Properties IdentifyEventProperties `json:"properties"`
	Intents    int                     `json:"intents"`
	Compress   bool                    `json:"compress"`
	Presence   *PresenceUpdate         `json:"presence,omitempty"`
}

type IdentifyEventProperties struct {
	Os      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// https://discord.com/developers/docs/events/gateway-events#update-presence
type PresenceUpdate struct {
	Since      int64         `json:"since"` // unix ms
	Activities []interface{} `json:"activities"`
	Status     string        `json:"status"`
	AFK        bool          `json:"afk"`
}

type ResumeEvent struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       uint64 `json:"seq"`
}
