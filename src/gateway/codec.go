package gateway

import (
	"encoding/json"
	"time"

	"github.com/hendrywilliam/discord-feed/src/structs"
	"github.com/pkg/errors"
)

// MaxHeartbeatInterval bounds the interval accepted from Hello. Discord
// sends about 41 seconds.
const MaxHeartbeatInterval = 10 * time.Minute

// Decode parses one gateway frame. Unknown fields are ignored; d is
// left raw for the state machine. A dispatch without an event name is
// still returned so its sequence number can be recorded.
func Decode(data []byte) (structs.RawEvent, error) {
	var e structs.RawEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return e, errors.Wrapf(ErrDecode, "envelope: %s", err)
	}
	return e, nil
}

func Encode(op GatewayOpcode, d interface{}) ([]byte, error) {
	data, err := json.Marshal(structs.Event{Op: op, D: d})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal op %d", op)
	}
	return data, nil
}

func DecodeHello(raw json.RawMessage) (structs.HelloEvent, error) {
	var h structs.HelloEvent
	if err := json.Unmarshal(raw, &h); err != nil {
		return h, errors.Wrapf(ErrDecode, "hello: %s", err)
	}
	if h.HeartbeatInterval == 0 {
		return h, errors.Wrap(ErrMissingField, "hello: heartbeat_interval")
	}
	if h.HeartbeatInterval > uint(MaxHeartbeatInterval/time.Millisecond) {
		return h, errors.Wrapf(ErrDecode, "hello: heartbeat_interval %d ms exceeds %s", h.HeartbeatInterval, MaxHeartbeatInterval)
	}
	return h, nil
}

func DecodeReady(raw json.RawMessage) (structs.ReadyEvent, error) {
	var r structs.ReadyEvent
	if err := json.Unmarshal(raw, &r); err != nil {
		return r, errors.Wrapf(ErrDecode, "ready: %s", err)
	}
	if r.SessionID == "" {
		return r, errors.Wrap(ErrMissingField, "ready: session_id")
	}
	return r, nil
}

func DecodeGuild(raw json.RawMessage) (structs.Guild, error) {
	var g structs.Guild
	if err := json.Unmarshal(raw, &g); err != nil {
		return g, errors.Wrapf(ErrDecode, "guild: %s", err)
	}
	if g.ID == "" {
		return g, errors.Wrap(ErrMissingField, "guild: id")
	}
	return g, nil
}

func DecodeMessage(raw json.RawMessage) (structs.Message, error) {
	var m structs.Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, errors.Wrapf(ErrDecode, "message: %s", err)
	}
	switch {
	case m.ID == "":
		return m, errors.Wrap(ErrMissingField, "message: id")
	case m.ChannelID == "":
		return m, errors.Wrap(ErrMissingField, "message: channel_id")
	case m.Author.ID == "":
		return m, errors.Wrap(ErrMissingField, "message: author.id")
	}
	return m, nil
}

// DecodeInvalidSession returns whether the invalidated session may be
// resumed. Anything but a JSON true counts as not resumable.
func DecodeInvalidSession(raw json.RawMessage) bool {
	var resumable bool
	if err := json.Unmarshal(raw, &resumable); err != nil {
		return false
	}
	return resumable
}
