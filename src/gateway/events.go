package gateway

import (
	"github.com/pkg/errors"
)

// https://discord.com/developers/docs/events/gateway#gateway-intents
type GatewayIntent = int

const (
	GuildsIntent                      GatewayIntent = 1 << 0
	GuildMembersIntent                GatewayIntent = 1 << 1
	GuildModerationIntent             GatewayIntent = 1 << 2
	GuildExpressionIntent             GatewayIntent = 1 << 3
	GuildIntegrationsIntent           GatewayIntent = 1 << 4
	GuildWebhooksIntent               GatewayIntent = 1 << 5
	GuildInvitesIntent                GatewayIntent = 1 << 6
	GuildVoiceStatesIntent            GatewayIntent = 1 << 7
	GuildPresencesIntent              GatewayIntent = 1 << 8
	GuildMessagesIntent               GatewayIntent = 1 << 9
	GuildMessageReactionIntent        GatewayIntent = 1 << 10
	GuildMessageTypingIntent          GatewayIntent = 1 << 11
	DirectMessageIntent               GatewayIntent = 1 << 12
	DirectMessageReactionIntent       GatewayIntent = 1 << 13
	DirectMessageTypingIntent         GatewayIntent = 1 << 14
	MessageContentIntent              GatewayIntent = 1 << 15
	GuildScheduledEventsIntent        GatewayIntent = 1 << 16
	AutoModerationConfigurationIntent GatewayIntent = 1 << 20
	AutoModerationExecutionIntent     GatewayIntent = 1 << 21
	GuildMessagePollsIntent           GatewayIntent = 1 << 24
	DirectMessagePollsIntent          GatewayIntent = 1 << 25
)

// DefaultIntents is what a message feed needs: guild list, guild
// messages and their content.
var DefaultIntents = []GatewayIntent{GuildsIntent, GuildMessagesIntent, MessageContentIntent}

type GatewayOpcode = int

const (
	OpcodeDispatch                GatewayOpcode = 0
	OpcodeHeartbeat               GatewayOpcode = 1
	OpcodeIdentify                GatewayOpcode = 2
	OpcodePresenceUpdate          GatewayOpcode = 3
	OpcodeVoiceStateUpdate        GatewayOpcode = 4
	OpcodeResume                  GatewayOpcode = 6
	OpcodeReconnect               GatewayOpcode = 7
	OpcodeRequestGuildMember      GatewayOpcode = 8
	OpcodeInvalidSession          GatewayOpcode = 9
	OpcodeHello                   GatewayOpcode = 10
	OpcodeHeartbeatAck            GatewayOpcode = 11
	OpcodeRequestSoundboardSounds GatewayOpcode = 31
)

// https://discord.com/developers/docs/topics/opcodes-and-status-codes#gateway-gateway-close-event-codes
type GatewayCloseEventCode = int

const (
	CloseUnknownError         GatewayCloseEventCode = 4000
	CloseUnknownOpcode        GatewayCloseEventCode = 4001
	CloseDecodeError          GatewayCloseEventCode = 4002
	CloseNotAuthenticated     GatewayCloseEventCode = 4003
	CloseAuthenticationFailed GatewayCloseEventCode = 4004
	CloseAlreadyAuthenticated GatewayCloseEventCode = 4005
	CloseInvalidSeq           GatewayCloseEventCode = 4007
	CloseRateLimited          GatewayCloseEventCode = 4008
	CloseSessionTimedOut      GatewayCloseEventCode = 4009
	CloseInvalidShard         GatewayCloseEventCode = 4010
	CloseShardingRequired     GatewayCloseEventCode = 4011
	CloseInvalidAPIVersion    GatewayCloseEventCode = 4012
	CloseInvalidIntents       GatewayCloseEventCode = 4013
	CloseDisallowedIntents    GatewayCloseEventCode = 4014
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrDecode               = errors.New("invalid payload")
	ErrMissingField         = errors.New("missing required field")
	ErrGatewayIsAlreadyOpen = errors.New("gateway is already open")
	ErrGatewayNotOpen       = errors.New("gateway is not open")
	ErrGatewayClosed        = errors.New("gateway is closed")
	ErrNotConnected         = errors.New("gateway is not connected")
	ErrSendQueueFull        = errors.New("send queue is full")
	ErrInvalidSequence      = errors.New("invalid sequence sent when resuming")
	ErrSessionTimedOut      = errors.New("session timed out")
	ErrInvalidShard         = errors.New("invalid shard")
	ErrShardingRequired     = errors.New("sharding required")
	ErrInvalidAPIVersion    = errors.New("invalid api version")
	ErrInvalidIntents       = errors.New("invalid intents")
	ErrDisallowedIntents    = errors.New("disallowed intent. you may have tried to specify an intent that you have not enabled")
	ErrUnknown              = errors.New("unknown error")
)

// closeCodeError maps a gateway close code to an error. Codes outside
// the 4000 range yield nil.
func closeCodeError(code GatewayCloseEventCode) error {
	switch code {
	case CloseAuthenticationFailed:
		return ErrAuthenticationFailed
	case CloseNotAuthenticated:
		return ErrNotAuthenticated
	case CloseDecodeError:
		return ErrDecode
	case CloseInvalidSeq:
		return ErrInvalidSequence
	case CloseSessionTimedOut:
		return ErrSessionTimedOut
	case CloseInvalidShard:
		return ErrInvalidShard
	case CloseShardingRequired:
		return ErrShardingRequired
	case CloseInvalidAPIVersion:
		return ErrInvalidAPIVersion
	case CloseInvalidIntents:
		return ErrInvalidIntents
	case CloseDisallowedIntents:
		return ErrDisallowedIntents
	}
	if code >= 4000 && code < 5000 {
		return ErrUnknown
	}
	return nil
}

// reconnectable reports whether reconnecting after code can succeed
// without the caller changing token, intents or version first.
func reconnectable(code GatewayCloseEventCode) bool {
	switch code {
	case CloseAuthenticationFailed,
		CloseInvalidShard,
		CloseShardingRequired,
		CloseInvalidAPIVersion,
		CloseInvalidIntents,
		CloseDisallowedIntents:
		return false
	}
	return true
}

// resumable reports whether the session survives a close with code.
func resumable(code GatewayCloseEventCode) bool {
	return code != CloseInvalidSeq && code != CloseSessionTimedOut
}
