package gateway

import (
	"encoding/json"
	"testing"

	"github.com/hendrywilliam/discord-feed/src/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeToleratesUnknownFields(t *testing.T) {
	e, err := Decode([]byte(`{"op":0,"t":"MESSAGE_CREATE","s":42,"d":{"id":"1"},"shiny_new_field":true}`))
	require.NoError(t, err)

	assert.Equal(t, OpcodeDispatch, e.Op)
	assert.Equal(t, structs.EventNameMessageCreate, e.T)
	require.NotNil(t, e.S)
	assert.Equal(t, uint64(42), *e.S)
	assert.JSONEq(t, `{"id":"1"}`, string(e.D))
}

func TestDecodeWithoutSequence(t *testing.T) {
	e, err := Decode([]byte(`{"op":11,"d":null,"s":null,"t":null}`))
	require.NoError(t, err)
	assert.Equal(t, OpcodeHeartbeatAck, e.Op)
	assert.Nil(t, e.S)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte(`{"op":`))
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeUnnamedDispatchKeepsSequence(t *testing.T) {
	e, err := Decode([]byte(`{"op":0,"s":8,"d":{}}`))
	require.NoError(t, err)
	assert.Empty(t, e.T)
	require.NotNil(t, e.S)
	assert.Equal(t, uint64(8), *e.S)
}

func TestEncodeHeartbeat(t *testing.T) {
	data, err := Encode(OpcodeHeartbeat, (*uint64)(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":1,"d":null}`, string(data))

	seq := uint64(251)
	data, err = Encode(OpcodeHeartbeat, &seq)
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":1,"d":251}`, string(data))
}

func TestEncodeIdentify(t *testing.T) {
	data, err := Encode(OpcodeIdentify, structs.IdentifyEvent{
		Token:      "token",
		Intents:    GuildsIntent | GuildMessagesIntent | MessageContentIntent,
		Properties: structs.IdentifyEventProperties{Os: "linux", Browser: "b", Device: "d"},
		Presence:   &structs.PresenceUpdate{Since: 10, Activities: []interface{}{}, Status: "dnd"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"op": 2,
		"d": {
			"token": "token",
			"intents": 33281,
			"properties": {"os": "linux", "browser": "b", "device": "d"},
			"compress": false,
			"presence": {"since": 10, "activities": [], "status": "dnd", "afk": false}
		}
	}`, string(data))
}

func TestDecodeMessage(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "100",
		"channel_id": "200",
		"guild_id": "300",
		"content": "hello",
		"timestamp": "2025-04-24T10:11:12.123000+00:00",
		"type": 0,
		"author": {"id": "1", "username": "ben", "avatar": "abc", "bot": true},
		"embeds": [{"title": "t", "color": 16711680, "fields": [{"name": "n", "value": "v"}]}],
		"attachments": [{"id": "a", "filename": "cat.png", "size": 3, "url": "u", "proxy_url": "p", "content_type": "image/png"}],
		"mention_roles": ["9"],
		"nonce": "whatever"
	}`)
	m, err := DecodeMessage(raw)
	require.NoError(t, err)

	assert.Equal(t, "100", m.ID)
	assert.Equal(t, "200", m.ChannelID)
	assert.Equal(t, "ben", m.Author.Username)
	assert.True(t, m.Author.Bot)
	assert.Equal(t, "https://cdn.discordapp.com/avatars/1/abc.png", m.Author.AvatarURL())
	require.Len(t, m.Embeds, 1)
	r, gr, b, ok := m.Embeds[0].RGB()
	assert.True(t, ok)
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, gr, b})
	require.Len(t, m.Attachments, 1)
	assert.True(t, m.Attachments[0].IsImage())
	assert.False(t, m.Attachments[0].IsVideo())
	assert.True(t, m.HasContent())

	ts, err := m.Time()
	require.NoError(t, err)
	assert.Equal(t, 2025, ts.Year())
}

func TestDecodeMessageErrors(t *testing.T) {
	_, err := DecodeMessage(json.RawMessage(`{"id":"1","channel_id":"2","author":"nope"}`))
	assert.ErrorIs(t, err, ErrDecode)

	_, err = DecodeMessage(json.RawMessage(`{"id":"1","channel_id":"2"}`))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = DecodeMessage(json.RawMessage(`null`))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDecodeGuild(t *testing.T) {
	g, err := DecodeGuild(json.RawMessage(`{
		"id": "1",
		"name": "guild",
		"channels": [
			{"id": "10", "name": "general", "type": 0},
			{"id": "11", "name": "voice", "type": 2},
			{"id": "12", "name": "news", "type": 5}
		],
		"members": []
	}`))
	require.NoError(t, err)
	assert.Equal(t, "guild", g.Name)
	require.Len(t, g.Channels, 3)
	assert.Equal(t, "general", g.Channels[0].Name)
	assert.Len(t, g.TextChannels(), 2)

	_, err = DecodeGuild(json.RawMessage(`{"name":"no id"}`))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDecodeHelloAndReady(t *testing.T) {
	h, err := DecodeHello(json.RawMessage(`{"heartbeat_interval":41250}`))
	require.NoError(t, err)
	assert.Equal(t, uint(41250), h.HeartbeatInterval)

	_, err = DecodeHello(json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = DecodeHello(json.RawMessage(`{"heartbeat_interval":18446744073709551615}`))
	assert.ErrorIs(t, err, ErrDecode)

	_, err = DecodeHello(json.RawMessage(`{"heartbeat_interval":600001}`))
	assert.ErrorIs(t, err, ErrDecode)

	h, err = DecodeHello(json.RawMessage(`{"heartbeat_interval":600000}`))
	require.NoError(t, err)
	assert.Equal(t, uint(600000), h.HeartbeatInterval)

	r, err := DecodeReady(json.RawMessage(`{"v":10,"session_id":"abc","resume_gateway_url":"wss://resume.discord.gg"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", r.SessionID)
	assert.Equal(t, "wss://resume.discord.gg", r.ResumeGatewayURL)
}

func TestDecodeInvalidSession(t *testing.T) {
	assert.True(t, DecodeInvalidSession(json.RawMessage(`true`)))
	assert.False(t, DecodeInvalidSession(json.RawMessage(`false`)))
	assert.False(t, DecodeInvalidSession(nil))
}
