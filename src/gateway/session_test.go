package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTracksHighestSequence(t *testing.T) {
	s := NewSession()
	assert.Nil(t, s.CurrentSequence())

	for _, n := range []uint64{1, 2, 3, 7, 9, 12} {
		s.RecordSequence(n)
	}
	require.NotNil(t, s.CurrentSequence())
	assert.Equal(t, uint64(12), *s.CurrentSequence())

	s.RecordSequence(4)
	assert.Equal(t, uint64(12), *s.CurrentSequence())
}

func TestSessionCurrentSequenceIsACopy(t *testing.T) {
	s := NewSession()
	s.RecordSequence(5)
	seq := s.CurrentSequence()
	*seq = 100
	assert.Equal(t, uint64(5), *s.CurrentSequence())
}

func TestSessionClear(t *testing.T) {
	s := NewSession()
	s.RecordSequence(3)
	s.SetSession("abc", "wss://resume")
	s.MarkIdentified()
	assert.True(t, s.CanResume())

	s.ClearSession()
	assert.Nil(t, s.CurrentSequence())
	assert.Empty(t, s.SessionID())
	assert.Empty(t, s.ResumeGatewayURL())
	assert.False(t, s.IsIdentified())
	assert.False(t, s.CanResume())
}

func TestSessionCanResumeNeedsSequence(t *testing.T) {
	s := NewSession()
	s.SetSession("abc", "")
	assert.False(t, s.CanResume())
	s.RecordSequence(1)
	assert.True(t, s.CanResume())
}

func TestHeartbeaterArmDisarm(t *testing.T) {
	var h heartbeater
	assert.Nil(t, h.C())
	assert.False(t, h.armed())

	h.arm(10 * time.Millisecond)
	assert.True(t, h.armed())
	select {
	case <-h.C():
	case <-time.After(time.Second):
		t.Fatal("heartbeat ticker never fired")
	}

	h.sent(time.Now())
	assert.True(t, h.awaitingAck)
	h.disarm()
	assert.Nil(t, h.C())
	assert.False(t, h.awaitingAck)
}

func TestHeartbeaterAck(t *testing.T) {
	var h heartbeater
	now := time.Now()
	assert.Zero(t, h.acked(now))

	h.sent(now)
	assert.Equal(t, 40*time.Millisecond, h.acked(now.Add(40*time.Millisecond)))
	assert.False(t, h.awaitingAck)
}

func TestGatewayURL(t *testing.T) {
	u, err := gatewayURL("wss://gateway.discord.gg", 10)
	require.NoError(t, err)
	assert.Equal(t, "wss://gateway.discord.gg/?v=10&encoding=json", u)

	u, err = gatewayURL("wss://gateway-us-east1-b.discord.gg/?v=9", 10)
	require.NoError(t, err)
	assert.Equal(t, "wss://gateway-us-east1-b.discord.gg/?v=10&encoding=json", u)

	_, err = gatewayURL("not a url", 10)
	assert.Error(t, err)
}

func TestCloseCodes(t *testing.T) {
	assert.ErrorIs(t, closeCodeError(CloseAuthenticationFailed), ErrAuthenticationFailed)
	assert.ErrorIs(t, closeCodeError(CloseDisallowedIntents), ErrDisallowedIntents)
	assert.ErrorIs(t, closeCodeError(4999), ErrUnknown)
	assert.NoError(t, closeCodeError(1006))

	assert.False(t, reconnectable(CloseAuthenticationFailed))
	assert.True(t, reconnectable(CloseSessionTimedOut))
	assert.False(t, resumable(CloseSessionTimedOut))
	assert.True(t, resumable(CloseUnknownError))
}
