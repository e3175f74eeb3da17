package feed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/hendrywilliam/discord-feed/src/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGuildDeduplicatesOnID(t *testing.T) {
	f := New()

	assert.True(t, f.AddGuild(structs.Guild{ID: "1", Name: "first"}))
	assert.True(t, f.AddGuild(structs.Guild{ID: "2", Name: "second"}))
	assert.False(t, f.AddGuild(structs.Guild{ID: "1", Name: "renamed"}))

	guilds := f.Guilds()
	require.Len(t, guilds, 2)
	assert.Equal(t, "first", guilds[0].Name)
	assert.Equal(t, "second", guilds[1].Name)
}

func TestAddMessageKeepsArrivalOrder(t *testing.T) {
	f := New()
	f.AddMessage(structs.Message{ID: "a", ChannelID: "c1"})
	f.AddMessage(structs.Message{ID: "b", ChannelID: "c2"})
	f.AddMessage(structs.Message{ID: "a", ChannelID: "c1"})

	msgs := f.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"a", "b", "a"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
}

func TestDebugLogEvictsOldestFirst(t *testing.T) {
	f := New()
	for i := 0; i < DebugLogCapacity+25; i++ {
		f.Log(fmt.Sprintf("line %d", i))
	}

	lines := f.DebugLog()
	require.Len(t, lines, DebugLogCapacity)
	assert.Equal(t, "line 25", lines[0])
	assert.Equal(t, fmt.Sprintf("line %d", DebugLogCapacity+24), lines[len(lines)-1])
}

func TestDebugLogBelowCapacity(t *testing.T) {
	f := New()
	f.Log("one")
	f.Log("two")
	assert.Equal(t, []string{"one", "two"}, f.DebugLog())
}

func TestStatus(t *testing.T) {
	f := New()
	assert.Equal(t, StatusDisconnected, f.Status())

	f.SetStatus(ErrorStatus("boom"))
	assert.Equal(t, StateError, f.Status().State)
	assert.Equal(t, "ERROR: boom", f.Status().String())
	assert.Equal(t, "READY", StatusReady.String())
}

func TestFilterMessages(t *testing.T) {
	f := New()
	f.AddMessage(structs.Message{ID: "1", ChannelID: "a"})
	f.AddMessage(structs.Message{ID: "2", ChannelID: "b"})
	f.AddMessage(structs.Message{ID: "3", ChannelID: "c"})

	assert.Len(t, f.FilterMessages(nil), 3)

	got := f.FilterMessages([]string{"c", "a"})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	assert.Empty(t, f.FilterMessages([]string{"zzz"}))
}

func TestSubscribeReceivesEvents(t *testing.T) {
	f := New()
	events, unsubscribe := f.Subscribe()
	defer unsubscribe()

	f.SetStatus(StatusConnecting)
	f.AddGuild(structs.Guild{ID: "g"})
	f.AddGuild(structs.Guild{ID: "g"})
	f.AddMessage(structs.Message{ID: "m"})

	want := []EventType{EventStatus, EventGuild, EventMessage}
	for _, typ := range want {
		select {
		case e := <-events:
			assert.Equal(t, typ, e.Type)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s event", typ)
		}
	}
	select {
	case e := <-events:
		t.Fatalf("unexpected event %+v", e)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	f := New()
	events, unsubscribe := f.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-events
	assert.False(t, ok)
	f.Log("after unsubscribe")
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	f := New()
	_, unsubscribe := f.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			f.Log("x")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked on a full subscriber")
	}
}

func TestLogHandlerCopiesRecordsAtLevel(t *testing.T) {
	f := New()
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	log := slog.New(NewLogHandler(base, f, slog.LevelInfo)).With("component", "gateway")

	log.Debug("frame received")
	log.Info("guild added", "guild_id", "42")
	log.WithGroup("conn").Warn("dropped", "id", 7)

	lines := f.DebugLog()
	require.Len(t, lines, 2)
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] guild added component=gateway guild_id=42$`, lines[0])
	assert.Contains(t, lines[1], "dropped component=gateway conn.id=7")

	assert.Contains(t, buf.String(), "frame received")
	assert.Contains(t, buf.String(), "guild added")
}

func TestLogHandlerEnabledFollowsBothLevels(t *testing.T) {
	f := New()
	base := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})
	h := NewLogHandler(base, f, slog.LevelInfo)

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	slog.New(h).Info("kept in debug log only")
	assert.Len(t, f.DebugLog(), 1)
}
