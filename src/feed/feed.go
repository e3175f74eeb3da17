package feed

import (
	"sync"

	"github.com/hendrywilliam/discord-feed/src/structs"
)

// DebugLogCapacity is the number of debug log lines kept in memory.
const DebugLogCapacity = 100

const subscriberBuffer = 64

type EventType = string

const (
	EventStatus  EventType = "status"
	EventGuild   EventType = "guild"
	EventMessage EventType = "message"
	EventLog     EventType = "log"
)

// Event is pushed to subscribers for every change of the feed. Exactly
// one of the payload fields is set, according to Type.
type Event struct {
	Type    EventType        `json:"type"`
	Status  *Status          `json:"status,omitempty"`
	Guild   *structs.Guild   `json:"guild,omitempty"`
	Message *structs.Message `json:"message,omitempty"`
	Log     string           `json:"log,omitempty"`
}

// Feed holds everything the gateway produced during the session:
// connection status, guilds, messages and a bounded debug log.
// Rendering layers read snapshots or subscribe; only the gateway writes.
type Feed struct {
	mu       sync.RWMutex
	status   Status
	guilds   []structs.Guild
	guildIDs map[string]struct{}
	messages []structs.Message
	debugLog *ring

	subMu       sync.RWMutex
	subscribers map[int]chan Event
	nextSubID   int

	colMu   sync.RWMutex
	columns []Column
}

func New() *Feed {
	return &Feed{
		status:      StatusDisconnected,
		guildIDs:    make(map[string]struct{}),
		debugLog:    newRing(DebugLogCapacity),
		subscribers: make(map[int]chan Event),
	}
}

func (f *Feed) SetStatus(s Status) {
	f.mu.Lock()
	f.status = s
	f.mu.Unlock()
	f.publish(Event{Type: EventStatus, Status: &s})
}

// AddGuild appends g unless a guild with the same id is already known.
// It reports whether the guild was added.
func (f *Feed) AddGuild(g structs.Guild) bool {
	f.mu.Lock()
	if _, ok := f.guildIDs[g.ID]; ok {
		f.mu.Unlock()
		return false
	}
	f.guildIDs[g.ID] = struct{}{}
	f.guilds = append(f.guilds, g)
	f.mu.Unlock()
	f.publish(Event{Type: EventGuild, Guild: &g})
	return true
}

func (f *Feed) AddMessage(m structs.Message) {
	f.mu.Lock()
	f.messages = append(f.messages, m)
	f.mu.Unlock()
	f.publish(Event{Type: EventMessage, Message: &m})
}

func (f *Feed) Log(line string) {
	f.mu.Lock()
	f.debugLog.push(line)
	f.mu.Unlock()
	f.publish(Event{Type: EventLog, Log: line})
}

func (f *Feed) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

func (f *Feed) Guilds() []structs.Guild {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]structs.Guild, len(f.guilds))
	copy(out, f.guilds)
	return out
}

func (f *Feed) Guild(id string) (structs.Guild, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, g := range f.guilds {
		if g.ID == id {
			return g, true
		}
	}
	return structs.Guild{}, false
}

func (f *Feed) Messages() []structs.Message {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]structs.Message, len(f.messages))
	copy(out, f.messages)
	return out
}

// FilterMessages returns the messages posted in one of channelIDs, in
// arrival order. An empty channelIDs selects every message.
func (f *Feed) FilterMessages(channelIDs []string) []structs.Message {
	if len(channelIDs) == 0 {
		return f.Messages()
	}
	set := make(map[string]struct{}, len(channelIDs))
	for _, id := range channelIDs {
		set[id] = struct{}{}
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]structs.Message, 0)
	for _, m := range f.messages {
		if _, ok := set[m.ChannelID]; ok {
			out = append(out, m)
		}
	}
	return out
}

// DebugLog returns the retained log lines, oldest first.
func (f *Feed) DebugLog() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.debugLog.items()
}

// Subscribe registers a listener for feed events. Slow listeners miss
// events rather than block the gateway. The returned func unsubscribes
// and closes the channel.
func (f *Feed) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	f.subMu.Lock()
	id := f.nextSubID
	f.nextSubID++
	f.subscribers[id] = ch
	f.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.subMu.Lock()
			delete(f.subscribers, id)
			f.subMu.Unlock()
			close(ch)
		})
	}
}

func (f *Feed) publish(e Event) {
	f.subMu.RLock()
	defer f.subMu.RUnlock()
	for _, ch := range f.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}
