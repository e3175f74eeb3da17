package gateway

import "time"

// heartbeater is the heartbeat schedule of the current connection. The
// event loop selects on C and owns every field.
type heartbeater struct {
	ticker      *time.Ticker
	interval    time.Duration
	lastSent    time.Time
	lastAck     time.Time
	awaitingAck bool
}

// arm replaces any running schedule with a fresh one.
func (h *heartbeater) arm(interval time.Duration) {
	h.disarm()
	h.interval = interval
	h.ticker = time.NewTicker(interval)
}

// disarm stops the schedule. A tick already buffered in the old ticker
// is never read because C no longer returns its channel.
func (h *heartbeater) disarm() {
	if h.ticker != nil {
		h.ticker.Stop()
		h.ticker = nil
	}
	h.awaitingAck = false
}

func (h *heartbeater) armed() bool {
	return h.ticker != nil
}

// C is nil while disarmed, which blocks forever in a select.
func (h *heartbeater) C() <-chan time.Time {
	if h.ticker == nil {
		return nil
	}
	return h.ticker.C
}

func (h *heartbeater) sent(t time.Time) {
	h.lastSent = t
	h.awaitingAck = true
}

// acked returns the round trip of the last heartbeat, zero when none
// was outstanding.
func (h *heartbeater) acked(t time.Time) time.Duration {
	h.lastAck = t
	if !h.awaitingAck {
		return 0
	}
	h.awaitingAck = false
	return t.Sub(h.lastSent)
}
