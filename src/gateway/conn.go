package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeTimeout = 10 * time.Second
	closeTimeout = time.Second
	outboxSize   = 32

	// Discord allows 120 gateway sends per 60 seconds per connection.
	sendLimit = 120
	sendEvery = time.Minute / sendLimit

	// Any non 1000/1001 code keeps the session resumable.
	closeCodeResume = 4000
)

// wsConn is the part of *websocket.Conn the gateway uses.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// connection is one dialed socket with its outbound queue. Reads and
// writes run on their own goroutines; everything they learn is handed
// back to the event loop.
type connection struct {
	id        string
	ws        wsConn
	out       chan []byte
	limiter   *rate.Limiter
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newConnection(ws wsConn) *connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &connection{
		id:      uuid.NewString(),
		ws:      ws,
		out:     make(chan []byte, outboxSize),
		limiter: rate.NewLimiter(rate.Every(sendEvery), sendLimit),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// close sends a close frame with code and drops the socket. Safe to call
// more than once and concurrently with reads and writes.
func (c *connection) close(code int) {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.ws == nil {
			return
		}
		msg := websocket.FormatCloseMessage(code, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout))
		_ = c.ws.Close()
	})
}

func (c *connection) write(data []byte) error {
	if err := c.limiter.Wait(c.ctx); err != nil {
		return err
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// readLoop hands every frame to the event loop and waits for it to be
// processed before reading the next one.
func (g *Gateway) readLoop(c *connection) {
	for {
		messageType, message, err := c.ws.ReadMessage()
		if err != nil {
			_ = g.exec(func() { g.onReadError(c, err) })
			return
		}
		if messageType != websocket.TextMessage {
			g.log.Debug("received binary data", "bytes", len(message), "conn_id", c.id)
			continue
		}
		if err := g.exec(func() { g.onMessage(c, message) }); err != nil {
			return
		}
	}
}

func (g *Gateway) writeLoop(c *connection) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			if err := c.write(data); err != nil {
				if c.ctx.Err() != nil {
					return
				}
				_ = g.exec(func() { g.onWriteError(c, err) })
				return
			}
		}
	}
}
