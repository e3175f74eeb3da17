package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hendrywilliam/discord-feed/src/feed"
	"github.com/hendrywilliam/discord-feed/src/structs"
	"github.com/pkg/errors"
)

const (
	DefaultGatewayURL     = "wss://gateway.discord.gg"
	DefaultVersion        = 10
	DefaultReconnectDelay = 5 * time.Second
	DefaultPresenceStatus = "online"
)

// Sink receives what the gateway produces. *feed.Feed implements it.
type Sink interface {
	SetStatus(feed.Status)
	AddGuild(structs.Guild) bool
	AddMessage(structs.Message)
}

type DiscordArguments struct {
	BotToken  string
	BotIntent []GatewayIntent

	// GatewayURL defaults to DefaultGatewayURL. The version and encoding
	// query is always added.
	GatewayURL     string
	Version        uint
	ReconnectDelay time.Duration
	PresenceStatus string
	Properties     structs.IdentifyEventProperties

	// DisableResume makes every reconnect identify from scratch.
	DisableResume bool
	// DisableAckCheck stops treating a missed heartbeat ack as a dead
	// connection.
	DisableAckCheck bool

	Dialer  *websocket.Dialer
	Sink    Sink
	Metrics *Metrics
	Logger  *slog.Logger
}

type call struct {
	fn   func()
	done chan struct{}
}

// Gateway is a Discord gateway client. All protocol state is owned by a
// single event loop goroutine; socket reads, socket writes, the heartbeat
// ticker, the reconnect timer and the public control methods all go
// through it.
type Gateway struct {
	wsurl          string
	wsDialer       *websocket.Dialer
	botIntents     int
	botVersion     uint
	reconnectDelay time.Duration
	resume         bool
	ackCheck       bool
	presenceStatus string
	properties     structs.IdentifyEventProperties

	sink    Sink
	metrics *Metrics
	log     *slog.Logger

	calls     chan call
	opened    atomic.Bool
	done      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	// Owned by the event loop.
	token          string
	session        *Session
	conn           *connection
	dialing        bool
	generation     uint64
	heartbeat      heartbeater
	reconnectTimer *time.Timer
}

func NewGateway(args DiscordArguments) (*Gateway, error) {
	version := args.Version
	if version == 0 {
		version = DefaultVersion
	}
	base := args.GatewayURL
	if base == "" {
		base = DefaultGatewayURL
	}
	wsurl, err := gatewayURL(base, version)
	if err != nil {
		return nil, err
	}

	intents := 0
	botIntent := args.BotIntent
	if len(botIntent) == 0 {
		botIntent = DefaultIntents
	}
	for _, v := range botIntent {
		intents |= v
	}

	delay := args.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	status := args.PresenceStatus
	if status == "" {
		status = DefaultPresenceStatus
	}
	props := args.Properties
	if props.Os == "" {
		props.Os = runtime.GOOS
	}
	if props.Browser == "" {
		props.Browser = "discord-feed"
	}
	if props.Device == "" {
		props.Device = "discord-feed"
	}
	dialer := args.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	sink := args.Sink
	if sink == nil {
		sink = feed.New()
	}
	metrics := args.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	logger := args.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		wsurl:          wsurl,
		wsDialer:       dialer,
		botIntents:     intents,
		botVersion:     version,
		reconnectDelay: delay,
		resume:         !args.DisableResume,
		ackCheck:       !args.DisableAckCheck,
		presenceStatus: status,
		properties:     props,
		sink:           sink,
		metrics:        metrics,
		log:            logger.With("component", "gateway"),
		calls:          make(chan call),
		done:           make(chan struct{}),
		ctx:            ctx,
		cancel:         cancel,
		token:          args.BotToken,
		session:        NewSession(),
	}, nil
}

// https://discord.com/developers/docs/reference#api-versioning
func gatewayURL(base string, version uint) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "invalid gateway url %q", base)
	}
	if u.Host == "" {
		return "", errors.Errorf("invalid gateway url %q: missing host", base)
	}
	wsurl := url.URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     "/",
		RawQuery: fmt.Sprintf("v=%v&encoding=json", version),
	}
	return wsurl.String(), nil
}

// Open starts the event loop and connects. The loop stops when ctx is
// done or Close is called.
func (g *Gateway) Open(ctx context.Context) error {
	if !g.opened.CompareAndSwap(false, true) {
		return ErrGatewayIsAlreadyOpen
	}
	context.AfterFunc(ctx, g.cancel)
	go g.run()
	return g.Start()
}

// Close disconnects and stops the event loop for good.
func (g *Gateway) Close() {
	if !g.opened.Load() {
		return
	}
	g.closeOnce.Do(func() {
		g.cancel()
		<-g.done
	})
}

// Start connects unless a connection exists or is being dialed.
func (g *Gateway) Start() error {
	return g.exec(g.start)
}

// Stop disconnects and cancels any scheduled reconnect.
func (g *Gateway) Stop() error {
	return g.exec(g.stop)
}

// Login sets the token used by the next identify. It does not identify
// by itself, that waits for the next Hello.
func (g *Gateway) Login(token string) error {
	return g.exec(func() {
		g.token = token
		g.log.Info("token set, ready to identify")
	})
}

// Reconnect drops the current connection and connects again with a new
// session after the reconnect delay.
func (g *Gateway) Reconnect() error {
	return g.exec(func() { g.reconnect(false, feed.StatusDisconnected) })
}

// Done is closed once the event loop has exited.
func (g *Gateway) Done() <-chan struct{} {
	return g.done
}

// exec runs fn on the event loop and waits for it to return.
func (g *Gateway) exec(fn func()) error {
	if !g.opened.Load() {
		return ErrGatewayNotOpen
	}
	c := call{fn: fn, done: make(chan struct{})}
	select {
	case g.calls <- c:
	case <-g.done:
		return ErrGatewayClosed
	}
	<-c.done
	return nil
}

func (g *Gateway) run() {
	defer close(g.done)
	for {
		select {
		case <-g.ctx.Done():
			g.stop()
			g.log.Info("gateway stop listening.")
			return
		case c := <-g.calls:
			c.fn()
			close(c.done)
		case <-g.heartbeat.C():
			g.onHeartbeatTick()
		case <-g.reconnectC():
			g.onReconnectTimer()
		}
	}
}

func (g *Gateway) reconnectC() <-chan time.Time {
	if g.reconnectTimer == nil {
		return nil
	}
	return g.reconnectTimer.C
}

func (g *Gateway) start() {
	if g.conn != nil || g.dialing {
		g.log.Info("already connected, not starting a new connection")
		return
	}
	g.cancelReconnect()
	g.sink.SetStatus(feed.StatusConnecting)
	g.session.ResetIdentified()

	wsurl := g.wsurl
	if g.canResume() && g.session.ResumeGatewayURL() != "" {
		if u, err := gatewayURL(g.session.ResumeGatewayURL(), g.botVersion); err == nil {
			wsurl = u
		} else {
			g.log.Warn("ignoring resume gateway url", "error", err)
		}
	}

	g.dialing = true
	g.generation++
	gen := g.generation
	g.log.Info("connecting to discord...", "url", wsurl)
	go g.dial(gen, wsurl)
}

func (g *Gateway) dial(gen uint64, wsurl string) {
	ws, _, err := g.wsDialer.DialContext(g.ctx, wsurl, nil)
	werr := g.exec(func() { g.onDial(gen, ws, err) })
	if werr != nil && ws != nil {
		ws.Close()
	}
}

func (g *Gateway) onDial(gen uint64, ws *websocket.Conn, err error) {
	if gen != g.generation {
		// Stopped or restarted while dialing.
		if ws != nil {
			ws.Close()
		}
		return
	}
	g.dialing = false
	if err != nil {
		g.log.Error("failed to connect to discord gateway", "error", err)
		g.reconnect(true, connectionError(err))
		return
	}
	c := newConnection(ws)
	g.conn = c
	go g.readLoop(c)
	go g.writeLoop(c)
	g.log.Info("websocket connection started", "conn_id", c.id)
}

func (g *Gateway) stop() {
	g.log.Info("stopping websocket connection")
	g.cancelReconnect()
	g.shutdown(websocket.CloseNormalClosure)
	g.sink.SetStatus(feed.StatusDisconnected)
}

// shutdown drops the connection and the heartbeat schedule without
// touching the published status.
func (g *Gateway) shutdown(code int) {
	g.generation++
	g.dialing = false
	g.heartbeat.disarm()
	if g.conn != nil {
		g.conn.close(code)
		g.log.Info("gateway connection stopped.", "conn_id", g.conn.id)
		g.conn = nil
	}
	g.session.ResetIdentified()
}

func (g *Gateway) cancelReconnect() {
	if g.reconnectTimer != nil {
		g.reconnectTimer.Stop()
		g.reconnectTimer = nil
	}
	g.session.SetReconnecting(false)
}

// reconnect tears the connection down, publishes status for the wait and
// schedules a new connection after the fixed reconnect delay. Only one
// reconnect can be pending at a time.
func (g *Gateway) reconnect(keepSession bool, status feed.Status) {
	if g.session.IsReconnecting() {
		g.log.Info("already reconnecting, skipping duplicate reconnect")
		return
	}
	g.session.SetReconnecting(true)
	if !keepSession || !g.resume {
		g.session.ClearSession()
	}
	code := websocket.CloseNormalClosure
	if g.canResume() {
		code = closeCodeResume
	}
	g.shutdown(code)
	g.sink.SetStatus(status)
	g.metrics.Reconnects.Inc()
	g.reconnectTimer = time.NewTimer(g.reconnectDelay)
	g.log.Info("reconnecting...", "delay", g.reconnectDelay, "resume", g.canResume())
}

func (g *Gateway) onReconnectTimer() {
	g.reconnectTimer = nil
	g.session.SetReconnecting(false)
	g.start()
}

func (g *Gateway) canResume() bool {
	return g.resume && g.session.CanResume()
}

// send queues a frame on the current connection. A full queue counts as
// a write failure.
func (g *Gateway) send(op GatewayOpcode, d interface{}) error {
	if g.conn == nil {
		return ErrNotConnected
	}
	data, err := Encode(op, d)
	if err != nil {
		return err
	}
	select {
	case g.conn.out <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// sendEvent sends and reports success. Failures are logged; a failed
// write starts a reconnect unless one is pending.
func (g *Gateway) sendEvent(op GatewayOpcode, d interface{}) bool {
	err := g.send(op, d)
	if err == nil {
		return true
	}
	g.log.Error("websocket send error", "op_code", op, "error", err)
	if errors.Is(err, ErrSendQueueFull) && !g.session.IsReconnecting() {
		g.reconnect(true, connectionError(err))
	}
	return false
}

func (g *Gateway) onWriteError(c *connection, err error) {
	if c != g.conn {
		return
	}
	g.log.Error("websocket send error", "error", err, "conn_id", c.id)
	if g.session.IsReconnecting() {
		return
	}
	g.reconnect(true, connectionError(err))
}

func (g *Gateway) onReadError(c *connection, err error) {
	if c != g.conn {
		return
	}
	g.log.Error("websocket receive error", "error", err, "conn_id", c.id)

	keepSession := true
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		cerr := closeCodeError(closeErr.Code)
		if cerr != nil && !reconnectable(closeErr.Code) {
			g.fail(cerr)
			return
		}
		keepSession = resumable(closeErr.Code)
	}
	if g.session.IsReconnecting() {
		return
	}
	g.reconnect(keepSession, connectionError(err))
}

// fail stops for good after an error that reconnecting cannot fix. The
// caller has to Login and Reconnect.
func (g *Gateway) fail(err error) {
	g.log.Error("gateway closed the connection, not reconnecting", "error", err)
	g.cancelReconnect()
	g.shutdown(websocket.CloseNormalClosure)
	g.session.ClearSession()
	g.sink.SetStatus(feed.ErrorStatus(err.Error()))
}

func connectionError(err error) feed.Status {
	return feed.ErrorStatus("connection error: " + err.Error())
}
