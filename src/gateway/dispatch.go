package gateway

import (
	"strconv"
	"time"

	"github.com/hendrywilliam/discord-feed/src/feed"
	"github.com/hendrywilliam/discord-feed/src/structs"
)

const previewLength = 1024

func preview(b []byte) string {
	if len(b) <= previewLength {
		return string(b)
	}
	return string(b[:previewLength]) + "..."
}

// onMessage runs the protocol state machine for one inbound frame.
func (g *Gateway) onMessage(c *connection, message []byte) {
	if c != g.conn {
		// Frame from a connection we already replaced.
		return
	}
	g.log.Debug("received", "payload", preview(message))

	e, err := Decode(message)
	if err != nil {
		g.metrics.DecodeErrors.WithLabelValues("envelope").Inc()
		g.log.Warn("failed to parse payload", "error", err, "raw", preview(message))
		return
	}
	g.metrics.FramesReceived.WithLabelValues(strconv.Itoa(e.Op)).Inc()

	switch e.Op {
	case OpcodeHello:
		g.onHello(e)
	case OpcodeDispatch:
		g.onDispatch(e)
	case OpcodeHeartbeat:
		g.log.Debug("gateway requested heartbeat")
		g.sendHeartbeat()
	case OpcodeHeartbeatAck:
		g.onHeartbeatAck()
	case OpcodeReconnect:
		g.log.Info("gateway requested reconnect")
		g.reconnect(true, feed.StatusDisconnected)
	case OpcodeInvalidSession:
		g.onInvalidSession(e)
	default:
		g.log.Info("received op code", "op_code", e.Op)
	}
}

func (g *Gateway) onHello(e structs.RawEvent) {
	hello, err := DecodeHello(e.D)
	if err != nil {
		g.metrics.DecodeErrors.WithLabelValues("hello").Inc()
		g.log.Warn("failed to decode hello", "error", err, "raw", preview(e.D))
		return
	}
	g.log.Info("received hello", "heartbeat_interval", hello.HeartbeatInterval)
	g.sink.SetStatus(feed.StatusConnected)
	g.heartbeat.arm(time.Duration(hello.HeartbeatInterval) * time.Millisecond)

	if g.session.IsIdentified() {
		g.log.Debug("already identified on this connection, ignoring hello")
		return
	}
	if g.canResume() {
		g.sendResume()
		return
	}
	g.identify()
}

func (g *Gateway) identify() {
	if g.token == "" {
		g.log.Warn("cannot identify: no token provided")
		return
	}
	identify := structs.IdentifyEvent{
		Token:      g.token,
		Intents:    g.botIntents,
		Properties: g.properties,
		Compress:   false,
		Presence: &structs.PresenceUpdate{
			Since:      time.Now().UnixMilli(),
			Activities: []interface{}{},
			Status:     g.presenceStatus,
			AFK:        false,
		},
	}
	if !g.sendEvent(OpcodeIdentify, identify) {
		return
	}
	g.session.MarkIdentified()
	g.log.Info("identify event sent", "intents", g.botIntents)
}

func (g *Gateway) sendResume() {
	seq := g.session.CurrentSequence()
	resume := structs.ResumeEvent{
		Token:     g.token,
		SessionID: g.session.SessionID(),
		Seq:       *seq,
	}
	if !g.sendEvent(OpcodeResume, resume) {
		return
	}
	g.session.MarkIdentified()
	g.log.Info("resume event sent", "session_id", resume.SessionID, "sequence", resume.Seq)
}

func (g *Gateway) onDispatch(e structs.RawEvent) {
	if e.S != nil {
		g.session.RecordSequence(*e.S)
	}
	name := e.T
	if name == "" {
		name = "unnamed"
	}
	g.metrics.DispatchEvents.WithLabelValues(name).Inc()

	switch e.T {
	case structs.EventNameReady:
		ready, err := DecodeReady(e.D)
		if err != nil {
			g.dropEvent(e, err)
			return
		}
		g.session.SetSession(ready.SessionID, ready.ResumeGatewayURL)
		g.sink.SetStatus(feed.StatusReady)
		g.log.Info("gateway is ready", "session_id", ready.SessionID, "user", ready.User.Username)
	case structs.EventNameResumed:
		g.sink.SetStatus(feed.StatusReady)
		g.log.Info("session resumed", "session_id", g.session.SessionID())
	case structs.EventNameGuildCreate:
		guild, err := DecodeGuild(e.D)
		if err != nil {
			g.dropEvent(e, err)
			return
		}
		if guild.Unavailable {
			g.log.Debug("skipping unavailable guild", "guild_id", guild.ID)
			return
		}
		if !g.sink.AddGuild(guild) {
			g.log.Debug("guild already known", "guild_id", guild.ID)
			return
		}
		g.log.Info("added guild", "guild_id", guild.ID, "name", guild.Name, "channels", len(guild.Channels))
	case structs.EventNameMessageCreate:
		msg, err := DecodeMessage(e.D)
		if err != nil {
			g.dropEvent(e, err)
			return
		}
		g.sink.AddMessage(msg)
		g.log.Debug("new message", "message_id", msg.ID, "channel_id", msg.ChannelID, "author", msg.AuthorName())
	case "":
		g.log.Warn("dispatch without event name", "raw", preview(e.D))
	default:
		g.log.Debug("unhandled dispatch event", "event_name", e.T)
	}
}

// dropEvent logs a dispatch whose payload could not be decoded. The
// connection is not affected.
func (g *Gateway) dropEvent(e structs.RawEvent, err error) {
	g.metrics.DecodeErrors.WithLabelValues(e.T).Inc()
	g.log.Warn("failed to decode event", "event_name", e.T, "error", err, "raw", preview(e.D))
}

func (g *Gateway) onInvalidSession(e structs.RawEvent) {
	keepSession := DecodeInvalidSession(e.D)
	g.log.Warn("invalid session", "resumable", keepSession)
	g.session.ResetIdentified()
	g.reconnect(keepSession, feed.StatusDisconnected)
}

func (g *Gateway) onHeartbeatTick() {
	if g.ackCheck && g.heartbeat.awaitingAck {
		g.log.Warn("heartbeat was not acknowledged, reconnecting")
		g.reconnect(true, feed.ErrorStatus("heartbeat not acknowledged"))
		return
	}
	g.sendHeartbeat()
}

func (g *Gateway) sendHeartbeat() {
	seq := g.session.CurrentSequence()
	if !g.sendEvent(OpcodeHeartbeat, seq) {
		return
	}
	g.heartbeat.sent(time.Now())
	g.metrics.HeartbeatsSent.Inc()
	if seq != nil {
		g.log.Debug("heartbeat sent", "sequence", *seq)
	} else {
		g.log.Debug("heartbeat sent", "sequence", nil)
	}
}

func (g *Gateway) onHeartbeatAck() {
	latency := g.heartbeat.acked(time.Now())
	if latency > 0 {
		g.metrics.HeartbeatLatency.Observe(latency.Seconds())
	}
	g.log.Debug("received heartbeat ack", "latency", latency)
}
