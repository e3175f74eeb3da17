package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "discord_feed"

type Metrics struct {
	FramesReceived   *prometheus.CounterVec
	DispatchEvents   *prometheus.CounterVec
	DecodeErrors     *prometheus.CounterVec
	HeartbeatsSent   prometheus.Counter
	HeartbeatLatency prometheus.Histogram
	Reconnects       prometheus.Counter
}

// NewMetrics creates the gateway collectors and registers them with
// reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FramesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "frames_received_total",
			Help:      "Gateway frames received, by op code.",
		}, []string{"op"}),
		DispatchEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "dispatch_events_total",
			Help:      "Dispatch events received, by event name.",
		}, []string{"event"}),
		DecodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "decode_errors_total",
			Help:      "Payloads dropped because they could not be decoded.",
		}, []string{"payload"}),
		HeartbeatsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "heartbeats_sent_total",
			Help:      "Heartbeats sent to the gateway.",
		}),
		HeartbeatLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "heartbeat_latency_seconds",
			Help:      "Time between a heartbeat and its acknowledgement.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		Reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "reconnects_total",
			Help:      "Reconnection attempts scheduled.",
		}),
	}
}
