package server

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const bearerPrefix = "Bearer "

// APIKeyMiddleware rejects requests without the configured key in the
// Authorization header.
func (server *Server) APIKeyMiddleware(c fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return fiber.NewError(http.StatusUnauthorized, "missing api key")
	}
	key := strings.TrimPrefix(header, bearerPrefix)
	if subtle.ConstantTimeCompare([]byte(key), []byte(server.apiKey)) != 1 {
		return fiber.NewError(http.StatusUnauthorized, "invalid api key")
	}
	return c.Next()
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	factory := promauto.With(reg)
	return &httpMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discord_feed",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Feed API requests, by route and status code.",
		}, []string{"route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "discord_feed",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Feed API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (server *Server) MetricsMiddleware(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	code := c.Response().StatusCode()
	if err != nil {
		code = http.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
	}
	route := c.Route().Path
	server.metrics.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	server.metrics.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	return err
}
