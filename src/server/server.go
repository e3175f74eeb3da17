package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/hendrywilliam/discord-feed/src/feed"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controller is the part of the gateway the API can drive.
// *gateway.Gateway implements it.
type Controller interface {
	Start() error
	Stop() error
	Reconnect() error
	Login(token string) error
}

type Arguments struct {
	Feed    *feed.Feed
	Gateway Controller
	// APIKey, when set, must be presented as a bearer token on every
	// request.
	APIKey string
	// Registry serves /metrics and receives the HTTP collectors. A nil
	// Registry gets a fresh one holding only the HTTP collectors.
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

type Server struct {
	router   *fiber.App
	feed     *feed.Feed
	gateway  Controller
	apiKey   string
	registry *prometheus.Registry
	metrics  *httpMetrics
	log      *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(args Arguments) *Server {
	logger := args.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := args.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	server := &Server{
		feed:     args.Feed,
		gateway:  args.Gateway,
		apiKey:   args.APIKey,
		registry: reg,
		metrics:  newHTTPMetrics(reg),
		log:      logger.With("component", "server"),
	}
	server.setupRouter()
	return server
}

func (server *Server) setupRouter() {
	router := fiber.New(fiber.Config{
		AppName:      "discord-feed",
		ErrorHandler: server.errorHandler,
	})
	router.Use(server.MetricsMiddleware)
	if server.apiKey != "" {
		router.Use(server.APIKeyMiddleware)
	}

	router.Get("/status", server.getStatus)
	router.Get("/guilds", server.getGuilds)
	router.Get("/guilds/:id", server.getGuild)
	router.Get("/messages", server.getMessages)
	router.Get("/debug", server.getDebugLog)

	columns := router.Group("/columns")
	columns.Get("/", server.getColumns)
	columns.Post("/", server.createColumn)
	columns.Get("/:id", server.getColumn)
	columns.Delete("/:id", server.deleteColumn)
	columns.Get("/:id/messages", server.getColumnMessages)

	gw := router.Group("/gateway")
	gw.Post("/start", server.control(server.gateway.Start))
	gw.Post("/stop", server.control(server.gateway.Stop))
	gw.Post("/reconnect", server.control(server.gateway.Reconnect))
	gw.Post("/login", server.login)

	router.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(server.registry, promhttp.HandlerOpts{})))

	server.router = router
}

func (server *Server) errorHandler(c fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= http.StatusInternalServerError {
		server.log.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}

// StartServer serves until ctx is done.
func (server *Server) StartServer(ctx context.Context, addr string) error {
	server.log.Info("server start", "address", addr)
	return server.router.Listen(addr, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
		OnShutdownSuccess: func() {
			server.log.Info("server stopped.")
		},
	})
}
