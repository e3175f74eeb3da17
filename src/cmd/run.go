package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hendrywilliam/discord-feed/src/config"
	"github.com/hendrywilliam/discord-feed/src/feed"
	"github.com/hendrywilliam/discord-feed/src/gateway"
	"github.com/hendrywilliam/discord-feed/src/logger"
	"github.com/hendrywilliam/discord-feed/src/server"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var signals = []os.Signal{
	os.Interrupt,
	syscall.SIGINT,
	syscall.SIGTERM,
}

func newRunCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the gateway and serve the feed API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfiguration()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.APIAddress = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), signals...)
			defer stop()
			return run(ctx, cfg, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "feed API listen address, overrides API_ADDRESS")
	return cmd
}

// app is everything run wires together.
type app struct {
	feed     *feed.Feed
	gateway  *gateway.Gateway
	server   *server.Server
	registry *prometheus.Registry
	log      *slog.Logger
}

func newApp(cfg config.AppConfig, out io.Writer) (*app, error) {
	f := feed.New()
	log := slog.New(feed.NewLogHandler(logger.NewHandler(out, cfg.Level(), cfg.IsProduction()), f, slog.LevelInfo))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	g, err := gateway.NewGateway(gateway.DiscordArguments{
		BotToken:        cfg.DiscordBotToken,
		BotIntent:       gateway.DefaultIntents,
		GatewayURL:      cfg.DiscordGatewayAddress,
		Version:         cfg.DiscordGatewayVersion,
		ReconnectDelay:  cfg.ReconnectDelay,
		PresenceStatus:  cfg.PresenceStatus,
		DisableResume:   !cfg.Resume,
		DisableAckCheck: !cfg.HeartbeatAckCheck,
		Sink:            f,
		Metrics:         gateway.NewMetrics(reg),
		Logger:          log,
	})
	if err != nil {
		return nil, err
	}

	srv := server.NewServer(server.Arguments{
		Feed:     f,
		Gateway:  g,
		APIKey:   cfg.APIKey,
		Registry: reg,
		Logger:   log,
	})
	return &app{feed: f, gateway: g, server: srv, registry: reg, log: log}, nil
}

func run(ctx context.Context, cfg config.AppConfig, out io.Writer) error {
	a, err := newApp(cfg, out)
	if err != nil {
		return err
	}
	if cfg.DiscordBotToken == "" {
		a.log.Warn("DC_BOT_TOKEN is not set, use POST /gateway/login to provide one")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.StartServer(ctx, cfg.APIAddress)
	}()

	if err := a.gateway.Open(ctx); err != nil {
		return errors.Wrap(err, "failed to open gateway")
	}
	defer a.gateway.Close()

	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
		return errors.Wrap(<-serverErr, "feed api")
	case err := <-serverErr:
		return errors.Wrap(err, "feed api")
	}
}
