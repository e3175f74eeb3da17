package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

const EnvProduction = "production"

type AppConfig struct {
	DiscordBotToken       string        `env:"DC_BOT_TOKEN"`
	DiscordGatewayAddress string        `env:"DC_GATEWAY_ADDRESS" envDefault:"wss://gateway.discord.gg"`
	DiscordGatewayVersion uint          `env:"DC_GATEWAY_VERSION" envDefault:"10"`
	ReconnectDelay        time.Duration `env:"DC_RECONNECT_DELAY" envDefault:"5s"`
	Resume                bool          `env:"DC_RESUME" envDefault:"true"`
	HeartbeatAckCheck     bool          `env:"DC_HEARTBEAT_ACK_CHECK" envDefault:"true"`
	PresenceStatus        string        `env:"DC_PRESENCE_STATUS" envDefault:"online"`
	APIAddress            string        `env:"API_ADDRESS" envDefault:"127.0.0.1:8080"`
	APIKey                string        `env:"API_KEY"`
	AppEnv                string        `env:"APP_ENV" envDefault:"development"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
}

var presenceStatuses = map[string]struct{}{
	"online":    {},
	"dnd":       {},
	"idle":      {},
	"invisible": {},
	"offline":   {},
}

// LoadConfiguration reads the process environment. A missing bot token
// is not an error: the token can be supplied later through the API.
func LoadConfiguration() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to parse environment")
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg AppConfig) validate() error {
	if cfg.DiscordGatewayVersion == 0 {
		return errors.New("DC_GATEWAY_VERSION must be greater than 0")
	}
	if cfg.ReconnectDelay <= 0 {
		return errors.Errorf("DC_RECONNECT_DELAY must be positive, got %s", cfg.ReconnectDelay)
	}
	if _, ok := presenceStatuses[cfg.PresenceStatus]; !ok {
		return errors.Errorf("unknown DC_PRESENCE_STATUS %q", cfg.PresenceStatus)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

func (cfg AppConfig) IsProduction() bool {
	return strings.EqualFold(cfg.AppEnv, EnvProduction)
}

// Level is LogLevel as a slog level, Info when it does not parse.
func (cfg AppConfig) Level() slog.Level {
	l, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel accepts slog level names in any case, with an optional
// offset such as "debug+2".
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, errors.Wrapf(err, "invalid LOG_LEVEL %q", s)
	}
	return l, nil
}
