package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel          string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr          string        `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	SessionTTL        time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"30m"`
	SweepInterval     time.Duration `yaml:"sweep-interval" env:"SWEEP_INTERVAL" env-default:"1m"`
	HeartbeatInterval time.Duration `yaml:"heartbeat-interval" env:"HEARTBEAT_INTERVAL" env-default:"15s"`
}

// Load reads path, then the environment. An empty or missing path falls back
// to environment variables and defaults only.
func Load(path string) (*Config, error) {
	conf := &Config{}

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err = cleanenv.ReadConfig(path, conf); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}
			return conf, conf.Validate()
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("unable to stat config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("unable to read config from env: %w", err)
	}
	return conf, conf.Validate()
}

// Validate rejects durations the server cannot run with.
func (that *Config) Validate() error {
	if that.SessionTTL <= 0 {
		return fmt.Errorf("%w: session-ttl must be positive, got %s", ErrInvalidConfig, that.SessionTTL)
	}
	if that.SweepInterval <= 0 {
		return fmt.Errorf("%w: sweep-interval must be positive, got %s", ErrInvalidConfig, that.SweepInterval)
	}
	if that.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: heartbeat-interval must be positive, got %s", ErrInvalidConfig, that.HeartbeatInterval)
	}
	return nil
}

// Level maps LogLevel to a slog level. Unknown values mean info.
func (that *Config) Level() slog.Level {
	switch that.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
