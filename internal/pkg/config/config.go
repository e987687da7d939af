package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/V4T54L/udp-logview/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	ListenHost     string        `env:"LISTEN_HOST" envDefault:"0.0.0.0"`
	ListenPort     int           `env:"LISTEN_PORT" envDefault:"5000"`
	ReadBufferSize int           `env:"READ_BUFFER_SIZE" envDefault:"2048"`
	MaxLines       int           `env:"MAX_LINES" envDefault:"10000"`
	PruneBatch     int           `env:"PRUNE_BATCH" envDefault:"2000"`
	DrainBatch     int           `env:"DRAIN_BATCH" envDefault:"500"`
	TickInterval   time.Duration `env:"TICK_INTERVAL" envDefault:"33ms"`
	MinLevel       string        `env:"MIN_LEVEL" envDefault:"I"`
	ControlAddr    string        `env:"CONTROL_ADDR" envDefault:":9091"`
	ControlAPIKey  string        `env:"CONTROL_API_KEY"`
	ExportDir      string        `env:"EXPORT_DIR" envDefault:"."`
	ExportCompress bool          `env:"EXPORT_COMPRESS" envDefault:"false"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPrefix    string        `env:"REDIS_EXPORT_PREFIX" envDefault:"log_exports"`
	PostgresURL    string        `env:"POSTGRES_URL"`
	KafkaBrokers   string        `env:"KAFKA_BROKERS"`
	KafkaTopic     string        `env:"KAFKA_EXPORT_TOPIC" envDefault:"log-exports"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.ListenPort < 0 || c.ListenPort > 65535 {
		errs = append(errs, fmt.Errorf("LISTEN_PORT %d out of range", c.ListenPort))
	}
	if c.ReadBufferSize <= 0 {
		errs = append(errs, fmt.Errorf("READ_BUFFER_SIZE must be positive, got %d", c.ReadBufferSize))
	}
	if c.MaxLines <= 0 {
		errs = append(errs, fmt.Errorf("MAX_LINES must be positive, got %d", c.MaxLines))
	}
	if c.PruneBatch <= 0 || c.PruneBatch > c.MaxLines {
		errs = append(errs, fmt.Errorf("PRUNE_BATCH must be in (0, MAX_LINES], got %d", c.PruneBatch))
	}
	if c.DrainBatch <= 0 {
		errs = append(errs, fmt.Errorf("DRAIN_BATCH must be positive, got %d", c.DrainBatch))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("TICK_INTERVAL must be positive, got %s", c.TickInterval))
	}
	return errors.Join(errs...)
}

// ListenAddr is the UDP address the receiver binds.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.ListenPort))
}

// MinimumLevel is the initial severity threshold for the filter.
func (c *Config) MinimumLevel() domain.Level {
	lvl := domain.ParseLevel(strings.ToUpper(strings.TrimSpace(c.MinLevel)))
	if lvl.Rank() > domain.LevelVerbose.Rank() {
		return domain.LevelInfo
	}
	return lvl
}

// KafkaBrokerList splits KAFKA_BROKERS on commas, dropping blanks.
func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
