package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/taskpulse/internal/adapters/otel"
	"github.com/emiliopalmerini/taskpulse/internal/stats"
)

const envPrefix = "TASKPULSE"

// Store backends.
const (
	BackendLibsql = "libsql"
	BackendRedis  = "redis"
)

type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"libsql"`

	TursoDatabaseURL string `envconfig:"TURSO_DATABASE_URL" default:"file:taskpulse.db"`
	TursoAuthToken   string `envconfig:"TURSO_AUTH_TOKEN"`
	AutoMigrate      bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	StatsOpTimeout     time.Duration `envconfig:"STATS_OP_TIMEOUT" default:"500ms"`
	StatsMaxRetries    int           `envconfig:"STATS_MAX_RETRIES" default:"2"`
	StatsRetryInterval time.Duration `envconfig:"STATS_RETRY_INTERVAL" default:"10ms"`

	OTEL otel.Config `envconfig:"OTEL"`
}

// NewConfig loads configuration from TASKPULSE_* environment variables.
func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendLibsql:
		if c.TursoDatabaseURL == "" {
			return fmt.Errorf("%s_TURSO_DATABASE_URL is required for the %s backend", envPrefix, BackendLibsql)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%s_REDIS_ADDR is required for the %s backend", envPrefix, BackendRedis)
		}
	default:
		return fmt.Errorf("unknown store backend %q, expected %s or %s", c.StoreBackend, BackendLibsql, BackendRedis)
	}
	if c.StatsMaxRetries < 0 {
		return fmt.Errorf("%s_STATS_MAX_RETRIES must not be negative", envPrefix)
	}
	return nil
}

// Stats returns the engine settings.
func (c *Config) Stats() stats.Config {
	return stats.Config{
		OpTimeout:     c.StatsOpTimeout,
		MaxRetries:    c.StatsMaxRetries,
		RetryInterval: c.StatsRetryInterval,
	}
}
