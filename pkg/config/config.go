// Package config loads cartflow settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable cartflow reads.
const EnvPrefix = "CARTFLOW"

// Storage backends accepted by StorageConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendLedis    = "ledis"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the full process configuration.
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Storage StorageConfig
	Redis   RedisConfig
	DB      DBConfig
	Tracing TracingConfig
}

// AppConfig holds environment and log settings.
type AppConfig struct {
	Env      string `envconfig:"CARTFLOW_APP_ENV" default:"dev"`
	LogLevel string `envconfig:"CARTFLOW_LOG_LEVEL" default:"info"`
}

// HTTPConfig configures the cmd/api listener.
type HTTPConfig struct {
	Addr        string        `envconfig:"CARTFLOW_HTTP_ADDR" default:":8443"`
	CertFile    string        `envconfig:"CARTFLOW_HTTP_CERT_FILE"`
	KeyFile     string        `envconfig:"CARTFLOW_HTTP_KEY_FILE"`
	ReadTimeout time.Duration `envconfig:"CARTFLOW_HTTP_READ_TIMEOUT" default:"10s"`
}

// TLS reports whether both certificate and key are configured.
func (h HTTPConfig) TLS() bool {
	return h.CertFile != "" && h.KeyFile != ""
}

// StorageConfig selects the cart backend and the slot it is stored under.
type StorageConfig struct {
	Backend    string `envconfig:"CARTFLOW_STORAGE_BACKEND" default:"sqlite"`
	Key        string `envconfig:"CARTFLOW_STORAGE_KEY" default:"@shoppingCart"`
	SQLitePath string `envconfig:"CARTFLOW_SQLITE_PATH" default:"cart.db"`
	LedisDir   string `envconfig:"CARTFLOW_LEDIS_DIR" default:"cart-ledis"`
}

// RedisConfig is used by the redis backend.
type RedisConfig struct {
	URL string `envconfig:"CARTFLOW_REDIS_URL" default:"redis://localhost:6379/0"`
}

// DBConfig is used by the postgres backend.
type DBConfig struct {
	DSN string `envconfig:"CARTFLOW_DB_DSN"`
}

// TracingConfig configures span export. Tracing is off when Host is empty.
type TracingConfig struct {
	Host        string  `envconfig:"CARTFLOW_OTEL_HOST"`
	Probability float64 `envconfig:"CARTFLOW_OTEL_PROBABILITY" default:"1.0"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *StorageConfig) validate(cfg Config) error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if strings.TrimSpace(s.Key) == "" {
		return errors.New("storage key must not be empty")
	}
	switch s.Backend {
	case BackendMemory, BackendSQLite, BackendLedis, BackendRedis:
		return nil
	case BackendPostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("%s_DB_DSN is required for the postgres backend", EnvPrefix)
		}
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}
