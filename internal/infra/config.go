package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends selectable with STORE_BACKEND.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL  string `env:"DATABASE_URL"`
	PGHost       string `env:"PGHOST" envDefault:"localhost"`
	PGPort       int    `env:"PGPORT" envDefault:"5435"`
	PGUser       string `env:"PGUSER" envDefault:"fairway"`
	PGPassword   string `env:"PGPASSWORD" envDefault:"fairway"`
	PGDatabase   string `env:"PGDATABASE" envDefault:"fairway"`
	PGMaxConns   int32  `env:"PG_MAX_CONNS" envDefault:"20"`
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`

	// Redis
	RedisURL     string        `env:"REDIS_URL" envDefault:"redis://localhost:6380"`
	RedisEnabled bool          `env:"REDIS_ENABLED" envDefault:"false"`
	ViewTTL      time.Duration `env:"VIEW_TTL" envDefault:"10m"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Ledger retry
	LedgerMaxAttempts    int           `env:"LEDGER_MAX_ATTEMPTS" envDefault:"5"`
	LedgerInitialBackoff time.Duration `env:"LEDGER_INITIAL_BACKOFF" envDefault:"20ms"`
	LedgerMaxBackoff     time.Duration `env:"LEDGER_MAX_BACKOFF" envDefault:"500ms"`

	// Write rate limiting, per device
	WriteRatePerSecond float64 `env:"WRITE_RATE_PER_SECOND" envDefault:"5"`
	WriteBurst         int     `env:"WRITE_BURST" envDefault:"10"`

	// Event relay
	RelayPollInterval time.Duration `env:"RELAY_POLL_INTERVAL" envDefault:"500ms"`
	RelayBatchSize    int           `env:"RELAY_BATCH_SIZE" envDefault:"100"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	if c.StoreBackend != StoreMemory && c.StoreBackend != StorePostgres {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMemory, StorePostgres, c.StoreBackend)
	}
	if c.LedgerMaxAttempts < 1 {
		return fmt.Errorf("LEDGER_MAX_ATTEMPTS must be at least 1, got %d", c.LedgerMaxAttempts)
	}
	if c.LedgerInitialBackoff <= 0 || c.LedgerMaxBackoff < c.LedgerInitialBackoff {
		return fmt.Errorf("ledger backoff must satisfy 0 < LEDGER_INITIAL_BACKOFF <= LEDGER_MAX_BACKOFF")
	}
	if c.WriteRatePerSecond <= 0 || c.WriteBurst < 1 {
		return fmt.Errorf("WRITE_RATE_PER_SECOND and WRITE_BURST must be positive")
	}
	if c.RelayPollInterval <= 0 || c.RelayBatchSize < 1 {
		return fmt.Errorf("RELAY_POLL_INTERVAL and RELAY_BATCH_SIZE must be positive")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
