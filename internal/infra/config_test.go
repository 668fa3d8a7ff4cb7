package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 5, cfg.LedgerMaxAttempts)
	assert.Equal(t, 100, cfg.RelayBatchSize)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("LEDGER_MAX_ATTEMPTS", "8")
	t.Setenv("LEDGER_INITIAL_BACKOFF", "50ms")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/fairway")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StorePostgres, cfg.StoreBackend)
	assert.Equal(t, 8, cfg.LedgerMaxAttempts)
	assert.Equal(t, "50ms", cfg.LedgerInitialBackoff.String())
	assert.Equal(t, "postgres://u:p@db:5432/fairway", cfg.DSN())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.StoreBackend = "sqlite" }},
		{"zero attempts", func(c *Config) { c.LedgerMaxAttempts = 0 }},
		{"inverted backoff", func(c *Config) { c.LedgerMaxBackoff = c.LedgerInitialBackoff / 2 }},
		{"zero rate", func(c *Config) { c.WriteRatePerSecond = 0 }},
		{"zero batch", func(c *Config) { c.RelayBatchSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSN_FromParts(t *testing.T) {
	cfg := &Config{PGUser: "u", PGPassword: "p", PGHost: "h", PGPort: 5432, PGDatabase: "d"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DSN())
}
