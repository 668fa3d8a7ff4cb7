//go:build integration

package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/attaboy/fairway/internal/app"
	"github.com/attaboy/fairway/internal/infra"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	TestDBHost = "localhost"
	TestDBPort = 5435
	TestDBUser = "fairway"
	TestDBPass = "fairway"
	TestDBName = "fairway_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server *httptest.Server
	Pool   *pgxpool.Pool
	App    *app.App
	Logger *slog.Logger
	t      *testing.T
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, "fairway")
}

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bPool, err := pgxpool.New(ctx, bootstrapDSN())
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}

	if !exists {
		if _, err = bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", TestDBName)); err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}
	return nil
}

// TestConfig returns a Postgres-backed config pointed at the test database.
func TestConfig() *infra.Config {
	return &infra.Config{
		PGHost:               TestDBHost,
		PGPort:               TestDBPort,
		PGUser:               TestDBUser,
		PGPassword:           TestDBPass,
		PGDatabase:           TestDBName,
		PGMaxConns:           10,
		StoreBackend:         infra.StorePostgres,
		ViewTTL:              time.Minute,
		LedgerMaxAttempts:    8,
		LedgerInitialBackoff: 2 * time.Millisecond,
		LedgerMaxBackoff:     50 * time.Millisecond,
		WriteRatePerSecond:   1000,
		WriteBurst:           1000,
		RelayPollInterval:    50 * time.Millisecond,
		RelayBatchSize:       100,
		CORSAllowedOrigins:   "*",
	}
}

// NewTestEnv builds the full app against the test database (running
// migrations) and serves it from an httptest.Server.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if err := ensureTestDB(); err != nil {
		t.Fatalf("failed to prepare test db: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.Build(context.Background(), TestConfig(), prometheus.NewRegistry(), logger)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	env := &TestEnv{
		Server: httptest.NewServer(a.Router),
		Pool:   a.Pool,
		App:    a,
		Logger: logger,
		t:      t,
	}

	// Clean before test to ensure isolation
	env.CleanAll()

	t.Cleanup(func() {
		env.Server.Close()
		env.CleanAll()
		a.Close()
	})
	return env
}
