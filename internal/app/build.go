package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/attaboy/fairway/internal/handler"
	"github.com/attaboy/fairway/internal/infra"
	"github.com/attaboy/fairway/internal/ledger"
	"github.com/attaboy/fairway/internal/metrics"
	"github.com/attaboy/fairway/internal/projection"
	"github.com/attaboy/fairway/internal/repository"
	"github.com/attaboy/fairway/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// App is the assembled API process.
type App struct {
	Router  http.Handler
	Scoring *service.ScoringService
	Limiter *handler.DeviceLimiter
	Pool    *pgxpool.Pool
	closers []func()
}

// Close releases every connection the app opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build connects the configured backends and wires the scoring service and
// router. reg may be nil to use the default Prometheus registry.
func Build(ctx context.Context, cfg *infra.Config, reg *prometheus.Registry, logger *slog.Logger) (*App, error) {
	a := &App{}

	var m *metrics.Service
	var metricsHandler http.Handler
	if reg != nil {
		m = metrics.NewService(reg)
		metricsHandler = metrics.NewMetricsHandler(reg)
	} else {
		m = metrics.NewService()
		metricsHandler = metrics.NewMetricsHandler()
	}

	var store ledger.Store
	var health infra.Pinger
	var settlements repository.SettlementRepository
	switch cfg.StoreBackend {
	case infra.StorePostgres:
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		pool, err := infra.NewPostgresPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.Pool = pool
		health = pool
		groups := repository.NewGroupStore(pool, repository.NewEventLogRepository(), logger)
		a.closers = append(a.closers, groups.Close)
		store = groups
		settlements = repository.NewSettlementRepository()
		logger.Info("connected to postgres")
	default:
		store = ledger.NewMemoryStore()
		logger.Warn("using in-memory group store; scores are lost on restart")
	}

	var cache projection.Store = projection.NewInMemoryStore()
	if cfg.RedisEnabled {
		client, err := projection.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		cache = projection.NewRedisStore(client)
		logger.Info("connected to redis")
	}

	engine := ledger.NewEngine(store, ledger.Config{
		MaxAttempts:    cfg.LedgerMaxAttempts,
		InitialBackoff: cfg.LedgerInitialBackoff,
		MaxBackoff:     cfg.LedgerMaxBackoff,
	}, logger, m)

	deps := service.ScoringDeps{
		Engine:      engine,
		Views:       projection.NewViews(cache, cfg.ViewTTL, logger, m),
		Settlements: settlements,
		Metrics:     m,
		Logger:      logger,
	}
	if a.Pool != nil {
		deps.DB = a.Pool
	}
	a.Scoring = service.NewScoringService(deps)
	a.Limiter = handler.NewDeviceLimiter(cfg.WriteRatePerSecond, cfg.WriteBurst)

	a.Router = NewRouter(RouterDeps{
		Scoring: a.Scoring,
		Health:  health,
		Metrics: metricsHandler,
		Limiter: a.Limiter,
		Origins: cfg.CORSAllowedOrigins,
		Logger:  logger,
	})
	return a, nil
}
