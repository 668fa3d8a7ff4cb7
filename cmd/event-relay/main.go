package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/attaboy/fairway/internal/infra"
	"github.com/attaboy/fairway/internal/metrics"
	"github.com/attaboy/fairway/internal/repository"
	"github.com/attaboy/fairway/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("event relay failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if cfg.StoreBackend != infra.StorePostgres {
		return fmt.Errorf("event relay needs STORE_BACKEND=%s", infra.StorePostgres)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("event-relay connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	relay := service.NewEventRelay(pool, repository.NewEventLogRepository(), producer,
		cfg.RelayPollInterval, cfg.RelayBatchSize, metrics.NewService(), logger)
	relay.Run(ctx)
	return nil
}
