// Package ledger owns the group score document: channel writes, verification
// reconciliation and the optimistic-concurrency retry around every update.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/metrics"
	"github.com/cenkalti/backoff/v4"
)

// Config bounds the retry loop around a transactional update.
type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns the production retry settings.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    5,
		InitialBackoff: 20 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// Engine applies scoring operations to group documents held in a Store.
// Every write goes through update, which re-reads and re-applies the mutation
// on a version conflict.
type Engine struct {
	store   Store
	cfg     Config
	logger  *slog.Logger
	metrics metrics.Metrics
}

// NewEngine creates a ledger engine over store.
func NewEngine(store Store, cfg Config, logger *slog.Logger, m metrics.Metrics) *Engine {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &Engine{store: store, cfg: cfg, logger: logger, metrics: m}
}

// Snapshot returns the current group document.
func (e *Engine) Snapshot(ctx context.Context, ref domain.GroupRef) (*domain.Group, error) {
	return e.store.GetGroup(ctx, ref)
}

// Subscribe streams committed group versions to fn. Call the returned func to
// stop.
func (e *Engine) Subscribe(ctx context.Context, ref domain.GroupRef, fn func(*domain.Group)) (func(), error) {
	return e.store.Subscribe(ctx, ref, fn)
}

// Events returns the group's audit trail in commit order.
func (e *Engine) Events(ctx context.Context, ref domain.GroupRef) ([]domain.AuditEvent, error) {
	return e.store.ListEvents(ctx, ref)
}

// update runs mutate through the store until it commits, the mutation fails,
// or MaxAttempts version conflicts have been seen.
func (e *Engine) update(ctx context.Context, ref domain.GroupRef, mutate Mutator) (*domain.Group, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveUpdateDuration(time.Since(start).Seconds()) }()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.InitialBackoff
	if e.cfg.MaxBackoff > 0 {
		b.MaxInterval = e.cfg.MaxBackoff
	}
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.cfg.MaxAttempts-1)), ctx)

	var (
		committed *domain.Group
		attempts  int
	)
	op := func() error {
		attempts++
		g, err := e.store.TransactionalUpdate(ctx, ref, mutate)
		if err == nil {
			committed = g
			return nil
		}
		if errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		e.metrics.IncUpdateRetries()
		e.logger.Debug("group update conflicted, retrying",
			"tournament_id", ref.TournamentID, "group_id", ref.GroupID, "attempt", attempts, "wait", wait)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			e.metrics.IncUpdateConflicts()
			e.logger.Warn("group update gave up after conflicts",
				"tournament_id", ref.TournamentID, "group_id", ref.GroupID, "attempts", attempts)
			return nil, domain.ErrPersistenceConflict(attempts, err)
		}
		return nil, err
	}
	return committed, nil
}
