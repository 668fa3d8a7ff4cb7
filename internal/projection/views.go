package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/games"
	"github.com/attaboy/fairway/internal/metrics"
	"github.com/attaboy/fairway/internal/settlement"
)

// DefaultViewTTL bounds how long a computed view outlives its group version.
const DefaultViewTTL = 10 * time.Minute

// GamesKey addresses the cached game summary for one group version.
func GamesKey(ref domain.GroupRef, version int64) string {
	return fmt.Sprintf("projection:games:%s:v%d", ref, version)
}

// SettlementKey addresses the cached settlement statement for one group version.
func SettlementKey(ref domain.GroupRef, version int64) string {
	return fmt.Sprintf("projection:settlement:%s:v%d", ref, version)
}

// Views caches derived game views keyed by group version. A new version is a
// new key, so entries never need invalidating. Cache failures degrade to
// recomputation.
type Views struct {
	store   Store
	ttl     time.Duration
	logger  *slog.Logger
	metrics metrics.Metrics
}

// NewViews creates a view cache over store.
func NewViews(store Store, ttl time.Duration, logger *slog.Logger, m metrics.Metrics) *Views {
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &Views{store: store, ttl: ttl, logger: logger, metrics: m}
}

// Games returns the cached summary for g's version or computes and stores it.
func (v *Views) Games(ctx context.Context, g *domain.Group) (*games.Summary, error) {
	key := GamesKey(g.Ref(), g.Version)
	var sum games.Summary
	if v.lookup(ctx, key, &sum) {
		return &sum, nil
	}

	sc, err := games.FromGroup(g)
	if err != nil {
		return nil, err
	}
	computed, err := games.Compute(sc)
	if err != nil {
		return nil, err
	}
	v.save(ctx, key, computed)
	return computed, nil
}

// Settlement returns the cached statement for g's version or settles it.
func (v *Views) Settlement(ctx context.Context, g *domain.Group) (*settlement.Statement, error) {
	key := SettlementKey(g.Ref(), g.Version)
	var st settlement.Statement
	if v.lookup(ctx, key, &st) {
		return &st, nil
	}

	sum, err := v.Games(ctx, g)
	if err != nil {
		return nil, err
	}
	computed, err := settlement.SettleAll(sum, g.Config)
	if err != nil {
		return nil, err
	}
	v.save(ctx, key, computed)
	return computed, nil
}

func (v *Views) lookup(ctx context.Context, key string, dest any) bool {
	err := GetJSON(ctx, v.store, key, dest)
	if err == nil {
		v.metrics.IncCacheLookup(true)
		return true
	}
	v.metrics.IncCacheLookup(false)
	if !errors.Is(err, ErrCacheMiss) {
		v.logger.Warn("projection lookup failed", "key", key, "error", err)
	}
	return false
}

func (v *Views) save(ctx context.Context, key string, value any) {
	if err := SetJSON(ctx, v.store, key, value, v.ttl); err != nil {
		v.logger.Warn("projection store failed", "key", key, "error", err)
	}
}
