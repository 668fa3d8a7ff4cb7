package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/attaboy/fairway/internal/guard"
	"github.com/attaboy/fairway/internal/metrics"
	"github.com/attaboy/fairway/internal/repository"
)

// Publisher sends one message to a topic. infra.KafkaProducer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// TopicPrefix is prepended to the event type to form the Kafka topic.
const TopicPrefix = "fairway."

// EventRelay polls group_event_log and publishes unpublished events. Rows are
// stamped, never deleted, so the log stays a complete audit trail.
type EventRelay struct {
	db        repository.DBTX
	events    repository.EventLogRepository
	publisher Publisher
	breaker   *guard.CircuitBreaker
	metrics   metrics.Metrics
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewEventRelay creates an event relay.
func NewEventRelay(db repository.DBTX, events repository.EventLogRepository, publisher Publisher, interval time.Duration, batchSize int, m metrics.Metrics, logger *slog.Logger) *EventRelay {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &EventRelay{
		db:        db,
		events:    events,
		publisher: publisher,
		breaker:   guard.NewCircuitBreaker(5, 30*time.Second),
		metrics:   m,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run polls until ctx is cancelled.
func (r *EventRelay) Run(ctx context.Context) {
	r.logger.Info("event relay started", "interval", r.interval, "batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("event relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Poll(ctx); err != nil {
				r.logger.Error("event relay poll error", "error", err)
			}
		}
	}
}

// Poll publishes one batch and returns how many events were marked published.
// A failed publish leaves the event for the next poll, along with every later
// event of the same group so a group's events reach the broker in order.
// While the broker circuit is open Poll does nothing.
func (r *EventRelay) Poll(ctx context.Context) (int, error) {
	if err := r.breaker.Allow(); err != nil {
		r.logger.Debug("event relay paused", "reason", err)
		return 0, nil
	}
	batch, err := r.events.FetchUnpublished(ctx, r.db, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch unpublished events: %w", err)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	published := make([]int64, 0, len(batch))
	held := make(map[string]bool)
	for _, le := range batch {
		e := le.Event
		key := e.TournamentID + "/" + e.GroupID
		if held[key] {
			continue
		}
		msg, err := json.Marshal(e)
		if err != nil {
			r.logger.Error("marshal event failed", "event_id", e.ID, "error", err)
			held[key] = true
			continue
		}
		if err := r.publisher.Publish(ctx, TopicPrefix+string(e.Type), []byte(key), msg); err != nil {
			r.breaker.RecordFailure()
			r.logger.Error("kafka publish failed", "event_id", e.ID, "group", key, "error", err)
			held[key] = true
			if r.breaker.Allow() != nil {
				break
			}
			continue
		}
		r.breaker.RecordSuccess()
		published = append(published, le.SeqID)
	}

	if len(published) == 0 {
		return 0, nil
	}
	if err := r.events.MarkPublished(ctx, r.db, published); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}
	r.metrics.IncEventsRelayed(len(published))
	r.logger.Debug("event relay poll complete", "published", len(published))
	return len(published), nil
}
