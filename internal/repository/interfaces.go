package repository

import (
	"context"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
// Begin on a pgx.Tx opens a savepoint.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LoggedEvent is an audit event as stored, with its log sequence number.
type LoggedEvent struct {
	SeqID int64
	Event domain.AuditEvent
}

// EventLogRepository provides access to the append-only group_event_log.
type EventLogRepository interface {
	// Insert appends events (within the same transaction as the group write).
	Insert(ctx context.Context, db DBTX, events []domain.AuditEvent) error

	// ListByGroup returns a group's events in commit order.
	ListByGroup(ctx context.Context, db DBTX, ref domain.GroupRef) ([]domain.AuditEvent, error)

	// FetchUnpublished returns events the relay has not yet published.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]LoggedEvent, error)

	// MarkPublished stamps published_at. Rows are never deleted.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}

// SettlementRepository provides access to wager_settlements.
type SettlementRepository interface {
	// Insert appends a settlement record atomically. It returns false, writing
	// nothing, when the record's group version is already settled.
	Insert(ctx context.Context, db DBTX, rec *domain.SettlementRecord) (bool, error)

	// Latest returns the most recent record for a group, or nil.
	Latest(ctx context.Context, db DBTX, ref domain.GroupRef) (*domain.SettlementRecord, error)
}
