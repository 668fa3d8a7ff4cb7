package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/attaboy/fairway/internal/domain"
)

type eventLogRepo struct{}

// NewEventLogRepository returns a pgx-backed EventLogRepository.
func NewEventLogRepository() EventLogRepository {
	return &eventLogRepo{}
}

func (r *eventLogRepo) Insert(ctx context.Context, db DBTX, events []domain.AuditEvent) error {
	for _, e := range events {
		entries, err := json.Marshal(e.Entries)
		if err != nil {
			return fmt.Errorf("marshal event entries: %w", err)
		}
		_, err = db.Exec(ctx, `
			INSERT INTO group_event_log
			  (event_id, tournament_id, group_id, event_type, hole, channel, actor, entries, group_version, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			e.ID,
			e.TournamentID,
			e.GroupID,
			string(e.Type),
			e.Hole,
			string(e.Channel),
			e.Actor,
			entries,
			e.Version,
			e.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}
	return nil
}

func (r *eventLogRepo) ListByGroup(ctx context.Context, db DBTX, ref domain.GroupRef) ([]domain.AuditEvent, error) {
	logged, err := r.query(ctx, db, `
		SELECT id, event_id, tournament_id, group_id, event_type, hole, channel, actor, entries, group_version, occurred_at
		FROM group_event_log
		WHERE tournament_id = $1 AND group_id = $2
		ORDER BY id ASC`, ref.TournamentID, ref.GroupID)
	if err != nil {
		return nil, fmt.Errorf("list group events: %w", err)
	}
	events := make([]domain.AuditEvent, len(logged))
	for i, l := range logged {
		events[i] = l.Event
	}
	return events, nil
}

func (r *eventLogRepo) FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]LoggedEvent, error) {
	logged, err := r.query(ctx, db, `
		SELECT id, event_id, tournament_id, group_id, event_type, hole, channel, actor, entries, group_version, occurred_at
		FROM group_event_log
		WHERE published_at IS NULL
		ORDER BY id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	return logged, nil
}

func (r *eventLogRepo) MarkPublished(ctx context.Context, db DBTX, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `UPDATE group_event_log SET published_at = now() WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

func (r *eventLogRepo) query(ctx context.Context, db DBTX, sql string, args ...interface{}) ([]LoggedEvent, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoggedEvent
	for rows.Next() {
		var (
			l       LoggedEvent
			typ     string
			channel string
			entries []byte
		)
		err := rows.Scan(&l.SeqID, &l.Event.ID, &l.Event.TournamentID, &l.Event.GroupID, &typ,
			&l.Event.Hole, &channel, &l.Event.Actor, &entries, &l.Event.Version, &l.Event.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		l.Event.Type = domain.EventType(typ)
		l.Event.Channel = domain.Channel(channel)
		if len(entries) > 0 && string(entries) != "null" {
			if err := json.Unmarshal(entries, &l.Event.Entries); err != nil {
				return nil, fmt.Errorf("decode event entries: %w", err)
			}
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
