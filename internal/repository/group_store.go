package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GroupChangeChannel is the LISTEN/NOTIFY channel carrying "tournament/group"
// payloads for every committed group write.
const GroupChangeChannel = "score_group_changes"

// GroupStore is the Postgres ledger.Store. The group document lives in a JSONB
// column guarded by an integer version; every write is an UPDATE conditioned
// on the version it read, in the same transaction as its audit events.
type GroupStore struct {
	pool     *pgxpool.Pool
	events   EventLogRepository
	logger   *slog.Logger
	listener *groupListener
}

var _ ledger.Store = (*GroupStore)(nil)

// NewGroupStore creates a Postgres-backed group store.
func NewGroupStore(pool *pgxpool.Pool, events EventLogRepository, logger *slog.Logger) *GroupStore {
	return &GroupStore{pool: pool, events: events, logger: logger, listener: newGroupListener(pool, logger)}
}

// Close ends every subscription and the shared listener connection.
func (s *GroupStore) Close() {
	s.listener.close()
}

// Subscribers reports how many live subscriptions the store is serving.
func (s *GroupStore) Subscribers() int {
	return s.listener.subscribers()
}

func (s *GroupStore) GetGroup(ctx context.Context, ref domain.GroupRef) (*domain.Group, error) {
	return getGroup(ctx, s.pool, ref)
}

func (s *GroupStore) CreateGroup(ctx context.Context, g *domain.Group, events []domain.AuditEvent) (*domain.Group, error) {
	ref := g.Ref()
	stored := g.Clone()
	stored.Version = 1
	for i := range events {
		events[i].Version = stored.Version
	}
	doc, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal group: %w", err)
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO score_groups (tournament_id, group_id, version, document, created_at, updated_at)
			VALUES ($1, $2, 1, $3, now(), now())
			ON CONFLICT (tournament_id, group_id) DO NOTHING`,
			ref.TournamentID, ref.GroupID, doc)
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrConflict("group " + ref.String() + " already exists")
		}
		if err := s.events.Insert(ctx, tx, events); err != nil {
			return err
		}
		return notify(ctx, tx, ref)
	})
	if err != nil {
		return nil, err
	}
	return getGroup(ctx, s.pool, ref)
}

// TransactionalUpdate makes one optimistic attempt. The read happens outside
// the write transaction; the conditional UPDATE detects any writer that
// committed in between.
func (s *GroupStore) TransactionalUpdate(ctx context.Context, ref domain.GroupRef, mutate ledger.Mutator) (*domain.Group, error) {
	current, err := getGroup(ctx, s.pool, ref)
	if err != nil {
		return nil, err
	}
	base := current.Version

	events, err := mutate(current)
	if err != nil {
		return nil, err
	}
	current.TournamentID, current.GroupID = ref.TournamentID, ref.GroupID
	current.Version = base + 1
	for i := range events {
		events[i].Version = current.Version
	}
	doc, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("marshal group: %w", err)
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE score_groups
			SET document = $1, version = version + 1, updated_at = now()
			WHERE tournament_id = $2 AND group_id = $3 AND version = $4`,
			doc, ref.TournamentID, ref.GroupID, base)
		if err != nil {
			return fmt.Errorf("update group: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrConcurrentModification
		}
		if err := s.events.Insert(ctx, tx, events); err != nil {
			return err
		}
		return notify(ctx, tx, ref)
	})
	if err != nil {
		return nil, err
	}
	return getGroup(ctx, s.pool, ref)
}

// Subscribe registers fn with the store's shared listener, then delivers the
// current document. Every matching notification re-reads the document once
// for all of the group's subscribers.
func (s *GroupStore) Subscribe(ctx context.Context, ref domain.GroupRef, fn func(*domain.Group)) (func(), error) {
	id, err := s.listener.add(ctx, ref, fn)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", ref, err)
	}
	if g, err := getGroup(ctx, s.pool, ref); err == nil {
		fn(g)
	}

	subCtx, stop := context.WithCancel(ctx)
	var once sync.Once
	remove := func() {
		once.Do(func() { s.listener.remove(ref, id) })
	}
	go func() {
		<-subCtx.Done()
		remove()
	}()
	return func() {
		remove()
		stop()
	}, nil
}

func (s *GroupStore) ListEvents(ctx context.Context, ref domain.GroupRef) ([]domain.AuditEvent, error) {
	return s.events.ListByGroup(ctx, s.pool, ref)
}

func getGroup(ctx context.Context, db DBTX, ref domain.GroupRef) (*domain.Group, error) {
	var (
		version int64
		doc     []byte
	)
	err := db.QueryRow(ctx, `
		SELECT version, document FROM score_groups
		WHERE tournament_id = $1 AND group_id = $2`,
		ref.TournamentID, ref.GroupID).Scan(&version, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("group", ref.String())
	}
	if err != nil {
		return nil, fmt.Errorf("load group %s: %w", ref, err)
	}

	var g domain.Group
	if err := json.Unmarshal(doc, &g); err != nil {
		return nil, fmt.Errorf("decode group %s: %w", ref, err)
	}
	g.Version = version
	if g.Scorer == nil {
		g.Scorer = make(map[string]*domain.ScoreCard)
	}
	if g.Verifier == nil {
		g.Verifier = make(map[string]*domain.ScoreCard)
	}
	return &g, nil
}

func notify(ctx context.Context, tx pgx.Tx, ref domain.GroupRef) error {
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, GroupChangeChannel, ref.String()); err != nil {
		return fmt.Errorf("notify group change: %w", err)
	}
	return nil
}
