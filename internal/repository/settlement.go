package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type settlementRepo struct{}

// NewSettlementRepository returns a pgx-backed SettlementRepository.
func NewSettlementRepository() SettlementRepository {
	return &settlementRepo{}
}

var errVersionSettled = errors.New("group version already settled")

// Insert writes one row per settlement line, all sharing the record ID, in a
// single transaction. A line that already exists for the group version means
// another caller settled it first; the whole record is then rolled back.
func (r *settlementRepo) Insert(ctx context.Context, db DBTX, rec *domain.SettlementRecord) (bool, error) {
	if len(rec.Lines) == 0 {
		return false, nil
	}
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		for _, line := range rec.Lines {
			tag, err := tx.Exec(ctx, `
				INSERT INTO wager_settlements
				  (id, tournament_id, group_id, group_version, format, player_id, amount, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (tournament_id, group_id, group_version, format, player_id) DO NOTHING`,
				rec.ID,
				rec.TournamentID,
				rec.GroupID,
				rec.GroupVersion,
				string(line.Format),
				line.PlayerID,
				infra.CentsToNumeric(line.Amount),
				rec.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert settlement line: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return errVersionSettled
			}
		}
		return nil
	})
	if errors.Is(err, errVersionSettled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *settlementRepo) Latest(ctx context.Context, db DBTX, ref domain.GroupRef) (*domain.SettlementRecord, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `
		SELECT id FROM wager_settlements
		WHERE tournament_id = $1 AND group_id = $2
		ORDER BY group_version DESC, created_at DESC
		LIMIT 1`, ref.TournamentID, ref.GroupID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest settlement: %w", err)
	}

	rows, err := db.Query(ctx, `
		SELECT group_version, format, player_id, amount, created_at
		FROM wager_settlements
		WHERE id = $1
		ORDER BY format, player_id`, id)
	if err != nil {
		return nil, fmt.Errorf("load settlement lines: %w", err)
	}
	defer rows.Close()

	rec := &domain.SettlementRecord{ID: id, TournamentID: ref.TournamentID, GroupID: ref.GroupID}
	for rows.Next() {
		var (
			format    string
			line      domain.SettlementLine
			amount    pgtype.Numeric
			createdAt time.Time
		)
		if err := rows.Scan(&rec.GroupVersion, &format, &line.PlayerID, &amount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan settlement line: %w", err)
		}
		line.Format = domain.Format(format)
		line.Amount, err = infra.NumericToCents(amount)
		if err != nil {
			return nil, fmt.Errorf("settlement amount: %w", err)
		}
		rec.CreatedAt = createdAt
		rec.Lines = append(rec.Lines, line)
	}
	return rec, rows.Err()
}
