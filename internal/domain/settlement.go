package domain

import (
	"time"

	"github.com/google/uuid"
)

// SettlementLine is one player's signed amount for one format, in cents.
// Positive means the player collects.
type SettlementLine struct {
	Format   Format `json:"format"`
	PlayerID string `json:"player_id"`
	Amount   int64  `json:"amount"`
}

// SettlementRecord is an immutable statement of what a group owes, taken at a
// specific group version. Records are appended, never rewritten.
type SettlementRecord struct {
	ID           uuid.UUID        `json:"id"`
	TournamentID string           `json:"tournament_id"`
	GroupID      string           `json:"group_id"`
	GroupVersion int64            `json:"group_version"`
	Lines        []SettlementLine `json:"lines"`
	CreatedAt    time.Time        `json:"created_at"`
}
