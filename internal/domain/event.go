package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the actions recorded in a group's event log.
type EventType string

const (
	EventGroupSetup          EventType = "scoring.group.setup"
	EventHoleUpdated         EventType = "scoring.hole.updated"
	EventDiscrepancyOverride EventType = "scoring.verification.overridden"
	EventVerifierSynced      EventType = "scoring.verification.synced"
)

// AuditEvent is one immutable entry in a group's append-only event log. It is
// used for audit and relay, never for recomputation.
type AuditEvent struct {
	ID           uuid.UUID             `json:"id"`
	TournamentID string                `json:"tournament_id"`
	GroupID      string                `json:"group_id"`
	Type         EventType             `json:"type"`
	Hole         int                   `json:"hole,omitempty"`
	Channel      Channel               `json:"channel,omitempty"`
	Actor        string                `json:"actor,omitempty"`
	Entries      map[string]ScoreEntry `json:"entries,omitempty"`
	Version      int64                 `json:"version"`
	OccurredAt   time.Time             `json:"occurred_at"`
}
