package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewHoleUpdatedEvent records a channel's submission for one hole.
func NewHoleUpdatedEvent(ref GroupRef, hole int, ch Channel, actor string, entries map[string]ScoreEntry) AuditEvent {
	copied := make(map[string]ScoreEntry, len(entries))
	for id, e := range entries {
		if e.Gross != nil {
			e.Gross = IntPtr(*e.Gross)
		}
		copied[id] = e
	}
	return AuditEvent{
		ID:           uuid.New(),
		TournamentID: ref.TournamentID,
		GroupID:      ref.GroupID,
		Type:         EventHoleUpdated,
		Hole:         hole,
		Channel:      ch,
		Actor:        actor,
		Entries:      copied,
		OccurredAt:   time.Now().UTC(),
	}
}

// NewVerificationEvent records an override or sync decision on one hole.
func NewVerificationEvent(ref GroupRef, typ EventType, hole int, actor string) AuditEvent {
	return AuditEvent{
		ID:           uuid.New(),
		TournamentID: ref.TournamentID,
		GroupID:      ref.GroupID,
		Type:         typ,
		Hole:         hole,
		Channel:      ChannelScorer,
		Actor:        actor,
		OccurredAt:   time.Now().UTC(),
	}
}

// NewGroupSetupEvent records game setup (or a redo of it).
func NewGroupSetupEvent(ref GroupRef, actor string) AuditEvent {
	return AuditEvent{
		ID:           uuid.New(),
		TournamentID: ref.TournamentID,
		GroupID:      ref.GroupID,
		Type:         EventGroupSetup,
		Actor:        actor,
		OccurredAt:   time.Now().UTC(),
	}
}
