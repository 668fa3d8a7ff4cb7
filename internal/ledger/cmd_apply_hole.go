package ledger

import (
	"context"
	"fmt"

	"github.com/attaboy/fairway/internal/domain"
)

// HoleUpdate is one channel's submission for one hole.
type HoleUpdate struct {
	Ref     domain.GroupRef
	Hole    int
	Channel domain.Channel
	Actor   string
	Entries map[string]domain.ScoreEntry
}

func (u HoleUpdate) validate() error {
	if err := domain.ValidateHole(u.Hole); err != nil {
		return err
	}
	if !u.Channel.Valid() {
		return domain.ErrValidation(fmt.Sprintf("unknown channel %q", u.Channel))
	}
	if len(u.Entries) == 0 {
		return domain.ErrValidation("hole update carries no entries")
	}
	return nil
}

// ApplyHoleUpdate writes a channel's entries for one hole, leaving every other
// player, hole and channel untouched, then re-derives the hole's verification
// status in the same transaction.
func (e *Engine) ApplyHoleUpdate(ctx context.Context, u HoleUpdate) (*domain.Group, error) {
	if err := u.validate(); err != nil {
		return nil, err
	}

	g, err := e.update(ctx, u.Ref, func(g *domain.Group) ([]domain.AuditEvent, error) {
		par := g.Teebox.Hole(u.Hole).Par
		normalized := make(map[string]domain.ScoreEntry, len(u.Entries))
		for id, entry := range u.Entries {
			if _, ok := g.Player(id); !ok {
				return nil, domain.ErrValidation(fmt.Sprintf("player %s is not in group %s", id, u.Ref))
			}
			entry = entry.Normalize()
			if err := entry.Validate(par); err != nil {
				return nil, domain.ErrValidation(fmt.Sprintf("player %s hole %d: %v", id, u.Hole, err))
			}
			normalized[id] = entry
		}

		prior := g.HoleStatus(u.Hole).Status
		for id, entry := range normalized {
			g.Card(u.Channel, id).Set(u.Hole, entry)
		}
		transition(g, u.Hole, u.Channel, prior)

		return []domain.AuditEvent{domain.NewHoleUpdatedEvent(u.Ref, u.Hole, u.Channel, u.Actor, normalized)}, nil
	})
	if err != nil {
		return nil, err
	}

	status := g.HoleStatus(u.Hole).Status
	e.metrics.IncHoleUpdates(string(u.Channel))
	e.metrics.IncVerificationOutcome(string(status))
	e.logger.Info("hole updated",
		"tournament_id", u.Ref.TournamentID, "group_id", u.Ref.GroupID, "hole", u.Hole, "channel", u.Channel,
		"players", len(u.Entries), "status", status, "version", g.Version)
	return g, nil
}

// FinalizeHole confirms every player in the group has an entry for the hole on
// ch. It writes nothing.
func (e *Engine) FinalizeHole(ctx context.Context, ref domain.GroupRef, hole int, ch domain.Channel) error {
	if err := domain.ValidateHole(hole); err != nil {
		return err
	}
	if !ch.Valid() {
		return domain.ErrValidation(fmt.Sprintf("unknown channel %q", ch))
	}
	g, err := e.store.GetGroup(ctx, ref)
	if err != nil {
		return err
	}
	if missing := MissingEntries(g, ch, hole); len(missing) > 0 {
		return domain.ErrIncompleteHole(hole, missing)
	}
	return nil
}
