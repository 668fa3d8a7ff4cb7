package ledger

import (
	"context"
	"fmt"

	"github.com/attaboy/fairway/internal/domain"
)

// GetVerificationStatus returns the stored verification record for a hole.
func (e *Engine) GetVerificationStatus(ctx context.Context, ref domain.GroupRef, hole int) (domain.HoleVerification, error) {
	if err := domain.ValidateHole(hole); err != nil {
		return domain.HoleVerification{}, err
	}
	g, err := e.store.GetGroup(ctx, ref)
	if err != nil {
		return domain.HoleVerification{}, err
	}
	return g.HoleStatus(hole), nil
}

// PerformVerificationCheck evaluates a hole from the current entries. It has
// no side effects.
func (e *Engine) PerformVerificationCheck(ctx context.Context, ref domain.GroupRef, hole int) (CheckResult, error) {
	if err := domain.ValidateHole(hole); err != nil {
		return CheckResult{}, err
	}
	g, err := e.store.GetGroup(ctx, ref)
	if err != nil {
		return CheckResult{}, err
	}
	return Check(g, hole), nil
}

// GetDiscrepancies lists the players whose channels disagree on the hole.
func (e *Engine) GetDiscrepancies(ctx context.Context, ref domain.GroupRef, hole int) (map[string]Discrepancy, error) {
	if err := domain.ValidateHole(hole); err != nil {
		return nil, err
	}
	g, err := e.store.GetGroup(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Discrepancies(g, hole), nil
}

// VerificationSummary counts the group's holes per status.
func (e *Engine) VerificationSummary(ctx context.Context, ref domain.GroupRef) (map[domain.VerificationStatus]int, error) {
	g, err := e.store.GetGroup(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Summary(g), nil
}

// OverrideDiscrepancy accepts a discrepant hole as verified. The scorer
// channel's data stands.
func (e *Engine) OverrideDiscrepancy(ctx context.Context, ref domain.GroupRef, hole int, actor string) (*domain.Group, error) {
	if err := domain.ValidateHole(hole); err != nil {
		return nil, err
	}
	g, err := e.update(ctx, ref, func(g *domain.Group) ([]domain.AuditEvent, error) {
		if status := Evaluate(g, hole); status != domain.StatusDiscrepant {
			return nil, domain.ErrConflict(fmt.Sprintf("hole %d is %s, not discrepant", hole, status))
		}
		g.Verification[hole-1].Override = true
		g.Verification[hole-1].Status = Evaluate(g, hole)
		return []domain.AuditEvent{domain.NewVerificationEvent(ref, domain.EventDiscrepancyOverride, hole, actor)}, nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.IncVerificationOutcome(string(domain.StatusVerified))
	e.logger.Info("discrepancy overridden", "tournament_id", ref.TournamentID, "group_id", ref.GroupID, "hole", hole, "actor", actor)
	return g, nil
}

// SyncVerifierToScorer overwrites the verifier channel for a hole with the
// scorer's entries, which always leaves the hole verified. The scorer must
// have entered every player.
func (e *Engine) SyncVerifierToScorer(ctx context.Context, ref domain.GroupRef, hole int, actor string) (*domain.Group, error) {
	if err := domain.ValidateHole(hole); err != nil {
		return nil, err
	}
	g, err := e.update(ctx, ref, func(g *domain.Group) ([]domain.AuditEvent, error) {
		if missing := MissingEntries(g, domain.ChannelScorer, hole); len(missing) > 0 {
			return nil, domain.ErrIncompleteHole(hole, missing)
		}
		for _, id := range g.PlayerIDs() {
			entry, _ := g.Entry(domain.ChannelScorer, id, hole)
			g.Card(domain.ChannelVerifier, id).Set(hole, entry)
		}
		g.Verification[hole-1] = domain.HoleVerification{}
		g.Verification[hole-1].Status = Evaluate(g, hole)
		return []domain.AuditEvent{domain.NewVerificationEvent(ref, domain.EventVerifierSynced, hole, actor)}, nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.IncVerificationOutcome(string(g.HoleStatus(hole).Status))
	e.logger.Info("verifier synced to scorer", "tournament_id", ref.TournamentID, "group_id", ref.GroupID, "hole", hole, "actor", actor)
	return g, nil
}
