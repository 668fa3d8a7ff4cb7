package ledger

import (
	"context"
	"fmt"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/strokes"
)

// GroupSetup is the game-setup input for one group.
type GroupSetup struct {
	Ref          domain.GroupRef
	StartingHole int
	HasVerifier  bool
	Teebox       domain.Teebox
	Players      []domain.GroupPlayer
	Config       domain.GameConfig
	Actor        string
}

// Validate checks everything setup needs before any allocation or write.
func (s GroupSetup) Validate() error {
	if s.Ref.TournamentID == "" || s.Ref.GroupID == "" {
		return domain.ErrValidation("tournament and group id are required")
	}
	if err := domain.ValidateStartingHole(s.StartingHole); err != nil {
		return err
	}
	if err := s.Teebox.Validate(); err != nil {
		return err
	}
	if n := len(s.Players); n < 2 || n > 4 {
		return domain.ErrValidation(fmt.Sprintf("a group has 2 to 4 players, got %d", n))
	}
	seen := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		if p.ID == "" {
			return domain.ErrValidation("player id is required")
		}
		if seen[p.ID] {
			return domain.ErrValidation(fmt.Sprintf("player %s listed twice", p.ID))
		}
		seen[p.ID] = true
		switch p.SkinsPool {
		case "", domain.SkinsPoolNone, domain.SkinsPoolScratch, domain.SkinsPoolHandicap, domain.SkinsPoolBoth:
		default:
			return domain.ErrValidation(fmt.Sprintf("player %s: unknown skins pool %q", p.ID, p.SkinsPool))
		}
	}
	if len(s.Players) == 4 {
		if err := domain.ValidateSeating(s.Players); err != nil {
			return err
		}
	}
	return s.Config.Validate()
}

// SetupGroup creates the group document, or redoes setup on an existing one.
// Stroke allocations are always replaced wholesale. A redo keeps the cards of
// players who are still seated and cannot drop a player who has entries on
// either card.
func (e *Engine) SetupGroup(ctx context.Context, s GroupSetup) (*domain.Group, error) {
	if s.StartingHole == 0 {
		s.StartingHole = 1
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	allocations := make(map[string]map[domain.Format]domain.StrokeAllocation, len(s.Players))
	for _, p := range s.Players {
		a, err := strokes.AllocateAll(p, s.Teebox, s.Config)
		if err != nil {
			return nil, err
		}
		allocations[p.ID] = a
	}

	apply := func(g *domain.Group) {
		g.StartingHole = s.StartingHole
		g.HasVerifier = s.HasVerifier
		g.Teebox = s.Teebox
		g.Players = append([]domain.GroupPlayer(nil), s.Players...)
		g.Config = s.Config
		g.Allocations = allocations
		g.Scorer = keepCards(g.Scorer, s.Players)
		g.Verifier = keepCards(g.Verifier, s.Players)
		for hole := 1; hole <= domain.HolesPerRound; hole++ {
			g.Verification[hole-1].Status = Evaluate(g, hole)
		}
	}
	event := domain.NewGroupSetupEvent(s.Ref, s.Actor)

	_, err := e.store.GetGroup(ctx, s.Ref)
	var g *domain.Group
	switch {
	case domain.HasCode(err, domain.CodeNotFound):
		fresh := &domain.Group{TournamentID: s.Ref.TournamentID, GroupID: s.Ref.GroupID}
		apply(fresh)
		g, err = e.store.CreateGroup(ctx, fresh, []domain.AuditEvent{event})
	case err == nil:
		g, err = e.update(ctx, s.Ref, func(g *domain.Group) ([]domain.AuditEvent, error) {
			if err := checkUnseated(g, s.Players); err != nil {
				return nil, err
			}
			apply(g)
			return []domain.AuditEvent{event}, nil
		})
	}
	if err != nil {
		return nil, fmt.Errorf("setup group %s: %w", s.Ref, err)
	}

	e.logger.Info("group set up",
		"tournament_id", s.Ref.TournamentID, "group_id", s.Ref.GroupID, "players", len(s.Players), "version", g.Version)
	return g, nil
}

// checkUnseated rejects a player list that leaves out someone with recorded
// scores.
func checkUnseated(g *domain.Group, players []domain.GroupPlayer) error {
	seated := make(map[string]bool, len(players))
	for _, p := range players {
		seated[p.ID] = true
	}
	for _, p := range g.Players {
		if seated[p.ID] {
			continue
		}
		if hasEntries(g.Scorer[p.ID]) || hasEntries(g.Verifier[p.ID]) {
			return domain.ErrConflict(fmt.Sprintf("player %s has recorded scores and cannot be removed", p.ID))
		}
	}
	return nil
}

func hasEntries(c *domain.ScoreCard) bool {
	if c == nil {
		return false
	}
	for _, entered := range c.Entered {
		if entered {
			return true
		}
	}
	return false
}

func keepCards(cards map[string]*domain.ScoreCard, players []domain.GroupPlayer) map[string]*domain.ScoreCard {
	out := make(map[string]*domain.ScoreCard, len(players))
	for _, p := range players {
		if c, ok := cards[p.ID]; ok {
			out[p.ID] = c
		} else {
			out[p.ID] = &domain.ScoreCard{}
		}
	}
	return out
}
