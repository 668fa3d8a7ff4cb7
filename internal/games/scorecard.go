// Package games holds the four wager calculators. Each is a pure function of
// a Scorecard snapshot, so recomputing on an unchanged group always yields the
// same result.
package games

import (
	"fmt"

	"github.com/attaboy/fairway/internal/domain"
)

// Scorecard is the immutable input every calculator reads: the scorer
// channel's entries, restricted to holes that have passed verification.
type Scorecard struct {
	Version      int64
	Teebox       domain.Teebox
	StartingHole int
	Players      []domain.GroupPlayer
	Config       domain.GameConfig
	Allocations  map[string]map[domain.Format]domain.StrokeAllocation
	Cards        map[string]*domain.ScoreCard
	// Counted marks the holes whose data feeds the games. With a verifier only
	// verified holes count; without one, any hole the scorer has entered.
	Counted [domain.HolesPerRound]bool
}

// FromGroup snapshots a group document for calculation.
func FromGroup(g *domain.Group) (*Scorecard, error) {
	if err := g.Teebox.CheckComplete(); err != nil {
		return nil, err
	}
	sc := &Scorecard{
		Version:      g.Version,
		Teebox:       g.Teebox,
		StartingHole: g.StartingHole,
		Players:      append([]domain.GroupPlayer(nil), g.Players...),
		Config:       g.Config,
		Allocations:  make(map[string]map[domain.Format]domain.StrokeAllocation, len(g.Players)),
		Cards:        make(map[string]*domain.ScoreCard, len(g.Players)),
	}
	if sc.StartingHole == 0 {
		sc.StartingHole = 1
	}
	for _, p := range g.Players {
		allocs, ok := g.Allocations[p.ID]
		if !ok {
			return nil, domain.ErrValidation(fmt.Sprintf("player %s has no stroke allocation", p.ID))
		}
		copied := make(map[domain.Format]domain.StrokeAllocation, len(allocs))
		for f, a := range allocs {
			copied[f] = a
		}
		sc.Allocations[p.ID] = copied
		if c, ok := g.Scorer[p.ID]; ok {
			sc.Cards[p.ID] = c.Clone()
		} else {
			sc.Cards[p.ID] = &domain.ScoreCard{}
		}
	}
	for hole := 1; hole <= domain.HolesPerRound; hole++ {
		status := g.HoleStatus(hole).Status
		if g.HasVerifier {
			sc.Counted[hole-1] = status == domain.StatusVerified
		} else {
			sc.Counted[hole-1] = status != domain.StatusUnscored
		}
	}
	return sc, nil
}

// PlayerIDs returns player IDs in seating order.
func (s *Scorecard) PlayerIDs() []string {
	ids := make([]string, len(s.Players))
	for i, p := range s.Players {
		ids[i] = p.ID
	}
	return ids
}

// Entry returns a player's entry on a counted hole.
func (s *Scorecard) Entry(playerID string, hole int) (domain.ScoreEntry, bool) {
	if !s.Counted[hole-1] {
		return domain.ScoreEntry{}, false
	}
	c, ok := s.Cards[playerID]
	if !ok {
		return domain.ScoreEntry{}, false
	}
	return c.Entry(hole)
}

// Gross returns a player's gross score on a counted hole. DNF and missing
// entries report false.
func (s *Scorecard) Gross(playerID string, hole int) (int, bool) {
	e, ok := s.Entry(playerID, hole)
	if !ok || !e.Playable() {
		return 0, false
	}
	return *e.Gross, true
}

// NetHalves returns a player's net score on a counted hole in half-stroke
// units, using the player's allocation for format.
func (s *Scorecard) NetHalves(playerID string, hole int, format domain.Format) (int, bool) {
	gross, ok := s.Gross(playerID, hole)
	if !ok {
		return 0, false
	}
	alloc := s.Allocations[playerID][format]
	return alloc.NetHalves(hole, gross), true
}

func (s *Scorecard) requirePlayers(format domain.Format, n int) error {
	if len(s.Players) != n {
		return domain.ErrValidation(fmt.Sprintf("%s needs exactly %d players, group has %d", format, n, len(s.Players)))
	}
	return nil
}

func halvesToStrokes(h int) float64 {
	return float64(h) / 2
}
