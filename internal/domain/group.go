package domain

import (
	"fmt"
	"time"
)

// GroupRef addresses one group document.
type GroupRef struct {
	TournamentID string `json:"tournament_id"`
	GroupID      string `json:"group_id"`
}

func (r GroupRef) String() string {
	return r.TournamentID + "/" + r.GroupID
}

// VerificationStatus is the reconciliation state of one hole in one group.
type VerificationStatus string

const (
	StatusUnscored   VerificationStatus = "unscored"
	StatusScorerOnly VerificationStatus = "scorer-only"
	StatusVerified   VerificationStatus = "verified"
	StatusDiscrepant VerificationStatus = "discrepant"
)

// HoleVerification is the per-hole verification record. Only the reconciler
// mutates it.
type HoleVerification struct {
	Status   VerificationStatus `json:"status"`
	Override bool               `json:"override,omitempty"`
	Reverify bool               `json:"reverify,omitempty"`
}

// Group is the score ledger document for one group: the only shared mutable
// resource in the engine.
type Group struct {
	TournamentID string                                 `json:"tournament_id"`
	GroupID      string                                 `json:"group_id"`
	Version      int64                                  `json:"version"`
	StartingHole int                                    `json:"starting_hole"`
	HasVerifier  bool                                   `json:"has_verifier"`
	Teebox       Teebox                                 `json:"teebox"`
	Players      []GroupPlayer                          `json:"players"`
	Config       GameConfig                             `json:"config"`
	Allocations  map[string]map[Format]StrokeAllocation `json:"allocations"`
	Scorer       map[string]*ScoreCard                  `json:"scorer"`
	Verifier     map[string]*ScoreCard                  `json:"verifier"`
	Verification [HolesPerRound]HoleVerification        `json:"verification"`
	CreatedAt    time.Time                              `json:"created_at"`
	UpdatedAt    time.Time                              `json:"updated_at"`
}

// Ref returns the group's address.
func (g *Group) Ref() GroupRef {
	return GroupRef{TournamentID: g.TournamentID, GroupID: g.GroupID}
}

// Player returns the player with id.
func (g *Group) Player(id string) (GroupPlayer, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return GroupPlayer{}, false
}

// PlayerIDs returns player IDs in seating order.
func (g *Group) PlayerIDs() []string {
	ids := make([]string, len(g.Players))
	for i, p := range g.Players {
		ids[i] = p.ID
	}
	return ids
}

// Cards returns the score cards for channel.
func (g *Group) Cards(ch Channel) map[string]*ScoreCard {
	if ch == ChannelVerifier {
		return g.Verifier
	}
	return g.Scorer
}

// Card returns the card for (channel, player), creating it if absent.
func (g *Group) Card(ch Channel, playerID string) *ScoreCard {
	cards := g.Cards(ch)
	if cards == nil {
		cards = make(map[string]*ScoreCard)
		if ch == ChannelVerifier {
			g.Verifier = cards
		} else {
			g.Scorer = cards
		}
	}
	c, ok := cards[playerID]
	if !ok {
		c = &ScoreCard{}
		cards[playerID] = c
	}
	return c
}

// Entry returns a player's entry for the 1-based hole from channel.
func (g *Group) Entry(ch Channel, playerID string, hole int) (ScoreEntry, bool) {
	c, ok := g.Cards(ch)[playerID]
	if !ok {
		return ScoreEntry{}, false
	}
	return c.Entry(hole)
}

// HoleStatus returns the verification record for the 1-based hole.
func (g *Group) HoleStatus(hole int) HoleVerification {
	v := g.Verification[hole-1]
	if v.Status == "" {
		v.Status = StatusUnscored
	}
	return v
}

// Clone returns a deep copy so mutators and subscribers never share state.
func (g *Group) Clone() *Group {
	out := *g
	out.Players = append([]GroupPlayer(nil), g.Players...)
	out.Allocations = make(map[string]map[Format]StrokeAllocation, len(g.Allocations))
	for id, byFormat := range g.Allocations {
		m := make(map[Format]StrokeAllocation, len(byFormat))
		for f, a := range byFormat {
			m[f] = a
		}
		out.Allocations[id] = m
	}
	out.Scorer = cloneCards(g.Scorer)
	out.Verifier = cloneCards(g.Verifier)
	return &out
}

func cloneCards(in map[string]*ScoreCard) map[string]*ScoreCard {
	out := make(map[string]*ScoreCard, len(in))
	for id, c := range in {
		out[id] = c.Clone()
	}
	return out
}

// ValidateHole checks a 1-based hole number.
func ValidateHole(hole int) error {
	if hole < 1 || hole > HolesPerRound {
		return ErrValidation(fmt.Sprintf("hole %d not in 1..18", hole))
	}
	return nil
}
