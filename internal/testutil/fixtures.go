// Package testutil holds course and group fixtures shared by package tests.
package testutil

import (
	"fmt"
	"time"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/strokes"
)

var (
	pars  = [domain.HolesPerRound]int{4, 5, 3, 4, 4, 3, 4, 5, 4, 4, 3, 5, 4, 4, 3, 4, 5, 4}
	ranks = [domain.HolesPerRound]int{7, 1, 17, 5, 11, 15, 3, 9, 13, 8, 16, 2, 10, 6, 18, 12, 4, 14}
)

// Teebox returns a valid 18-hole teebox. Par 3s are holes 3, 6, 11 and 15.
func Teebox() domain.Teebox {
	t := domain.Teebox{ID: "blue", Name: "Blue"}
	for i := range t.Holes {
		t.Holes[i] = domain.Hole{
			Number:       i + 1,
			Par:          pars[i],
			Yardage:      120 + 20*pars[i] + i,
			HandicapRank: ranks[i],
		}
	}
	return t
}

// HoleWithRank returns the 1-based hole number carrying rank.
func HoleWithRank(rank int) int {
	for i, r := range ranks {
		if r == rank {
			return i + 1
		}
	}
	panic(fmt.Sprintf("no hole with rank %d", rank))
}

// Players returns n scratch players p1..pn. Four-player groups are seated
// p1/p2 in cart A and p3/p4 in cart B, drivers first.
func Players(n int) []domain.GroupPlayer {
	seats := []struct {
		cart domain.Cart
		pos  domain.Position
	}{
		{domain.CartA, domain.PositionDriver},
		{domain.CartA, domain.PositionRider},
		{domain.CartB, domain.PositionDriver},
		{domain.CartB, domain.PositionRider},
	}
	out := make([]domain.GroupPlayer, n)
	for i := range out {
		out[i] = domain.GroupPlayer{
			ID:        fmt.Sprintf("p%d", i+1),
			Name:      fmt.Sprintf("Player %d", i+1),
			SkinsPool: domain.SkinsPoolBoth,
		}
		if n == 4 {
			out[i].Cart = seats[i].cart
			out[i].Position = seats[i].pos
		}
	}
	return out
}

// Group returns a set-up group document with empty cards and allocations for
// every format.
func Group(players []domain.GroupPlayer, cfg domain.GameConfig) *domain.Group {
	g := &domain.Group{
		TournamentID: "t1",
		GroupID:      "g1",
		StartingHole: 1,
		Teebox:       Teebox(),
		Players:      players,
		Config:       cfg,
		Allocations:  make(map[string]map[domain.Format]domain.StrokeAllocation),
		Scorer:       make(map[string]*domain.ScoreCard),
		Verifier:     make(map[string]*domain.ScoreCard),
		CreatedAt:    time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	for _, p := range players {
		alloc, err := strokes.AllocateAll(p, g.Teebox, cfg)
		if err != nil {
			panic(err)
		}
		g.Allocations[p.ID] = alloc
		g.Scorer[p.ID] = &domain.ScoreCard{}
		g.Verifier[p.ID] = &domain.ScoreCard{}
	}
	return g
}

// Gross returns a plain entry with a gross score.
func Gross(v int) domain.ScoreEntry {
	return domain.ScoreEntry{Gross: domain.IntPtr(v)}
}

// DNF returns a did-not-finish entry.
func DNF() domain.ScoreEntry {
	return domain.ScoreEntry{DNF: true}
}

// Score writes gross scores for one hole on the scorer card and marks the hole
// verified, bypassing the ledger.
func Score(g *domain.Group, hole int, gross map[string]int) {
	for id, v := range gross {
		g.Card(domain.ChannelScorer, id).Set(hole, Gross(v))
	}
	g.Verification[hole-1] = domain.HoleVerification{Status: domain.StatusVerified}
}
