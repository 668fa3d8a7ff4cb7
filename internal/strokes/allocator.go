// Package strokes allocates handicap strokes to holes. Everything here is a
// pure function of its inputs.
package strokes

import (
	"fmt"
	"sort"

	"github.com/attaboy/fairway/internal/domain"
)

// Rules are the per-format allocation rules.
type Rules struct {
	Format           domain.Format
	Bounds           domain.HandicapBounds
	HalfStrokeOnPar3 bool
}

// RulesFor returns the allocation rules cfg implies for format.
func RulesFor(format domain.Format, cfg domain.GameConfig) Rules {
	r := Rules{Format: format, Bounds: domain.SetupBounds}
	switch format {
	case domain.FormatNassau:
		r.HalfStrokeOnPar3 = cfg.Nassau.HalfStrokeOnPar3
	case domain.FormatSkins:
		r.HalfStrokeOnPar3 = cfg.Skins.HalfStrokeOnPar3
	}
	return r
}

// Allocate spreads courseHandicap over the teebox: every hole gets
// handicap/18 strokes and the handicap%18 hardest holes (lowest rank) get one
// more. Plus handicaps receive nothing.
func Allocate(courseHandicap int, teebox domain.Teebox, rules Rules) (domain.StrokeAllocation, error) {
	alloc := domain.StrokeAllocation{Format: rules.Format}
	if err := domain.ValidateHandicap(courseHandicap, rules.Bounds); err != nil {
		return alloc, err
	}
	if err := teebox.CheckComplete(); err != nil {
		return alloc, err
	}
	if courseHandicap <= 0 {
		return alloc, nil
	}

	base := courseHandicap / domain.HolesPerRound
	extra := courseHandicap % domain.HolesPerRound
	for i := range alloc.Strokes {
		alloc.Strokes[i] = base
	}
	for _, i := range hardestFirst(teebox)[:extra] {
		alloc.Strokes[i]++
	}

	if rules.HalfStrokeOnPar3 {
		for i, h := range teebox.Holes {
			if h.Par == 3 && alloc.Strokes[i] > 0 {
				alloc.Half[i] = true
			}
		}
	}
	return alloc, nil
}

// AllocateAll computes one allocation per format for a player.
func AllocateAll(player domain.GroupPlayer, teebox domain.Teebox, cfg domain.GameConfig) (map[domain.Format]domain.StrokeAllocation, error) {
	out := make(map[domain.Format]domain.StrokeAllocation, len(domain.AllFormats))
	for _, f := range domain.AllFormats {
		a, err := Allocate(player.CourseHandicap, teebox, RulesFor(f, cfg))
		if err != nil {
			return nil, fmt.Errorf("allocate %s for player %s: %w", f, player.ID, err)
		}
		out[f] = a
	}
	return out, nil
}

// hardestFirst returns hole indexes ordered by ascending handicap rank.
func hardestFirst(teebox domain.Teebox) []int {
	idx := make([]int, domain.HolesPerRound)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return teebox.Holes[idx[a]].HandicapRank < teebox.Holes[idx[b]].HandicapRank
	})
	return idx
}
