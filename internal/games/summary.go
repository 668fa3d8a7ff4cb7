package games

import (
	"fmt"

	"github.com/attaboy/fairway/internal/domain"
)

// Tally counts a player's side-bet markers on counted holes.
type Tally struct {
	HolesPlayed int `json:"holes_played"`
	Gross       int `json:"gross"`
	Dots        int `json:"dots"`
	Greenies    int `json:"greenies"`
	Sandies     int `json:"sandies"`
}

// Summary is every game the group's size supports, computed from one
// snapshot. Nassau, Nines and Sixes are mutually exclusive by player count.
type Summary struct {
	Version int64            `json:"version"`
	Formats []domain.Format  `json:"formats"`
	Nassau  *NassauResult    `json:"nassau,omitempty"`
	Nines   *NinesResult     `json:"nines,omitempty"`
	Sixes   *SixesResult     `json:"sixes,omitempty"`
	Skins   SkinsResult      `json:"skins"`
	Tallies map[string]Tally `json:"tallies"`
}

// FormatsFor returns the formats a group of n players plays.
func FormatsFor(n int) []domain.Format {
	switch n {
	case 2:
		return []domain.Format{domain.FormatNassau, domain.FormatSkins}
	case 3:
		return []domain.Format{domain.FormatNines, domain.FormatSkins}
	case 4:
		return []domain.Format{domain.FormatSixes, domain.FormatSkins}
	}
	return []domain.Format{domain.FormatSkins}
}

// Compute runs every applicable calculator. It returns no partial summary on
// error.
func Compute(sc *Scorecard) (*Summary, error) {
	sum := &Summary{Version: sc.Version, Formats: FormatsFor(len(sc.Players)), Tallies: Tallies(sc)}
	for _, f := range sum.Formats {
		switch f {
		case domain.FormatNassau:
			r, err := Nassau(sc)
			if err != nil {
				return nil, fmt.Errorf("nassau: %w", err)
			}
			sum.Nassau = &r
		case domain.FormatNines:
			r, err := Nines(sc)
			if err != nil {
				return nil, fmt.Errorf("nines: %w", err)
			}
			sum.Nines = &r
		case domain.FormatSixes:
			r, err := Sixes(sc)
			if err != nil {
				return nil, fmt.Errorf("sixes: %w", err)
			}
			sum.Sixes = &r
		case domain.FormatSkins:
			r, err := Skins(sc)
			if err != nil {
				return nil, fmt.Errorf("skins: %w", err)
			}
			sum.Skins = r
		}
	}
	return sum, nil
}

// Tallies sums gross, dots, greenies and sandies per player.
func Tallies(sc *Scorecard) map[string]Tally {
	out := make(map[string]Tally, len(sc.Players))
	for _, id := range sc.PlayerIDs() {
		var t Tally
		for hole := 1; hole <= domain.HolesPerRound; hole++ {
			e, ok := sc.Entry(id, hole)
			if !ok || !e.Playable() {
				continue
			}
			t.HolesPlayed++
			t.Gross += *e.Gross
			t.Dots += e.Dots
			if e.Greenie {
				t.Greenies++
			}
			if e.Sandy {
				t.Sandies++
			}
		}
		out[id] = t
	}
	return out
}
