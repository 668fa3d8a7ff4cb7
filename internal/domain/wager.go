package domain

import "fmt"

// Format enumerates the four concurrently-running wager formats.
type Format string

const (
	FormatNassau Format = "nassau"
	FormatNines  Format = "nines"
	FormatSixes  Format = "sixes"
	FormatSkins  Format = "skins"
)

// AllFormats lists every format in calculation order.
var AllFormats = []Format{FormatNassau, FormatNines, FormatSixes, FormatSkins}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatNassau, FormatNines, FormatSixes, FormatSkins:
		return true
	}
	return false
}

// NassauMatchType selects which Nassau segments carry a bet.
type NassauMatchType string

const (
	NassauAll       NassauMatchType = "all"
	NassauFrontBack NassauMatchType = "frontback"
	NassauOverall   NassauMatchType = "overall"
)

// NassauConfig holds Nassau stakes. Amounts are integer cents.
type NassauConfig struct {
	MatchType        NassauMatchType `json:"match_type"`
	Stake            int64           `json:"stake"`
	HalfStrokeOnPar3 bool            `json:"half_stroke_on_par3"`
}

// NinesConfig holds Nines stakes.
type NinesConfig struct {
	AmountPerPoint int64 `json:"amount_per_point"`
}

// SixesConfig holds Sixes stakes.
type SixesConfig struct {
	Stake        int64 `json:"stake"`
	DoublePoints bool  `json:"double_points"`
}

// SkinsConfig holds Skins stakes.
type SkinsConfig struct {
	BuyIn            int64 `json:"buy_in"`
	HalfStrokeOnPar3 bool  `json:"half_stroke_on_par3"`
}

// GameConfig is the per-group wager configuration fixed at game setup.
type GameConfig struct {
	Nassau NassauConfig `json:"nassau"`
	Nines  NinesConfig  `json:"nines"`
	Sixes  SixesConfig  `json:"sixes"`
	Skins  SkinsConfig  `json:"skins"`
}

// Validate rejects negative stakes and unknown match types.
func (c GameConfig) Validate() error {
	switch c.Nassau.MatchType {
	case "", NassauAll, NassauFrontBack, NassauOverall:
	default:
		return ErrValidation(fmt.Sprintf("unknown nassau match type %q", c.Nassau.MatchType))
	}
	if c.Nassau.Stake < 0 || c.Nines.AmountPerPoint < 0 || c.Sixes.Stake < 0 || c.Skins.BuyIn < 0 {
		return ErrValidation("stakes must be non-negative")
	}
	return nil
}

// StrokeAllocation is the set of strokes a player receives per hole for one
// format. It is derived at game setup and replaced wholesale if setup reruns.
type StrokeAllocation struct {
	Format  Format              `json:"format"`
	Strokes [HolesPerRound]int  `json:"strokes"`
	Half    [HolesPerRound]bool `json:"half"`
}

// Holes returns the 1-based hole numbers that receive at least one stroke.
func (a StrokeAllocation) Holes() []int {
	var out []int
	for i, s := range a.Strokes {
		if s > 0 {
			out = append(out, i+1)
		}
	}
	return out
}

// Total returns the number of full strokes granted across the round.
func (a StrokeAllocation) Total() int {
	total := 0
	for _, s := range a.Strokes {
		total += s
	}
	return total
}

// StrokeHalves returns the strokes on the 1-based hole in half-stroke units.
func (a StrokeAllocation) StrokeHalves(hole int) int {
	i := hole - 1
	if a.Half[i] {
		return a.Strokes[i]
	}
	return 2 * a.Strokes[i]
}

// NetHalves returns gross minus strokes on the 1-based hole, in half-stroke
// units so half strokes compare exactly.
func (a StrokeAllocation) NetHalves(hole, gross int) int {
	return 2*gross - a.StrokeHalves(hole)
}
