package games

import "github.com/attaboy/fairway/internal/domain"

// NassauHole is one hole that counted toward the match.
type NassauHole struct {
	Hole   int        `json:"hole"`
	Nets   [2]float64 `json:"nets"`
	Winner string     `json:"winner,omitempty"`
}

// NassauResult holds the three independent match tallies. Positive values
// favor Players[0].
type NassauResult struct {
	Players [2]string    `json:"players"`
	Front   int          `json:"front"`
	Back    int          `json:"back"`
	Overall int          `json:"overall"`
	Holes   []NassauHole `json:"holes"`
}

// Leader returns the player ahead in a segment tally, or "" when all square.
func (r NassauResult) Leader(tally int) string {
	switch {
	case tally > 0:
		return r.Players[0]
	case tally < 0:
		return r.Players[1]
	}
	return ""
}

// Nassau scores a two-player match hole by hole on net score. Front (1-9),
// back (10-18) and overall (1-18) are separate matches, so overall is its own
// tally rather than front plus back.
func Nassau(sc *Scorecard) (NassauResult, error) {
	if err := sc.requirePlayers(domain.FormatNassau, 2); err != nil {
		return NassauResult{}, err
	}
	res := NassauResult{Players: [2]string{sc.Players[0].ID, sc.Players[1].ID}}

	for hole := 1; hole <= domain.HolesPerRound; hole++ {
		n1, ok1 := sc.NetHalves(res.Players[0], hole, domain.FormatNassau)
		n2, ok2 := sc.NetHalves(res.Players[1], hole, domain.FormatNassau)
		if !ok1 || !ok2 {
			continue
		}

		h := NassauHole{Hole: hole, Nets: [2]float64{halvesToStrokes(n1), halvesToStrokes(n2)}}
		delta := 0
		switch {
		case n1 < n2:
			delta, h.Winner = 1, res.Players[0]
		case n2 < n1:
			delta, h.Winner = -1, res.Players[1]
		}
		if hole <= 9 {
			res.Front += delta
		} else {
			res.Back += delta
		}
		res.Overall += delta
		res.Holes = append(res.Holes, h)
	}
	return res, nil
}
