package games

import (
	"sort"

	"github.com/attaboy/fairway/internal/domain"
)

// PointsPerHole is what every scored Nines hole distributes.
const PointsPerHole = 9

// NinesHole is one hole's point split.
type NinesHole struct {
	Hole   int                `json:"hole"`
	Nets   map[string]float64 `json:"nets"`
	Points map[string]int     `json:"points"`
}

// NinesResult holds running point totals.
type NinesResult struct {
	Players []string       `json:"players"`
	Points  map[string]int `json:"points"`
	Holes   []NinesHole    `json:"holes"`
}

// Distributed returns the points handed out so far.
func (r NinesResult) Distributed() int {
	return PointsPerHole * len(r.Holes)
}

// Nines distributes nine points per hole among three players by net rank:
// 5-3-1 for a clear order, 4-4-1 when two share the lead, 5-2-2 when the
// trailing two tie and 3-3-3 when all three tie. A hole missing any player's
// score is skipped.
func Nines(sc *Scorecard) (NinesResult, error) {
	if err := sc.requirePlayers(domain.FormatNines, 3); err != nil {
		return NinesResult{}, err
	}
	ids := sc.PlayerIDs()
	res := NinesResult{Players: ids, Points: make(map[string]int, 3)}
	for _, id := range ids {
		res.Points[id] = 0
	}

	for hole := 1; hole <= domain.HolesPerRound; hole++ {
		nets := make(map[string]int, 3)
		for _, id := range ids {
			n, ok := sc.NetHalves(id, hole, domain.FormatNines)
			if !ok {
				break
			}
			nets[id] = n
		}
		if len(nets) != 3 {
			continue
		}

		points := ninesPoints(ids, nets)
		h := NinesHole{Hole: hole, Nets: make(map[string]float64, 3), Points: points}
		for id, n := range nets {
			h.Nets[id] = halvesToStrokes(n)
			res.Points[id] += points[id]
		}
		res.Holes = append(res.Holes, h)
	}
	return res, nil
}

func ninesPoints(ids []string, nets map[string]int) map[string]int {
	order := append([]string(nil), ids...)
	sort.SliceStable(order, func(i, j int) bool { return nets[order[i]] < nets[order[j]] })
	a, b, c := nets[order[0]], nets[order[1]], nets[order[2]]

	var split [3]int
	switch {
	case a == b && b == c:
		split = [3]int{3, 3, 3}
	case a == b:
		split = [3]int{4, 4, 1}
	case b == c:
		split = [3]int{5, 2, 2}
	default:
		split = [3]int{5, 3, 1}
	}

	out := make(map[string]int, 3)
	for i, id := range order {
		out[id] = split[i]
	}
	return out
}
