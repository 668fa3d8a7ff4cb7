package games

import "github.com/attaboy/fairway/internal/domain"

// Skin is a hole won outright in one pool.
type Skin struct {
	Hole   int     `json:"hole"`
	Winner string  `json:"winner"`
	Score  float64 `json:"score"`
}

// SkinsPoolResult is one pool's outcome.
type SkinsPoolResult struct {
	Pool    domain.SkinsPool `json:"pool"`
	Members []string         `json:"members"`
	Skins   []Skin           `json:"skins"`
	Voided  []int            `json:"voided"`
	Won     map[string]int   `json:"won"`
}

// SkinsResult holds both pools. A pool with fewer than two members has no
// contest and stays empty.
type SkinsResult struct {
	Scratch  SkinsPoolResult `json:"scratch"`
	Handicap SkinsPoolResult `json:"handicap"`
}

// Skins awards each hole, per pool, to the single strictly-lowest score:
// gross in the scratch pool, net in the handicap pool. Any tie for lowest
// voids the hole and nothing carries over. A hole is skipped while any member
// has no entry; a DNF member simply cannot win it.
func Skins(sc *Scorecard) (SkinsResult, error) {
	return SkinsResult{
		Scratch:  skinsPool(sc, domain.SkinsPoolScratch),
		Handicap: skinsPool(sc, domain.SkinsPoolHandicap),
	}, nil
}

func skinsPool(sc *Scorecard, pool domain.SkinsPool) SkinsPoolResult {
	res := SkinsPoolResult{Pool: pool, Won: make(map[string]int)}
	for _, p := range sc.Players {
		if p.SkinsPool.Includes(pool) {
			res.Members = append(res.Members, p.ID)
			res.Won[p.ID] = 0
		}
	}
	if len(res.Members) < 2 {
		return res
	}

	for hole := 1; hole <= domain.HolesPerRound; hole++ {
		scores, complete := poolScores(sc, res.Members, hole, pool)
		if !complete || len(scores) == 0 {
			continue
		}

		winner, best, tied := "", 0, false
		for _, id := range res.Members {
			s, ok := scores[id]
			if !ok {
				continue
			}
			switch {
			case winner == "" || s < best:
				winner, best, tied = id, s, false
			case s == best:
				tied = true
			}
		}
		if tied {
			res.Voided = append(res.Voided, hole)
			continue
		}
		res.Skins = append(res.Skins, Skin{Hole: hole, Winner: winner, Score: halvesToStrokes(best)})
		res.Won[winner]++
	}
	return res
}

// poolScores returns the playable scores (in half strokes) of the pool's
// members on a hole, and whether every member has an entry there.
func poolScores(sc *Scorecard, members []string, hole int, pool domain.SkinsPool) (map[string]int, bool) {
	scores := make(map[string]int, len(members))
	for _, id := range members {
		e, ok := sc.Entry(id, hole)
		if !ok {
			return nil, false
		}
		if !e.Playable() {
			continue
		}
		if pool == domain.SkinsPoolScratch {
			scores[id] = 2 * *e.Gross
		} else {
			n, _ := sc.NetHalves(id, hole, domain.FormatSkins)
			scores[id] = n
		}
	}
	return scores, true
}
