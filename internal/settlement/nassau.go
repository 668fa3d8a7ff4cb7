package settlement

import (
	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/games"
)

// NassauSegments returns the tallies a match type bets on.
func NassauSegments(r games.NassauResult, matchType domain.NassauMatchType) []int {
	switch matchType {
	case domain.NassauFrontBack:
		return []int{r.Front, r.Back}
	case domain.NassauOverall:
		return []int{r.Overall}
	}
	return []int{r.Front, r.Back, r.Overall}
}

// SettleNassau pays the stake for each bet segment to whoever leads it after
// the round. An all-square segment pays nothing.
func SettleNassau(r games.NassauResult, cfg domain.NassauConfig) Payouts {
	p := Payouts{r.Players[0]: 0, r.Players[1]: 0}
	for _, tally := range NassauSegments(r, cfg.MatchType) {
		leader := r.Leader(tally)
		if leader == "" {
			continue
		}
		for _, id := range r.Players {
			if id == leader {
				p[id] += cfg.Stake
			} else {
				p[id] -= cfg.Stake
			}
		}
	}
	return p
}
