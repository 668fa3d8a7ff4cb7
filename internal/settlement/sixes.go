package settlement

import (
	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/games"
)

// SettleSixes pays the stake per sub-game: every member of the winning team
// collects it from a member of the losing team. Tied games pay nothing.
func SettleSixes(r games.SixesResult, cfg domain.SixesConfig) Payouts {
	p := make(Payouts, 4)
	first := r.Games[0]
	for _, id := range append(first.Team1[:], first.Team2[:]...) {
		p[id] = 0
	}
	for _, g := range r.Games {
		var winners, losers [2]string
		switch g.Outcome {
		case games.OutcomeTeam1:
			winners, losers = g.Team1, g.Team2
		case games.OutcomeTeam2:
			winners, losers = g.Team2, g.Team1
		default:
			continue
		}
		for i := range winners {
			p[winners[i]] += cfg.Stake
			p[losers[i]] -= cfg.Stake
		}
	}
	return p
}
