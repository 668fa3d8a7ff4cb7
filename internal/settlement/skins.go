package settlement

import (
	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/games"
)

// SettleSkins settles both pools. In each pool every member pays the buy-in
// and the pot is divided evenly per skin won. Leftover cents go one at a time
// to winners in seating order. A pool with no skins returns every buy-in.
func SettleSkins(r games.SkinsResult, cfg domain.SkinsConfig) Payouts {
	p := make(Payouts)
	p.add(settlePool(r.Scratch, cfg.BuyIn))
	p.add(settlePool(r.Handicap, cfg.BuyIn))
	return p
}

func settlePool(pool games.SkinsPoolResult, buyIn int64) Payouts {
	p := make(Payouts, len(pool.Members))
	for _, id := range pool.Members {
		p[id] = 0
	}
	skins := int64(len(pool.Skins))
	if skins == 0 || buyIn == 0 {
		return p
	}

	pot := buyIn * int64(len(pool.Members))
	perSkin, remainder := pot/skins, pot%skins
	for _, id := range pool.Members {
		p[id] = int64(pool.Won[id])*perSkin - buyIn
	}
	for remainder > 0 {
		for _, id := range pool.Members {
			if remainder == 0 {
				break
			}
			if pool.Won[id] > 0 {
				p[id]++
				remainder--
			}
		}
	}
	return p
}
