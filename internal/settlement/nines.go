package settlement

import (
	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/games"
)

// SettleNines pays each player (points - average) * amount per point. The
// average is a third of the points distributed, 54 over a full round, so the
// result is zero-sum on partial rounds too.
func SettleNines(r games.NinesResult, cfg domain.NinesConfig) Payouts {
	average := int64(r.Distributed() / len(r.Players))
	p := make(Payouts, len(r.Players))
	for _, id := range r.Players {
		p[id] = (int64(r.Points[id]) - average) * cfg.AmountPerPoint
	}
	return p
}
