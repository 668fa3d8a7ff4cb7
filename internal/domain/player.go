package domain

// Cart identifies one of the two carts in a four-player group.
type Cart string

const (
	CartA Cart = "A"
	CartB Cart = "B"
)

// Position is a player's seat within a cart.
type Position string

const (
	PositionDriver Position = "driver"
	PositionRider  Position = "rider"
)

// SkinsPool selects which skins pools a player has bought into.
type SkinsPool string

const (
	SkinsPoolNone     SkinsPool = "none"
	SkinsPoolScratch  SkinsPool = "scratch"
	SkinsPoolHandicap SkinsPool = "handicap"
	SkinsPoolBoth     SkinsPool = "both"
)

// Includes reports whether the setting covers pool (scratch or handicap).
func (p SkinsPool) Includes(pool SkinsPool) bool {
	if p == SkinsPoolBoth {
		return pool == SkinsPoolScratch || pool == SkinsPoolHandicap
	}
	return p == pool && p != SkinsPoolNone
}

// GroupPlayer is a player as seated in one group for one tournament.
type GroupPlayer struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CourseHandicap int       `json:"course_handicap"`
	Cart           Cart      `json:"cart,omitempty"`
	Position       Position  `json:"position,omitempty"`
	SkinsPool      SkinsPool `json:"skins_pool"`
}
