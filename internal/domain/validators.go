package domain

import "fmt"

// HandicapBounds is an inclusive course-handicap range.
type HandicapBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

var (
	// CourseBounds is the range accepted anywhere a course handicap is stored.
	CourseBounds = HandicapBounds{Min: -10, Max: 54}
	// SetupBounds is the narrower range accepted at game setup.
	SetupBounds = HandicapBounds{Min: -10, Max: 50}
)

// ValidateHandicap rejects a course handicap outside b.
func ValidateHandicap(handicap int, b HandicapBounds) error {
	if handicap < b.Min || handicap > b.Max {
		return ErrInvalidHandicap(handicap, b.Min, b.Max)
	}
	return nil
}

// ValidateStartingHole checks the tee a group starts from.
func ValidateStartingHole(hole int) error {
	if hole < 1 || hole > HolesPerRound {
		return ErrValidation(fmt.Sprintf("starting hole %d not in 1..18", hole))
	}
	return nil
}

// ValidateSeating checks the cart/position tags a four-player group needs:
// two carts, each with one driver and one rider.
func ValidateSeating(players []GroupPlayer) error {
	if len(players) != 4 {
		return ErrValidation(fmt.Sprintf("sixes needs 4 players, got %d", len(players)))
	}
	seats := make(map[Cart]map[Position]bool, 2)
	for _, p := range players {
		if p.Cart != CartA && p.Cart != CartB {
			return ErrValidation(fmt.Sprintf("player %s: unknown cart %q", p.ID, p.Cart))
		}
		if p.Position != PositionDriver && p.Position != PositionRider {
			return ErrValidation(fmt.Sprintf("player %s: unknown position %q", p.ID, p.Position))
		}
		if seats[p.Cart] == nil {
			seats[p.Cart] = make(map[Position]bool, 2)
		}
		if seats[p.Cart][p.Position] {
			return ErrValidation(fmt.Sprintf("cart %s has two %ss", p.Cart, p.Position))
		}
		seats[p.Cart][p.Position] = true
	}
	return nil
}
