package games

import (
	"fmt"

	"github.com/attaboy/fairway/internal/domain"
)

// HolesPerSixesGame is the length of each rotating sub-game.
const HolesPerSixesGame = 6

// Outcome is a sub-game result reduced to who won it.
type Outcome string

const (
	OutcomeTeam1 Outcome = "team1"
	OutcomeTeam2 Outcome = "team2"
	OutcomeTied  Outcome = "tied"
)

// SixesHole is one hole that counted toward a sub-game.
type SixesHole struct {
	Hole    int     `json:"hole"`
	Team1   float64 `json:"team1_net"`
	Team2   float64 `json:"team2_net"`
	Points1 float64 `json:"points1"`
	Points2 float64 `json:"points2"`
}

// SixesGame is one six-hole team match.
type SixesGame struct {
	Number       int         `json:"number"`
	Holes        []int       `json:"holes"`
	Team1        [2]string   `json:"team1"`
	Team2        [2]string   `json:"team2"`
	Points1      float64     `json:"points1"`
	Points2      float64     `json:"points2"`
	Differential float64     `json:"differential"`
	Outcome      Outcome     `json:"outcome"`
	Scored       []SixesHole `json:"scored"`
}

// SixesResult holds the three sub-games in play order.
type SixesResult struct {
	Games [3]SixesGame `json:"games"`
}

// SixesHoles returns the hole numbers of sub-game 1..3 for a group starting
// on startingHole, wrapping past 18.
func SixesHoles(startingHole, game int) []int {
	holes := make([]int, HolesPerSixesGame)
	first := startingHole - 1 + (game-1)*HolesPerSixesGame
	for i := range holes {
		holes[i] = (first+i)%domain.HolesPerRound + 1
	}
	return holes
}

type seating struct {
	aDriver, aRider, bDriver, bRider string
}

func seat(players []domain.GroupPlayer) (seating, error) {
	if err := domain.ValidateSeating(players); err != nil {
		return seating{}, err
	}
	var s seating
	for _, p := range players {
		switch {
		case p.Cart == domain.CartA && p.Position == domain.PositionDriver:
			s.aDriver = p.ID
		case p.Cart == domain.CartA:
			s.aRider = p.ID
		case p.Position == domain.PositionDriver:
			s.bDriver = p.ID
		default:
			s.bRider = p.ID
		}
	}
	return s, nil
}

// teams returns the pairing for sub-game 1..3: carts, then cross-cart, then
// drivers against riders.
func (s seating) teams(game int) ([2]string, [2]string) {
	switch game {
	case 1:
		return [2]string{s.aDriver, s.aRider}, [2]string{s.bDriver, s.bRider}
	case 2:
		return [2]string{s.aDriver, s.bRider}, [2]string{s.aRider, s.bDriver}
	default:
		return [2]string{s.aDriver, s.bDriver}, [2]string{s.aRider, s.bRider}
	}
}

// Sixes plays three six-hole better-ball matches with rotating partners. The
// lower team net wins the hole's point value; a tie splits it. A hole where
// either team has no score is skipped.
func Sixes(sc *Scorecard) (SixesResult, error) {
	if err := sc.requirePlayers(domain.FormatSixes, 4); err != nil {
		return SixesResult{}, err
	}
	s, err := seat(sc.Players)
	if err != nil {
		return SixesResult{}, fmt.Errorf("sixes seating: %w", err)
	}
	value := 1.0
	if sc.Config.Sixes.DoublePoints {
		value = 2.0
	}

	var res SixesResult
	for game := 1; game <= 3; game++ {
		g := SixesGame{Number: game, Holes: SixesHoles(sc.StartingHole, game)}
		g.Team1, g.Team2 = s.teams(game)

		for _, hole := range g.Holes {
			t1, ok1 := betterBall(sc, g.Team1, hole)
			t2, ok2 := betterBall(sc, g.Team2, hole)
			if !ok1 || !ok2 {
				continue
			}
			h := SixesHole{Hole: hole, Team1: halvesToStrokes(t1), Team2: halvesToStrokes(t2)}
			switch {
			case t1 < t2:
				h.Points1 = value
			case t2 < t1:
				h.Points2 = value
			default:
				h.Points1, h.Points2 = value/2, value/2
			}
			g.Points1 += h.Points1
			g.Points2 += h.Points2
			g.Scored = append(g.Scored, h)
		}

		g.Differential = g.Points1 - g.Points2
		switch {
		case g.Differential > 0:
			g.Outcome = OutcomeTeam1
		case g.Differential < 0:
			g.Outcome = OutcomeTeam2
		default:
			g.Outcome = OutcomeTied
		}
		res.Games[game-1] = g
	}
	return res, nil
}

func betterBall(sc *Scorecard, team [2]string, hole int) (int, bool) {
	best, found := 0, false
	for _, id := range team {
		n, ok := sc.NetHalves(id, hole, domain.FormatSixes)
		if ok && (!found || n < best) {
			best, found = n, true
		}
	}
	return best, found
}
