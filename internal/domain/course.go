package domain

import "fmt"

// HolesPerRound is the fixed length of every per-hole array in the engine.
const HolesPerRound = 18

// Hole is immutable once its teebox is set up.
type Hole struct {
	Number       int `json:"number"`
	Par          int `json:"par"`
	Yardage      int `json:"yardage"`
	HandicapRank int `json:"handicap_rank"`
}

// Teebox holds the 18 holes of one set of tees, indexed 0..17.
type Teebox struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	Holes [HolesPerRound]Hole `json:"holes"`
}

// Validate is the course-setup integrity check: pars, yardages and a
// handicap-rank permutation of 1..18.
func (t Teebox) Validate() error {
	if err := t.CheckComplete(); err != nil {
		return err
	}
	seen := make(map[int]bool, HolesPerRound)
	for i, h := range t.Holes {
		if h.Par < 3 || h.Par > 5 {
			return ErrValidation(fmt.Sprintf("hole %d: par %d not in 3..5", i+1, h.Par))
		}
		if h.Yardage <= 0 {
			return ErrValidation(fmt.Sprintf("hole %d: yardage must be positive", i+1))
		}
		if h.HandicapRank < 1 || h.HandicapRank > HolesPerRound {
			return ErrValidation(fmt.Sprintf("hole %d: handicap rank %d not in 1..18", i+1, h.HandicapRank))
		}
		if seen[h.HandicapRank] {
			return ErrDuplicateHandicapRank(h.HandicapRank)
		}
		seen[h.HandicapRank] = true
	}
	return nil
}

// CheckComplete rejects a teebox whose par or handicap data is absent. It is
// the scoring-time guard; calculators never default missing values.
func (t Teebox) CheckComplete() error {
	for i, h := range t.Holes {
		if h.Par == 0 {
			return ErrMissingCourseData(fmt.Sprintf("teebox %q: hole %d has no par", t.ID, i+1))
		}
		if h.HandicapRank == 0 {
			return ErrMissingCourseData(fmt.Sprintf("teebox %q: hole %d has no handicap rank", t.ID, i+1))
		}
	}
	return nil
}

// Hole returns the hole with the 1-based number n.
func (t Teebox) Hole(n int) Hole {
	return t.Holes[n-1]
}
