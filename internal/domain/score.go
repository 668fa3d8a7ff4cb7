package domain

import "fmt"

// Channel is one of the two independent data-entry roles in a group.
type Channel string

const (
	ChannelScorer   Channel = "scorer"
	ChannelVerifier Channel = "verifier"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelScorer || c == ChannelVerifier
}

// ScoreEntry is one player's entry for one hole from one channel.
type ScoreEntry struct {
	Gross   *int `json:"gross"`
	Dots    int  `json:"dots"`
	DNF     bool `json:"dnf"`
	Greenie bool `json:"greenie"`
	Sandy   bool `json:"sandy"`
}

// Normalize resets every scored field when the player did not finish.
func (e ScoreEntry) Normalize() ScoreEntry {
	if e.DNF {
		return ScoreEntry{DNF: true}
	}
	return e
}

// Validate checks an entry against the par of the hole it is recorded on.
func (e ScoreEntry) Validate(par int) error {
	if e.Dots < 0 {
		return fmt.Errorf("dots bonus must be non-negative, got %d", e.Dots)
	}
	if e.Gross != nil && *e.Gross <= 0 {
		return fmt.Errorf("gross score must be positive, got %d", *e.Gross)
	}
	if par == 3 && e.Greenie && e.Sandy {
		return fmt.Errorf("greenie and sandy are exclusive on a par 3")
	}
	return nil
}

// Equal compares the five reconciled fields. Greenie and sandy compare by
// presence only.
func (e ScoreEntry) Equal(o ScoreEntry) bool {
	if (e.Gross == nil) != (o.Gross == nil) {
		return false
	}
	if e.Gross != nil && *e.Gross != *o.Gross {
		return false
	}
	return e.Dots == o.Dots && e.DNF == o.DNF && e.Greenie == o.Greenie && e.Sandy == o.Sandy
}

// Playable reports whether the entry carries a gross score that can count in
// a game.
func (e ScoreEntry) Playable() bool {
	return !e.DNF && e.Gross != nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// ScoreCard holds one player's entries from one channel as per-hole arrays
// indexed 0..17, which is also the persisted layout.
type ScoreCard struct {
	Entered [HolesPerRound]bool `json:"entered"`
	Gross   [HolesPerRound]*int `json:"gross"`
	Dots    [HolesPerRound]int  `json:"dots"`
	DNF     [HolesPerRound]bool `json:"dnf"`
	Greenie [HolesPerRound]bool `json:"greenie"`
	Sandy   [HolesPerRound]bool `json:"sandy"`
}

// Entry returns the entry for the 1-based hole and whether one was recorded.
func (c *ScoreCard) Entry(hole int) (ScoreEntry, bool) {
	i := hole - 1
	if !c.Entered[i] {
		return ScoreEntry{}, false
	}
	e := ScoreEntry{Dots: c.Dots[i], DNF: c.DNF[i], Greenie: c.Greenie[i], Sandy: c.Sandy[i]}
	if c.Gross[i] != nil {
		e.Gross = IntPtr(*c.Gross[i])
	}
	return e, true
}

// Set records e (normalized) for the 1-based hole.
func (c *ScoreCard) Set(hole int, e ScoreEntry) {
	e = e.Normalize()
	i := hole - 1
	c.Entered[i] = true
	c.Gross[i] = nil
	if e.Gross != nil {
		c.Gross[i] = IntPtr(*e.Gross)
	}
	c.Dots[i] = e.Dots
	c.DNF[i] = e.DNF
	c.Greenie[i] = e.Greenie
	c.Sandy[i] = e.Sandy
}

// Clone returns a deep copy.
func (c *ScoreCard) Clone() *ScoreCard {
	out := *c
	for i, g := range c.Gross {
		if g != nil {
			out.Gross[i] = IntPtr(*g)
		}
	}
	return &out
}

// Clear removes the entry for the 1-based hole.
func (c *ScoreCard) Clear(hole int) {
	i := hole - 1
	c.Entered[i] = false
	c.Gross[i] = nil
	c.Dots[i] = 0
	c.DNF[i] = false
	c.Greenie[i] = false
	c.Sandy[i] = false
}
