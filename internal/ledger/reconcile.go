package ledger

import "github.com/attaboy/fairway/internal/domain"

// Discrepancy pairs the two channels' entries for a player whose scorer and
// verifier data disagree.
type Discrepancy struct {
	Scorer   domain.ScoreEntry `json:"scorer"`
	Verifier domain.ScoreEntry `json:"verifier"`
}

// CheckResult is the outcome of evaluating one hole.
type CheckResult struct {
	Hole          int                       `json:"hole"`
	Status        domain.VerificationStatus `json:"status"`
	Discrepancies map[string]Discrepancy    `json:"discrepancies,omitempty"`
}

// Evaluate derives the verification status of the 1-based hole from the
// group's current entries. It depends only on the data present, never on the
// order the channels wrote it, except for the reverify and override flags.
func Evaluate(g *domain.Group, hole int) domain.VerificationStatus {
	scorerAny := false
	for _, id := range g.PlayerIDs() {
		if _, ok := g.Entry(domain.ChannelScorer, id, hole); ok {
			scorerAny = true
			break
		}
	}
	if !scorerAny {
		return domain.StatusUnscored
	}

	v := g.Verification[hole-1]
	if v.Reverify {
		return domain.StatusScorerOnly
	}
	for _, id := range g.PlayerIDs() {
		_, sok := g.Entry(domain.ChannelScorer, id, hole)
		_, vok := g.Entry(domain.ChannelVerifier, id, hole)
		if !sok || !vok {
			return domain.StatusScorerOnly
		}
	}
	if len(Discrepancies(g, hole)) > 0 && !v.Override {
		return domain.StatusDiscrepant
	}
	return domain.StatusVerified
}

// Discrepancies lists the players whose two channels both hold an entry for
// the hole and disagree on any reconciled field.
func Discrepancies(g *domain.Group, hole int) map[string]Discrepancy {
	out := make(map[string]Discrepancy)
	for _, id := range g.PlayerIDs() {
		s, sok := g.Entry(domain.ChannelScorer, id, hole)
		v, vok := g.Entry(domain.ChannelVerifier, id, hole)
		if sok && vok && !s.Equal(v) {
			out[id] = Discrepancy{Scorer: s, Verifier: v}
		}
	}
	return out
}

// Check evaluates one hole without changing anything.
func Check(g *domain.Group, hole int) CheckResult {
	res := CheckResult{Hole: hole, Status: Evaluate(g, hole)}
	if res.Status == domain.StatusDiscrepant {
		res.Discrepancies = Discrepancies(g, hole)
	}
	return res
}

// Summary counts holes per verification status.
func Summary(g *domain.Group) map[domain.VerificationStatus]int {
	out := map[domain.VerificationStatus]int{
		domain.StatusUnscored:   0,
		domain.StatusScorerOnly: 0,
		domain.StatusVerified:   0,
		domain.StatusDiscrepant: 0,
	}
	for hole := 1; hole <= domain.HolesPerRound; hole++ {
		out[g.HoleStatus(hole).Status]++
	}
	return out
}

// MissingEntries returns the players with no entry for the hole on ch.
func MissingEntries(g *domain.Group, ch domain.Channel, hole int) []string {
	var missing []string
	for _, id := range g.PlayerIDs() {
		if _, ok := g.Entry(ch, id, hole); !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// transition updates the verification record after ch wrote to the hole.
// A scorer rewrite of a hole that had reached a decision sends it back to
// scorer-only until the verifier submits again.
func transition(g *domain.Group, hole int, ch domain.Channel, prior domain.VerificationStatus) {
	v := g.Verification[hole-1]
	switch ch {
	case domain.ChannelScorer:
		if prior == domain.StatusVerified || prior == domain.StatusDiscrepant {
			v.Reverify = true
		}
	case domain.ChannelVerifier:
		v.Reverify = false
	}
	v.Override = false
	g.Verification[hole-1] = v
	g.Verification[hole-1].Status = Evaluate(g, hole)
}
