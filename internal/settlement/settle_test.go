package settlement_test

import (
	"testing"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/games"
	"github.com/attaboy/fairway/internal/settlement"
	"github.com/attaboy/fairway/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleNassau(t *testing.T) {
	r := games.NassauResult{Players: [2]string{"a", "b"}, Front: 3, Back: -1, Overall: 0}

	tests := []struct {
		matchType domain.NassauMatchType
		want      settlement.Payouts
	}{
		{domain.NassauAll, settlement.Payouts{"a": 0, "b": 0}},
		{"", settlement.Payouts{"a": 0, "b": 0}},
		{domain.NassauOverall, settlement.Payouts{"a": 0, "b": 0}},
	}
	for _, tt := range tests {
		got := settlement.SettleNassau(r, domain.NassauConfig{MatchType: tt.matchType, Stake: 500})
		assert.Equal(t, tt.want, got, "match type %q", tt.matchType)
	}

	r.Back = 2
	got := settlement.SettleNassau(r, domain.NassauConfig{MatchType: domain.NassauFrontBack, Stake: 500})
	assert.Equal(t, settlement.Payouts{"a": 1000, "b": -1000}, got)

	r.Overall = -4
	got = settlement.SettleNassau(r, domain.NassauConfig{MatchType: domain.NassauAll, Stake: 500})
	assert.Equal(t, settlement.Payouts{"a": 500, "b": -500}, got)
	got = settlement.SettleNassau(r, domain.NassauConfig{MatchType: domain.NassauOverall, Stake: 500})
	assert.Equal(t, settlement.Payouts{"a": -500, "b": 500}, got)
}

func TestSettleNines(t *testing.T) {
	t.Run("full round", func(t *testing.T) {
		r := games.NinesResult{
			Players: []string{"a", "b", "c"},
			Points:  map[string]int{"a": 70, "b": 52, "c": 40},
			Holes:   make([]games.NinesHole, 18),
		}
		got := settlement.SettleNines(r, domain.NinesConfig{AmountPerPoint: 100})
		// 162 points distributed, average 54.
		assert.Equal(t, settlement.Payouts{"a": 1600, "b": -200, "c": -1400}, got)
		assert.Zero(t, got.Total())
	})

	t.Run("partial round stays zero-sum", func(t *testing.T) {
		r := games.NinesResult{
			Players: []string{"a", "b", "c"},
			Points:  map[string]int{"a": 9, "b": 6, "c": 3},
			Holes:   make([]games.NinesHole, 2),
		}
		got := settlement.SettleNines(r, domain.NinesConfig{AmountPerPoint: 25})
		assert.Equal(t, settlement.Payouts{"a": 75, "b": 0, "c": -75}, got)
	})
}

func TestSettleSixes(t *testing.T) {
	r := games.SixesResult{Games: [3]games.SixesGame{
		{Team1: [2]string{"a", "b"}, Team2: [2]string{"c", "d"}, Outcome: games.OutcomeTeam1},
		{Team1: [2]string{"a", "d"}, Team2: [2]string{"b", "c"}, Outcome: games.OutcomeTeam2},
		{Team1: [2]string{"a", "c"}, Team2: [2]string{"b", "d"}, Outcome: games.OutcomeTied},
	}}
	got := settlement.SettleSixes(r, domain.SixesConfig{Stake: 200})
	assert.Equal(t, settlement.Payouts{"a": 0, "b": 400, "c": 0, "d": -400}, got)
	assert.Zero(t, got.Total())
}

func TestSettleSkins(t *testing.T) {
	t.Run("pot split per skin", func(t *testing.T) {
		r := games.SkinsResult{Scratch: games.SkinsPoolResult{
			Members: []string{"a", "b", "c", "d"},
			Skins:   []games.Skin{{Hole: 1, Winner: "a"}, {Hole: 5, Winner: "c"}, {Hole: 9, Winner: "a"}},
			Won:     map[string]int{"a": 2, "b": 0, "c": 1, "d": 0},
		}}
		got := settlement.SettleSkins(r, domain.SkinsConfig{BuyIn: 1000})
		// pot 4000 over 3 skins: 1333 each, 1 cent left over to a.
		assert.Equal(t, settlement.Payouts{"a": 1667, "b": -1000, "c": 333, "d": -1000}, got)
		assert.Zero(t, got.Total())
	})

	t.Run("no skins refunds", func(t *testing.T) {
		r := games.SkinsResult{Handicap: games.SkinsPoolResult{
			Members: []string{"a", "b"},
			Voided:  []int{1, 2},
			Won:     map[string]int{"a": 0, "b": 0},
		}}
		got := settlement.SettleSkins(r, domain.SkinsConfig{BuyIn: 1000})
		assert.Equal(t, settlement.Payouts{"a": 0, "b": 0}, got)
	})

	t.Run("pools add up", func(t *testing.T) {
		pool := games.SkinsPoolResult{
			Members: []string{"a", "b"},
			Skins:   []games.Skin{{Hole: 2, Winner: "b"}},
			Won:     map[string]int{"a": 0, "b": 1},
		}
		got := settlement.SettleSkins(games.SkinsResult{Scratch: pool, Handicap: pool}, domain.SkinsConfig{BuyIn: 300})
		assert.Equal(t, settlement.Payouts{"a": -600, "b": 600}, got)
	})
}

func TestSettleAll_FromScores(t *testing.T) {
	players := testutil.Players(4)
	players[3].CourseHandicap = 18
	cfg := domain.GameConfig{
		Sixes: domain.SixesConfig{Stake: 500},
		Skins: domain.SkinsConfig{BuyIn: 200},
	}
	g := testutil.Group(players, cfg)
	for hole := 1; hole <= 18; hole++ {
		testutil.Score(g, hole, map[string]int{"p1": 4 + hole%2, "p2": 5, "p3": 4, "p4": 5 + hole%3})
	}
	sc, err := games.FromGroup(g)
	require.NoError(t, err)
	sum, err := games.Compute(sc)
	require.NoError(t, err)

	st, err := settlement.SettleAll(sum, cfg)
	require.NoError(t, err)
	require.Len(t, st.ByFormat, 2)
	for f, p := range st.ByFormat {
		assert.Zero(t, p.Total(), "format %s", f)
		assert.Len(t, p, 4)
	}
	assert.Zero(t, st.Net.Total())
	assert.Equal(t, settlement.Combine(st.ByFormat), st.Net)
	assert.Len(t, st.Lines(), 8)

	_, err = settlement.Settle(domain.FormatNassau, sum, cfg)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeValidation))
}

func TestCombine(t *testing.T) {
	got := settlement.Combine(map[domain.Format]settlement.Payouts{
		domain.FormatNassau: {"a": 500, "b": -500},
		domain.FormatSkins:  {"a": -200, "b": 200},
	})
	assert.Equal(t, settlement.Payouts{"a": 300, "b": -300}, got)
}
