//go:build integration

package integration

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/handler"
	"github.com/attaboy/fairway/internal/repository"
	"github.com/attaboy/fairway/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nassau500 = domain.GameConfig{Nassau: domain.NassauConfig{Stake: 500}}

// ─── Ledger ────────────────────────────────────────────────────────────────

func TestSetup_PersistsVersionOne(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ref := domain.GroupRef{TournamentID: "spring", GroupID: "g1"}
	env.SetupGroup(ref, 2, true, nassau500)

	testutil.AssertGroupVersion(t, env, ref, 1)
	assert.Equal(t, 1, testutil.CountEvents(t, env, ref, false))

	resp := env.GET(testutil.GroupPath(ref))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var g domain.Group
	testutil.DecodeJSON(t, resp, &g)
	assert.Equal(t, []string{"p1", "p2"}, g.PlayerIDs())
	assert.Equal(t, domain.StatusUnscored, g.HoleStatus(1).Status)
}

func TestSubmitHole_UnknownGroup(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ref := domain.GroupRef{TournamentID: "spring", GroupID: "missing"}
	resp := env.PUT(testutil.GroupPath(ref)+"/holes/1/scorer", handler.HoleRequest{
		Actor:   "device",
		Entries: map[string]domain.ScoreEntry{"p1": {Gross: domain.IntPtr(4)}},
	})
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	testutil.AssertErrorCode(t, resp, domain.CodeNotFound)
}

func TestSubmitHole_VersionAndEventPerWrite(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ref := domain.GroupRef{TournamentID: "spring", GroupID: "g1"}
	env.SetupGroup(ref, 2, false, nassau500)

	res := env.SubmitHole(ref, 1, domain.ChannelScorer, map[string]int{"p1": 4, "p2": 5})
	assert.Equal(t, int64(2), res.Version)
	assert.Equal(t, domain.StatusScorerOnly, res.Verification.Status)

	res = env.SubmitHole(ref, 2, domain.ChannelScorer, map[string]int{"p1": 3, "p2": 3})
	assert.Equal(t, int64(3), res.Version)

	testutil.AssertGroupVersion(t, env, ref, 3)
	assert.Equal(t, 3, testutil.CountEvents(t, env, ref, false))
}

func TestConcurrentWriters_AllCommit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ref := domain.GroupRef{TournamentID: "spring", GroupID: "g4"}
	env.SetupGroup(ref, 4, false, domain.GameConfig{})

	var wg sync.WaitGroup
	for hole := 1; hole <= 4; hole++ {
		wg.Add(1)
		go func(hole int) {
			defer wg.Done()
			env.SubmitHole(ref, hole, domain.ChannelScorer, map[string]int{"p1": 4, "p2": 4, "p3": 5, "p4": 3})
		}(hole)
	}
	wg.Wait()

	testutil.AssertGroupVersion(t, env, ref, 5)
	assert.Equal(t, 5, testutil.CountEvents(t, env, ref, false))

	resp := env.GET(testutil.GroupPath(ref))
	var g domain.Group
	testutil.DecodeJSON(t, resp, &g)
	for hole := 1; hole <= 4; hole++ {
		e, ok := g.Entry(domain.ChannelScorer, "p4", hole)
		require.True(t, ok, "hole %d", hole)
		assert.Equal(t, 3, *e.Gross)
	}
}

// ─── Verification ──────────────────────────────────────────────────────────

func TestVerification_DiscrepancyThenSync(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ref := domain.GroupRef{TournamentID: "spring", GroupID: "g1"}
	env.SetupGroup(ref, 2, true, nassau500)

	env.SubmitHole(ref, 1, domain.ChannelScorer, map[string]int{"p1": 4, "p2": 5})
	res := env.SubmitHole(ref, 1, domain.ChannelVerifier, map[string]int{"p1": 4, "p2": 6})
	assert.Equal(t, domain.StatusDiscrepant, res.Verification.Status)

	resp := env.POST(testutil.GroupPath(ref)+"/holes/1/verification/sync", handler.ActorRequest{Actor: "committee"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &res)
	assert.Equal(t, domain.StatusVerified, res.Verification.Status)

	resp = env.GET(testutil.GroupPath(ref))
	var g domain.Group
	testutil.DecodeJSON(t, resp, &g)
	e, ok := g.Entry(domain.ChannelVerifier, "p2", 1)
	require.True(t, ok)
	assert.Equal(t, 5, *e.Gross)
}

func TestVerification_OverrideRequiresDiscrepancy(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ref := domain.GroupRef{TournamentID: "spring", GroupID: "g1"}
	env.SetupGroup(ref, 2, true, nassau500)
	env.SubmitHole(ref, 1, domain.ChannelScorer, map[string]int{"p1": 4, "p2": 5})

	resp := env.POST(testutil.GroupPath(ref)+"/holes/1/verification/override", handler.ActorRequest{Actor: "committee"})
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, domain.CodeConflict)
}

// ─── Settlement ────────────────────────────────────────────────────────────

func TestSettlement_RecordedOncePerVersion(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ref := domain.GroupRef{TournamentID: "spring", GroupID: "g1"}
	env.SetupGroup(ref, 2, false, nassau500)
	env.SubmitHole(ref, 1, domain.ChannelScorer, map[string]int{"p1": 3, "p2": 4})

	for i := 0; i < 2; i++ {
		resp := env.GET(testutil.GroupPath(ref) + "/settlement")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var st handler.SettlementResponse
		testutil.DecodeJSON(t, resp, &st)
		assert.Equal(t, int64(1000), st.Net["p1"])
		assert.Equal(t, int64(-1000), st.Net["p2"])
	}

	ctx := context.Background()
	var records int
	require.NoError(t, env.Pool.QueryRow(ctx,
		"SELECT COUNT(DISTINCT id) FROM wager_settlements WHERE tournament_id = $1 AND group_id = $2",
		ref.TournamentID, ref.GroupID).Scan(&records))
	assert.Equal(t, 1, records)

	latest, err := repository.NewSettlementRepository().Latest(ctx, env.Pool, ref)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(2), latest.GroupVersion)

	var total int64
	for _, l := range latest.Lines {
		total += l.Amount
	}
	assert.Zero(t, total)

	env.SubmitHole(ref, 2, domain.ChannelScorer, map[string]int{"p1": 4, "p2": 4})
	resp := env.GET(testutil.GroupPath(ref) + "/settlement")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	latest, err = repository.NewSettlementRepository().Latest(ctx, env.Pool, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest.GroupVersion)
}

func TestSettlement_ConcurrentRequestsRecordOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ref := domain.GroupRef{TournamentID: "spring", GroupID: "g2"}
	env.SetupGroup(ref, 2, false, nassau500)
	env.SubmitHole(ref, 1, domain.ChannelScorer, map[string]int{"p1": 3, "p2": 4})

	const callers = 8
	statuses := make(chan int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(env.Server.URL + testutil.GroupPath(ref) + "/settlement")
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)
	for code := range statuses {
		assert.Equal(t, http.StatusOK, code)
	}

	ctx := context.Background()
	var records, lines int
	require.NoError(t, env.Pool.QueryRow(ctx,
		"SELECT COUNT(DISTINCT id), COUNT(*) FROM wager_settlements WHERE tournament_id = $1 AND group_id = $2",
		ref.TournamentID, ref.GroupID).Scan(&records, &lines))
	assert.Equal(t, 1, records)
	assert.Equal(t, 2, lines)
}

func TestSettlementRepository_InsertIsAtomicPerVersion(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ref := domain.GroupRef{TournamentID: "spring", GroupID: "g3"}
	env.SetupGroup(ref, 2, false, nassau500)

	ctx := context.Background()
	repo := repository.NewSettlementRepository()
	rec := func(amount int64) *domain.SettlementRecord {
		return &domain.SettlementRecord{
			ID:           uuid.New(),
			TournamentID: ref.TournamentID,
			GroupID:      ref.GroupID,
			GroupVersion: 1,
			Lines: []domain.SettlementLine{
				{Format: domain.FormatNassau, PlayerID: "p1", Amount: amount},
				{Format: domain.FormatNassau, PlayerID: "p2", Amount: -amount},
			},
			CreatedAt: time.Now().UTC(),
		}
	}

	first := rec(500)
	inserted, err := repo.Insert(ctx, env.Pool, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(ctx, env.Pool, rec(700))
	require.NoError(t, err)
	assert.False(t, inserted)

	latest, err := repo.Latest(ctx, env.Pool, ref)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, first.ID, latest.ID)
	require.Len(t, latest.Lines, 2)

	// The second line collides with the first, so the first is rolled back.
	broken := rec(300)
	broken.GroupVersion = 2
	broken.Lines[1] = broken.Lines[0]
	inserted, err = repo.Insert(ctx, env.Pool, broken)
	require.NoError(t, err)
	assert.False(t, inserted)

	var rows int
	require.NoError(t, env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM wager_settlements WHERE id = $1", broken.ID).Scan(&rows))
	assert.Zero(t, rows)
}
