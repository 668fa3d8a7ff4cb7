package ledger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/metrics"
	"github.com/attaboy/fairway/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRef = domain.GroupRef{TournamentID: "t1", GroupID: "g1"}

func newTestEngine(t *testing.T, players int, cfg Config) (*Engine, *MemoryStore, *metrics.Mock) {
	t.Helper()
	store := NewMemoryStore()
	m := metrics.NewMock()
	e := NewEngine(store, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	_, err := e.SetupGroup(context.Background(), GroupSetup{
		Ref:          testRef,
		StartingHole: 1,
		HasVerifier:  true,
		Teebox:       testutil.Teebox(),
		Players:      testutil.Players(players),
		Actor:        "setup",
	})
	require.NoError(t, err)
	return e, store, m
}

func fastConfig() Config {
	return Config{MaxAttempts: 5, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func write(t *testing.T, e *Engine, hole int, ch domain.Channel, entries map[string]domain.ScoreEntry) *domain.Group {
	t.Helper()
	g, err := e.ApplyHoleUpdate(context.Background(), HoleUpdate{
		Ref: testRef, Hole: hole, Channel: ch, Actor: string(ch), Entries: entries,
	})
	require.NoError(t, err)
	return g
}

func grossAll(ids []string, v int) map[string]domain.ScoreEntry {
	out := make(map[string]domain.ScoreEntry, len(ids))
	for _, id := range ids {
		out[id] = testutil.Gross(v)
	}
	return out
}

func TestApplyHoleUpdate_PreservesSiblings(t *testing.T) {
	e, _, m := newTestEngine(t, 3, fastConfig())

	write(t, e, 1, domain.ChannelScorer, map[string]domain.ScoreEntry{"p1": testutil.Gross(4)})
	write(t, e, 1, domain.ChannelScorer, map[string]domain.ScoreEntry{"p2": testutil.Gross(5)})
	g := write(t, e, 2, domain.ChannelScorer, map[string]domain.ScoreEntry{"p3": testutil.Gross(6)})

	p1, ok := g.Entry(domain.ChannelScorer, "p1", 1)
	require.True(t, ok)
	assert.Equal(t, 4, *p1.Gross)
	p2, ok := g.Entry(domain.ChannelScorer, "p2", 1)
	require.True(t, ok)
	assert.Equal(t, 5, *p2.Gross)
	_, ok = g.Entry(domain.ChannelScorer, "p3", 1)
	assert.False(t, ok)
	_, ok = g.Entry(domain.ChannelVerifier, "p1", 1)
	assert.False(t, ok)

	assert.Equal(t, int64(4), g.Version)
	assert.Equal(t, 3, m.HoleUpdates("scorer"))
}

func TestApplyHoleUpdate_NormalizesDNF(t *testing.T) {
	e, _, _ := newTestEngine(t, 2, fastConfig())

	g := write(t, e, 1, domain.ChannelScorer, map[string]domain.ScoreEntry{
		"p1": {Gross: domain.IntPtr(9), Dots: 2, DNF: true, Greenie: true},
	})
	entry, ok := g.Entry(domain.ChannelScorer, "p1", 1)
	require.True(t, ok)
	assert.Equal(t, domain.ScoreEntry{DNF: true}, entry)
}

func TestApplyHoleUpdate_Rejects(t *testing.T) {
	e, _, _ := newTestEngine(t, 2, fastConfig())
	ctx := context.Background()

	tests := []struct {
		name   string
		update HoleUpdate
		code   string
	}{
		{"hole out of range", HoleUpdate{Ref: testRef, Hole: 19, Channel: domain.ChannelScorer, Entries: grossAll([]string{"p1"}, 4)}, domain.CodeValidation},
		{"unknown channel", HoleUpdate{Ref: testRef, Hole: 1, Channel: "marker", Entries: grossAll([]string{"p1"}, 4)}, domain.CodeValidation},
		{"no entries", HoleUpdate{Ref: testRef, Hole: 1, Channel: domain.ChannelScorer}, domain.CodeValidation},
		{"unknown player", HoleUpdate{Ref: testRef, Hole: 1, Channel: domain.ChannelScorer, Entries: grossAll([]string{"p9"}, 4)}, domain.CodeValidation},
		{"greenie and sandy on par 3", HoleUpdate{Ref: testRef, Hole: 3, Channel: domain.ChannelScorer, Entries: map[string]domain.ScoreEntry{
			"p1": {Gross: domain.IntPtr(3), Greenie: true, Sandy: true},
		}}, domain.CodeValidation},
		{"negative dots", HoleUpdate{Ref: testRef, Hole: 1, Channel: domain.ChannelScorer, Entries: map[string]domain.ScoreEntry{
			"p1": {Gross: domain.IntPtr(4), Dots: -1},
		}}, domain.CodeValidation},
		{"unknown group", HoleUpdate{Ref: domain.GroupRef{TournamentID: "t1", GroupID: "nope"}, Hole: 1, Channel: domain.ChannelScorer, Entries: grossAll([]string{"p1"}, 4)}, domain.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ApplyHoleUpdate(ctx, tt.update)
			require.Error(t, err)
			assert.True(t, domain.HasCode(err, tt.code), "got %v", err)
		})
	}

	g, err := e.Snapshot(ctx, testRef)
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.Version, "rejected updates must not write")
}

func TestGreenieAndSandyAllowedOffPar3(t *testing.T) {
	e, _, _ := newTestEngine(t, 2, fastConfig())
	g := write(t, e, 1, domain.ChannelScorer, map[string]domain.ScoreEntry{
		"p1": {Gross: domain.IntPtr(4), Greenie: true, Sandy: true},
	})
	entry, _ := g.Entry(domain.ChannelScorer, "p1", 1)
	assert.True(t, entry.Greenie)
	assert.True(t, entry.Sandy)
}

func TestVerificationLifecycle(t *testing.T) {
	e, _, _ := newTestEngine(t, 2, fastConfig())
	ctx := context.Background()
	ids := []string{"p1", "p2"}

	status := func() domain.VerificationStatus {
		v, err := e.GetVerificationStatus(ctx, testRef, 5)
		require.NoError(t, err)
		return v.Status
	}

	assert.Equal(t, domain.StatusUnscored, status())

	write(t, e, 5, domain.ChannelScorer, grossAll(ids, 4))
	assert.Equal(t, domain.StatusScorerOnly, status())

	write(t, e, 5, domain.ChannelVerifier, map[string]domain.ScoreEntry{"p1": testutil.Gross(4)})
	assert.Equal(t, domain.StatusScorerOnly, status(), "verifier incomplete")

	write(t, e, 5, domain.ChannelVerifier, map[string]domain.ScoreEntry{"p2": testutil.Gross(4)})
	assert.Equal(t, domain.StatusVerified, status())

	write(t, e, 5, domain.ChannelScorer, map[string]domain.ScoreEntry{"p2": testutil.Gross(5)})
	assert.Equal(t, domain.StatusScorerOnly, status(), "scorer resubmit reverts")

	write(t, e, 5, domain.ChannelVerifier, map[string]domain.ScoreEntry{"p1": testutil.Gross(4)})
	assert.Equal(t, domain.StatusDiscrepant, status())

	diffs, err := e.GetDiscrepancies(ctx, testRef, 5)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, 5, *diffs["p2"].Scorer.Gross)
	assert.Equal(t, 4, *diffs["p2"].Verifier.Gross)

	_, err = e.OverrideDiscrepancy(ctx, testRef, 5, "director")
	require.NoError(t, err)
	v, err := e.GetVerificationStatus(ctx, testRef, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, v.Status)
	assert.True(t, v.Override)

	check, err := e.PerformVerificationCheck(ctx, testRef, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, check.Status)

	write(t, e, 5, domain.ChannelScorer, map[string]domain.ScoreEntry{"p1": testutil.Gross(4)})
	assert.Equal(t, domain.StatusScorerOnly, status(), "override cleared by a new scorer write")
}

func TestVerification_ComparesAllFields(t *testing.T) {
	tests := []struct {
		name     string
		verifier domain.ScoreEntry
		want     domain.VerificationStatus
	}{
		{"identical", domain.ScoreEntry{Gross: domain.IntPtr(4), Dots: 1, Greenie: true}, domain.StatusVerified},
		{"gross differs", domain.ScoreEntry{Gross: domain.IntPtr(5), Dots: 1, Greenie: true}, domain.StatusDiscrepant},
		{"dots differ", domain.ScoreEntry{Gross: domain.IntPtr(4), Dots: 2, Greenie: true}, domain.StatusDiscrepant},
		{"greenie differs", domain.ScoreEntry{Gross: domain.IntPtr(4), Dots: 1}, domain.StatusDiscrepant},
		{"sandy differs", domain.ScoreEntry{Gross: domain.IntPtr(4), Dots: 1, Greenie: true, Sandy: true}, domain.StatusDiscrepant},
		{"dnf differs", domain.ScoreEntry{DNF: true}, domain.StatusDiscrepant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t, 2, fastConfig())
			scorer := domain.ScoreEntry{Gross: domain.IntPtr(4), Dots: 1, Greenie: true}
			write(t, e, 1, domain.ChannelScorer, map[string]domain.ScoreEntry{"p1": scorer, "p2": testutil.Gross(5)})
			g := write(t, e, 1, domain.ChannelVerifier, map[string]domain.ScoreEntry{"p1": tt.verifier, "p2": testutil.Gross(5)})
			assert.Equal(t, tt.want, g.HoleStatus(1).Status)
		})
	}
}

func TestVerification_OrderIndependent(t *testing.T) {
	scorer := map[string]domain.ScoreEntry{"p1": testutil.Gross(4), "p2": testutil.Gross(6)}
	cases := map[string]map[string]domain.ScoreEntry{
		"agree":    {"p1": testutil.Gross(4), "p2": testutil.Gross(6)},
		"disagree": {"p1": testutil.Gross(4), "p2": testutil.Gross(7)},
		"partial":  {"p1": testutil.Gross(4)},
	}
	for name, verifier := range cases {
		t.Run(name, func(t *testing.T) {
			a, _, _ := newTestEngine(t, 2, fastConfig())
			write(t, a, 7, domain.ChannelScorer, scorer)
			ga := write(t, a, 7, domain.ChannelVerifier, verifier)

			b, _, _ := newTestEngine(t, 2, fastConfig())
			write(t, b, 7, domain.ChannelVerifier, verifier)
			gb := write(t, b, 7, domain.ChannelScorer, scorer)

			assert.Equal(t, ga.HoleStatus(7), gb.HoleStatus(7))
		})
	}
}

func TestOverrideDiscrepancy_RequiresDiscrepantHole(t *testing.T) {
	e, _, _ := newTestEngine(t, 2, fastConfig())
	write(t, e, 1, domain.ChannelScorer, grossAll([]string{"p1", "p2"}, 4))

	_, err := e.OverrideDiscrepancy(context.Background(), testRef, 1, "director")
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeConflict))
}

func TestSyncVerifierToScorer(t *testing.T) {
	e, _, _ := newTestEngine(t, 2, fastConfig())
	ctx := context.Background()

	t.Run("incomplete scorer", func(t *testing.T) {
		write(t, e, 2, domain.ChannelScorer, map[string]domain.ScoreEntry{"p1": testutil.Gross(5)})
		_, err := e.SyncVerifierToScorer(ctx, testRef, 2, "director")
		require.Error(t, err)
		assert.True(t, domain.HasCode(err, domain.CodeIncompleteHole))
	})

	t.Run("discrepant hole becomes verified", func(t *testing.T) {
		write(t, e, 2, domain.ChannelScorer, map[string]domain.ScoreEntry{"p2": {Gross: domain.IntPtr(6), Sandy: true}})
		write(t, e, 2, domain.ChannelVerifier, grossAll([]string{"p1", "p2"}, 7))

		g, err := e.SyncVerifierToScorer(ctx, testRef, 2, "director")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusVerified, g.HoleStatus(2).Status)
		assert.False(t, g.HoleStatus(2).Override)

		for _, id := range []string{"p1", "p2"} {
			s, _ := g.Entry(domain.ChannelScorer, id, 2)
			v, ok := g.Entry(domain.ChannelVerifier, id, 2)
			require.True(t, ok)
			assert.True(t, s.Equal(v), id)
		}
	})
}

func TestFinalizeHole(t *testing.T) {
	e, _, _ := newTestEngine(t, 3, fastConfig())
	ctx := context.Background()
	write(t, e, 4, domain.ChannelScorer, map[string]domain.ScoreEntry{"p2": testutil.Gross(4)})

	err := e.FinalizeHole(ctx, testRef, 4, domain.ChannelScorer)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeIncompleteHole))
	assert.Contains(t, err.Error(), "p1, p3")

	write(t, e, 4, domain.ChannelScorer, map[string]domain.ScoreEntry{"p1": testutil.DNF(), "p3": testutil.Gross(5)})
	assert.NoError(t, e.FinalizeHole(ctx, testRef, 4, domain.ChannelScorer))

	err = e.FinalizeHole(ctx, testRef, 4, domain.ChannelVerifier)
	assert.True(t, domain.HasCode(err, domain.CodeIncompleteHole))
}

func TestUpdate_RetriesVersionConflicts(t *testing.T) {
	e, store, m := newTestEngine(t, 2, fastConfig())

	conflicts := 2
	store.beforeCommit = func(ref domain.GroupRef) {
		if conflicts == 0 {
			return
		}
		conflicts--
		bumpVersion(store, ref)
	}

	g := write(t, e, 1, domain.ChannelScorer, map[string]domain.ScoreEntry{"p1": testutil.Gross(4)})
	assert.Equal(t, 2, m.Retries())
	assert.Equal(t, 0, m.Conflicts())
	_, ok := g.Entry(domain.ChannelScorer, "p1", 1)
	assert.True(t, ok)

	events, err := e.Events(context.Background(), testRef)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventHoleUpdated, events[1].Type)
}

func TestUpdate_ConflictExhaustion(t *testing.T) {
	e, store, m := newTestEngine(t, 2, fastConfig())

	attempts := 0
	store.beforeCommit = func(ref domain.GroupRef) {
		attempts++
		bumpVersion(store, ref)
	}

	_, err := e.ApplyHoleUpdate(context.Background(), HoleUpdate{
		Ref: testRef, Hole: 1, Channel: domain.ChannelScorer, Entries: grossAll([]string{"p1"}, 4),
	})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodePersistenceConflict))
	assert.True(t, domain.IsTransient(err))
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, 5, attempts)
	assert.Equal(t, 1, m.Conflicts())

	store.beforeCommit = nil
	g, err := e.Snapshot(context.Background(), testRef)
	require.NoError(t, err)
	_, ok := g.Entry(domain.ChannelScorer, "p1", 1)
	assert.False(t, ok, "nothing written after exhaustion")
}

func TestUpdate_MutatorErrorIsNotRetried(t *testing.T) {
	e, store, m := newTestEngine(t, 2, fastConfig())
	calls := 0
	store.beforeCommit = func(domain.GroupRef) { calls++ }

	_, err := e.OverrideDiscrepancy(context.Background(), testRef, 1, "director")
	require.Error(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, m.Retries())
}

func TestApplyHoleUpdate_ConcurrentWritersLoseNothing(t *testing.T) {
	e, _, _ := newTestEngine(t, 4, Config{MaxAttempts: 200, InitialBackoff: 100 * time.Microsecond, MaxBackoff: 2 * time.Millisecond})
	ids := []string{"p1", "p2", "p3", "p4"}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			for hole := 1; hole <= domain.HolesPerRound; hole++ {
				_, err := e.ApplyHoleUpdate(context.Background(), HoleUpdate{
					Ref: testRef, Hole: hole, Channel: domain.ChannelScorer, Actor: id,
					Entries: map[string]domain.ScoreEntry{id: testutil.Gross(3 + i)},
				})
				assert.NoError(t, err)
			}
		}(i, id)
	}
	wg.Wait()

	g, err := e.Snapshot(context.Background(), testRef)
	require.NoError(t, err)
	assert.Equal(t, int64(1+4*domain.HolesPerRound), g.Version)
	for i, id := range ids {
		for hole := 1; hole <= domain.HolesPerRound; hole++ {
			entry, ok := g.Entry(domain.ChannelScorer, id, hole)
			require.True(t, ok, "%s hole %d", id, hole)
			assert.Equal(t, 3+i, *entry.Gross)
		}
	}
}

func TestSubscribe(t *testing.T) {
	e, _, _ := newTestEngine(t, 2, fastConfig())
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	var (
		mu       sync.Mutex
		versions []int64
	)
	cancel, err := e.Subscribe(ctx, testRef, func(g *domain.Group) {
		mu.Lock()
		defer mu.Unlock()
		versions = append(versions, g.Version)
	})
	require.NoError(t, err)

	write(t, e, 1, domain.ChannelScorer, grossAll([]string{"p1"}, 4))
	cancel()
	write(t, e, 2, domain.ChannelScorer, grossAll([]string{"p1"}, 4))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{1, 2}, versions)
}

func TestSubscribe_CancelReleasesWatcher(t *testing.T) {
	e, store, _ := newTestEngine(t, 2, fastConfig())
	baseline := runtime.NumGoroutine()

	for i := 0; i < 100; i++ {
		cancel, err := e.Subscribe(context.Background(), testRef, func(*domain.Group) {})
		require.NoError(t, err)
		cancel()
	}

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline+2
	}, time.Second, 10*time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.subs)
}

func TestSetupGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid handicap writes nothing", func(t *testing.T) {
		store := NewMemoryStore()
		e := NewEngine(store, fastConfig(), nil, nil)
		players := testutil.Players(2)
		players[1].CourseHandicap = 51

		_, err := e.SetupGroup(ctx, GroupSetup{Ref: testRef, Teebox: testutil.Teebox(), Players: players})
		require.Error(t, err)
		assert.True(t, domain.HasCode(err, domain.CodeInvalidHandicap))

		_, err = store.GetGroup(ctx, testRef)
		assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	})

	t.Run("duplicate handicap rank", func(t *testing.T) {
		e := NewEngine(NewMemoryStore(), fastConfig(), nil, nil)
		teebox := testutil.Teebox()
		teebox.Holes[1].HandicapRank = teebox.Holes[0].HandicapRank

		_, err := e.SetupGroup(ctx, GroupSetup{Ref: testRef, Teebox: teebox, Players: testutil.Players(2)})
		assert.True(t, domain.HasCode(err, domain.CodeDuplicateHandicapRank))
	})

	t.Run("four players need seating", func(t *testing.T) {
		e := NewEngine(NewMemoryStore(), fastConfig(), nil, nil)
		players := testutil.Players(4)
		players[3].Position = domain.PositionDriver

		_, err := e.SetupGroup(ctx, GroupSetup{Ref: testRef, Teebox: testutil.Teebox(), Players: players})
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
	})

	t.Run("redo replaces allocations and keeps cards", func(t *testing.T) {
		e, _, _ := newTestEngine(t, 2, fastConfig())
		write(t, e, 1, domain.ChannelScorer, grossAll([]string{"p1", "p2"}, 4))

		players := testutil.Players(2)
		players[0].CourseHandicap = 10
		g, err := e.SetupGroup(ctx, GroupSetup{Ref: testRef, StartingHole: 10, HasVerifier: true, Teebox: testutil.Teebox(), Players: players})
		require.NoError(t, err)

		assert.Equal(t, 10, g.StartingHole)
		assert.Equal(t, 10, g.Allocations["p1"][domain.FormatNassau].Total())
		_, ok := g.Entry(domain.ChannelScorer, "p1", 1)
		assert.True(t, ok)
		assert.Equal(t, domain.StatusScorerOnly, g.HoleStatus(1).Status)
	})

	t.Run("redo cannot drop a scored player", func(t *testing.T) {
		e, store, _ := newTestEngine(t, 3, fastConfig())
		write(t, e, 1, domain.ChannelVerifier, grossAll([]string{"p3"}, 5))

		_, err := e.SetupGroup(ctx, GroupSetup{Ref: testRef, HasVerifier: true, Teebox: testutil.Teebox(), Players: testutil.Players(2)})
		require.Error(t, err)
		assert.True(t, domain.HasCode(err, domain.CodeConflict))

		g, err := store.GetGroup(ctx, testRef)
		require.NoError(t, err)
		assert.Len(t, g.Players, 3)
		entry, ok := g.Entry(domain.ChannelVerifier, "p3", 1)
		require.True(t, ok)
		assert.Equal(t, 5, *entry.Gross)
	})

	t.Run("redo can drop an unscored player", func(t *testing.T) {
		e, _, _ := newTestEngine(t, 3, fastConfig())
		write(t, e, 1, domain.ChannelScorer, grossAll([]string{"p1"}, 4))

		g, err := e.SetupGroup(ctx, GroupSetup{Ref: testRef, HasVerifier: true, Teebox: testutil.Teebox(), Players: testutil.Players(2)})
		require.NoError(t, err)
		assert.Len(t, g.Players, 2)
		assert.NotContains(t, g.Scorer, "p3")
	})
}

func TestVerificationSummary(t *testing.T) {
	e, _, _ := newTestEngine(t, 2, fastConfig())
	ids := []string{"p1", "p2"}
	write(t, e, 1, domain.ChannelScorer, grossAll(ids, 4))
	write(t, e, 1, domain.ChannelVerifier, grossAll(ids, 4))
	write(t, e, 2, domain.ChannelScorer, grossAll(ids, 4))
	write(t, e, 3, domain.ChannelScorer, grossAll(ids, 3))
	write(t, e, 3, domain.ChannelVerifier, grossAll(ids, 4))

	summary, err := e.VerificationSummary(context.Background(), testRef)
	require.NoError(t, err)
	assert.Equal(t, 1, summary[domain.StatusVerified])
	assert.Equal(t, 1, summary[domain.StatusScorerOnly])
	assert.Equal(t, 1, summary[domain.StatusDiscrepant])
	assert.Equal(t, 15, summary[domain.StatusUnscored])
}

func bumpVersion(s *MemoryStore, ref domain.GroupRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.groups[ref].Clone()
	g.Version++
	s.groups[ref] = g
}
