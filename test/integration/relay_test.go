//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/metrics"
	"github.com/attaboy/fairway/internal/repository"
	"github.com/attaboy/fairway/internal/service"
	"github.com/attaboy/fairway/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	keys   []string
	events []domain.AuditEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, key, value []byte) error {
	var ev domain.AuditEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, string(key))
	p.events = append(p.events, ev)
	return nil
}

func TestEventRelay_PublishesInCommitOrder(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ref := domain.GroupRef{TournamentID: "spring", GroupID: "g1"}
	env.SetupGroup(ref, 2, true, domain.GameConfig{})
	env.SubmitHole(ref, 1, domain.ChannelScorer, map[string]int{"p1": 4, "p2": 5})
	env.SubmitHole(ref, 1, domain.ChannelVerifier, map[string]int{"p1": 4, "p2": 5})
	require.Equal(t, 3, testutil.CountEvents(t, env, ref, true))

	pub := &recordingPublisher{}
	m := metrics.NewMock()
	relay := service.NewEventRelay(env.Pool, repository.NewEventLogRepository(), pub, 0, 2, m, env.Logger)

	ctx := context.Background()
	n, err := relay.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, testutil.CountEvents(t, env, ref, true))

	n, err = relay.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, testutil.CountEvents(t, env, ref, true))

	n, err = relay.Poll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.Len(t, pub.events, 3)
	assert.Equal(t, service.TopicPrefix+string(domain.EventGroupSetup), pub.topics[0])
	assert.Equal(t, domain.ChannelScorer, pub.events[1].Channel)
	assert.Equal(t, domain.ChannelVerifier, pub.events[2].Channel)
	assert.Equal(t, int64(3), pub.events[2].Version)
	for _, k := range pub.keys {
		assert.Equal(t, ref.String(), k)
	}
	assert.Equal(t, 3, m.EventsRelayed())
}
