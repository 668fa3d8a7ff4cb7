package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/attaboy/fairway/internal/domain"
)

// MemoryStore is an in-process Store. The version check happens under the
// lock but mutators run outside it, so concurrent writers conflict exactly as
// they would against the database.
type MemoryStore struct {
	mu      sync.Mutex
	groups  map[domain.GroupRef]*domain.Group
	events  map[domain.GroupRef][]domain.AuditEvent
	subs    map[domain.GroupRef]map[int]func(*domain.Group)
	nextSub int
	now     func() time.Time

	// beforeCommit runs between the mutator and the version check.
	beforeCommit func(ref domain.GroupRef)
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		groups: make(map[domain.GroupRef]*domain.Group),
		events: make(map[domain.GroupRef][]domain.AuditEvent),
		subs:   make(map[domain.GroupRef]map[int]func(*domain.Group)),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) GetGroup(_ context.Context, ref domain.GroupRef) (*domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[ref]
	if !ok {
		return nil, domain.ErrNotFound("group", ref.String())
	}
	return g.Clone(), nil
}

func (s *MemoryStore) CreateGroup(_ context.Context, g *domain.Group, events []domain.AuditEvent) (*domain.Group, error) {
	ref := g.Ref()
	s.mu.Lock()
	if _, ok := s.groups[ref]; ok {
		s.mu.Unlock()
		return nil, domain.ErrConflict("group " + ref.String() + " already exists")
	}
	stored := g.Clone()
	stored.Version = 1
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.commitLocked(ref, stored, events)
	subs := s.subscribersLocked(ref)
	s.mu.Unlock()

	notify(subs, stored)
	return stored.Clone(), nil
}

func (s *MemoryStore) TransactionalUpdate(_ context.Context, ref domain.GroupRef, mutate Mutator) (*domain.Group, error) {
	s.mu.Lock()
	cur, ok := s.groups[ref]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrNotFound("group", ref.String())
	}
	working := cur.Clone()
	base := cur.Version
	hook := s.beforeCommit
	s.mu.Unlock()

	events, err := mutate(working)
	if err != nil {
		return nil, err
	}
	if hook != nil {
		hook(ref)
	}

	s.mu.Lock()
	if s.groups[ref].Version != base {
		s.mu.Unlock()
		return nil, domain.ErrConcurrentModification
	}
	working.TournamentID, working.GroupID = ref.TournamentID, ref.GroupID
	working.Version = base + 1
	working.UpdatedAt = s.now()
	s.commitLocked(ref, working, events)
	subs := s.subscribersLocked(ref)
	s.mu.Unlock()

	notify(subs, working)
	return working.Clone(), nil
}

// Subscribe delivers the current document (if any) and then every committed
// version until the returned cancel func is called or ctx ends.
func (s *MemoryStore) Subscribe(ctx context.Context, ref domain.GroupRef, fn func(*domain.Group)) (func(), error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[ref] == nil {
		s.subs[ref] = make(map[int]func(*domain.Group))
	}
	s.subs[ref][id] = fn
	var initial *domain.Group
	if g, ok := s.groups[ref]; ok {
		initial = g.Clone()
	}
	s.mu.Unlock()

	if initial != nil {
		fn(initial)
	}

	subCtx, stop := context.WithCancel(ctx)
	var once sync.Once
	remove := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[ref], id)
			if len(s.subs[ref]) == 0 {
				delete(s.subs, ref)
			}
			s.mu.Unlock()
		})
	}
	go func() {
		<-subCtx.Done()
		remove()
	}()
	return func() {
		remove()
		stop()
	}, nil
}

func (s *MemoryStore) ListEvents(_ context.Context, ref domain.GroupRef) ([]domain.AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditEvent(nil), s.events[ref]...), nil
}

func (s *MemoryStore) commitLocked(ref domain.GroupRef, g *domain.Group, events []domain.AuditEvent) {
	for i := range events {
		events[i].Version = g.Version
	}
	s.groups[ref] = g
	s.events[ref] = append(s.events[ref], events...)
}

func (s *MemoryStore) subscribersLocked(ref domain.GroupRef) []func(*domain.Group) {
	out := make([]func(*domain.Group), 0, len(s.subs[ref]))
	for _, fn := range s.subs[ref] {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(*domain.Group), g *domain.Group) {
	for _, fn := range subs {
		fn(g.Clone())
	}
}
