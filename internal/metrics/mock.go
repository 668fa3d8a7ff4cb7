package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu            sync.Mutex
	holeUpdates   map[string]int
	retries       int
	conflicts     int
	durations     []float64
	outcomes      map[string]int
	settlements   map[string]int
	eventsRelayed int
	cacheHits     int
	cacheMisses   int
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		holeUpdates: make(map[string]int),
		outcomes:    make(map[string]int),
		settlements: make(map[string]int),
	}
}

func (m *Mock) IncHoleUpdates(channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holeUpdates[channel]++
}

func (m *Mock) IncUpdateRetries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}

func (m *Mock) IncUpdateConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

func (m *Mock) ObserveUpdateDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations = append(m.durations, seconds)
}

func (m *Mock) IncVerificationOutcome(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[status]++
}

func (m *Mock) IncSettlements(format string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlements[format]++
}

func (m *Mock) IncEventsRelayed(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsRelayed += count
}

func (m *Mock) IncCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
}

// HoleUpdates returns the committed updates recorded for channel.
func (m *Mock) HoleUpdates(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holeUpdates[channel]
}

// Retries returns the number of recorded retries.
func (m *Mock) Retries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retries
}

// Conflicts returns the number of exhausted updates.
func (m *Mock) Conflicts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conflicts
}

// Durations returns the observed update durations.
func (m *Mock) Durations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.durations...)
}

// Outcomes returns how often status was reached.
func (m *Mock) Outcomes(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[status]
}

// Settlements returns the settlements recorded for format.
func (m *Mock) Settlements(format string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settlements[format]
}

// EventsRelayed returns the number of relayed events.
func (m *Mock) EventsRelayed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsRelayed
}

// CacheLookups returns hit and miss counts.
func (m *Mock) CacheLookups() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheHits, m.cacheMisses
}
