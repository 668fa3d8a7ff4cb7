package metrics

// Metrics decouples the scoring engine from the Prometheus client.
type Metrics interface {
	IncHoleUpdates(channel string)
	IncUpdateRetries()
	IncUpdateConflicts()
	ObserveUpdateDuration(seconds float64)
	IncVerificationOutcome(status string)
	IncSettlements(format string)
	IncEventsRelayed(count int)
	IncCacheLookup(hit bool)
}

// Noop discards everything.
type Noop struct{}

var _ Metrics = Noop{}

func (Noop) IncHoleUpdates(string)         {}
func (Noop) IncUpdateRetries()             {}
func (Noop) IncUpdateConflicts()           {}
func (Noop) ObserveUpdateDuration(float64) {}
func (Noop) IncVerificationOutcome(string) {}
func (Noop) IncSettlements(string)         {}
func (Noop) IncEventsRelayed(int)          {}
func (Noop) IncCacheLookup(bool)           {}
