package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		HoleUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairway_hole_updates_total",
			Help: "Committed hole submissions by channel.",
		}, []string{"channel"}),
		UpdateRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fairway_ledger_update_retries_total",
			Help: "Group updates retried after a version conflict.",
		}),
		UpdateConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fairway_ledger_update_conflicts_total",
			Help: "Group updates abandoned after exhausting retries.",
		}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fairway_ledger_update_duration_seconds",
			Help:    "Duration of a group update including retries.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		VerificationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairway_verification_outcomes_total",
			Help: "Hole verification statuses reached after a write.",
		}, []string{"status"}),
		Settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairway_settlements_total",
			Help: "Settlements computed by format.",
		}, []string{"format"}),
		EventsRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fairway_events_relayed_total",
			Help: "Audit events published to the message bus.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairway_view_cache_lookups_total",
			Help: "Game view cache lookups by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		s.HoleUpdates,
		s.UpdateRetries,
		s.UpdateConflicts,
		s.UpdateDuration,
		s.VerificationOutcomes,
		s.Settlements,
		s.EventsRelayed,
		s.CacheLookups,
	)

	return s
}

func (s *Service) IncHoleUpdates(channel string) {
	s.HoleUpdates.WithLabelValues(channel).Inc()
}

func (s *Service) IncUpdateRetries() {
	s.UpdateRetries.Inc()
}

func (s *Service) IncUpdateConflicts() {
	s.UpdateConflicts.Inc()
}

func (s *Service) ObserveUpdateDuration(seconds float64) {
	s.UpdateDuration.Observe(seconds)
}

func (s *Service) IncVerificationOutcome(status string) {
	s.VerificationOutcomes.WithLabelValues(status).Inc()
}

func (s *Service) IncSettlements(format string) {
	s.Settlements.WithLabelValues(format).Inc()
}

func (s *Service) IncEventsRelayed(count int) {
	s.EventsRelayed.Add(float64(count))
}

func (s *Service) IncCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	s.CacheLookups.WithLabelValues(result).Inc()
}
