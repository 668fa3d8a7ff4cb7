package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds the Prometheus collectors for the scoring engine.
type Service struct {
	HoleUpdates          *prometheus.CounterVec
	UpdateRetries        prometheus.Counter
	UpdateConflicts      prometheus.Counter
	UpdateDuration       prometheus.Histogram
	VerificationOutcomes *prometheus.CounterVec
	Settlements          *prometheus.CounterVec
	EventsRelayed        prometheus.Counter
	CacheLookups         *prometheus.CounterVec
}
