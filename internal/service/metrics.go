package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transition kinds counted by Metrics.Transitions.
const (
	transitionSubmitted  = "submitted"
	transitionAccepted   = "accepted"
	transitionSuperseded = "superseded"
	transitionDeclined   = "declined"
	transitionNegotiated = "negotiated"
)

type Metrics struct {
	Transitions         *prometheus.CounterVec
	AcceptConflicts     prometheus.Counter
	AcceptDuration      prometheus.Histogram
	EnrichmentFallbacks prometheus.Counter
}

// NewMetrics registers the service collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "funding",
			Subsystem: "bid",
			Name:      "transitions_total",
			Help:      "Bid lifecycle events by kind.",
		}, []string{"kind"}),
		AcceptConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "funding",
			Subsystem: "bid",
			Name:      "accept_conflicts_total",
			Help:      "Accept requests refused because the bid changed concurrently.",
		}),
		AcceptDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "funding",
			Subsystem: "bid",
			Name:      "accept_duration_seconds",
			Help:      "Latency of the accept protocol.",
			Buckets:   prometheus.DefBuckets,
		}),
		EnrichmentFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "funding",
			Subsystem: "query",
			Name:      "startup_name_fallbacks_total",
			Help:      "Bids shown with the placeholder startup name.",
		}),
	}
}

func (m *Metrics) transition(kind string, n int) {
	m.Transitions.WithLabelValues(kind).Add(float64(n))
}
