// internal/monitor/monitor.go

// Package monitor exposes service metrics in Prometheus format. Collectors
// register against a private registry so multiple instances (tests, the
// server) never collide.
package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by the HTTP middleware and the match
// lifecycle.
type Metrics struct {
	registry *prometheus.Registry

	MatchesCreated  prometheus.Counter
	MatchesFinished prometheus.Counter
	CardsPlayed     prometheus.Counter
	Escobas         prometheus.Counter
	QueueJoins      prometheus.Counter
	QueuePairings   prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPDuration prometheus.Histogram
}

// NewMetrics builds and registers all collectors under the given namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Total number of matches created",
		}),
		MatchesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finished_total",
			Help:      "Total number of matches finished",
		}),
		CardsPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cards_played_total",
			Help:      "Total number of cards played, CPU moves included",
		}),
		Escobas: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escobas_total",
			Help:      "Total number of escobas scored",
		}),
		QueueJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matchmaking_joins_total",
			Help:      "Total number of matchmaking join requests",
		}),
		QueuePairings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matchmaking_pairings_total",
			Help:      "Total number of matchmaking pairings made",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status",
		}, []string{"method", "status"}),
		HTTPDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request handling latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.MatchesCreated,
		m.MatchesFinished,
		m.CardsPlayed,
		m.Escobas,
		m.QueueJoins,
		m.QueuePairings,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler returns the exposition endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
