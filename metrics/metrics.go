// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	votes             *prometheus.CounterVec
	reprocessRuns     *prometheus.CounterVec
	reprocessDuration prometheus.Histogram
	requestDuration   *prometheus.HistogramVec
	rateLimited       prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		votes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quickly_rank_votes_total",
				Help: "Votes accepted, by voting format.",
			},
			[]string{"format"},
		),
		reprocessRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quickly_rank_reprocess_total",
				Help: "Full pairwise recomputations, by trigger and outcome.",
			},
			[]string{"trigger", "status"},
		),
		reprocessDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quickly_rank_reprocess_duration_seconds",
				Help:    "Time spent replaying a poll's comparison log.",
				Buckets: prometheus.DefBuckets,
			},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quickly_rank_http_request_duration_seconds",
				Help:    "HTTP request latency, by route and status code.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "code"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "quickly_rank_rate_limited_total",
				Help: "Requests rejected by the per-client rate limiter.",
			},
		),
	}
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) VoteRecorded(format string) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(format).Inc()
}

// Reprocessed records one full recomputation. trigger is "cadence", "manual"
// or "startup".
func (m *Metrics) Reprocessed(trigger string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.reprocessRuns.WithLabelValues(trigger, status).Inc()
	m.reprocessDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, strconv.Itoa(code)).Observe(d.Seconds())
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
