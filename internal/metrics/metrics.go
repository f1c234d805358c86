// Package metrics provides Prometheus metrics for the votekit service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label cardinality stays bounded: method and outcome only, never run IDs or
// candidate names.

var (
	// ElectionsTotal counts completed election runs by method and outcome.
	ElectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votekit_elections_total",
		Help: "Total number of election runs, by method and outcome (ok/error).",
	}, []string{"method", "outcome"})

	// ElectionRounds observes how many rounds a run took to decide.
	ElectionRounds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "votekit_election_rounds",
		Help:    "Number of tabulation rounds per election run, by method.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
	}, []string{"method"})

	// ElectionDuration observes wall-clock tabulation time.
	ElectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "votekit_election_duration_seconds",
		Help:    "Wall-clock duration of election tabulation, by method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// BallotsGeneratedTotal counts synthetic ballots produced by generator model.
	BallotsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votekit_ballots_generated_total",
		Help: "Total number of synthetic ballots generated, by model.",
	}, []string{"model"})

	// SiteConfigValidations counts docs-site config validations by result.
	SiteConfigValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votekit_siteconfig_validations_total",
		Help: "Total number of docs-site configuration validations, by result (ok/invalid/error).",
	}, []string{"result"})

	// HTTPRequestsTotal counts API requests by route, method and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votekit_http_requests_total",
		Help: "Total number of HTTP requests, by route, method and status class.",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration observes API request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "votekit_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// StoredRuns tracks the number of runs currently persisted.
	StoredRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "votekit_stored_runs",
		Help: "Current number of election runs held in the store.",
	})
)

// RecordElection records one finished election run.
func RecordElection(method, outcome string, rounds int, elapsed time.Duration) {
	ElectionsTotal.WithLabelValues(method, outcome).Inc()
	if outcome == "ok" {
		ElectionRounds.WithLabelValues(method).Observe(float64(rounds))
		ElectionDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	}
}

// RecordGenerated records synthetic ballots produced by a generator model.
func RecordGenerated(model string, ballots int) {
	BallotsGeneratedTotal.WithLabelValues(model).Add(float64(ballots))
}

// SetStoredRuns updates the stored-runs gauge to the current store count.
func SetStoredRuns(n int) {
	StoredRuns.Set(float64(n))
}

// RecordSiteConfigValidation records one docs-site config validation.
func RecordSiteConfigValidation(result string) {
	SiteConfigValidations.WithLabelValues(result).Inc()
}
