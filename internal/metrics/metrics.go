// Package metrics exposes Prometheus instrumentation for the recommendation core and its API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treerec_actions_total",
			Help: "Total number of user actions by type",
		},
		[]string{"type"}, // SEARCH, SOCIAL_POST, STREAMING, VIEW
	)

	InterestInsertions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "treerec_interest_insertions_total",
			Help: "Total number of accepted interest boosts",
		},
	)

	ItemsSynthesized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treerec_items_synthesized_total",
			Help: "Total number of synthesized items by source",
		},
		[]string{"source"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treerec_search_requests_total",
			Help: "Total number of catalog searches by outcome",
		},
		[]string{"result"}, // "hit", "miss"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "treerec_recommendation_duration_seconds",
			Help:    "Time spent recomputing recommendations",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "treerec_catalog_items",
			Help: "Current number of items in the catalog",
		},
	)

	CatalogImports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treerec_catalog_imports_total",
			Help: "Total number of catalog file imports by status",
		},
		[]string{"status"}, // "success", "error"
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treerec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "treerec_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAction counts one user action.
func RecordAction(actionType string) {
	ActionsTotal.WithLabelValues(actionType).Inc()
}

// RecordSearch counts one catalog search.
func RecordSearch(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	SearchRequests.WithLabelValues(result).Inc()
}

// RecordSynthesis counts one synthesized item.
func RecordSynthesis(source string) {
	ItemsSynthesized.WithLabelValues(source).Inc()
}

// RecordImport counts one catalog file import.
func RecordImport(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	CatalogImports.WithLabelValues(status).Inc()
}

// RecordRecommendation observes one recommendation recomputation.
func RecordRecommendation(duration time.Duration) {
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
