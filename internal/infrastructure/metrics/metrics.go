package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Waves metrics - using explicit registration
var (
	// Search requests by final status
	SearchRequestsTotal *prometheus.CounterVec

	// Outbound fetch attempts by path (proxy/direct) and outcome
	FetchAttemptsTotal *prometheus.CounterVec

	// Outbound fetch latency by path
	FetchDuration *prometheus.HistogramVec

	// Results returned per successful search
	SearchResultsReturned prometheus.Histogram

	// Inbound HTTP traffic
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
)

// init creates and registers all metrics with the default registry
func init() {
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "waves",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"status"},
	)

	FetchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "waves",
			Subsystem: "search",
			Name:      "fetch_attempts_total",
			Help:      "Outbound provider fetch attempts",
		},
		[]string{"path", "outcome"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "waves",
			Subsystem: "search",
			Name:      "fetch_duration_seconds",
			Help:      "Outbound provider fetch duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		},
		[]string{"path"},
	)

	SearchResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "waves",
			Subsystem: "search",
			Name:      "results_returned",
			Help:      "Number of results returned per successful search",
			Buckets:   []float64{0, 1, 2, 5, 10, 15, 20},
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "waves",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "waves",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	collectors := []prometheus.Collector{
		SearchRequestsTotal,
		FetchAttemptsTotal,
		FetchDuration,
		SearchResultsReturned,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	}
	for _, collector := range collectors {
		if err := prometheus.Register(collector); err != nil {
			log.Warn().Err(err).Msg("failed to register metric collector")
		}
	}
}

// RecordFetchAttempt records one outbound attempt.
func RecordFetchAttempt(path, outcome string, durationSeconds float64) {
	FetchAttemptsTotal.WithLabelValues(path, outcome).Inc()
	FetchDuration.WithLabelValues(path).Observe(durationSeconds)
}

// RecordSearch records a finished search. results is ignored for failures.
func RecordSearch(status string, results int) {
	SearchRequestsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		SearchResultsReturned.Observe(float64(results))
	}
}

// RecordHTTPRequest records an inbound HTTP request.
func RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}
