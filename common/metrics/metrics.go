package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_client_api_requests_total",
			Help: "Calls made to the event service",
		},
		[]string{"operation", "status"},
	)

	apiLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_client_api_request_duration_seconds",
			Help:    "Latency of calls made to the event service",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	workflowOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_client_workflow_outcomes_total",
			Help: "Delete and join workflow outcomes",
		},
		[]string{"action", "outcome"},
	)

	pageLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_client_page_loads_total",
			Help: "Event detail loads by final status",
		},
		[]string{"status"},
	)

	staleUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "event_client_stale_updates_discarded_total",
			Help: "Fetch results dropped because the page moved to another event",
		},
	)
)

// ObserveRequest records one outbound call. status 0 means no response was received.
func ObserveRequest(operation string, status int, elapsed time.Duration) {
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	apiRequests.WithLabelValues(operation, label).Inc()
	apiLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveWorkflow records a delete/join outcome
func ObserveWorkflow(action, outcome string) {
	workflowOutcomes.WithLabelValues(action, outcome).Inc()
}

// ObservePageLoad records how a detail load finished
func ObservePageLoad(status string) {
	pageLoads.WithLabelValues(status).Inc()
}

// ObserveStaleUpdate records a discarded late response
func ObserveStaleUpdate() {
	staleUpdates.Inc()
}
