package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest_Labels(t *testing.T) {
	before := testutil.ToFloat64(apiRequests.WithLabelValues("get_event", "200"))
	ObserveRequest("get_event", 200, 15*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(apiRequests.WithLabelValues("get_event", "200")))

	beforeErr := testutil.ToFloat64(apiRequests.WithLabelValues("get_event", "transport_error"))
	ObserveRequest("get_event", 0, time.Millisecond)
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(apiRequests.WithLabelValues("get_event", "transport_error")))
}

func TestObserveWorkflowAndStale(t *testing.T) {
	before := testutil.ToFloat64(workflowOutcomes.WithLabelValues("join", "success"))
	ObserveWorkflow("join", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(workflowOutcomes.WithLabelValues("join", "success")))

	beforeStale := testutil.ToFloat64(staleUpdates)
	ObserveStaleUpdate()
	assert.Equal(t, beforeStale+1, testutil.ToFloat64(staleUpdates))
}
