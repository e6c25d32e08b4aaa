package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("learnpath")

	m.ObserveAssignment("assigned")
	m.ObserveAssignment("assigned")
	m.ObserveNotification("assignment", false)
	m.ObserveMaterialized("full", 8)
	m.ObserveSchedulerRetry()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Assignments.WithLabelValues("assigned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("assignment", "failed")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.MaterializedRows.WithLabelValues("full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulerRetries))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a := NewMetrics("learnpath")
	b := NewMetrics("learnpath")
	a.ObserveSubmission("completed")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Submissions.WithLabelValues("completed")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAssignment("x")
	m.ObserveHTTP("/", 200, time.Millisecond)
	assert.NotNil(t, m.Handler())
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("learnpath")
	m.ObserveHTTP("/v1/tasks", http.StatusOK, 12*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `learnpath_http_requests_total{code="200",route="/v1/tasks"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
