// ABOUTME: Tests for the Prometheus collectors
// ABOUTME: Verifies counters, the exposition handler, and nil-safety

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveOperation(t *testing.T) {
	m := New()

	m.ObserveOperation("addThought", "OK", 10*time.Millisecond)
	m.ObserveOperation("addThought", "OK", 20*time.Millisecond)
	m.ObserveOperation("login", "INVALID_CREDENTIALS", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("addThought", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("login", "INVALID_CREDENTIALS")))
}

func TestMetrics_BusinessCounters(t *testing.T) {
	m := New()

	m.UserCreated()
	m.ThoughtCreated()
	m.ThoughtCreated()
	m.ReactionAdded()
	m.LoginFailed(LoginThrottled)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UsersCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ThoughtsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReactionsAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginFailures.WithLabelValues(LoginThrottled)))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodPost, "/graphql", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `deep_thoughts_http_requests_total{method="POST",route="/graphql",status="200"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveOperation("me", "OK", time.Millisecond)
		m.ObserveHTTP(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
		m.UserCreated()
		m.ThoughtCreated()
		m.ReactionAdded()
		m.LoginFailed(LoginBadCredentials)
	})
}

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()
	a.UserCreated()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.UsersCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.UsersCreated))
}
