// ABOUTME: Prometheus collectors for GraphQL operations, HTTP traffic, and logins
// ABOUTME: Each Metrics owns its registry so tests can create as many as they need

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "deep_thoughts"

// Login failure reasons.
const (
	LoginBadCredentials = "bad_credentials"
	LoginThrottled      = "throttled"
)

// Metrics holds all Prometheus collectors for the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// GraphQL metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	UsersCreated    prometheus.Counter
	ThoughtsCreated prometheus.Counter
	ReactionsAdded  prometheus.Counter
	LoginFailures   *prometheus.CounterVec
}

// New creates collectors registered on a fresh registry, along with the
// standard Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "graphql_operations_total",
				Help:      "Total number of GraphQL operations by name and result code",
			},
			[]string{"operation", "code"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "graphql_operation_duration_seconds",
				Help:      "GraphQL operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		UsersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "users_created_total",
			Help:      "Total number of accounts created",
		}),
		ThoughtsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "thoughts_created_total",
			Help:      "Total number of thoughts posted",
		}),
		ReactionsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reactions_added_total",
			Help:      "Total number of reactions added",
		}),
		LoginFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "login_failures_total",
				Help:      "Total number of rejected login attempts by reason",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		m.Operations,
		m.OperationDuration,
		m.HTTPRequests,
		m.HTTPDuration,
		m.UsersCreated,
		m.ThoughtsCreated,
		m.ReactionsAdded,
		m.LoginFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOperation records one GraphQL operation.
func (m *Metrics) ObserveOperation(operation, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, code).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveHTTP records one HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// UserCreated counts a new account.
func (m *Metrics) UserCreated() {
	if m != nil {
		m.UsersCreated.Inc()
	}
}

// ThoughtCreated counts a new thought.
func (m *Metrics) ThoughtCreated() {
	if m != nil {
		m.ThoughtsCreated.Inc()
	}
}

// ReactionAdded counts a new reaction.
func (m *Metrics) ReactionAdded() {
	if m != nil {
		m.ReactionsAdded.Inc()
	}
}

// LoginFailed counts a rejected login with the given reason.
func (m *Metrics) LoginFailed(reason string) {
	if m != nil {
		m.LoginFailures.WithLabelValues(reason).Inc()
	}
}
