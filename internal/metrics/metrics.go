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

// Metrics holds all Prometheus metrics for the application.
// Its recording methods are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
	UsersRegistered      *prometheus.CounterVec
	AuthFailures         prometheus.Counter
	MilestoneEvaluations *prometheus.CounterVec
	CommentsRejected     prometheus.Counter
	EmailsSent           *prometheus.CounterVec
}

// New creates all metrics on a private registry, plus the Go and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "growtrack_http_requests_total",
			Help: "Total number of HTTP requests, labeled by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "growtrack_http_request_duration_seconds",
			Help:    "Latency of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		UsersRegistered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "growtrack_users_registered_total",
			Help: "Total number of users registered, labeled by provider",
		}, []string{"provider"}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "growtrack_auth_failures_total",
			Help: "Total number of failed logins and rejected tokens",
		}),
		MilestoneEvaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "growtrack_milestone_evaluations_total",
			Help: "Total number of milestones created or updated, labeled by resulting status",
		}, []string{"status"}),
		CommentsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "growtrack_moderation_rejections_total",
			Help: "Total number of topics and comments rejected by the word filter",
		}),
		EmailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "growtrack_emails_sent_total",
			Help: "Total number of emails sent, labeled by kind and outcome",
		}, []string{"kind", "outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncrementUsersRegistered counts a new account by sign-up provider
func (m *Metrics) IncrementUsersRegistered(provider string) {
	if m == nil {
		return
	}
	m.UsersRegistered.WithLabelValues(provider).Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	if m == nil {
		return
	}
	m.AuthFailures.Inc()
}

// ObserveMilestoneStatus counts one saved milestone by its status
func (m *Metrics) ObserveMilestoneStatus(status string) {
	if m == nil {
		return
	}
	m.MilestoneEvaluations.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementModerationRejections() {
	if m == nil {
		return
	}
	m.CommentsRejected.Inc()
}

// ObserveEmail counts a welcome or share email by outcome ("sent", "failed", "skipped")
func (m *Metrics) ObserveEmail(kind, outcome string) {
	if m == nil {
		return
	}
	m.EmailsSent.WithLabelValues(kind, outcome).Inc()
}
