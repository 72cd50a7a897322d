package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters for the livestream controller.
type Metrics struct {
	registry            *prometheus.Registry
	requestsTotal       prometheus.Counter
	errorsTotal         prometheus.Counter
	actionsTotal        *prometheus.CounterVec
	broadcastsCreated   prometheus.Counter
	broadcastsEnded     prometheus.Counter
	playlistAddFailures prometheus.Counter
	credentialRefreshes prometheus.Counter
}

// New creates and registers the controller's metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livestream_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livestream_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livestream_actions_total",
			Help: "Dispatched actions by action name and outcome",
		}, []string{"action", "outcome"}),
		broadcastsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livestream_broadcasts_created_total",
			Help: "Broadcasts created and bound to a fresh ingest stream",
		}),
		broadcastsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livestream_broadcasts_ended_total",
			Help: "Broadcasts transitioned to complete",
		}),
		playlistAddFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livestream_playlist_add_failures_total",
			Help: "Best-effort playlist insertions that failed",
		}),
		credentialRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livestream_credential_refreshes_total",
			Help: "OAuth credential refreshes written back to the blob store",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.actionsTotal,
		m.broadcastsCreated,
		m.broadcastsEnded,
		m.playlistAddFailures,
		m.credentialRefreshes,
	)

	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// ObserveAction records one dispatched action. outcome is "ok", "rejected" or "failed".
func (m *Metrics) ObserveAction(action, outcome string) {
	m.actionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) IncBroadcastsCreated() {
	m.broadcastsCreated.Inc()
}

// AddBroadcastsEnded adds n to the ended counter; n may be zero.
func (m *Metrics) AddBroadcastsEnded(n int) {
	m.broadcastsEnded.Add(float64(n))
}

func (m *Metrics) IncPlaylistAddFailures() {
	m.playlistAddFailures.Inc()
}

// IncCredentialRefreshes matches the credential cache's refresh hook signature.
func (m *Metrics) IncCredentialRefreshes() {
	m.credentialRefreshes.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
