package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the interview platform.
type Metrics struct {
	registry *prometheus.Registry

	LiveSessionsActive prometheus.Gauge
	LiveSessionsTotal  *prometheus.CounterVec

	TurnsTotal *prometheus.CounterVec

	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec

	AudioChunksTotal *prometheus.CounterVec
	SummariesTotal   *prometheus.CounterVec
}

// New creates a Metrics instance with every collector registered on its own
// registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "parley"
	}

	registry := prometheus.NewRegistry()

	liveSessionsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions_active",
			Help:      "Number of interviews currently live",
		},
	)

	liveSessionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_sessions_total",
			Help:      "Total finalized interviews by reason",
		},
		[]string{"reason"},
	)

	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total transcript turns by speaker",
		},
		[]string{"speaker"},
	)

	providerRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total model provider calls",
		},
		[]string{"provider", "op", "status"},
	)

	providerRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Model provider call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "op"},
	)

	audioChunksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_chunks_total",
			Help:      "Audio chunk outcomes",
		},
		[]string{"result"},
	)

	summariesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Finalization summary outcomes",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(
		liveSessionsActive,
		liveSessionsTotal,
		turnsTotal,
		providerRequestsTotal,
		providerRequestDuration,
		audioChunksTotal,
		summariesTotal,
	)

	return &Metrics{
		registry:                registry,
		LiveSessionsActive:      liveSessionsActive,
		LiveSessionsTotal:       liveSessionsTotal,
		TurnsTotal:              turnsTotal,
		ProviderRequestsTotal:   providerRequestsTotal,
		ProviderRequestDuration: providerRequestDuration,
		AudioChunksTotal:        audioChunksTotal,
		SummariesTotal:          summariesTotal,
	}
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSessionStart marks one more interview live.
func (m *Metrics) RecordSessionStart() {
	m.LiveSessionsActive.Inc()
}

// RecordSessionEnd marks an interview finalized.
func (m *Metrics) RecordSessionEnd(reason string) {
	m.LiveSessionsActive.Dec()
	m.LiveSessionsTotal.WithLabelValues(reason).Inc()
}

// RecordTurn counts one transcript turn.
func (m *Metrics) RecordTurn(speaker string) {
	m.TurnsTotal.WithLabelValues(speaker).Inc()
}

// RecordProviderRequest records one model provider call.
func (m *Metrics) RecordProviderRequest(provider, op, status string, duration time.Duration) {
	m.ProviderRequestsTotal.WithLabelValues(provider, op, status).Inc()
	m.ProviderRequestDuration.WithLabelValues(provider, op).Observe(duration.Seconds())
}

// RecordChunk records an audio chunk outcome.
func (m *Metrics) RecordChunk(result string) {
	m.AudioChunksTotal.WithLabelValues(result).Inc()
}

// RecordSummary records a finalization summary outcome.
func (m *Metrics) RecordSummary(outcome string) {
	m.SummariesTotal.WithLabelValues(outcome).Inc()
}
