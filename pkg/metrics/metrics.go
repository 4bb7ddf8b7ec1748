package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Clone job metrics
	CloneJobsTotal      *prometheus.CounterVec
	CloneJobDuration    *prometheus.HistogramVec
	CloneJobsInProgress prometheus.Gauge
	ObjectsCreated      *prometheus.CounterVec
	ObjectsFailed       *prometheus.CounterVec

	// Graph API metrics
	GraphAPICalls    *prometheus.CounterVec
	GraphAPIDuration *prometheus.HistogramVec
	GraphAPIFailures *prometheus.CounterVec
	GraphAPIRetries  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		CloneJobsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clone_jobs_total",
				Help: "Total number of campaign clone attempts per destination account",
			},
			[]string{"status", "strategy"},
		),

		CloneJobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clone_job_duration_seconds",
				Help:    "Campaign clone duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"strategy"},
		),

		CloneJobsInProgress: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "clone_jobs_in_progress",
				Help: "Number of clone jobs currently in progress",
			},
		),

		ObjectsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clone_objects_created_total",
				Help: "Total number of remote objects created by the recreation pipeline",
			},
			[]string{"object_type"},
		),

		ObjectsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clone_objects_failed_total",
				Help: "Total number of remote object creations that failed",
			},
			[]string{"object_type", "stage"},
		),

		GraphAPICalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graph_api_calls_total",
				Help: "Total number of Graph API calls",
			},
			[]string{"method", "status"},
		),

		GraphAPIDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "graph_api_duration_seconds",
				Help:    "Graph API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		GraphAPIFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graph_api_failures_total",
				Help: "Total number of Graph API failures",
			},
			[]string{"method", "error_type"},
		),

		GraphAPIRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graph_api_retries_total",
				Help: "Total number of Graph API rate-limit retries",
			},
			[]string{"method"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Clone job metrics
func (m *Metrics) RecordCloneJob(status, strategy string, duration time.Duration) {
	m.CloneJobsTotal.WithLabelValues(status, strategy).Inc()
	m.CloneJobDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// Created object metrics
func (m *Metrics) RecordObjectCreated(objectType string) {
	m.ObjectsCreated.WithLabelValues(objectType).Inc()
}

// Failed object metrics
func (m *Metrics) RecordObjectFailure(objectType, stage string) {
	m.ObjectsFailed.WithLabelValues(objectType, stage).Inc()
}

// Graph API call metrics
func (m *Metrics) RecordGraphAPICall(method, status string, duration time.Duration) {
	m.GraphAPICalls.WithLabelValues(method, status).Inc()
	m.GraphAPIDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Graph API failure metrics
func (m *Metrics) RecordGraphAPIFailure(method, errorType string) {
	m.GraphAPIFailures.WithLabelValues(method, errorType).Inc()
}

// Graph API retry metrics
func (m *Metrics) RecordGraphAPIRetry(method string) {
	m.GraphAPIRetries.WithLabelValues(method).Inc()
}

// Clone jobs in progress counter
func (m *Metrics) IncCloneJobsInProgress() {
	m.CloneJobsInProgress.Inc()
}

// Clone jobs in progress counter
func (m *Metrics) DecCloneJobsInProgress() {
	m.CloneJobsInProgress.Dec()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
