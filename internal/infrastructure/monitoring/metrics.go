package monitoring

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nutriplan"

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	pipelineRunsTotal     *prometheus.CounterVec
	pipelineDuration      prometheus.Histogram
	stageDuration         *prometheus.HistogramVec
	stageFailuresTotal    *prometheus.CounterVec
	materializedTotal     *prometheus.CounterVec
	notificationsTotal    *prometheus.CounterVec
	shoppingMutationTotal *prometheus.CounterVec

	// Cache metrics
	cacheLookupsTotal *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		pipelineRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Plan materialization runs by outcome",
			},
			[]string{"status"},
		),
		pipelineDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_duration_seconds",
				Help:      "Duration of a full materialization run",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_stage_duration_seconds",
				Help:      "Duration of one pipeline stage",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		stageFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_row_failures_total",
				Help:      "Rows skipped by a pipeline stage",
			},
			[]string{"stage"},
		),
		materializedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "materialized_records_total",
				Help:      "Records created or reused by the pipeline",
			},
			[]string{"kind", "outcome"},
		),
		notificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Plan notifications by outcome",
			},
			[]string{"status"},
		),
		shoppingMutationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shopping_item_mutations_total",
				Help:      "Shopping list item mutations by operation and outcome",
			},
			[]string{"operation", "status"},
		),

		cacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by cache name and result",
			},
			[]string{"cache", "result"},
		),
	}
}

// Registry exposes the registry for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterDB exports connection pool statistics for db
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordPipelineRun records a finished run
func (m *Metrics) RecordPipelineRun(status string, duration time.Duration) {
	m.pipelineRunsTotal.WithLabelValues(status).Inc()
	m.pipelineDuration.Observe(duration.Seconds())
}

// RecordStage records a finished stage and its skipped rows
func (m *Metrics) RecordStage(stage string, duration time.Duration, failures int) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if failures > 0 {
		m.stageFailuresTotal.WithLabelValues(stage).Add(float64(failures))
	}
}

// RecordMaterialized counts created and reused records of one kind
func (m *Metrics) RecordMaterialized(kind string, created, reused int) {
	if created > 0 {
		m.materializedTotal.WithLabelValues(kind, "created").Add(float64(created))
	}
	if reused > 0 {
		m.materializedTotal.WithLabelValues(kind, "reused").Add(float64(reused))
	}
}

// RecordNotification records a dispatch attempt
func (m *Metrics) RecordNotification(err error) {
	m.notificationsTotal.WithLabelValues(outcome(err)).Inc()
}

// RecordShoppingMutation records an item mutation
func (m *Metrics) RecordShoppingMutation(operation string, err error) {
	m.shoppingMutationTotal.WithLabelValues(operation, outcome(err)).Inc()
}

// RecordCacheLookup records a hit or a miss
func (m *Metrics) RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
