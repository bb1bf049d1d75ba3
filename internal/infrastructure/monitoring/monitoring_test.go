package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestMetrics_PipelineCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordPipelineRun("success", 120*time.Millisecond)
	m.RecordPipelineRun("success", 80*time.Millisecond)
	m.RecordStage("recipes", 10*time.Millisecond, 2)
	m.RecordStage("ingredients", 5*time.Millisecond, 0)
	m.RecordMaterialized("recipe", 3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pipelineRunsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.stageFailuresTotal.WithLabelValues("recipes")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stageFailuresTotal), "stages without failures add no series")
	assert.Equal(t, 3.0, testutil.ToFloat64(m.materializedTotal.WithLabelValues("recipe", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.materializedTotal.WithLabelValues("recipe", "reused")))
}

func TestMetrics_OutcomeLabels(t *testing.T) {
	m := NewMetrics()

	m.RecordNotification(nil)
	m.RecordNotification(errors.New("boom"))
	m.RecordShoppingMutation("toggle", nil)
	m.RecordCacheLookup("progress", true)
	m.RecordCacheLookup("progress", false)
	m.RecordHTTPRequest(http.MethodGet, "/api/v1/plans/{id}", http.StatusOK, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsTotal.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shoppingMutationTotal.WithLabelValues("toggle", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("progress", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/plans/{id}", "200")))
}

func TestTracingProvider_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := NewTracingProviderWithProcessor(TracingConfig{ServiceName: "nutriplan-test", SamplingRate: 1}, recorder, zap.NewNop())
	defer tp.Shutdown(context.Background())

	ctx, span := tp.StartSpan(context.Background(), "pipeline.materialize")
	tp.RecordError(ctx, errors.New("stage failed"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "pipeline.materialize", spans[0].Name())
	assert.Len(t, spans[0].Events(), 1)
}

func TestTracingProvider_Disabled(t *testing.T) {
	tp, err := NewTracingProvider(TracingConfig{ServiceName: "nutriplan-test"}, zap.NewNop())
	require.NoError(t, err)

	_, span := tp.StartSpan(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func newOpsServer(t *testing.T, checks map[string]HealthChecker) *OpsServer {
	t.Helper()
	health := NewHealthCheckManager(zap.NewNop(), nil)
	for name, c := range checks {
		health.RegisterCheck(name, c)
	}
	cfg := config.OpsConfig{MetricsPath: "/metrics", HealthPath: "/health", ReadinessPath: "/ready"}
	return NewOpsServer(cfg, "1.0.0", NewMetrics(), health, zap.NewNop())
}

func TestOpsServer_Endpoints(t *testing.T) {
	srv := newOpsServer(t, map[string]HealthChecker{
		"database": PingCheck("Database", func(context.Context) error { return nil }),
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
	})

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"version":"1.0.0"`)
	})

	t.Run("ready", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestOpsServer_NotReadyWhenCheckFails(t *testing.T) {
	srv := newOpsServer(t, map[string]HealthChecker{
		"database": PingCheck("Database", func(context.Context) error { return nil }),
		"redis":    PingCheck("Redis", func(context.Context) error { return errors.New("connection refused") }),
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string        `json:"status"`
		Checks []HealthCheck `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusUnhealthy, body.Status)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, "database", body.Checks[0].Name)
	assert.Equal(t, StatusUnhealthy, body.Checks[1].Status)
	assert.Equal(t, "connection refused", body.Checks[1].Details["error"])
}
