package monitoring

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Health statuses
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck represents a health check result
type HealthCheck struct {
	Name      string                 `json:"name"`
	Status    string                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
}

// HealthChecker interface for implementing health checks
type HealthChecker interface {
	Check(ctx context.Context) HealthCheck
}

// HealthCheckerFunc adapts a function to HealthChecker
type HealthCheckerFunc func(ctx context.Context) HealthCheck

// Check implements HealthChecker
func (f HealthCheckerFunc) Check(ctx context.Context) HealthCheck {
	return f(ctx)
}

// HealthCheckManager manages readiness checks
type HealthCheckManager struct {
	mu      sync.RWMutex
	checks  map[string]HealthChecker
	timeout time.Duration
	logger  *zap.Logger
	tracing *TracingProvider
}

// NewHealthCheckManager creates a new health check manager. tracing may be nil.
func NewHealthCheckManager(logger *zap.Logger, tracing *TracingProvider) *HealthCheckManager {
	return &HealthCheckManager{
		checks:  make(map[string]HealthChecker),
		timeout: 2 * time.Second,
		logger:  logger.Named("health"),
		tracing: tracing,
	}
}

// RegisterCheck registers a health check
func (h *HealthCheckManager) RegisterCheck(name string, checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = checker
	h.logger.Debug("Health check registered", zap.String("name", name))
}

// CheckAll runs all registered health checks and reports whether all passed
func (h *HealthCheckManager) CheckAll(ctx context.Context) ([]HealthCheck, bool) {
	if h.tracing != nil {
		var span trace.Span
		ctx, span = h.tracing.StartSpan(ctx, "health.check_all")
		defer span.End()
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	results := make([]HealthCheck, 0, len(names))
	healthy := true
	for _, name := range names {
		result := h.run(ctx, name)
		if result.Status != StatusHealthy {
			healthy = false
		}
		results = append(results, result)
	}

	return results, healthy
}

func (h *HealthCheckManager) run(ctx context.Context, name string) HealthCheck {
	h.mu.RLock()
	checker := h.checks[name]
	h.mu.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	result := checker.Check(checkCtx)
	result.Name = name
	result.Timestamp = time.Now()
	result.Duration = time.Since(start)

	if result.Status != StatusHealthy {
		h.logger.Warn("Health check failed",
			zap.String("check", name),
			zap.String("message", result.Message),
			zap.Duration("duration", result.Duration),
		)
	}
	return result
}

// PingCheck builds a checker from a ping function
func PingCheck(component string, ping func(ctx context.Context) error) HealthChecker {
	return HealthCheckerFunc(func(ctx context.Context) HealthCheck {
		if err := ping(ctx); err != nil {
			return HealthCheck{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("%s connection failed", component),
				Details: map[string]interface{}{"error": err.Error()},
			}
		}
		return HealthCheck{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%s connection successful", component),
		}
	})
}
