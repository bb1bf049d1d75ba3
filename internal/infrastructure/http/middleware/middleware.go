// Package middleware provides the chi middleware chain of the REST API
package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/nutriplan/core/internal/infrastructure/http/render"
	"github.com/nutriplan/core/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// OwnerHeader carries the id of the account that owns the request's data.
const OwnerHeader = "X-Owner-ID"

type ownerKey struct{}

// Recorder records served requests
type Recorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Owner requires a valid owner id header and stores it in the context
func Owner(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(OwnerHeader)
			if raw == "" {
				render.Error(w, r, logger, errors.NewBadRequestError(OwnerHeader+" header is required"))
				return
			}
			ownerID, err := uuid.Parse(raw)
			if err != nil || ownerID == uuid.Nil {
				render.Error(w, r, logger, errors.NewBadRequestError(OwnerHeader+" must be a UUID"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, ownerID)))
		})
	}
}

// OwnerFromContext returns the owner set by Owner
func OwnerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerKey{}).(uuid.UUID)
	return id, ok
}

// Logger logs every request and records it with the route pattern as label
func Logger(logger *zap.Logger, recorder Recorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			latency := time.Since(start)
			if recorder != nil {
				recorder.RecordHTTPRequest(r.Method, route, status, latency)
			}

			fields := []zap.Field{
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", latency),
			}
			if owner := r.Header.Get(OwnerHeader); owner != "" {
				fields = append(fields, zap.String("owner_id", owner))
			}

			switch {
			case status >= 500:
				logger.Error("Server error", fields...)
			case status >= 400:
				logger.Warn("Client error", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// RateLimiter keeps one token bucket per owner, or per client IP when the
// owner header is absent
type RateLimiter struct {
	cfg       config.RateLimitConfig
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter from configuration
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:      cfg,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow reports whether a request for key may proceed
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(float64(l.cfg.RequestsPerMin)/60), l.cfg.BurstSize)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops visitors idle for longer than the cleanup interval
func (l *RateLimiter) sweep(now time.Time) {
	interval := l.cfg.CleanupInterval
	if interval <= 0 || now.Sub(l.lastSweep) < interval {
		return
	}
	l.lastSweep = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > interval {
			delete(l.visitors, key)
		}
	}
}

// Handler rejects requests over the limit with 429
func (l *RateLimiter) Handler(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.cfg.Enable {
				next.ServeHTTP(w, r)
				return
			}
			key := r.Header.Get(OwnerHeader)
			if key == "" {
				key = clientIP(r)
			}
			if !l.Allow(key) {
				w.Header().Set("Retry-After", "60")
				render.Error(w, r, logger, errors.NewAppError(errors.CodeTooManyRequests, "Rate limit exceeded", ""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Security adds security headers for API responses
func Security() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows the configured origins
func CORS(allowed []string) func(next http.Handler) http.Handler {
	wildcard := false
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			wildcard = true
		}
		origins[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (wildcard || origins[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+OwnerHeader+", X-Request-ID")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
