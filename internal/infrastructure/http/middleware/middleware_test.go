package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOwner(t *testing.T) {
	var seen uuid.UUID
	h := Owner(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = OwnerFromContext(r.Context())
	}))

	owner := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(OwnerHeader, owner.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, owner, seen)

	for _, raw := range []string{"", "abc", uuid.Nil.String()} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if raw != "" {
			req.Header.Set(OwnerHeader, raw)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
		assert.Contains(t, rec.Body.String(), "BAD_REQUEST")
	}
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	clock := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(config.RateLimitConfig{
		Enable: true, RequestsPerMin: 60, BurstSize: 1, CleanupInterval: time.Minute,
	})
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	require.Len(t, l.visitors, 2)

	// One second refills one token.
	clock = clock.Add(time.Second)
	assert.True(t, l.Allow("a"))

	clock = clock.Add(2 * time.Minute)
	l.Allow("c")
	assert.Len(t, l.visitors, 1)
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(config.RateLimitConfig{Enable: false, BurstSize: 0})
	h := l.Handler(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.nutriplan.test"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.nutriplan.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.nutriplan.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), OwnerHeader)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

type recorded struct {
	method, route string
	status        int
}

type fakeRecorder struct{ calls []recorded }

func (f *fakeRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.calls = append(f.calls, recorded{method, route, status})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := &fakeRecorder{}
	h := Logger(zap.New(core), rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Len(t, rec.calls, 1)
	assert.Equal(t, recorded{http.MethodGet, "unmatched", http.StatusNotFound}, rec.calls[0])
	require.Equal(t, 1, logs.FilterMessage("Client error").Len())
	assert.Equal(t, int64(404), logs.All()[0].ContextMap()["status"])
}
