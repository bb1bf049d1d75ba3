package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/infrastructure/cache"
	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleNotification() outbound.PlanNotification {
	listID := uuid.New()
	return outbound.PlanNotification{
		PlanID:         uuid.New(),
		OwnerID:        uuid.New(),
		Recipient:      "camille@example.com",
		Title:          "Semaine équilibrée",
		Days:           7,
		LinkedMeals:    21,
		CreatedRecipes: 4,
		ShoppingListID: &listID,
	}
}

func TestLogDispatcher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	d := NewLogDispatcher(zap.New(core))

	n := sampleNotification()
	require.NoError(t, d.DispatchPlanSaved(context.Background(), n))

	entries := logs.FilterMessage("Plan saved").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, n.PlanID.String(), fields["plan_id"])
	assert.Equal(t, "camille@example.com", fields["recipient"])
	assert.Equal(t, int64(21), fields["linked_meals"])
}

func TestWebhookDispatcher_DeliversJSON(t *testing.T) {
	var received outbound.PlanNotification
	var headers http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	d, err := NewWebhookDispatcher(config.NotificationConfig{
		WebhookURL:     server.URL,
		WebhookHeaders: map[string]string{"X-Api-Key": "secret"},
		Timeout:        time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	n := sampleNotification()
	require.NoError(t, d.DispatchPlanSaved(context.Background(), n))

	assert.Equal(t, n.PlanID, received.PlanID)
	assert.Equal(t, n.Title, received.Title)
	assert.False(t, received.SentAt.IsZero())
	assert.Equal(t, "secret", headers.Get("X-Api-Key"))
	assert.Equal(t, "plan.saved", headers.Get("X-Event"))
}

func TestWebhookDispatcher_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d, err := NewWebhookDispatcher(config.NotificationConfig{
		WebhookURL: server.URL,
		RetryCount: 2,
		Timeout:    time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, d.DispatchPlanSaved(context.Background(), sampleNotification()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWebhookDispatcher_ReportsClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	d, err := NewWebhookDispatcher(config.NotificationConfig{WebhookURL: server.URL, RetryCount: 2}, zap.NewNop())
	require.NoError(t, err)

	err = d.DispatchPlanSaved(context.Background(), sampleNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewDispatcher(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.NotificationConfig
		wantErr bool
	}{
		{name: "default is log", cfg: config.NotificationConfig{}},
		{name: "log", cfg: config.NotificationConfig{Driver: DriverLog}},
		{name: "webhook", cfg: config.NotificationConfig{Driver: DriverWebhook, WebhookURL: "http://localhost:1"}},
		{name: "webhook without url", cfg: config.NotificationConfig{Driver: DriverWebhook}, wantErr: true},
		{name: "redis without client", cfg: config.NotificationConfig{Driver: DriverRedis}, wantErr: true},
		{name: "unknown", cfg: config.NotificationConfig{Driver: "smtp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDispatcher(tt.cfg, nil, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}
}

func TestRedisDispatcher_ReportsPublishFailure(t *testing.T) {
	client := cache.NewRedisClientFrom(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}), zap.NewNop())
	defer client.Close()

	d := NewRedisDispatcher(client, "nutriplan.plans", zap.NewNop())
	err := d.DispatchPlanSaved(context.Background(), sampleNotification())
	assert.Error(t, err)
}
