package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/nutriplan/core/internal/ports/outbound"
	"go.uber.org/zap"
)

// ErrWebhookURLRequired is returned when the webhook driver has no target
var ErrWebhookURLRequired = errors.New("notification webhook url is required")

// WebhookDispatcher posts notifications as JSON to an HTTP endpoint.
// 5xx responses and transport errors are retried.
type WebhookDispatcher struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewWebhookDispatcher creates a webhook dispatcher from configuration
func NewWebhookDispatcher(cfg config.NotificationConfig, logger *zap.Logger) (*WebhookDispatcher, error) {
	if cfg.WebhookURL == "" {
		return nil, ErrWebhookURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "nutriplan-notifier").
		SetHeaders(cfg.WebhookHeaders).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		})

	return &WebhookDispatcher{
		client: client,
		url:    cfg.WebhookURL,
		logger: logger.Named("notification"),
	}, nil
}

// DispatchPlanSaved posts the notification
func (d *WebhookDispatcher) DispatchPlanSaved(ctx context.Context, n outbound.PlanNotification) error {
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("X-Event", "plan.saved").
		SetBody(n).
		Post(d.url)
	if err != nil {
		return fmt.Errorf("failed to send plan notification: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("plan notification rejected with status %d", resp.StatusCode())
	}

	d.logger.Debug("Plan notification delivered",
		zap.String("plan_id", n.PlanID.String()),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("latency", resp.Time()),
	)
	return nil
}
