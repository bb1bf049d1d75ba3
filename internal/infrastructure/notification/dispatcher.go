// Package notification delivers plan-saved notifications to the configured
// channel: the application log, an HTTP webhook or a Redis pub/sub channel.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nutriplan/core/internal/infrastructure/cache"
	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/nutriplan/core/internal/ports/outbound"
	"go.uber.org/zap"
)

// Driver names accepted in notification.driver
const (
	DriverLog     = "log"
	DriverWebhook = "webhook"
	DriverRedis   = "redis"
)

// NewDispatcher builds the dispatcher selected by cfg.Driver. The Redis
// driver requires a connected client.
func NewDispatcher(cfg config.NotificationConfig, redisClient *cache.RedisClient, logger *zap.Logger) (outbound.NotificationDispatcher, error) {
	switch cfg.Driver {
	case "", DriverLog:
		return NewLogDispatcher(logger), nil
	case DriverWebhook:
		return NewWebhookDispatcher(cfg, logger)
	case DriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("notification driver %q requires redis to be enabled", cfg.Driver)
		}
		return NewRedisDispatcher(redisClient, cfg.Channel, logger), nil
	default:
		return nil, fmt.Errorf("unknown notification driver %q", cfg.Driver)
	}
}

// LogDispatcher writes notifications to the structured log
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a log-only dispatcher
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.Named("notification")}
}

// DispatchPlanSaved logs the notification
func (d *LogDispatcher) DispatchPlanSaved(ctx context.Context, n outbound.PlanNotification) error {
	fields := []zap.Field{
		zap.String("plan_id", n.PlanID.String()),
		zap.String("owner_id", n.OwnerID.String()),
		zap.String("title", n.Title),
		zap.Int("days", n.Days),
		zap.Int("linked_meals", n.LinkedMeals),
		zap.Int("created_ingredients", n.CreatedIngredients),
		zap.Int("created_recipes", n.CreatedRecipes),
	}
	if n.Recipient != "" {
		fields = append(fields, zap.String("recipient", n.Recipient))
	}
	if n.ShoppingListID != nil {
		fields = append(fields, zap.String("shopping_list_id", n.ShoppingListID.String()))
	}

	d.logger.Info("Plan saved", fields...)
	return nil
}

// RedisDispatcher publishes notifications as JSON on a pub/sub channel
type RedisDispatcher struct {
	client  *cache.RedisClient
	channel string
	logger  *zap.Logger
}

// NewRedisDispatcher creates a dispatcher publishing on channel
func NewRedisDispatcher(client *cache.RedisClient, channel string, logger *zap.Logger) *RedisDispatcher {
	return &RedisDispatcher{
		client:  client,
		channel: channel,
		logger:  logger.Named("notification"),
	}
}

// DispatchPlanSaved publishes the notification
func (d *RedisDispatcher) DispatchPlanSaved(ctx context.Context, n outbound.PlanNotification) error {
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	if err := d.client.Publish(ctx, d.channel, payload); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	d.logger.Debug("Plan notification published",
		zap.String("channel", d.channel),
		zap.String("plan_id", n.PlanID.String()),
	)
	return nil
}

var (
	_ outbound.NotificationDispatcher = (*LogDispatcher)(nil)
	_ outbound.NotificationDispatcher = (*RedisDispatcher)(nil)
	_ outbound.NotificationDispatcher = (*WebhookDispatcher)(nil)
)
