// Package nutrition provides the nutrition aggregation use cases
package nutrition

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/nutrition"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/nutriplan/core/pkg/errors"
	"go.uber.org/zap"
)

// NutritionService implements the aggregation use cases
type NutritionService struct {
	plans  outbound.PlanRepository
	logger *zap.Logger
}

// NewNutritionService creates a new nutrition service
func NewNutritionService(plans outbound.PlanRepository, logger *zap.Logger) inbound.NutritionService {
	return &NutritionService{
		plans:  plans,
		logger: logger.Named("nutrition-service"),
	}
}

// AggregatePlan aggregates a saved plan with manually added foods
func (s *NutritionService) AggregatePlan(ctx context.Context, cmd inbound.AggregatePlanCommand) (*nutrition.Summary, error) {
	p, err := s.plans.FindByID(ctx, cmd.PlanID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewPlanNotFoundError(cmd.PlanID.String())
		}
		return nil, errors.NewDatabaseError("find plan", err)
	}
	if p.OwnerID != cmd.OwnerID {
		return nil, errors.NewPlanNotFoundError(cmd.PlanID.String())
	}

	summary := nutrition.Aggregate(p, cmd.Foods)
	s.log(p.ID, summary)
	return &summary, nil
}

// AggregateDocument aggregates a plan that has not been saved
func (s *NutritionService) AggregateDocument(ctx context.Context, doc plan.Document, foods []nutrition.FoodSelection) (*nutrition.Summary, error) {
	p, err := plan.ToNormalized(doc, plan.Header{})
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}

	summary := nutrition.Aggregate(p, foods)
	s.log(uuid.Nil, summary)
	return &summary, nil
}

func (s *NutritionService) log(planID uuid.UUID, summary nutrition.Summary) {
	fields := []zap.Field{
		zap.Int("days", len(summary.Days)),
		zap.Float64("total_calories", summary.Totals.Calories),
	}
	if planID != uuid.Nil {
		fields = append(fields, zap.String("plan_id", planID.String()))
	}
	if summary.Unassigned > 0 {
		fields = append(fields, zap.Int("unassigned_foods", summary.Unassigned))
	}
	s.logger.Debug("Plan nutrition aggregated", fields...)
}
