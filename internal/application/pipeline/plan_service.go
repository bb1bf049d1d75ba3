package pipeline

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/nutriplan/core/pkg/errors"
	"go.uber.org/zap"
)

// PlanService serves saved plans and templates
type PlanService struct {
	plans     outbound.PlanRepository
	templates outbound.TemplateRepository
	logger    *zap.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(plans outbound.PlanRepository, templates outbound.TemplateRepository, logger *zap.Logger) inbound.PlanService {
	return &PlanService{
		plans:     plans,
		templates: templates,
		logger:    logger.Named("plan-service"),
	}
}

// GetPlan returns one saved plan of the owner
func (s *PlanService) GetPlan(ctx context.Context, ownerID, planID uuid.UUID) (*inbound.PlanDTO, error) {
	p, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewPlanNotFoundError(planID.String())
		}
		return nil, errors.NewDatabaseError("find plan", err)
	}
	if p.OwnerID != ownerID {
		return nil, errors.NewPlanNotFoundError(planID.String())
	}
	return planToDTO(p), nil
}

// ListPlans returns a page of the owner's plans
func (s *PlanService) ListPlans(ctx context.Context, ownerID uuid.UUID, params inbound.PaginationParams) (*inbound.PlanList, error) {
	plans, total, err := s.plans.FindByOwner(ctx, ownerID, params.Offset(), params.Limit())
	if err != nil {
		return nil, errors.NewDatabaseError("list plans", err)
	}

	list := &inbound.PlanList{
		Plans:    make([]inbound.PlanDTO, 0, len(plans)),
		Total:    total,
		Page:     params.Offset()/params.Limit() + 1,
		PageSize: params.Limit(),
	}
	for _, p := range plans {
		list.Plans = append(list.Plans, *planToDTO(p))
	}
	return list, nil
}

// CreateTemplate stores a reusable plan skeleton
func (s *PlanService) CreateTemplate(ctx context.Context, cmd inbound.CreateTemplateCommand) (*inbound.TemplateDTO, error) {
	switch cmd.Goal {
	case plan.GoalWeightLoss, plan.GoalWeightGain, plan.GoalMaintenance:
	default:
		return nil, errors.NewValidationError("goal must be one of weight_loss, weight_gain, maintenance").
			WithMetadata("goal", string(cmd.Goal))
	}

	t, err := plan.NewTemplate(cmd.OwnerID, cmd.Name, cmd.Goal, cmd.Days)
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}
	t.Description = strings.TrimSpace(cmd.Description)

	if err := s.templates.Create(ctx, t); err != nil {
		return nil, errors.NewDatabaseError("create template", err)
	}

	s.logger.Info("Template created",
		zap.String("template_id", t.ID.String()),
		zap.String("goal", string(t.Goal)),
	)
	return TemplateToDTO(t), nil
}

// ListTemplates returns all templates of the owner
func (s *PlanService) ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]inbound.TemplateDTO, error) {
	templates, err := s.templates.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.NewDatabaseError("list templates", err)
	}

	out := make([]inbound.TemplateDTO, 0, len(templates))
	for _, t := range templates {
		out = append(out, *TemplateToDTO(t))
	}
	return out, nil
}

// TemplateToDTO converts a template for responses
func TemplateToDTO(t *plan.Template) *inbound.TemplateDTO {
	days := t.Days
	if days == nil {
		days = []plan.Day{}
	}
	return &inbound.TemplateDTO{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Goal:        t.Goal,
		Days:        days,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

func planToDTO(p *plan.NutritionPlan) *inbound.PlanDTO {
	dto := &inbound.PlanDTO{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		ClientID:    p.ClientID,
		Title:       p.Title,
		Description: p.Description,
		Duration:    p.Duration,
		Goals:       p.Goals,
		Days:        make([]inbound.PlanDayDTO, 0, len(p.Days)),
		Foods:       p.Foods,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if dto.Foods == nil {
		dto.Foods = []plan.AddedFood{}
	}
	for _, d := range p.Days {
		day := inbound.PlanDayDTO{
			Day:    d.Day,
			Date:   d.Date,
			Totals: d.Totals,
			Meals:  make([]inbound.MealSlotDTO, 0, len(d.Meals)),
		}
		for _, m := range d.Meals {
			ingredients := m.Ingredients
			if ingredients == nil {
				ingredients = []string{}
			}
			day.Meals = append(day.Meals, inbound.MealSlotDTO{
				ID:               m.ID,
				Type:             string(m.Type),
				Name:             m.Name,
				OriginalMealName: m.OriginalMealName,
				Description:      m.Description,
				Nutrition:        m.Nutrition,
				Ingredients:      ingredients,
				RecipeID:         m.RecipeID,
			})
		}
		dto.Days = append(dto.Days, day)
	}
	return dto
}
