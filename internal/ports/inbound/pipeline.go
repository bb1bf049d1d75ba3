// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/nutrition"
	"github.com/nutriplan/core/internal/domain/plan"
)

// PlanPipeline turns a generated plan into stored ingredients, recipes,
// a linked plan and optionally a shopping list.
type PlanPipeline interface {
	MaterializePlan(ctx context.Context, cmd MaterializePlanCommand) (*PipelineResultDTO, error)
}

// PlanService exposes saved plans and templates.
type PlanService interface {
	GetPlan(ctx context.Context, ownerID, planID uuid.UUID) (*PlanDTO, error)
	ListPlans(ctx context.Context, ownerID uuid.UUID, params PaginationParams) (*PlanList, error)
	CreateTemplate(ctx context.Context, cmd CreateTemplateCommand) (*TemplateDTO, error)
	ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]TemplateDTO, error)
}

// NutritionService aggregates plan nutrition with manually added foods.
type NutritionService interface {
	AggregatePlan(ctx context.Context, cmd AggregatePlanCommand) (*nutrition.Summary, error)
	AggregateDocument(ctx context.Context, doc plan.Document, foods []nutrition.FoodSelection) (*nutrition.Summary, error)
}

// Command objects for operations

// MaterializePlanCommand runs the pipeline for one generated plan.
type MaterializePlanCommand struct {
	OwnerID   uuid.UUID
	ClientID  *uuid.UUID
	Recipient string
	Document  plan.Document
	// Foods are stored with the plan.
	Foods []nutrition.FoodSelection
	// ShoppingList is nil when no list should be generated.
	ShoppingList *ShoppingListOptions
}

// ShoppingListOptions controls list generation inside the pipeline.
type ShoppingListOptions struct {
	Name    string
	Exclude []string
}

// CreateTemplateCommand stores a reusable plan skeleton.
type CreateTemplateCommand struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
	Goal        plan.Goal
	Days        []plan.Day
}

// AggregatePlanCommand aggregates a saved plan. Foods are counted on top of
// the ones stored with the plan and are not saved.
type AggregatePlanCommand struct {
	OwnerID uuid.UUID
	PlanID  uuid.UUID
	Foods   []nutrition.FoodSelection
}

// PaginationParams for paginated queries
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the page, with defaults applied.
func (p PaginationParams) Offset() int {
	return (p.page() - 1) * p.Limit()
}

// Limit returns the page size clamped to [1,100], default 20.
func (p PaginationParams) Limit() int {
	switch {
	case p.PageSize <= 0:
		return 20
	case p.PageSize > 100:
		return 100
	default:
		return p.PageSize
	}
}

func (p PaginationParams) page() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// Response DTOs

// RowFailure is one row the pipeline could not materialize.
type RowFailure struct {
	Stage  string `json:"stage"`
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// PipelineResultDTO summarizes what a pipeline run produced. Counts only
// include rows that were stored.
type PipelineResultDTO struct {
	PlanID             uuid.UUID          `json:"plan_id"`
	LinkedMeals        int                `json:"linked_meals"`
	TotalMeals         int                `json:"total_meals"`
	CreatedIngredients int                `json:"created_ingredients"`
	CreatedRecipes     int                `json:"created_recipes"`
	ReusedRecipes      int                `json:"reused_recipes"`
	ShoppingListID     *uuid.UUID         `json:"shopping_list_id,omitempty"`
	Nutrition          *nutrition.Summary `json:"nutrition,omitempty"`
	Failures           []RowFailure       `json:"failures,omitempty"`
	Notified           bool               `json:"notified"`
	RunID              uuid.UUID          `json:"run_id"`
	Stages             []StageSummary     `json:"stages"`
}

// StageSummary is one finished stage of a pipeline run.
type StageSummary struct {
	Stage      string `json:"stage"`
	Detail     string `json:"detail,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Failures   int    `json:"failures"`
}

// PlanDTO is the data transfer object for saved plans
type PlanDTO struct {
	ID          uuid.UUID             `json:"id"`
	OwnerID     uuid.UUID             `json:"owner_id"`
	ClientID    *uuid.UUID            `json:"client_id,omitempty"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Duration    int                   `json:"duration"`
	Goals       plan.NutritionalGoals `json:"goals"`
	Days        []PlanDayDTO          `json:"days"`
	Foods       []plan.AddedFood      `json:"foods"`
	CreatedAt   string                `json:"created_at"`
}

// PlanDayDTO is one day of a saved plan
type PlanDayDTO struct {
	Day    int           `json:"day"`
	Date   string        `json:"date,omitempty"`
	Totals plan.Macros   `json:"totals"`
	Meals  []MealSlotDTO `json:"meals"`
}

// MealSlotDTO is one meal of a saved plan
type MealSlotDTO struct {
	ID               uuid.UUID   `json:"id"`
	Type             string      `json:"type"`
	Name             string      `json:"name"`
	OriginalMealName string      `json:"original_meal_name,omitempty"`
	Description      string      `json:"description,omitempty"`
	Nutrition        plan.Macros `json:"nutrition"`
	Ingredients      []string    `json:"ingredients"`
	RecipeID         *uuid.UUID  `json:"recipe_id,omitempty"`
}

// PlanList is a page of plans
type PlanList struct {
	Plans    []PlanDTO `json:"plans"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// TemplateDTO is the data transfer object for plan templates
type TemplateDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Goal        plan.Goal  `json:"goal"`
	Days        []plan.Day `json:"days"`
	CreatedAt   string     `json:"created_at"`
}
