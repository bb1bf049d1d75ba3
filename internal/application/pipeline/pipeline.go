// Package pipeline orchestrates plan materialization: ingredients, recipes,
// meal links, nutrition, persistence, shopping list and notification.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/application/materialize"
	"github.com/nutriplan/core/internal/application/shopping"
	"github.com/nutriplan/core/internal/domain/nutrition"
	"github.com/nutriplan/core/internal/domain/plan"
	domainshopping "github.com/nutriplan/core/internal/domain/shopping"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/nutriplan/core/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Stage names
const (
	StageIngredients = materialize.StageIngredients
	StageRecipes     = materialize.StageRecipes
	StageLinking     = materialize.StageLinking
	StageNutrition   = "nutrition"
	StagePersist     = "persist"
	StageShopping    = "shopping"
	StageNotify      = "notify"
)

// Metrics records pipeline runs
type Metrics interface {
	RecordPipelineRun(status string, duration time.Duration)
	RecordStage(stage string, duration time.Duration, failures int)
	RecordMaterialized(kind string, created, reused int)
	RecordNotification(err error)
}

// ListGenerator stores a shopping list built from plan mentions
type ListGenerator interface {
	Generate(ctx context.Context, params shopping.GenerateParams) (*domainshopping.List, error)
}

// Pipeline implements inbound.PlanPipeline
type Pipeline struct {
	normalizer   *materialize.Normalizer
	materializer *materialize.Materializer
	plans        outbound.PlanRepository
	lists        ListGenerator
	notifier     outbound.NotificationDispatcher
	metrics      Metrics
	tracer       trace.Tracer
	logger       *zap.Logger
}

// NewPipeline creates the orchestrator. metrics and tracer may be nil.
func NewPipeline(
	normalizer *materialize.Normalizer,
	materializer *materialize.Materializer,
	plans outbound.PlanRepository,
	lists ListGenerator,
	notifier outbound.NotificationDispatcher,
	metrics Metrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *Pipeline {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("pipeline")
	}
	return &Pipeline{
		normalizer:   normalizer,
		materializer: materializer,
		plans:        plans,
		lists:        lists,
		notifier:     notifier,
		metrics:      metrics,
		tracer:       tracer,
		logger:       logger.Named("pipeline"),
	}
}

var _ inbound.PlanPipeline = (*Pipeline)(nil)

// MaterializePlan runs every stage in order. Row failures are collected in
// the result; only an invalid document or a failed plan save abort the run.
func (p *Pipeline) MaterializePlan(ctx context.Context, cmd inbound.MaterializePlanCommand) (*inbound.PipelineResultDTO, error) {
	started := time.Now()
	audit := NewAudit(uuid.New(), p.logger)

	ctx, span := p.tracer.Start(ctx, "pipeline.materialize", trace.WithAttributes(
		attribute.String("run_id", audit.RunID.String()),
		attribute.String("owner_id", cmd.OwnerID.String()),
	))
	defer span.End()

	result, err := p.run(ctx, cmd, audit)
	if result != nil {
		result.RunID = audit.RunID
		result.Stages = audit.Stages()
	}
	status := "success"
	switch {
	case err != nil:
		status = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case len(result.Failures) > 0:
		status = "partial"
	}
	p.metrics.RecordPipelineRun(status, time.Since(started))

	if err != nil {
		p.logger.Error("Plan materialization failed",
			zap.String("run_id", audit.RunID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	p.logger.Info("Plan materialized",
		zap.String("run_id", audit.RunID.String()),
		zap.String("plan_id", result.PlanID.String()),
		zap.Int("linked_meals", result.LinkedMeals),
		zap.Int("total_meals", result.TotalMeals),
		zap.Int("created_ingredients", result.CreatedIngredients),
		zap.Int("created_recipes", result.CreatedRecipes),
		zap.Int("reused_recipes", result.ReusedRecipes),
		zap.Int("failures", len(result.Failures)),
		zap.Duration("duration", time.Since(started)),
	)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, cmd inbound.MaterializePlanCommand, audit *Audit) (*inbound.PipelineResultDTO, error) {
	if cmd.OwnerID == uuid.Nil {
		return nil, errors.NewValidationError("owner is required")
	}
	if cmd.Document.Kind != plan.KindGenerated || cmd.Document.Generated == nil {
		return nil, errors.NewValidationError("a generated plan is required")
	}
	generated := cmd.Document.Generated

	normalized, err := plan.ToNormalized(cmd.Document, plan.Header{OwnerID: cmd.OwnerID, ClientID: cmd.ClientID})
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}

	normalized.Foods = append([]plan.AddedFood(nil), cmd.Foods...)

	result := &inbound.PipelineResultDTO{}

	// Ingredients
	var ingredients materialize.NormalizeResult
	p.stage(ctx, audit, StageIngredients, func(ctx context.Context) (string, []materialize.Failure) {
		ingredients = p.normalizer.Normalize(ctx, materialize.Candidates(generated))
		p.metrics.RecordMaterialized("ingredient", len(ingredients.Created), ingredients.Existing)
		return fmt.Sprintf("created=%d existing=%d", len(ingredients.Created), ingredients.Existing), ingredients.Failures
	})
	result.CreatedIngredients = len(ingredients.Created)
	p.collect(result, ingredients.Failures)

	// Recipes
	var recipes materialize.RecipeResult
	p.stage(ctx, audit, StageRecipes, func(ctx context.Context) (string, []materialize.Failure) {
		recipes = p.materializer.Materialize(ctx, cmd.OwnerID, generated)
		p.metrics.RecordMaterialized("recipe", recipes.Created, recipes.Reused)
		return fmt.Sprintf("created=%d reused=%d", recipes.Created, recipes.Reused), recipes.Failures
	})
	result.CreatedRecipes = recipes.Created
	result.ReusedRecipes = recipes.Reused
	p.collect(result, recipes.Failures)

	// Linking
	p.stage(ctx, audit, StageLinking, func(ctx context.Context) (string, []materialize.Failure) {
		result.LinkedMeals = materialize.Link(normalized, generated, recipes.Recipes)
		result.TotalMeals = len(normalized.Slots())
		return fmt.Sprintf("linked=%d/%d", result.LinkedMeals, result.TotalMeals), nil
	})

	// Nutrition
	p.stage(ctx, audit, StageNutrition, func(ctx context.Context) (string, []materialize.Failure) {
		summary := nutrition.Aggregate(normalized, nil)
		result.Nutrition = &summary
		return fmt.Sprintf("calories=%.0f", summary.Totals.Calories), nil
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Persist
	var persistErr error
	p.stage(ctx, audit, StagePersist, func(ctx context.Context) (string, []materialize.Failure) {
		persistErr = p.plans.Create(ctx, normalized)
		return normalized.ID.String(), nil
	})
	if persistErr != nil {
		return nil, errors.NewDatabaseError("save plan", persistErr)
	}
	result.PlanID = normalized.ID

	// Shopping list
	if cmd.ShoppingList != nil && p.lists != nil {
		var listFailures []materialize.Failure
		p.stage(ctx, audit, StageShopping, func(ctx context.Context) (string, []materialize.Failure) {
			l, err := p.lists.Generate(ctx, shopping.GenerateParams{
				OwnerID:  cmd.OwnerID,
				ClientID: cmd.ClientID,
				Name:     cmd.ShoppingList.Name,
				Source:   domainshopping.Source{PlanID: &normalized.ID},
				Mentions: generated.Mentions(),
				Exclude:  cmd.ShoppingList.Exclude,
			})
			if err != nil {
				p.logger.Warn("Shopping list generation failed",
					zap.String("plan_id", normalized.ID.String()),
					zap.Error(err),
				)
				listFailures = []materialize.Failure{{Stage: StageShopping, Item: normalized.Title, Err: err}}
				return "", listFailures
			}
			result.ShoppingListID = &l.ID
			return l.ID.String(), nil
		})
		p.collect(result, listFailures)
	}

	// Notify
	if p.notifier != nil {
		p.stage(ctx, audit, StageNotify, func(ctx context.Context) (string, []materialize.Failure) {
			err := p.notifier.DispatchPlanSaved(ctx, outbound.PlanNotification{
				PlanID:             normalized.ID,
				OwnerID:            cmd.OwnerID,
				ClientID:           cmd.ClientID,
				Recipient:          cmd.Recipient,
				Title:              normalized.Title,
				Days:               len(normalized.Days),
				LinkedMeals:        result.LinkedMeals,
				CreatedIngredients: result.CreatedIngredients,
				CreatedRecipes:     result.CreatedRecipes,
				ShoppingListID:     result.ShoppingListID,
				SentAt:             time.Now().UTC(),
			})
			p.metrics.RecordNotification(err)
			if err != nil {
				p.logger.Warn("Plan notification failed",
					zap.String("plan_id", normalized.ID.String()),
					zap.Error(err),
				)
				return "failed", nil
			}
			result.Notified = true
			return "sent", nil
		})
	}

	return result, nil
}

// stage runs fn inside a child span and records its duration and failures
func (p *Pipeline) stage(ctx context.Context, audit *Audit, name string, fn func(ctx context.Context) (string, []materialize.Failure)) {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	audit.Begin(name)
	detail, failures := fn(ctx)
	for _, f := range failures {
		audit.Fail(name, f.Item, f.Err)
	}
	d := audit.End(name, detail)

	span.SetAttributes(attribute.Int("failures", len(failures)))
	p.metrics.RecordStage(name, d, len(failures))
}

func (p *Pipeline) collect(result *inbound.PipelineResultDTO, failures []materialize.Failure) {
	for _, f := range failures {
		result.Failures = append(result.Failures, inbound.RowFailure{
			Stage:  f.Stage,
			Item:   f.Item,
			Reason: f.Err.Error(),
		})
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordPipelineRun(string, time.Duration) {}
func (nopMetrics) RecordStage(string, time.Duration, int)  {}
func (nopMetrics) RecordMaterialized(string, int, int)     {}
func (nopMetrics) RecordNotification(error)                {}
