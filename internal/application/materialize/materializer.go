package materialize

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/ingredient"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/recipe"
	"github.com/nutriplan/core/internal/ports/outbound"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RecipeResult lists every recipe touched by a run.
type RecipeResult struct {
	Recipes  []*recipe.Recipe
	Created  int
	Reused   int
	Failures []Failure
}

// Materializer turns generated meals into owner-scoped recipes.
type Materializer struct {
	recipes     outbound.RecipeRepository
	ingredients outbound.IngredientRepository
	logger      *zap.Logger
	group       singleflight.Group
}

// NewMaterializer creates a new recipe materializer
func NewMaterializer(
	recipes outbound.RecipeRepository,
	ingredients outbound.IngredientRepository,
	logger *zap.Logger,
) *Materializer {
	return &Materializer{
		recipes:     recipes,
		ingredients: ingredients,
		logger:      logger.Named("recipe-materializer"),
	}
}

type mealOutcome struct {
	recipe  *recipe.Recipe
	created bool
	// rowsErr is set when the recipe was stored but its rows were not.
	rowsErr error
}

// Materialize creates or reuses one recipe per meal with ingredients.
func (m *Materializer) Materialize(ctx context.Context, ownerID uuid.UUID, g *plan.GeneratedPlan) RecipeResult {
	var result RecipeResult
	touched := make(map[uuid.UUID]bool)

	for _, d := range g.Days {
		for _, meal := range d.Meals {
			if len(meal.Ingredients) == 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				result.Failures = append(result.Failures, Failure{Stage: StageRecipes, Item: meal.Name, Err: err})
				return result
			}

			// Recipes are stored under the trimmed name.
			name := strings.TrimSpace(meal.Name)
			meal := meal
			v, err, _ := m.group.Do(ownerID.String()+"/"+name, func() (interface{}, error) {
				return m.materializeMeal(ctx, ownerID, name, meal)
			})
			if err != nil {
				m.logger.Warn("Skipping meal",
					zap.String("meal", meal.Name),
					zap.Int("day", d.Day),
					zap.Error(err),
				)
				result.Failures = append(result.Failures, Failure{Stage: StageRecipes, Item: meal.Name, Err: err})
				continue
			}

			outcome := v.(*mealOutcome)
			if outcome.rowsErr != nil {
				result.Failures = append(result.Failures, Failure{Stage: StageRecipes, Item: meal.Name, Err: outcome.rowsErr})
			}
			if touched[outcome.recipe.ID] {
				continue
			}
			touched[outcome.recipe.ID] = true
			result.Recipes = append(result.Recipes, outcome.recipe)
			if outcome.created {
				result.Created++
			} else {
				result.Reused++
			}
		}
	}

	m.logger.Info("Recipes materialized",
		zap.String("owner_id", ownerID.String()),
		zap.Int("created", result.Created),
		zap.Int("reused", result.Reused),
		zap.Int("failed", len(result.Failures)),
	)

	return result
}

func (m *Materializer) materializeMeal(ctx context.Context, ownerID uuid.UUID, name string, meal plan.Meal) (*mealOutcome, error) {
	existing, err := m.recipes.FindByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &mealOutcome{recipe: existing}, nil
	}

	r, err := recipe.NewRecipe(ownerID, name)
	if err != nil {
		return nil, err
	}
	r.Description = meal.Description
	r.Category = recipe.CategoryForMealType(meal.Type)
	r.Calories = meal.Calories
	r.Protein = meal.Protein
	r.Carbs = meal.Carbs
	r.Fat = meal.Fat
	r.Fiber = meal.Fiber
	r.Instructions = append([]string(nil), meal.Instructions...)
	r.SetTags(meal.Tags)

	if err := m.recipes.Create(ctx, r); err != nil {
		if !errors.Is(err, outbound.ErrAlreadyExists) {
			return nil, err
		}
		stored, findErr := m.recipes.FindByOwnerAndName(ctx, ownerID, name)
		if findErr != nil {
			return nil, findErr
		}
		if stored == nil {
			return nil, err
		}
		return &mealOutcome{recipe: stored}, nil
	}

	for _, row := range m.buildRows(ctx, meal) {
		if err := r.AddIngredient(row); err != nil {
			m.logger.Debug("Dropping ingredient row",
				zap.String("recipe", r.Name),
				zap.String("ingredient", row.Name),
				zap.Error(err),
			)
		}
	}

	outcome := &mealOutcome{recipe: r, created: true}
	if len(r.Ingredients) == 0 {
		return outcome, nil
	}

	if err := m.recipes.AddIngredients(ctx, r.ID, r.Ingredients); err != nil {
		m.logger.Warn("Failed to store recipe ingredients, keeping recipe",
			zap.String("recipe_id", r.ID.String()),
			zap.String("recipe", r.Name),
			zap.Int("rows", len(r.Ingredients)),
			zap.Error(err),
		)
		r.Ingredients = nil
		outcome.rowsErr = err
	}

	return outcome, nil
}

// buildRows pairs structured rows with their free-text line by index, or
// falls back to the loose parse when the meal has no structured rows.
func (m *Materializer) buildRows(ctx context.Context, meal plan.Meal) []recipe.RecipeIngredient {
	var rows []recipe.RecipeIngredient

	if len(meal.IngredientsNutrition) > 0 {
		for i, n := range meal.IngredientsNutrition {
			var parsed ingredient.ParsedLine
			if i < len(meal.Ingredients) {
				parsed = ingredient.ParseLine(meal.Ingredients[i])
			}

			name := strings.TrimSpace(n.Name)
			if name == "" {
				name = parsed.Name
			}
			row := recipe.RecipeIngredient{Name: name, Quantity: parsed.Amount, Unit: parsed.Unit}
			if row.Quantity == nil && n.Quantity > 0 {
				q := n.Quantity
				row.Quantity = &q
			}
			if n.Unit != "" {
				row.Unit = n.Unit
			}
			row.IngredientID = m.resolve(ctx, name)
			rows = append(rows, row)
		}
		return rows
	}

	for _, text := range meal.Ingredients {
		parsed := ingredient.ParseLoose(text)
		if parsed.Name == "" {
			continue
		}
		rows = append(rows, recipe.RecipeIngredient{
			Name:         parsed.Name,
			Quantity:     parsed.Amount,
			Unit:         parsed.UnitOrDefault(),
			IngredientID: m.resolve(ctx, parsed.Name),
		})
	}
	return rows
}

// resolve looks the name up in the directory. Failures leave the reference
// unset.
func (m *Materializer) resolve(ctx context.Context, name string) *uuid.UUID {
	ing, err := m.ingredients.FindByName(ctx, name)
	if err != nil {
		m.logger.Debug("Ingredient lookup failed", zap.String("ingredient", name), zap.Error(err))
		return nil
	}
	if ing == nil {
		return nil
	}
	id := ing.ID
	return &id
}
