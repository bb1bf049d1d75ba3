// Package materialize turns generated plan meals into stored ingredients and
// recipes and links them back onto the normalized plan.
package materialize

import (
	"context"
	"errors"

	"github.com/nutriplan/core/internal/domain/ingredient"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/ports/outbound"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Stage names used in failures and logs.
const (
	StageIngredients = "ingredients"
	StageRecipes     = "recipes"
	StageLinking     = "linking"
)

// Failure is one row that could not be materialized.
type Failure struct {
	Stage string
	Item  string
	Err   error
}

// NormalizeResult lists the ingredients created by a run.
type NormalizeResult struct {
	Created  []*ingredient.Ingredient
	Existing int
	Failures []Failure
}

// Normalizer resolves ingredient candidates against the global directory
// and creates the missing ones.
type Normalizer struct {
	repo   outbound.IngredientRepository
	logger *zap.Logger
	group  singleflight.Group
}

// NewNormalizer creates a new ingredient normalizer
func NewNormalizer(repo outbound.IngredientRepository, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		repo:   repo,
		logger: logger.Named("ingredient-normalizer"),
	}
}

// Candidates extracts (name, unit, nutrition) tuples from a generated plan.
// Structured rows are used when a meal has them; otherwise free-text lines
// go through the loose parse and carry no nutrition. The first occurrence
// of a name wins.
func Candidates(g *plan.GeneratedPlan) []ingredient.Candidate {
	var out []ingredient.Candidate
	seen := make(map[string]bool)

	add := func(c ingredient.Candidate) {
		if c.Name == "" || seen[c.Name] {
			return
		}
		seen[c.Name] = true
		out = append(out, c)
	}

	for _, d := range g.Days {
		for _, m := range d.Meals {
			if len(m.IngredientsNutrition) > 0 {
				for _, row := range m.IngredientsNutrition {
					add(ingredient.Candidate{
						Name: row.Name,
						Unit: row.Unit,
						Nutrition: ingredient.NutritionFacts{
							Calories: row.Calories,
							Protein:  row.Protein,
							Carbs:    row.Carbs,
							Fat:      row.Fat,
							Fiber:    row.Fiber,
						},
					})
				}
				continue
			}
			// Same parse as the recipe rows so every row resolves to a
			// directory entry.
			for _, text := range m.Ingredients {
				parsed := ingredient.ParseLoose(text)
				add(ingredient.Candidate{Name: parsed.Name, Unit: parsed.UnitOrDefault()})
			}
		}
	}
	return out
}

// Normalize looks up every candidate by exact name and inserts the missing
// ones. A failing row is logged and skipped; the batch always completes.
func (n *Normalizer) Normalize(ctx context.Context, candidates []ingredient.Candidate) NormalizeResult {
	var result NormalizeResult

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			result.Failures = append(result.Failures, Failure{Stage: StageIngredients, Item: c.Name, Err: err})
			break
		}

		v, err, _ := n.group.Do(c.Name, func() (interface{}, error) {
			return n.ensure(ctx, c)
		})
		if err != nil {
			n.logger.Warn("Skipping ingredient",
				zap.String("ingredient", c.Name),
				zap.Error(err),
			)
			result.Failures = append(result.Failures, Failure{Stage: StageIngredients, Item: c.Name, Err: err})
			continue
		}

		if created, _ := v.(*ingredient.Ingredient); created != nil {
			result.Created = append(result.Created, created)
		} else {
			result.Existing++
		}
	}

	n.logger.Info("Ingredients normalized",
		zap.Int("candidates", len(candidates)),
		zap.Int("created", len(result.Created)),
		zap.Int("existing", result.Existing),
		zap.Int("failed", len(result.Failures)),
	)

	return result
}

// ensure returns the created ingredient, or nil when one already existed.
func (n *Normalizer) ensure(ctx context.Context, c ingredient.Candidate) (*ingredient.Ingredient, error) {
	existing, err := n.repo.FindByName(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	ing, err := ingredient.New(c.Name, c.Unit, c.Nutrition)
	if err != nil {
		return nil, err
	}

	if err := n.repo.Create(ctx, ing); err != nil {
		if errors.Is(err, outbound.ErrAlreadyExists) {
			n.logger.Debug("Ingredient created concurrently", zap.String("ingredient", c.Name))
			return nil, nil
		}
		return nil, err
	}

	return ing, nil
}
