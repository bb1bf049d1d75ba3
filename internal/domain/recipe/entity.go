// Package recipe contains the owner-scoped reusable recipe aggregate that is
// materialized from generated plan meals.
package recipe

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTag marks recipes created from a generated plan without tags.
const DefaultTag = "ai-generated"

// Recipe is a reusable composition of ingredients, unique per owner by name.
type Recipe struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	Category    Category
	Difficulty  Difficulty
	Servings    int

	// Per-serving macros. Nil means the producer did not supply a figure.
	Calories *float64
	Protein  *float64
	Carbs    *float64
	Fat      *float64
	Fiber    *float64

	Instructions []string
	Tags         []string
	Ingredients  []RecipeIngredient

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeIngredient is one ordered row of a recipe. IngredientID is a weak
// reference into the global directory and stays nil when unresolved.
type RecipeIngredient struct {
	ID           uuid.UUID
	RecipeID     uuid.UUID
	IngredientID *uuid.UUID
	Name         string
	Quantity     *float64
	Unit         string
	OrderIndex   int
}

// NewRecipe creates a recipe with materialization defaults applied.
func NewRecipe(ownerID uuid.UUID, name string) (*Recipe, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(name) > 255 {
		return nil, ErrNameTooLong
	}
	if ownerID == uuid.Nil {
		return nil, ErrOwnerRequired
	}

	now := time.Now()
	return &Recipe{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Name:       name,
		Category:   CategoryOther,
		Difficulty: DifficultyMedium,
		Servings:   1,
		Tags:       []string{DefaultTag},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SetTags replaces the tags, keeping the default tag when none are given.
func (r *Recipe) SetTags(tags []string) {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{DefaultTag}
	}
	r.Tags = cleaned
}

// AddIngredient appends a row, assigning its recipe and position.
func (r *Recipe) AddIngredient(row RecipeIngredient) error {
	if strings.TrimSpace(row.Name) == "" {
		return ErrIngredientNameRequired
	}
	if row.Quantity != nil && *row.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.RecipeID = r.ID
	row.OrderIndex = len(r.Ingredients)
	r.Ingredients = append(r.Ingredients, row)
	return nil
}

// NameKey folds case and whitespace so "Bowl  de Quinoa" matches "bowl de quinoa".
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
