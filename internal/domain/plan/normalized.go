package plan

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MealType is the internal meal-type key.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

var displayLabels = map[MealType]string{
	MealTypeBreakfast: "Petit-déjeuner",
	MealTypeLunch:     "Déjeuner",
	MealTypeDinner:    "Dîner",
	MealTypeSnack:     "Collation",
}

// DisplayLabel maps an internal meal type onto the label shown to clients.
// Unknown types are returned unchanged.
func DisplayLabel(mealType string) string {
	if label, ok := displayLabels[MealType(strings.ToLower(strings.TrimSpace(mealType)))]; ok {
		return label
	}
	return mealType
}

// NutritionPlan is the normalized, storable shape of a plan.
type NutritionPlan struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	ClientID    *uuid.UUID
	Title       string
	Description string
	Duration    int
	Goals       NutritionalGoals
	Days        []PlanDay
	// Foods added by hand on top of the generated meals.
	Foods     []AddedFood
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Per100 is nutrition for 100 units (grams) of a food.
type Per100 struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// AddedFood is a food the practitioner added to a meal by hand.
type AddedFood struct {
	Day           int     `json:"day" validate:"gte=1"`
	MealType      string  `json:"mealType"`
	Name          string  `json:"name" validate:"required"`
	QuantityGrams float64 `json:"quantity" validate:"gte=0"`
	Per100        Per100  `json:"per100"`
}

// Contribution scales the per-100 figures to the selected quantity.
func (f AddedFood) Contribution() Macros {
	scale := f.QuantityGrams / 100
	return Macros{
		Calories: f.Per100.Calories * scale,
		Protein:  f.Per100.Protein * scale,
		Carbs:    f.Per100.Carbs * scale,
		Fat:      f.Per100.Fat * scale,
		Fiber:    f.Per100.Fiber * scale,
	}
}

// PlanDay is one day of a normalized plan.
type PlanDay struct {
	Day    int
	Date   string
	Totals Macros
	Meals  []MealSlot
}

// MealSlot is one meal of one day. Name holds the display label; the
// producer's meal name survives in OriginalMealName when it was preserved.
type MealSlot struct {
	ID               uuid.UUID
	Day              int
	Date             string
	Type             MealType
	Name             string
	OriginalMealName string
	Description      string
	Nutrition        Macros
	Ingredients      []string
	RecipeID         *uuid.UUID
	OrderIndex       int
}

// Slots returns every meal slot in day order.
func (p *NutritionPlan) Slots() []*MealSlot {
	var out []*MealSlot
	for d := range p.Days {
		for m := range p.Days[d].Meals {
			out = append(out, &p.Days[d].Meals[m])
		}
	}
	return out
}

// LinkedCount returns how many slots carry a recipe id.
func (p *NutritionPlan) LinkedCount() int {
	n := 0
	for _, s := range p.Slots() {
		if s.RecipeID != nil {
			n++
		}
	}
	return n
}

// Mentions lists every free-text ingredient of the normalized plan.
func (p *NutritionPlan) Mentions() []Mention {
	var out []Mention
	for _, s := range p.Slots() {
		for _, text := range s.Ingredients {
			if text == "" {
				continue
			}
			out = append(out, Mention{Text: text})
		}
	}
	return out
}
