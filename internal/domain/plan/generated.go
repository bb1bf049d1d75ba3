// Package plan models the nutrition plan in its two shapes: the generated
// form supplied by the upstream producer and the normalized form that is
// stored and delivered.
package plan

import (
	"errors"
	"strings"
)

// ErrNoDays is returned when a plan carries no days.
var ErrNoDays = errors.New("plan must contain at least one day")

// NutritionalGoals are the daily targets attached to a plan.
type NutritionalGoals struct {
	DailyCalories     float64 `json:"dailyCalories" validate:"gte=0"`
	ProteinPercentage float64 `json:"proteinPercentage" validate:"gte=0,lte=100"`
	CarbPercentage    float64 `json:"carbPercentage" validate:"gte=0,lte=100"`
	FatPercentage     float64 `json:"fatPercentage" validate:"gte=0,lte=100"`
}

// IngredientNutrition is one structured ingredient row of a generated meal.
// Nutrition figures are per reference amount of Unit (100 g, 100 ml, piece).
type IngredientNutrition struct {
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Meal is one generated meal. Macro figures may be absent.
type Meal struct {
	Type                 string                `json:"type" validate:"required"`
	Name                 string                `json:"name" validate:"required"`
	Description          string                `json:"description"`
	Calories             *float64              `json:"calories"`
	Protein              *float64              `json:"protein"`
	Carbs                *float64              `json:"carbs"`
	Fat                  *float64              `json:"fat"`
	Fiber                *float64              `json:"fiber"`
	Ingredients          []string              `json:"ingredients"`
	IngredientsNutrition []IngredientNutrition `json:"ingredientsNutrition,omitempty" validate:"dive"`
	Instructions         []string              `json:"instructions,omitempty"`
	Tags                 []string              `json:"tags,omitempty"`
}

// Day is one day of a generated plan with its baseline totals.
type Day struct {
	Day           int     `json:"day" validate:"gte=1"`
	Date          string  `json:"date"`
	Meals         []Meal  `json:"meals" validate:"dive"`
	TotalCalories float64 `json:"totalCalories"`
	TotalProtein  float64 `json:"totalProtein"`
	TotalCarbs    float64 `json:"totalCarbs"`
	TotalFat      float64 `json:"totalFat"`
}

// GeneratedPlan is the opaque output of the plan producer.
type GeneratedPlan struct {
	Title            string           `json:"title" validate:"required"`
	Description      string           `json:"description"`
	Duration         int              `json:"duration" validate:"gte=0"`
	NutritionalGoals NutritionalGoals `json:"nutritionalGoals"`
	Days             []Day            `json:"days" validate:"required,min=1,dive"`
}

// Validate checks the structural minimum the pipeline relies on.
func (g *GeneratedPlan) Validate() error {
	if len(g.Days) == 0 {
		return ErrNoDays
	}
	return nil
}

// FindDay returns the day with the given index.
func (g *GeneratedPlan) FindDay(index int) (*Day, bool) {
	for i := range g.Days {
		if g.Days[i].Day == index {
			return &g.Days[i], true
		}
	}
	return nil, false
}

// Mentions lists every ingredient mention of the plan in day/meal order.
func (g *GeneratedPlan) Mentions() []Mention {
	var out []Mention
	for _, d := range g.Days {
		out = append(out, mealMentions(d.Meals)...)
	}
	return out
}

// Macros is a plain macro tuple.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Add returns the element-wise sum.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
		Fiber:    m.Fiber + o.Fiber,
	}
}

// IsZero reports whether every field is zero.
func (m Macros) IsZero() bool {
	return m == Macros{}
}

// MealMacros reads a meal's macros treating missing figures as zero.
func MealMacros(m Meal) Macros {
	return Macros{
		Calories: deref(m.Calories),
		Protein:  deref(m.Protein),
		Carbs:    deref(m.Carbs),
		Fat:      deref(m.Fat),
		Fiber:    deref(m.Fiber),
	}
}

// Baseline returns the day's embedded totals. When the producer left them
// empty, the meal macros are summed instead.
func (d Day) Baseline() Macros {
	totals := Macros{
		Calories: d.TotalCalories,
		Protein:  d.TotalProtein,
		Carbs:    d.TotalCarbs,
		Fat:      d.TotalFat,
	}
	var fiber float64
	for _, m := range d.Meals {
		fiber += deref(m.Fiber)
	}
	if !totals.IsZero() {
		totals.Fiber = fiber
		return totals
	}

	var sum Macros
	for _, m := range d.Meals {
		sum = sum.Add(MealMacros(m))
	}
	return sum
}

// Mention is one ingredient reference inside a meal. Structured mentions
// come from ingredientsNutrition rows and already carry quantity and unit.
type Mention struct {
	Text       string
	Name       string
	Quantity   *float64
	Unit       string
	Structured bool
}

func mealMentions(meals []Meal) []Mention {
	var out []Mention
	for _, m := range meals {
		if len(m.IngredientsNutrition) > 0 {
			for _, row := range m.IngredientsNutrition {
				if strings.TrimSpace(row.Name) == "" {
					continue
				}
				mention := Mention{Name: strings.TrimSpace(row.Name), Unit: row.Unit, Structured: true}
				if row.Quantity > 0 {
					q := row.Quantity
					mention.Quantity = &q
				}
				out = append(out, mention)
			}
			continue
		}
		for _, text := range m.Ingredients {
			if strings.TrimSpace(text) == "" {
				continue
			}
			out = append(out, Mention{Text: text})
		}
	}
	return out
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
