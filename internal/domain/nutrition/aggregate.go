// Package nutrition combines the baseline nutrition embedded in a plan with
// manually added foods into daily and plan-level totals.
package nutrition

import (
	"math"

	"github.com/nutriplan/core/internal/domain/plan"
)

// Kilocalories per gram of macro.
const (
	ProteinFactor = 4.0
	CarbsFactor   = 4.0
	FatFactor     = 9.0
)

// Per100 is nutrition for 100 units (grams) of a food.
type Per100 = plan.Per100

// FoodSelection is a food the practitioner added to a meal by hand.
type FoodSelection = plan.AddedFood

// MacroPercentages is the share of macro calories per macro, in whole percent.
type MacroPercentages struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

// Percentages computes the calorie share of each macro. A zero macro-calorie
// total yields zero for every macro.
func Percentages(m plan.Macros) MacroPercentages {
	protein := m.Protein * ProteinFactor
	carbs := m.Carbs * CarbsFactor
	fat := m.Fat * FatFactor

	total := protein + carbs + fat
	if total <= 0 {
		return MacroPercentages{}
	}

	return MacroPercentages{
		Protein: int(math.Round(protein / total * 100)),
		Carbs:   int(math.Round(carbs / total * 100)),
		Fat:     int(math.Round(fat / total * 100)),
	}
}

// DailyTargets are target grams derived from a plan's nutritional goals.
type DailyTargets struct {
	Calories float64 `json:"calories"`
	Protein  int     `json:"protein"`
	Carbs    int     `json:"carbs"`
	Fat      int     `json:"fat"`
}

// Targets converts calorie goals and macro percentages into grams.
func Targets(goals plan.NutritionalGoals) DailyTargets {
	grams := func(pct, factor float64) int {
		return int(math.Round(goals.DailyCalories * pct / 100 / factor))
	}
	return DailyTargets{
		Calories: goals.DailyCalories,
		Protein:  grams(goals.ProteinPercentage, ProteinFactor),
		Carbs:    grams(goals.CarbPercentage, CarbsFactor),
		Fat:      grams(goals.FatPercentage, FatFactor),
	}
}

// DayTotals is the aggregated nutrition of one day.
type DayTotals struct {
	Day         int              `json:"day"`
	Date        string           `json:"date,omitempty"`
	Baseline    plan.Macros      `json:"baseline"`
	Added       plan.Macros      `json:"added"`
	Total       plan.Macros      `json:"total"`
	Percentages MacroPercentages `json:"percentages"`
}

// Summary is the aggregation result for a whole plan.
type Summary struct {
	Days        []DayTotals      `json:"days"`
	Totals      plan.Macros      `json:"totals"`
	Averages    plan.Macros      `json:"averages"`
	Percentages MacroPercentages `json:"percentages"`
	Targets     DailyTargets     `json:"targets"`
	// Unassigned counts selections whose day is not part of the plan.
	Unassigned int `json:"unassigned"`
}

// Aggregate adds the plan's stored foods and any extra selections on top of
// each day's baseline. Linked recipes are ignored: their nutrition is
// already part of the baseline computed at generation time.
func Aggregate(p *plan.NutritionPlan, extra []FoodSelection) Summary {
	foods := make([]FoodSelection, 0, len(p.Foods)+len(extra))
	foods = append(foods, p.Foods...)
	foods = append(foods, extra...)

	added := make(map[int]plan.Macros)
	for _, f := range foods {
		added[f.Day] = added[f.Day].Add(f.Contribution())
	}

	summary := Summary{Targets: Targets(p.Goals)}
	seen := make(map[int]bool, len(p.Days))

	for _, d := range p.Days {
		seen[d.Day] = true
		day := DayTotals{
			Day:      d.Day,
			Date:     d.Date,
			Baseline: d.Totals,
			Added:    added[d.Day],
		}
		day.Total = day.Baseline.Add(day.Added)
		day.Percentages = Percentages(day.Total)

		summary.Days = append(summary.Days, day)
		summary.Totals = summary.Totals.Add(day.Total)
	}

	for _, f := range foods {
		if !seen[f.Day] {
			summary.Unassigned++
		}
	}

	if n := float64(len(summary.Days)); n > 0 {
		summary.Averages = plan.Macros{
			Calories: summary.Totals.Calories / n,
			Protein:  summary.Totals.Protein / n,
			Carbs:    summary.Totals.Carbs / n,
			Fat:      summary.Totals.Fat / n,
			Fiber:    summary.Totals.Fiber / n,
		}
	}
	summary.Percentages = Percentages(summary.Totals)

	return summary
}
