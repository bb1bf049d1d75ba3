// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/progress"
)

var (
	mealTypes   = []string{"breakfast", "lunch", "dinner", "snack"}
	ingredients = []string{"quinoa", "avocat", "riz", "poulet", "saumon", "brocoli", "lentille", "yaourt", "pomme", "épinard"}
	units       = []string{"g", "ml", ""}
)

// PlanFactory builds generated plans with realistic meals
type PlanFactory struct {
	faker *gofakeit.Faker
}

// NewPlanFactory creates a new plan factory with seeded faker
func NewPlanFactory(seed int64) *PlanFactory {
	return &PlanFactory{faker: gofakeit.New(seed)}
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Meal builds a meal with n free-text ingredients and matching macros.
func (f *PlanFactory) Meal(n int) plan.Meal {
	meal := plan.Meal{
		Type:        mealTypes[f.faker.Number(0, len(mealTypes)-1)],
		Name:        fmt.Sprintf("%s %s", f.faker.Adjective(), f.faker.Noun()),
		Description: f.faker.Sentence(6),
		Calories:    Float(f.faker.Float64Range(150, 800)),
		Protein:     Float(f.faker.Float64Range(5, 50)),
		Carbs:       Float(f.faker.Float64Range(10, 90)),
		Fat:         Float(f.faker.Float64Range(2, 35)),
	}
	for i := 0; i < n; i++ {
		name := ingredients[f.faker.Number(0, len(ingredients)-1)]
		unit := units[f.faker.Number(0, len(units)-1)]
		meal.Ingredients = append(meal.Ingredients, fmt.Sprintf("%d%s %s", f.faker.Number(1, 300), unit, name))
	}
	return meal
}

// Plan builds a plan of the given number of days with meals per day.
func (f *PlanFactory) Plan(days, mealsPerDay int) *plan.GeneratedPlan {
	g := &plan.GeneratedPlan{
		Title:       f.faker.Sentence(3),
		Description: f.faker.Sentence(10),
		Duration:    days,
		NutritionalGoals: plan.NutritionalGoals{
			DailyCalories:     float64(f.faker.Number(1500, 2800)),
			ProteinPercentage: 30,
			CarbPercentage:    40,
			FatPercentage:     30,
		},
	}
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for d := 1; d <= days; d++ {
		day := plan.Day{Day: d, Date: start.AddDate(0, 0, d-1).Format("2006-01-02")}
		for m := 0; m < mealsPerDay; m++ {
			meal := f.Meal(3)
			day.Meals = append(day.Meals, meal)
			day.TotalCalories += *meal.Calories
			day.TotalProtein += *meal.Protein
			day.TotalCarbs += *meal.Carbs
			day.TotalFat += *meal.Fat
		}
		g.Days = append(g.Days, day)
	}
	return g
}

// BowlDeQuinoa is the single-meal plan used by pipeline scenarios.
func BowlDeQuinoa() *plan.GeneratedPlan {
	return &plan.GeneratedPlan{
		Title:    "Plan découverte",
		Duration: 1,
		NutritionalGoals: plan.NutritionalGoals{
			DailyCalories: 2000, ProteinPercentage: 25, CarbPercentage: 45, FatPercentage: 30,
		},
		Days: []plan.Day{{
			Day:  1,
			Date: "2026-03-02",
			Meals: []plan.Meal{{
				Type:        "lunch",
				Name:        "Bowl de quinoa",
				Description: "Quinoa, avocat et huile d'olive",
				Calories:    Float(520),
				Protein:     Float(14),
				Carbs:       Float(48),
				Fat:         Float(30),
				Ingredients: []string{"150g quinoa", "1 avocat", "50ml huile d'olive"},
			}},
			TotalCalories: 520,
			TotalProtein:  14,
			TotalCarbs:    48,
			TotalFat:      30,
		}},
	}
}

// ClientFactory builds clients and weight histories
type ClientFactory struct {
	faker *gofakeit.Faker
}

// NewClientFactory creates a new client factory with seeded faker
func NewClientFactory(seed int64) *ClientFactory {
	return &ClientFactory{faker: gofakeit.New(seed)}
}

// Client builds a client with starting and goal weights.
func (f *ClientFactory) Client(ownerID uuid.UUID, start, goal float64) *progress.Client {
	c, err := progress.NewClient(ownerID, f.faker.Name())
	if err != nil {
		panic(err)
	}
	c.Email = f.faker.Email()
	c.StartingWeight = Float(start)
	c.GoalWeight = Float(goal)
	return c
}

// WeeklyHistory builds one entry per week ending at end, oldest weight first.
func (f *ClientFactory) WeeklyHistory(clientID uuid.UUID, end time.Time, weights ...float64) []progress.Entry {
	entries := make([]progress.Entry, 0, len(weights))
	for i, w := range weights {
		e, err := progress.NewEntry(clientID, end.AddDate(0, 0, -7*(len(weights)-1-i)), w)
		if err != nil {
			panic(err)
		}
		e.Notes = f.faker.Sentence(4)
		entries = append(entries, *e)
	}
	return entries
}
