package recipe

import "strings"

// Category represents the meal category a recipe was derived from
type Category string

const (
	CategoryBreakfast Category = "breakfast"
	CategoryLunch     Category = "lunch"
	CategoryDinner    Category = "dinner"
	CategorySnack     Category = "snack"
	CategoryOther     Category = "other"
)

// CategoryForMealType maps a plan meal type onto a recipe category.
func CategoryForMealType(mealType string) Category {
	switch strings.ToLower(strings.TrimSpace(mealType)) {
	case "breakfast", "petit-déjeuner", "petit-dejeuner":
		return CategoryBreakfast
	case "lunch", "déjeuner", "dejeuner":
		return CategoryLunch
	case "dinner", "dîner", "diner":
		return CategoryDinner
	case "snack", "collation":
		return CategorySnack
	default:
		return CategoryOther
	}
}

// Difficulty represents recipe difficulty
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)
