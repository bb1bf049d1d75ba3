package materialize

import (
	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/recipe"
)

// Link sets recipe ids on the normalized plan's slots and returns how many
// slots were linked. A slot is matched through its original meal name; when
// the conversion did not keep one, the name is recovered from the original
// plan's meal on the same day whose display label equals the slot name.
func Link(normalized *plan.NutritionPlan, original *plan.GeneratedPlan, recipes []*recipe.Recipe) int {
	exact := make(map[string]uuid.UUID, len(recipes))
	folded := make(map[string]uuid.UUID, len(recipes))
	for _, r := range recipes {
		if _, ok := exact[r.Name]; !ok {
			exact[r.Name] = r.ID
		}
		if _, ok := folded[recipe.NameKey(r.Name)]; !ok {
			folded[recipe.NameKey(r.Name)] = r.ID
		}
	}

	linked := 0
	for _, slot := range normalized.Slots() {
		name := slot.OriginalMealName
		if name == "" && original != nil {
			name = recoverMealName(original, slot)
		}
		if name == "" {
			continue
		}

		id, ok := exact[name]
		if !ok {
			id, ok = folded[recipe.NameKey(name)]
		}
		if !ok {
			continue
		}

		recipeID := id
		slot.RecipeID = &recipeID
		linked++
	}
	return linked
}

func recoverMealName(original *plan.GeneratedPlan, slot *plan.MealSlot) string {
	day, ok := original.FindDay(slot.Day)
	if !ok {
		return ""
	}
	for _, m := range day.Meals {
		if plan.DisplayLabel(m.Type) == slot.Name {
			return m.Name
		}
	}
	return ""
}
