package gorm

import (
	"encoding/json"
	"fmt"

	"github.com/nutriplan/core/internal/domain/ingredient"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/progress"
	"github.com/nutriplan/core/internal/domain/recipe"
	"github.com/nutriplan/core/internal/domain/shopping"
	"gorm.io/datatypes"
)

// IngredientToModel converts domain ingredient to GORM model
func IngredientToModel(i *ingredient.Ingredient) *IngredientModel {
	return &IngredientModel{
		ID:        i.ID,
		Name:      i.Name,
		UnitType:  string(i.UnitType),
		Per100g:   factsToColumns(i.Per100g),
		Per100ml:  factsToColumns(i.Per100ml),
		PerPiece:  factsToColumns(i.PerPiece),
		CreatedAt: i.CreatedAt,
	}
}

// ModelToIngredient converts GORM model to domain ingredient
func ModelToIngredient(m *IngredientModel) *ingredient.Ingredient {
	i := &ingredient.Ingredient{
		ID:        m.ID,
		Name:      m.Name,
		UnitType:  ingredient.UnitType(m.UnitType),
		CreatedAt: m.CreatedAt,
	}
	switch i.UnitType {
	case ingredient.UnitTypeVolume:
		i.Per100ml = columnsToFacts(m.Per100ml)
	case ingredient.UnitTypeCount:
		i.PerPiece = columnsToFacts(m.PerPiece)
	default:
		i.Per100g = columnsToFacts(m.Per100g)
	}
	return i
}

func factsToColumns(f *ingredient.NutritionFacts) NutritionColumns {
	if f == nil {
		return NutritionColumns{}
	}
	c := *f
	return NutritionColumns{
		Calories: &c.Calories,
		Protein:  &c.Protein,
		Carbs:    &c.Carbs,
		Fat:      &c.Fat,
		Fiber:    &c.Fiber,
	}
}

func columnsToFacts(c NutritionColumns) *ingredient.NutritionFacts {
	return &ingredient.NutritionFacts{
		Calories: value(c.Calories),
		Protein:  value(c.Protein),
		Carbs:    value(c.Carbs),
		Fat:      value(c.Fat),
		Fiber:    value(c.Fiber),
	}
}

// RecipeToModel converts domain recipe to GORM model without its rows
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	return &RecipeModel{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Name:         r.Name,
		Description:  r.Description,
		Category:     string(r.Category),
		Difficulty:   string(r.Difficulty),
		Servings:     r.Servings,
		Calories:     r.Calories,
		Protein:      r.Protein,
		Carbs:        r.Carbs,
		Fat:          r.Fat,
		Fiber:        r.Fiber,
		Instructions: datatypes.JSONSlice[string](r.Instructions),
		Tags:         datatypes.JSONSlice[string](r.Tags),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// RecipeIngredientToModel converts one recipe row
func RecipeIngredientToModel(row recipe.RecipeIngredient) RecipeIngredientModel {
	return RecipeIngredientModel{
		ID:           row.ID,
		RecipeID:     row.RecipeID,
		IngredientID: row.IngredientID,
		Name:         row.Name,
		Quantity:     row.Quantity,
		Unit:         row.Unit,
		OrderIndex:   row.OrderIndex,
	}
}

// ModelToRecipe converts GORM model to domain recipe
func ModelToRecipe(m *RecipeModel) *recipe.Recipe {
	r := &recipe.Recipe{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Name:         m.Name,
		Description:  m.Description,
		Category:     recipe.Category(m.Category),
		Difficulty:   recipe.Difficulty(m.Difficulty),
		Servings:     m.Servings,
		Calories:     m.Calories,
		Protein:      m.Protein,
		Carbs:        m.Carbs,
		Fat:          m.Fat,
		Fiber:        m.Fiber,
		Instructions: []string(m.Instructions),
		Tags:         []string(m.Tags),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	for _, row := range m.Ingredients {
		r.Ingredients = append(r.Ingredients, recipe.RecipeIngredient{
			ID:           row.ID,
			RecipeID:     row.RecipeID,
			IngredientID: row.IngredientID,
			Name:         row.Name,
			Quantity:     row.Quantity,
			Unit:         row.Unit,
			OrderIndex:   row.OrderIndex,
		})
	}
	return r
}

type dayTotalsJSON struct {
	Day    int         `json:"day"`
	Date   string      `json:"date,omitempty"`
	Totals plan.Macros `json:"totals"`
}

// PlanToModel converts a normalized plan and its slots to GORM models
func PlanToModel(p *plan.NutritionPlan) (*NutritionPlanModel, error) {
	goals, err := json.Marshal(p.Goals)
	if err != nil {
		return nil, fmt.Errorf("marshal goals: %w", err)
	}

	totals := make([]dayTotalsJSON, 0, len(p.Days))
	var meals []MealSlotModel
	for _, d := range p.Days {
		totals = append(totals, dayTotalsJSON{Day: d.Day, Date: d.Date, Totals: d.Totals})
		for _, s := range d.Meals {
			meals = append(meals, MealSlotModel{
				ID:               s.ID,
				PlanID:           p.ID,
				Day:              d.Day,
				Date:             d.Date,
				Type:             string(s.Type),
				Name:             s.Name,
				OriginalMealName: s.OriginalMealName,
				Description:      s.Description,
				RecipeID:         s.RecipeID,
				OrderIndex:       s.OrderIndex,
				Calories:         s.Nutrition.Calories,
				Protein:          s.Nutrition.Protein,
				Carbs:            s.Nutrition.Carbs,
				Fat:              s.Nutrition.Fat,
				Fiber:            s.Nutrition.Fiber,
				Ingredients:      datatypes.JSONSlice[string](s.Ingredients),
			})
		}
	}
	dayTotals, err := json.Marshal(totals)
	if err != nil {
		return nil, fmt.Errorf("marshal day totals: %w", err)
	}

	return &NutritionPlanModel{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		ClientID:    p.ClientID,
		Title:       p.Title,
		Description: p.Description,
		Duration:    p.Duration,
		Goals:       datatypes.JSON(goals),
		DayTotals:   datatypes.JSON(dayTotals),
		Foods:       datatypes.JSONSlice[plan.AddedFood](p.Foods),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Meals:       meals,
	}, nil
}

// ModelToPlan converts GORM models back into a normalized plan. Meals must
// be loaded ordered by day and order index.
func ModelToPlan(m *NutritionPlanModel) (*plan.NutritionPlan, error) {
	p := &plan.NutritionPlan{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		ClientID:    m.ClientID,
		Title:       m.Title,
		Description: m.Description,
		Duration:    m.Duration,
		Foods:       []plan.AddedFood(m.Foods),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if len(m.Goals) > 0 {
		if err := json.Unmarshal(m.Goals, &p.Goals); err != nil {
			return nil, fmt.Errorf("unmarshal goals: %w", err)
		}
	}

	var totals []dayTotalsJSON
	if len(m.DayTotals) > 0 {
		if err := json.Unmarshal(m.DayTotals, &totals); err != nil {
			return nil, fmt.Errorf("unmarshal day totals: %w", err)
		}
	}

	index := make(map[int]int, len(totals))
	for _, t := range totals {
		index[t.Day] = len(p.Days)
		p.Days = append(p.Days, plan.PlanDay{Day: t.Day, Date: t.Date, Totals: t.Totals})
	}

	for _, s := range m.Meals {
		i, ok := index[s.Day]
		if !ok {
			i = len(p.Days)
			index[s.Day] = i
			p.Days = append(p.Days, plan.PlanDay{Day: s.Day, Date: s.Date})
		}
		p.Days[i].Meals = append(p.Days[i].Meals, plan.MealSlot{
			ID:               s.ID,
			Day:              s.Day,
			Date:             s.Date,
			Type:             plan.MealType(s.Type),
			Name:             s.Name,
			OriginalMealName: s.OriginalMealName,
			Description:      s.Description,
			RecipeID:         s.RecipeID,
			OrderIndex:       s.OrderIndex,
			Nutrition: plan.Macros{
				Calories: s.Calories,
				Protein:  s.Protein,
				Carbs:    s.Carbs,
				Fat:      s.Fat,
				Fiber:    s.Fiber,
			},
			Ingredients: []string(s.Ingredients),
		})
	}

	return p, nil
}

// TemplateToModel converts a template to GORM model
func TemplateToModel(t *plan.Template) (*PlanTemplateModel, error) {
	days, err := json.Marshal(t.Days)
	if err != nil {
		return nil, fmt.Errorf("marshal template days: %w", err)
	}
	return &PlanTemplateModel{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Goal:        string(t.Goal),
		Name:        t.Name,
		Description: t.Description,
		Days:        datatypes.JSON(days),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

// ModelToTemplate converts GORM model to a template
func ModelToTemplate(m *PlanTemplateModel) (*plan.Template, error) {
	t := &plan.Template{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Goal:        plan.Goal(m.Goal),
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if len(m.Days) > 0 {
		if err := json.Unmarshal(m.Days, &t.Days); err != nil {
			return nil, fmt.Errorf("unmarshal template days: %w", err)
		}
	}
	return t, nil
}

// ShoppingListToModel converts a list and its items
func ShoppingListToModel(l *shopping.List) *ShoppingListModel {
	m := &ShoppingListModel{
		ID:             l.ID,
		OwnerID:        l.OwnerID,
		ClientID:       l.ClientID,
		PlanID:         l.Source.PlanID,
		TemplateID:     l.Source.TemplateID,
		Name:           l.Name,
		Status:         string(l.Status),
		TotalItems:     l.TotalItems,
		CompletedItems: l.CompletedItems,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	for _, it := range l.Items {
		m.Items = append(m.Items, *ShoppingItemToModel(&it))
	}
	return m
}

// ShoppingItemToModel converts one item
func ShoppingItemToModel(it *shopping.Item) *ShoppingListItemModel {
	return &ShoppingListItemModel{
		ID:          it.ID,
		ListID:      it.ListID,
		Name:        it.Name,
		Quantity:    it.Quantity,
		Unit:        it.Unit,
		Category:    string(it.Category),
		IsPurchased: it.IsPurchased,
		OrderIndex:  it.OrderIndex,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// ModelToShoppingList converts GORM models to a list
func ModelToShoppingList(m *ShoppingListModel) *shopping.List {
	l := &shopping.List{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		ClientID:       m.ClientID,
		Name:           m.Name,
		Source:         shopping.Source{PlanID: m.PlanID, TemplateID: m.TemplateID},
		Status:         shopping.Status(m.Status),
		TotalItems:     m.TotalItems,
		CompletedItems: m.CompletedItems,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	for _, it := range m.Items {
		l.Items = append(l.Items, shopping.Item{
			ID:          it.ID,
			ListID:      it.ListID,
			Name:        it.Name,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Category:    shopping.Category(it.Category),
			IsPurchased: it.IsPurchased,
			OrderIndex:  it.OrderIndex,
			CreatedAt:   it.CreatedAt,
			UpdatedAt:   it.UpdatedAt,
		})
	}
	return l
}

// ClientToModel converts a client
func ClientToModel(c *progress.Client) *ClientModel {
	return &ClientModel{
		ID:             c.ID,
		OwnerID:        c.OwnerID,
		Name:           c.Name,
		Email:          c.Email,
		StartingWeight: c.StartingWeight,
		CurrentWeight:  c.CurrentWeight,
		GoalWeight:     c.GoalWeight,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ModelToClient converts GORM model to a client
func ModelToClient(m *ClientModel) *progress.Client {
	return &progress.Client{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		Name:           m.Name,
		Email:          m.Email,
		StartingWeight: m.StartingWeight,
		CurrentWeight:  m.CurrentWeight,
		GoalWeight:     m.GoalWeight,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ProgressEntryToModel converts an entry
func ProgressEntryToModel(e *progress.Entry) *ProgressEntryModel {
	return &ProgressEntryModel{
		ID:        e.ID,
		ClientID:  e.ClientID,
		Date:      e.Date,
		Weight:    e.Weight,
		BodyFat:   e.BodyFat,
		Waist:     e.Waist,
		Hips:      e.Hips,
		Chest:     e.Chest,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
	}
}

// ModelToProgressEntry converts GORM model to an entry
func ModelToProgressEntry(m *ProgressEntryModel) progress.Entry {
	return progress.Entry{
		ID:        m.ID,
		ClientID:  m.ClientID,
		Date:      m.Date,
		Weight:    m.Weight,
		BodyFat:   m.BodyFat,
		Waist:     m.Waist,
		Hips:      m.Hips,
		Chest:     m.Chest,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
