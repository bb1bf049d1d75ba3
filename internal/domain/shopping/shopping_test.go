package shopping

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		text     string
		name     string
		quantity string
		unit     string
		amount   float64
		hasQty   bool
	}{
		{text: "150g quinoa", name: "quinoa", quantity: "150", unit: "g", amount: 150, hasQty: true},
		{text: "50ml huile d'olive", name: "huile d'olive", quantity: "50", unit: "ml", amount: 50, hasQty: true},
		{text: "1 avocat", name: "avocat", quantity: "1", amount: 1, hasQty: true},
		{text: "2.5 kg pommes de terre", name: "pommes de terre", quantity: "2.5", unit: "kg", amount: 2.5, hasQty: true},
		{text: "sel et poivre", name: "sel et poivre"},
		{text: "une pincée de sel", name: "une pincée de sel"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			e := ParseEntry(tt.text)

			assert.Equal(t, tt.name, e.Name)
			assert.Equal(t, tt.unit, e.Unit)
			assert.Equal(t, tt.quantity, e.Quantity)
			if tt.hasQty {
				require.NotNil(t, e.Amount)
				assert.Equal(t, tt.amount, *e.Amount)
			} else {
				assert.Nil(t, e.Amount)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := map[string]Category{
		"quinoa":               CategoryGrains,
		"Avocat":               CategoryFruitsVegetables,
		"huile d'olive":        CategoryCondiments,
		"blanc de poulet":      CategoryProteins,
		"yaourt grec":          CategoryDairy,
		"jus d'orange":         CategoryFruitsVegetables,
		"eau pétillante":       CategoryBeverages,
		"petits pois surgelés": CategoryFruitsVegetables,
		"pain complet":         CategoryBakery,
		"veau":                 CategoryProteins,
		"volaille":             CategoryProteins,
		"xanthane":             CategoryOther,
		"":                     CategoryOther,
	}

	for name, want := range tests {
		assert.Equal(t, want, Categorize(name), name)
	}
}

func TestLoadRules(t *testing.T) {
	t.Run("ExtraRules_ShouldWinOverBuiltins", func(t *testing.T) {
		rules, err := LoadRules(strings.NewReader(`
rules:
  - category: proteins
    keywords: [seitan]
  - category: frozen
    keywords: [petits pois surgelés]
`))
		require.NoError(t, err)
		require.Len(t, rules, 2)

		c := NewCategorizer(rules...)
		assert.Equal(t, CategoryProteins, c.Categorize("seitan fumé"))
		assert.Equal(t, CategoryFrozen, c.Categorize("petits pois surgelés"))
		assert.Equal(t, CategoryGrains, c.Categorize("quinoa"))
	})

	t.Run("UnknownCategory_ShouldFail", func(t *testing.T) {
		_, err := LoadRules(strings.NewReader("rules:\n  - category: snacks\n    keywords: [chips]\n"))

		assert.ErrorIs(t, err, ErrUnknownCategory)
	})

	t.Run("EmptyFile_ShouldReturnNoRules", func(t *testing.T) {
		rules, err := LoadRules(strings.NewReader(""))

		require.NoError(t, err)
		assert.Empty(t, rules)
	})
}

func TestConsolidate(t *testing.T) {
	t.Run("SameNameAndUnit_ShouldSum", func(t *testing.T) {
		out := Consolidate([]Entry{ParseEntry("150g quinoa"), ParseEntry("100g Quinoa")})

		require.Len(t, out, 1)
		assert.Equal(t, "quinoa", out[0].Name)
		assert.Equal(t, 250.0, *out[0].Amount)
		assert.Equal(t, "250", out[0].Quantity)
		assert.Equal(t, "g", out[0].Unit)
	})

	t.Run("DifferentUnits_ShouldStaySeparate", func(t *testing.T) {
		out := Consolidate([]Entry{ParseEntry("200ml lait"), ParseEntry("1 lait"), ParseEntry("100ml lait")})

		require.Len(t, out, 2)
		assert.Equal(t, "300", out[0].Quantity)
		assert.Equal(t, "1", out[1].Quantity)
	})

	t.Run("NonNumericQuantities_ShouldNeverMerge", func(t *testing.T) {
		out := Consolidate([]Entry{
			NewEntry("sel", "une pincée", ""),
			NewEntry("sel", "une pincée", ""),
			ParseEntry("sel"),
		})

		assert.Len(t, out, 3)
	})

	t.Run("FirstOccurrenceOrder_ShouldBeKept", func(t *testing.T) {
		out := Consolidate([]Entry{ParseEntry("1 avocat"), ParseEntry("150g quinoa"), ParseEntry("2 avocat")})

		require.Len(t, out, 2)
		assert.Equal(t, "avocat", out[0].Name)
		assert.Equal(t, "3", out[0].Quantity)
		assert.Equal(t, "quinoa", out[1].Name)
	})
}

func TestBuild_ExcludedNameNeverEmitted(t *testing.T) {
	meal := func(name string, ingredients ...string) plan.Meal {
		return plan.Meal{Type: "lunch", Name: name, Ingredients: ingredients}
	}
	g := &plan.GeneratedPlan{
		Title: "Semaine",
		Days: []plan.Day{
			{Day: 1, Meals: []plan.Meal{meal("Soupe", "2 ail", "1 oignon"), meal("Poêlée", "ail", "200g courgette")}},
			{Day: 2, Meals: []plan.Meal{meal("Pâtes", "1 Ail", "100g pâtes")}},
		},
	}

	entries := Build(g.Mentions(), NewCategorizer(), []string{"ail"})

	for _, e := range entries {
		assert.NotEqual(t, "ail", strings.ToLower(e.Name))
	}
	assert.Len(t, entries, 3)
}

func TestListRecount(t *testing.T) {
	l := NewList(uuid.New(), nil, "", Source{})
	require.NoError(t, l.AppendEntries([]Entry{ParseEntry("1 avocat"), ParseEntry("150g quinoa")}))

	assert.Equal(t, 2, l.TotalItems)
	assert.Equal(t, 0, l.CompletedItems)
	assert.Equal(t, StatusActive, l.Status)
	assert.Equal(t, 1, l.Items[1].OrderIndex)
	assert.Equal(t, CategoryOther, l.Items[0].Category)

	for i := range l.Items {
		l.Items[i].IsPurchased = true
	}
	l.Recount()
	assert.Equal(t, 2, l.CompletedItems)
	assert.Equal(t, StatusCompleted, l.Status)

	l.Items[0].IsPurchased = false
	l.Recount()
	assert.Equal(t, StatusActive, l.Status)

	l.Status = StatusArchived
	l.Items[0].IsPurchased = true
	l.Recount()
	assert.Equal(t, StatusArchived, l.Status)
	assert.Equal(t, 2, l.NextOrderIndex())
}
