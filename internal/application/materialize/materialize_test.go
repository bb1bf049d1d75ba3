package materialize

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/ingredient"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/recipe"
	"github.com/nutriplan/core/internal/infrastructure/persistence/gorm"
	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/nutriplan/core/test/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type MaterializeTestSuite struct {
	suite.Suite
	ctx         context.Context
	ownerID     uuid.UUID
	ingredients *testutils.MockIngredientRepository
	recipes     *testutils.MockRecipeRepository
}

func TestMaterializeTestSuite(t *testing.T) {
	suite.Run(t, new(MaterializeTestSuite))
}

func (s *MaterializeTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ownerID = uuid.New()
	s.ingredients = new(testutils.MockIngredientRepository)
	s.recipes = new(testutils.MockRecipeRepository)
}

func (s *MaterializeTestSuite) TestCandidates() {
	s.Run("FreeText_ShouldParseNamesAndUnits", func() {
		got := Candidates(testutils.BowlDeQuinoa())

		s.Equal([]ingredient.Candidate{
			{Name: "quinoa", Unit: "g"},
			{Name: "avocat", Unit: "piece"},
			{Name: "huile d'olive", Unit: "ml"},
		}, got)
	})

	s.Run("StructuredRows_ShouldWinAndDedupe", func() {
		g := testutils.BowlDeQuinoa()
		g.Days[0].Meals[0].IngredientsNutrition = []plan.IngredientNutrition{
			{Name: "quinoa", Quantity: 150, Unit: "g", Calories: 368, Protein: 14},
			{Name: "quinoa", Quantity: 20, Unit: "g", Calories: 1},
		}

		got := Candidates(g)

		s.Require().Len(got, 1)
		s.Equal(368.0, got[0].Nutrition.Calories)
	})
}

func (s *MaterializeTestSuite) TestNormalize() {
	s.Run("MixedBatch_ShouldCreateOnlyMissingAndContinueOnErrors", func() {
		// Arrange
		s.SetupTest()
		existing, _ := ingredient.New("quinoa", "g", ingredient.NutritionFacts{})
		s.ingredients.On("FindByName", mock.Anything, "quinoa").Return(existing, nil)
		s.ingredients.On("FindByName", mock.Anything, "avocat").Return(nil, errors.New("connection reset"))
		s.ingredients.On("FindByName", mock.Anything, "huile d'olive").Return(nil, nil)
		s.ingredients.On("FindByName", mock.Anything, "banane").Return(nil, nil)
		s.ingredients.On("Create", mock.Anything, mock.MatchedBy(func(i *ingredient.Ingredient) bool {
			return i.Name == "huile d'olive"
		})).Return(nil)
		s.ingredients.On("Create", mock.Anything, mock.MatchedBy(func(i *ingredient.Ingredient) bool {
			return i.Name == "banane"
		})).Return(outbound.ErrAlreadyExists)

		n := NewNormalizer(s.ingredients, zaptest.NewLogger(s.T()))

		// Act
		result := n.Normalize(s.ctx, []ingredient.Candidate{
			{Name: "quinoa", Unit: "g"},
			{Name: "avocat", Unit: "piece"},
			{Name: "huile d'olive", Unit: "ml"},
			{Name: "banane", Unit: "g"},
		})

		// Assert
		s.Require().Len(result.Created, 1)
		s.Equal("huile d'olive", result.Created[0].Name)
		s.Equal(ingredient.UnitTypeVolume, result.Created[0].UnitType)
		s.Equal(2, result.Existing)
		s.Require().Len(result.Failures, 1)
		s.Equal("avocat", result.Failures[0].Item)
		s.ingredients.AssertExpectations(s.T())
	})

	s.Run("CancelledContext_ShouldStop", func() {
		s.SetupTest()
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()

		result := NewNormalizer(s.ingredients, zaptest.NewLogger(s.T())).
			Normalize(ctx, []ingredient.Candidate{{Name: "quinoa"}})

		s.Empty(result.Created)
		s.Len(result.Failures, 1)
		s.ingredients.AssertNotCalled(s.T(), "FindByName", mock.Anything, mock.Anything)
	})
}

func (s *MaterializeTestSuite) TestMaterialize() {
	s.Run("NewMeal_ShouldCreateRecipeWithDefaultsAndRows", func() {
		// Arrange
		s.SetupTest()
		quinoa, _ := ingredient.New("quinoa", "g", ingredient.NutritionFacts{})
		s.recipes.On("FindByOwnerAndName", mock.Anything, s.ownerID, "Bowl de quinoa").Return(nil, nil)
		s.recipes.On("Create", mock.Anything, mock.AnythingOfType("*recipe.Recipe")).Return(nil)
		s.recipes.On("AddIngredients", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		s.ingredients.On("FindByName", mock.Anything, "quinoa").Return(quinoa, nil)
		s.ingredients.On("FindByName", mock.Anything, mock.Anything).Return(nil, nil)

		m := NewMaterializer(s.recipes, s.ingredients, zaptest.NewLogger(s.T()))

		// Act
		result := m.Materialize(s.ctx, s.ownerID, testutils.BowlDeQuinoa())

		// Assert
		s.Equal(1, result.Created)
		s.Zero(result.Reused)
		s.Empty(result.Failures)
		s.Require().Len(result.Recipes, 1)
		r := result.Recipes[0]
		s.Equal(recipe.CategoryLunch, r.Category)
		s.Equal(recipe.DifficultyMedium, r.Difficulty)
		s.Equal(1, r.Servings)
		s.Equal([]string{recipe.DefaultTag}, r.Tags)
		s.Equal(520.0, *r.Calories)
		s.Require().Len(r.Ingredients, 3)
		s.Equal("quinoa", r.Ingredients[0].Name)
		s.Equal(150.0, *r.Ingredients[0].Quantity)
		s.Equal("g", r.Ingredients[0].Unit)
		s.Equal(quinoa.ID, *r.Ingredients[0].IngredientID)
		s.Equal("piece", r.Ingredients[1].Unit)
		s.Nil(r.Ingredients[1].IngredientID)
		s.Equal("huile d'olive", r.Ingredients[2].Name)
		s.Equal(2, r.Ingredients[2].OrderIndex)
	})

	s.Run("ExistingRecipe_ShouldBeReused", func() {
		s.SetupTest()
		existing, _ := recipe.NewRecipe(s.ownerID, "Bowl de quinoa")
		s.recipes.On("FindByOwnerAndName", mock.Anything, s.ownerID, "Bowl de quinoa").Return(existing, nil)

		result := NewMaterializer(s.recipes, s.ingredients, zaptest.NewLogger(s.T())).
			Materialize(s.ctx, s.ownerID, testutils.BowlDeQuinoa())

		s.Equal(1, result.Reused)
		s.Zero(result.Created)
		s.Same(existing, result.Recipes[0])
		s.recipes.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
	})

	s.Run("CreateConflict_ShouldReReadStoredRecipe", func() {
		s.SetupTest()
		stored, _ := recipe.NewRecipe(s.ownerID, "Bowl de quinoa")
		s.recipes.On("FindByOwnerAndName", mock.Anything, s.ownerID, "Bowl de quinoa").Return(nil, nil).Once()
		s.recipes.On("Create", mock.Anything, mock.Anything).Return(outbound.ErrAlreadyExists)
		s.recipes.On("FindByOwnerAndName", mock.Anything, s.ownerID, "Bowl de quinoa").Return(stored, nil).Once()

		result := NewMaterializer(s.recipes, s.ingredients, zaptest.NewLogger(s.T())).
			Materialize(s.ctx, s.ownerID, testutils.BowlDeQuinoa())

		s.Equal(1, result.Reused)
		s.Equal(stored.ID, result.Recipes[0].ID)
		s.Empty(result.Failures)
	})

	s.Run("RowBatchFailure_ShouldKeepRecipeAndReport", func() {
		s.SetupTest()
		s.recipes.On("FindByOwnerAndName", mock.Anything, s.ownerID, mock.Anything).Return(nil, nil)
		s.recipes.On("Create", mock.Anything, mock.Anything).Return(nil)
		s.recipes.On("AddIngredients", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
		s.ingredients.On("FindByName", mock.Anything, mock.Anything).Return(nil, nil)

		result := NewMaterializer(s.recipes, s.ingredients, zaptest.NewLogger(s.T())).
			Materialize(s.ctx, s.ownerID, testutils.BowlDeQuinoa())

		s.Equal(1, result.Created)
		s.Require().Len(result.Recipes, 1)
		s.Empty(result.Recipes[0].Ingredients)
		s.Require().Len(result.Failures, 1)
		s.Equal(StageRecipes, result.Failures[0].Stage)
	})

	s.Run("StructuredRows_ShouldPairByIndexAndOverrideUnit", func() {
		s.SetupTest()
		g := testutils.BowlDeQuinoa()
		meal := &g.Days[0].Meals[0]
		meal.Tags = []string{"végétarien"}
		meal.IngredientsNutrition = []plan.IngredientNutrition{
			{Name: "quinoa", Quantity: 150, Unit: "g"},
			{Name: "avocat", Quantity: 1, Unit: "piece"},
			{Name: "huile d'olive", Quantity: 50, Unit: "ml"},
		}
		var rows []recipe.RecipeIngredient
		s.recipes.On("FindByOwnerAndName", mock.Anything, s.ownerID, mock.Anything).Return(nil, nil)
		s.recipes.On("Create", mock.Anything, mock.Anything).Return(nil)
		s.recipes.On("AddIngredients", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { rows = args.Get(2).([]recipe.RecipeIngredient) }).
			Return(nil)
		s.ingredients.On("FindByName", mock.Anything, mock.Anything).Return(nil, nil)

		result := NewMaterializer(s.recipes, s.ingredients, zaptest.NewLogger(s.T())).
			Materialize(s.ctx, s.ownerID, g)

		s.Require().Len(rows, 3)
		s.Equal("piece", rows[1].Unit)
		s.Equal(1.0, *rows[1].Quantity)
		s.Equal([]string{"végétarien"}, result.Recipes[0].Tags)
	})

	s.Run("EmptyIngredientList_ShouldBeSkipped", func() {
		s.SetupTest()
		g := testutils.BowlDeQuinoa()
		g.Days[0].Meals[0].Ingredients = nil

		result := NewMaterializer(s.recipes, s.ingredients, zaptest.NewLogger(s.T())).
			Materialize(s.ctx, s.ownerID, g)

		s.Empty(result.Recipes)
		s.recipes.AssertNotCalled(s.T(), "FindByOwnerAndName", mock.Anything, mock.Anything, mock.Anything)
	})
}

func (s *MaterializeTestSuite) TestMaterialize_Stored() {
	s.Run("PaddedMealName_ShouldBeReusedOnRerun", func() {
		// Arrange
		db := testutils.NewSQLiteDB(s.T())
		m := NewMaterializer(gorm.NewRecipeRepository(db), gorm.NewIngredientRepository(db), zaptest.NewLogger(s.T()))
		g := testutils.BowlDeQuinoa()
		g.Days[0].Meals[0].Name = "Bowl de quinoa "

		// Act
		first := m.Materialize(s.ctx, s.ownerID, g)
		second := m.Materialize(s.ctx, s.ownerID, g)

		// Assert
		s.Equal(1, first.Created)
		s.Empty(first.Failures)
		s.Zero(second.Created)
		s.Equal(1, second.Reused)
		s.Empty(second.Failures)
		s.Require().Len(second.Recipes, 1)
		s.Equal(first.Recipes[0].ID, second.Recipes[0].ID)
		s.Equal("Bowl de quinoa", second.Recipes[0].Name)

		p, err := plan.ToNormalized(plan.FromGenerated(g), plan.Header{OwnerID: s.ownerID})
		s.Require().NoError(err)
		s.Equal(1, Link(p, g, second.Recipes))
		s.Equal(first.Recipes[0].ID, *p.Days[0].Meals[0].RecipeID)
	})

	s.Run("FreeTextRows_ShouldReferenceNormalizedIngredients", func() {
		// Arrange
		db := testutils.NewSQLiteDB(s.T())
		logger := zaptest.NewLogger(s.T())
		ingredients := gorm.NewIngredientRepository(db)
		g := testutils.BowlDeQuinoa()
		g.Days[0].Meals[0].Ingredients = []string{"1.5 kg riz", "2 gros oeufs", "sel"}

		// Act
		normalized := NewNormalizer(ingredients, logger).Normalize(s.ctx, Candidates(g))
		result := NewMaterializer(gorm.NewRecipeRepository(db), ingredients, logger).Materialize(s.ctx, s.ownerID, g)

		// Assert
		s.Require().Len(normalized.Created, 3)
		byName := make(map[string]uuid.UUID)
		for _, ing := range normalized.Created {
			byName[ing.Name] = ing.ID
		}
		s.Require().Len(result.Recipes, 1)
		rows := result.Recipes[0].Ingredients
		s.Require().Len(rows, 3)
		for _, row := range rows {
			s.Require().NotNil(row.IngredientID, row.Name)
			s.Equal(byName[row.Name], *row.IngredientID, row.Name)
		}
	})
}

func (s *MaterializeTestSuite) TestLink() {
	owner := uuid.New()
	bowl, _ := recipe.NewRecipe(owner, "Bowl de quinoa")
	soup, _ := recipe.NewRecipe(owner, "Soupe  Miso")
	recipes := []*recipe.Recipe{bowl, soup}

	s.Run("OriginalMealName_ShouldLink", func() {
		g := testutils.BowlDeQuinoa()
		p, err := plan.ToNormalized(plan.FromGenerated(g), plan.Header{OwnerID: owner})
		s.Require().NoError(err)

		linked := Link(p, g, recipes)

		s.Equal(1, linked)
		s.Equal(bowl.ID, *p.Days[0].Meals[0].RecipeID)
	})

	s.Run("MissingOriginalName_ShouldRecoverFromDisplayLabel", func() {
		g := testutils.BowlDeQuinoa()
		g.Days[0].Meals = append(g.Days[0].Meals, plan.Meal{Type: "dinner", Name: "soupe miso", Ingredients: []string{"miso"}})
		p, err := plan.ToNormalized(plan.FromGenerated(g), plan.Header{OwnerID: owner})
		s.Require().NoError(err)
		for _, slot := range p.Slots() {
			slot.OriginalMealName = ""
		}

		linked := Link(p, g, recipes)

		s.Equal(2, linked)
		s.Equal(bowl.ID, *p.Days[0].Meals[0].RecipeID)
		s.Equal(soup.ID, *p.Days[0].Meals[1].RecipeID)
	})

	s.Run("NoMatch_ShouldLeaveSlotUnlinked", func() {
		g := testutils.BowlDeQuinoa()
		g.Days[0].Meals[0].Name = "Tartine"
		p, err := plan.ToNormalized(plan.FromGenerated(g), plan.Header{OwnerID: owner})
		s.Require().NoError(err)

		s.Zero(Link(p, g, recipes))
		s.Nil(p.Days[0].Meals[0].RecipeID)
	})
}
