//go:build integration

// Package integration runs the materialization pipeline against PostgreSQL
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/application/materialize"
	"github.com/nutriplan/core/internal/application/pipeline"
	appprogress "github.com/nutriplan/core/internal/application/progress"
	"github.com/nutriplan/core/internal/application/shopping"
	"github.com/nutriplan/core/internal/domain/plan"
	gormrepo "github.com/nutriplan/core/internal/infrastructure/persistence/gorm"
	"github.com/nutriplan/core/internal/infrastructure/persistence/memory"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/pkg/errors"
	"github.com/nutriplan/core/test/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type PostgresIntegrationTestSuite struct {
	suite.Suite
	ctx      context.Context
	testDB   *testutils.TestDatabase
	ownerID  uuid.UUID
	notifier *testutils.MockNotificationDispatcher
	pipeline inbound.PlanPipeline
	plans    inbound.PlanService
	progress inbound.ProgressService
}

func TestPostgresIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(PostgresIntegrationTestSuite))
}

func (s *PostgresIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.testDB = testutils.SetupTestDatabase(s.T())
}

func (s *PostgresIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.testDB.TruncateAllTables())
	s.ownerID = uuid.New()
	s.notifier = new(testutils.MockNotificationDispatcher)
	s.notifier.On("DispatchPlanSaved", mock.Anything, mock.Anything).Return(nil)

	db := s.testDB.GormDB
	logger := zaptest.NewLogger(s.T())
	ingredients := gormrepo.NewIngredientRepository(db)
	planRepo := gormrepo.NewPlanRepository(db)
	templates := gormrepo.NewTemplateRepository(db)
	lists := shopping.NewShoppingService(gormrepo.NewShoppingListRepository(db), planRepo, templates,
		shopping.Options{DefaultName: "Liste de courses"}, nil, logger)
	cache := memory.NewCacheRepository()
	s.T().Cleanup(cache.Close)

	s.pipeline = pipeline.NewPipeline(
		materialize.NewNormalizer(ingredients, logger),
		materialize.NewMaterializer(gormrepo.NewRecipeRepository(db), ingredients, logger),
		planRepo, lists, s.notifier, nil, nil, logger,
	)
	s.plans = pipeline.NewPlanService(planRepo, templates, logger)
	s.progress = appprogress.NewProgressService(gormrepo.NewClientRepository(db), gormrepo.NewProgressRepository(db),
		templates, cache, appprogress.Options{CacheTTL: time.Minute}, nil, logger)
}

func (s *PostgresIntegrationTestSuite) command() inbound.MaterializePlanCommand {
	return inbound.MaterializePlanCommand{
		OwnerID:      s.ownerID,
		Document:     plan.FromGenerated(testutils.BowlDeQuinoa()),
		ShoppingList: &inbound.ShoppingListOptions{Name: "Courses"},
	}
}

func (s *PostgresIntegrationTestSuite) TestMaterializePlan_ReusesRowsAcrossRuns() {
	first, err := s.pipeline.MaterializePlan(s.ctx, s.command())
	s.Require().NoError(err)
	s.Equal(3, first.CreatedIngredients)
	s.Equal(1, first.CreatedRecipes)
	s.Equal(1, first.LinkedMeals)
	s.NotNil(first.ShoppingListID)

	second, err := s.pipeline.MaterializePlan(s.ctx, s.command())
	s.Require().NoError(err)
	s.Equal(0, second.CreatedIngredients)
	s.Equal(0, second.CreatedRecipes)
	s.Equal(1, second.ReusedRecipes)

	var recipes, ingredients int64
	s.Require().NoError(s.testDB.GormDB.Table("recipes").Count(&recipes).Error)
	s.Require().NoError(s.testDB.GormDB.Table("ingredients").Count(&ingredients).Error)
	s.EqualValues(1, recipes)
	s.EqualValues(3, ingredients)

	saved, err := s.plans.GetPlan(s.ctx, s.ownerID, second.PlanID)
	s.Require().NoError(err)
	s.Require().Len(saved.Days, 1)
	s.Equal("Déjeuner", saved.Days[0].Meals[0].Name)
	s.NotNil(saved.Days[0].Meals[0].RecipeID)
}

func (s *PostgresIntegrationTestSuite) TestPlans_ScopedToOwner() {
	result, err := s.pipeline.MaterializePlan(s.ctx, s.command())
	s.Require().NoError(err)

	_, err = s.plans.GetPlan(s.ctx, uuid.New(), result.PlanID)
	s.True(errors.Is(err, errors.CodePlanNotFound))

	page, err := s.plans.ListPlans(s.ctx, s.ownerID, inbound.PaginationParams{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Equal(1, page.Total)
}

func (s *PostgresIntegrationTestSuite) TestProgress_AnalyzesHistory() {
	start, goal := 80.0, 70.0
	client, err := s.progress.RegisterClient(s.ctx, inbound.RegisterClientCommand{
		OwnerID: s.ownerID, Name: "Jeanne", StartingWeight: &start, GoalWeight: &goal,
	})
	s.Require().NoError(err)

	first := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i, weight := range []float64{78, 77, 76, 75} {
		_, err := s.progress.RecordEntry(s.ctx, inbound.RecordEntryCommand{
			OwnerID: s.ownerID, ClientID: client.ID, Date: first.AddDate(0, 0, 7*i), Weight: weight,
		})
		s.Require().NoError(err)
	}

	analysis, err := s.progress.Analyze(s.ctx, s.ownerID, client.ID)
	s.Require().NoError(err)
	s.Equal(4, analysis.EntryCount)
	s.InDelta(75, analysis.CurrentWeight, 0.01)
	s.InDelta(50, analysis.ProgressPercentage, 0.01)
}
