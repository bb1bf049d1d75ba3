package shopping

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/shopping"
	"github.com/nutriplan/core/internal/infrastructure/persistence/gorm"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/pkg/errors"
	"github.com/nutriplan/core/test/testutils"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type ShoppingServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	ownerID   uuid.UUID
	templates *plan.Template
	service   *ShoppingService
}

func TestShoppingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ShoppingServiceTestSuite))
}

func (s *ShoppingServiceTestSuite) SetupTest() {
	db := testutils.NewSQLiteDB(s.T())
	s.ctx = context.Background()
	s.ownerID = uuid.New()

	templateRepo := gorm.NewTemplateRepository(db)
	t, err := plan.NewTemplate(s.ownerID, "Semaine légère", plan.GoalWeightLoss, []plan.Day{
		{Day: 1, Meals: []plan.Meal{
			{Type: "lunch", Name: "Poulet rôti", Ingredients: []string{"200g poulet", "2 gousses ail", "100g riz"}},
			{Type: "dinner", Name: "Riz sauté", Ingredients: []string{"150g riz", "1 oignon", "sel"}},
		}},
	})
	s.Require().NoError(err)
	s.Require().NoError(templateRepo.Create(s.ctx, t))
	s.templates = t

	s.service = NewShoppingService(
		gorm.NewShoppingListRepository(db),
		gorm.NewPlanRepository(db),
		templateRepo,
		Options{DefaultName: "Liste de courses"},
		nil,
		zaptest.NewLogger(s.T()),
	)
}

func (s *ShoppingServiceTestSuite) generate(exclude ...string) *inbound.ShoppingListDTO {
	list, err := s.service.GenerateList(s.ctx, inbound.GenerateShoppingListCommand{
		OwnerID:    s.ownerID,
		TemplateID: &s.templates.ID,
		Exclude:    exclude,
	})
	s.Require().NoError(err)
	return list
}

func (s *ShoppingServiceTestSuite) names(list *inbound.ShoppingListDTO) []string {
	out := make([]string, 0, len(list.Items))
	for _, it := range list.Items {
		out = append(out, it.Name)
	}
	return out
}

func (s *ShoppingServiceTestSuite) TestGenerateList_FromTemplate() {
	list := s.generate("ail")

	s.Equal("Liste de courses", list.Name)
	s.Equal(&s.templates.ID, list.TemplateID)
	s.Equal(shopping.StatusActive, list.Status)
	s.NotContains(s.names(list), "ail")
	s.NotContains(s.names(list), "gousses ail")
	s.Equal(len(list.Items), list.TotalItems)

	for _, it := range list.Items {
		if it.Name == "riz" {
			s.Equal("250", it.Quantity)
			s.Equal("g", it.Unit)
		}
	}
}

func (s *ShoppingServiceTestSuite) TestGenerateList_RequiresExactlyOneSource() {
	_, err := s.service.GenerateList(s.ctx, inbound.GenerateShoppingListCommand{OwnerID: s.ownerID})
	s.True(errors.Is(err, errors.CodeValidationFailed))

	planID := uuid.New()
	_, err = s.service.GenerateList(s.ctx, inbound.GenerateShoppingListCommand{
		OwnerID:    s.ownerID,
		PlanID:     &planID,
		TemplateID: &s.templates.ID,
	})
	s.True(errors.Is(err, errors.CodeValidationFailed))
}

func (s *ShoppingServiceTestSuite) TestGenerateList_TemplateOfAnotherOwner() {
	_, err := s.service.GenerateList(s.ctx, inbound.GenerateShoppingListCommand{
		OwnerID:    uuid.New(),
		TemplateID: &s.templates.ID,
	})
	s.True(errors.Is(err, errors.CodeTemplateNotFound))
}

func (s *ShoppingServiceTestSuite) TestGenerateList_FromGeneratedPlan() {
	list, err := s.service.GenerateList(s.ctx, inbound.GenerateShoppingListCommand{
		OwnerID:   s.ownerID,
		Name:      "Courses quinoa",
		Generated: testutils.BowlDeQuinoa(),
	})
	s.Require().NoError(err)
	s.Equal("Courses quinoa", list.Name)
	s.Equal([]string{"quinoa", "avocat", "huile d'olive"}, s.names(list))
}

func (s *ShoppingServiceTestSuite) TestItemMutations_KeepTotalsInSync() {
	list := s.generate()
	total := list.TotalItems

	s.Run("AddItem_ShouldInferCategory", func() {
		updated, err := s.service.AddItem(s.ctx, inbound.AddShoppingItemCommand{
			OwnerID: s.ownerID, ListID: list.ID, Name: "lait", Quantity: "1", Unit: "l",
		})
		s.Require().NoError(err)
		s.Equal(total+1, updated.TotalItems)
		added := updated.Items[len(updated.Items)-1]
		s.Equal("lait", added.Name)
		s.Equal(shopping.CategoryDairy, added.Category)
		list = updated
	})

	s.Run("AddItem_ShouldRejectUnknownCategory", func() {
		_, err := s.service.AddItem(s.ctx, inbound.AddShoppingItemCommand{
			OwnerID: s.ownerID, ListID: list.ID, Name: "bougie", Category: "maison",
		})
		s.True(errors.Is(err, errors.CodeValidationFailed))
	})

	s.Run("ToggleAll_ShouldCompleteList", func() {
		var updated *inbound.ShoppingListDTO
		for _, it := range list.Items {
			var err error
			updated, err = s.service.ToggleItem(s.ctx, s.ownerID, list.ID, it.ID)
			s.Require().NoError(err)
		}
		s.Equal(updated.TotalItems, updated.CompletedItems)
		s.Equal(shopping.StatusCompleted, updated.Status)
		list = updated
	})

	s.Run("UpdateItem_ShouldReopenList", func() {
		purchased := false
		quantity := "2"
		updated, err := s.service.UpdateItem(s.ctx, inbound.UpdateShoppingItemCommand{
			OwnerID: s.ownerID, ListID: list.ID, ItemID: list.Items[0].ID,
			Quantity: &quantity, IsPurchased: &purchased,
		})
		s.Require().NoError(err)
		s.Equal("2", updated.Items[0].Quantity)
		s.Equal(updated.TotalItems-1, updated.CompletedItems)
		s.Equal(shopping.StatusActive, updated.Status)
		list = updated
	})

	s.Run("DeleteItem_ShouldCompleteWhenOnlyPurchasedRemain", func() {
		updated, err := s.service.DeleteItem(s.ctx, s.ownerID, list.ID, list.Items[0].ID)
		s.Require().NoError(err)
		s.Equal(len(updated.Items), updated.TotalItems)
		s.Equal(updated.TotalItems, updated.CompletedItems)
		s.Equal(shopping.StatusCompleted, updated.Status)
		list = updated
	})

	s.Run("DeleteItem_ShouldReportUnknownItem", func() {
		_, err := s.service.DeleteItem(s.ctx, s.ownerID, list.ID, uuid.New())
		s.True(errors.Is(err, errors.CodeNotFound))
	})

	s.Run("ArchiveList_ShouldFreezeStatus", func() {
		archived, err := s.service.ArchiveList(s.ctx, s.ownerID, list.ID)
		s.Require().NoError(err)
		s.Equal(shopping.StatusArchived, archived.Status)

		updated, err := s.service.ToggleItem(s.ctx, s.ownerID, list.ID, list.Items[0].ID)
		s.Require().NoError(err)
		s.Equal(shopping.StatusArchived, updated.Status)
		s.Equal(updated.TotalItems-1, updated.CompletedItems)
	})
}

func (s *ShoppingServiceTestSuite) TestOwnerScoping() {
	list := s.generate()

	_, err := s.service.GetList(s.ctx, uuid.New(), list.ID)
	s.True(errors.Is(err, errors.CodeShoppingListNotFound))

	_, err = s.service.ToggleItem(s.ctx, uuid.New(), list.ID, list.Items[0].ID)
	s.True(errors.Is(err, errors.CodeShoppingListNotFound))

	page, err := s.service.ListLists(s.ctx, s.ownerID, inbound.PaginationParams{})
	s.Require().NoError(err)
	s.Equal(1, page.Total)
	s.Equal(20, page.PageSize)
}
