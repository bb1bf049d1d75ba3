// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/ingredient"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/progress"
	"github.com/nutriplan/core/internal/domain/recipe"
	"github.com/nutriplan/core/internal/domain/shopping"
	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

var (
	_ outbound.IngredientRepository   = (*MockIngredientRepository)(nil)
	_ outbound.RecipeRepository       = (*MockRecipeRepository)(nil)
	_ outbound.PlanRepository         = (*MockPlanRepository)(nil)
	_ outbound.TemplateRepository     = (*MockTemplateRepository)(nil)
	_ outbound.ShoppingListRepository = (*MockShoppingListRepository)(nil)
	_ outbound.ProgressRepository     = (*MockProgressRepository)(nil)
	_ outbound.ClientRepository       = (*MockClientRepository)(nil)
	_ outbound.CacheRepository        = (*MockCacheRepository)(nil)
	_ outbound.NotificationDispatcher = (*MockNotificationDispatcher)(nil)
)

// MockIngredientRepository provides a mock implementation of IngredientRepository
type MockIngredientRepository struct {
	mock.Mock
}

func (m *MockIngredientRepository) FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error) {
	args := m.Called(ctx, name)
	ing, _ := args.Get(0).(*ingredient.Ingredient)
	return ing, args.Error(1)
}

func (m *MockIngredientRepository) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	return m.Called(ctx, ing).Error(0)
}

func (m *MockIngredientRepository) List(ctx context.Context, offset, limit int) ([]*ingredient.Ingredient, int, error) {
	args := m.Called(ctx, offset, limit)
	list, _ := args.Get(0).([]*ingredient.Ingredient)
	return list, args.Int(1), args.Error(2)
}

// MockRecipeRepository provides a mock implementation of RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*recipe.Recipe, error) {
	args := m.Called(ctx, ownerID, name)
	r, _ := args.Get(0).(*recipe.Recipe)
	return r, args.Error(1)
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*recipe.Recipe)
	return r, args.Error(1)
}

func (m *MockRecipeRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	list, _ := args.Get(0).([]*recipe.Recipe)
	return list, args.Int(1), args.Error(2)
}

func (m *MockRecipeRepository) Create(ctx context.Context, r *recipe.Recipe) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRecipeRepository) AddIngredients(ctx context.Context, recipeID uuid.UUID, rows []recipe.RecipeIngredient) error {
	return m.Called(ctx, recipeID, rows).Error(0)
}

// MockPlanRepository provides a mock implementation of PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, p *plan.NutritionPlan) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*plan.NutritionPlan, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*plan.NutritionPlan)
	return p, args.Error(1)
}

func (m *MockPlanRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*plan.NutritionPlan, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	list, _ := args.Get(0).([]*plan.NutritionPlan)
	return list, args.Int(1), args.Error(2)
}

func (m *MockPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockTemplateRepository provides a mock implementation of TemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, t *plan.Template) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*plan.Template, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*plan.Template)
	return t, args.Error(1)
}

func (m *MockTemplateRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*plan.Template, error) {
	args := m.Called(ctx, ownerID)
	list, _ := args.Get(0).([]*plan.Template)
	return list, args.Error(1)
}

func (m *MockTemplateRepository) FindByOwnerAndGoal(ctx context.Context, ownerID uuid.UUID, goal plan.Goal) ([]*plan.Template, error) {
	args := m.Called(ctx, ownerID, goal)
	list, _ := args.Get(0).([]*plan.Template)
	return list, args.Error(1)
}

// MockShoppingListRepository provides a mock implementation of ShoppingListRepository
type MockShoppingListRepository struct {
	mock.Mock
}

func (m *MockShoppingListRepository) Create(ctx context.Context, l *shopping.List) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockShoppingListRepository) FindByID(ctx context.Context, id uuid.UUID) (*shopping.List, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*shopping.List)
	return l, args.Error(1)
}

func (m *MockShoppingListRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*shopping.List, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	list, _ := args.Get(0).([]*shopping.List)
	return list, args.Int(1), args.Error(2)
}

func (m *MockShoppingListRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shopping.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockShoppingListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockShoppingListRepository) AddItem(ctx context.Context, listID uuid.UUID, item *shopping.Item) (*shopping.List, error) {
	args := m.Called(ctx, listID, item)
	l, _ := args.Get(0).(*shopping.List)
	return l, args.Error(1)
}

func (m *MockShoppingListRepository) UpdateItem(ctx context.Context, listID uuid.UUID, item *shopping.Item) (*shopping.List, error) {
	args := m.Called(ctx, listID, item)
	l, _ := args.Get(0).(*shopping.List)
	return l, args.Error(1)
}

func (m *MockShoppingListRepository) DeleteItem(ctx context.Context, listID, itemID uuid.UUID) (*shopping.List, error) {
	args := m.Called(ctx, listID, itemID)
	l, _ := args.Get(0).(*shopping.List)
	return l, args.Error(1)
}

func (m *MockShoppingListRepository) ToggleItem(ctx context.Context, listID, itemID uuid.UUID) (*shopping.List, error) {
	args := m.Called(ctx, listID, itemID)
	l, _ := args.Get(0).(*shopping.List)
	return l, args.Error(1)
}

// MockProgressRepository provides a mock implementation of ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Create(ctx context.Context, e *progress.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockProgressRepository) FindByID(ctx context.Context, id uuid.UUID) (*progress.Entry, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*progress.Entry)
	return e, args.Error(1)
}

func (m *MockProgressRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]progress.Entry, error) {
	args := m.Called(ctx, clientID)
	list, _ := args.Get(0).([]progress.Entry)
	return list, args.Error(1)
}

func (m *MockProgressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockClientRepository provides a mock implementation of ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, c *progress.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*progress.Client, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*progress.Client)
	return c, args.Error(1)
}

func (m *MockClientRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*progress.Client, error) {
	args := m.Called(ctx, ownerID)
	list, _ := args.Get(0).([]*progress.Client)
	return list, args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, c *progress.Client) error {
	return m.Called(ctx, c).Error(0)
}

// MockCacheRepository provides a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockNotificationDispatcher provides a mock implementation of NotificationDispatcher
type MockNotificationDispatcher struct {
	mock.Mock
}

func (m *MockNotificationDispatcher) DispatchPlanSaved(ctx context.Context, n outbound.PlanNotification) error {
	return m.Called(ctx, n).Error(0)
}
