// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/ingredient"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/progress"
	"github.com/nutriplan/core/internal/domain/recipe"
	"github.com/nutriplan/core/internal/domain/shopping"
)

var (
	// ErrNotFound is returned by operations that require an existing record.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists signals a unique-key conflict. Callers re-read and
	// reuse the stored record.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys.
	ErrCacheMiss = errors.New("cache miss")
)

// IngredientRepository is the global ingredient directory.
// FindByName matches exactly and returns (nil, nil) when absent.
type IngredientRepository interface {
	FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error)
	Create(ctx context.Context, ing *ingredient.Ingredient) error
	List(ctx context.Context, offset, limit int) ([]*ingredient.Ingredient, int, error)
}

// RecipeRepository persists owner-scoped recipes.
type RecipeRepository interface {
	// FindByOwnerAndName matches exactly and returns (nil, nil) when absent.
	FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*recipe.Recipe, error)
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int, error)

	// Create stores the recipe header only.
	Create(ctx context.Context, r *recipe.Recipe) error
	// AddIngredients inserts all rows in one batch.
	AddIngredients(ctx context.Context, recipeID uuid.UUID, rows []recipe.RecipeIngredient) error
}

// PlanRepository persists normalized plans with their meal slots.
type PlanRepository interface {
	Create(ctx context.Context, p *plan.NutritionPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*plan.NutritionPlan, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*plan.NutritionPlan, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TemplateRepository persists plan templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *plan.Template) error
	FindByID(ctx context.Context, id uuid.UUID) (*plan.Template, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*plan.Template, error)
	FindByOwnerAndGoal(ctx context.Context, ownerID uuid.UUID, goal plan.Goal) ([]*plan.Template, error)
}

// ShoppingListRepository persists lists and their items. Every item
// mutation recounts the cached totals in the same transaction and returns
// the refreshed list.
type ShoppingListRepository interface {
	Create(ctx context.Context, l *shopping.List) error
	FindByID(ctx context.Context, id uuid.UUID) (*shopping.List, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*shopping.List, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status shopping.Status) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddItem(ctx context.Context, listID uuid.UUID, item *shopping.Item) (*shopping.List, error)
	UpdateItem(ctx context.Context, listID uuid.UUID, item *shopping.Item) (*shopping.List, error)
	DeleteItem(ctx context.Context, listID, itemID uuid.UUID) (*shopping.List, error)
	ToggleItem(ctx context.Context, listID, itemID uuid.UUID) (*shopping.List, error)
}

// ProgressRepository persists progress entries.
type ProgressRepository interface {
	Create(ctx context.Context, e *progress.Entry) error
	FindByID(ctx context.Context, id uuid.UUID) (*progress.Entry, error)
	// FindByClient returns entries newest first.
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]progress.Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClientRepository persists client profiles.
type ClientRepository interface {
	Create(ctx context.Context, c *progress.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*progress.Client, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*progress.Client, error)
	Update(ctx context.Context, c *progress.Client) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PlanNotification is the summary sent once a plan has been saved.
type PlanNotification struct {
	PlanID             uuid.UUID  `json:"planId"`
	OwnerID            uuid.UUID  `json:"ownerId"`
	ClientID           *uuid.UUID `json:"clientId,omitempty"`
	Recipient          string     `json:"recipient,omitempty"`
	Title              string     `json:"title"`
	Days               int        `json:"days"`
	LinkedMeals        int        `json:"linkedMeals"`
	CreatedIngredients int        `json:"createdIngredients"`
	CreatedRecipes     int        `json:"createdRecipes"`
	ShoppingListID     *uuid.UUID `json:"shoppingListId,omitempty"`
	SentAt             time.Time  `json:"sentAt"`
}

// NotificationDispatcher delivers plan notifications. Delivery failures are
// reported to the caller, which only logs them.
type NotificationDispatcher interface {
	DispatchPlanSaved(ctx context.Context, n PlanNotification) error
}
