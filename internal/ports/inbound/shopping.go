package inbound

import (
	"context"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/shopping"
)

// ShoppingService generates shopping lists and mutates their items.
type ShoppingService interface {
	GenerateList(ctx context.Context, cmd GenerateShoppingListCommand) (*ShoppingListDTO, error)
	GetList(ctx context.Context, ownerID, listID uuid.UUID) (*ShoppingListDTO, error)
	ListLists(ctx context.Context, ownerID uuid.UUID, params PaginationParams) (*ShoppingListPage, error)
	ArchiveList(ctx context.Context, ownerID, listID uuid.UUID) (*ShoppingListDTO, error)

	AddItem(ctx context.Context, cmd AddShoppingItemCommand) (*ShoppingListDTO, error)
	UpdateItem(ctx context.Context, cmd UpdateShoppingItemCommand) (*ShoppingListDTO, error)
	DeleteItem(ctx context.Context, ownerID, listID, itemID uuid.UUID) (*ShoppingListDTO, error)
	ToggleItem(ctx context.Context, ownerID, listID, itemID uuid.UUID) (*ShoppingListDTO, error)
}

// GenerateShoppingListCommand names exactly one source: a saved plan, a
// template or an inline generated plan.
type GenerateShoppingListCommand struct {
	OwnerID    uuid.UUID
	ClientID   *uuid.UUID
	Name       string
	PlanID     *uuid.UUID
	TemplateID *uuid.UUID
	Generated  *plan.GeneratedPlan
	Exclude    []string
}

// AddShoppingItemCommand adds a free-text item.
type AddShoppingItemCommand struct {
	OwnerID  uuid.UUID
	ListID   uuid.UUID
	Name     string
	Quantity string
	Unit     string
	Category string
}

// UpdateShoppingItemCommand changes the provided fields of an item.
type UpdateShoppingItemCommand struct {
	OwnerID     uuid.UUID
	ListID      uuid.UUID
	ItemID      uuid.UUID
	Name        *string
	Quantity    *string
	Unit        *string
	Category    *string
	IsPurchased *bool
}

// ShoppingListDTO is the data transfer object for shopping lists
type ShoppingListDTO struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	ClientID       *uuid.UUID        `json:"client_id,omitempty"`
	PlanID         *uuid.UUID        `json:"plan_id,omitempty"`
	TemplateID     *uuid.UUID        `json:"template_id,omitempty"`
	Status         shopping.Status   `json:"status"`
	TotalItems     int               `json:"total_items"`
	CompletedItems int               `json:"completed_items"`
	Items          []ShoppingItemDTO `json:"items"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}

// ShoppingItemDTO is one list item
type ShoppingItemDTO struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Quantity    string            `json:"quantity,omitempty"`
	Unit        string            `json:"unit,omitempty"`
	Category    shopping.Category `json:"category"`
	IsPurchased bool              `json:"is_purchased"`
	OrderIndex  int               `json:"order_index"`
}

// ShoppingListPage is a page of lists without items
type ShoppingListPage struct {
	Lists    []ShoppingListDTO `json:"lists"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
