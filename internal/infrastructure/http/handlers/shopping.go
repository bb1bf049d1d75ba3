package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/infrastructure/http/render"
	"github.com/nutriplan/core/internal/ports/inbound"
)

// GenerateShoppingListRequest is the body of POST /shopping-lists. Exactly
// one of plan_id, template_id or plan is set.
type GenerateShoppingListRequest struct {
	Name       string              `json:"name" validate:"max=255"`
	ClientID   *uuid.UUID          `json:"client_id"`
	PlanID     *uuid.UUID          `json:"plan_id"`
	TemplateID *uuid.UUID          `json:"template_id"`
	Plan       *plan.GeneratedPlan `json:"plan"`
	Exclude    []string            `json:"exclude"`
}

// AddShoppingItemRequest is the body of POST /shopping-lists/{listID}/items
type AddShoppingItemRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Quantity string `json:"quantity" validate:"max=50"`
	Unit     string `json:"unit" validate:"max=50"`
	Category string `json:"category" validate:"omitempty,shopping_category"`
}

// UpdateShoppingItemRequest is the body of PATCH
// /shopping-lists/{listID}/items/{itemID}; absent fields are left unchanged.
type UpdateShoppingItemRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Quantity    *string `json:"quantity" validate:"omitempty,max=50"`
	Unit        *string `json:"unit" validate:"omitempty,max=50"`
	Category    *string `json:"category" validate:"omitempty,shopping_category"`
	IsPurchased *bool   `json:"is_purchased"`
}

// GenerateShoppingList handles POST /shopping-lists
func (h *Handlers) GenerateShoppingList(w http.ResponseWriter, r *http.Request) {
	var req GenerateShoppingListRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.services.Shopping.GenerateList(r.Context(), inbound.GenerateShoppingListCommand{
		OwnerID:    h.owner(r),
		ClientID:   req.ClientID,
		Name:       req.Name,
		PlanID:     req.PlanID,
		TemplateID: req.TemplateID,
		Generated:  req.Plan,
		Exclude:    req.Exclude,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, list)
}

// ListShoppingLists handles GET /shopping-lists
func (h *Handlers) ListShoppingLists(w http.ResponseWriter, r *http.Request) {
	page, err := h.services.Shopping.ListLists(r.Context(), h.owner(r), pagination(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, page)
}

// GetShoppingList handles GET /shopping-lists/{listID}
func (h *Handlers) GetShoppingList(w http.ResponseWriter, r *http.Request) {
	h.withList(w, r, func(listID uuid.UUID) (*inbound.ShoppingListDTO, error) {
		return h.services.Shopping.GetList(r.Context(), h.owner(r), listID)
	})
}

// ArchiveShoppingList handles POST /shopping-lists/{listID}/archive
func (h *Handlers) ArchiveShoppingList(w http.ResponseWriter, r *http.Request) {
	h.withList(w, r, func(listID uuid.UUID) (*inbound.ShoppingListDTO, error) {
		return h.services.Shopping.ArchiveList(r.Context(), h.owner(r), listID)
	})
}

// AddShoppingItem handles POST /shopping-lists/{listID}/items
func (h *Handlers) AddShoppingItem(w http.ResponseWriter, r *http.Request) {
	listID, err := h.idParam(r, "listID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req AddShoppingItemRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.services.Shopping.AddItem(r.Context(), inbound.AddShoppingItemCommand{
		OwnerID:  h.owner(r),
		ListID:   listID,
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Category: req.Category,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, list)
}

// UpdateShoppingItem handles PATCH /shopping-lists/{listID}/items/{itemID}
func (h *Handlers) UpdateShoppingItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateShoppingItemRequest
	h.withItem(w, r, &req, func(listID, itemID uuid.UUID) (*inbound.ShoppingListDTO, error) {
		return h.services.Shopping.UpdateItem(r.Context(), inbound.UpdateShoppingItemCommand{
			OwnerID:     h.owner(r),
			ListID:      listID,
			ItemID:      itemID,
			Name:        req.Name,
			Quantity:    req.Quantity,
			Unit:        req.Unit,
			Category:    req.Category,
			IsPurchased: req.IsPurchased,
		})
	})
}

// DeleteShoppingItem handles DELETE /shopping-lists/{listID}/items/{itemID}
func (h *Handlers) DeleteShoppingItem(w http.ResponseWriter, r *http.Request) {
	h.withItem(w, r, nil, func(listID, itemID uuid.UUID) (*inbound.ShoppingListDTO, error) {
		return h.services.Shopping.DeleteItem(r.Context(), h.owner(r), listID, itemID)
	})
}

// ToggleShoppingItem handles POST /shopping-lists/{listID}/items/{itemID}/toggle
func (h *Handlers) ToggleShoppingItem(w http.ResponseWriter, r *http.Request) {
	h.withItem(w, r, nil, func(listID, itemID uuid.UUID) (*inbound.ShoppingListDTO, error) {
		return h.services.Shopping.ToggleItem(r.Context(), h.owner(r), listID, itemID)
	})
}

func (h *Handlers) withList(w http.ResponseWriter, r *http.Request, fn func(listID uuid.UUID) (*inbound.ShoppingListDTO, error)) {
	listID, err := h.idParam(r, "listID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := fn(listID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, list)
}

// withItem parses both path ids and, when body is not nil, the request body
func (h *Handlers) withItem(w http.ResponseWriter, r *http.Request, body interface{}, fn func(listID, itemID uuid.UUID) (*inbound.ShoppingListDTO, error)) {
	listID, err := h.idParam(r, "listID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	itemID, err := h.idParam(r, "itemID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if body != nil {
		if err := h.decode(w, r, body); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	list, err := fn(listID, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, list)
}
