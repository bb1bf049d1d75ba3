package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/nutrition"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/infrastructure/http/render"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/pkg/errors"
)

// MaterializePlanRequest is the body of POST /plans/materialize
type MaterializePlanRequest struct {
	ClientID     *uuid.UUID                `json:"client_id"`
	Recipient    string                    `json:"recipient" validate:"omitempty,email"`
	Document     plan.Document             `json:"document"`
	Foods        []nutrition.FoodSelection `json:"foods" validate:"dive"`
	ShoppingList *ShoppingListRequest      `json:"shopping_list"`
}

// ShoppingListRequest asks the pipeline for a shopping list
type ShoppingListRequest struct {
	Name    string   `json:"name" validate:"max=255"`
	Exclude []string `json:"exclude"`
}

// AggregateRequest is the body of the nutrition endpoints. Document is only
// read by POST /nutrition/aggregate.
type AggregateRequest struct {
	Document *plan.Document            `json:"document,omitempty"`
	Foods    []nutrition.FoodSelection `json:"foods" validate:"dive"`
}

// CreateTemplateRequest is the body of POST /templates
type CreateTemplateRequest struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description"`
	Goal        plan.Goal  `json:"goal" validate:"required,oneof=weight_loss weight_gain maintenance"`
	Days        []plan.Day `json:"days" validate:"dive"`
}

// MaterializePlan handles POST /plans/materialize
func (h *Handlers) MaterializePlan(w http.ResponseWriter, r *http.Request) {
	var req MaterializePlanRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateDocument(req.Document); err != nil {
		h.fail(w, r, err)
		return
	}

	cmd := inbound.MaterializePlanCommand{
		OwnerID:   h.owner(r),
		ClientID:  req.ClientID,
		Recipient: req.Recipient,
		Document:  req.Document,
		Foods:     req.Foods,
	}
	if req.ShoppingList != nil {
		cmd.ShoppingList = &inbound.ShoppingListOptions{
			Name:    req.ShoppingList.Name,
			Exclude: req.ShoppingList.Exclude,
		}
	}

	result, err := h.services.Pipeline.MaterializePlan(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, result)
}

// ListPlans handles GET /plans
func (h *Handlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	page, err := h.services.Plans.ListPlans(r.Context(), h.owner(r), pagination(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, page)
}

// GetPlan handles GET /plans/{planID}
func (h *Handlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID, err := h.idParam(r, "planID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.services.Plans.GetPlan(r.Context(), h.owner(r), planID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, p)
}

// AggregatePlan handles POST /plans/{planID}/nutrition
func (h *Handlers) AggregatePlan(w http.ResponseWriter, r *http.Request) {
	planID, err := h.idParam(r, "planID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req AggregateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.services.Nutrition.AggregatePlan(r.Context(), inbound.AggregatePlanCommand{
		OwnerID: h.owner(r),
		PlanID:  planID,
		Foods:   req.Foods,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, summary)
}

// AggregateDocument handles POST /nutrition/aggregate
func (h *Handlers) AggregateDocument(w http.ResponseWriter, r *http.Request) {
	var req AggregateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Document == nil {
		h.fail(w, r, errors.NewValidationError("document is required"))
		return
	}
	if err := h.validateDocument(*req.Document); err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.services.Nutrition.AggregateDocument(r.Context(), *req.Document, req.Foods)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, summary)
}

// ListTemplates handles GET /templates
func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.services.Plans.ListTemplates(r.Context(), h.owner(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

// CreateTemplate handles POST /templates
func (h *Handlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	t, err := h.services.Plans.CreateTemplate(r.Context(), inbound.CreateTemplateCommand{
		OwnerID:     h.owner(r),
		Name:        req.Name,
		Description: req.Description,
		Goal:        req.Goal,
		Days:        req.Days,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, t)
}

// validateDocument checks the generated plan carried by a document
func (h *Handlers) validateDocument(doc plan.Document) error {
	if doc.Generated == nil {
		return errors.NewValidationError("document.plan is required")
	}
	return h.validator.Struct(doc.Generated)
}
