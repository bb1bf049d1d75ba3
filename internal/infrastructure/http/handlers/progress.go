package handlers

import (
	"net/http"
	"time"

	"github.com/nutriplan/core/internal/infrastructure/http/render"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/pkg/errors"
)

// RegisterClientRequest is the body of POST /clients
type RegisterClientRequest struct {
	Name           string   `json:"name" validate:"required,max=255"`
	Email          string   `json:"email" validate:"omitempty,email"`
	StartingWeight *float64 `json:"starting_weight" validate:"omitempty,gt=0"`
	GoalWeight     *float64 `json:"goal_weight" validate:"omitempty,gt=0"`
}

// RecordProgressRequest is the body of POST /clients/{clientID}/progress.
// Date is YYYY-MM-DD and defaults to today.
type RecordProgressRequest struct {
	Date    string   `json:"date"`
	Weight  float64  `json:"weight" validate:"gt=0"`
	BodyFat *float64 `json:"body_fat" validate:"omitempty,gte=0,lte=100"`
	Waist   *float64 `json:"waist" validate:"omitempty,gt=0"`
	Hips    *float64 `json:"hips" validate:"omitempty,gt=0"`
	Chest   *float64 `json:"chest" validate:"omitempty,gt=0"`
	Notes   string   `json:"notes" validate:"max=2000"`
}

// RegisterClient handles POST /clients
func (h *Handlers) RegisterClient(w http.ResponseWriter, r *http.Request) {
	var req RegisterClientRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	client, err := h.services.Progress.RegisterClient(r.Context(), inbound.RegisterClientCommand{
		OwnerID:        h.owner(r),
		Name:           req.Name,
		Email:          req.Email,
		StartingWeight: req.StartingWeight,
		GoalWeight:     req.GoalWeight,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, client)
}

// GetClient handles GET /clients/{clientID}
func (h *Handlers) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := h.idParam(r, "clientID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	client, err := h.services.Progress.GetClient(r.Context(), h.owner(r), clientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, client)
}

// RecordProgress handles POST /clients/{clientID}/progress
func (h *Handlers) RecordProgress(w http.ResponseWriter, r *http.Request) {
	clientID, err := h.idParam(r, "clientID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req RecordProgressRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			h.fail(w, r, errors.NewValidationError("date must be formatted as YYYY-MM-DD"))
			return
		}
	}

	entry, err := h.services.Progress.RecordEntry(r.Context(), inbound.RecordEntryCommand{
		OwnerID:  h.owner(r),
		ClientID: clientID,
		Date:     date,
		Weight:   req.Weight,
		BodyFat:  req.BodyFat,
		Waist:    req.Waist,
		Hips:     req.Hips,
		Chest:    req.Chest,
		Notes:    req.Notes,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, entry)
}

// ListProgress handles GET /clients/{clientID}/progress
func (h *Handlers) ListProgress(w http.ResponseWriter, r *http.Request) {
	clientID, err := h.idParam(r, "clientID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := h.services.Progress.ListEntries(r.Context(), h.owner(r), clientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// DeleteProgress handles DELETE /progress/{entryID}
func (h *Handlers) DeleteProgress(w http.ResponseWriter, r *http.Request) {
	entryID, err := h.idParam(r, "entryID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	client, err := h.services.Progress.DeleteEntry(r.Context(), h.owner(r), entryID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, client)
}

// AnalyzeProgress handles GET /clients/{clientID}/analysis
func (h *Handlers) AnalyzeProgress(w http.ResponseWriter, r *http.Request) {
	clientID, err := h.idParam(r, "clientID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	analysis, err := h.services.Progress.Analyze(r.Context(), h.owner(r), clientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, analysis)
}

// RecommendTemplates handles GET /clients/{clientID}/recommendations
func (h *Handlers) RecommendTemplates(w http.ResponseWriter, r *http.Request) {
	clientID, err := h.idParam(r, "clientID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.services.Progress.RecommendTemplates(r.Context(), h.owner(r), clientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, rec)
}
