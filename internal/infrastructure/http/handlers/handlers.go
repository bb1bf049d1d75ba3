// Package handlers provides the REST API handlers
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/infrastructure/http/middleware"
	"github.com/nutriplan/core/internal/infrastructure/http/render"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/pkg/errors"
	"go.uber.org/zap"
)

// Services groups the inbound ports served over HTTP
type Services struct {
	Pipeline  inbound.PlanPipeline
	Plans     inbound.PlanService
	Nutrition inbound.NutritionService
	Shopping  inbound.ShoppingService
	Progress  inbound.ProgressService
}

// Handlers handles REST API requests
type Handlers struct {
	services     Services
	validator    *Validator
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewHandlers creates the API handlers. maxBodyBytes caps request bodies.
func NewHandlers(services Services, maxBodyBytes int64, logger *zap.Logger) *Handlers {
	return &Handlers{
		services:     services,
		validator:    NewValidator(),
		maxBodyBytes: maxBodyBytes,
		logger:       logger.Named("http"),
	}
}

// Routes mounts every endpoint on r. Owner resolution is applied by the
// caller.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/plans", func(r chi.Router) {
		r.Post("/materialize", h.MaterializePlan)
		r.Get("/", h.ListPlans)
		r.Get("/{planID}", h.GetPlan)
		r.Post("/{planID}/nutrition", h.AggregatePlan)
	})
	r.Post("/nutrition/aggregate", h.AggregateDocument)

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", h.ListTemplates)
		r.Post("/", h.CreateTemplate)
	})

	r.Route("/shopping-lists", func(r chi.Router) {
		r.Post("/", h.GenerateShoppingList)
		r.Get("/", h.ListShoppingLists)
		r.Route("/{listID}", func(r chi.Router) {
			r.Get("/", h.GetShoppingList)
			r.Post("/archive", h.ArchiveShoppingList)
			r.Post("/items", h.AddShoppingItem)
			r.Patch("/items/{itemID}", h.UpdateShoppingItem)
			r.Delete("/items/{itemID}", h.DeleteShoppingItem)
			r.Post("/items/{itemID}/toggle", h.ToggleShoppingItem)
		})
	})

	r.Route("/clients", func(r chi.Router) {
		r.Post("/", h.RegisterClient)
		r.Route("/{clientID}", func(r chi.Router) {
			r.Get("/", h.GetClient)
			r.Post("/progress", h.RecordProgress)
			r.Get("/progress", h.ListProgress)
			r.Get("/analysis", h.AnalyzeProgress)
			r.Get("/recommendations", h.RecommendTemplates)
		})
	})
	r.Delete("/progress/{entryID}", h.DeleteProgress)
}

// decode reads a JSON body into dst and validates it
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.NewBadRequestError("request body too large")
		case stderrors.Is(err, io.EOF):
			return errors.NewBadRequestError("request body is required")
		default:
			return errors.NewBadRequestError("invalid JSON body").WithCause(err).
				WithMetadata("reason", err.Error())
		}
	}
	return h.validator.Struct(dst)
}

func (h *Handlers) owner(r *http.Request) uuid.UUID {
	id, _ := middleware.OwnerFromContext(r.Context())
	return id
}

func (h *Handlers) idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errors.NewBadRequestError(name + " must be a UUID")
	}
	return id, nil
}

func pagination(r *http.Request) inbound.PaginationParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return inbound.PaginationParams{Page: page, PageSize: size}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	render.Error(w, r, h.logger, err)
}
