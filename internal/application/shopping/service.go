// Package shopping provides the shopping list use cases: generation from a
// plan or template and item mutations.
package shopping

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/shopping"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/nutriplan/core/pkg/errors"
	"go.uber.org/zap"
)

// Metrics records item mutations
type Metrics interface {
	RecordShoppingMutation(operation string, err error)
}

// Options configures list generation
type Options struct {
	DefaultName string
	// Exclude is applied to every generated list on top of the request's names.
	Exclude []string
	// Rules are evaluated before the built-in categorization table.
	Rules []shopping.Rule
}

// GenerateParams describes one list to build from plan mentions
type GenerateParams struct {
	OwnerID  uuid.UUID
	ClientID *uuid.UUID
	Name     string
	Source   shopping.Source
	Mentions []plan.Mention
	Exclude  []string
}

// ShoppingService implements the shopping list use cases
type ShoppingService struct {
	lists       outbound.ShoppingListRepository
	plans       outbound.PlanRepository
	templates   outbound.TemplateRepository
	categorizer *shopping.Categorizer
	options     Options
	metrics     Metrics
	logger      *zap.Logger
}

// NewShoppingService creates a new shopping service. metrics may be nil.
func NewShoppingService(
	lists outbound.ShoppingListRepository,
	plans outbound.PlanRepository,
	templates outbound.TemplateRepository,
	options Options,
	metrics Metrics,
	logger *zap.Logger,
) *ShoppingService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ShoppingService{
		lists:       lists,
		plans:       plans,
		templates:   templates,
		categorizer: shopping.NewCategorizer(options.Rules...),
		options:     options,
		metrics:     metrics,
		logger:      logger.Named("shopping-service"),
	}
}

var _ inbound.ShoppingService = (*ShoppingService)(nil)

// Generate categorizes, consolidates and stores the mentions as a new list
func (s *ShoppingService) Generate(ctx context.Context, params GenerateParams) (*shopping.List, error) {
	exclude := append(append([]string(nil), s.options.Exclude...), params.Exclude...)
	entries := shopping.Build(params.Mentions, s.categorizer, exclude)

	name := params.Name
	if strings.TrimSpace(name) == "" {
		name = s.options.DefaultName
	}

	l := shopping.NewList(params.OwnerID, params.ClientID, name, params.Source)
	if err := l.AppendEntries(entries); err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}

	if err := s.lists.Create(ctx, l); err != nil {
		return nil, errors.NewDatabaseError("create shopping list", err)
	}

	s.logger.Info("Shopping list generated",
		zap.String("list_id", l.ID.String()),
		zap.String("owner_id", l.OwnerID.String()),
		zap.Int("mentions", len(params.Mentions)),
		zap.Int("items", l.TotalItems),
	)

	return l, nil
}

// GenerateList builds a list from exactly one source
func (s *ShoppingService) GenerateList(ctx context.Context, cmd inbound.GenerateShoppingListCommand) (*inbound.ShoppingListDTO, error) {
	sources := 0
	for _, set := range []bool{cmd.PlanID != nil, cmd.TemplateID != nil, cmd.Generated != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.NewValidationError("exactly one of plan_id, template_id or plan is required")
	}

	params := GenerateParams{
		OwnerID:  cmd.OwnerID,
		ClientID: cmd.ClientID,
		Name:     cmd.Name,
		Exclude:  cmd.Exclude,
	}

	switch {
	case cmd.PlanID != nil:
		p, err := s.plans.FindByID(ctx, *cmd.PlanID)
		if err != nil && !stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewDatabaseError("find plan", err)
		}
		if p == nil || p.OwnerID != cmd.OwnerID {
			return nil, errors.NewPlanNotFoundError(cmd.PlanID.String())
		}
		params.Source.PlanID = &p.ID
		params.Mentions = p.Mentions()
		if params.ClientID == nil {
			params.ClientID = p.ClientID
		}

	case cmd.TemplateID != nil:
		t, err := s.templates.FindByID(ctx, *cmd.TemplateID)
		if err != nil && !stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewDatabaseError("find template", err)
		}
		if t == nil || t.OwnerID != cmd.OwnerID {
			return nil, errors.NewTemplateNotFoundError(cmd.TemplateID.String())
		}
		params.Source.TemplateID = &t.ID
		params.Mentions = t.Mentions()

	default:
		if err := cmd.Generated.Validate(); err != nil {
			return nil, errors.NewValidationError(err.Error()).WithCause(err)
		}
		params.Mentions = cmd.Generated.Mentions()
	}

	l, err := s.Generate(ctx, params)
	if err != nil {
		return nil, err
	}
	return listToDTO(l), nil
}

// GetList returns one list with its items
func (s *ShoppingService) GetList(ctx context.Context, ownerID, listID uuid.UUID) (*inbound.ShoppingListDTO, error) {
	l, err := s.load(ctx, ownerID, listID)
	if err != nil {
		return nil, err
	}
	return listToDTO(l), nil
}

// ListLists returns a page of the owner's lists
func (s *ShoppingService) ListLists(ctx context.Context, ownerID uuid.UUID, params inbound.PaginationParams) (*inbound.ShoppingListPage, error) {
	lists, total, err := s.lists.FindByOwner(ctx, ownerID, params.Offset(), params.Limit())
	if err != nil {
		return nil, errors.NewDatabaseError("list shopping lists", err)
	}

	page := &inbound.ShoppingListPage{
		Lists:    make([]inbound.ShoppingListDTO, 0, len(lists)),
		Total:    total,
		Page:     params.Offset()/params.Limit() + 1,
		PageSize: params.Limit(),
	}
	for _, l := range lists {
		dto := listToDTO(l)
		dto.Items = nil
		page.Lists = append(page.Lists, *dto)
	}
	return page, nil
}

// ArchiveList freezes the list status
func (s *ShoppingService) ArchiveList(ctx context.Context, ownerID, listID uuid.UUID) (*inbound.ShoppingListDTO, error) {
	if _, err := s.load(ctx, ownerID, listID); err != nil {
		return nil, err
	}
	if err := s.lists.UpdateStatus(ctx, listID, shopping.StatusArchived); err != nil {
		return nil, s.translate(err, listID, "archive shopping list")
	}
	return s.GetList(ctx, ownerID, listID)
}

// AddItem appends a free-text item. An empty category is inferred from the name.
func (s *ShoppingService) AddItem(ctx context.Context, cmd inbound.AddShoppingItemCommand) (*inbound.ShoppingListDTO, error) {
	if _, err := s.load(ctx, cmd.OwnerID, cmd.ListID); err != nil {
		return nil, err
	}

	entry := shopping.NewEntry(cmd.Name, cmd.Quantity, cmd.Unit)
	category, err := s.category(cmd.Category, entry.Name)
	if err != nil {
		return nil, err
	}
	entry.Category = category

	item, err := shopping.NewItem(cmd.ListID, entry, 0)
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}

	l, err := s.lists.AddItem(ctx, cmd.ListID, item)
	s.metrics.RecordShoppingMutation("add", err)
	if err != nil {
		return nil, s.translate(err, cmd.ListID, "add shopping item")
	}
	return listToDTO(l), nil
}

// UpdateItem changes the provided fields of an item
func (s *ShoppingService) UpdateItem(ctx context.Context, cmd inbound.UpdateShoppingItemCommand) (*inbound.ShoppingListDTO, error) {
	current, err := s.load(ctx, cmd.OwnerID, cmd.ListID)
	if err != nil {
		return nil, err
	}

	var item *shopping.Item
	for i := range current.Items {
		if current.Items[i].ID == cmd.ItemID {
			item = &current.Items[i]
			break
		}
	}
	if item == nil {
		return nil, errors.NewNotFoundError("Shopping list item").WithMetadata("item_id", cmd.ItemID.String())
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, errors.NewValidationError(shopping.ErrItemNameRequired.Error())
		}
		item.Name = name
	}
	if cmd.Quantity != nil {
		item.Quantity = strings.TrimSpace(*cmd.Quantity)
	}
	if cmd.Unit != nil {
		item.Unit = strings.TrimSpace(*cmd.Unit)
	}
	if cmd.Category != nil {
		category, err := s.category(*cmd.Category, item.Name)
		if err != nil {
			return nil, err
		}
		item.Category = category
	}
	if cmd.IsPurchased != nil {
		item.IsPurchased = *cmd.IsPurchased
	}
	item.UpdatedAt = time.Now()

	l, err := s.lists.UpdateItem(ctx, cmd.ListID, item)
	s.metrics.RecordShoppingMutation("update", err)
	if err != nil {
		return nil, s.translateItem(err, cmd.ItemID, "update shopping item")
	}
	return listToDTO(l), nil
}

// DeleteItem removes an item
func (s *ShoppingService) DeleteItem(ctx context.Context, ownerID, listID, itemID uuid.UUID) (*inbound.ShoppingListDTO, error) {
	if _, err := s.load(ctx, ownerID, listID); err != nil {
		return nil, err
	}

	l, err := s.lists.DeleteItem(ctx, listID, itemID)
	s.metrics.RecordShoppingMutation("delete", err)
	if err != nil {
		return nil, s.translateItem(err, itemID, "delete shopping item")
	}
	return listToDTO(l), nil
}

// ToggleItem flips the purchased flag of an item
func (s *ShoppingService) ToggleItem(ctx context.Context, ownerID, listID, itemID uuid.UUID) (*inbound.ShoppingListDTO, error) {
	if _, err := s.load(ctx, ownerID, listID); err != nil {
		return nil, err
	}

	l, err := s.lists.ToggleItem(ctx, listID, itemID)
	s.metrics.RecordShoppingMutation("toggle", err)
	if err != nil {
		return nil, s.translateItem(err, itemID, "toggle shopping item")
	}
	return listToDTO(l), nil
}

func (s *ShoppingService) load(ctx context.Context, ownerID, listID uuid.UUID) (*shopping.List, error) {
	l, err := s.lists.FindByID(ctx, listID)
	if err != nil {
		return nil, s.translate(err, listID, "find shopping list")
	}
	if l.OwnerID != ownerID {
		return nil, errors.NewShoppingListNotFoundError(listID.String())
	}
	return l, nil
}

func (s *ShoppingService) category(raw, name string) (shopping.Category, error) {
	if strings.TrimSpace(raw) == "" {
		return s.categorizer.Categorize(name), nil
	}
	c, err := shopping.ParseCategory(raw)
	if err != nil {
		return "", errors.NewValidationError(err.Error()).WithCause(err)
	}
	return c, nil
}

func (s *ShoppingService) translate(err error, listID uuid.UUID, operation string) error {
	if stderrors.Is(err, outbound.ErrNotFound) {
		return errors.NewShoppingListNotFoundError(listID.String())
	}
	return errors.NewDatabaseError(operation, err)
}

// translateItem is used once the list is known to exist, so a missing row
// is the item.
func (s *ShoppingService) translateItem(err error, itemID uuid.UUID, operation string) error {
	if stderrors.Is(err, outbound.ErrNotFound) {
		return errors.NewNotFoundError("Shopping list item").WithMetadata("item_id", itemID.String())
	}
	return errors.NewDatabaseError(operation, err)
}

type nopMetrics struct{}

func (nopMetrics) RecordShoppingMutation(string, error) {}
