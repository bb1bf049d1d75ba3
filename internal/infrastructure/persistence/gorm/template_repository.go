package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/ports/outbound"
	"gorm.io/gorm"
)

// TemplateRepository stores plan templates
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *gorm.DB) outbound.TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create inserts a template
func (r *TemplateRepository) Create(ctx context.Context, t *plan.Template) error {
	model, err := TemplateToModel(t)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a template by ID
func (r *TemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*plan.Template, error) {
	var model PlanTemplateModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToTemplate(&model)
}

// FindByOwner lists an owner's templates, newest first
func (r *TemplateRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*plan.Template, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("owner_id = ?", ownerID))
}

// FindByOwnerAndGoal lists an owner's templates for one goal, newest first
func (r *TemplateRepository) FindByOwnerAndGoal(ctx context.Context, ownerID uuid.UUID, goal plan.Goal) ([]*plan.Template, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("owner_id = ? AND goal = ?", ownerID, string(goal)))
}

func (r *TemplateRepository) find(_ context.Context, q *gorm.DB) ([]*plan.Template, error) {
	var models []PlanTemplateModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	templates := make([]*plan.Template, 0, len(models))
	for i := range models {
		t, err := ModelToTemplate(&models[i])
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}
