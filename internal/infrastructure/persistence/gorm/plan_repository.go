package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/ports/outbound"
	"gorm.io/gorm"
)

// PlanRepository stores normalized plans and their meal slots
type PlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) outbound.PlanRepository {
	return &PlanRepository{db: db}
}

// Create inserts a plan with every meal slot in one transaction
func (r *PlanRepository) Create(ctx context.Context, p *plan.NutritionPlan) error {
	model, err := PlanToModel(p)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Meals").Create(model).Error; err != nil {
			return err
		}
		if len(model.Meals) == 0 {
			return nil
		}
		return tx.CreateInBatches(&model.Meals, 200).Error
	})
}

// FindByID loads a plan with its meals in day order
func (r *PlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*plan.NutritionPlan, error) {
	var model NutritionPlanModel

	result := r.db.WithContext(ctx).
		Preload("Meals", orderedMeals).
		First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToPlan(&model)
}

// FindByOwner lists an owner's plans, newest first
func (r *PlanRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*plan.NutritionPlan, int, error) {
	var models []NutritionPlanModel
	var total int64

	if err := r.db.WithContext(ctx).Model(&NutritionPlanModel{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := r.db.WithContext(ctx).
		Preload("Meals", orderedMeals).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	plans := make([]*plan.NutritionPlan, 0, len(models))
	for i := range models {
		p, err := ModelToPlan(&models[i])
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, p)
	}
	return plans, int(total), nil
}

// Delete removes a plan and its meal slots
func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).Delete(&MealSlotModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&NutritionPlanModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return outbound.ErrNotFound
		}
		return nil
	})
}

func orderedMeals(db *gorm.DB) *gorm.DB {
	return db.Order("day ASC").Order("order_index ASC")
}
