// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"

	"github.com/nutriplan/core/internal/domain/ingredient"
	"github.com/nutriplan/core/internal/ports/outbound"
	"gorm.io/gorm"
)

// IngredientRepository implements the ingredient directory using GORM
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) outbound.IngredientRepository {
	return &IngredientRepository{db: db}
}

// FindByName finds an ingredient by its exact name
func (r *IngredientRepository) FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error) {
	var model IngredientModel

	result := r.db.WithContext(ctx).Where("name = ?", name).Take(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return ModelToIngredient(&model), nil
}

// Create inserts a new ingredient
func (r *IngredientRepository) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	result := r.db.WithContext(ctx).Create(IngredientToModel(ing))
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return outbound.ErrAlreadyExists
		}
		return result.Error
	}
	return nil
}

// List returns ingredients ordered by name
func (r *IngredientRepository) List(ctx context.Context, offset, limit int) ([]*ingredient.Ingredient, int, error) {
	var models []IngredientModel
	var total int64

	if err := r.db.WithContext(ctx).Model(&IngredientModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := r.db.WithContext(ctx).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	ingredients := make([]*ingredient.Ingredient, len(models))
	for i := range models {
		ingredients[i] = ModelToIngredient(&models[i])
	}
	return ingredients, int(total), nil
}
