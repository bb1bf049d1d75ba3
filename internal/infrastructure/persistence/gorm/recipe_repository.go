package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/recipe"
	"github.com/nutriplan/core/internal/ports/outbound"
	"gorm.io/gorm"
)

const ingredientBatchSize = 100

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// FindByOwnerAndName finds a recipe by owner and exact name
func (r *RecipeRepository) FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).
		Preload("Ingredients", orderedRows).
		Where("owner_id = ? AND name = ?", ownerID, name).
		Take(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return ModelToRecipe(&model), nil
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).
		Preload("Ingredients", orderedRows).
		First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToRecipe(&model), nil
}

// FindByOwner finds recipes by owner with pagination
func (r *RecipeRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int, error) {
	var models []RecipeModel
	var total int64

	// Count total
	countResult := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Where("owner_id = ?", ownerID).
		Count(&total)
	if countResult.Error != nil {
		return nil, 0, countResult.Error
	}

	result := r.db.WithContext(ctx).
		Preload("Ingredients", orderedRows).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	recipes := make([]*recipe.Recipe, len(models))
	for i := range models {
		recipes[i] = ModelToRecipe(&models[i])
	}
	return recipes, int(total), nil
}

// Create inserts the recipe header
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	model := RecipeToModel(rec)

	result := r.db.WithContext(ctx).Omit("Ingredients").Create(model)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return outbound.ErrAlreadyExists
		}
		return result.Error
	}
	return nil
}

// AddIngredients inserts every row of a recipe in one batch
func (r *RecipeRepository) AddIngredients(ctx context.Context, recipeID uuid.UUID, rows []recipe.RecipeIngredient) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]RecipeIngredientModel, len(rows))
	for i, row := range rows {
		models[i] = RecipeIngredientToModel(row)
		models[i].RecipeID = recipeID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&models, ingredientBatchSize).Error
	})
}

func orderedRows(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC")
}
