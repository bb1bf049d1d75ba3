package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/progress"
	"github.com/nutriplan/core/internal/ports/outbound"
	"gorm.io/gorm"
)

// ClientRepository stores client profiles
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) outbound.ClientRepository {
	return &ClientRepository{db: db}
}

// Create inserts a client
func (r *ClientRepository) Create(ctx context.Context, c *progress.Client) error {
	return r.db.WithContext(ctx).Create(ClientToModel(c)).Error
}

// FindByID finds a client by ID
func (r *ClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*progress.Client, error) {
	var model ClientModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToClient(&model), nil
}

// FindByOwner lists an owner's clients by name
func (r *ClientRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*progress.Client, error) {
	var models []ClientModel

	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	clients := make([]*progress.Client, len(models))
	for i := range models {
		clients[i] = ModelToClient(&models[i])
	}
	return clients, nil
}

// Update saves the client's profile and projected weights
func (r *ClientRepository) Update(ctx context.Context, c *progress.Client) error {
	result := r.db.WithContext(ctx).Model(&ClientModel{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":            c.Name,
			"email":           c.Email,
			"starting_weight": c.StartingWeight,
			"current_weight":  c.CurrentWeight,
			"goal_weight":     c.GoalWeight,
			"updated_at":      c.UpdatedAt,
		})
	return affected(result)
}
