package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/progress"
	"github.com/nutriplan/core/internal/ports/outbound"
	"gorm.io/gorm"
)

// ProgressRepository stores progress entries
type ProgressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *gorm.DB) outbound.ProgressRepository {
	return &ProgressRepository{db: db}
}

// Create inserts an entry
func (r *ProgressRepository) Create(ctx context.Context, e *progress.Entry) error {
	return r.db.WithContext(ctx).Create(ProgressEntryToModel(e)).Error
}

// FindByID finds an entry by ID
func (r *ProgressRepository) FindByID(ctx context.Context, id uuid.UUID) (*progress.Entry, error) {
	var model ProgressEntryModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrNotFound
		}
		return nil, result.Error
	}

	e := ModelToProgressEntry(&model)
	return &e, nil
}

// FindByClient returns a client's entries, newest first
func (r *ProgressRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]progress.Entry, error) {
	var models []ProgressEntryModel

	result := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("date DESC").
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]progress.Entry, len(models))
	for i := range models {
		entries[i] = ModelToProgressEntry(&models[i])
	}
	return entries, nil
}

// Delete removes an entry
func (r *ProgressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&ProgressEntryModel{}, "id = ?", id))
}
