package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/shopping"
	"github.com/nutriplan/core/internal/ports/outbound"
	"gorm.io/gorm"
)

const (
	mutationAttempts = 3
	mutationBackoff  = 25 * time.Millisecond
)

// ShoppingListRepository stores shopping lists. Item mutations run in a
// transaction that also refreshes the list's cached counts and status.
type ShoppingListRepository struct {
	db *gorm.DB
}

// NewShoppingListRepository creates a new shopping list repository
func NewShoppingListRepository(db *gorm.DB) outbound.ShoppingListRepository {
	return &ShoppingListRepository{db: db}
}

// Create inserts a list and all its items
func (r *ShoppingListRepository) Create(ctx context.Context, l *shopping.List) error {
	model := ShoppingListToModel(l)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.CreateInBatches(&model.Items, 200).Error
	})
}

// FindByID loads a list with its items in order
func (r *ShoppingListRepository) FindByID(ctx context.Context, id uuid.UUID) (*shopping.List, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

func (r *ShoppingListRepository) findByID(db *gorm.DB, id uuid.UUID) (*shopping.List, error) {
	var model ShoppingListModel

	result := db.Preload("Items", orderedRows).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToShoppingList(&model), nil
}

// FindByOwner lists an owner's lists, newest first
func (r *ShoppingListRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*shopping.List, int, error) {
	var models []ShoppingListModel
	var total int64

	if err := r.db.WithContext(ctx).Model(&ShoppingListModel{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := r.db.WithContext(ctx).
		Preload("Items", orderedRows).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	lists := make([]*shopping.List, len(models))
	for i := range models {
		lists[i] = ModelToShoppingList(&models[i])
	}
	return lists, int(total), nil
}

// UpdateStatus sets the list status
func (r *ShoppingListRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shopping.Status) error {
	result := r.db.WithContext(ctx).Model(&ShoppingListModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": string(status), "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

// Delete removes a list and its items
func (r *ShoppingListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&ShoppingListItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&ShoppingListModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return outbound.ErrNotFound
		}
		return nil
	})
}

// AddItem appends an item after the current last one
func (r *ShoppingListRepository) AddItem(ctx context.Context, listID uuid.UUID, item *shopping.Item) (*shopping.List, error) {
	return r.mutate(ctx, listID, func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&ShoppingListItemModel{}).
			Where("list_id = ?", listID).
			Select("COALESCE(MAX(order_index), -1) + 1").
			Scan(&next).Error; err != nil {
			return err
		}

		item.ListID = listID
		item.OrderIndex = next
		return tx.Create(ShoppingItemToModel(item)).Error
	})
}

// UpdateItem overwrites the editable fields of an item
func (r *ShoppingListRepository) UpdateItem(ctx context.Context, listID uuid.UUID, item *shopping.Item) (*shopping.List, error) {
	return r.mutate(ctx, listID, func(tx *gorm.DB) error {
		result := tx.Model(&ShoppingListItemModel{}).
			Where("id = ? AND list_id = ?", item.ID, listID).
			Updates(map[string]interface{}{
				"name":         item.Name,
				"quantity":     item.Quantity,
				"unit":         item.Unit,
				"category":     string(item.Category),
				"is_purchased": item.IsPurchased,
				"updated_at":   time.Now(),
			})
		return affected(result)
	})
}

// DeleteItem removes one item
func (r *ShoppingListRepository) DeleteItem(ctx context.Context, listID, itemID uuid.UUID) (*shopping.List, error) {
	return r.mutate(ctx, listID, func(tx *gorm.DB) error {
		return affected(tx.Where("id = ? AND list_id = ?", itemID, listID).Delete(&ShoppingListItemModel{}))
	})
}

// ToggleItem flips the purchased flag of one item
func (r *ShoppingListRepository) ToggleItem(ctx context.Context, listID, itemID uuid.UUID) (*shopping.List, error) {
	return r.mutate(ctx, listID, func(tx *gorm.DB) error {
		result := tx.Model(&ShoppingListItemModel{}).
			Where("id = ? AND list_id = ?", itemID, listID).
			Updates(map[string]interface{}{
				"is_purchased": gorm.Expr("NOT is_purchased"),
				"updated_at":   time.Now(),
			})
		return affected(result)
	})
}

// mutate runs fn and the recount in one transaction, retrying on
// serialization conflicts, then returns the refreshed list.
func (r *ShoppingListRepository) mutate(ctx context.Context, listID uuid.UUID, fn func(tx *gorm.DB) error) (*shopping.List, error) {
	var err error
	for attempt := 0; attempt < mutationAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * mutationBackoff):
			}
		}

		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var header ShoppingListModel
			if err := tx.Select("id").Take(&header, "id = ?", listID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return outbound.ErrNotFound
				}
				return err
			}
			if err := fn(tx); err != nil {
				return err
			}
			return recount(tx, listID)
		})
		if !isRetryable(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, listID)
}

// recount refreshes total_items, completed_items and status from the items.
func recount(tx *gorm.DB, listID uuid.UUID) error {
	var header ShoppingListModel
	if err := tx.First(&header, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return outbound.ErrNotFound
		}
		return err
	}

	var total, completed int64
	if err := tx.Model(&ShoppingListItemModel{}).Where("list_id = ?", listID).Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&ShoppingListItemModel{}).
		Where("list_id = ? AND is_purchased = ?", listID, true).
		Count(&completed).Error; err != nil {
		return err
	}

	l := ModelToShoppingList(&header)
	shopping.ApplyCounts(l, int(completed), int(total))

	return tx.Model(&ShoppingListModel{}).
		Where("id = ?", listID).
		Updates(map[string]interface{}{
			"total_items":     l.TotalItems,
			"completed_items": l.CompletedItems,
			"status":          string(l.Status),
			"updated_at":      l.UpdatedAt,
		}).Error
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}
	return nil
}
