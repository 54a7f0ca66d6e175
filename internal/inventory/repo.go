package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pantrypal-app/pantrypal-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository encapsulates inventory persistence.
//
// Per-row writes are atomic, but nothing serializes two concurrent
// reconciliations for the same user: the last write wins at the row level.
// Callers needing strict consistency must serialize per user themselves.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an inventory repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FetchAll returns every inventory row for the user. No rows is an empty
// slice, not an error.
func (r *Repository) FetchAll(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).
		Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ApplyUpdate sets quantity (and unit, when provided) on the row whose name
// matches canonicalName case-insensitively. Returns false when no row was
// affected, e.g. the row vanished between fetch and write.
func (r *Repository) ApplyUpdate(ctx context.Context, userID uuid.UUID, canonicalName string, quantity float64, unit *string) (bool, error) {
	updates := map[string]any{"quantity": quantity}
	if unit != nil {
		updates["unit"] = *unit
	}

	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(strings.TrimSpace(canonicalName))).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Insert creates a new inventory row.
func (r *Repository) Insert(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID returns one row scoped to the owning user.
func (r *Repository) FindByID(ctx context.Context, userID, itemID uuid.UUID) (models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, itemID).
		First(&item).
		Error
	return item, err
}

// UpdateItem writes quantity/unit on a row addressed by identity.
func (r *Repository) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity float64, unit *string) (bool, error) {
	updates := map[string]any{"quantity": quantity}
	if unit != nil {
		updates["unit"] = *unit
	}

	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("user_id = ? AND id = ?", userID, itemID).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a row scoped to the owning user.
func (r *Repository) Delete(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, itemID).
		Delete(&models.InventoryItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SearchByName performs a case-insensitive substring lookup. A limit of 0 or
// less returns every match.
func (r *Repository) SearchByName(ctx context.Context, userID uuid.UUID, query string, limit int) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) LIKE ?", userID, pattern).
		Order("name ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
