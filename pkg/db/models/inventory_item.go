package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is one ingredient row in a user's pantry. Display casing of
// Name is preserved exactly as entered; lookups are case-insensitive. The
// quantity column carries a CHECK (quantity >= 0) in the migration, and the
// reconciler clamps instead of ever writing a negative value.
type InventoryItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Quantity  float64   `gorm:"column:quantity;not null;default:0"`
	Unit      *string   `gorm:"column:unit"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
