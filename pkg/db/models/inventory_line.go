package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryLine is one (warehouse, quantity) pair in a product's stock
// breakdown. A product holds at most one line per warehouse.
type InventoryLine struct {
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	WarehouseID uuid.UUID `gorm:"column:warehouse_id;type:uuid;primaryKey"`
	Quantity    int       `gorm:"column:quantity;not null;default:0"`
	Position    int       `gorm:"column:position;not null;default:0"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
