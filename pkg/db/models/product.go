package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is an internally tracked listing tied to a marketplace item.
type Product struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MLItemID   string          `gorm:"column:ml_item_id;not null;uniqueIndex:uq_products_ml_item_id"`
	Name       string          `gorm:"column:name;not null"`
	SKU        *string         `gorm:"column:sku"`
	TotalStock int             `gorm:"column:total_stock;not null;default:0"`
	Inventory  []InventoryLine `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// RecomputeTotalStock resets TotalStock to the sum of the loaded inventory
// lines. Callers mutating Inventory must invoke it before persisting so the
// derived column never drifts from the lines.
func (p *Product) RecomputeTotalStock() {
	total := 0
	for _, line := range p.Inventory {
		total += line.Quantity
	}
	p.TotalStock = total
}
