package models

import (
	"time"

	"github.com/google/uuid"
)

// Sale is an append-only record of a processed marketplace order item. The
// unique (ml_order_id, product_id) pair is the storage-level idempotency
// guard against double processing of a delivery.
type Sale struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_sales_order_product"`
	MLOrderID string    `gorm:"column:ml_order_id;not null;uniqueIndex:uq_sales_order_product"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
