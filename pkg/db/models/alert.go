package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert flags a stock exception on a product, resolved manually by operators.
type Alert struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Message   string    `gorm:"column:message;not null"`
	Resolved  bool      `gorm:"column:resolved;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
