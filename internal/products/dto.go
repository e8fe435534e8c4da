package product

import (
	"time"

	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	"github.com/google/uuid"
)

// ProductDTO represents the product payload returned to clients.
type ProductDTO struct {
	ID         uuid.UUID          `json:"id"`
	MLItemID   string             `json:"ml_item_id"`
	Name       string             `json:"name"`
	SKU        *string            `json:"sku,omitempty"`
	TotalStock int                `json:"total_stock"`
	Inventory  []InventoryLineDTO `json:"inventory"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// InventoryLineDTO exposes the stock a product holds at one warehouse.
type InventoryLineDTO struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	lines := make([]InventoryLineDTO, 0, len(product.Inventory))
	for _, line := range product.Inventory {
		lines = append(lines, InventoryLineDTO{
			WarehouseID: line.WarehouseID,
			Quantity:    line.Quantity,
			UpdatedAt:   line.UpdatedAt,
		})
	}
	return &ProductDTO{
		ID:         product.ID,
		MLItemID:   product.MLItemID,
		Name:       product.Name,
		SKU:        product.SKU,
		TotalStock: product.TotalStock,
		Inventory:  lines,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
}
