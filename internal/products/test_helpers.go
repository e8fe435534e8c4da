package product

import (
	"fmt"
	"testing"

	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func mustCreateTestWarehouse(t *testing.T, tx *gorm.DB, name string) *models.Warehouse {
	t.Helper()
	warehouse := &models.Warehouse{
		ID:       uuid.New(),
		Name:     name,
		Location: "Sao Paulo, SP",
		IsActive: true,
	}
	if err := tx.Create(warehouse).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	return warehouse
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		MLItemID: fmt.Sprintf("MLB%s", uuid.NewString()[:8]),
		Name:     "Camiseta Azul",
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func mustAddLine(t *testing.T, tx *gorm.DB, productID, warehouseID uuid.UUID, qty, position int) {
	t.Helper()
	line := &models.InventoryLine{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		Position:    position,
	}
	if err := tx.Create(line).Error; err != nil {
		t.Fatalf("create inventory line: %v", err)
	}
	if err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("total_stock", gorm.Expr("total_stock + ?", qty)).Error; err != nil {
		t.Fatalf("bump total stock: %v", err)
	}
}
