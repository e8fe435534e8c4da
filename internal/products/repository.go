package product

import (
	"context"
	"strings"

	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wires together product and inventory-line persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListFilter narrows List results.
type ListFilter struct {
	WarehouseID *uuid.UUID
	Search      string
}

// FindByID loads the product with its inventory lines in stored order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventory", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByMLItemID resolves the product behind a marketplace item id.
func (r *Repository) FindByMLItemID(ctx context.Context, mlItemID string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventory", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&product, "ml_item_id = ?", mlItemID).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update persists the product's scalar columns.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Inventory").Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product; inventory lines cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&models.InventoryLine{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Product{}).Error
}

// List returns products, optionally narrowed to a warehouse or a name/SKU search.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Preload("Inventory", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})

	if filter.WarehouseID != nil {
		query = query.Where(
			"id IN (?)",
			r.db.Model(&models.InventoryLine{}).
				Select("product_id").
				Where("warehouse_id = ?", *filter.WarehouseID),
		)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(sku, '')) LIKE ?", pattern, pattern)
	}

	var rows []models.Product
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertInventoryLine replaces the quantity held at a warehouse, appending a
// new line when the product has none there, and refreshes the derived total.
func (r *Repository) UpsertInventoryLine(ctx context.Context, productID, warehouseID uuid.UUID, quantity int) (*models.Product, error) {
	tx := r.lockedTx(ctx)

	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}

	var lines []models.InventoryLine
	if err := tx.Where("product_id = ?", productID).Order("position ASC").Find(&lines).Error; err != nil {
		return nil, err
	}

	updated := false
	for i := range lines {
		if lines[i].WarehouseID == warehouseID {
			lines[i].Quantity = quantity
			if err := tx.Model(&models.InventoryLine{}).
				Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
				Update("quantity", quantity).Error; err != nil {
				return nil, err
			}
			updated = true
			break
		}
	}
	if !updated {
		line := models.InventoryLine{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    quantity,
			Position:    len(lines),
		}
		if err := tx.Create(&line).Error; err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	product.Inventory = lines
	product.RecomputeTotalStock()
	if err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("total_stock", product.TotalStock).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Deduction reports the outcome of a stock deduction.
type Deduction struct {
	Product   *models.Product
	Available int
	NewTotal  int
}

// Short reports whether the available stock did not cover the requested
// quantity, i.e. the deduction drove a line negative (or there was nothing
// to deduct from).
func (d *Deduction) Short() bool {
	return d.NewTotal < 0 || d.Product != nil && len(d.Product.Inventory) == 0 && d.Available == 0
}

// DeductStock removes quantity units from the product's inventory, draining
// lines in stored order. A shortfall lands on the last line, which may go
// negative. The derived total is refreshed in the same call. Callers run this
// inside a transaction together with the matching sale write.
func (r *Repository) DeductStock(ctx context.Context, productID uuid.UUID, quantity int) (*Deduction, error) {
	tx := r.lockedTx(ctx)

	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}

	var lines []models.InventoryLine
	if err := tx.Where("product_id = ?", productID).Order("position ASC").Find(&lines).Error; err != nil {
		return nil, err
	}

	available := 0
	for _, line := range lines {
		available += line.Quantity
	}

	remaining := quantity
	for i := range lines {
		if remaining <= 0 {
			break
		}
		take := lines[i].Quantity
		if take > remaining {
			take = remaining
		}
		if take < 0 {
			take = 0
		}
		lines[i].Quantity -= take
		remaining -= take
	}
	if remaining > 0 && len(lines) > 0 {
		lines[len(lines)-1].Quantity -= remaining
		remaining = 0
	}

	for _, line := range lines {
		if err := tx.Model(&models.InventoryLine{}).
			Where("product_id = ? AND warehouse_id = ?", line.ProductID, line.WarehouseID).
			Update("quantity", line.Quantity).Error; err != nil {
			return nil, err
		}
	}

	product.Inventory = lines
	product.RecomputeTotalStock()
	if err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("total_stock", product.TotalStock).Error; err != nil {
		return nil, err
	}

	return &Deduction{
		Product:   &product,
		Available: available,
		NewTotal:  product.TotalStock,
	}, nil
}

// HasInventoryInWarehouse reports whether any product still holds a line in
// the given warehouse. Warehouse deletion is refused while this is true.
func (r *Repository) HasInventoryInWarehouse(ctx context.Context, warehouseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryLine{}).
		Where("warehouse_id = ?", warehouseID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// lockedTx locks the product row for the duration of the surrounding
// transaction on dialects that support it. The SQLite driver used in tests
// serializes writes on its own.
func (r *Repository) lockedTx(ctx context.Context) *gorm.DB {
	tx := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
