package sale

import (
	"context"
	"errors"

	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists sale rows. Sales are append-only.
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

// Create inserts a sale row. Duplicate (order, product) pairs surface as a
// unique violation for the caller to interpret.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// ExistsForOrder reports whether any sale was already recorded for the
// marketplace order.
func (r *Repository) ExistsForOrder(ctx context.Context, mlOrderID string) (bool, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).First(&sale, "ml_order_id = ?", mlOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListByOrder returns the sales recorded for one marketplace order.
func (r *Repository) ListByOrder(ctx context.Context, mlOrderID string) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Where("ml_order_id = ?", mlOrderID).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByProduct returns the sales recorded against one product, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
