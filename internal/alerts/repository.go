package alert

import (
	"context"

	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists stock alert rows.
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
	Resolved  *bool
	ProductID *uuid.UUID
}

// Create inserts an alert row.
func (r *Repository) Create(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// FindByID loads one alert.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	var alert models.Alert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// List returns alerts newest first, optionally filtered.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Alert, error) {
	query := r.db.WithContext(ctx)
	if filter.Resolved != nil {
		query = query.Where("resolved = ?", *filter.Resolved)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}

	var rows []models.Alert
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Resolve marks an alert as handled.
func (r *Repository) Resolve(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	alert, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.Resolved {
		return alert, nil
	}
	alert.Resolved = true
	if err := r.db.WithContext(ctx).Save(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}
