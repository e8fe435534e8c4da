package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes stock alert operations for operators.
type Service interface {
	ListAlerts(ctx context.Context, input ListAlertsInput) ([]AlertDTO, error)
	ResolveAlert(ctx context.Context, alertID uuid.UUID) (*AlertDTO, error)
}

// ListAlertsInput narrows an alert listing.
type ListAlertsInput struct {
	Resolved  *bool
	ProductID *uuid.UUID
}

// AlertDTO represents the alert payload returned to clients.
type AlertDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Message   string    `json:"message"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type service struct {
	repo *Repository
}

// NewService constructs an alert service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("alert repository required")
	}
	return &service{repo: repo}, nil
}

// ListAlerts returns alerts newest first.
func (s *service) ListAlerts(ctx context.Context, input ListAlertsInput) ([]AlertDTO, error) {
	rows, err := s.repo.List(ctx, ListFilter{
		Resolved:  input.Resolved,
		ProductID: input.ProductID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list alerts")
	}
	result := make([]AlertDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *newAlertDTO(&rows[i]))
	}
	return result, nil
}

// ResolveAlert marks an alert as handled. Resolving twice is a no-op.
func (s *service) ResolveAlert(ctx context.Context, alertID uuid.UUID) (*AlertDTO, error) {
	alert, err := s.repo.Resolve(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve alert")
	}
	return newAlertDTO(alert), nil
}

func newAlertDTO(alert *models.Alert) *AlertDTO {
	return &AlertDTO{
		ID:        alert.ID,
		ProductID: alert.ProductID,
		Message:   alert.Message,
		Resolved:  alert.Resolved,
		CreatedAt: alert.CreatedAt,
		UpdatedAt: alert.UpdatedAt,
	}
}
