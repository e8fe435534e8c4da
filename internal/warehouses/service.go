package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/estoquelabs/estoque-backend/pkg/db"
	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes warehouse management operations.
type Service interface {
	CreateWarehouse(ctx context.Context, input CreateWarehouseInput) (*WarehouseDTO, error)
	UpdateWarehouse(ctx context.Context, warehouseID uuid.UUID, input UpdateWarehouseInput) (*WarehouseDTO, error)
	DeleteWarehouse(ctx context.Context, warehouseID uuid.UUID) error
	GetWarehouse(ctx context.Context, warehouseID uuid.UUID) (*WarehouseDTO, error)
	ListWarehouses(ctx context.Context) ([]WarehouseDTO, error)
}

// CreateWarehouseInput holds the validated payload to create a warehouse.
type CreateWarehouseInput struct {
	Name     string
	Location string
}

// UpdateWarehouseInput holds optional mutation values for a warehouse.
type UpdateWarehouseInput struct {
	Name     *string
	Location *string
	IsActive *bool
}

// WarehouseDTO represents the warehouse payload returned to clients.
type WarehouseDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type inventoryChecker interface {
	HasInventoryInWarehouse(ctx context.Context, warehouseID uuid.UUID) (bool, error)
}

type service struct {
	repo      *Repository
	inventory inventoryChecker
}

// NewService constructs a warehouse service instance.
func NewService(repo *Repository, inventory inventoryChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory checker required")
	}
	return &service{repo: repo, inventory: inventory}, nil
}

// CreateWarehouse registers a new stock location.
func (s *service) CreateWarehouse(ctx context.Context, input CreateWarehouseInput) (*WarehouseDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	created, err := s.repo.Create(ctx, &models.Warehouse{
		Name:     name,
		Location: strings.TrimSpace(input.Location),
		IsActive: true,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "uq_warehouses_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "warehouse name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert warehouse")
	}
	return newWarehouseDTO(created), nil
}

// UpdateWarehouse applies partial changes to a warehouse.
func (s *service) UpdateWarehouse(ctx context.Context, warehouseID uuid.UUID, input UpdateWarehouseInput) (*WarehouseDTO, error) {
	warehouse, err := s.load(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		warehouse.Name = name
	}
	if input.Location != nil {
		warehouse.Location = strings.TrimSpace(*input.Location)
	}
	if input.IsActive != nil {
		warehouse.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, warehouse)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_warehouses_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "warehouse name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update warehouse")
	}
	return newWarehouseDTO(updated), nil
}

// DeleteWarehouse removes a warehouse. Deletion is refused while any product
// still holds inventory there.
func (s *service) DeleteWarehouse(ctx context.Context, warehouseID uuid.UUID) error {
	if _, err := s.load(ctx, warehouseID); err != nil {
		return err
	}

	referenced, err := s.inventory.HasInventoryInWarehouse(ctx, warehouseID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check warehouse references")
	}
	if referenced {
		return pkgerrors.New(pkgerrors.CodeConflict, "warehouse still holds product inventory")
	}

	if err := s.repo.Delete(ctx, warehouseID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete warehouse")
	}
	return nil
}

// GetWarehouse loads one warehouse.
func (s *service) GetWarehouse(ctx context.Context, warehouseID uuid.UUID) (*WarehouseDTO, error) {
	warehouse, err := s.load(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return newWarehouseDTO(warehouse), nil
}

// ListWarehouses returns every warehouse.
func (s *service) ListWarehouses(ctx context.Context) ([]WarehouseDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list warehouses")
	}
	result := make([]WarehouseDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *newWarehouseDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) load(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error) {
	warehouse, err := s.repo.FindByID(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load warehouse")
	}
	return warehouse, nil
}

func newWarehouseDTO(warehouse *models.Warehouse) *WarehouseDTO {
	return &WarehouseDTO{
		ID:        warehouse.ID,
		Name:      warehouse.Name,
		Location:  warehouse.Location,
		IsActive:  warehouse.IsActive,
		CreatedAt: warehouse.CreatedAt,
		UpdatedAt: warehouse.UpdatedAt,
	}
}
