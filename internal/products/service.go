package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/estoquelabs/estoque-backend/pkg/db"
	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes product catalog and inventory management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error)
	SetInventory(ctx context.Context, productID uuid.UUID, input SetInventoryInput) (*ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	MLItemID string
	Name     string
	SKU      *string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	MLItemID *string
	Name     *string
	SKU      *string
}

// ListProductsInput narrows a product listing.
type ListProductsInput struct {
	WarehouseID *uuid.UUID
	Search      string
}

// SetInventoryInput replaces the quantity a product holds at one warehouse.
type SetInventoryInput struct {
	WarehouseID uuid.UUID
	Quantity    int
}

type warehouseLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
}

type service struct {
	repo          *Repository
	dbClient      *db.Client
	warehouseRepo warehouseLoader
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, warehouseRepo warehouseLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if warehouseRepo == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	return &service{
		repo:          repo,
		dbClient:      dbClient,
		warehouseRepo: warehouseRepo,
	}, nil
}

// CreateProduct registers a new marketplace-linked product with zero stock.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	mlItemID := strings.TrimSpace(input.MLItemID)
	if mlItemID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ml_item_id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	created, err := s.repo.Create(ctx, &models.Product{
		MLItemID: mlItemID,
		Name:     name,
		SKU:      input.SKU,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "uq_products_ml_item_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "ml_item_id already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

// UpdateProduct applies partial scalar changes to a product.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.MLItemID != nil {
		mlItemID := strings.TrimSpace(*input.MLItemID)
		if mlItemID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "ml_item_id cannot be empty")
		}
		product.MLItemID = mlItemID
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.SKU != nil {
		product.SKU = input.SKU
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_products_ml_item_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "ml_item_id already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	updated.Inventory = product.Inventory
	return NewProductDTO(updated), nil
}

// DeleteProduct removes the product and its inventory lines.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// GetProduct loads one product with its per-warehouse stock breakdown.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

// ListProducts returns products matching the filter.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, ListFilter{
		WarehouseID: input.WarehouseID,
		Search:      input.Search,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	result := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *NewProductDTO(&rows[i]))
	}
	return result, nil
}

// SetInventory replaces the product's quantity at a warehouse and refreshes
// the derived total.
func (s *service) SetInventory(ctx context.Context, productID uuid.UUID, input SetInventoryInput) (*ProductDTO, error) {
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := s.warehouseRepo.FindByID(ctx, input.WarehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load warehouse")
	}

	var updated *models.Product
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		updated, txErr = s.repo.WithTx(tx).UpsertInventoryLine(ctx, productID, input.WarehouseID, input.Quantity)
		return txErr
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert inventory line")
	}
	return NewProductDTO(updated), nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}
