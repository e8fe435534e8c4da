package product

import (
	"context"
	"testing"

	"github.com/estoquelabs/estoque-backend/internal/testdb"
	warehouse "github.com/estoquelabs/estoque-backend/internal/warehouses"
	"github.com/estoquelabs/estoque-backend/pkg/db"
	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *warehouse.Repository) {
	t.Helper()
	conn := testdb.Open(t)
	warehouseRepo := warehouse.NewRepository(conn)
	svc, err := NewService(NewRepository(conn), db.NewWithConn(conn), warehouseRepo)
	require.NoError(t, err)
	return svc, warehouseRepo
}

func TestCreateProductValidatesAndDeduplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{MLItemID: "  ", Name: "Caneca"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	created, err := svc.CreateProduct(ctx, CreateProductInput{MLItemID: "MLB123456789", Name: "Caneca Branca"})
	require.NoError(t, err)
	require.Equal(t, 0, created.TotalStock)
	require.Empty(t, created.Inventory)

	_, err = svc.CreateProduct(ctx, CreateProductInput{MLItemID: "MLB123456789", Name: "Outra Caneca"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestSetInventoryAcrossWarehouses(t *testing.T) {
	svc, warehouseRepo := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{MLItemID: "MLB900000001", Name: "Mochila"})
	require.NoError(t, err)

	first := mustWarehouse(t, warehouseRepo, "CD Leste")
	second := mustWarehouse(t, warehouseRepo, "CD Oeste")

	dto, err := svc.SetInventory(ctx, created.ID, SetInventoryInput{WarehouseID: first, Quantity: 8})
	require.NoError(t, err)
	require.Equal(t, 8, dto.TotalStock)

	dto, err = svc.SetInventory(ctx, created.ID, SetInventoryInput{WarehouseID: second, Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, 10, dto.TotalStock)
	require.Len(t, dto.Inventory, 2)

	_, err = svc.SetInventory(ctx, created.ID, SetInventoryInput{WarehouseID: uuid.New(), Quantity: 1})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.SetInventory(ctx, created.ID, SetInventoryInput{WarehouseID: first, Quantity: -1})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{MLItemID: "MLB900000002", Name: "Tenis"})
	require.NoError(t, err)

	name := "Tenis Branco"
	sku := "TB-42"
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Name: &name, SKU: &sku})
	require.NoError(t, err)
	require.Equal(t, "Tenis Branco", updated.Name)
	require.NotNil(t, updated.SKU)
	require.Equal(t, "TB-42", *updated.SKU)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))

	_, err = svc.GetProduct(ctx, created.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func mustWarehouse(t *testing.T, repo *warehouse.Repository, name string) uuid.UUID {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.Warehouse{
		Name:     name,
		Location: "Sao Paulo, SP",
		IsActive: true,
	})
	require.NoError(t, err)
	return created.ID
}
