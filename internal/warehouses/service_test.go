package warehouse

import (
	"context"
	"testing"

	product "github.com/estoquelabs/estoque-backend/internal/products"
	"github.com/estoquelabs/estoque-backend/internal/testdb"
	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	svc, err := NewService(NewRepository(conn), product.NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestCreateWarehouseRejectsDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{Name: "CD Leste", Location: "Sao Paulo"})
	require.NoError(t, err)

	_, err = svc.CreateWarehouse(ctx, CreateWarehouseInput{Name: "CD Leste", Location: "Campinas"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestDeleteWarehouseRefusedWhileReferenced(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{Name: "CD Oeste", Location: "Osasco"})
	require.NoError(t, err)

	prod := &models.Product{ID: uuid.New(), MLItemID: "MLB111222333", Name: "Tenis Preto"}
	require.NoError(t, conn.Create(prod).Error)
	line := &models.InventoryLine{ProductID: prod.ID, WarehouseID: created.ID, Quantity: 3}
	require.NoError(t, conn.Create(line).Error)

	err = svc.DeleteWarehouse(ctx, created.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	// Once the line is gone the delete succeeds.
	require.NoError(t, conn.Delete(line).Error)
	require.NoError(t, svc.DeleteWarehouse(ctx, created.ID))

	_, err = svc.GetWarehouse(ctx, created.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateWarehouse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{Name: "CD Sul", Location: "Curitiba"})
	require.NoError(t, err)
	require.True(t, created.IsActive)

	inactive := false
	name := "CD Sul 2"
	updated, err := svc.UpdateWarehouse(ctx, created.ID, UpdateWarehouseInput{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	require.Equal(t, "CD Sul 2", updated.Name)
	require.False(t, updated.IsActive)
	require.Equal(t, "Curitiba", updated.Location)
}

func TestListWarehousesOrderedByName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Zebra", "Alfa", "Meio"} {
		_, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{Name: name, Location: "BR"})
		require.NoError(t, err)
	}

	rows, err := svc.ListWarehouses(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Alfa", rows[0].Name)
	require.Equal(t, "Meio", rows[1].Name)
	require.Equal(t, "Zebra", rows[2].Name)
}
