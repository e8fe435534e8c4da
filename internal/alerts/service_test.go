package alert

import (
	"context"
	"testing"

	"github.com/estoquelabs/estoque-backend/internal/testdb"
	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestListAlertsFiltersResolved(t *testing.T) {
	conn := testdb.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	productID := uuid.New()
	open, err := repo.Create(ctx, &models.Alert{ProductID: productID, Message: "Venda sem estoque do produto: Caneca"})
	require.NoError(t, err)
	done, err := repo.Create(ctx, &models.Alert{ProductID: productID, Message: "Venda sem estoque do produto: Tenis", Resolved: true})
	require.NoError(t, err)

	all, err := svc.ListAlerts(ctx, ListAlertsInput{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	unresolved := false
	rows, err := svc.ListAlerts(ctx, ListAlertsInput{Resolved: &unresolved})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, open.ID, rows[0].ID)

	resolved := true
	rows, err = svc.ListAlerts(ctx, ListAlertsInput{Resolved: &resolved})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, done.ID, rows[0].ID)
}

func TestResolveAlertIsIdempotent(t *testing.T) {
	conn := testdb.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Alert{ProductID: uuid.New(), Message: "Venda sem estoque do produto: Mochila"})
	require.NoError(t, err)

	first, err := svc.ResolveAlert(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, first.Resolved)

	second, err := svc.ResolveAlert(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, second.Resolved)

	_, err = svc.ResolveAlert(ctx, uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
