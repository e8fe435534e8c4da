package reconcile

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	alert "github.com/estoquelabs/estoque-backend/internal/alerts"
	"github.com/estoquelabs/estoque-backend/internal/mercadolivre"
	product "github.com/estoquelabs/estoque-backend/internal/products"
	sale "github.com/estoquelabs/estoque-backend/internal/sales"
	"github.com/estoquelabs/estoque-backend/internal/testdb"
	"github.com/estoquelabs/estoque-backend/pkg/db"
	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/estoquelabs/estoque-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeOrders struct {
	orders  map[string]*mercadolivre.Order
	err     error
	calls   int
	onFetch func(orderID string)
}

func (f *fakeOrders) FetchOrder(_ context.Context, orderID string) (*mercadolivre.Order, error) {
	f.calls++
	if f.onFetch != nil {
		f.onFetch(orderID)
	}
	if f.err != nil {
		return nil, f.err
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

type fakeLocks struct {
	mu   sync.Mutex
	held map[string]bool
	deny bool
}

func (f *fakeLocks) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deny {
		return false, nil
	}
	if f.held == nil {
		f.held = map[string]bool{}
	}
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocks) LockKey(scope, id string) string {
	return "estoque:lock:" + scope + ":" + id
}

func (f *fakeLocks) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.held, key)
	}
	return nil
}

type fixture struct {
	engine *Engine
	conn   *gorm.DB
	orders *fakeOrders
	locks  *fakeLocks
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testdb.Open(t)
	orders := &fakeOrders{orders: map[string]*mercadolivre.Order{}}
	locks := &fakeLocks{}

	engine, err := NewEngine(EngineParams{
		DB:       db.NewWithConn(conn),
		Products: product.NewRepository(conn),
		Sales:    sale.NewRepository(conn),
		Alerts:   alert.NewRepository(conn),
		Orders:   orders,
		Locks:    locks,
		Logger:   logger.New(logger.Options{ServiceName: "reconcile-test", Output: io.Discard}),
		LockTTL:  time.Second,
	})
	require.NoError(t, err)
	return &fixture{engine: engine, conn: conn, orders: orders, locks: locks}
}

func (f *fixture) addProduct(t *testing.T, mlItemID, name string, stock int) *models.Product {
	t.Helper()
	prod := &models.Product{ID: uuid.New(), MLItemID: mlItemID, Name: name}
	require.NoError(t, f.conn.Create(prod).Error)
	if stock != 0 {
		warehouse := &models.Warehouse{ID: uuid.New(), Name: "CD " + mlItemID, Location: "BR", IsActive: true}
		require.NoError(t, f.conn.Create(warehouse).Error)
		line := &models.InventoryLine{ProductID: prod.ID, WarehouseID: warehouse.ID, Quantity: stock}
		require.NoError(t, f.conn.Create(line).Error)
		require.NoError(t, f.conn.Model(prod).Update("total_stock", stock).Error)
	}
	return prod
}

func (f *fixture) totalStock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var prod models.Product
	require.NoError(t, f.conn.First(&prod, "id = ?", productID).Error)
	return prod.TotalStock
}

func paidOrder(id string, items ...mercadolivre.OrderItem) *mercadolivre.Order {
	return &mercadolivre.Order{ID: id, Status: mercadolivre.OrderStatusPaid, Items: items}
}

func item(mlItemID string, qty int) mercadolivre.OrderItem {
	return mercadolivre.OrderItem{Item: mercadolivre.ItemRef{ID: mlItemID}, Quantity: qty}
}

func TestProcessOrderRecordsSaleAndDeductsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := f.addProduct(t, "MLB123456789", "Caneca Branca", 5)
	f.orders.orders["2000001"] = paidOrder("2000001", item("MLB123456789", 3))

	outcome, err := f.engine.ProcessOrder(ctx, "2000001")
	require.NoError(t, err)
	require.True(t, outcome.Processed)
	require.Equal(t, 1, outcome.SaleItems)
	require.Zero(t, outcome.Alerts)
	require.Equal(t, 2, f.totalStock(t, prod.ID))

	var sales []models.Sale
	require.NoError(t, f.conn.Find(&sales, "ml_order_id = ?", "2000001").Error)
	require.Len(t, sales, 1)
	require.Equal(t, prod.ID, sales[0].ProductID)
	require.Equal(t, 3, sales[0].Quantity)
}

func TestProcessOrderIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := f.addProduct(t, "MLB123456789", "Caneca Branca", 5)
	f.orders.orders["2000001"] = paidOrder("2000001", item("MLB123456789", 3))

	_, err := f.engine.ProcessOrder(ctx, "2000001")
	require.NoError(t, err)

	outcome, err := f.engine.ProcessOrder(ctx, "2000001")
	require.NoError(t, err)
	require.False(t, outcome.Processed)
	require.Zero(t, outcome.SaleItems)

	// Stock moved exactly once.
	require.Equal(t, 2, f.totalStock(t, prod.ID))
	var count int64
	require.NoError(t, f.conn.Model(&models.Sale{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestProcessOrderShortageCreatesAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := f.addProduct(t, "MLB555000111", "Tenis Preto", 2)
	f.orders.orders["2000002"] = paidOrder("2000002", item("MLB555000111", 3))

	outcome, err := f.engine.ProcessOrder(ctx, "2000002")
	require.NoError(t, err)
	require.Equal(t, 1, outcome.SaleItems)
	require.Equal(t, 1, outcome.Alerts)
	require.Equal(t, -1, f.totalStock(t, prod.ID))

	var alerts []models.Alert
	require.NoError(t, f.conn.Find(&alerts).Error)
	require.Len(t, alerts, 1)
	require.Equal(t, "Venda sem estoque do produto: Tenis Preto", alerts[0].Message)
	require.False(t, alerts[0].Resolved)
}

func TestProcessOrderExactStockDoesNotAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := f.addProduct(t, "MLB555000222", "Mochila", 3)
	f.orders.orders["2000003"] = paidOrder("2000003", item("MLB555000222", 3))

	outcome, err := f.engine.ProcessOrder(ctx, "2000003")
	require.NoError(t, err)
	require.Zero(t, outcome.Alerts)
	require.Equal(t, 0, f.totalStock(t, prod.ID))
}

func TestProcessOrderSkipsUnknownItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	known := f.addProduct(t, "MLB777000111", "Caderno", 10)
	f.orders.orders["2000004"] = paidOrder("2000004",
		item("MLB000UNKNOWN", 2),
		item("MLB777000111", 4),
	)

	outcome, err := f.engine.ProcessOrder(ctx, "2000004")
	require.NoError(t, err)
	require.Equal(t, 1, outcome.SaleItems)
	require.Equal(t, 1, outcome.Skipped)
	require.Equal(t, 6, f.totalStock(t, known.ID))
}

func TestProcessOrderIgnoresUnpaidOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := f.addProduct(t, "MLB888000111", "Garrafa", 4)
	f.orders.orders["2000005"] = &mercadolivre.Order{
		ID:     "2000005",
		Status: "cancelled",
		Items:  []mercadolivre.OrderItem{item("MLB888000111", 2)},
	}

	outcome, err := f.engine.ProcessOrder(ctx, "2000005")
	require.NoError(t, err)
	require.False(t, outcome.Processed)
	require.Zero(t, outcome.SaleItems)
	require.Equal(t, 4, f.totalStock(t, prod.ID))
}

func TestProcessOrderBacksOffWhenLockHeld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addProduct(t, "MLB999000111", "Luminaria", 4)
	f.orders.orders["2000006"] = paidOrder("2000006", item("MLB999000111", 1))
	f.locks.deny = true

	outcome, err := f.engine.ProcessOrder(ctx, "2000006")
	require.NoError(t, err)
	require.False(t, outcome.Processed)
	require.Zero(t, f.orders.calls)
}

func TestProcessNotificationIgnoresOtherTopics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.engine.ProcessNotification(ctx, mercadolivre.Notification{
		Topic:    "items",
		Resource: "/items/MLB123456789",
	})
	require.NoError(t, err)
	require.False(t, outcome.Processed)
	require.Zero(t, f.orders.calls)
}

func TestProcessNotificationParsesResource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := f.addProduct(t, "MLB123456789", "Caneca Branca", 5)
	f.orders.orders["2000003508419013"] = paidOrder("2000003508419013", item("MLB123456789", 3))

	outcome, err := f.engine.ProcessNotification(ctx, mercadolivre.Notification{
		Topic:    "orders",
		Resource: "/orders/2000003508419013",
	})
	require.NoError(t, err)
	require.True(t, outcome.Processed)
	require.Equal(t, "2000003508419013", outcome.OrderID)
	require.Equal(t, 2, f.totalStock(t, prod.ID))
}

func TestProcessNotificationAcknowledgesMissingResource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, resource := range []string{"", "/"} {
		outcome, err := f.engine.ProcessNotification(ctx, mercadolivre.Notification{
			Topic:    "orders",
			Resource: resource,
		})
		require.NoError(t, err)
		require.False(t, outcome.Processed)
	}
	require.Zero(t, f.orders.calls)
}

func TestProcessOrderDuplicateSaleRollsBackDeduction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := f.addProduct(t, "MLB123456789", "Caneca Branca", 5)
	f.orders.orders["2000007"] = paidOrder("2000007", item("MLB123456789", 3))

	// A concurrent delivery lands its sale after the ledger check but before
	// this delivery's insert.
	f.orders.onFetch = func(orderID string) {
		require.NoError(t, f.conn.Create(&models.Sale{
			ID:        uuid.New(),
			ProductID: prod.ID,
			MLOrderID: orderID,
			Quantity:  3,
		}).Error)
		require.NoError(t, f.conn.Model(&models.Product{}).
			Where("id = ?", prod.ID).Update("total_stock", 2).Error)
		require.NoError(t, f.conn.Model(&models.InventoryLine{}).
			Where("product_id = ?", prod.ID).Update("quantity", 2).Error)
	}

	outcome, err := f.engine.ProcessOrder(ctx, "2000007")
	require.NoError(t, err)
	require.True(t, outcome.Processed)
	require.Zero(t, outcome.SaleItems)

	// The unique index rejected the insert and the transaction took the
	// deduction down with it, so stock only moved once.
	require.Equal(t, 2, f.totalStock(t, prod.ID))
	var count int64
	require.NoError(t, f.conn.Model(&models.Sale{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
