// Package reconcile turns marketplace order notifications into stock
// movements, sale records, and shortage alerts.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	alert "github.com/estoquelabs/estoque-backend/internal/alerts"
	"github.com/estoquelabs/estoque-backend/internal/mercadolivre"
	product "github.com/estoquelabs/estoque-backend/internal/products"
	sale "github.com/estoquelabs/estoque-backend/internal/sales"
	"github.com/estoquelabs/estoque-backend/pkg/db"
	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/estoquelabs/estoque-backend/pkg/logger"
	"github.com/estoquelabs/estoque-backend/pkg/metrics"
	pkgredis "github.com/estoquelabs/estoque-backend/pkg/redis"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const lockScopeOrder = "order"

// Outcome summarizes what a single notification did.
type Outcome struct {
	OrderID   string
	Processed bool
	SaleItems int
	Skipped   int
	Alerts    int
}

// EngineParams collects the engine's dependencies.
type EngineParams struct {
	DB       *db.Client
	Products *product.Repository
	Sales    *sale.Repository
	Alerts   *alert.Repository
	Orders   mercadolivre.OrderFetcher
	Locks    pkgredis.LockStore
	Logger   *logger.Logger
	Metrics  *metrics.WebhookMetrics
	LockTTL  time.Duration
}

// Engine processes order notifications end to end.
type Engine struct {
	db       *db.Client
	products *product.Repository
	sales    *sale.Repository
	alerts   *alert.Repository
	orders   mercadolivre.OrderFetcher
	locks    pkgredis.LockStore
	logg     *logger.Logger
	metrics  *metrics.WebhookMetrics
	lockTTL  time.Duration
}

// NewEngine validates the dependencies and builds an engine.
func NewEngine(params EngineParams) (*Engine, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sale repository required")
	}
	if params.Alerts == nil {
		return nil, fmt.Errorf("alert repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order fetcher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	lockTTL := params.LockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &Engine{
		db:       params.DB,
		products: params.Products,
		sales:    params.Sales,
		alerts:   params.Alerts,
		orders:   params.Orders,
		locks:    params.Locks,
		logg:     params.Logger,
		metrics:  params.Metrics,
		lockTTL:  lockTTL,
	}, nil
}

// ProcessNotification handles one webhook delivery. Non-order topics are
// acknowledged without work.
func (e *Engine) ProcessNotification(ctx context.Context, notification mercadolivre.Notification) (*Outcome, error) {
	started := time.Now()

	if !notification.IsOrder() {
		e.metrics.ObserveOrder(metrics.OutcomeSkipped, time.Since(started))
		return &Outcome{}, nil
	}
	orderID := notification.OrderID()
	if orderID == "" {
		// Malformed resource. Acknowledge it, or the marketplace retries forever.
		e.logg.Warn(e.logg.WithField(ctx, "resource", notification.Resource), "order notification carries no order id, ignoring")
		e.metrics.ObserveOrder(metrics.OutcomeSkipped, time.Since(started))
		return &Outcome{}, nil
	}

	outcome, err := e.ProcessOrder(ctx, orderID)
	elapsed := time.Since(started)
	switch {
	case err != nil:
		e.metrics.ObserveOrder(metrics.OutcomeFailed, elapsed)
	case !outcome.Processed:
		e.metrics.ObserveOrder(metrics.OutcomeDuplicate, elapsed)
	default:
		e.metrics.ObserveOrder(metrics.OutcomeProcessed, elapsed)
		e.metrics.IncSaleItems(outcome.SaleItems)
		e.metrics.IncAlerts(outcome.Alerts)
	}
	return outcome, err
}

// ProcessOrder reconciles one order against local stock. Reprocessing an
// already recorded order is a no-op. Items whose listing is unknown locally
// are skipped; failures on one item do not stop the others.
func (e *Engine) ProcessOrder(ctx context.Context, orderID string) (*Outcome, error) {
	ctx = e.logg.WithOrderID(ctx, orderID)
	outcome := &Outcome{OrderID: orderID}

	if e.locks != nil {
		key := e.locks.LockKey(lockScopeOrder, orderID)
		acquired, err := e.locks.SetNX(ctx, key, time.Now().UnixNano(), e.lockTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: acquire order lock")
		}
		if !acquired {
			e.logg.Info(ctx, "order already being processed, ignoring delivery")
			return outcome, nil
		}
		defer func() {
			if err := e.locks.Del(context.WithoutCancel(ctx), key); err != nil {
				e.logg.Warn(e.logg.WithField(ctx, "lock_key", key), "releasing order lock failed")
			}
		}()
	}

	recorded, err := e.sales.ExistsForOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check order ledger")
	}
	if recorded {
		e.logg.Info(ctx, "order already recorded, skipping")
		return outcome, nil
	}

	order, err := e.orders.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Paid() {
		e.logg.Info(e.logg.WithField(ctx, "status", order.Status), "order not paid, nothing to do")
		return outcome, nil
	}

	var itemErrs error
	for _, item := range order.Items {
		if err := e.processItem(ctx, orderID, item, outcome); err != nil {
			itemErrs = multierr.Append(itemErrs, err)
		}
	}
	outcome.Processed = true
	if itemErrs != nil {
		return outcome, pkgerrors.Wrap(pkgerrors.CodeDependency, itemErrs, "processing order items")
	}
	return outcome, nil
}

// processItem records one sold item: the sale row and the stock deduction
// land in the same transaction, so a duplicate sale rolls both back.
func (e *Engine) processItem(ctx context.Context, orderID string, item mercadolivre.OrderItem, outcome *Outcome) error {
	ctx = e.logg.WithField(ctx, "ml_item_id", item.Item.ID)

	found, err := e.products.FindByMLItemID(ctx, item.Item.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			e.logg.Warn(ctx, "order item has no matching product, skipping")
			outcome.Skipped++
			return nil
		}
		return fmt.Errorf("item %s: load product: %w", item.Item.ID, err)
	}
	ctx = e.logg.WithProductID(ctx, found.ID.String())

	var short bool
	err = e.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := e.sales.WithTx(tx).Create(ctx, &models.Sale{
			ProductID: found.ID,
			MLOrderID: orderID,
			Quantity:  item.Quantity,
		}); err != nil {
			return err
		}
		deduction, err := e.products.WithTx(tx).DeductStock(ctx, found.ID, item.Quantity)
		if err != nil {
			return err
		}
		short = item.Quantity > deduction.Available
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "uq_sales_order_product") {
			// A concurrent delivery got here first.
			e.logg.Info(ctx, "sale already recorded for this order item, skipping")
			return nil
		}
		return fmt.Errorf("item %s: record sale: %w", item.Item.ID, err)
	}
	outcome.SaleItems++

	if short {
		if _, err := e.alerts.Create(ctx, &models.Alert{
			ProductID: found.ID,
			Message:   fmt.Sprintf("Venda sem estoque do produto: %s", found.Name),
		}); err != nil {
			return fmt.Errorf("item %s: create alert: %w", item.Item.ID, err)
		}
		outcome.Alerts++
		e.logg.Warn(ctx, "sale exceeded available stock")
	}
	return nil
}
