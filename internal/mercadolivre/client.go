// Package mercadolivre talks to the marketplace orders API.
package mercadolivre

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/estoquelabs/estoque-backend/pkg/config"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
)

// OrderStatusPaid is the only order status that triggers stock movement.
const OrderStatusPaid = "paid"

// Order is the subset of the marketplace order payload the reconciler reads.
type Order struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Items  []OrderItem `json:"order_items"`
}

// Paid reports whether the order should move stock.
func (o *Order) Paid() bool {
	return o.Status == OrderStatusPaid
}

// OrderItem is one purchased line of an order.
type OrderItem struct {
	Item     ItemRef `json:"item"`
	Quantity int     `json:"quantity"`
}

// ItemRef identifies the listed item behind an order line.
type ItemRef struct {
	ID string `json:"id"`
}

// OrderFetcher is the reconciler's view of this client.
type OrderFetcher interface {
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
}

// Client fetches orders over HTTP with a bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient builds a marketplace client from configuration.
func NewClient(cfg config.MercadoLivreConfig) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("mercadolivre base url is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		baseURL:    baseURL,
		token:      cfg.AccessToken,
	}, nil
}

// FetchOrder loads one order by its marketplace id.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	endpoint := fmt.Sprintf("%s/orders/%s", c.baseURL, url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building order request")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching order")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID))
	}
	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the error context.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, pkgerrors.New(
			pkgerrors.CodeDependency,
			fmt.Sprintf("order fetch returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding order payload")
	}
	if order.ID == "" {
		order.ID = orderID
	}
	return &order, nil
}
