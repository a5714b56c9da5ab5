package commerce

import (
	"context"
	"net/http"
	"net/url"

	"github.com/opticalmarket/storefront/internal/domain"
)

// OrdersAPI covers the backend's order endpoints.
type OrdersAPI interface {
	// CreateOrder creates an order from the cart snapshot. Prices are not
	// sent; the backend recomputes them authoritatively.
	CreateOrder(ctx context.Context, params CreateOrderParams) (*domain.Order, error)

	// GetOrder retrieves a single order visible to the caller.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// ListOrders lists the caller's own orders.
	ListOrders(ctx context.Context) ([]domain.Order, error)

	// ListSellerOrders lists orders on the caller's products (seller view).
	ListSellerOrders(ctx context.Context) ([]domain.Order, error)

	// UpdateOrderStatus moves an order along the fulfillment chain.
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*domain.Order, error)

	// PushOrderToBling pushes one order into the Bling ERP.
	PushOrderToBling(ctx context.Context, orderID string) (*BlingSyncResult, error)
}

// OrderItemParams is one cart line in an order-creation request. Quantity
// only; the backend prices the line itself.
type OrderItemParams struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderParams is the order-creation request body.
type CreateOrderParams struct {
	AddressID     string               `json:"addressId"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Items         []OrderItemParams    `json:"items"`
}

func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", params, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) ListSellerOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/seller", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	body := map[string]string{"status": status}
	var order domain.Order
	if err := c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(orderID)+"/status", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) PushOrderToBling(ctx context.Context, orderID string) (*BlingSyncResult, error) {
	var result BlingSyncResult
	if err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/bling", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
