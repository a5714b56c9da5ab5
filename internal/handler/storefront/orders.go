package storefront

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opticalmarket/storefront/internal/commerce"
)

// OrderHandler handles the shopper's order history.
type OrderHandler struct {
	orders commerce.OrdersAPI
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders commerce.OrdersAPI) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List handles GET /orders.
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.orders.ListOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// Get handles GET /orders/:orderId. The backend scopes the lookup to the
// caller, so a foreign order comes back as not found.
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.orders.GetOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}
