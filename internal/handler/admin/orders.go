package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/domain"
)

// OrderHandler handles seller order management.
type OrderHandler struct {
	orders commerce.OrdersAPI
}

// NewOrderHandler creates a new admin order handler.
func NewOrderHandler(orders commerce.OrdersAPI) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List handles GET /admin/orders: orders containing the seller's products.
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.orders.ListSellerOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PATCH /admin/orders/:orderId/status, moving an order
// along the fulfillment chain.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("admin.OrderStatus", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !domain.ValidOrderStatus(req.Status) {
		return domain.Invalid("admin.OrderStatus", "unknown order status")
	}

	order, err := h.orders.UpdateOrderStatus(c.Request().Context(), c.Param("orderId"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// Advance handles POST /admin/orders/:orderId/advance: move the order to
// its natural next fulfillment status without the client naming it.
func (h *OrderHandler) Advance(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("orderId")

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	next, ok := domain.NextFulfillmentStatus(order.Status)
	if !ok {
		return domain.Conflict("admin.OrderAdvance", "order has no further fulfillment step")
	}

	updated, err := h.orders.UpdateOrderStatus(ctx, orderID, next)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}
