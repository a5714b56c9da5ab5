package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/domain"
	"github.com/opticalmarket/storefront/internal/telemetry"
)

// BlingHandler handles the seller's Bling ERP connection: credentials,
// connection status, manual product sync and manual order re-push (the
// automatic push runs in the background worker).
type BlingHandler struct {
	bling   commerce.BlingAPI
	orders  commerce.OrdersAPI
	metrics *telemetry.BusinessMetrics
}

// NewBlingHandler creates a new Bling handler.
func NewBlingHandler(bling commerce.BlingAPI, orders commerce.OrdersAPI, metrics *telemetry.BusinessMetrics) *BlingHandler {
	return &BlingHandler{bling: bling, orders: orders, metrics: metrics}
}

// Status handles GET /admin/bling/status.
func (h *BlingHandler) Status(c echo.Context) error {
	status, err := h.bling.BlingStatus(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

type credentialsRequest struct {
	ClientID     string `json:"clientId" validate:"required"`
	ClientSecret string `json:"clientSecret" validate:"required"`
}

// SaveCredentials handles POST /admin/bling/credentials.
func (h *BlingHandler) SaveCredentials(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("admin.BlingCredentials", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.bling.SaveBlingCredentials(c.Request().Context(), commerce.BlingCredentialsParams{
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SyncProducts handles POST /admin/bling/sync/products.
func (h *BlingHandler) SyncProducts(c echo.Context) error {
	result, err := h.bling.SyncBlingProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// PushOrder handles POST /admin/orders/:orderId/bling: a manual re-push for
// orders the background worker gave up on.
func (h *BlingHandler) PushOrder(c echo.Context) error {
	result, err := h.orders.PushOrderToBling(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		h.metrics.BlingSyncs.WithLabelValues("failure").Inc()
		return err
	}

	if result.Success {
		h.metrics.BlingSyncs.WithLabelValues("success").Inc()
	} else {
		h.metrics.BlingSyncs.WithLabelValues("failure").Inc()
	}
	return c.JSON(http.StatusOK, result)
}
