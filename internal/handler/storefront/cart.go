// Package storefront holds the shopper-facing JSON handlers: cart,
// checkout, orders, addresses, catalog browsing and auth.
package storefront

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opticalmarket/storefront/internal/cart"
	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/domain"
	"github.com/opticalmarket/storefront/internal/middleware"
	"github.com/opticalmarket/storefront/internal/telemetry"
)

// CartHandler handles all cart routes.
type CartHandler struct {
	carts   cart.Service
	catalog commerce.CatalogAPI
	metrics *telemetry.BusinessMetrics
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts cart.Service, catalog commerce.CatalogAPI, metrics *telemetry.BusinessMetrics) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog, metrics: metrics}
}

// cartResponse is the cart as the client sees it, with derived totals
// recomputed from the lines on every response. Money renders with two
// decimal places to match the backend's price serialization.
type cartResponse struct {
	Items     []cartItemResponse `json:"items"`
	Total     string             `json:"total"`
	ItemCount int                `json:"itemCount"`

	// Outcome reports what the mutation did; "clamped" and "rejected" let
	// the client show a stock notice without treating it as an error.
	Outcome string `json:"outcome,omitempty"`
}

type cartItemResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
	Image     string `json:"image,omitempty"`
	Stock     int    `json:"stock"`
}

func newCartResponse(c *domain.Cart, outcome cart.Outcome) cartResponse {
	resp := cartResponse{
		Items:     make([]cartItemResponse, 0, len(c.Items)),
		Total:     c.Total().StringFixed(2),
		ItemCount: c.ItemCount(),
		Outcome:   string(outcome),
	}
	for _, line := range c.Items {
		resp.Items = append(resp.Items, cartItemResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price.StringFixed(2),
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal().StringFixed(2),
			Image:     line.Image,
			Stock:     line.Stock,
		})
	}
	return resp
}

// View handles GET /cart.
func (h *CartHandler) View(c echo.Context) error {
	shopperCart, err := h.carts.Get(c.Request().Context(), middleware.CartKey(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(shopperCart, ""))
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// Add handles POST /cart/items. The product snapshot (name, price, stock)
// is fetched from the catalog here, not trusted from the client.
func (h *CartHandler) Add(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.CartAdd", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return err
	}

	outcome, shopperCart, err := h.carts.AddItem(ctx, middleware.CartKey(c), cart.AddItemParams{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.FirstImage(),
		Stock:     product.Stock,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return err
	}

	h.metrics.CartMutations.WithLabelValues("add", string(outcome)).Inc()
	if outcome == cart.OutcomeClamped {
		h.metrics.CartClamps.Inc()
	}

	return c.JSON(http.StatusOK, newCartResponse(shopperCart, outcome))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity handles PATCH /cart/items/:productId. A quantity below 1
// removes the line; one above the stock ceiling leaves it unchanged.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.CartUpdate", "invalid request body")
	}

	outcome, shopperCart, err := h.carts.UpdateQuantity(
		c.Request().Context(),
		middleware.CartKey(c),
		c.Param("productId"),
		req.Quantity,
	)
	if err != nil {
		return err
	}

	h.metrics.CartMutations.WithLabelValues("update", string(outcome)).Inc()

	return c.JSON(http.StatusOK, newCartResponse(shopperCart, outcome))
}

// Remove handles DELETE /cart/items/:productId.
func (h *CartHandler) Remove(c echo.Context) error {
	shopperCart, err := h.carts.RemoveItem(c.Request().Context(), middleware.CartKey(c), c.Param("productId"))
	if err != nil {
		return err
	}

	h.metrics.CartMutations.WithLabelValues("remove", string(cart.OutcomeRemoved)).Inc()

	return c.JSON(http.StatusOK, newCartResponse(shopperCart, cart.OutcomeRemoved))
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.carts.Clear(c.Request().Context(), middleware.CartKey(c)); err != nil {
		return err
	}

	h.metrics.CartCleared.Inc()

	return c.JSON(http.StatusOK, newCartResponse(&domain.Cart{}, ""))
}
