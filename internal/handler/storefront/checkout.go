package storefront

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/opticalmarket/storefront/internal/checkout"
	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/domain"
	"github.com/opticalmarket/storefront/internal/middleware"
	"github.com/opticalmarket/storefront/internal/session"
)

// CheckoutHandler handles the checkout steps: address selection, shipping
// selection, submission and payment confirmation.
type CheckoutHandler struct {
	flow      *checkout.Flow
	sessions  *session.Store
	addresses commerce.AddressesAPI
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(flow *checkout.Flow, sessions *session.Store, addresses commerce.AddressesAPI) *CheckoutHandler {
	return &CheckoutHandler{flow: flow, sessions: sessions, addresses: addresses}
}

// sessionResponse mirrors the checkout session for the client.
type sessionResponse struct {
	AddressID      string                 `json:"addressId,omitempty"`
	Shipping       *domain.ShippingOption `json:"shipping,omitempty"`
	PendingOrderID string                 `json:"pendingOrderId,omitempty"`
}

// Session handles GET /checkout/session.
func (h *CheckoutHandler) Session(c echo.Context) error {
	snapshot, _ := h.sessions.Snapshot(middleware.CartKey(c))
	return c.JSON(http.StatusOK, sessionResponse{
		AddressID:      snapshot.AddressID,
		Shipping:       snapshot.Shipping,
		PendingOrderID: snapshot.PendingOrderID,
	})
}

type selectAddressRequest struct {
	AddressID string `json:"addressId" validate:"required"`
}

// SelectAddress handles POST /checkout/address. The address must belong to
// the shopper; the listing check catches a stale or foreign ID before it
// poisons the submission.
func (h *CheckoutHandler) SelectAddress(c echo.Context) error {
	var req selectAddressRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.SelectAddress", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	owned, err := h.addresses.ListAddresses(c.Request().Context())
	if err != nil {
		return err
	}

	found := false
	for _, address := range owned {
		if address.ID == req.AddressID {
			found = true
			break
		}
	}
	if !found {
		return domain.NotFound("storefront.SelectAddress", "address", req.AddressID)
	}

	h.sessions.SetAddress(middleware.CartKey(c), req.AddressID)
	return h.Session(c)
}

type selectShippingRequest struct {
	Name         string          `json:"name" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDays int             `json:"deliveryDays" validate:"gte=0"`
}

// SelectShipping handles POST /checkout/shipping.
func (h *CheckoutHandler) SelectShipping(c echo.Context) error {
	var req selectShippingRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.SelectShipping", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	h.sessions.SetShipping(middleware.CartKey(c), domain.ShippingOption{
		Name:         req.Name,
		Price:        req.Price,
		DeliveryDays: req.DeliveryDays,
	})
	return h.Session(c)
}

type submitRequest struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" validate:"required"`
}

// submitResponse reports the submission outcome. For asynchronous
// instruments the payment artifacts (QR code, ticket URL) come back here
// and the client polls /checkout/confirmation.
type submitResponse struct {
	OrderID     string                `json:"orderId"`
	State       checkout.State        `json:"state"`
	Payment     *domain.PaymentResult `json:"payment"`
	RedirectURL string                `json:"redirectUrl,omitempty"`
}

// Submit handles POST /checkout/submit.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.Submit", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user := domain.UserFromContext(c.Request().Context())
	if user == nil {
		return domain.Unauthorized("storefront.Submit", "authentication required")
	}

	result, err := h.flow.Submit(c.Request().Context(), checkout.SubmitParams{
		CartKey:    middleware.CartKey(c),
		PayerEmail: user.Email,
		Method:     req.PaymentMethod,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, submitResponse{
		OrderID:     result.Order.ID,
		State:       result.State,
		Payment:     result.Payment,
		RedirectURL: result.Payment.RedirectURL(),
	})
}

// confirmationResponse reports where a pending payment stands.
type confirmationResponse struct {
	OrderID    string         `json:"orderId"`
	State      checkout.State `json:"state"`
	LastStatus string         `json:"lastStatus,omitempty"`
}

// Confirmation handles GET /checkout/confirmation/:orderId. Each call runs
// one status check, so a client polling this endpoint drives the
// confirmation loop even after a server restart.
func (h *CheckoutHandler) Confirmation(c echo.Context) error {
	orderID := c.Param("orderId")
	cartKey := middleware.CartKey(c)

	confirmation, ok := h.flow.PendingConfirmation(orderID)
	if !ok {
		// Restart or another instance: only resume when the session still
		// ties this cart to the order.
		pending, found := h.sessions.PendingOrder(cartKey)
		if !found || pending != orderID {
			return domain.NotFound("storefront.Confirmation", "pending payment", orderID)
		}
		resumed, err := h.flow.ResumeConfirmation(c.Request().Context(), cartKey, orderID)
		if err != nil {
			return err
		}
		confirmation = resumed
	}

	state, err := confirmation.CheckStatus(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, confirmationResponse{
		OrderID:    orderID,
		State:      state,
		LastStatus: confirmation.LastStatus(),
	})
}

// Watch handles GET /checkout/confirmation/:orderId/watch. It long-polls
// the payment status for up to 10 checks at 3-second intervals and returns
// the first terminal state seen, sparing mobile clients a tight poll loop.
func (h *CheckoutHandler) Watch(c echo.Context) error {
	orderID := c.Param("orderId")

	confirmation, ok := h.flow.PendingConfirmation(orderID)
	if !ok {
		return domain.NotFound("storefront.Watch", "pending payment", orderID)
	}

	state, err := confirmation.Watch(c.Request().Context(), 3*time.Second, 10)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, confirmationResponse{
		OrderID:    orderID,
		State:      state,
		LastStatus: confirmation.LastStatus(),
	})
}
