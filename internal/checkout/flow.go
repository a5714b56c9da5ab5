// Package checkout orchestrates the purchase: it turns a cart and a checkout
// session into a backend order and a payment record, then tracks payment
// confirmation for instruments that settle outside the app.
//
// Submission is strictly sequenced: order creation first, payment creation
// second. The two failure modes are distinguishable because they leave
// different state behind. A failed order creation leaves everything intact;
// a failed payment creation leaves a real unpaid order, so its ID is carried
// on the error and parked in the checkout session.
package checkout

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/opticalmarket/storefront/internal/cart"
	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/domain"
	"github.com/opticalmarket/storefront/internal/events"
	"github.com/opticalmarket/storefront/internal/session"
	"github.com/opticalmarket/storefront/internal/telemetry"
)

// Flow coordinates cart, checkout session and the backend collaborator for
// one storefront instance.
type Flow struct {
	carts    cart.Service
	sessions *session.Store
	orders   commerce.OrdersAPI
	payments commerce.PaymentsAPI
	events   events.Publisher
	metrics  *telemetry.BusinessMetrics
	logger   zerolog.Logger

	// mu guards inflight and pending. inflight holds cart keys with a
	// submission currently running, so a double-click cannot create two
	// orders from one cart. pending indexes live confirmations by order ID.
	mu       sync.Mutex
	inflight map[string]struct{}
	pending  map[string]*Confirmation
}

// FlowConfig wires a Flow's collaborators.
type FlowConfig struct {
	Carts    cart.Service
	Sessions *session.Store
	Orders   commerce.OrdersAPI
	Payments commerce.PaymentsAPI
	Events   events.Publisher
	Metrics  *telemetry.BusinessMetrics
	Logger   zerolog.Logger
}

// NewFlow creates a checkout flow.
func NewFlow(cfg FlowConfig) *Flow {
	publisher := cfg.Events
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &Flow{
		carts:    cfg.Carts,
		sessions: cfg.Sessions,
		orders:   cfg.Orders,
		payments: cfg.Payments,
		events:   publisher,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.With().Str("component", "checkout").Logger(),
		inflight: make(map[string]struct{}),
		pending:  make(map[string]*Confirmation),
	}
}

// SubmitParams identifies the cart being checked out and the payment
// instrument. The delivery address comes from the checkout session, not
// from these params, so a submission without a completed address step
// fails before any backend call.
type SubmitParams struct {
	CartKey    string
	PayerEmail string
	Method     domain.PaymentMethod
}

// SubmitResult is the outcome of a successful submission: the created order,
// the payment record, and a confirmation when the instrument settles
// asynchronously. For asynchronous instruments the cart is intentionally
// still populated; it is cleared when the confirmation reaches Approved.
type SubmitResult struct {
	Order   *domain.Order
	Payment *domain.PaymentResult
	State   State

	// Confirmation is non-nil only when State is StatePendingConfirmation.
	Confirmation *Confirmation
}

// Submit runs the two-step submission. Guards run before any network call:
// an empty cart, a missing address and a concurrent submission on the same
// cart all fail locally.
func (f *Flow) Submit(ctx context.Context, params SubmitParams) (*SubmitResult, error) {
	const op = "checkout.Submit"

	if !params.Method.Valid() {
		return nil, domain.Invalid(op, "unsupported payment method")
	}

	release, ok := f.acquire(params.CartKey)
	if !ok {
		return nil, domain.ErrSubmissionInFlight
	}
	defer release()

	shopperCart, err := f.carts.Get(ctx, params.CartKey)
	if err != nil {
		return nil, err
	}
	if shopperCart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	addressID, ok := f.sessions.Address(params.CartKey)
	if !ok || addressID == "" {
		return nil, domain.ErrMissingAddress
	}

	f.metrics.CheckoutStarted.WithLabelValues(string(params.Method)).Inc()
	total, _ := shopperCart.Total().Float64()
	f.metrics.CartValue.Observe(total)

	order, err := f.createOrder(ctx, shopperCart, addressID, params.Method)
	if err != nil {
		f.metrics.OrderCreateFailed.Inc()
		f.logger.Error().Err(err).Str("cart_key", params.CartKey).Msg("order creation failed")
		return nil, &domain.OrderCreationError{Err: err}
	}

	// The order exists from here on. Park its ID in the session immediately
	// so a payment failure does not orphan it.
	f.sessions.SetPendingOrder(params.CartKey, order.ID)

	f.logger.Info().
		Str("order_id", order.ID).
		Str("payment_method", string(params.Method)).
		Msg("order created")

	payment, err := f.payments.CreatePayment(ctx, commerce.CreatePaymentParams{
		OrderID:       order.ID,
		PaymentMethod: params.Method,
		PayerEmail:    params.PayerEmail,
	})
	if err != nil {
		f.metrics.PaymentCreateFailed.Inc()
		f.logger.Error().Err(err).Str("order_id", order.ID).Msg("payment creation failed")
		return nil, &domain.PaymentCreationError{OrderID: order.ID, Err: err}
	}

	f.metrics.OrdersSubmitted.WithLabelValues(string(params.Method)).Inc()
	orderTotal, _ := order.Total.Float64()
	f.metrics.OrderValue.Observe(orderTotal)
	f.metrics.OrderItemCount.Observe(float64(shopperCart.ItemCount()))

	f.publish(events.SubjectOrderSubmitted, order, payment.Status)

	result := &SubmitResult{Order: order, Payment: payment}

	switch {
	case domain.ApprovedPaymentStatus(payment.Status):
		// Instant approval (some card flows). Same cleanup as a confirmed
		// asynchronous payment.
		f.settle(ctx, params.CartKey, order, params.Method, payment.Status)
		result.State = StateApproved

	case domain.FailedPaymentStatus(payment.Status):
		// Synchronous decline (e.g. card rejected at creation). The cart
		// and session stay so the shopper can retry with another method;
		// the order ID is already parked in the session.
		f.metrics.PaymentFailed.WithLabelValues(payment.Status).Inc()
		f.logger.Warn().
			Str("order_id", order.ID).
			Str("payment_status", payment.Status).
			Msg("payment declined at creation")
		return nil, domain.ErrPaymentNotApproved

	case params.Method.Asynchronous():
		// PIX and boleto settle outside the app. The cart survives until
		// the confirmation loop observes approval.
		confirmation := f.registerConfirmation(params.CartKey, order.ID, params.Method)
		result.State = StatePendingConfirmation
		result.Confirmation = confirmation

	default:
		// Card flow without instant approval: the buyer finishes on the
		// gateway's pages. The submission itself is complete, so the cart
		// and session are done.
		f.clearCheckoutState(ctx, params.CartKey)
		result.State = StateAwaitingAction
	}

	return result, nil
}

// Confirmation returns the live confirmation for an order, or creates one
// when none is registered (a restart loses the in-memory registry; the order
// and its payment still exist at the backend).
func (f *Flow) Confirmation(cartKey, orderID string, method domain.PaymentMethod) *Confirmation {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.pending[orderID]; ok {
		return c
	}

	c := f.newConfirmation(cartKey, orderID, method)
	f.pending[orderID] = c
	return c
}

// ResumeConfirmation rebuilds a confirmation for an order that has no live
// one, fetching the order to recover its payment method. Used after a
// restart loses the in-memory registry.
func (f *Flow) ResumeConfirmation(ctx context.Context, cartKey, orderID string) (*Confirmation, error) {
	order, err := f.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return f.Confirmation(cartKey, orderID, domain.PaymentMethod(order.PaymentMethod)), nil
}

// PendingConfirmation looks up the live confirmation for an order.
func (f *Flow) PendingConfirmation(orderID string) (*Confirmation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.pending[orderID]
	return c, ok
}

func (f *Flow) acquire(cartKey string) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.inflight[cartKey]; busy {
		return nil, false
	}
	f.inflight[cartKey] = struct{}{}

	return func() {
		f.mu.Lock()
		delete(f.inflight, cartKey)
		f.mu.Unlock()
	}, true
}

func (f *Flow) createOrder(ctx context.Context, shopperCart *domain.Cart, addressID string, method domain.PaymentMethod) (*domain.Order, error) {
	items := make([]commerce.OrderItemParams, 0, len(shopperCart.Items))
	for _, line := range shopperCart.Items {
		items = append(items, commerce.OrderItemParams{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	return f.orders.CreateOrder(ctx, commerce.CreateOrderParams{
		AddressID:     addressID,
		PaymentMethod: method,
		Items:         items,
	})
}

func (f *Flow) registerConfirmation(cartKey, orderID string, method domain.PaymentMethod) *Confirmation {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.newConfirmation(cartKey, orderID, method)
	f.pending[orderID] = c
	return c
}

func (f *Flow) deregisterConfirmation(orderID string) {
	f.mu.Lock()
	delete(f.pending, orderID)
	f.mu.Unlock()
}

// settle runs the approved-payment cleanup: clear the cart and session,
// count the approval and announce it.
func (f *Flow) settle(ctx context.Context, cartKey string, order *domain.Order, method domain.PaymentMethod, status string) {
	f.clearCheckoutState(ctx, cartKey)
	f.metrics.PaymentApproved.WithLabelValues(string(method)).Inc()
	f.publish(events.SubjectOrderApproved, order, status)

	f.logger.Info().
		Str("order_id", order.ID).
		Str("payment_status", status).
		Msg("payment approved")
}

// clearCheckoutState empties the cart and drops the checkout session. A cart
// clear failure is logged, not surfaced: the order and payment already
// succeeded and a stale cart is recoverable by the shopper.
func (f *Flow) clearCheckoutState(ctx context.Context, cartKey string) {
	if err := f.carts.Clear(ctx, cartKey); err != nil {
		f.logger.Error().Err(err).Str("cart_key", cartKey).Msg("failed to clear cart after checkout")
	} else {
		f.metrics.CartCleared.Inc()
	}
	f.sessions.Clear(cartKey)
}

func (f *Flow) publish(subject string, order *domain.Order, paymentStatus string) {
	err := f.events.Publish(subject, events.OrderEvent{
		OrderID:       order.ID,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: paymentStatus,
		Total:         order.Total,
		OccurredAt:    timeNow(),
	})
	if err != nil {
		f.logger.Warn().Err(err).Str("subject", subject).Str("order_id", order.ID).Msg("event publish failed")
	}
}
