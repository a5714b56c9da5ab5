package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/opticalmarket/storefront/internal/domain"
)

// timeNow is swappable in tests.
var timeNow = time.Now

// State is where a submission stands after the backend accepted it.
type State string

const (
	// StateAwaitingAction means the buyer must finish on the gateway's own
	// pages (card redirect). Nothing left to poll here.
	StateAwaitingAction State = "AWAITING_ACTION"

	// StatePendingConfirmation means the payment record exists but the
	// instrument settles outside the app; the status is being polled.
	StatePendingConfirmation State = "PENDING_CONFIRMATION"

	// StateApproved is terminal: the payment confirmed and checkout state
	// was cleaned up.
	StateApproved State = "APPROVED"

	// StateFailed is terminal: the gateway reported rejection or
	// cancellation. The cart is preserved for another attempt.
	StateFailed State = "FAILED"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateApproved || s == StateFailed
}

// Confirmation tracks one asynchronously-settling payment until it reaches
// a terminal state. Checks are idempotent: once terminal, further checks
// return the terminal state without touching the backend.
type Confirmation struct {
	orderID string
	cartKey string
	method  domain.PaymentMethod
	flow    *Flow
	logger  zerolog.Logger

	mu         sync.Mutex
	state      State
	lastStatus string
}

func (f *Flow) newConfirmation(cartKey, orderID string, method domain.PaymentMethod) *Confirmation {
	return &Confirmation{
		orderID: orderID,
		cartKey: cartKey,
		method:  method,
		flow:    f,
		state:   StatePendingConfirmation,
		logger: f.logger.With().
			Str("order_id", orderID).
			Str("payment_method", string(method)).
			Logger(),
	}
}

// OrderID returns the order being confirmed.
func (c *Confirmation) OrderID() string {
	return c.orderID
}

// State returns the current confirmation state.
func (c *Confirmation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastStatus returns the most recent gateway status observed, "" before the
// first check.
func (c *Confirmation) LastStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStatus
}

// CheckStatus polls the backend once and advances the state machine. An
// unconfirmed payment is a state, not an error; the error return is reserved
// for the status request itself failing.
func (c *Confirmation) CheckStatus(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.state.Terminal() {
		state := c.state
		c.mu.Unlock()
		return state, nil
	}
	c.mu.Unlock()

	status, err := c.flow.payments.PaymentStatus(ctx, c.orderID)
	if err != nil {
		return c.State(), err
	}

	c.flow.metrics.PaymentChecks.WithLabelValues(status).Inc()

	c.mu.Lock()
	c.lastStatus = status
	c.mu.Unlock()

	switch {
	case domain.ApprovedPaymentStatus(status):
		c.transition(ctx, StateApproved, status)
	case domain.FailedPaymentStatus(status):
		c.transition(ctx, StateFailed, status)
	}

	return c.State(), nil
}

// Watch polls until the confirmation reaches a terminal state, the context
// ends, or maxChecks polls have run. The returned state is terminal only if
// confirmation actually concluded; callers seeing a pending state can resume
// with another Watch or individual CheckStatus calls.
func (c *Confirmation) Watch(ctx context.Context, interval time.Duration, maxChecks int) (State, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for checks := 0; maxChecks <= 0 || checks < maxChecks; checks++ {
		select {
		case <-ctx.Done():
			return c.State(), ctx.Err()
		case <-ticker.C:
		}

		state, err := c.CheckStatus(ctx)
		if err != nil {
			// Transient poll failures keep the loop alive; the next tick
			// retries. Context errors end it above.
			c.logger.Warn().Err(err).Msg("payment status check failed")
			continue
		}
		if state.Terminal() {
			return state, nil
		}
	}

	return c.State(), nil
}

// transition moves to a terminal state exactly once and runs its side
// effects. Approval clears the cart and session; failure preserves both so
// the shopper can retry with another instrument.
func (c *Confirmation) transition(ctx context.Context, to State, status string) {
	c.mu.Lock()
	if c.state.Terminal() {
		c.mu.Unlock()
		return
	}
	c.state = to
	c.mu.Unlock()

	switch to {
	case StateApproved:
		order := &domain.Order{
			ID:            c.orderID,
			PaymentMethod: string(c.method),
			PaymentStatus: status,
		}
		if fetched, err := c.flow.orders.GetOrder(ctx, c.orderID); err == nil {
			order = fetched
		}
		c.flow.settle(ctx, c.cartKey, order, c.method, status)

	case StateFailed:
		c.flow.metrics.PaymentFailed.WithLabelValues(status).Inc()
		c.logger.Warn().Str("payment_status", status).Msg("payment failed")
	}

	c.flow.deregisterConfirmation(c.orderID)
}
