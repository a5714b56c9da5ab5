package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticalmarket/storefront/internal/cart"
	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/domain"
	"github.com/opticalmarket/storefront/internal/events"
	"github.com/opticalmarket/storefront/internal/session"
	"github.com/opticalmarket/storefront/internal/telemetry"
)

type fixture struct {
	flow     *Flow
	carts    cart.Service
	sessions *session.Store
	backend  *commerce.MockAPI
	bus      *events.RecordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	carts := cart.NewStore(cart.NewMemoryRepository(), zerolog.Nop())
	sessions := session.NewStore(time.Hour)
	backend := commerce.NewMockAPI()
	bus := &events.RecordingPublisher{}
	metrics := telemetry.NewBusinessMetrics(prometheus.NewRegistry(), "test")

	flow := NewFlow(FlowConfig{
		Carts:    carts,
		Sessions: sessions,
		Orders:   backend,
		Payments: backend,
		Events:   bus,
		Metrics:  metrics,
		Logger:   zerolog.Nop(),
	})

	return &fixture{flow: flow, carts: carts, sessions: sessions, backend: backend, bus: bus}
}

// seedCheckout fills the cart and completes the address step.
func (f *fixture) seedCheckout(t *testing.T, key string) {
	t.Helper()

	_, _, err := f.carts.AddItem(context.Background(), key, cart.AddItemParams{
		ProductID: "p1",
		Name:      "Round Frames",
		Price:     decimal.RequireFromString("150.00"),
		Stock:     10,
		Quantity:  2,
	})
	require.NoError(t, err)
	f.sessions.SetAddress(key, "addr-1")
}

func submitParams(key string, method domain.PaymentMethod) SubmitParams {
	return SubmitParams{CartKey: key, PayerEmail: "buyer@example.com", Method: method}
}

func TestSubmit_EmptyCartFailsBeforeAnyBackendCall(t *testing.T) {
	f := newFixture(t)
	f.sessions.SetAddress("k1", "addr-1")

	_, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodPIX))

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Zero(t, f.backend.Calls("CreateOrder"))
	assert.Zero(t, f.backend.Calls("CreatePayment"))
}

func TestSubmit_MissingAddressFailsBeforeAnyBackendCall(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.carts.AddItem(context.Background(), "k1", cart.AddItemParams{
		ProductID: "p1", Price: decimal.RequireFromString("10"), Stock: 5, Quantity: 1,
	})
	require.NoError(t, err)

	_, err = f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodPIX))

	assert.ErrorIs(t, err, domain.ErrMissingAddress)
	assert.Zero(t, f.backend.Calls("CreateOrder"))
}

func TestSubmit_UnsupportedMethod(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "k1")

	_, err := f.flow.Submit(context.Background(), submitParams("k1", "BARTER"))

	assert.True(t, domain.IsCode(err, domain.EINVALID))
	assert.Zero(t, f.backend.Calls("CreateOrder"))
}

func TestSubmit_OrderCreationFailurePreservesEverything(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "k1")

	f.backend.CreateOrderFunc = func(ctx context.Context, params commerce.CreateOrderParams) (*domain.Order, error) {
		return nil, domain.Invalid("commerce.CreateOrder", "insufficient stock")
	}

	_, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodPIX))

	var orderErr *domain.OrderCreationError
	require.ErrorAs(t, err, &orderErr)
	assert.Zero(t, f.backend.Calls("CreatePayment"), "payment step must not run after order failure")

	shopperCart, err := f.carts.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.False(t, shopperCart.IsEmpty(), "cart survives a failed submission")

	_, ok := f.sessions.Address("k1")
	assert.True(t, ok, "session survives a failed submission")
	_, ok = f.sessions.PendingOrder("k1")
	assert.False(t, ok, "no order exists, nothing to park")
}

func TestSubmit_PaymentCreationFailureRetainsOrderID(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "k1")

	f.backend.CreatePaymentFunc = func(ctx context.Context, params commerce.CreatePaymentParams) (*domain.PaymentResult, error) {
		return nil, domain.NetworkError(errors.New("connection refused"), "commerce.CreatePayment", false)
	}

	_, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodPIX))

	var paymentErr *domain.PaymentCreationError
	require.ErrorAs(t, err, &paymentErr)
	assert.NotEmpty(t, paymentErr.OrderID, "the created order must stay referenceable")

	parked, ok := f.sessions.PendingOrder("k1")
	require.True(t, ok)
	assert.Equal(t, paymentErr.OrderID, parked)

	shopperCart, getErr := f.carts.Get(context.Background(), "k1")
	require.NoError(t, getErr)
	assert.False(t, shopperCart.IsEmpty(), "cart survives a payment failure")
}

func TestSubmit_DeclinedCardPreservesCartForRetry(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "k1")

	f.backend.CreatePaymentFunc = func(ctx context.Context, params commerce.CreatePaymentParams) (*domain.PaymentResult, error) {
		return &domain.PaymentResult{PaymentID: "pay-1", Status: domain.PaymentStatusRejected}, nil
	}

	_, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodCreditCard))

	assert.ErrorIs(t, err, domain.ErrPaymentNotApproved)

	shopperCart, getErr := f.carts.Get(context.Background(), "k1")
	require.NoError(t, getErr)
	assert.False(t, shopperCart.IsEmpty(), "cart must survive a declined payment so another method can be tried")

	addr, ok := f.sessions.Address("k1")
	require.True(t, ok)
	assert.Equal(t, "addr-1", addr, "checkout session must survive a declined payment")

	parked, ok := f.sessions.PendingOrder("k1")
	require.True(t, ok)
	assert.NotEmpty(t, parked, "the created order must stay referenceable")
}

func TestSubmit_CancelledPaymentPreservesCartForRetry(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "k1")

	f.backend.CreatePaymentFunc = func(ctx context.Context, params commerce.CreatePaymentParams) (*domain.PaymentResult, error) {
		return &domain.PaymentResult{PaymentID: "pay-1", Status: domain.PaymentStatusCancelled}, nil
	}

	_, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodPIX))

	assert.ErrorIs(t, err, domain.ErrPaymentNotApproved)

	parked, ok := f.sessions.PendingOrder("k1")
	require.True(t, ok)
	_, registered := f.flow.PendingConfirmation(parked)
	assert.False(t, registered, "no confirmation loop for a payment declined at creation")

	shopperCart, getErr := f.carts.Get(context.Background(), "k1")
	require.NoError(t, getErr)
	assert.False(t, shopperCart.IsEmpty())
}

func TestSubmit_AsyncMethodKeepsCartUntilApproval(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "k1")

	result, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodPIX))
	require.NoError(t, err)

	assert.Equal(t, StatePendingConfirmation, result.State)
	require.NotNil(t, result.Confirmation)

	shopperCart, err := f.carts.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.False(t, shopperCart.IsEmpty(), "async settlement defers the cart clear")

	_, registered := f.flow.PendingConfirmation(result.Order.ID)
	assert.True(t, registered)

	require.Len(t, f.bus.Subjects, 1)
	assert.Equal(t, events.SubjectOrderSubmitted, f.bus.Subjects[0])
}

func TestSubmit_CardMethodClearsCheckoutState(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "k1")

	result, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodCreditCard))
	require.NoError(t, err)

	assert.Equal(t, StateAwaitingAction, result.State)
	assert.Nil(t, result.Confirmation)

	shopperCart, err := f.carts.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, shopperCart.IsEmpty())

	_, ok := f.sessions.Snapshot("k1")
	assert.False(t, ok, "session is gone after a completed submission")
}

func TestSubmit_InstantApproval(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "k1")

	f.backend.CreatePaymentFunc = func(ctx context.Context, params commerce.CreatePaymentParams) (*domain.PaymentResult, error) {
		return &domain.PaymentResult{PaymentID: "pay-1", Status: domain.PaymentStatusApproved}, nil
	}

	result, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodCreditCard))
	require.NoError(t, err)

	assert.Equal(t, StateApproved, result.State)

	shopperCart, err := f.carts.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, shopperCart.IsEmpty())

	require.Len(t, f.bus.Subjects, 2)
	assert.Equal(t, events.SubjectOrderSubmitted, f.bus.Subjects[0])
	assert.Equal(t, events.SubjectOrderApproved, f.bus.Subjects[1])
}

func TestSubmit_ConcurrentSubmissionRejected(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "k1")

	started := make(chan struct{})
	proceed := make(chan struct{})
	f.backend.CreateOrderFunc = func(ctx context.Context, params commerce.CreateOrderParams) (*domain.Order, error) {
		close(started)
		<-proceed
		return &domain.Order{ID: "order-1", PaymentMethod: string(params.PaymentMethod)}, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodPIX))
		assert.NoError(t, err)
	}()

	<-started
	_, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodPIX))
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)

	close(proceed)
	wg.Wait()

	assert.Equal(t, 1, f.backend.Calls("CreateOrder"), "only one order from one cart")
}

func TestSubmit_DifferentCartsDoNotBlockEachOther(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "alice")
	f.seedCheckout(t, "bob")

	_, err := f.flow.Submit(context.Background(), submitParams("alice", domain.PaymentMethodPIX))
	require.NoError(t, err)
	_, err = f.flow.Submit(context.Background(), submitParams("bob", domain.PaymentMethodPIX))
	require.NoError(t, err)

	assert.Equal(t, 2, f.backend.Calls("CreateOrder"))
}

func TestSubmit_OrderItemsCarryQuantitiesOnly(t *testing.T) {
	f := newFixture(t)
	f.seedCheckout(t, "k1")

	var captured commerce.CreateOrderParams
	f.backend.CreateOrderFunc = func(ctx context.Context, params commerce.CreateOrderParams) (*domain.Order, error) {
		captured = params
		return &domain.Order{ID: "order-1", PaymentMethod: string(params.PaymentMethod)}, nil
	}

	_, err := f.flow.Submit(context.Background(), submitParams("k1", domain.PaymentMethodPIX))
	require.NoError(t, err)

	assert.Equal(t, "addr-1", captured.AddressID)
	require.Len(t, captured.Items, 1)
	assert.Equal(t, "p1", captured.Items[0].ProductID)
	assert.Equal(t, 2, captured.Items[0].Quantity)
}
