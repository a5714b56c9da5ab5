package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticalmarket/storefront/internal/domain"
	"github.com/opticalmarket/storefront/internal/events"
)

// submitPIX runs an async submission and returns its confirmation.
func submitPIX(t *testing.T, f *fixture, key string) *Confirmation {
	t.Helper()
	f.seedCheckout(t, key)

	result, err := f.flow.Submit(context.Background(), submitParams(key, domain.PaymentMethodPIX))
	require.NoError(t, err)
	require.NotNil(t, result.Confirmation)
	return result.Confirmation
}

func TestCheckStatus_PendingIsNotAnError(t *testing.T) {
	f := newFixture(t)
	confirmation := submitPIX(t, f, "k1")

	state, err := confirmation.CheckStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatePendingConfirmation, state)
	assert.Equal(t, domain.PaymentStatusPending, confirmation.LastStatus())
}

func TestCheckStatus_ApprovalClearsCheckoutState(t *testing.T) {
	f := newFixture(t)
	confirmation := submitPIX(t, f, "k1")
	orderID := confirmation.OrderID()

	f.backend.Statuses[orderID] = domain.PaymentStatusApproved

	state, err := confirmation.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateApproved, state)

	shopperCart, err := f.carts.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, shopperCart.IsEmpty(), "approval finally clears the cart")

	_, ok := f.sessions.Snapshot("k1")
	assert.False(t, ok)

	require.Len(t, f.bus.Subjects, 2)
	assert.Equal(t, events.SubjectOrderApproved, f.bus.Subjects[1])

	_, stillPending := f.flow.PendingConfirmation(orderID)
	assert.False(t, stillPending, "terminal confirmations leave the registry")
}

func TestCheckStatus_PaidCountsAsApproved(t *testing.T) {
	f := newFixture(t)
	confirmation := submitPIX(t, f, "k1")

	f.backend.Statuses[confirmation.OrderID()] = domain.OrderStatusPaid

	state, err := confirmation.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateApproved, state)
}

func TestCheckStatus_RejectionPreservesCart(t *testing.T) {
	f := newFixture(t)
	confirmation := submitPIX(t, f, "k1")

	f.backend.Statuses[confirmation.OrderID()] = domain.PaymentStatusRejected

	state, err := confirmation.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateFailed, state)

	shopperCart, err := f.carts.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.False(t, shopperCart.IsEmpty(), "a failed payment must not destroy the cart")
}

func TestCheckStatus_TerminalIsIdempotent(t *testing.T) {
	f := newFixture(t)
	confirmation := submitPIX(t, f, "k1")

	f.backend.Statuses[confirmation.OrderID()] = domain.PaymentStatusApproved
	_, err := confirmation.CheckStatus(context.Background())
	require.NoError(t, err)

	checksBefore := f.backend.Calls("PaymentStatus")

	state, err := confirmation.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateApproved, state)
	assert.Equal(t, checksBefore, f.backend.Calls("PaymentStatus"), "terminal state stops polling")

	// The cleanup ran once; a second check publishes nothing new.
	assert.Len(t, f.bus.Subjects, 2)
}

func TestCheckStatus_PollFailureKeepsStatePending(t *testing.T) {
	f := newFixture(t)
	confirmation := submitPIX(t, f, "k1")

	f.backend.PaymentStatusFunc = func(ctx context.Context, orderID string) (string, error) {
		return "", domain.NetworkError(errors.New("connection reset"), "commerce.PaymentStatus", false)
	}

	state, err := confirmation.CheckStatus(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatePendingConfirmation, state)
}

func TestWatch_StopsAtTerminalState(t *testing.T) {
	f := newFixture(t)
	confirmation := submitPIX(t, f, "k1")

	// Approve on the third poll.
	polls := 0
	f.backend.PaymentStatusFunc = func(ctx context.Context, orderID string) (string, error) {
		polls++
		if polls >= 3 {
			return domain.PaymentStatusApproved, nil
		}
		return domain.PaymentStatusPending, nil
	}

	state, err := confirmation.Watch(context.Background(), time.Millisecond, 10)
	require.NoError(t, err)
	assert.Equal(t, StateApproved, state)
	assert.Equal(t, 3, polls)
}

func TestWatch_BoundedByMaxChecks(t *testing.T) {
	f := newFixture(t)
	confirmation := submitPIX(t, f, "k1")

	state, err := confirmation.Watch(context.Background(), time.Millisecond, 4)
	require.NoError(t, err)

	assert.Equal(t, StatePendingConfirmation, state, "watch gives up without forcing a terminal state")
	assert.Equal(t, 4, f.backend.Calls("PaymentStatus"))
}

func TestWatch_ContextCancellationStopsPolling(t *testing.T) {
	f := newFixture(t)
	confirmation := submitPIX(t, f, "k1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := confirmation.Watch(ctx, time.Millisecond, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatePendingConfirmation, state)
}

func TestResumeConfirmation_RecoversMethodFromOrder(t *testing.T) {
	f := newFixture(t)
	confirmation := submitPIX(t, f, "k1")
	orderID := confirmation.OrderID()

	// Simulate a restart: the registry is empty but the backend still
	// knows the order.
	f.flow.deregisterConfirmation(orderID)

	resumed, err := f.flow.ResumeConfirmation(context.Background(), "k1", orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID, resumed.OrderID())
	assert.Equal(t, StatePendingConfirmation, resumed.State())

	f.backend.Statuses[orderID] = domain.PaymentStatusApproved
	state, err := resumed.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateApproved, state)
}
