package session

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticalmarket/storefront/internal/domain"
)

func TestAddressRoundTrip(t *testing.T) {
	s := NewStore(time.Hour)

	_, ok := s.Address("k1")
	assert.False(t, ok, "fresh store has no address")

	s.SetAddress("k1", "addr-1")

	got, ok := s.Address("k1")
	require.True(t, ok)
	assert.Equal(t, "addr-1", got)

	// Re-selecting replaces.
	s.SetAddress("k1", "addr-2")
	got, _ = s.Address("k1")
	assert.Equal(t, "addr-2", got)
}

func TestShippingIsCopied(t *testing.T) {
	s := NewStore(time.Hour)

	option := domain.ShippingOption{Name: "Express", Price: decimal.RequireFromString("14.95"), DeliveryDays: 2}
	s.SetShipping("k1", option)

	got, ok := s.Shipping("k1")
	require.True(t, ok)
	assert.Equal(t, "Express", got.Name)

	// Mutating the returned option must not leak into the store.
	got.Name = "Tampered"
	again, _ := s.Shipping("k1")
	assert.Equal(t, "Express", again.Name)
}

func TestPendingOrder(t *testing.T) {
	s := NewStore(time.Hour)

	_, ok := s.PendingOrder("k1")
	assert.False(t, ok)

	s.SetPendingOrder("k1", "order-9")
	got, ok := s.PendingOrder("k1")
	require.True(t, ok)
	assert.Equal(t, "order-9", got)
}

func TestSnapshot(t *testing.T) {
	s := NewStore(time.Hour)

	_, ok := s.Snapshot("k1")
	assert.False(t, ok)

	s.SetAddress("k1", "addr-1")
	s.SetShipping("k1", domain.ShippingOption{Name: "Standard"})
	s.SetPendingOrder("k1", "order-1")

	snap, ok := s.Snapshot("k1")
	require.True(t, ok)
	assert.Equal(t, "addr-1", snap.AddressID)
	assert.Equal(t, "Standard", snap.Shipping.Name)
	assert.Equal(t, "order-1", snap.PendingOrderID)
}

func TestClearIsNotRecoverable(t *testing.T) {
	s := NewStore(time.Hour)

	s.SetAddress("k1", "addr-1")
	s.SetShipping("k1", domain.ShippingOption{Name: "Standard"})

	s.Clear("k1")

	_, ok := s.Address("k1")
	assert.False(t, ok)
	_, ok = s.Shipping("k1")
	assert.False(t, ok)
	_, ok = s.Snapshot("k1")
	assert.False(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	s := NewStore(time.Hour)

	current := time.Now()
	s.now = func() time.Time { return current }

	s.SetAddress("k1", "addr-1")

	current = current.Add(2 * time.Hour)

	_, ok := s.Address("k1")
	assert.False(t, ok, "entry past its TTL is gone")
}

func TestAccessRefreshesTTL(t *testing.T) {
	s := NewStore(time.Hour)

	current := time.Now()
	s.now = func() time.Time { return current }

	s.SetAddress("k1", "addr-1")

	// Write again inside the window; the TTL restarts.
	current = current.Add(45 * time.Minute)
	s.SetPendingOrder("k1", "order-1")

	current = current.Add(45 * time.Minute)
	_, ok := s.Address("k1")
	assert.True(t, ok, "entry refreshed 45 minutes ago is still live")
}

func TestSweepRemovesExpired(t *testing.T) {
	s := NewStore(time.Hour)

	current := time.Now()
	s.now = func() time.Time { return current }

	s.SetAddress("k1", "addr-1")
	s.SetAddress("k2", "addr-2")

	current = current.Add(2 * time.Hour)
	s.sweep()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.entries)
}

func TestKeysAreIsolated(t *testing.T) {
	s := NewStore(time.Hour)

	s.SetAddress("alice", "addr-1")

	_, ok := s.Address("bob")
	assert.False(t, ok)
}

func TestGenerateKey(t *testing.T) {
	k1, err := GenerateKey()
	require.NoError(t, err)
	k2, err := GenerateKey()
	require.NoError(t, err)

	assert.NotEmpty(t, k1)
	assert.NotEqual(t, k1, k2)
}
