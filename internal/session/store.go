// Package session holds the ephemeral checkout state that bridges the
// address, payment and confirmation steps of one purchase attempt. The store
// is deliberately in-process and TTL-bound: like the browser sessionStorage it
// replaces, it must not survive a restart, and an entry is deleted on
// successful payment submission so stale address/shipping picks can never be
// replayed against a new cart.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/opticalmarket/storefront/internal/domain"
)

// DefaultTTL bounds how long an abandoned checkout keeps its state.
const DefaultTTL = 2 * time.Hour

type entry struct {
	session   domain.CheckoutSession
	expiresAt time.Time
}

// Store is a TTL'd per-shopper checkout session store.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewStore creates a checkout session store. A non-positive ttl falls back to
// DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:     ttl,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Run sweeps expired entries until the context is cancelled. The store also
// expires lazily on access, so running the sweeper is optional hygiene.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Store) sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// get returns the live entry for key, treating an expired one as absent.
// Callers must hold s.mu.
func (s *Store) get(key string) (*entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return e, true
}

// touch returns the entry for key, creating it when absent, and refreshes the
// TTL. Callers must hold s.mu.
func (s *Store) touch(key string) *entry {
	e, ok := s.get(key)
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.expiresAt = s.now().Add(s.ttl)
	return e
}

// SetAddress records the selected delivery address for the checkout.
func (s *Store) SetAddress(key, addressID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(key).session.AddressID = addressID
}

// Address returns the selected address id, or false when none is set.
// The payment step treats a missing address as a guarded error and redirects
// back to the address step.
func (s *Store) Address(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.get(key)
	if !ok || e.session.AddressID == "" {
		return "", false
	}
	return e.session.AddressID, true
}

// SetShipping records the selected shipping option.
func (s *Store) SetShipping(key string, option domain.ShippingOption) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opt := option
	s.touch(key).session.Shipping = &opt
}

// Shipping returns the selected shipping option, or false when none is set.
func (s *Store) Shipping(key string) (*domain.ShippingOption, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.get(key)
	if !ok || e.session.Shipping == nil {
		return nil, false
	}
	opt := *e.session.Shipping
	return &opt, true
}

// SetPendingOrder parks an order id whose payment is failed or pending, so an
// unpaid order always stays referenceable for retry or support.
func (s *Store) SetPendingOrder(key, orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(key).session.PendingOrderID = orderID
}

// PendingOrder returns the parked order id, or false when none is set.
func (s *Store) PendingOrder(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.get(key)
	if !ok || e.session.PendingOrderID == "" {
		return "", false
	}
	return e.session.PendingOrderID, true
}

// Snapshot returns a copy of the full checkout session for key.
func (s *Store) Snapshot(key string) (domain.CheckoutSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.get(key)
	if !ok {
		return domain.CheckoutSession{}, false
	}

	sess := e.session
	if e.session.Shipping != nil {
		opt := *e.session.Shipping
		sess.Shipping = &opt
	}
	return sess, true
}

// Clear deletes the checkout session. Called on successful payment submission
// and on explicit cancellation; the state is not recoverable afterwards.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}
