// Package cart owns the shopper's cart: line items, quantities and derived
// totals. Mutation semantics follow the storefront contract: adds merge into
// existing lines capped at the stock ceiling, over-stock updates are rejected
// without error, and every mutation is durably persisted before it returns.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/opticalmarket/storefront/internal/domain"
)

// Outcome tells the caller what a cart mutation actually did. The mutation
// itself never fails on a stock ceiling (clamping is silent, per the cart's
// contract), but callers may surface the outcome as a notice.
type Outcome string

const (
	// OutcomeAdded means a new line was inserted at the requested quantity.
	OutcomeAdded Outcome = "added"

	// OutcomeMerged means the quantity was folded into an existing line.
	OutcomeMerged Outcome = "merged"

	// OutcomeClamped means the resulting quantity was capped at the stock
	// ceiling; the requested quantity was not fully honored.
	OutcomeClamped Outcome = "clamped"

	// OutcomeUpdated means the line's quantity was set as requested.
	OutcomeUpdated Outcome = "updated"

	// OutcomeRemoved means the line was removed.
	OutcomeRemoved Outcome = "removed"

	// OutcomeRejected means the request was ignored and the line left
	// unchanged (over-stock update, unknown line, or zero-stock add).
	OutcomeRejected Outcome = "rejected"
)

// AddItemParams carries the product snapshot taken at add time. Price and
// stock are not re-validated against the backend afterwards; staleness is
// resolved at order creation by the backend.
type AddItemParams struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Image     string
	Stock     int

	// Quantity defaults to 1 when zero.
	Quantity int
}

// Service provides cart operations for a shopper identified by cart key.
type Service interface {
	// Get returns the current cart. A missing cart is an empty cart.
	Get(ctx context.Context, key string) (*domain.Cart, error)

	// AddItem inserts a line or merges into an existing one, clamping the
	// resulting quantity at the line's stock ceiling.
	AddItem(ctx context.Context, key string, params AddItemParams) (Outcome, *domain.Cart, error)

	// UpdateQuantity sets a line's quantity. A quantity below 1 removes the
	// line; a quantity above the stock ceiling is rejected, leaving the line
	// unchanged.
	UpdateQuantity(ctx context.Context, key string, productID string, quantity int) (Outcome, *domain.Cart, error)

	// RemoveItem removes a line. Removing an absent line is a no-op.
	RemoveItem(ctx context.Context, key string, productID string) (*domain.Cart, error)

	// Clear empties the cart unconditionally.
	Clear(ctx context.Context, key string) error
}

type store struct {
	repo   Repository
	logger zerolog.Logger

	// locks serializes mutations per cart key so interleaved adds cannot
	// both pass the stock-ceiling check.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a cart Service on top of the given repository.
func NewStore(repo Repository, logger zerolog.Logger) Service {
	return &store{
		repo:   repo,
		logger: logger.With().Str("component", "cart").Logger(),
		locks:  make(map[string]*sync.Mutex),
	}
}

// lock acquires the per-key mutex, creating it on first use.
func (s *store) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// load returns the cart for key, treating a missing cart as empty.
func (s *store) load(ctx context.Context, key string) (*domain.Cart, error) {
	cart, err := s.repo.Load(ctx, key)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return &domain.Cart{}, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

func (s *store) Get(ctx context.Context, key string) (*domain.Cart, error) {
	unlock := s.lock(key)
	defer unlock()

	return s.load(ctx, key)
}

func (s *store) AddItem(ctx context.Context, key string, params AddItemParams) (Outcome, *domain.Cart, error) {
	if params.ProductID == "" {
		return OutcomeRejected, nil, domain.Invalid("cart.add", "product id is required")
	}
	if params.Quantity == 0 {
		params.Quantity = 1
	}
	if params.Quantity < 0 {
		return OutcomeRejected, nil, domain.ErrInvalidQuantity
	}
	if params.Stock < 0 {
		return OutcomeRejected, nil, domain.ErrInvalidStock
	}
	if params.Price.IsNegative() {
		return OutcomeRejected, nil, domain.Invalid("cart.add", "price must not be negative")
	}

	unlock := s.lock(key)
	defer unlock()

	cart, err := s.load(ctx, key)
	if err != nil {
		return OutcomeRejected, nil, err
	}

	outcome := OutcomeRejected

	if idx := cart.Find(params.ProductID); idx >= 0 {
		line := &cart.Items[idx]
		// Fresh stock snapshot becomes the new ceiling; price keeps the
		// add-time snapshot.
		line.Stock = params.Stock

		want := line.Quantity + params.Quantity
		switch {
		case line.Stock < 1:
			// Product went out of stock between adds; drop the line rather
			// than keep a quantity above the ceiling.
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
			outcome = OutcomeRemoved
		case want > line.Stock:
			line.Quantity = line.Stock
			outcome = OutcomeClamped
		default:
			line.Quantity = want
			outcome = OutcomeMerged
		}
	} else {
		if params.Stock < 1 {
			// Nothing purchasable; leave the cart untouched.
			return OutcomeRejected, cart, nil
		}

		quantity := params.Quantity
		outcome = OutcomeAdded
		if quantity > params.Stock {
			quantity = params.Stock
			outcome = OutcomeClamped
		}

		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: params.ProductID,
			Name:      params.Name,
			Price:     params.Price,
			Quantity:  quantity,
			Image:     params.Image,
			Stock:     params.Stock,
		})
	}

	if err := s.repo.Save(ctx, key, cart); err != nil {
		return OutcomeRejected, nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	s.logger.Debug().
		Str("cart_key", key).
		Str("product_id", params.ProductID).
		Str("outcome", string(outcome)).
		Int("item_count", cart.ItemCount()).
		Msg("cart item added")

	return outcome, cart, nil
}

func (s *store) UpdateQuantity(ctx context.Context, key string, productID string, quantity int) (Outcome, *domain.Cart, error) {
	unlock := s.lock(key)
	defer unlock()

	cart, err := s.load(ctx, key)
	if err != nil {
		return OutcomeRejected, nil, err
	}

	idx := cart.Find(productID)
	if idx < 0 {
		// Unknown line: nothing to update, nothing to report.
		return OutcomeRejected, cart, nil
	}

	outcome := OutcomeRejected

	switch {
	case quantity < 1:
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		outcome = OutcomeRemoved
	case quantity <= cart.Items[idx].Stock:
		cart.Items[idx].Quantity = quantity
		outcome = OutcomeUpdated
	default:
		// Over the stock ceiling: silently leave the line unchanged.
		return OutcomeRejected, cart, nil
	}

	if err := s.repo.Save(ctx, key, cart); err != nil {
		return OutcomeRejected, nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	return outcome, cart, nil
}

func (s *store) RemoveItem(ctx context.Context, key string, productID string) (*domain.Cart, error) {
	unlock := s.lock(key)
	defer unlock()

	cart, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	idx := cart.Find(productID)
	if idx < 0 {
		return cart, nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.repo.Save(ctx, key, cart); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	return cart, nil
}

func (s *store) Clear(ctx context.Context, key string) error {
	unlock := s.lock(key)
	defer unlock()

	if err := s.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Debug().Str("cart_key", key).Msg("cart cleared")
	return nil
}
