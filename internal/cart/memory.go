package cart

import (
	"context"
	"sync"

	"github.com/opticalmarket/storefront/internal/domain"
)

// MemoryRepository is an in-process Repository for development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

// NewMemoryRepository creates an empty in-memory cart repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts: make(map[string]*domain.Cart),
	}
}

func (r *MemoryRepository) Load(ctx context.Context, key string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[key]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (r *MemoryRepository) Save(ctx context.Context, key string, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[key] = cart.Clone()
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, key)
	return nil
}
