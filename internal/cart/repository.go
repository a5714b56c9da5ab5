package cart

import (
	"context"

	"github.com/opticalmarket/storefront/internal/domain"
)

// Repository persists cart state keyed by cart key (one key per shopper
// session). Implementations must be safe for concurrent use; the Store
// serializes mutations per key on top of this.
//
// Load returns domain.ErrCartNotFound when no cart exists for the key.
type Repository interface {
	Load(ctx context.Context, key string) (*domain.Cart, error)
	Save(ctx context.Context, key string, cart *domain.Cart) error
	Delete(ctx context.Context, key string) error
}
