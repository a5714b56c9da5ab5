package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opticalmarket/storefront/internal/domain"
)

// PostgresRepository stores cart state as a JSONB document per cart key.
// Durable across restarts, matching the cart's persisted-storage lifecycle.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Repository backed by the given pool.
// The carts table is created by the goose migrations.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Load(ctx context.Context, key string) (*domain.Cart, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT data FROM carts WHERE key = $1`, key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart state: %w", err)
	}

	return &cart, nil
}

func (r *PostgresRepository) Save(ctx context.Context, key string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart state: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO carts (key, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
