package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticalmarket/storefront/internal/domain"
)

func newTestStore(t *testing.T) (Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	return NewStore(repo, zerolog.Nop()), repo
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddItem_NewLine(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	outcome, cart, err := svc.AddItem(ctx, "k1", AddItemParams{
		ProductID: "p1",
		Name:      "Aviator Frames",
		Price:     price("199.90"),
		Stock:     10,
		Quantity:  2,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, cart.Total().Equal(price("399.80")))
}

func TestAddItem_DefaultQuantityIsOne(t *testing.T) {
	svc, _ := newTestStore(t)

	outcome, cart, err := svc.AddItem(context.Background(), "k1", AddItemParams{
		ProductID: "p1",
		Name:      "Aviator Frames",
		Price:     price("199.90"),
		Stock:     10,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestAddItem_MergesExistingLine(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	params := AddItemParams{ProductID: "p1", Name: "Aviator Frames", Price: price("100"), Stock: 10, Quantity: 2}
	_, _, err := svc.AddItem(ctx, "k1", params)
	require.NoError(t, err)

	outcome, cart, err := svc.AddItem(ctx, "k1", params)
	require.NoError(t, err)

	assert.Equal(t, OutcomeMerged, outcome)
	require.Len(t, cart.Items, 1, "same product must never produce a second line")
	assert.Equal(t, 4, cart.Items[0].Quantity)
}

func TestAddItem_MergeClampsAtStock(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 5, Quantity: 4})
	require.NoError(t, err)

	outcome, cart, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 5, Quantity: 4})
	require.NoError(t, err)

	assert.Equal(t, OutcomeClamped, outcome)
	assert.Equal(t, 5, cart.Items[0].Quantity, "quantity must cap at the stock ceiling")
}

func TestAddItem_NewLineClampsAtStock(t *testing.T) {
	svc, _ := newTestStore(t)

	outcome, cart, err := svc.AddItem(context.Background(), "k1", AddItemParams{
		ProductID: "p1",
		Price:     price("50"),
		Stock:     3,
		Quantity:  9,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeClamped, outcome)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestAddItem_ZeroStockNewLineIsRejected(t *testing.T) {
	svc, _ := newTestStore(t)

	outcome, cart, err := svc.AddItem(context.Background(), "k1", AddItemParams{
		ProductID: "p1",
		Price:     price("50"),
		Stock:     0,
		Quantity:  1,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome)
	assert.True(t, cart.IsEmpty())
}

func TestAddItem_MergeRefreshesStockSnapshot(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 10, Quantity: 8})
	require.NoError(t, err)

	// Stock dropped to 4 since the first add; the merge must respect the
	// fresh ceiling, not the stale one.
	outcome, cart, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 4, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, OutcomeClamped, outcome)
	assert.Equal(t, 4, cart.Items[0].Quantity)
	assert.Equal(t, 4, cart.Items[0].Stock)
}

func TestAddItem_MergeWithSoldOutProductRemovesLine(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 10, Quantity: 2})
	require.NoError(t, err)

	outcome, cart, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 0, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, OutcomeRemoved, outcome)
	assert.True(t, cart.IsEmpty())
}

func TestAddItem_InvalidParams(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{Price: price("10"), Stock: 5})
	assert.True(t, domain.IsCode(err, domain.EINVALID), "missing product id")

	_, _, err = svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("10"), Stock: 5, Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, _, err = svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("10"), Stock: -2})
	assert.ErrorIs(t, err, domain.ErrInvalidStock)

	_, _, err = svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("-10"), Stock: 5})
	assert.True(t, domain.IsCode(err, domain.EINVALID), "negative price")
}

func TestUpdateQuantity_WithinStock(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 5, Quantity: 1})
	require.NoError(t, err)

	outcome, cart, err := svc.UpdateQuantity(ctx, "k1", "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestUpdateQuantity_OverStockLeavesLineUnchanged(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 5, Quantity: 5})
	require.NoError(t, err)

	outcome, cart, err := svc.UpdateQuantity(ctx, "k1", "p1", 6)
	require.NoError(t, err, "over-stock update is silent, not an error")
	assert.Equal(t, OutcomeRejected, outcome)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	outcome, cart, err = svc.UpdateQuantity(ctx, "k1", "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestUpdateQuantity_BelowOneRemovesLine(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 5, Quantity: 2})
	require.NoError(t, err)

	outcome, cart, err := svc.UpdateQuantity(ctx, "k1", "p1", 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRemoved, outcome)
	assert.True(t, cart.IsEmpty())
}

func TestUpdateQuantity_UnknownLineIsNoop(t *testing.T) {
	svc, _ := newTestStore(t)

	outcome, cart, err := svc.UpdateQuantity(context.Background(), "k1", "ghost", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome)
	assert.True(t, cart.IsEmpty())
}

func TestRemoveItem(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 5, Quantity: 2})
	require.NoError(t, err)
	_, _, err = svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p2", Price: price("30"), Stock: 5, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "k1", "p1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p2", cart.Items[0].ProductID)

	// Removing an absent line is a no-op.
	cart, err = svc.RemoveItem(ctx, "k1", "p1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestClear(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 5, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "k1"))

	cart, err := svc.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.Total().IsZero())
	assert.Equal(t, 0, cart.ItemCount())
}

func TestTotalsRecomputedFromLines(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("19.90"), Stock: 10, Quantity: 3})
	require.NoError(t, err)
	_, _, err = svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p2", Price: price("5.25"), Stock: 10, Quantity: 2})
	require.NoError(t, err)

	cart, err := svc.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, cart.Total().Equal(price("70.20")), "got %s", cart.Total())
	assert.Equal(t, 5, cart.ItemCount())

	_, cart, err = svc.UpdateQuantity(ctx, "k1", "p1", 1)
	require.NoError(t, err)
	assert.True(t, cart.Total().Equal(price("30.40")), "got %s", cart.Total())
	assert.Equal(t, 3, cart.ItemCount())
}

func TestMutationsPersistBeforeReturning(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewStore(repo, zerolog.Nop())
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "k1", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 5, Quantity: 2})
	require.NoError(t, err)

	// A second service over the same repository sees the mutation: nothing
	// was held back in memory.
	other := NewStore(repo, zerolog.Nop())
	cart, err := other.Get(ctx, "k1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

// failingRepository fails every Save to exercise persistence error paths.
type failingRepository struct {
	*MemoryRepository
}

func (r *failingRepository) Save(ctx context.Context, key string, cart *domain.Cart) error {
	return errors.New("disk full")
}

func TestAddItem_SaveFailureSurfaces(t *testing.T) {
	repo := &failingRepository{NewMemoryRepository()}
	svc := NewStore(repo, zerolog.Nop())

	outcome, cart, err := svc.AddItem(context.Background(), "k1", AddItemParams{
		ProductID: "p1",
		Price:     price("50"),
		Stock:     5,
		Quantity:  1,
	})

	require.Error(t, err)
	assert.Equal(t, OutcomeRejected, outcome)
	assert.Nil(t, cart)

	// The failed mutation left no trace in storage.
	_, loadErr := repo.MemoryRepository.Load(context.Background(), "k1")
	assert.ErrorIs(t, loadErr, domain.ErrCartNotFound)
}

func TestCartsAreIsolatedByKey(t *testing.T) {
	svc, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "alice", AddItemParams{ProductID: "p1", Price: price("50"), Stock: 5, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.Get(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}
