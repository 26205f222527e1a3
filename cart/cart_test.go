package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"agrotech/models"
	"agrotech/orders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeItemAddsUpQuantities(t *testing.T) {
	now := time.Now()

	items := mergeItem(nil, "pA", 2, now)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	items = mergeItem(items, "pA", 3, now)
	require.Len(t, items, 1, "same product must stay a single line")
	assert.Equal(t, 5, items[0].Quantity)
}

func TestMergeItemAppendsNewProducts(t *testing.T) {
	now := time.Now()

	items := mergeItem(nil, "pA", 1, now)
	items = mergeItem(items, "pB", 4, now)

	require.Len(t, items, 2)
	assert.Equal(t, "pA", items[0].ProductID)
	assert.Equal(t, "pB", items[1].ProductID)
	assert.Equal(t, 4, items[1].Quantity)
	assert.NotEqual(t, items[0].ItemID, items[1].ItemID)
}

// fakePlacer fulfils every line at 100 per unit except the products it is
// told are out of stock.
func fakePlacer(outOfStock ...string) placeFunc {
	return func(_ context.Context, buyerID, productID string, quantity int, status string, shipping models.ShippingDetails) (*models.Order, error) {
		for _, p := range outOfStock {
			if p == productID {
				return nil, orders.ErrInsufficientStock
			}
		}
		return &models.Order{
			OrderID:    "o_" + productID,
			ProductID:  productID,
			BuyerID:    buyerID,
			Quantity:   quantity,
			TotalPrice: 100 * float64(quantity),
			Status:     status,
			Shipping:   shipping,
		}, nil
	}
}

func TestCheckoutItemsSkipsOutOfStockLines(t *testing.T) {
	now := time.Now()
	items := []models.CartItem{
		{ItemID: "ci1", ProductID: "pA", Quantity: 2, AddedAt: now},
		{ItemID: "ci2", ProductID: "pGone", Quantity: 1, AddedAt: now},
		{ItemID: "ci3", ProductID: "pB", Quantity: 3, AddedAt: now},
	}

	created, skipped, total := checkoutItems(context.Background(),
		fakePlacer("pGone"), "u_1", items, models.OrderPending, models.ShippingDetails{})

	// the failing line must not stop the ones after it
	require.Len(t, created, 2)
	assert.Equal(t, "pA", created[0].ProductID)
	assert.Equal(t, "pB", created[1].ProductID)

	require.Len(t, skipped, 1)
	assert.Equal(t, "ci2", skipped[0].ItemID)
	assert.Equal(t, "pGone", skipped[0].ProductID)
	assert.Equal(t, orders.ErrInsufficientStock.Error(), skipped[0].Reason)

	// total covers created orders only
	assert.Equal(t, 500.0, total)
}

func TestCheckoutItemsAllLinesFail(t *testing.T) {
	items := []models.CartItem{
		{ItemID: "ci1", ProductID: "pA", Quantity: 1},
		{ItemID: "ci2", ProductID: "pB", Quantity: 1},
	}

	place := func(_ context.Context, _, _ string, _ int, _ string, _ models.ShippingDetails) (*models.Order, error) {
		return nil, errors.New("product not found")
	}

	created, skipped, total := checkoutItems(context.Background(),
		place, "u_1", items, models.OrderPending, models.ShippingDetails{})

	assert.Empty(t, created)
	assert.Len(t, skipped, 2)
	assert.Zero(t, total)
}

func TestMergeItemKeepsExistingLines(t *testing.T) {
	now := time.Now()
	existing := []models.CartItem{
		{ItemID: "ci1", ProductID: "pA", Quantity: 1, AddedAt: now},
		{ItemID: "ci2", ProductID: "pB", Quantity: 2, AddedAt: now},
	}

	items := mergeItem(existing, "pB", 2, now)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 4, items[1].Quantity)
	assert.Equal(t, "ci2", items[1].ItemID)
}
