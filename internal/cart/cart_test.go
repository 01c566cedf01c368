package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	coffee = Product{ID: "p-coffee", Name: "Coffee", Price: 15000, Stock: 10}
	cake   = Product{ID: "p-cake", Name: "Cake", Price: 25000, Stock: 5}
	large  = Variant{ID: "v-large", Name: "Large", AdditionalPrice: 5000}
)

func TestAddIncrementsMatchingLine(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(coffee, nil))
	require.NoError(t, c.Add(coffee, nil))

	require.Equal(t, 1, c.Len())
	require.Equal(t, 2, c.Items()[0].Quantity)
}

func TestAddVariantIsSeparateLine(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cake, nil))
	require.NoError(t, c.Add(cake, &large))

	require.Equal(t, 2, c.Len())
	for _, l := range c.Items() {
		require.Equal(t, 1, l.Quantity)
	}
}

func TestAddOutOfStockLeavesCartUnchanged(t *testing.T) {
	c := New()
	empty := Product{ID: "p-empty", Name: "Sold Out", Price: 10000, Stock: 0}

	err := c.Add(empty, nil)

	require.ErrorIs(t, err, ErrStockEmpty)
	require.Equal(t, 0, c.Len())
}

func TestAddPastStockRejected(t *testing.T) {
	c := New()
	scarce := Product{ID: "p-scarce", Name: "Last One", Price: 10000, Stock: 1}
	require.NoError(t, c.Add(scarce, nil))

	err := c.Add(scarce, nil)

	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 1, c.Items()[0].Quantity)
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(coffee, nil))

	require.NoError(t, c.UpdateQuantity(coffee.ID, "", -5))

	require.Equal(t, 1, c.Items()[0].Quantity)
}

func TestUpdateQuantityPastStockRejected(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cake, nil))

	err := c.UpdateQuantity(cake.ID, "", cake.Stock)

	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 1, c.Items()[0].Quantity)
}

func TestUpdateQuantityUnknownLine(t *testing.T) {
	c := New()
	require.ErrorIs(t, c.UpdateQuantity("nope", "", 1), ErrLineNotFound)
}

func TestRemove(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(coffee, nil))
	require.NoError(t, c.Add(cake, &large))

	c.Remove(coffee.ID, "")

	require.Equal(t, 1, c.Len())
	require.Equal(t, cake.ID, c.Items()[0].ProductID)

	// removing an absent line is a no-op
	c.Remove(coffee.ID, "")
	require.Equal(t, 1, c.Len())
}

func TestTotal(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(coffee, nil))
	require.NoError(t, c.UpdateQuantity(coffee.ID, "", 1)) // qty 2
	require.NoError(t, c.Add(cake, &large))

	// 15000*2 + (25000+5000)*1
	require.Equal(t, int64(60000), c.Total())
	require.Equal(t, int64(60000), c.Total(), "recomputation without mutation must be identical")
}

func TestNeverDuplicateKeyOrNonPositiveQuantity(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(coffee, nil))
	require.NoError(t, c.Add(coffee, nil))
	require.NoError(t, c.Add(cake, &large))
	_ = c.UpdateQuantity(coffee.ID, "", -10)
	_ = c.UpdateQuantity(cake.ID, large.ID, 100)
	c.Remove(cake.ID, "")

	seen := map[[2]string]bool{}
	for _, l := range c.Items() {
		require.Greater(t, l.Quantity, 0)
		key := [2]string{l.ProductID, l.VariantID}
		require.False(t, seen[key], "duplicate (product, variant) line")
		seen[key] = true
	}
}

func TestClear(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(coffee, nil))
	c.Clear()
	require.Equal(t, 0, c.Len())
	require.Equal(t, int64(0), c.Total())
}
