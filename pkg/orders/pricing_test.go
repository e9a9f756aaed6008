package orders

import (
	"math/rand"
	"testing"

	"github.com/example/possales/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() map[uint]models.Product {
	return map[uint]models.Product{
		1: {ID: 1, Name: "Ice Cream", Size: "Small", Price: decimal.RequireFromString("4.00")},
		2: {ID: 2, Name: "Smoothie", Size: "Large", Price: decimal.RequireFromString("11.00")},
		3: {ID: 3, Name: "Water Bottle", Size: "Standard", Price: decimal.RequireFromString("3.00")},
	}
}

func TestPriceAndTotals(t *testing.T) {
	lines, total := Price([]CartItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, testCatalog())
	require.Len(t, lines, 2)
	assert.Equal(t, "8.00", lines[0].ItemPrice.StringFixed(2))
	assert.Equal(t, "11.00", lines[1].ItemPrice.StringFixed(2))

	gst, final := Totals(total)
	assert.Equal(t, "19.00", total.StringFixed(2))
	assert.Equal(t, "3.42", gst.StringFixed(2))
	assert.Equal(t, "22.42", final.StringFixed(2))
}

func TestPriceSkipsInvalidEntries(t *testing.T) {
	tests := []struct {
		name  string
		cart  []CartItem
		lines int
		total string
	}{
		{"unknown product", []CartItem{{ProductID: 999, Quantity: 5}}, 0, "0.00"},
		{"zero quantity", []CartItem{{ProductID: 1, Quantity: 0}}, 0, "0.00"},
		{"negative quantity", []CartItem{{ProductID: 2, Quantity: -3}}, 0, "0.00"},
		{"mixed", []CartItem{{ProductID: 1, Quantity: 1}, {ProductID: 999, Quantity: 1}, {ProductID: 3, Quantity: -1}}, 1, "4.00"},
		{"repeated product", []CartItem{{ProductID: 3, Quantity: 1}, {ProductID: 3, Quantity: 2}}, 2, "9.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, total := Price(tt.cart, testCatalog())
			assert.Len(t, lines, tt.lines)
			assert.Equal(t, tt.total, total.StringFixed(2))
		})
	}
}

func TestTotalsMatchesRoundedRate(t *testing.T) {
	catalog := testCatalog()
	rng := rand.New(rand.NewSource(7))
	factor := decimal.RequireFromString("1.18")

	for i := 0; i < 200; i++ {
		cart := make([]CartItem, 1+rng.Intn(6))
		want := decimal.Zero
		for j := range cart {
			cart[j] = CartItem{ProductID: uint(rng.Intn(5)), Quantity: rng.Intn(12) - 2}
			if p, ok := catalog[cart[j].ProductID]; ok && cart[j].Quantity > 0 {
				want = want.Add(p.Price.Mul(decimal.NewFromInt(int64(cart[j].Quantity))))
			}
		}

		_, total := Price(cart, catalog)
		require.True(t, total.Equal(want), "cart %v: total %s, want %s", cart, total, want)

		gst, final := Totals(total)
		assert.True(t, final.Equal(total.Add(gst)))
		assert.True(t, final.Equal(total.Mul(factor).Round(2)), "total %s final %s", total, final)
	}
}

func TestProductIDsDeduplicates(t *testing.T) {
	ids := productIDs([]CartItem{{ProductID: 2, Quantity: 1}, {ProductID: 2, Quantity: 4}, {ProductID: 5, Quantity: 0}, {ProductID: 1, Quantity: 1}})
	assert.Equal(t, []uint{2, 1}, ids)
}
