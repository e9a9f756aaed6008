package orders

import (
	"github.com/example/possales/pkg/models"
	"github.com/shopspring/decimal"
)

// gstRate is the fixed goods-and-services tax applied to every order.
var gstRate = decimal.RequireFromString("0.18")

type CartItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Price turns cart entries into line items using catalog. Entries whose
// product is missing or whose quantity is not positive are skipped.
func Price(cart []CartItem, catalog map[uint]models.Product) ([]models.OrderItem, decimal.Decimal) {
	total := decimal.Zero
	lines := make([]models.OrderItem, 0, len(cart))

	for _, entry := range cart {
		if entry.Quantity <= 0 {
			continue
		}
		product, ok := catalog[entry.ProductID]
		if !ok {
			continue
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(entry.Quantity)))
		lines = append(lines, models.OrderItem{
			ProductID: product.ID,
			Quantity:  entry.Quantity,
			ItemPrice: subtotal,
		})
		total = total.Add(subtotal)
	}

	return lines, total
}

// Totals returns the tax, rounded to cents, and the final amount for a
// pre-tax total.
func Totals(total decimal.Decimal) (gst, final decimal.Decimal) {
	gst = total.Mul(gstRate).Round(2)
	return gst, total.Add(gst)
}

func productIDs(cart []CartItem) []uint {
	seen := make(map[uint]struct{}, len(cart))
	ids := make([]uint, 0, len(cart))
	for _, entry := range cart {
		if entry.Quantity <= 0 {
			continue
		}
		if _, ok := seen[entry.ProductID]; ok {
			continue
		}
		seen[entry.ProductID] = struct{}{}
		ids = append(ids, entry.ProductID)
	}
	return ids
}
