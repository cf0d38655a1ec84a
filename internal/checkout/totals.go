package checkout

import "storefront/internal/cart"

// Totals is the money breakdown of a checkout. Always derived in full from
// the item list, never cached and never read back from rendered output.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Delivery int64 `json:"delivery"`
	Total    int64 `json:"total"`
}

// ComputeTotals sums price times quantity over the given items and adds the
// delivery price.
func ComputeTotals(items []cart.Item, deliveryPrice int64) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Price * int64(item.Quantity)
	}
	return Totals{
		Subtotal: subtotal,
		Delivery: deliveryPrice,
		Total:    subtotal + deliveryPrice,
	}
}
