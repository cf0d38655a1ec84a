package cart

import "storefront/internal/catalog"

// Item is one cart line: a product snapshot plus the quantity and the
// selection flag driving the next checkout. The cart never holds two lines
// for the same product id.
type Item struct {
	catalog.Product
	Quantity int  `json:"quantity"`
	Selected bool `json:"selected"`
}
