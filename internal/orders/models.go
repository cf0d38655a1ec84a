package orders

import "time"

// OrderStatus values. Orders are recorded pending and never transitioned;
// fulfilment lifecycle is a later concern.
const StatusPending = "pending"

// Item is a purchased line frozen at confirmation time: unit price and
// quantity as they were when the order was placed.
type Item struct {
	ProductID int    `json:"product_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Order is one completed checkout. Immutable once recorded. Amounts are in
// the smallest currency unit.
type Order struct {
	ID              string    `json:"id"`
	Items           []Item    `json:"items"`
	Subtotal        int64     `json:"subtotal"`
	DeliveryMethod  string    `json:"delivery_method"`
	DeliveryPrice   int64     `json:"delivery_price"`
	PaymentMethod   string    `json:"payment_method"`
	ShippingAddress string    `json:"shipping_address"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	Total           int64     `json:"total"`
	Status          string    `json:"status"`
}
