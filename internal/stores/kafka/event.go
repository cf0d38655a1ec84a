package kafka

import "time"

const TopicOrderCreated = `storefront.order-created`

// OrderCreatedEvent is emitted once per confirmed checkout.
type OrderCreatedEvent struct {
	OrderID       string    `json:"order_id"`
	ItemCount     int       `json:"item_count"`
	Total         int64     `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}
