// Package checkout drives the checkout flow: a transient session snapshots
// the items being purchased, collects delivery, payment and address choices,
// and on confirmation turns into an order in the ledger. Sessions are never
// persisted; closing one discards it without side effects.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/orders"
	"storefront/internal/stores/kafka"
	"storefront/internal/stores/kv"
	"storefront/pkg/logkey"

	"github.com/google/uuid"
)

// Limits applied by the direct-buy quantity stepper.
const (
	minQuantity = 1
	maxQuantity = 99
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrEmptySelection  = errors.New("no items selected for checkout")
	ErrAddressRequired = errors.New("shipping address is required")
	ErrUnknownDelivery = errors.New("unknown delivery method")
	ErrUnknownPayment  = errors.New("unknown payment method")
)

type State string

const (
	StateReviewing  State = "reviewing"
	StateConfirming State = "confirming"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled"
)

// Session is one in-flight checkout. Items are a snapshot taken at start;
// later cart mutations do not leak into a running session.
type Session struct {
	ID              string         `json:"id"`
	Items           []cart.Item    `json:"items"`
	Delivery        DeliveryOption `json:"delivery"`
	PaymentMethod   string         `json:"payment_method"`
	ShippingAddress string         `json:"shipping_address"`
	Notes           string         `json:"notes"`
	DirectBuy       bool           `json:"direct_buy"`
	State           State          `json:"state"`
}

// Totals recomputes the session's money breakdown from its current items and
// delivery choice.
func (s *Session) Totals() Totals {
	return ComputeTotals(s.Items, s.Delivery.Price)
}

// Manager owns the live sessions and the confirmation side effects.
type Manager struct {
	catalog *catalog.Conf
	cart    *cart.Conf
	ledger  *orders.Conf
	store   kv.Store
	events  *kafka.Conf // nil when no broker is configured

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cat *catalog.Conf, cartConf *cart.Conf, ledger *orders.Conf, store kv.Store, events *kafka.Conf) *Manager {
	return &Manager{
		catalog:  cat,
		cart:     cartConf,
		ledger:   ledger,
		store:    store,
		events:   events,
		sessions: make(map[string]*Session),
	}
}

// StartFromCart opens a session over the cart's selected lines. Fails with
// ErrEmptySelection when nothing is selected.
func (m *Manager) StartFromCart(ctx context.Context) (Session, error) {
	items := m.cart.SelectedItems()
	if len(items) == 0 {
		return Session{}, ErrEmptySelection
	}
	return m.open(ctx, items, false), nil
}

// StartDirectBuy opens a single-item session bypassing the cart. The quantity
// is clamped to the stepper range.
func (m *Manager) StartDirectBuy(ctx context.Context, productID int, quantity int) (Session, error) {
	product, err := m.catalog.GetByID(productID)
	if err != nil {
		return Session{}, err
	}
	if quantity < minQuantity {
		quantity = minQuantity
	}
	if quantity > maxQuantity {
		quantity = maxQuantity
	}
	item := cart.Item{Product: product, Quantity: quantity, Selected: true}
	return m.open(ctx, []cart.Item{item}, true), nil
}

func (m *Manager) open(ctx context.Context, items []cart.Item, directBuy bool) Session {
	s := &Session{
		ID:            uuid.NewString(),
		Items:         items,
		Delivery:      deliveryOptions[0],
		PaymentMethod: PaymentTransfer,
		DirectBuy:     directBuy,
		State:         StateReviewing,
	}
	if addr, err := m.store.Get(ctx, kv.KeyUserAddress); err == nil {
		s.ShippingAddress = string(addr)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return snapshot(s)
}

func (m *Manager) Get(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return snapshot(s), nil
}

// SetDelivery switches the delivery tier while reviewing.
func (m *Manager) SetDelivery(id string, methodID string) (Session, error) {
	opt, ok := deliveryByID(methodID)
	if !ok {
		return Session{}, ErrUnknownDelivery
	}
	return m.update(id, func(s *Session) { s.Delivery = opt })
}

// SetPayment switches the payment method while reviewing.
func (m *Manager) SetPayment(id string, method string) (Session, error) {
	if !validPaymentMethod(method) {
		return Session{}, ErrUnknownPayment
	}
	return m.update(id, func(s *Session) { s.PaymentMethod = method })
}

func (m *Manager) SetAddress(id string, address string) (Session, error) {
	return m.update(id, func(s *Session) { s.ShippingAddress = address })
}

func (m *Manager) SetNotes(id string, notes string) (Session, error) {
	return m.update(id, func(s *Session) { s.Notes = notes })
}

// SetItemQuantity overwrites the quantity on a session item. Requests outside
// the stepper range, like a decrement below 1 or an increment past 99, are
// ignored and leave the session unchanged.
func (m *Manager) SetItemQuantity(id string, productID int, quantity int) (Session, error) {
	return m.update(id, func(s *Session) {
		if quantity < minQuantity || quantity > maxQuantity {
			return
		}
		for i := range s.Items {
			if s.Items[i].ID == productID {
				s.Items[i].Quantity = quantity
				return
			}
		}
	})
}

func (m *Manager) update(id string, mutate func(*Session)) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	mutate(s)
	return snapshot(s), nil
}

// Confirm validates the session and turns it into a recorded order. A blank
// address fails the transition and leaves the session reviewing. Cart-origin
// sessions remove their purchased items from the cart; direct-buy sessions
// never touch it.
func (m *Manager) Confirm(ctx context.Context, id string, address string, notes string) (orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return orders.Order{}, ErrSessionNotFound
	}
	if address != "" {
		s.ShippingAddress = address
	}
	if notes != "" {
		s.Notes = notes
	}

	s.State = StateConfirming
	if strings.TrimSpace(s.ShippingAddress) == "" {
		s.State = StateReviewing
		return orders.Order{}, ErrAddressRequired
	}

	totals := s.Totals()
	items := make([]orders.Item, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, orders.Item{
			ProductID: item.ID,
			Title:     item.Title,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	order, err := m.ledger.Record(ctx, orders.Order{
		Items:           items,
		Subtotal:        totals.Subtotal,
		DeliveryMethod:  s.Delivery.ID,
		DeliveryPrice:   s.Delivery.Price,
		PaymentMethod:   s.PaymentMethod,
		ShippingAddress: s.ShippingAddress,
		Notes:           s.Notes,
		Total:           totals.Total,
	})
	if err != nil {
		s.State = StateReviewing
		return orders.Order{}, fmt.Errorf("failed to record order: %w", err)
	}

	if !s.DirectBuy {
		ids := make([]int, 0, len(s.Items))
		for _, item := range s.Items {
			ids = append(ids, item.ID)
		}
		if err := m.cart.RemoveItems(ctx, ids); err != nil {
			// The order is already recorded; the stale cart lines will be
			// rewritten on the next cart mutation.
			slog.Error("failed to remove purchased items from cart",
				slog.String(logkey.ERROR, err.Error()), slog.String("order_id", order.ID))
		}
	}

	m.publishOrderCreated(order)

	s.State = StateCompleted
	delete(m.sessions, id)
	return order, nil
}

// Cancel discards the session with no side effects. Cancelling an unknown id
// is a no-op.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	s.State = StateCancelled
	delete(m.sessions, id)
	return true
}

// publishOrderCreated emits the order event when a broker is wired. Failures
// are logged, never surfaced; checkout does not depend on the broker.
func (m *Manager) publishOrderCreated(order orders.Order) {
	if m.events == nil {
		return
	}
	data, err := json.Marshal(kafka.OrderCreatedEvent{
		OrderID:       order.ID,
		ItemCount:     len(order.Items),
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
	})
	if err != nil {
		slog.Error("failed to marshal order event", slog.String(logkey.ERROR, err.Error()))
		return
	}
	if err := m.events.ProduceMessage(kafka.TopicOrderCreated, []byte(order.ID), data); err != nil {
		slog.Error("failed to produce order event",
			slog.String(logkey.ERROR, err.Error()), slog.String("order_id", order.ID))
	}
}

func snapshot(s *Session) Session {
	out := *s
	out.Items = make([]cart.Item, len(s.Items))
	copy(out.Items, s.Items)
	return out
}
