// Package orders is the append-only ledger of completed checkouts.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"storefront/internal/stores/kv"
	"storefront/pkg/logkey"
)

type Conf struct {
	store kv.Store
	now   func() time.Time

	mu     sync.Mutex
	orders []Order
}

// NewConf loads the persisted ledger. An absent or malformed value starts an
// empty ledger rather than failing.
func NewConf(ctx context.Context, store kv.Store) (*Conf, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store is nil")
	}
	c := &Conf{store: store, now: time.Now}

	data, err := store.Get(ctx, kv.KeyOrders)
	if err != nil {
		if !errors.Is(err, kv.ErrNoKey) {
			return nil, fmt.Errorf("failed to load orders: %w", err)
		}
		return c, nil
	}
	if err := json.Unmarshal(data, &c.orders); err != nil {
		slog.Warn("discarding malformed persisted orders", slog.String(logkey.ERROR, err.Error()))
		c.orders = nil
	}
	return c, nil
}

// Record assigns the order its id, timestamp and pending status, appends it
// and persists the full ledger. There is no update or delete.
func (c *Conf) Record(ctx context.Context, order Order) (Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	order.ID = c.nextID()
	order.CreatedAt = c.now().UTC()
	order.Status = StatusPending
	c.orders = append(c.orders, order)

	data, err := json.Marshal(c.orders)
	if err != nil {
		c.orders = c.orders[:len(c.orders)-1]
		return Order{}, fmt.Errorf("failed to marshal orders: %w", err)
	}
	if err := c.store.Set(ctx, kv.KeyOrders, data); err != nil {
		c.orders = c.orders[:len(c.orders)-1]
		return Order{}, fmt.Errorf("failed to persist orders: %w", err)
	}
	return order, nil
}

// List returns the recorded orders, oldest first.
func (c *Conf) List() []Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Order, len(c.orders))
	copy(out, c.orders)
	return out
}

// nextID derives the id from the millisecond clock ("ORD-" plus its last six
// digits) and walks forward until it is unique within the ledger. Callers
// hold the mutex.
func (c *Conf) nextID() string {
	n := c.now().UnixMilli()
	for {
		ms := strconv.FormatInt(n, 10)
		id := "ORD-" + ms[len(ms)-6:]
		if !c.idExists(id) {
			return id
		}
		n++
	}
}

func (c *Conf) idExists(id string) bool {
	for _, o := range c.orders {
		if o.ID == id {
			return true
		}
	}
	return false
}
