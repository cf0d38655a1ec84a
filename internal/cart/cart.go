// Package cart is the shopping cart store. The full line-item sequence is
// loaded from durable storage once at construction and written back whole
// after every mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"storefront/internal/catalog"
	"storefront/internal/stores/kv"
	"storefront/pkg/logkey"
)

type Conf struct {
	store   kv.Store
	catalog *catalog.Conf

	mu    sync.Mutex
	items []Item
}

// NewConf loads the persisted cart. An absent or malformed value starts an
// empty cart rather than failing.
func NewConf(ctx context.Context, store kv.Store, cat *catalog.Conf) (*Conf, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store is nil")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	c := &Conf{store: store, catalog: cat}

	data, err := store.Get(ctx, kv.KeyCart)
	if err != nil {
		if !errors.Is(err, kv.ErrNoKey) {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		return c, nil
	}
	if err := json.Unmarshal(data, &c.items); err != nil {
		slog.Warn("discarding malformed persisted cart", slog.String(logkey.ERROR, err.Error()))
		c.items = nil
	}
	return c, nil
}

// AddItem puts quantity units of the product into the cart, merging into an
// existing line when one is present. New lines start selected.
func (c *Conf) AddItem(ctx context.Context, productID int, quantity int) (Item, error) {
	if quantity < 1 {
		quantity = 1
	}
	product, err := c.catalog.GetByID(productID)
	if err != nil {
		return Item{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var added *Item
	for i := range c.items {
		if c.items[i].ID == productID {
			c.items[i].Quantity += quantity
			added = &c.items[i]
			break
		}
	}
	if added == nil {
		c.items = append(c.items, Item{Product: product, Quantity: quantity, Selected: true})
		added = &c.items[len(c.items)-1]
	}

	if err := c.persist(ctx); err != nil {
		return Item{}, err
	}
	return *added, nil
}

// RemoveItem deletes the matching line. Removing an absent id is a no-op and
// reports false.
func (c *Conf) RemoveItem(ctx context.Context, productID int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	removed := false
	for _, item := range c.items {
		if item.ID == productID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return false, nil
	}
	c.items = kept
	return true, c.persist(ctx)
}

// RemoveItems deletes every listed id in one persisted write. Used when a
// cart-originated checkout completes.
func (c *Conf) RemoveItems(ctx context.Context, productIDs []int) error {
	drop := make(map[int]bool, len(productIDs))
	for _, id := range productIDs {
		drop[id] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	removed := false
	for _, item := range c.items {
		if drop[item.ID] {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return nil
	}
	c.items = kept
	return c.persist(ctx)
}

// SetQuantity overwrites the quantity on the matching line. Quantities below 1
// and absent ids are no-ops.
func (c *Conf) SetQuantity(ctx context.Context, productID int, quantity int) error {
	if quantity < 1 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == productID {
			c.items[i].Quantity = quantity
			return c.persist(ctx)
		}
	}
	return nil
}

// ToggleSelected flips the selection flag on the matching line.
func (c *Conf) ToggleSelected(ctx context.Context, productID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == productID {
			c.items[i].Selected = !c.items[i].Selected
			return c.persist(ctx)
		}
	}
	return nil
}

// Items returns the cart lines in insertion order.
func (c *Conf) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// SelectedItems returns only the lines flagged for checkout.
func (c *Conf) SelectedItems() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Item
	for _, item := range c.items {
		if item.Selected {
			out = append(out, item)
		}
	}
	return out
}

// SelectedSubtotal sums price times quantity over the selected lines.
func (c *Conf) SelectedSubtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var subtotal int64
	for _, item := range c.items {
		if item.Selected {
			subtotal += item.Price * int64(item.Quantity)
		}
	}
	return subtotal
}

// TotalItemCount sums every quantity, selected or not. Drives the cart badge.
func (c *Conf) TotalItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

func (c *Conf) persist(ctx context.Context) error {
	data, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := c.store.Set(ctx, kv.KeyCart, data); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
