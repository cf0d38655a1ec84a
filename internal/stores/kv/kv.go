// Package kv is the durable storage layer. Everything the storefront persists
// lives under a handful of well-known keys whose values are overwritten whole
// on every mutation; there is no partial update and no append.
package kv

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyCart        = "cart"
	KeyOrders      = "orders"
	KeyUserAddress = "userAddress"
)

// ErrNoKey is returned by Get when the key has never been written.
var ErrNoKey = errors.New("key not found")

// Store is a whole-value key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
