// Package storage provides the durable client-side key-value store backing
// carts and session state, with in-memory and Redis implementations.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no value (or its TTL has lapsed).
var ErrNotFound = errors.New("storage: key not found")

// KV is a minimal durable key-value store.
type KV interface {
	// Get retrieves the value for a key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value under a key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
