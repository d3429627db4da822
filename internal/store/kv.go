package store

import (
	"context"
	"errors"
)

// KV is the durable key-value slot the cart lives in. Backends only need
// get/set on well-known keys; there is no cross-key namespacing.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

var ErrKeyNotFound = errors.New("key not found")
