// Package idempotency keeps a short-lived record of already-generated
// agreement documents so a retried request returns the stored vendor document
// id instead of uploading a duplicate legal document.
package idempotency

import (
	"context"
	"time"
)

// Store maps an idempotency key to the value recorded for it.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set records a value under the key with a TTL.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Close releases resources held by the store
	Close() error
}
