// Package storage provides the named-slot key-value store that backs the
// persisted cart and the admin session marker.
//
// The model intentionally mirrors browser localStorage: each slot holds one
// JSON-encoded value, writes replace prior content (last write wins, no
// versioning), and concurrent writers from other processes are resolved by
// whoever wrote last. Observers that want to react to external writes use
// Watch, the analog of a storage-change event.
package storage

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Get when a slot has never been written or has
// been deleted. Callers treat a missing slot and an empty value as equivalent.
var ErrNotFound = errors.New("storage: slot not found")

// Store is a named-slot key-value store.
type Store interface {
	// Get returns the current contents of slot, or ErrNotFound.
	Get(ctx context.Context, slot string) ([]byte, error)

	// Set replaces the contents of slot.
	Set(ctx context.Context, slot string, data []byte) error

	// Delete removes slot entirely. Deleting a missing slot is not an error.
	Delete(ctx context.Context, slot string) error

	// Watch returns a channel that receives a signal whenever slot changes,
	// including changes made by other processes sharing the same store. The
	// channel is closed when ctx is cancelled. Notifications are best effort
	// and may be coalesced; receivers re-read the slot rather than relying
	// on payload delivery.
	Watch(ctx context.Context, slot string) (<-chan struct{}, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error
}
