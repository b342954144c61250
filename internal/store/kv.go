// Package store contains the durable state of the daemon: a small
// string-keyed key-value layer with file and Postgres backends, and the
// two observable stores built on it (the current fake location slot and
// the favorites list). No business logic lives here.
package store

import "context"

// Storage keys. Both values are JSON documents.
const (
	KeyFakeLocation = "fake_location"
	KeyFavorites    = "favorites"
)

// KV is the minimal durable key-value contract the stores need.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under key. ok is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error
}
