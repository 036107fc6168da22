// Package store defines the persisted-field contract the toolkit uses to
// survive a host process recreation. The core only reads and writes string
// values keyed by a string scoped to one component instance; the host picks
// the medium by injecting an implementation.
package store

import "context"

// Store is the key/value port injected by the host.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
