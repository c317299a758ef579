// Package cache provides byte-oriented cache backends for nutrilabel.
//
// The catalog loader keeps its live cache entry in memory. A [Cache] backs
// the optional last-known-good snapshot of the spreadsheet, so a restarted
// process can still show labels while the sheet is unreachable.
//
// Backends:
//   - [NullCache]: stores nothing (default, snapshots disabled)
//   - [FileCache]: one JSON file per key under a directory (CLI, single host)
//   - [RedisCache]: shared across instances
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for opaque byte payloads with optional TTL.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and fresh.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
