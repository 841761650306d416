// Package cache stores rendered chart artifacts and job outcomes.
//
// All backends implement [Cache]. The CLI uses [FileCache] by default;
// [RedisCache] and [MongoCache] let several machines share history, and
// [NullCache] disables caching entirely. Keys are built by a [Keyer] so
// callers never hand-assemble them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (hit == false) and not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default lifetimes per entry kind.
const (
	TTLChart      = 7 * 24 * time.Hour
	TTLArtifact   = 7 * 24 * time.Hour
	TTLJobOutcome = 30 * 24 * time.Hour
)
