package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// TTL policy per operation. Featured content rotates once per day
// upstream; lookup results and relayed images are treated as immutable.
const (
	FeaturedTTL = 24 * time.Hour
	LookupTTL   = 365 * 24 * time.Hour
	RelayTTL    = 365 * 24 * time.Hour
)

// Store is the edge response cache. Values are opaque byte blobs; a hit
// returns exactly what was stored.
type Store interface {
	// Get returns the cached value for key, or ErrCacheMiss.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Put stores value under key with the given TTL. Last writer wins;
	// entries are immutable blobs so no transactional update is needed.
	Put(ctx context.Context, key Key, value []byte, ttl time.Duration) error
}
