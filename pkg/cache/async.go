package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// putTimeout bounds fire-and-forget writes so an unhealthy backend
// cannot pile up goroutines.
const putTimeout = 5 * time.Second

// PutAsync stores value without blocking the caller. The cache is
// best-effort, not authoritative storage: write failures are logged at
// debug level and swallowed.
//
// A detached context is used on purpose; the originating request may
// complete before the write does.
func PutAsync(store Store, key Key, value []byte, ttl time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
		defer cancel()

		if err := store.Put(ctx, key, value, ttl); err != nil {
			log.Debug().
				Err(err).
				Str("key", key.String()).
				Msg("Async cache write failed")
		}
	}()
}
