// Package cache provides the edge response cache with a Redis backend.
//
// The cache fronts the upstream source adapter and serves repeated
// identical requests without re-invoking upstream:
//
//   - The daily featured object is cached under one fixed key for 24 hours.
//   - Lookup results and relayed image payloads are keyed per query or
//     target URL and treated as immutable (one-year TTL).
//   - Writes are best-effort: population never delays the response to the
//     caller and write failures are swallowed.
//   - Entries are opaque byte blobs; a hit is bit-identical to what was
//     stored, never a partial or merged update.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := cache.NewRedisStore(redisClient)
//
//	key := cache.Key{Operation: cache.OpLookup, Target: "mars"}
//	data, err := store.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the adapter, then repopulate:
//		cache.PutAsync(store, key, fresh, cache.LookupTTL)
//	}
//
// # Metrics
//
// The store exports Prometheus metrics:
//
//   - edge_cache_hits_total{operation} - cache hits
//   - edge_cache_misses_total{operation} - cache misses
//   - edge_cache_errors_total{operation} - cache operation errors
package cache
