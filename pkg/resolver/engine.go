// Package resolver implements the client resolution engine: given an
// object id or search query, it consults local bundle, persistent cache
// and the edge layer in order, returns the first hit immediately, and
// keeps the cache warm with non-blocking background refreshes.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/astroview/astro-edge/pkg/bundle"
	"github.com/astroview/astro-edge/pkg/catalog"
	"github.com/astroview/astro-edge/pkg/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// refreshTimeout bounds a background refresh. The refresh runs on a
// detached context: abandoning the originating call must not cancel a
// write that is an idempotent overwrite anyway.
const refreshTimeout = 15 * time.Second

// Fetcher is the network tier. Satisfied by the edge client.
type Fetcher interface {
	// FetchObject retrieves the static precomputed resource for id.
	FetchObject(ctx context.Context, id string) (*catalog.Object, error)

	// Lookup asks the dynamic lookup operation for the best match.
	Lookup(ctx context.Context, query string) (*catalog.Object, error)
}

// Config holds the engine configuration.
type Config struct {
	// Bundle is the immutable local snapshot (required).
	Bundle *bundle.Bundle

	// Store is the persistent cache (required).
	Store *store.Store

	// Edge is the network tier (required).
	Edge Fetcher

	// OnUpdate is invoked from background refreshes when fresher content
	// replaced a cached entry, so the UI can reconcile (optional).
	OnUpdate func(*catalog.Object)
}

// SearchResult is the outcome of a query resolution.
type SearchResult struct {
	// Objects holds the matches: a single best match from the network
	// path, possibly several from the offline bundle fallback.
	Objects []*catalog.Object

	// LocalOnly is true when the result came from the bundle because the
	// network was unreachable.
	LocalOnly bool
}

// Engine resolves object and search requests across tiers. Bundle beats
// cache beats network: bundled content is guaranteed present and fastest.
type Engine struct {
	bundle   *bundle.Bundle
	store    *store.Store
	edge     Fetcher
	onUpdate func(*catalog.Object)
	logger   zerolog.Logger
}

// New creates a resolution engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Bundle == nil {
		return nil, fmt.Errorf("bundle is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Edge == nil {
		return nil, fmt.Errorf("edge fetcher is required")
	}

	return &Engine{
		bundle:   cfg.Bundle,
		store:    cfg.Store,
		edge:     cfg.Edge,
		onUpdate: cfg.OnUpdate,
		logger:   log.With().Str("component", "resolver").Logger(),
	}, nil
}

// ResolveObject resolves an object id to content. The foreground path is
// synchronous and returns the first tier hit; a local hit also spawns a
// background refresh that is never awaited.
func (e *Engine) ResolveObject(ctx context.Context, id string) (*catalog.Object, error) {
	if obj, ok := e.bundle.Get(id); ok {
		e.refreshAsync(id, obj)
		return obj, nil
	}

	obj, err := e.store.GetObject(id)
	if err == nil {
		e.refreshAsync(id, obj)
		return obj, nil
	}
	if err != store.ErrNotFound {
		// A broken cache read is a miss, not a failure.
		e.logger.Debug().Err(err).Str("id", id).Msg("Persistent cache read failed")
	}

	obj, err = e.fetchRemote(ctx, id)
	if err != nil {
		return nil, &NotFoundError{ID: id}
	}

	e.persist(obj)
	return obj, nil
}

// Search resolves a query. The network path returns the single best
// match; with the network unreachable the bundle index is filtered
// in-memory instead, flagged LocalOnly.
func (e *Engine) Search(ctx context.Context, query string) (*SearchResult, error) {
	obj, err := e.edge.Lookup(ctx, query)
	if err == nil {
		e.persist(obj)
		return &SearchResult{Objects: []*catalog.Object{obj}}, nil
	}

	e.logger.Debug().Err(err).Str("query", query).Msg("Network search failed, filtering bundle")

	if matches := e.bundle.Search(query); len(matches) > 0 {
		return &SearchResult{Objects: matches, LocalOnly: true}, nil
	}

	return nil, &NotFoundError{Query: query, LocalOnly: true}
}

// fetchRemote tries the static edge store first, then the dynamic
// lookup. Used by both the foreground miss path and background refresh.
func (e *Engine) fetchRemote(ctx context.Context, id string) (*catalog.Object, error) {
	obj, staticErr := e.edge.FetchObject(ctx, id)
	if staticErr == nil {
		return obj, nil
	}

	obj, lookupErr := e.edge.Lookup(ctx, id)
	if lookupErr == nil {
		return obj, nil
	}

	return nil, fmt.Errorf("static fetch: %v; lookup: %w", staticErr, lookupErr)
}

// refreshAsync repeats the network fetch without blocking the caller.
// Fresher content overwrites the cache entry and fires the update
// callback; failures are swallowed, never surfaced to the user. There is
// no ordering guarantee relative to later foreground calls for the same
// id; cache writes are idempotent overwrites, so overlap is tolerated.
func (e *Engine) refreshAsync(id string, current *catalog.Object) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		fresh, err := e.fetchRemote(ctx, id)
		if err != nil {
			e.logger.Debug().Err(err).Str("id", id).Msg("Background refresh failed")
			return
		}

		// Compare against the stored copy when one exists. A bundle hit
		// passes the bundled object, which differs from network content
		// in its source field alone and would report a change forever.
		baseline := current
		if stored, err := e.store.GetObject(id); err == nil {
			baseline = stored
		}

		if catalog.Equal(baseline, fresh) {
			return
		}

		e.persist(fresh)
		e.logger.Debug().Str("id", id).Msg("Background refresh updated cached content")
		if e.onUpdate != nil {
			e.onUpdate(fresh)
		}
	}()
}

// persist writes an object into the persistent cache and refreshes the
// cached content index. Best-effort: failures are logged and swallowed.
func (e *Engine) persist(obj *catalog.Object) {
	if err := e.store.PutObject(obj); err != nil {
		e.logger.Warn().Err(err).Str("id", obj.ID).Msg("Persistent cache write failed")
		return
	}

	if ids, err := e.store.Keys(); err == nil {
		if err := e.store.PutIndex(ids); err != nil {
			e.logger.Debug().Err(err).Msg("Index write failed")
		}
	}
}
