package resolver

import (
	"context"
	"fmt"
	"sync"
)

// defaultPrefetchConcurrency bounds parallel resolutions during a
// prefetch run. Small on purpose: prefetch competes with foreground
// resolutions for the same edge layer.
const defaultPrefetchConcurrency = 4

// PrefetchResult reports the outcome of a prefetch run.
type PrefetchResult struct {
	// Resolved holds the ids that were successfully warmed.
	Resolved []string

	// Failed maps each id that could not be resolved to its error.
	Failed map[string]error
}

// Prefetch resolves a set of ids through the full tier chain to warm the
// persistent cache, e.g. ahead of expected offline use. Failures do not
// abort the run; every id is attempted and per-id errors are collected.
func (e *Engine) Prefetch(ctx context.Context, ids []string, concurrency int) *PrefetchResult {
	if concurrency <= 0 {
		concurrency = defaultPrefetchConcurrency
	}

	result := &PrefetchResult{Failed: make(map[string]error)}
	if len(ids) == 0 {
		return result
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		queue = make(chan string, len(ids))
	)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range queue {
				if err := ctx.Err(); err != nil {
					mu.Lock()
					result.Failed[id] = err
					mu.Unlock()
					continue
				}

				obj, err := e.ResolveObject(ctx, id)
				mu.Lock()
				if err != nil {
					result.Failed[id] = err
				} else {
					result.Resolved = append(result.Resolved, obj.ID)
				}
				mu.Unlock()
			}
		}()
	}

	for _, id := range ids {
		queue <- id
	}
	close(queue)
	wg.Wait()

	e.logger.Info().
		Int("resolved", len(result.Resolved)).
		Int("failed", len(result.Failed)).
		Msg("Prefetch completed")

	return result
}

// Err summarizes a prefetch run as a single error, nil when every id
// resolved.
func (r *PrefetchResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("prefetch: %d of %d ids failed", len(r.Failed), len(r.Failed)+len(r.Resolved))
}
