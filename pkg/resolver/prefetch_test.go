package resolver

import (
	"context"
	"testing"
)

func TestPrefetch(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.static["PIA00407"] = remoteObject("PIA00407", "Global Color Views of Mars")
	engine, s := newTestEngine(t, fetcher)

	ids := []string{"mars", "PIA00407", "no-such-object"}
	result := engine.Prefetch(context.Background(), ids, 2)

	if len(result.Resolved) != 2 {
		t.Errorf("Resolved = %v, want mars and PIA00407", result.Resolved)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("Failed = %v, want only the unknown id", result.Failed)
	}
	if err, ok := result.Failed["no-such-object"]; !ok || !IsNotFound(err) {
		t.Errorf("Failed[no-such-object] = %v, want NotFoundError", err)
	}
	if result.Err() == nil {
		t.Error("Err should summarize partial failure")
	}

	// Prefetch exists to warm the cache for offline use.
	if _, err := s.GetObject("PIA00407"); err != nil {
		t.Errorf("Prefetched object missing from cache: %v", err)
	}
}

func TestPrefetch_Empty(t *testing.T) {
	engine, _ := newTestEngine(t, newStubFetcher())

	result := engine.Prefetch(context.Background(), nil, 0)
	if len(result.Resolved) != 0 || len(result.Failed) != 0 {
		t.Errorf("Empty run should resolve nothing, got %+v", result)
	}
	if result.Err() != nil {
		t.Errorf("Err = %v, want nil for empty run", result.Err())
	}
}

func TestPrefetch_AllResolved(t *testing.T) {
	engine, _ := newTestEngine(t, newStubFetcher())

	result := engine.Prefetch(context.Background(), []string{"mars", "orion-nebula"}, 0)
	if len(result.Failed) != 0 {
		t.Errorf("Failed = %v, bundled ids must always resolve", result.Failed)
	}
	if result.Err() != nil {
		t.Errorf("Err = %v, want nil", result.Err())
	}
}

func TestPrefetch_CancelledContext(t *testing.T) {
	engine, _ := newTestEngine(t, newStubFetcher())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := engine.Prefetch(ctx, []string{"mars"}, 1)
	if len(result.Failed) != 1 {
		t.Errorf("Failed = %v, cancelled run should not resolve", result.Failed)
	}
}
