package resolver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/astroview/astro-edge/pkg/bundle"
	"github.com/astroview/astro-edge/pkg/catalog"
	"github.com/astroview/astro-edge/pkg/store"
)

const testBundleYAML = `
version: "2026.08"
objects:
  - id: mars
    title: Mars
    description: The red planet.
    imageUrl: /relay?url=https%3A%2F%2Fexample.com%2Fmars.jpg
    type: planet
    metadata:
      distance: "227.9 million km"
  - id: orion-nebula
    title: Orion Nebula
    description: A stellar nursery.
    imageUrl: /relay?url=https%3A%2F%2Fexample.com%2Forion.jpg
    type: nebula
`

// stubFetcher is a scriptable network tier. Unscripted ids fail the way
// an unreachable network would.
type stubFetcher struct {
	mu      sync.Mutex
	static  map[string]*catalog.Object
	lookup  map[string]*catalog.Object
	delay   time.Duration
	fetches int32
	lookups int32
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		static: make(map[string]*catalog.Object),
		lookup: make(map[string]*catalog.Object),
	}
}

func (s *stubFetcher) FetchObject(ctx context.Context, id string) (*catalog.Object, error) {
	atomic.AddInt32(&s.fetches, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	obj, ok := s.static[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("connection refused")
	}
	return obj, nil
}

func (s *stubFetcher) Lookup(ctx context.Context, query string) (*catalog.Object, error) {
	atomic.AddInt32(&s.lookups, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	obj, ok := s.lookup[query]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("connection refused")
	}
	return obj, nil
}

func (s *stubFetcher) fetchCount() int32  { return atomic.LoadInt32(&s.fetches) }
func (s *stubFetcher) lookupCount() int32 { return atomic.LoadInt32(&s.lookups) }

func remoteObject(id, title string) *catalog.Object {
	return &catalog.Object{
		ID:       id,
		Title:    title,
		Type:     catalog.CategoryOther,
		Metadata: catalog.NormalizeMetadata(nil),
		Source:   catalog.SourceNASA,
	}
}

func newTestEngine(t *testing.T, fetcher Fetcher) (*Engine, *store.Store) {
	t.Helper()

	b, err := bundle.Parse([]byte(testBundleYAML))
	if err != nil {
		t.Fatalf("Parse bundle failed: %v", err)
	}

	s, err := store.Open(store.Config{Path: filepath.Join(t.TempDir(), "cache.db")})
	if err != nil {
		t.Fatalf("Open store failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	engine, err := New(Config{Bundle: b, Store: s, Edge: fetcher})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return engine, s
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New should reject missing dependencies")
	}
}

func TestResolveObject_BundleHit(t *testing.T) {
	fetcher := newStubFetcher()
	engine, _ := newTestEngine(t, fetcher)

	obj, err := engine.ResolveObject(context.Background(), "mars")
	if err != nil {
		t.Fatalf("ResolveObject failed: %v", err)
	}
	if obj.Title != "Mars" {
		t.Errorf("Title = %q, want Mars", obj.Title)
	}
	if obj.Source != catalog.SourceLocal {
		t.Errorf("Source = %q, want the bundled copy", obj.Source)
	}
}

func TestResolveObject_BundleBeatsCache(t *testing.T) {
	fetcher := newStubFetcher()
	engine, s := newTestEngine(t, fetcher)

	stale := remoteObject("mars", "Stale Mars")
	if err := s.PutObject(stale); err != nil {
		t.Fatalf("PutObject failed: %v", err)
	}

	obj, err := engine.ResolveObject(context.Background(), "mars")
	if err != nil {
		t.Fatalf("ResolveObject failed: %v", err)
	}
	if obj.Title != "Mars" {
		t.Errorf("Title = %q, bundle must win over the persistent cache", obj.Title)
	}
}

func TestResolveObject_CacheHit(t *testing.T) {
	fetcher := newStubFetcher()
	engine, s := newTestEngine(t, fetcher)

	cached := remoteObject("PIA00407", "Global Color Views of Mars")
	if err := s.PutObject(cached); err != nil {
		t.Fatalf("PutObject failed: %v", err)
	}

	obj, err := engine.ResolveObject(context.Background(), "PIA00407")
	if err != nil {
		t.Fatalf("ResolveObject failed: %v", err)
	}
	if obj.Title != cached.Title {
		t.Errorf("Title = %q, want the cached copy", obj.Title)
	}
}

func TestResolveObject_NetworkMissPersists(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.static["PIA00407"] = remoteObject("PIA00407", "Global Color Views of Mars")
	engine, s := newTestEngine(t, fetcher)

	obj, err := engine.ResolveObject(context.Background(), "PIA00407")
	if err != nil {
		t.Fatalf("ResolveObject failed: %v", err)
	}
	if obj.Title != "Global Color Views of Mars" {
		t.Errorf("Title = %q, want the network copy", obj.Title)
	}

	// The fetched object must now be in the persistent cache so a later
	// offline session can still resolve it.
	got, err := s.GetObject("PIA00407")
	if err != nil {
		t.Fatalf("Network result was not persisted: %v", err)
	}
	if !catalog.Equal(obj, got) {
		t.Errorf("Persisted copy differs: got %+v, want %+v", got, obj)
	}
}

func TestResolveObject_LookupFallback(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.lookup["comet-halley"] = remoteObject("comet-halley", "Halley's Comet")
	engine, _ := newTestEngine(t, fetcher)

	obj, err := engine.ResolveObject(context.Background(), "comet-halley")
	if err != nil {
		t.Fatalf("ResolveObject failed: %v", err)
	}
	if obj.ID != "comet-halley" {
		t.Errorf("ID = %q, lookup fallback should have resolved it", obj.ID)
	}
	if fetcher.fetchCount() == 0 {
		t.Error("Static fetch should be attempted before lookup")
	}
}

func TestResolveObject_Exhausted(t *testing.T) {
	fetcher := newStubFetcher()
	engine, _ := newTestEngine(t, fetcher)

	_, err := engine.ResolveObject(context.Background(), "no-such-object")
	if err == nil {
		t.Fatal("Exhausting every tier should be an error")
	}
	if !IsNotFound(err) {
		t.Fatalf("Error = %v, want NotFoundError", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ID != "no-such-object" {
		t.Errorf("NotFoundError should carry the id, got %+v", nf)
	}
}

func TestResolveObject_OfflineBundleOnly(t *testing.T) {
	// No scripted network responses at all: bundled ids must still
	// resolve without error.
	fetcher := newStubFetcher()
	engine, _ := newTestEngine(t, fetcher)

	for _, id := range []string{"mars", "orion-nebula"} {
		if _, err := engine.ResolveObject(context.Background(), id); err != nil {
			t.Errorf("ResolveObject(%q) offline failed: %v", id, err)
		}
	}
}

func TestResolveObject_BackgroundRefreshDoesNotBlock(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.delay = 300 * time.Millisecond
	engine, _ := newTestEngine(t, fetcher)

	start := time.Now()
	if _, err := engine.ResolveObject(context.Background(), "mars"); err != nil {
		t.Fatalf("ResolveObject failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Bundle hit took %v, refresh must not block the caller", elapsed)
	}
}

func TestResolveObject_BackgroundRefreshUpdatesCache(t *testing.T) {
	fetcher := newStubFetcher()
	engine, s := newTestEngine(t, fetcher)

	stale := remoteObject("PIA00407", "Stale Title")
	if err := s.PutObject(stale); err != nil {
		t.Fatalf("PutObject failed: %v", err)
	}

	updated := make(chan *catalog.Object, 1)
	engine.onUpdate = func(obj *catalog.Object) { updated <- obj }

	fresh := remoteObject("PIA00407", "Fresh Title")
	fetcher.mu.Lock()
	fetcher.static["PIA00407"] = fresh
	fetcher.mu.Unlock()

	obj, err := engine.ResolveObject(context.Background(), "PIA00407")
	if err != nil {
		t.Fatalf("ResolveObject failed: %v", err)
	}
	if obj.Title != "Stale Title" {
		t.Errorf("Foreground result = %q, want the cached copy returned immediately", obj.Title)
	}

	select {
	case got := <-updated:
		if got.Title != "Fresh Title" {
			t.Errorf("Callback object = %q, want the fresh copy", got.Title)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Update callback never fired")
	}

	stored, err := s.GetObject("PIA00407")
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	if stored.Title != "Fresh Title" {
		t.Errorf("Cache still holds %q, refresh should have overwritten it", stored.Title)
	}
}

func TestResolveObject_RefreshSkipsIdenticalContent(t *testing.T) {
	fetcher := newStubFetcher()
	engine, s := newTestEngine(t, fetcher)

	obj := remoteObject("PIA00407", "Same Title")
	if err := s.PutObject(obj); err != nil {
		t.Fatalf("PutObject failed: %v", err)
	}

	var fired atomic.Bool
	engine.onUpdate = func(*catalog.Object) { fired.Store(true) }

	fetcher.mu.Lock()
	fetcher.static["PIA00407"] = remoteObject("PIA00407", "Same Title")
	fetcher.mu.Unlock()

	if _, err := engine.ResolveObject(context.Background(), "PIA00407"); err != nil {
		t.Fatalf("ResolveObject failed: %v", err)
	}

	// Give the refresh goroutine time to run.
	deadline := time.Now().Add(time.Second)
	for fetcher.fetchCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if fired.Load() {
		t.Error("Callback fired for identical content")
	}
}

func TestResolveObject_BundleRefreshComparesStoredCopy(t *testing.T) {
	fetcher := newStubFetcher()
	engine, s := newTestEngine(t, fetcher)

	// The cache already holds exactly what the network serves for this
	// bundled id. The bundled copy itself always differs from network
	// content, so comparing against it would report a phantom change.
	fresh := remoteObject("mars", "Mars From Orbit")
	if err := s.PutObject(fresh); err != nil {
		t.Fatalf("PutObject failed: %v", err)
	}
	fetcher.mu.Lock()
	fetcher.static["mars"] = remoteObject("mars", "Mars From Orbit")
	fetcher.mu.Unlock()

	var fired atomic.Bool
	engine.onUpdate = func(*catalog.Object) { fired.Store(true) }

	if _, err := engine.ResolveObject(context.Background(), "mars"); err != nil {
		t.Fatalf("ResolveObject failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for fetcher.fetchCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if fired.Load() {
		t.Error("Callback fired although the stored copy already matches the network")
	}
}

func TestSearch_NetworkFirst(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.lookup["red planet"] = remoteObject("PIA00407", "Global Color Views of Mars")
	engine, s := newTestEngine(t, fetcher)

	result, err := engine.Search(context.Background(), "red planet")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if result.LocalOnly {
		t.Error("Network result flagged LocalOnly")
	}
	if len(result.Objects) != 1 || result.Objects[0].ID != "PIA00407" {
		t.Errorf("Objects = %+v, want the single best match", result.Objects)
	}

	// Search results feed the cache too.
	if _, err := s.GetObject("PIA00407"); err != nil {
		t.Errorf("Search result was not persisted: %v", err)
	}
}

func TestSearch_OfflineBundleFallback(t *testing.T) {
	fetcher := newStubFetcher()
	engine, _ := newTestEngine(t, fetcher)

	result, err := engine.Search(context.Background(), "nebula")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !result.LocalOnly {
		t.Error("Bundle fallback should be flagged LocalOnly")
	}
	if len(result.Objects) != 1 || result.Objects[0].ID != "orion-nebula" {
		t.Errorf("Objects = %+v, want the bundled nebula", result.Objects)
	}
}

func TestSearch_OfflineNoMatch(t *testing.T) {
	fetcher := newStubFetcher()
	engine, _ := newTestEngine(t, fetcher)

	_, err := engine.Search(context.Background(), "quasar")
	if err == nil {
		t.Fatal("No tier matching should be an error")
	}
	if !IsNotFound(err) {
		t.Fatalf("Error = %v, want NotFoundError", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) || !nf.LocalOnly || nf.Query != "quasar" {
		t.Errorf("NotFoundError should carry the query and offline flag, got %+v", nf)
	}
}
