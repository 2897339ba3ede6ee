// Package testutil provides testing utilities for the astro edge layer.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock upstream endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockNASA is a configurable mock of the upstream NASA endpoints: the
// APOD daily feed, the image library search, and raw image hosting.
type MockNASA struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount    int
	LastQuery       string
	LastUserAgent   string
	remainingQuota  int
	quotaConfigured bool
}

// NewMockNASA creates a new mock upstream server.
func NewMockNASA() *MockNASA {
	mock := &MockNASA{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastUserAgent = r.Header.Get("User-Agent")
		if q := r.URL.Query().Get("q"); q != "" {
			mock.LastQuery = q
		}
		quota := mock.remainingQuota
		hasQuota := mock.quotaConfigured
		mock.mu.Unlock()

		if hasQuota {
			w.Header().Set("X-RateLimit-Limit", "1000")
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", quota))
		}

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockNASA) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockNASA) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockNASA) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastQuery = ""
	m.LastUserAgent = ""
}

// SetQuotaRemaining makes every response carry NASA quota headers with
// the given remaining value.
func (m *MockNASA) SetQuotaRemaining(remaining int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remainingQuota = remaining
	m.quotaConfigured = true
}

// SetHandler sets a custom handler for a specific path.
func (m *MockNASA) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockNASA) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockNASA) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// defaultHandler answers unconfigured paths with an empty JSON object.
func (m *MockNASA) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{}`))
}

// APODImageBody returns a typical daily-feed payload for a static image.
func APODImageBody(date, title, imageURL string) string {
	return fmt.Sprintf(`{
		"date": %q,
		"title": %q,
		"explanation": "A test explanation.",
		"url": %q,
		"hdurl": %q,
		"media_type": "image"
	}`, date, title, imageURL, imageURL)
}

// APODVideoBody returns a daily-feed payload for a video item.
func APODVideoBody(date, title, thumbnailURL string) string {
	thumb := ""
	if thumbnailURL != "" {
		thumb = fmt.Sprintf(`"thumbnail_url": %q,`, thumbnailURL)
	}
	return fmt.Sprintf(`{
		"date": %q,
		"title": %q,
		"explanation": "A test video explanation.",
		"url": "https://www.youtube.com/embed/test",
		%s
		"media_type": "video"
	}`, date, title, thumb)
}

// SearchBody returns a one-item image library search payload.
func SearchBody(nasaID, title, imageURL string, keywords ...string) string {
	kw := ""
	for i, k := range keywords {
		if i > 0 {
			kw += ","
		}
		kw += fmt.Sprintf("%q", k)
	}
	return fmt.Sprintf(`{
		"collection": {
			"items": [{
				"data": [{
					"nasa_id": %q,
					"title": %q,
					"description": "A test description.",
					"keywords": [%s],
					"center": "JPL",
					"date_created": "2001-01-01T00:00:00Z"
				}],
				"links": [{
					"href": %q,
					"rel": "preview",
					"render": "image"
				}]
			}]
		}
	}`, nasaID, title, kw, imageURL)
}

// EmptySearchBody returns a search payload with no items.
func EmptySearchBody() string {
	return `{"collection": {"items": []}}`
}
