package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/astroview/astro-edge/pkg/cache"
	"github.com/astroview/astro-edge/pkg/nasa"
)

var (
	errNilSource = errors.New("source is required")
	errNilCache  = errors.New("cache is required")
)

// defaultRelayContentType is used when the relayed upstream response
// carries no content type of its own.
const defaultRelayContentType = "image/jpeg"

// relayEntry is the cached form of a relayed payload. Body and content
// type travel together so a hit is served byte-identically.
type relayEntry struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// handleFeatured serves the daily featured object, cache-first. Only
// misses write the cache; a hit does not refresh the TTL.
func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	key := cache.Key{Operation: cache.OpFeatured}

	if data, err := s.cache.Get(r.Context(), key); err == nil {
		s.writeObjectJSON(w, "HIT", data)
		return
	}

	obj, err := s.source.FeaturedObject(r.Context())
	if err != nil {
		s.writeErrorFor(w, err)
		return
	}

	data, err := obj.Encode()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "encode featured object")
		return
	}

	s.writeObjectJSON(w, "MISS", data)
	cache.PutAsync(s.cache, key, data, cache.FeaturedTTL)
}

// handleLookup resolves a search query to the single best-match object.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "missing required parameter: q")
		return
	}

	key := cache.Key{Operation: cache.OpLookup, Target: query}

	if data, err := s.cache.Get(r.Context(), key); err == nil {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		s.writeObjectJSON(w, "HIT", data)
		return
	}

	obj, err := s.source.Lookup(r.Context(), query)
	if err != nil {
		if errors.Is(err, nasa.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("no results for %q", query))
			return
		}
		s.writeErrorFor(w, err)
		return
	}

	data, err := obj.Encode()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "encode lookup result")
		return
	}

	// Cacheable on success only; error envelopes must not be held by
	// downstream HTTP caches.
	w.Header().Set("Cache-Control", "public, max-age=86400")
	s.writeObjectJSON(w, "MISS", data)
	cache.PutAsync(s.cache, key, data, cache.LookupTTL)
}

// handleRelay re-serves an upstream image through this domain. Relay
// targets are assumed content-addressed by URL and never change, so the
// response is marked immutable. The proxy never retries; retry is the
// caller's responsibility.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		s.writeError(w, http.StatusBadRequest, "missing required parameter: url")
		return
	}

	key := cache.Key{Operation: cache.OpRelay, Target: target}

	if data, err := s.cache.Get(r.Context(), key); err == nil {
		var entry relayEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			s.writeRelay(w, "HIT", entry.ContentType, entry.Body)
			return
		}
		// Corrupt entry; fall through to a fresh fetch.
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid relay target")
		return
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.relayClient.Do(req)
	if err != nil {
		s.logger.Warn().Err(err).Str("target", target).Msg("Relay fetch failed")
		s.writeError(w, http.StatusInternalServerError, "relay fetch failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn().
			Int("status", resp.StatusCode).
			Str("target", target).
			Msg("Relay target returned non-success status")
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("relay target returned status %d", resp.StatusCode))
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "read relay body")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultRelayContentType
	}

	s.writeRelay(w, "MISS", contentType, body)

	if data, err := json.Marshal(relayEntry{ContentType: contentType, Body: body}); err == nil {
		cache.PutAsync(s.cache, key, data, cache.RelayTTL)
	}
}

// writeObjectJSON writes a canonical object response with cache marker.
func (s *Server) writeObjectJSON(w http.ResponseWriter, cacheStatus string, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// writeRelay writes a relayed payload verbatim, marked cacheable for one
// year as immutable.
func (s *Server) writeRelay(w http.ResponseWriter, cacheStatus, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// writeError writes the structured JSON error envelope. Raw transport
// errors and upstream bodies never reach the client.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeErrorFor maps adapter errors onto the proxy error surface.
func (s *Server) writeErrorFor(w http.ResponseWriter, err error) {
	var upstreamErr *nasa.UpstreamError
	if errors.As(err, &upstreamErr) {
		s.logger.Error().Err(err).Msg("Upstream failure")
		s.writeError(w, http.StatusInternalServerError, "upstream request failed")
		return
	}
	s.logger.Error().Err(err).Msg("Unexpected handler error")
	s.writeError(w, http.StatusInternalServerError, "internal error")
}
