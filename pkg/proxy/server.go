// Package proxy implements the edge request proxy: the sole externally
// reachable entry point. It dispatches the featured, lookup and relay
// operations, fronts them with the edge response cache, and shapes every
// outbound response uniformly (CORS, error envelopes, cache markers).
package proxy

import (
	"context"
	"net/http"
	"time"

	"github.com/astroview/astro-edge/pkg/cache"
	"github.com/astroview/astro-edge/pkg/catalog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// relayTimeout bounds relay fetches toward upstream image hosts.
const relayTimeout = 15 * time.Second

// Source produces canonical objects from upstream. Satisfied by the
// nasa adapter; tests substitute stubs.
type Source interface {
	FeaturedObject(ctx context.Context) (*catalog.Object, error)
	Lookup(ctx context.Context, query string) (*catalog.Object, error)
}

// Config holds the proxy server configuration.
type Config struct {
	// Source is the upstream adapter (required).
	Source Source

	// Cache is the edge response cache (required).
	Cache cache.Store

	// UserAgent identifies relay fetches to upstream image hosts.
	UserAgent string

	// StaticDir, when set, is served under /objects/ as the static edge
	// store of precomputed per-object resources.
	StaticDir string
}

// Server is the edge request proxy.
type Server struct {
	source      Source
	cache       cache.Store
	relayClient *http.Client
	userAgent   string
	staticDir   string
	logger      zerolog.Logger
}

// New creates an edge proxy server.
func New(cfg Config) (*Server, error) {
	if cfg.Source == nil {
		return nil, errNilSource
	}
	if cfg.Cache == nil {
		return nil, errNilCache
	}

	return &Server{
		source:      cfg.Source,
		cache:       cfg.Cache,
		relayClient: &http.Client{Timeout: relayTimeout},
		userAgent:   cfg.UserAgent,
		staticDir:   cfg.StaticDir,
		logger:      log.With().Str("component", "edge-proxy").Logger(),
	}, nil
}

// Handler returns the fully wired HTTP handler: routes plus the
// cross-cutting middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/featured", s.handleFeatured)
	mux.HandleFunc("/lookup", s.handleLookup)
	mux.HandleFunc("/relay", s.handleRelay)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	if s.staticDir != "" {
		mux.Handle("/objects/", http.StripPrefix("/objects/", http.FileServer(http.Dir(s.staticDir))))
	}

	return s.recoverMiddleware(s.corsMiddleware(s.loggingMiddleware(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// SetRelayClient sets a custom relay HTTP client (for testing).
func (s *Server) SetRelayClient(client *http.Client) {
	s.relayClient = client
}
