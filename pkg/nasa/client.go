// Package nasa is the upstream source adapter. It calls the NASA APOD
// daily feed and the NASA image library search endpoint and normalizes
// their heterogeneous JSON into the canonical catalog schema.
package nasa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/astroview/astro-edge/pkg/catalog"
	"github.com/astroview/astro-edge/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for upstream requests.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})
)

const (
	defaultAPODBase   = "https://api.nasa.gov/planetary/apod"
	defaultImagesBase = "https://images-api.nasa.gov"
	defaultTimeout    = 15 * time.Second
)

// Config holds the adapter configuration.
type Config struct {
	// APODBase is the daily-feed endpoint base URL.
	APODBase string

	// ImagesBase is the image library search endpoint base URL.
	ImagesBase string

	// APIKey is the api.nasa.gov key. The images API needs none.
	APIKey string

	// UserAgent identifies this service to upstream (required).
	UserAgent string

	// RelayBase is the externally visible proxy base URL used to build
	// relay image URLs, e.g. "https://edge.example.com".
	RelayBase string

	// Timeout bounds every upstream call. Exceeding it is treated like
	// any other transport error.
	Timeout time.Duration

	// Tracker gates requests on the upstream key quota (optional).
	Tracker *ratelimit.Tracker
}

// DefaultConfig returns a configuration with production endpoints.
func DefaultConfig(apiKey, userAgent, relayBase string) Config {
	return Config{
		APODBase:   defaultAPODBase,
		ImagesBase: defaultImagesBase,
		APIKey:     apiKey,
		UserAgent:  userAgent,
		RelayBase:  relayBase,
		Timeout:    defaultTimeout,
	}
}

// Client calls the upstream provider and produces catalog objects.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates an upstream adapter.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.RelayBase == "" {
		return nil, fmt.Errorf("relay base URL is required")
	}
	if cfg.APODBase == "" {
		cfg.APODBase = defaultAPODBase
	}
	if cfg.ImagesBase == "" {
		cfg.ImagesBase = defaultImagesBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		logger:     log.With().Str("component", "nasa-adapter").Logger(),
	}, nil
}

// FeaturedObject fetches the daily featured item and normalizes it.
func (c *Client) FeaturedObject(ctx context.Context) (*catalog.Object, error) {
	endpoint := c.config.APODBase
	query := url.Values{"thumbs": []string{"true"}}
	if c.config.APIKey != "" {
		query.Set("api_key", c.config.APIKey)
	}

	body, err := c.get(ctx, endpoint+"?"+query.Encode(), "apod")
	if err != nil {
		return nil, err
	}

	var feed apodItem
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, &UpstreamError{Message: "malformed daily feed payload", Err: err}
	}

	obj := normalizeAPOD(&feed, c.config.RelayBase)
	c.logger.Debug().Str("id", obj.ID).Msg("Normalized featured object")
	return obj, nil
}

// Lookup searches the image library and normalizes the best match, which
// is the first item in upstream order. No further ranking is applied.
func (c *Client) Lookup(ctx context.Context, query string) (*catalog.Object, error) {
	params := url.Values{
		"q":          []string{query},
		"media_type": []string{"image"},
	}

	body, err := c.get(ctx, c.config.ImagesBase+"/search?"+params.Encode(), "search")
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &UpstreamError{Message: "malformed search payload", Err: err}
	}

	if len(result.Collection.Items) == 0 {
		c.logger.Debug().Str("query", query).Msg("Search returned no items")
		return nil, ErrNotFound
	}

	obj, err := normalizeSearchItem(&result.Collection.Items[0], query, c.config.RelayBase)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("id", obj.ID).Str("query", query).Msg("Normalized search result")
	return obj, nil
}

// get performs one upstream GET with the identifying user agent and
// quota gating. The returned body is fully read.
func (c *Client) get(ctx context.Context, rawURL, endpoint string) ([]byte, error) {
	if c.config.Tracker != nil && !c.config.Tracker.ShouldAllowRequest(ctx) {
		upstreamRequestsTotal.WithLabelValues(endpoint, "quota_blocked").Inc()
		return nil, &UpstreamError{
			StatusCode: http.StatusTooManyRequests,
			Message:    "upstream key quota exhausted",
		}
	}

	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Upstream request failed")
		return nil, &UpstreamError{Message: "upstream unreachable", Err: err}
	}
	defer resp.Body.Close()

	if c.config.Tracker != nil {
		if err := c.config.Tracker.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update quota from headers")
		}
	}

	upstreamRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("Upstream returned non-success status")
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Message: "read upstream body", Err: err}
	}
	return body, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
