// Package edge is the client-side transport to the edge data layer. It
// fetches precomputed per-object resources from the static store and
// falls back to the proxy's dynamic lookup operation.
package edge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/astroview/astro-edge/pkg/catalog"
)

const defaultTimeout = 15 * time.Second

// Config holds the edge client configuration.
type Config struct {
	// ProxyBase is the edge proxy base URL, e.g. "https://edge.example.com".
	ProxyBase string

	// StaticBase is the static edge store base URL. Defaults to ProxyBase,
	// which serves /objects/ when configured with a static directory.
	StaticBase string

	// Timeout bounds every call. Exceeding it reads as a transport error
	// and the resolution engine proceeds to its next fallback tier.
	Timeout time.Duration
}

// Client talks to the edge data layer.
type Client struct {
	httpClient *http.Client
	proxyBase  string
	staticBase string
}

// New creates an edge client.
func New(cfg Config) (*Client, error) {
	if cfg.ProxyBase == "" {
		return nil, fmt.Errorf("proxy base URL is required")
	}
	if cfg.StaticBase == "" {
		cfg.StaticBase = cfg.ProxyBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		proxyBase:  strings.TrimSuffix(cfg.ProxyBase, "/"),
		staticBase: strings.TrimSuffix(cfg.StaticBase, "/"),
	}, nil
}

// FetchObject retrieves the precomputed static resource for id.
func (c *Client) FetchObject(ctx context.Context, id string) (*catalog.Object, error) {
	target := c.staticBase + "/objects/" + url.PathEscape(id) + ".json"
	return c.getObject(ctx, target)
}

// Lookup asks the proxy's dynamic lookup operation for the best match.
func (c *Client) Lookup(ctx context.Context, query string) (*catalog.Object, error) {
	target := c.proxyBase + "/lookup?q=" + url.QueryEscape(query)
	return c.getObject(ctx, target)
}

func (c *Client) getObject(ctx context.Context, target string) (*catalog.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("edge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edge returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read edge body: %w", err)
	}

	obj, err := catalog.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode edge payload: %w", err)
	}
	if obj.ID == "" {
		return nil, fmt.Errorf("edge payload missing id")
	}
	return obj, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
