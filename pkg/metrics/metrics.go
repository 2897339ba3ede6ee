// Package metrics provides the centralized Prometheus metrics registry
// for the edge data layer. All metrics are defined in their respective
// packages (proxy, cache, nasa, ratelimit) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the edge proxy.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Proxy Metrics (pkg/proxy):
//   - edge_proxy_requests_total{path, status} (Counter): Requests by route and HTTP status
//   - edge_proxy_request_duration_seconds{path} (Histogram): Request duration by route
//
// Cache Metrics (pkg/cache):
//   - edge_cache_hits_total{operation} (Counter): Redis cache hits by operation
//   - edge_cache_misses_total{operation} (Counter): Redis cache misses by operation
//   - edge_cache_errors_total{operation} (Counter): Redis cache operation errors
//
// Upstream Metrics (pkg/nasa):
//   - upstream_requests_total{endpoint, status} (Counter): NASA API requests by endpoint and status
//   - upstream_request_duration_seconds{endpoint} (Histogram): NASA API request duration
//
// Quota Metrics (pkg/ratelimit):
//   - nasa_quota_remaining (Gauge): Remaining NASA API requests in the current window
//   - nasa_quota_blocks_total (Counter): Upstream requests blocked on exhausted quota
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(edge_cache_hits_total[5m])) /
//   (sum(rate(edge_cache_hits_total[5m])) + sum(rate(edge_cache_misses_total[5m])))
//
//   # Quota Status
//   nasa_quota_remaining < 20
//
//   # Upstream Error Rate
//   sum(rate(upstream_requests_total{status!="200"}[5m]))
//
//   # P95 Proxy Latency
//   histogram_quantile(0.95, rate(edge_proxy_request_duration_seconds_bucket[5m]))
