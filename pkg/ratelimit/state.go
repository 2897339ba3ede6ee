// Package ratelimit tracks the upstream NASA API key quota and gates
// outbound requests. api.nasa.gov reports the hourly key quota via the
// X-RateLimit-Limit and X-RateLimit-Remaining headers; exhausting it
// turns every upstream call into a 429 until the window rolls over.
package ratelimit

import (
	"time"
)

// Redis keys for quota state storage.
const (
	RedisKeyRemaining  = "nasa:rate_limit:remaining"
	RedisKeyLimit      = "nasa:rate_limit:limit"
	RedisKeyLastUpdate = "nasa:rate_limit:last_update"
)

// Thresholds for quota decisions.
const (
	// ThresholdCritical blocks upstream requests when the remaining quota
	// falls below this value. The proxy then serves from cache only.
	ThresholdCritical = 3

	// ThresholdWarning marks the quota as degraded; requests still pass
	// but the state is logged at warn level.
	ThresholdWarning = 20
)

// defaultHourlyLimit is assumed until the first upstream response is seen.
const defaultHourlyLimit = 1000

// QuotaState is the shared view of the upstream key quota. One state is
// shared by all proxy instances via Redis.
type QuotaState struct {
	// Remaining is the number of requests left in the current window,
	// from the X-RateLimit-Remaining header.
	Remaining int `json:"remaining"`

	// Limit is the window size, from the X-RateLimit-Limit header.
	Limit int `json:"limit"`

	// LastUpdate is when this state was last refreshed from headers.
	LastUpdate time.Time `json:"last_update"`
}

// Exhausted returns true when upstream requests must be blocked.
func (s *QuotaState) Exhausted() bool {
	return s.Remaining < ThresholdCritical
}

// Degraded returns true when the quota is running low but requests are
// still allowed.
func (s *QuotaState) Degraded() bool {
	return s.Remaining < ThresholdWarning && !s.Exhausted()
}

// IsStale returns true if the state is older than maxAge. NASA quota
// windows are hourly, so stale state is treated as recovered.
func (s *QuotaState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}
