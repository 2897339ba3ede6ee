package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	quotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nasa_quota_remaining",
		Help: "Requests remaining in the current NASA API key window",
	})

	quotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nasa_quota_blocks_total",
		Help: "Total number of upstream requests blocked due to exhausted quota",
	})
)

// staleAfter is how long header-derived state stays authoritative.
// The quota window is hourly; older state is assumed recovered.
const staleAfter = time.Hour

// Tracker monitors the upstream key quota and gates outbound requests.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a quota tracker backed by Redis.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the current quota state from Redis.
// Returns a healthy default when no state has been recorded yet.
func (t *Tracker) GetState(ctx context.Context) (*QuotaState, error) {
	remaining, err := t.redis.Get(ctx, RedisKeyRemaining).Int()
	if err != nil {
		if err == redis.Nil {
			return t.defaultState(), nil
		}
		return nil, fmt.Errorf("get quota remaining: %w", err)
	}

	limit, err := t.redis.Get(ctx, RedisKeyLimit).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get quota limit: %w", err)
	}
	if limit == 0 {
		limit = defaultHourlyLimit
	}

	lastUpdateUnix, err := t.redis.Get(ctx, RedisKeyLastUpdate).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get quota last update: %w", err)
	}

	state := &QuotaState{
		Remaining:  remaining,
		Limit:      limit,
		LastUpdate: time.Unix(lastUpdateUnix, 0),
	}

	if state.IsStale(staleAfter) {
		t.logger.Debug().Msg("Quota state stale, assuming window rolled over")
		return t.defaultState(), nil
	}

	return state, nil
}

// UpdateFromHeaders parses NASA rate limit headers and updates Redis state.
// Responses without quota headers (the images API sends none) are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get("X-RateLimit-Remaining")
	if remainStr == "" {
		return nil
	}

	remaining, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse X-RateLimit-Remaining header: %w", err)
	}

	limit := defaultHourlyLimit
	if limitStr := headers.Get("X-RateLimit-Limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	now := time.Now()
	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyRemaining, remaining, staleAfter)
	pipe.Set(ctx, RedisKeyLimit, limit, staleAfter)
	pipe.Set(ctx, RedisKeyLastUpdate, now.Unix(), staleAfter)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store quota state in redis: %w", err)
	}

	quotaRemaining.Set(float64(remaining))

	state := &QuotaState{Remaining: remaining, Limit: limit, LastUpdate: now}
	switch {
	case state.Exhausted():
		t.logger.Error().
			Int("remaining", remaining).
			Int("limit", limit).
			Msg("NASA key quota exhausted - upstream requests will be blocked")
	case state.Degraded():
		t.logger.Warn().
			Int("remaining", remaining).
			Int("limit", limit).
			Msg("NASA key quota running low")
	default:
		t.logger.Debug().
			Int("remaining", remaining).
			Int("limit", limit).
			Msg("NASA key quota updated")
	}

	return nil
}

// ShouldAllowRequest reports whether an upstream request may proceed.
// Fails open: if Redis is unreachable the request is allowed, since the
// quota gate is an optimization, not the authority.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) bool {
	state, err := t.GetState(ctx)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Quota state unavailable, allowing request")
		return true
	}

	if state.Exhausted() {
		t.logger.Error().
			Int("remaining", state.Remaining).
			Msg("Blocking upstream request: quota exhausted")
		quotaBlocksTotal.Inc()
		return false
	}

	return true
}

func (t *Tracker) defaultState() *QuotaState {
	return &QuotaState{
		Remaining:  defaultHourlyLimit,
		Limit:      defaultHourlyLimit,
		LastUpdate: time.Now(),
	}
}
