// Package ratelimit implements per-IP rate limiting using Redis or local
// memory, backing the WS connect path and the admin HTTP endpoints.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/RoseWrightdev/rtc-signal/internal/config"
	"github.com/RoseWrightdev/rtc-signal/internal/logging"
	"github.com/RoseWrightdev/rtc-signal/internal/metrics"
)

// RateLimiter holds the rate limiter instances for the signaling server.
// There is no concept of an authenticated user in this protocol — every
// limiter is keyed by client IP.
type RateLimiter struct {
	wsIP    *limiter.Limiter
	adminIP *limiter.Limiter
	store   limiter.Store
}

// NewRateLimiter creates a new RateLimiter. redisClient may be nil, in
// which case an in-memory store is used (suitable for a single instance).
func NewRateLimiter(cfg *config.Config, redisClient *redis.Client) (*RateLimiter, error) {
	wsIPRate, err := limiter.NewRateFromFormatted(cfg.RateLimitWsIP)
	if err != nil {
		return nil, fmt.Errorf("invalid WS IP rate: %w", err)
	}

	adminIPRate, err := limiter.NewRateFromFormatted(cfg.RateLimitAdminIP)
	if err != nil {
		return nil, fmt.Errorf("invalid admin IP rate: %w", err)
	}

	var store limiter.Store
	if redisClient != nil {
		s, err := sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "rtc-signal:ratelimit:",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		store = s
		logging.Info(context.Background(), "rate limiter using redis store")
	} else {
		store = memory.NewStore()
		logging.Warn(context.Background(), "rate limiter using memory store (redis disabled)")
	}

	return &RateLimiter{
		wsIP:    limiter.New(store, wsIPRate),
		adminIP: limiter.New(store, adminIPRate),
		store:   store,
	}, nil
}

// AdminMiddleware enforces the per-IP admin endpoint limit.
func (rl *RateLimiter) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()

		lc, err := rl.adminIP.Get(ctx, "admin:"+ip)
		if err != nil {
			logging.Error(ctx, "rate limiter store failed", zap.Error(err))
			c.Next() // fail open
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))

		if lc.Reached {
			metrics.RateLimitExceeded.WithLabelValues(c.FullPath(), "ip").Inc()
			c.Header("Retry-After", strconv.FormatInt(lc.Reset-time.Now().Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests",
				"retry_after": lc.Reset,
			})
			return
		}

		metrics.RateLimitRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// CheckWebSocket enforces the per-IP WS connection attempt limit. Returns
// true if the connection attempt should be allowed; on rejection it writes
// the HTTP error response itself (the upgrade has not happened yet).
func (rl *RateLimiter) CheckWebSocket(c *gin.Context) bool {
	ctx := c.Request.Context()
	ip := c.ClientIP()

	lc, err := rl.wsIP.Get(ctx, "ws:"+ip)
	if err != nil {
		logging.Error(ctx, "WS rate limiter store failed", zap.Error(err))
		return true // fail open
	}

	if lc.Reached {
		metrics.RateLimitExceeded.WithLabelValues("ws_connect", "ip").Inc()
		c.Header("Retry-After", strconv.FormatInt(lc.Reset-time.Now().Unix(), 10))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many connection attempts from this IP"})
		return false
	}

	metrics.RateLimitRequests.WithLabelValues("ws_connect").Inc()
	return true
}
