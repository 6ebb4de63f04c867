package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	limiters *xsync.MapOf[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
	log      *logrus.Logger
}

// NewRateLimiter creates a limiter allowing requestsPerSecond on average with
// bursts of up to burst requests per client.
func NewRateLimiter(requestsPerSecond float64, burst int, log *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: xsync.NewMapOf[string, *rate.Limiter](),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		log:      log,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	l, _ := rl.limiters.LoadOrCompute(key, func() *rate.Limiter {
		return rate.NewLimiter(rl.rate, rl.burst)
	})
	return l
}

// cleanup drops every bucket once more than maxClients are tracked. Clients
// start again from a full burst.
func (rl *RateLimiter) cleanup(maxClients int) {
	if rl.limiters.Size() > maxClients {
		rl.limiters.Clear()
	}
}

// StartCleanup bounds the bucket table until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration, maxClients int) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanup(maxClients)
			}
		}
	}()
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if !rl.limiter(key).Allow() {
				rl.log.WithFields(logrus.Fields{
					"remote_ip": key,
					"path":      c.Path(),
					"method":    c.Request().Method,
				}).Warn("rate limit exceeded")
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
