package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"securehire/internal/infrastructure/ratelimit"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
	"securehire/pkg/response"
)

// RateLimit applies limiter's policy for action per caller, keyed by uid when
// authenticated and by client IP otherwise.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := UserID(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, wait := limiter.Allow(key, action)
			if !allowed {
				logger.Warn("RATE LIMIT: %s blocked on %s for %v", key, action, wait)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded"))
			}

			return next(c)
		}
	}
}
