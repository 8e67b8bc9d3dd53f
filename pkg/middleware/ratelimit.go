package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
	"github.com/wyfcoding/velure/pkg/ratelimit"
)

// GinRateLimitMiddleware 按调用方限流，需挂在身份中间件之后才能按 owner 计数
func GinRateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := ratelimit.Subject{OwnerID: OwnerID(c.Request.Context()), ClientIP: c.ClientIP()}
		d, err := limiter.Check(c.Request.Context(), subject, c.Request.Method)
		if err != nil {
			// 限流器故障时放行
			logging.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(d.ResetAfter/time.Second), 10))

		if !d.Allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(d.RetryAfter/time.Second)+1, 10))
			response.ErrorWithStatus(c, http.StatusTooManyRequests, "Too many requests", d.RetryAfter.String())
			c.Abort()
			return
		}

		c.Next()
	}
}
