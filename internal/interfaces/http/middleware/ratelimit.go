package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"z-novel-writer/internal/infrastructure/persistence/redis"
	"z-novel-writer/internal/interfaces/http/dto"
	"z-novel-writer/pkg/logger"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP 与路由做分钟级限流，limiter 为 nil 或 perMinute<=0 时不限流
func RateLimit(limiter RateLimiter, scope string, perMinute int) gin.HandlerFunc {
	if limiter == nil || perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := redis.BuildRateLimitKey(c.ClientIP(), scope)

		allowed, err := limiter.Allow(c.Request.Context(), key, perMinute, time.Minute)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Code:    http.StatusTooManyRequests,
				Message: "rate limit exceeded",
				TraceID: c.GetString("trace_id"),
			})
			return
		}

		c.Next()
	}
}
