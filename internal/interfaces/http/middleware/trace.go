package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"z-novel-writer/pkg/logger"
	"z-novel-writer/pkg/tracer"
)

// Trace OpenTelemetry 追踪中间件
func Trace(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceContext 将 trace_id / span_id 注入日志上下文与响应头
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if traceID := tracer.TraceID(c.Request.Context()); traceID != "" {
			spanID := tracer.SpanID(c.Request.Context())

			c.Set("trace_id", traceID)
			ctx := logger.WithContext(c.Request.Context(), logger.TraceIDKey, traceID)
			ctx = logger.WithContext(ctx, logger.SpanIDKey, spanID)
			c.Request = c.Request.WithContext(ctx)
			c.Header("X-Trace-ID", traceID)
		}

		c.Next()
	}
}

// BookContext 将路径中的书籍 ID 注入日志上下文
func BookContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if bid := c.Param("bid"); bid != "" {
			ctx := logger.WithContext(c.Request.Context(), logger.BookIDKey, bid)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
