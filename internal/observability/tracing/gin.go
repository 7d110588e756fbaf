package tracing

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// GinMiddleware opens a server span per request, continuing any trace
// carried in the request headers.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("netkamba/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		name := "HTTP " + strings.ToUpper(c.Request.Method) + " " + route
		ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		)...)

		if len(c.Errors) > 0 {
			if safeErr := SafeError(c.Errors.Last().Err); safeErr != nil {
				span.RecordError(safeErr)
			}
		}
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
		span.End()
	}
}
