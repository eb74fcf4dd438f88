package middleware

import (
	"net/http"

	"github.com/JIGLE/proman-sub000/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig configures the tracing middleware
type TracingConfig struct {
	ServiceName string
	SkipPaths   []string
}

// Tracing wraps otelgin and tags the server span with the request id
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	return otelgin.Middleware(cfg.ServiceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			_, skipped := skip[r.URL.Path]
			return !skipped
		}),
	)
}

// TraceUser tags the active span with the authenticated user.
// Registered after Auth so the user id is known.
func TraceUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if userID, ok := GetUserID(c); ok {
				span.SetAttributes(attribute.String(telemetry.AttrUserID, userID.String()))
			}
			if requestID := GetRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("http.request_id", requestID))
			}
		}
		c.Next()
	}
}
