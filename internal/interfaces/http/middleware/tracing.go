package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps request IDs taken from headers.
const MaxRequestIDLength = 128

// Tracing opens a server span per request, named "METHOD route".
func Tracing(service string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return otelgin.Middleware(service)
}

// SpanActor tags the request span with the request ID and, once the token
// has been checked, the actor and role. It belongs after Authenticate.
func SpanActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			attrs := make([]attribute.KeyValue, 0, 3)
			if id := getRequestID(c); id != "" {
				attrs = append(attrs, attribute.String("request_id", id))
			}
			if actor := GetActor(c); actor != "" {
				attrs = append(attrs, attribute.String("actor", actor), attribute.String("actor.role", GetActorRole(c)))
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}

// SpanStatus marks the span failed for any 4xx or 5xx answer; otelgin alone
// only flags server errors. otelgin records errors attached with c.Error
// itself.
func SpanStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		status := c.Writer.Status()
		if !span.IsRecording() || status < http.StatusBadRequest {
			return
		}
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// getRequestID prefers the ID stored by RequestID and falls back to the
// header, truncated.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	id := c.GetHeader(RequestIDHeader)
	return id[:min(len(id), MaxRequestIDLength)]
}
