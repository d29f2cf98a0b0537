package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sahelbuild/backend/internal/infrastructure/telemetry"
)

// ProfileLabels tags each request goroutine with pyroscope labels so CPU
// profiles split by resource, route, method and market. Routes in unlabelled
// (health probes, typically) run without labels.
func ProfileLabels(country string, unlabelled ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(unlabelled))
	for _, p := range unlabelled {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := skip[route]; ok || route == "" {
			c.Next()
			return
		}
		labels := telemetry.HTTPRequestLabels(resourceOf(route), route, c.Request.Method, country)
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceOf picks the first literal segment after /api/vN:
// "/api/v1/shipments/:id/expenses" is "shipments".
func resourceOf(route string) string {
	rest := strings.TrimPrefix(route, "/")
	if after, ok := strings.CutPrefix(rest, "api/"); ok {
		rest = after
		if version, tail, _ := strings.Cut(rest, "/"); isAPIVersion(version) {
			rest = tail
		}
	}
	head, _, _ := strings.Cut(rest, "/")
	if head == "" || head[0] == ':' || head[0] == '*' {
		return ""
	}
	return head
}

func isAPIVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	return strings.Trim(s[1:], "0123456789") == ""
}
