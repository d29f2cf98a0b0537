package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sahelbuild/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// labelsSeen serves path behind ProfileLabels and returns the pprof labels
// the handler ran with.
func labelsSeen(t *testing.T, mw gin.HandlerFunc, method, route, path string) map[string]string {
	t.Helper()
	r := gin.New()
	r.Use(mw)
	seen := map[string]string{}
	r.Handle(method, route, func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(k, v string) bool {
			seen[k] = v
			return true
		})
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	return seen
}

func TestProfileLabels(t *testing.T) {
	got := labelsSeen(t, middleware.ProfileLabels("CM"),
		http.MethodPost, "/api/v1/shipments/:id/expenses", "/api/v1/shipments/5f0c/expenses")

	assert.Equal(t, map[string]string{
		"controller": "shipments",
		"route":      "/api/v1/shipments/:id/expenses",
		"method":     "POST",
		"country":    "CM",
	}, got)
}

func TestProfileLabels_Unlabelled(t *testing.T) {
	got := labelsSeen(t, middleware.ProfileLabels("NG", "/health"), http.MethodGet, "/health", "/health")
	assert.Empty(t, got)
}
