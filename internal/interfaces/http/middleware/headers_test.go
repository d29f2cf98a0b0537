package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serveWith(mw gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(mw)
	router.GET("/sales", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func fromOrigin(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/sales", nil)
	req.Header.Set("Origin", origin)
	return req
}

func TestSecurityHeaders(t *testing.T) {
	w := serveWith(SecurityHeaders(0), httptest.NewRequest(http.MethodGet, "/sales", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Contains(t, w.Header().Get("Permissions-Policy"), "camera=()")
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	w = serveWith(SecurityHeaders(24*time.Hour), httptest.NewRequest(http.MethodGet, "/sales", nil))
	assert.Equal(t, "max-age=86400; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
}

func TestCORS_NoOrigins(t *testing.T) {
	w := serveWith(CORS(nil, nil, nil), fromOrigin(http.MethodGet, "http://elsewhere.example"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS(t *testing.T) {
	mw := CORS([]string{"http://localhost:3000", "https://back-office.sahel.example"}, nil, nil)

	t.Run("listed origin", func(t *testing.T) {
		w := serveWith(mw, fromOrigin(http.MethodGet, "https://back-office.sahel.example"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://back-office.sahel.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("other origin", func(t *testing.T) {
		w := serveWith(mw, fromOrigin(http.MethodGet, "http://evil.example"))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := fromOrigin(http.MethodOptions, "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := serveWith(mw, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})
}

func TestCORS_Wildcard(t *testing.T) {
	w := serveWith(CORS([]string{"*"}, []string{"GET"}, nil), fromOrigin(http.MethodGet, "http://anywhere.example"))

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCmpOr(t *testing.T) {
	assert.Equal(t, corsMethods, cmpOr(nil, corsMethods))
	assert.Equal(t, []string{"GET"}, cmpOr([]string{"GET"}, corsMethods))
}
