package middleware

import (
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	contentSecurityPolicy = "default-src 'self'; img-src 'self' data:; frame-ancestors 'none'; base-uri 'self'; form-action 'self'"
	permissionsPolicy     = "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()"
)

var (
	corsMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsHeaders = []string{"Accept", "Authorization", "Cache-Control", "Content-Type", "Origin", RequestIDHeader, IdempotencyKeyHeader}
	corsExposed = []string{RequestIDHeader, "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
)

// SecurityHeaders sets the browser hardening headers on every response.
// Strict-Transport-Security is only sent when hsts is positive.
func SecurityHeaders(hsts time.Duration) gin.HandlerFunc {
	var sts string
	if hsts > 0 {
		sts = "max-age=" + strconv.FormatInt(int64(hsts/time.Second), 10) + "; includeSubDomains"
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("Permissions-Policy", permissionsPolicy)
		if sts != "" {
			h.Set("Strict-Transport-Security", sts)
		}
		c.Next()
	}
}

// CORS admits the back-office origins. No origins means no cross-origin
// access at all; "*" admits any origin without credentials. Empty methods or
// headers fall back to what the API uses.
func CORS(origins, methods, headers []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return passThrough
	}
	cfg := cors.Config{
		AllowMethods:     cmpOr(methods, corsMethods),
		AllowHeaders:     cmpOr(headers, corsHeaders),
		ExposeHeaders:    corsExposed,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func cmpOr(v, fallback []string) []string {
	if len(v) == 0 {
		return fallback
	}
	return v
}
