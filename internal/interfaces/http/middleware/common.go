package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"github.com/sahelbuild/backend/internal/interfaces/http/dto"
)

const (
	RequestIDKey    = logger.KeyRequestID
	RequestIDHeader = "X-Request-ID"
)

func passThrough(c *gin.Context) { c.Next() }

// abort ends the request with the standard error envelope.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.Fail(code, message, getRequestID(c)))
}

// RequestID keeps the caller's X-Request-ID, or mints a UUID when it is
// missing or too long, and threads it through the logger context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > MaxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		ctx, _ := logger.WithRequestID(c.Request.Context(), logger.FromContext(c.Request.Context()), id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Timeout puts a deadline on the request context. Repositories observe it;
// a response already being written is left alone.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return passThrough
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
