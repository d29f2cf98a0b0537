package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Keys on the gin context shared with the HTTP middleware.
const (
	KeyRequestID = "request_id"
	KeyActor     = "actor"
	KeyLogger    = "logger"
)

// AccessLog writes one entry per request once the handlers have run, so the
// actor set by authentication further down the chain is included. The
// request logger it builds is also put on the request context.
func AccessLog(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		ctx, l := WithRequestID(c.Request.Context(), base, c.GetString(KeyRequestID))
		if id := GetTraceID(ctx); id != "" {
			l = l.With(zap.String("trace_id", id))
			ctx = WithContext(ctx, l)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Set(KeyLogger, l)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(began)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("bytes", max(c.Writer.Size(), 0)),
		}
		if route := c.FullPath(); route != "" {
			fields = append(fields, zap.String("route", route))
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if actor := c.GetString(KeyActor); actor != "" {
			fields = append(fields, zap.String("actor", actor))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}
		l.Log(levelFor(status), "HTTP request", fields...)
	}
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Recovery turns a handler panic into a 500 envelope and logs it with the
// stack. Nothing is written when the handler already sent its headers.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			base.Error("Panic recovered",
				zap.String("request_id", c.GetString(KeyRequestID)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "ERR_INTERNAL", "message": "An internal error occurred"},
			})
		}()
		c.Next()
	}
}

// FromGin returns the request logger AccessLog stored, or a no-op logger.
func FromGin(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(KeyLogger); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
