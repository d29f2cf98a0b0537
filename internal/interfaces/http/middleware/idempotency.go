package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength   = 128
)

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency makes a retried request carrying the same Idempotency-Key a
// no-op: the first successful response is stored and replayed. Keys are
// scoped to the authenticated actor. Failed requests release the key so the
// client can retry. Store errors fail open.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return passThrough
	}
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyTTL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abort(c, http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY", "Idempotency-Key is too long")
			return
		}

		ctx := c.Request.Context()
		storeKey := c.Request.Method + ":" + c.FullPath() + ":" + GetActor(c) + ":" + key

		fresh, err := cfg.Store.Reserve(ctx, storeKey, cfg.TTL)
		if err != nil {
			log.Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			replay(c, cfg, log, storeKey)
			return
		}

		writer := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			if err := cfg.Store.Release(ctx, storeKey); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
			return
		}
		payload, err := json.Marshal(storedResponse{
			Status:      status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		})
		if err == nil {
			err = cfg.Store.Complete(ctx, storeKey, payload, cfg.TTL)
		}
		if err != nil {
			log.Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

func replay(c *gin.Context, cfg IdempotencyConfig, log *zap.Logger, storeKey string) {
	payload, ok, err := cfg.Store.Lookup(c.Request.Context(), storeKey)
	if err != nil {
		log.Warn("Failed to load idempotent response", zap.Error(err))
	}
	var stored storedResponse
	if ok && err == nil && json.Unmarshal(payload, &stored) == nil {
		c.Header(IdempotencyReplayedHeader, "true")
		c.Data(stored.Status, stored.ContentType, stored.Body)
		c.Abort()
		return
	}
	abort(c, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this Idempotency-Key is still being processed")
}
