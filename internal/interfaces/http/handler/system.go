package handler

import (
	"context"
	"maps"
	"net/http"
	"runtime"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// SystemHandler serves /health and /system.
type SystemHandler struct {
	BaseHandler
	name    string
	version string
	started time.Time
	checks  map[string]HealthCheck
}

func NewSystemHandler(name, version string) *SystemHandler {
	return &SystemHandler{name: name, version: version, started: time.Now(), checks: map[string]HealthCheck{}}
}

// AddCheck registers a probe run by Health. A later check with the same
// name replaces the earlier one.
func (h *SystemHandler) AddCheck(name string, check HealthCheck) *SystemHandler {
	h.checks[name] = check
	return h
}

type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// HealthResponse reports each check as "ok" or "error"; the cause is only
// logged.
type HealthResponse struct {
	Status string            `json:"status"`
	Time   string            `json:"time"`
	Checks map[string]string `json:"checks"`
}

type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	})
}

// Health runs every check concurrently, each under its own deadline, and
// answers 503 if any fails.
func (h *SystemHandler) Health(c *gin.Context) {
	names := slices.Sorted(maps.Keys(h.checks))
	failures := make([]error, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()
			failures[i] = h.checks[name](ctx)
			return nil
		})
	}
	_ = g.Wait()

	resp := HealthResponse{Status: "healthy", Time: time.Now().Format(time.RFC3339), Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for i, name := range names {
		resp.Checks[name] = "ok"
		if err := failures[i]; err != nil {
			logger.FromGin(c).Warn("Health check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = "error"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, resp)
}

func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{Message: "pong", Timestamp: time.Now().Format(time.RFC3339)})
}
