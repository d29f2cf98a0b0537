package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence"
	"github.com/sahelbuild/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// openRedis returns nil, without error, when Redis is unreachable outside
// production.
func openRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) (redis.UniversalClient, error) {
	addr := cfg.Redis.Addr()
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err := client.Ping(pingCtx).Err()
	switch {
	case err == nil:
		log.Info("Redis connected", zap.String("addr", addr))
		return client, nil
	case cfg.App.IsProduction():
		_ = client.Close()
		return nil, fmt.Errorf("redis %s is required in production: %w", addr, err)
	}
	log.Warn("Redis unavailable, keeping token revocations and idempotency keys in memory",
		zap.String("addr", addr), zap.Error(err))
	_ = client.Close()
	return nil, nil
}

// instrumentDatabase adds query spans and pool metrics. Either failing only
// costs visibility.
func instrumentDatabase(cfg *config.Config, db *persistence.Database, tel *telemetryProviders, log *zap.Logger) {
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := tracing.RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}

	_, err := telemetry.RegisterDBMetrics(db.DB, tel.meters.Meter("db.client"), telemetry.DBMetricsConfig{
		Enabled:            tel.meters.IsEnabled(),
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Warn("Database metrics unavailable", zap.Error(err))
	}
}
