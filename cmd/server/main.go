// Command server runs the landed-cost and receivables ledger API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahelbuild/backend/internal/infrastructure/auth"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence"
	"github.com/sahelbuild/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const logTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ledger:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logTimeFormat,
		Service:    cfg.App.Name,
		Country:    cfg.App.Country,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting ledger backend",
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
		zap.String("country", cfg.App.Country),
		zap.String("currency", cfg.App.Currency),
	)

	tel := setupTelemetry(ctx, cfg, log)
	defer tel.shutdown(log)
	log = telemetry.BridgeLogger(log, tel.logs, cfg.Telemetry.ServiceName)

	db, err := persistence.Open(&cfg.Database, logger.NewGormLogger(log, logger.GormConfig{
		Level:         cfg.Log.Level,
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		LogSQL:        !cfg.App.IsProduction(),
	}))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.DBName))
	instrumentDatabase(cfg, db, tel, log)

	// Redis backs token revocation and payment idempotency. Outside
	// production both fall back to process memory when it is down.
	redisClient, err := openRedis(ctx, cfg, log)
	if err != nil {
		return err
	}
	var revocations auth.RevocationList = auth.NewMemoryRevocationList()
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		revocations = auth.NewRedisRevocationList(redisClient)
	}

	svc, err := newServices(cfg, db, tel, revocations, log)
	if err != nil {
		return err
	}
	defer svc.close()

	engine, closeEngine, err := newEngine(cfg, tel, svc, db, redisClient, log)
	if err != nil {
		return err
	}
	defer closeEngine()

	return serve(ctx, &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}, cfg.HTTP.ShutdownTimeout, log)
}

// serve runs srv until ctx ends, then drains it for at most grace.
func serve(ctx context.Context, srv *http.Server, grace time.Duration, log *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down", zap.Duration("grace", grace))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("drain connections: %w", err)
		}
		log.Info("Server stopped")
		return nil
	})
	return g.Wait()
}
