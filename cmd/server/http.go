package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sahelbuild/backend/internal/infrastructure/cache"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence"
	"github.com/sahelbuild/backend/internal/interfaces/http/handler"
	"github.com/sahelbuild/backend/internal/interfaces/http/middleware"
	"github.com/sahelbuild/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// newEngine builds the gin engine with its middleware chain and every route
// group. The returned func releases what the routes hold.
func newEngine(cfg *config.Config, tel *telemetryProviders, svc *services, db *persistence.Database, rdb redis.UniversalClient, log *zap.Logger) (*gin.Engine, func(), error) {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, nil, err
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Ignoring trusted proxies", zap.Strings("proxies", cfg.HTTP.TrustedProxies), zap.Error(err))
		}
	}

	// Request ID and recovery wrap everything. Tracing sits before the JWT
	// check so rejected requests still get a span; the span attributes come
	// after it so the actor is known.
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled),
		logger.AccessLog(log),
		middleware.SecurityHeaders(cfg.HTTP.HSTSMaxAge),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins, cfg.HTTP.CORSAllowMethods, cfg.HTTP.CORSAllowHeaders),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
	)

	limits := cfg.HTTP
	if limits.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(limits.RateLimitRequests, limits.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", limits.RateLimitRequests),
			zap.Duration("window", limits.RateLimitWindow),
		)
	}

	authn := middleware.DefaultAuthConfig(svc.jwt)
	authn.Revocations = svc.revocations
	authn.Logger = log
	engine.Use(middleware.Authenticate(authn))
	if limits.RateLimitEnabled {
		// A depot behind one NAT shares an IP; past authentication each
		// operator or vehicle gets its own budget too.
		engine.Use(middleware.RateLimitByKey(
			middleware.NewRateLimiter(limits.RateLimitRequests, limits.RateLimitWindow),
			middleware.ActorOrIP))
	}
	engine.Use(middleware.SpanActor(), middleware.SpanStatus())
	if cfg.Telemetry.MetricsEnabled {
		engine.Use(middleware.HTTPMetrics(tel.meters))
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.ProfileLabels(cfg.App.Country, "/health"))
	}

	guards := handler.RouteGuards{
		Operator: middleware.RequireOperator(),
		Admin:    middleware.RequireAdmin(),
		Partner:  middleware.RequirePartner(),
	}
	release := func() {}
	if cfg.Idempotency.Enabled {
		store := cache.NewIdempotencyStore(rdb, cfg.Idempotency.KeyPrefix)
		release = func() { _ = store.Close() }
		guards.Idempotency = middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  store,
			TTL:    cfg.Idempotency.TTL,
			Logger: log,
		})
	}
	if limits.AuthRateLimitEnabled {
		guards.Login = middleware.AuthRateLimit(
			middleware.NewRateLimiter(limits.AuthRateLimitRequests, limits.AuthRateLimitWindow))
	}

	system := handler.NewSystemHandler(cfg.App.Name, version)
	system.AddCheck("database", db.Ping)
	if rdb != nil {
		system.AddCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	engine.GET("/health", system.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.ProcurementRoutes(handler.NewShipmentHandler(svc.shipments, svc.receptions), guards)).
		Register(handler.InventoryRoutes(handler.NewInventoryHandler(svc.stock), guards)).
		Register(handler.SalesRoutes(handler.NewSaleHandler(svc.sales, svc.receiptService()), guards)).
		Register(handler.FinanceRoutes(handler.NewFinanceHandler(svc.payments), guards)).
		Register(handler.PartnerRoutes(
			handler.NewCustomerHandler(svc.customers),
			handler.NewVehicleHandler(svc.vehicles),
			guards,
		)).
		Register(handler.ReportRoutes(handler.NewReportHandler(svc.reports), guards)).
		Register(handler.AuthRoutes(handler.NewAuthHandler(svc.auth), guards)).
		Register(handler.PortalRoutes(handler.NewPortalHandler(svc.portal), guards)).
		Register(handler.SystemRoutes(system))
	r.Setup()
	engine.GET(r.Prefix()+"/health", system.Health)
	log.Info("API routes mounted", zap.String("prefix", r.Prefix()), zap.Int("routes", len(r.Routes())))

	return engine, release, nil
}
