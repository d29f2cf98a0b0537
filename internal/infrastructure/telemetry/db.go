package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQuery = 200 * time.Millisecond

type queryStartKey struct{}

// gormRegistrar is the Register half of a GORM callback chain.
type gormRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

type gormStage struct {
	op     string
	before gormRegistrar
	after  gormRegistrar
}

// gormStages lists the six GORM processors. When finish is set, each after
// hook runs ahead of the callback finish(op) names.
func gormStages(db *gorm.DB, finish func(op string) string) []gormStage {
	cb := db.Callback()
	end := func(op string) string {
		if finish == nil {
			return ""
		}
		return finish(op)
	}
	return []gormStage{
		{"create", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create").Before(end("create"))},
		{"query", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query").Before(end("query"))},
		{"update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update").Before(end("update"))},
		{"delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete").Before(end("delete"))},
		{"row", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row").Before(end("row"))},
		{"raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw").Before(end("raw"))},
	}
}

func registerStages(db *gorm.DB, prefix string, finish func(string) string, after func(op string) func(*gorm.DB)) error {
	for _, s := range gormStages(db, finish) {
		if err := s.before.Register(prefix+":before_"+s.op, markQueryStart); err != nil {
			return fmt.Errorf("register %s before %s: %w", prefix, s.op, err)
		}
		if err := s.after.Register(prefix+":after_"+s.op, after(s.op)); err != nil {
			return fmt.Errorf("register %s after %s: %w", prefix, s.op, err)
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
}

func queryElapsed(db *gorm.DB) (time.Duration, bool) {
	if db.Statement.Context == nil {
		return 0, false
	}
	start, ok := db.Statement.Context.Value(queryStartKey{}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// DBTracingConfig holds the database span settings.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // keep bound values in db.statement; never in production
	SlowQueryThresh time.Duration // 200ms when zero
	DBSystem        string
	TracerProvider  trace.TracerProvider // the global provider when nil
}

// DBTracingPlugin adds otelgorm client spans and annotates them with the
// table, rows affected and a slow_query flag.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin. Nothing is registered until
// RegisterOtelGorm.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = defaultSlowQuery
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm installs otelgorm and the annotation hooks on db.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}
	if err := registerStages(db, "ledger_trace", otelAfterHook, func(string) func(*gorm.DB) {
		return p.annotate
	}); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

// otelAfterHook names the otelgorm callback that ends the span for op.
func otelAfterHook(op string) string {
	if op == "query" {
		op = "select"
	}
	return "otel:after:" + op
}

func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		RecordError(span, db.Error)
	}
	if elapsed, ok := queryElapsed(db); ok && elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}

// DBMetricsConfig holds the database metric settings.
type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration // 200ms when zero
}

// DBMetrics counts queries by operation, times them and observes the
// connection pool.
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	slowQuery      time.Duration
}

// RegisterDBMetrics installs query hooks on db and pool gauges on meter.
// It returns nil when disabled.
func RegisterDBMetrics(db *gorm.DB, meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = defaultSlowQuery
	}

	m := &DBMetrics{slowQuery: cfg.SlowQueryThreshold}
	var err error
	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Database queries slower than the threshold, by table", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if _, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			s := sqlDB.Stats()
			o.Observe(int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
			o.Observe(int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
			o.Observe(int64(s.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
			o.Observe(int64(s.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
			return nil
		}),
	); err != nil {
		return nil, fmt.Errorf("create pool gauge: %w", err)
	}

	if err := registerStages(db, "ledger_metrics", nil, func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) { m.observe(tx, op) }
	}); err != nil {
		return nil, err
	}

	logger.Info("Database metrics enabled", zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold))
	return m, nil
}

func (m *DBMetrics) observe(db *gorm.DB, stage string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	elapsed, _ := queryElapsed(db)
	m.RecordQuery(ctx, sqlOperation(stage, db.Statement.SQL.String()), db.Statement.Table, elapsed)
}

// RecordQuery records one executed statement.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, elapsed time.Duration) {
	op := AttrDBOperation.String(operation)
	m.queryTotal.Inc(ctx, op)
	m.queryDuration.RecordDuration(ctx, elapsed, op)
	if elapsed > m.slowQuery {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// sqlOperation names the statement kind. Row and raw statements are
// classified by their leading keyword.
func sqlOperation(stage, sql string) string {
	switch stage {
	case "create":
		return "INSERT"
	case "query":
		return "SELECT"
	case "update":
		return "UPDATE"
	case "delete":
		return "DELETE"
	}
	keyword, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	switch keyword = strings.ToUpper(keyword); keyword {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return keyword
	}
	return "OTHER"
}
