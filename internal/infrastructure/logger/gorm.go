package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig tunes the query logger handed to gorm.
type GormConfig struct {
	// Level is the application log level; see GormLevel.
	Level         string
	SlowThreshold time.Duration
	// LogSQL adds statements to entries. Statements carry customer names
	// and phone numbers, so production leaves it off.
	LogSQL bool
}

// GormLogger writes gorm's query trace through zap, tagged with the request
// and actor found on the statement context.
type GormLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
	sql   bool
}

func NewGormLogger(base *zap.Logger, cfg GormConfig) *GormLogger {
	return &GormLogger{
		log:   base.Named("gorm").WithOptions(zap.AddCallerSkip(3)),
		level: GormLevel(cfg.Level),
		slow:  cfg.SlowThreshold,
		sql:   cfg.LogSQL,
	}
}

// GormLevel maps an application log level onto gorm's. Debug and info both
// trace every statement; anything unknown traces failures and slow queries.
func GormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	}
	return gormlogger.Warn
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.Sugar().Infof(msg, args...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Sugar().Warnf(msg, args...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.Sugar().Errorf(msg, args...)
	}
}

// Trace logs one finished statement. A missing row is an ordinary lookup
// result for the ledger and is never logged as an error.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.slow > 0 && elapsed > l.slow

	switch {
	case failed && l.level >= gormlogger.Error:
		l.log.Error("Query failed", append(l.fields(ctx, elapsed, fc), zap.Error(err))...)
	case slow && l.level >= gormlogger.Warn:
		l.log.Warn("Slow query", append(l.fields(ctx, elapsed, fc), zap.Duration("threshold", l.slow))...)
	case l.level >= gormlogger.Info:
		l.log.Debug("Query", l.fields(ctx, elapsed, fc)...)
	}
}

func (l *GormLogger) fields(ctx context.Context, elapsed time.Duration, fc func() (string, int64)) []zap.Field {
	stmt, rows := fc()
	fields := make([]zap.Field, 0, 6)
	fields = append(fields, zap.Duration("elapsed", elapsed), zap.Int64("rows", rows))
	if l.sql {
		fields = append(fields, zap.String("sql", stmt))
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if actor := GetActor(ctx); actor != "" {
		fields = append(fields, zap.String("actor", actor))
	}
	return fields
}

var _ gormlogger.Interface = (*GormLogger)(nil)
