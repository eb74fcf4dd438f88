package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the threshold above which queries log at warn
const DefaultSlowQuery = 200 * time.Millisecond

// GormLogger routes gorm output through zap
type GormLogger struct {
	logger    *zap.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
	// logSQL includes statement text; off in production
	logSQL bool
}

// NewGormLogger creates a gorm logger at the given level
func NewGormLogger(l *zap.Logger, level gormlogger.LogLevel, slowQuery time.Duration, logSQL bool) *GormLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &GormLogger{
		logger:    l.Named("gorm"),
		level:     level,
		slowQuery: slowQuery,
		logSQL:    logSQL,
	}
}

// LogMode implements gormlogger.Interface
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Info {
		Enrich(ctx, g.logger).Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Warn {
		Enrich(ctx, g.logger).Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Error {
		Enrich(ctx, g.logger).Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface. Record-not-found is expected
// control flow for repositories and is never logged.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{zap.Duration("elapsed", elapsed), zap.Int64("rows", rows)}
	if g.logSQL {
		fields = append(fields, zap.String("sql", sql))
	}
	l := Enrich(ctx, g.logger)

	switch {
	case err != nil && g.level >= gormlogger.Error:
		if errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		l.Error("sql error", append(fields, zap.Error(err))...)
	case g.slowQuery > 0 && elapsed > g.slowQuery && g.level >= gormlogger.Warn:
		l.Warn("slow sql", append(fields, zap.Duration("threshold", g.slowQuery))...)
	case g.level >= gormlogger.Info:
		l.Debug("sql", fields...)
	}
}

// GormLevel maps a log level name onto gorm's levels
func GormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
