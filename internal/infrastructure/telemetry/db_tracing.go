package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures GORM span instrumentation
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include bind variables in db.statement
	SlowQueryThresh time.Duration // default 200ms
	DBName          string
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db plus a callback that flags
// slow statements on the active span and in the log
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	start := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	finish := func(tx *gorm.DB) {
		observeSlowQuery(tx, cfg.SlowQueryThresh, logger)
	}

	cb := db.Callback()
	steps := []struct {
		name   string
		before func(string) error
		after  func(string) error
	}{
		{"create", func(n string) error { return cb.Create().Before("gorm:create").Register(n, start) }, func(n string) error { return cb.Create().After("gorm:create").Register(n, finish) }},
		{"query", func(n string) error { return cb.Query().Before("gorm:query").Register(n, start) }, func(n string) error { return cb.Query().After("gorm:query").Register(n, finish) }},
		{"update", func(n string) error { return cb.Update().Before("gorm:update").Register(n, start) }, func(n string) error { return cb.Update().After("gorm:update").Register(n, finish) }},
		{"delete", func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, start) }, func(n string) error { return cb.Delete().After("gorm:delete").Register(n, finish) }},
		{"row", func(n string) error { return cb.Row().Before("gorm:row").Register(n, start) }, func(n string) error { return cb.Row().After("gorm:row").Register(n, finish) }},
		{"raw", func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, start) }, func(n string) error { return cb.Raw().After("gorm:raw").Register(n, finish) }},
	}
	for _, s := range steps {
		if err := s.before("procurement:timing_before_" + s.name); err != nil {
			return err
		}
		if err := s.after("procurement:timing_after_" + s.name); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

// observeSlowQuery returns the elapsed time of the statement, or zero when
// the start time was not recorded.
func observeSlowQuery(tx *gorm.DB, thresh time.Duration, logger *zap.Logger) time.Duration {
	ctx := tx.Statement.Context
	if ctx == nil {
		return 0
	}
	startedAt, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return 0
	}
	elapsed := time.Since(startedAt)
	if elapsed < thresh {
		return elapsed
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
	)
	logger.Warn("Slow query",
		zap.String("table", tx.Statement.Table),
		zap.Duration("duration", elapsed),
		zap.Duration("threshold", thresh),
		zap.Int64("rows_affected", tx.Statement.RowsAffected),
	)
	return elapsed
}
