package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func query(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormLoggerOption
		begin   time.Time
		err     error
		wantMsg string
	}{
		{
			name:    "error",
			level:   gormlogger.Error,
			begin:   time.Now(),
			err:     errors.New("connection reset"),
			wantMsg: "SQL Error",
		},
		{
			name:    "slow statement",
			level:   gormlogger.Warn,
			opts:    []GormLoggerOption{WithSlowThreshold(time.Millisecond)},
			begin:   time.Now().Add(-time.Second),
			wantMsg: "SLOW SQL >= 1ms",
		},
		{
			name:    "plain statement at info",
			level:   gormlogger.Info,
			begin:   time.Now(),
			wantMsg: "SQL Query",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level, tt.opts...)

			gl.Trace(context.Background(), tt.begin, query("SELECT * FROM purchase_orders", 3), tt.err)

			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantMsg, entries[0].Message)
			assert.Equal(t, "SELECT * FROM purchase_orders", entries[0].ContextMap()["sql"])
		})
	}
}

func TestGormLogger_TraceSkips(t *testing.T) {
	t.Run("silent", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		NewGormLogger(zap.New(core), gormlogger.Silent).
			Trace(context.Background(), time.Now(), query("SELECT 1", 1), errors.New("boom"))
		assert.Empty(t, recorded.All())
	})

	t.Run("record not found", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		NewGormLogger(zap.New(core), gormlogger.Error).
			Trace(context.Background(), time.Now(), query("SELECT 1", 0), gorm.ErrRecordNotFound)
		assert.Empty(t, recorded.All())
	})

	t.Run("record not found reported when not ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		NewGormLogger(zap.New(core), gormlogger.Error, WithIgnoreRecordNotFoundError(false)).
			Trace(context.Background(), time.Now(), query("SELECT 1", 0), gorm.ErrRecordNotFound)
		assert.Len(t, recorded.All(), 1)
	})
}

func TestGormLogger_TraceCarriesContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)
	ctx := WithTenantID(WithRequestID(context.Background(), "req-9"), "tenant-9")

	gl.Trace(ctx, time.Now(), query("SELECT 1", 1), nil)

	require.Len(t, recorded.All(), 1)
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "tenant-9", fields["tenant_id"])
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)
	quiet := gl.LogMode(gormlogger.Silent).(*GormLogger)

	assert.Equal(t, gormlogger.Silent, quiet.level)
	assert.Equal(t, gormlogger.Warn, gl.level)
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	sql, params := NewGormLogger(zap.NewNop(), gormlogger.Info, WithParameterizedQueries(true)).
		ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)

	_, params = NewGormLogger(zap.NewNop(), gormlogger.Info).ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Equal(t, []any{1}, params)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}

var _ gormlogger.Interface = (*GormLogger)(nil)
