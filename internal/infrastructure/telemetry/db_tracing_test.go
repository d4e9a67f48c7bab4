package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE traced_rows (id INTEGER PRIMARY KEY, name TEXT)").Error)
	return db
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{}, nil))
	assert.Nil(t, db.Callback().Query().Get("procurement:timing_before_query"))
}

func TestRegisterDBTracing_FlagsSlowQueries(t *testing.T) {
	db := openTestDB(t)
	core, logs := observer.New(zap.WarnLevel)

	err := RegisterDBTracing(db, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
		DBName:          "test",
	}, zap.New(core))
	require.NoError(t, err)

	require.NoError(t, db.Create(&tracedRow{Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.Find(&rows).Error)
	assert.Len(t, rows, 1)

	assert.GreaterOrEqual(t, logs.FilterMessage("Slow query").Len(), 2)
}
