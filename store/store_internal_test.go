package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingWriter struct {
	lines []string
}

func (w *recordingWriter) Printf(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func TestLoggerSkipsMissesButKeepsFailures(t *testing.T) {
	w := &recordingWriter{}
	db, err := gorm.Open(sqlite.Open("file:TestLoggerSkipsMisses?mode=memory&cache=shared"), configWithLogger(w))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(db))
	w.lines = nil

	s := New(db)
	ctx := context.Background()
	_, err = s.FindByPaymentID(ctx, "pi_missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindExecByID(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, w.lines)

	require.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	assert.NotEmpty(t, w.lines)
}
