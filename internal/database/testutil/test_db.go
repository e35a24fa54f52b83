package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/riverwatchhq/riverwatch/internal/database"
)

// TestDBOption adjusts how MustOpenTestDB prepares the database.
type TestDBOption func(*options)

type options struct {
	migrate bool
}

// WithAutoMigrate applies the full schema after opening.
func WithAutoMigrate() TestDBOption {
	return func(o *options) { o.migrate = true }
}

// MustOpenTestDB opens a throwaway in-memory SQLite database and closes it
// via t.Cleanup. Failures abort the test.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db, err := database.Open(database.Config{Driver: "sqlite"})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if o.migrate {
		require.NoError(t, database.AutoMigrate(db))
	}

	return db
}
