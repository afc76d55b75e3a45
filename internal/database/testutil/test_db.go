// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/database"
)

// TestDBOption customises MustOpenTestDB.
type TestDBOption func(*options)

type options struct {
	migrate bool
	admin   *database.BootstrapAdmin
}

// WithAutoMigrate creates every table.
func WithAutoMigrate() TestDBOption {
	return func(o *options) { o.migrate = true }
}

// WithBootstrapAdmin creates every table and seeds admin.
func WithBootstrapAdmin(admin database.BootstrapAdmin) TestDBOption {
	return func(o *options) {
		o.migrate = true
		o.admin = &admin
	}
}

// MustOpenTestDB opens a private in-memory database named after the test. It
// is closed through t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, t.Name()) + "_" + uuid.NewString()[:8]
	db, err := database.Open(database.Config{
		Driver: "sqlite",
		DSN:    "file:" + name + "?mode=memory&cache=shared&_foreign_keys=1",
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	switch {
	case o.admin != nil:
		require.NoError(t, database.AutoMigrateAndSeed(db, *o.admin))
	case o.migrate:
		require.NoError(t, database.AutoMigrate(db))
	}
	return db
}
