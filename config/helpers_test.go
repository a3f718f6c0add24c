package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB opens an empty SQLite database in a temporary directory.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDatabase(AppConfig{
		DatabaseDriver: DriverSQLite,
		DatabasePath:   filepath.Join(t.TempDir(), "forum.db"),
		LogLevel:       "silent",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
