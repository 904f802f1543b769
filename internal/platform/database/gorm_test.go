package database

import (
	"path/filepath"
	"testing"

	"smartkheti_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewGORM_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:       "sqlite",
		DBSQLitePath:   filepath.Join(t.TempDir(), "test.db"),
		DBMaxIdleConns: 1,
		DBMaxOpenConns: 1,
		LogLevel:       "error",
	}

	db, cleanup, err := NewGORM(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
