package database

import (
	"path/filepath"
	"testing"

	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildDSN 测试 DSN 构建
func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(config.DatabaseConfig{
		Host: "db", Port: 5432, User: "bridge", Password: "pw", DBName: "ledger", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=bridge password=pw dbname=ledger sslmode=disable", dsn)
}

// TestGetPoolConfig 测试连接池默认值
func TestGetPoolConfig(t *testing.T) {
	pool := GetPoolConfig(config.DatabaseConfig{MaxOpenConns: 20})
	assert.Equal(t, 20, pool.MaxOpenConns)
	assert.Equal(t, 2, pool.MaxIdleConns)
	assert.Equal(t, 3600, pool.ConnMaxLifetime)
}

// TestConnect_UnsupportedDriver 测试未知驱动
func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

// TestConnectAndMigrate_SQLite 测试 SQLite 连接与迁移,重复迁移不报错
func TestConnectAndMigrate_SQLite(t *testing.T) {
	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable("submissions"))
	assert.True(t, db.Migrator().HasTable("audit_logs"))
	assert.True(t, CheckHealth(db))
	assert.False(t, CheckHealth(nil))
}
