package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/snake-talk/internal/config"
)

// 内存库必须收敛到单连接，否则每个连接各自一张空库
func testConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:          "sqlite",
		DSN:             ":memory:",
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
		LogLevel:        "silent",
		AutoMigrate:     true,
	}
}

func TestInitRunsMigration(t *testing.T) {
	require.NoError(t, Init(testConfig()))
	defer Close()

	require.True(t, IsConnected())

	// Init按配置完成建表，调用方无需再跑一次迁移
	m := GetDB().Migrator()
	require.True(t, m.HasTable("sessions"))
	require.True(t, m.HasTable("turn_records"))
}

func TestInitRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Driver = "oracle"
	require.Error(t, Init(cfg))
}
