package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "Memory", cfg.Memory.Root)
	assert.Equal(t, 16, cfg.Memory.CacheSize)
	assert.Equal(t, "CS", cfg.Memory.Language)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 4, cfg.Run.Workers)
	assert.False(t, cfg.Run.AutoConfirm)
	assert.False(t, cfg.Storage.Enabled())
	assert.False(t, cfg.Oracle.Enabled())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MEMORY_ROOT", "/data/memory")
	t.Setenv("MEMORY_CACHE_SIZE", "4")
	t.Setenv("RUN_AUTO_CONFIRM", "true")
	t.Setenv("ORACLE_API_KEY", "sk-test")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/data/memory", cfg.Memory.Root)
	assert.Equal(t, 4, cfg.Memory.CacheSize)
	assert.True(t, cfg.Run.AutoConfirm)
	assert.True(t, cfg.Oracle.Enabled())
}
