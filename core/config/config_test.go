package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "elasticsearch", cfg.Search.Driver)
	assert.Equal(t, "http://localhost:9200", cfg.Search.URL)
	assert.True(t, cfg.Search.VerifyHostname)
	assert.Equal(t, 60*time.Second, cfg.Search.ScrollKeepAlive)
	assert.Equal(t, 10, cfg.Search.HealthAttempts)
	assert.Equal(t, 3*time.Second, cfg.Search.HealthDelay)

	assert.Equal(t, int64(1), cfg.Audit.PartitionID)
	assert.Equal(t, int64(0), cfg.Audit.ImportPosition)
	assert.Equal(t, "zeebe-record_process-instance_*", cfg.Audit.RecordIndex)
	assert.Equal(t, "operate*", cfg.Audit.TargetIndex)
	assert.Equal(t, 3000, cfg.Audit.PageSize)
	assert.Equal(t, 1000, cfg.Audit.CheckPageSize)

	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "reports", cfg.Storage.Prefix)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("AUDIT_PARTITION_ID", "3")
	t.Setenv("AUDIT_IMPORT_POSITION", "9007199254740993")
	t.Setenv("SEARCH_VERIFY_HOSTNAME", "false")
	t.Setenv("SEARCH_SCROLL_KEEP_ALIVE", "2m")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, int64(3), cfg.Audit.PartitionID)
	assert.Equal(t, int64(9007199254740993), cfg.Audit.ImportPosition)
	assert.False(t, cfg.Search.VerifyHostname)
	assert.Equal(t, 2*time.Minute, cfg.Search.ScrollKeepAlive)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SEARCH_DRIVER=sql\nAUDIT_TARGET_INDEX=operate-flownode*\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SEARCH_DRIVER")
		os.Unsetenv("AUDIT_TARGET_INDEX")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "sql", cfg.Search.Driver)
	assert.Equal(t, "operate-flownode*", cfg.Audit.TargetIndex)
}
