package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dados_brutos", cfg.Project.RawDir)
	assert.Equal(t, "dados_tratados", cfg.Project.StagingDir)
	assert.Equal(t, "dados_finais", cfg.Project.FinalDir)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, 2, cfg.Fetch.Concurrency)
	assert.Equal(t, int64(1024), cfg.Fetch.MinFileSize)
	assert.Equal(t, ".segdata/runlog.db", cfg.RunLog.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := []byte("project:\n  raw_dir: raw\nlog:\n  level: debug\n  format: json\n")
	require.NoError(t, os.WriteFile("segdata.yaml", yaml, 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "raw", cfg.Project.RawDir)
	assert.Equal(t, "dados_tratados", cfg.Project.StagingDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_OK(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
}
