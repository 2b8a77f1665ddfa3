package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesFields(t *testing.T) {
	path := writeFile(t, `BlockSize = 8192
DataDir = "/tmp/data"
LogLevel = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8192, cfg.BlockSize)
	assert.Equal(t, "/tmp/data", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, `BlockSiz = 8192`)
	_, err := Load(path)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := writeFile(t, `LogLevel = "verbose"`)
	_, err := Load(path)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeFile(t, `this is not = = toml`)
	_, err := Load(path)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
