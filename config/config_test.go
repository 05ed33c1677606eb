package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadDefault()
	assert.NoError(t, err)

	assert.Equal(t, DefaultRoot, cfg.Root.Dir)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.TFTP.Enabled)
	assert.Equal(t, ":69", cfg.TFTP.Addr)
	assert.False(t, cfg.Log.Debug)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OSBOOTD_ROOT", "/srv/images")
	t.Setenv("OSBOOTD_HTTP_ADDR", ":9090")
	t.Setenv("OSBOOTD_TFTP_ENABLED", "true")
	t.Setenv("OSBOOTD_DEBUG", "1")

	cfg, err := LoadDefault()
	assert.NoError(t, err)

	assert.Equal(t, "/srv/images", cfg.Root.Dir)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.True(t, cfg.TFTP.Enabled)
	assert.True(t, cfg.Log.Debug)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osbootd.yaml")
	content := "root:\n  dir: /data/boot\nhttp:\n  addr: \":8888\"\ntftp:\n  enabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/boot", cfg.Root.Dir)
	assert.Equal(t, ":8888", cfg.HTTP.Addr)
	assert.True(t, cfg.TFTP.Enabled)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/osbootd.yaml")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Root: Root{Dir: t.TempDir()}}
	assert.NoError(t, cfg.Validate())

	cfg.Root.Dir = "/nonexistent/osbootd-root"
	assert.Error(t, cfg.Validate())

	file := filepath.Join(t.TempDir(), "plainfile")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	cfg.Root.Dir = file
	assert.Error(t, cfg.Validate())
}
