package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 128, cfg.Thumbnail.Width)
	assert.Equal(t, 85, cfg.Thumbnail.Quality)
	assert.False(t, cfg.Mirror.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "photogeoview.yaml")
	content := []byte(`
log_level: debug
cache_dir: ` + filepath.Join(dir, "cache") + `
workers: 32
thumbnail:
  width: 256
  height: 256
`)
	require.NoError(t, os.WriteFile(file, content, 0644))

	t.Setenv("PHOTOGEOVIEW_THUMBNAIL_QUALITY", "70")

	v := viper.New()
	v.Set("config", file)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "cache"), cfg.CacheDir)
	assert.Equal(t, MaxWorkers, cfg.Workers)
	assert.Equal(t, 256, cfg.Thumbnail.Width)
	assert.Equal(t, 70, cfg.Thumbnail.Quality)
	assert.Equal(t, 30*time.Second, cfg.Mirror.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	v := viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load(v)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := New()
	cfg.Thumbnail.Height = 0
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.Thumbnail.Quality = 101
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.Mirror.Endpoint = "localhost:9000"
	assert.Error(t, cfg.Validate())

	cfg.Mirror.Bucket = "thumbs"
	cfg.Mirror.AccessKey = "minioadmin"
	cfg.Mirror.SecretKey = "minioadmin"
	assert.NoError(t, cfg.Validate())
}

func TestClampWorkers(t *testing.T) {
	assert.Equal(t, 1, ClampWorkers(0))
	assert.Equal(t, 3, ClampWorkers(3))
	assert.Equal(t, MaxWorkers, ClampWorkers(100))
}
