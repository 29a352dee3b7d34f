package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "PHOTOGEOVIEW"

// Worker pool bounds
const (
	MinWorkers = 1
	MaxWorkers = 8
)

// Config represents the application configuration
type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	CacheDir    string `mapstructure:"cache_dir"`
	CatalogPath string `mapstructure:"catalog_path"`
	Workers     int    `mapstructure:"workers"`

	Thumbnail ThumbnailConfig `mapstructure:"thumbnail"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Mirror    MirrorConfig    `mapstructure:"mirror"`
}

// ThumbnailConfig represents thumbnail generation settings
type ThumbnailConfig struct {
	Width   int `mapstructure:"width"`
	Height  int `mapstructure:"height"`
	Quality int `mapstructure:"quality"`
}

// ScanConfig represents directory scanning settings
type ScanConfig struct {
	Recursive bool `mapstructure:"recursive"`
}

// MirrorConfig represents the optional S3-compatible thumbnail mirror
type MirrorConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	Region    string        `mapstructure:"region"`
	Bucket    string        `mapstructure:"bucket"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	UseSSL    bool          `mapstructure:"use_ssl"`
	Prefix    string        `mapstructure:"prefix"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a mirror endpoint was configured
func (m MirrorConfig) Enabled() bool {
	return m.Endpoint != ""
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel:    "info",
		CacheDir:    defaultCacheDir(),
		CatalogPath: defaultCatalogPath(),
		Workers:     4,
		Thumbnail: ThumbnailConfig{
			Width:   128,
			Height:  128,
			Quality: 85,
		},
		Mirror: MirrorConfig{
			Region:  "us-east-1",
			UseSSL:  true,
			Prefix:  "thumbnails",
			Timeout: 30 * time.Second,
		},
	}
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "photogeoview", "thumbnails")
}

func defaultCatalogPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "photogeoview", "catalog.json")
}

// SetDefaults registers the values of New as viper defaults
func SetDefaults(v *viper.Viper) {
	d := New()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("catalog_path", d.CatalogPath)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("thumbnail.width", d.Thumbnail.Width)
	v.SetDefault("thumbnail.height", d.Thumbnail.Height)
	v.SetDefault("thumbnail.quality", d.Thumbnail.Quality)
	v.SetDefault("scan.recursive", d.Scan.Recursive)
	v.SetDefault("mirror.endpoint", d.Mirror.Endpoint)
	v.SetDefault("mirror.region", d.Mirror.Region)
	v.SetDefault("mirror.bucket", d.Mirror.Bucket)
	v.SetDefault("mirror.access_key", d.Mirror.AccessKey)
	v.SetDefault("mirror.secret_key", d.Mirror.SecretKey)
	v.SetDefault("mirror.use_ssl", d.Mirror.UseSSL)
	v.SetDefault("mirror.prefix", d.Mirror.Prefix)
	v.SetDefault("mirror.timeout", d.Mirror.Timeout)
}

// Load builds a Config from v: defaults, then the config file named by
// v's "config" key (if any), then PHOTOGEOVIEW_* environment variables,
// then any flags already bound to v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.Workers = ClampWorkers(cfg.Workers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ClampWorkers bounds a worker count to [MinWorkers, MaxWorkers]
func ClampWorkers(n int) int {
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// Validate checks the configuration for values the core cannot work with
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return errors.New("cache directory is required")
	}
	if c.Thumbnail.Width <= 0 || c.Thumbnail.Height <= 0 {
		return fmt.Errorf("thumbnail size must be positive, got %dx%d", c.Thumbnail.Width, c.Thumbnail.Height)
	}
	if c.Thumbnail.Quality < 1 || c.Thumbnail.Quality > 100 {
		return fmt.Errorf("thumbnail quality must be between 1 and 100, got %d", c.Thumbnail.Quality)
	}
	if c.Mirror.Enabled() {
		if c.Mirror.Bucket == "" {
			return errors.New("mirror bucket is required when a mirror endpoint is set")
		}
		if c.Mirror.AccessKey == "" || c.Mirror.SecretKey == "" {
			return errors.New("mirror access key and secret key are required")
		}
	}
	return nil
}
