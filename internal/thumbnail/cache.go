package thumbnail

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fileExt is the extension of every cache artifact
const fileExt = ".jpg"

// Key returns the content-addressed cache key of a (path, size) request
func Key(absPath string, width, height int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%dx%d", absPath, width, height)))
	return hex.EncodeToString(sum[:])
}

// Stats summarizes the cache directory
type Stats struct {
	Dir        string `json:"dir" yaml:"dir"`
	EntryCount int    `json:"entry_count" yaml:"entry_count"`
	TotalBytes int64  `json:"total_bytes" yaml:"total_bytes"`
}

// Cache is a flat directory of encoded thumbnails named by key. Entries are
// never invalidated; only Clear removes them.
type Cache struct {
	dir string
}

// NewCache creates the cache directory if needed
func NewCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the artifact path of key
func (c *Cache) Path(key string) string {
	return filepath.Join(c.dir, key+fileExt)
}

// Load returns the stored bytes of key
func (c *Cache) Load(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.Path(key))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Store writes data under key. The artifact appears atomically, so readers
// never observe a partial file.
func (c *Cache) Store(key string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, "."+key+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, c.Path(key)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Stats counts the artifacts in the cache and their total size
func (c *Cache) Stats() (Stats, error) {
	stats := Stats{Dir: c.dir}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isArtifact(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.EntryCount++
		stats.TotalBytes += info.Size()
	}

	return stats, nil
}

// Keys returns the keys of all cached thumbnails, sorted
func (c *Cache) Keys() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !isArtifact(entry.Name()) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(entry.Name(), fileExt))
	}
	return keys, nil
}

// EntryCount returns the number of cached thumbnails
func (c *Cache) EntryCount() int {
	stats, _ := c.Stats()
	return stats.EntryCount
}

// TotalBytes returns the on-disk size of all cached thumbnails
func (c *Cache) TotalBytes() int64 {
	stats, _ := c.Stats()
	return stats.TotalBytes
}

// Clear removes the whole cache directory and recreates it empty
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("failed to remove cache directory: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}
	return nil
}

func isArtifact(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.HasSuffix(name, fileExt)
}
