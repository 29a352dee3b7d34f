// internal/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/photogeoview/photogeoview/internal/logger"
	"github.com/photogeoview/photogeoview/pkg/models"
)

// formatVersion is written to every saved catalog
const formatVersion = 1

// Entry is one located photo
type Entry struct {
	Path      string     `json:"path"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Altitude  *float64   `json:"altitude,omitempty"`
	Taken     *time.Time `json:"taken,omitempty"`
	Camera    string     `json:"camera,omitempty"`
}

// Bounds is the bounding box of all entries
type Bounds struct {
	MinLatitude  float64 `json:"min_latitude"`
	MinLongitude float64 `json:"min_longitude"`
	MaxLatitude  float64 `json:"max_latitude"`
	MaxLongitude float64 `json:"max_longitude"`
}

// Center returns the midpoint of the box
func (b Bounds) Center() (lat, lon float64) {
	return (b.MinLatitude + b.MaxLatitude) / 2, (b.MinLongitude + b.MaxLongitude) / 2
}

// file is the on-disk layout
type file struct {
	Version int       `json:"version"`
	Updated time.Time `json:"updated"`
	Photos  []Entry   `json:"photos"`
}

// Catalog holds the located photos of scanned folders, keyed by path, and
// persists them as JSON for map display
type Catalog struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
	log     *logger.Logger
}

// New creates an empty catalog stored at path
func New(path string, log *logger.Logger) *Catalog {
	if log == nil {
		log = logger.Nop()
	}
	return &Catalog{
		path:    path,
		entries: make(map[string]Entry),
		log:     log.Component("catalog"),
	}
}

// Path returns the catalog file
func (c *Catalog) Path() string {
	return c.path
}

// Load replaces the in-memory entries with the saved ones. A missing file
// leaves the catalog empty.
func (c *Catalog) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			c.log.Debug("No catalog at %s, starting fresh", c.path)
			c.entries = make(map[string]Entry)
			return nil
		}
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse catalog %s: %w", c.path, err)
	}

	c.entries = make(map[string]Entry, len(f.Photos))
	for _, e := range f.Photos {
		c.entries[e.Path] = e
	}

	c.log.Info("Loaded catalog with %d photos from %s", len(c.entries), c.path)
	return nil
}

// Save writes the catalog to disk
func (c *Catalog) Save() error {
	c.mu.Lock()
	f := file{
		Version: formatVersion,
		Updated: time.Now().UTC(),
		Photos:  c.listLocked(),
	}
	c.mu.Unlock()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	c.log.Info("Saved catalog with %d photos to %s", len(f.Photos), c.path)
	return nil
}

// Add records a photo. Records without a usable location are not added and
// any previous entry for the path is dropped.
func (c *Catalog) Add(r *models.ImageMetadataRecord) bool {
	if r == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !r.HasLocation() {
		delete(c.entries, r.FilePath)
		return false
	}

	taken := r.DateTimeOriginal
	if taken == nil {
		taken = r.DateTime
	}

	c.entries[r.FilePath] = Entry{
		Path:      r.FilePath,
		Latitude:  r.GPS.Latitude,
		Longitude: r.GPS.Longitude,
		Altitude:  r.GPS.Altitude,
		Taken:     taken,
		Camera:    strings.TrimSpace(r.CameraMake + " " + r.CameraModel),
	}
	return true
}

// Remove drops a photo
func (c *Catalog) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Get returns the entry of path
func (c *Catalog) Get(path string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	return e, ok
}

// Len returns the number of located photos
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// List returns all entries sorted by path
func (c *Catalog) List() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listLocked()
}

func (c *Catalog) listLocked() []Entry {
	list := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Path < list[j].Path
	})
	return list
}

// Bounds returns the bounding box of all entries; ok is false when empty
func (c *Catalog) Bounds() (b Bounds, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if !ok {
			b = Bounds{e.Latitude, e.Longitude, e.Latitude, e.Longitude}
			ok = true
			continue
		}
		b.MinLatitude = min(b.MinLatitude, e.Latitude)
		b.MinLongitude = min(b.MinLongitude, e.Longitude)
		b.MaxLatitude = max(b.MaxLatitude, e.Latitude)
		b.MaxLongitude = max(b.MaxLongitude, e.Longitude)
	}
	return b, ok
}

// Clear removes every entry
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}
