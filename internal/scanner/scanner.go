// Package scanner lists the supported images under directories.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/photogeoview/photogeoview/internal/fileinfo"
	"github.com/photogeoview/photogeoview/internal/logger"
)

// Scanner enumerates image files by extension
type Scanner struct {
	recursive bool
	log       *logger.Logger
}

// New creates a scanner. A non-recursive scanner only lists the top level.
func New(log *logger.Logger, recursive bool) *Scanner {
	if log == nil {
		log = logger.Nop()
	}
	return &Scanner{
		recursive: recursive,
		log:       log.Component("scanner"),
	}
}

// Scan returns the absolute paths of the supported images in dir, sorted
// and without duplicates
func (s *Scanner) Scan(ctx context.Context, dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", abs)
	}

	rel, err := s.ScanFS(ctx, os.DirFS(abs))
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(rel))
	for i, p := range rel {
		paths[i] = filepath.Join(abs, filepath.FromSlash(p))
	}
	sort.Strings(paths)
	return paths, nil
}

// ScanFS returns the slash-separated paths of the supported images in fsys,
// sorted and without duplicates. Unreadable subdirectories are skipped.
func (s *Scanner) ScanFS(ctx context.Context, fsys fs.FS) ([]string, error) {
	seen := make(map[string]struct{})

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == "." {
				return err
			}
			s.log.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path != "." && !s.recursive {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if fileinfo.IsImageFile(path) {
			seen[path] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	s.log.Debug("Found %d images", len(paths))
	return paths, nil
}

// ScanPaths scans every directory matched by the given paths or glob
// patterns and merges the results
func (s *Scanner) ScanPaths(ctx context.Context, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// No matches, try as a direct path
			matches = []string{pattern}
		}

		for _, match := range matches {
			paths, err := s.Scan(ctx, match)
			if err != nil {
				return nil, err
			}
			for _, p := range paths {
				seen[p] = struct{}{}
			}
		}
	}

	merged := make([]string, 0, len(seen))
	for p := range seen {
		merged = append(merged, p)
	}
	sort.Strings(merged)
	return merged, nil
}
