package scanner

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photogeoview/photogeoview/internal/logger"
	"github.com/photogeoview/photogeoview/internal/testutil"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"b.JPG":             {Data: []byte("x")},
		"a.jpeg":            {Data: []byte("x")},
		"c.Png":             {Data: []byte("x")},
		"d.webp":            {Data: []byte("x")},
		"e.tif":             {Data: []byte("x")},
		"notes.txt":         {Data: []byte("x")},
		"movie.mp4":         {Data: []byte("x")},
		"noext":             {Data: []byte("x")},
		"album/f.bmp":       {Data: []byte("x")},
		"album/deep/g.gif":  {Data: []byte("x")},
		"album/deep/h.tiff": {Data: []byte("x")},
	}
}

func TestScanFS_TopLevel(t *testing.T) {
	s := New(logger.Nop(), false)

	paths, err := s.ScanFS(context.Background(), testFS())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpeg", "b.JPG", "c.Png", "d.webp", "e.tif"}, paths)
}

func TestScanFS_Recursive(t *testing.T) {
	s := New(logger.Nop(), true)

	paths, err := s.ScanFS(context.Background(), testFS())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a.jpeg", "album/deep/g.gif", "album/deep/h.tiff", "album/f.bmp",
		"b.JPG", "c.Png", "d.webp", "e.tif",
	}, paths)
}

func TestScanFS_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(logger.Nop(), true).ScanFS(ctx, testFS())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScan_AbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "z.jpg", []byte("x"))
	testutil.WriteFile(t, dir, "y.PNG", []byte("x"))
	testutil.WriteFile(t, dir, "readme.md", []byte("x"))
	testutil.WriteFile(t, dir, "sub/x.gif", []byte("x"))

	paths, err := New(logger.Nop(), false).Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "y.PNG"), filepath.Join(dir, "z.jpg")}, paths)

	for _, p := range paths {
		assert.True(t, filepath.IsAbs(p))
	}
}

func TestScan_Errors(t *testing.T) {
	dir := t.TempDir()
	file := testutil.WriteFile(t, dir, "photo.jpg", []byte("x"))
	s := New(logger.Nop(), false)

	_, err := s.Scan(context.Background(), filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, err = s.Scan(context.Background(), file)
	assert.Error(t, err)
}

func TestScanPaths_MergesAndDeduplicates(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "one/a.jpg", []byte("x"))
	testutil.WriteFile(t, root, "two/b.jpg", []byte("x"))

	s := New(logger.Nop(), false)
	paths, err := s.ScanPaths(context.Background(), []string{
		filepath.Join(root, "*"),
		filepath.Join(root, "one"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "one", "a.jpg"),
		filepath.Join(root, "two", "b.jpg"),
	}, paths)
}
