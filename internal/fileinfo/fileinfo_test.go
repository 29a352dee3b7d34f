package fileinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "B.JPEG", "c.Png", "d.bmp", "e.gif", "f.TIFF", "g.tif", "h.webp"} {
		assert.True(t, IsImageFile(name), name)
	}
	for _, name := range []string{"a.heic", "b.txt", "noext", "c.jpg.bak", ".jpgx"} {
		assert.False(t, IsImageFile(name), name)
	}
}

func TestHasExif(t *testing.T) {
	assert.True(t, HasExif("/photos/IMG_0001.JPG"))
	assert.True(t, HasExif("scan.tif"))
	assert.False(t, HasExif("screenshot.png"))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectContentType("x.JPG"))
	assert.Equal(t, "image/webp", DetectContentType("x.webp"))
	assert.Equal(t, "application/octet-stream", DetectContentType("x.unknownext"))
}
