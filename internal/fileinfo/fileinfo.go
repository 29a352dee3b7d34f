package fileinfo

import (
	"mime"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the image extensions the core handles, lowercase
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tiff", ".tif", ".webp"}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".bmp":  "image/bmp",
}

// IsImageFile checks if a file has a supported image extension (case-insensitive)
func IsImageFile(filename string) bool {
	_, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// HasExif reports whether files of this type can carry an EXIF segment that
// the tag reader understands
func HasExif(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".tiff", ".tif":
		return true
	default:
		return false
	}
}

// DetectContentType determines the content type of a file based on its extension
func DetectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	if mimeType, ok := contentTypes[ext]; ok {
		return mimeType
	}

	// Fall back to the standard library
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return mimeType
	}

	return "application/octet-stream"
}
