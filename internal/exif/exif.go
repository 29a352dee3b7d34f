// internal/exif/exif.go
package exif

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/photogeoview/photogeoview/internal/fileinfo"
	"github.com/photogeoview/photogeoview/internal/gps"
	"github.com/photogeoview/photogeoview/pkg/common"
)

func init() {
	// Register maker note parsers for better camera support
	exif.RegisterParsers(mknote.All...)
}

// maxRawLen bounds the display form of opaque values such as maker notes
const maxRawLen = 64

// ReadFile reads the EXIF tags of the image at path. Only the image header
// and the metadata segment are read; pixel data is never decoded.
//
// Errors are classified with pkg/common: IOFailure when the file cannot be
// opened, NotAnImage for unsupported or undecodable content, NoMetadata for
// images without an EXIF segment.
func ReadFile(path string) (*Tags, error) {
	if !fileinfo.IsImageFile(path) {
		return nil, common.NewNotAnImageError(path, errors.New("unsupported extension"))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewIOError(path, err)
	}
	defer f.Close()

	return Read(f, path)
}

// Read reads EXIF tags from r. name is used for error reporting and to decide
// whether the container can carry EXIF.
func Read(r io.ReadSeeker, name string) (*Tags, error) {
	// Efficiently check the image header without decoding the pixels
	if _, _, err := image.DecodeConfig(r); err != nil {
		return nil, common.NewNotAnImageError(name, fmt.Errorf("decoding image config: %w", err))
	}

	if !fileinfo.HasExif(name) {
		return nil, common.NewNoMetadataError(name, nil)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, common.NewIOError(name, fmt.Errorf("seeking file for exif: %w", err))
	}

	x, err := decodeSafe(r, name)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, common.NewNoMetadataError(name, err)
	}

	c := &collector{tags: NewTags()}
	if err := x.Walk(c); err != nil {
		return nil, common.NewNoMetadataError(name, err)
	}

	if c.tags.IsEmpty() {
		return nil, common.NewNoMetadataError(name, nil)
	}

	sort.SliceStable(c.tags.other, func(i, j int) bool {
		return c.tags.other[i].Name < c.tags.other[j].Name
	})

	return c.tags, nil
}

// ReadTags reads the tags of path and returns an empty set on any failure
func ReadTags(path string) *Tags {
	tags, err := ReadFile(path)
	if err != nil {
		return NewTags()
	}
	return tags
}

// decodeSafe protects against panics from the decoder on malformed files
func decodeSafe(r io.Reader, name string) (x *exif.Exif, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			x = nil
			err = fmt.Errorf("panic while decoding %s: %v", name, rec)
		}
	}()

	return exif.Decode(r)
}

// collector gathers walked fields into a tag set
type collector struct {
	tags *Tags
}

func (c *collector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	n := string(name)
	if IsPointer(n) {
		return nil
	}
	c.tags.Add(NewTag(n, convert(tag)))
	return nil
}

func convert(tag *tiff.Tag) Value {
	count := int(tag.Count)

	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return other(tag)
		}
		return StringValue(s)

	case tiff.RatVal:
		rats := make([]gps.Rational, 0, count)
		for i := 0; i < count; i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				break
			}
			rats = append(rats, gps.NewRational(num, den))
		}
		return RationalValue(rats...)

	case tiff.IntVal:
		ints := make([]int64, 0, count)
		for i := 0; i < count; i++ {
			n, err := tag.Int64(i)
			if err != nil {
				break
			}
			ints = append(ints, n)
		}
		return IntValue(ints...)

	case tiff.FloatVal:
		floats := make([]float64, 0, count)
		for i := 0; i < count; i++ {
			f, err := tag.Float(i)
			if err != nil {
				break
			}
			floats = append(floats, f)
		}
		return FloatValue(floats...)

	default:
		return other(tag)
	}
}

func other(tag *tiff.Tag) Value {
	raw := tag.String()
	return Value{Format: FormatOther, Raw: truncate(raw, maxRawLen)}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
