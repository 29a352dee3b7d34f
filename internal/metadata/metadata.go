package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/photogeoview/photogeoview/internal/exif"
	"github.com/photogeoview/photogeoview/internal/fileinfo"
	"github.com/photogeoview/photogeoview/internal/gps"
	"github.com/photogeoview/photogeoview/internal/logger"
	"github.com/photogeoview/photogeoview/pkg/common"
	"github.com/photogeoview/photogeoview/pkg/models"
)

// exifTimeLayout is the timestamp layout used by EXIF DateTime tags
const exifTimeLayout = "2006:01:02 15:04:05"

// fallbackTimeLayouts are tried when a timestamp is not in EXIF layout
var fallbackTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Extractor turns image files into metadata records
type Extractor struct {
	log      *logger.Logger
	timezone *time.Location
}

// NewExtractor creates a new metadata extractor. EXIF timestamps carry no
// zone and are interpreted in timezone, UTC when nil.
func NewExtractor(log *logger.Logger, timezone *time.Location) *Extractor {
	if log == nil {
		log = logger.Nop()
	}
	if timezone == nil {
		timezone = time.UTC
	}
	return &Extractor{
		log:      log.Component("metadata"),
		timezone: timezone,
	}
}

// Read extracts the metadata record of path.
//
// For NoMetadata the returned record carries the filesystem attributes and
// is still empty. For NotAnImage and IOFailure the record only carries the
// path. A malformed GPS block never fails the read: the gps field is left
// unset and the problem is logged.
func (e *Extractor) Read(path string) (*models.ImageMetadataRecord, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	record := &models.ImageMetadataRecord{FilePath: abs}

	if !fileinfo.IsImageFile(abs) {
		return record, common.NewNotAnImageError(abs, errors.New("unsupported extension"))
	}

	info, err := os.Stat(abs)
	if err != nil {
		return record, common.NewIOError(abs, err)
	}
	if info.IsDir() {
		return record, common.NewNotAnImageError(abs, errors.New("is a directory"))
	}

	record = models.NewRecord(abs, info.Size(), info.ModTime())

	tags, err := exif.ReadFile(abs)
	if err != nil {
		return record, err
	}

	e.apply(record, tags)
	record.MarkExif()

	location, err := resolveGPS(tags)
	if err != nil {
		e.log.Debug("Ignoring GPS data of %s: %v", abs, common.NewInvalidGPSError(abs, err))
	}
	record.GPS = location

	return record, nil
}

// Extract is the soft form of Read: it never fails. Missing files, non-image
// content and images without EXIF all produce an empty record.
func (e *Extractor) Extract(path string) *models.ImageMetadataRecord {
	record, err := e.Read(path)
	if err == nil {
		return record
	}

	switch common.KindOf(err) {
	case common.KindNoMetadata:
		e.log.Debug("No EXIF metadata: %s", record.FilePath)
	default:
		e.log.Warn("Failed to extract metadata: %v", err)
	}
	return record
}

// apply maps recognized tags to record fields and keeps the rest under Other
func (e *Extractor) apply(r *models.ImageMetadataRecord, tags *exif.Tags) {
	for _, tag := range tags.Known() {
		v := tag.Value

		switch tag.Kind {
		case exif.KindMake:
			r.CameraMake = v.String()
		case exif.KindModel:
			r.CameraModel = v.String()
		case exif.KindLensModel:
			r.LensModel = v.String()
		case exif.KindSoftware:
			r.Software = v.String()
		case exif.KindExposureTime:
			r.ExposureTime = v.String()
		case exif.KindFNumber:
			r.FNumber = formatNumber(v)
		case exif.KindISOSpeed:
			r.ISOSpeed = intField(v)
		case exif.KindFocalLength:
			r.FocalLength = formatNumber(v)
		case exif.KindFlash:
			r.Flash = describeFlash(v)
		case exif.KindWhiteBalance:
			r.WhiteBalance = describeWhiteBalance(v)
		case exif.KindOrientation:
			r.Orientation = intField(v)
		case exif.KindDateTimeOriginal:
			r.DateTimeOriginal = e.parseTime(v.String())
		case exif.KindDateTime:
			r.DateTime = e.parseTime(v.String())
		case exif.KindPixelXDimension:
			r.Width = intField(v)
		case exif.KindPixelYDimension:
			r.Height = intField(v)
		case exif.KindGPSLatitude, exif.KindGPSLatitudeRef,
			exif.KindGPSLongitude, exif.KindGPSLongitudeRef,
			exif.KindGPSAltitude, exif.KindGPSAltitudeRef,
			exif.KindGPSTimeStamp, exif.KindGPSDateStamp,
			exif.KindGPSVersionID:
			// resolved together by resolveGPS
		case exif.KindUnrecognized:
			// Known never yields unrecognized tags
		default:
			panic(fmt.Sprintf("metadata: unmapped tag kind %d (%s)", tag.Kind, tag.Name))
		}
	}

	unrecognized := tags.Unrecognized()
	if len(unrecognized) == 0 {
		return
	}
	r.Other = make(map[string]string, len(unrecognized))
	for _, tag := range unrecognized {
		if s := tag.Value.String(); s != "" {
			r.Other[tag.Name] = s
		}
	}
}

// parseTime parses an EXIF timestamp, falling back to ISO-8601 forms.
// Unparsable values yield nil.
func (e *Extractor) parseTime(s string) *time.Time {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if s == "" {
		return nil
	}

	if t, err := time.ParseInLocation(exifTimeLayout, s, e.timezone); err == nil {
		return &t
	}
	for _, layout := range fallbackTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, e.timezone); err == nil {
			return &t
		}
	}

	e.log.Debug("Dropping unparsable timestamp %q", s)
	return nil
}

// resolveGPS builds the location of a tag set. It returns nil, nil when the
// file has no coordinates at all.
func resolveGPS(tags *exif.Tags) (*models.GPSInfo, error) {
	latTag, hasLat := tags.Get(exif.KindGPSLatitude)
	lonTag, hasLon := tags.Get(exif.KindGPSLongitude)

	if !hasLat && !hasLon {
		return nil, nil
	}
	if !hasLat || !hasLon {
		return nil, errors.New("incomplete coordinate pair")
	}

	// A coordinate without its hemisphere cannot be placed
	latRef := refOf(tags, exif.KindGPSLatitudeRef)
	if latRef != "N" && latRef != "S" {
		return nil, fmt.Errorf("missing or invalid latitude reference %q", latRef)
	}
	lonRef := refOf(tags, exif.KindGPSLongitudeRef)
	if lonRef != "E" && lonRef != "W" {
		return nil, fmt.Errorf("missing or invalid longitude reference %q", lonRef)
	}

	lat, ok := gps.FromTriple(latTag.Value.Rationals, latRef)
	if !ok {
		return nil, fmt.Errorf("unparsable latitude %s", latTag.Value.Raw)
	}
	lon, ok := gps.FromTriple(lonTag.Value.Rationals, lonRef)
	if !ok {
		return nil, fmt.Errorf("unparsable longitude %s", lonTag.Value.Raw)
	}

	if !gps.Validate(lat, lon) {
		return nil, fmt.Errorf("coordinates out of range: %f, %f", lat, lon)
	}
	if gps.IsNullIsland(lat, lon) {
		return nil, errors.New("coordinates at null island")
	}

	info := &models.GPSInfo{Latitude: lat, Longitude: lon}

	if altTag, ok := tags.Get(exif.KindGPSAltitude); ok {
		if alt, ok := altTag.Value.Float(); ok {
			// AltitudeRef 1 means below sea level
			if refTag, ok := tags.Get(exif.KindGPSAltitudeRef); ok {
				if ref, ok := refTag.Value.Int(); ok && ref == 1 {
					alt = -alt
				}
			}
			info.Altitude = &alt
		}
	}

	if tsTag, ok := tags.Get(exif.KindGPSTimeStamp); ok {
		if ts, ok := gps.FormatTime(tsTag.Value.Rationals); ok {
			info.Time = ts
		}
	}

	if dateTag, ok := tags.Get(exif.KindGPSDateStamp); ok {
		info.Date = dateTag.Value.String()
	}

	return info, nil
}

// refOf returns a hemisphere reference normalized to one upper-case letter,
// or "" when the tag is absent
func refOf(tags *exif.Tags, k exif.Kind) string {
	if tag, ok := tags.Get(k); ok {
		return strings.ToUpper(strings.TrimSpace(tag.Value.String()))
	}
	return ""
}

func intField(v exif.Value) *int {
	n, ok := v.Int()
	if !ok {
		return nil
	}
	i := int(n)
	return &i
}

// formatNumber renders a rational such as 28/10 as "2.8"
func formatNumber(v exif.Value) string {
	f, ok := v.Float()
	if !ok {
		return v.String()
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func describeFlash(v exif.Value) string {
	n, ok := v.Int()
	if !ok {
		return v.String()
	}
	if n&0x1 == 1 {
		return "Fired"
	}
	return "Did not fire"
}

func describeWhiteBalance(v exif.Value) string {
	n, ok := v.Int()
	if !ok {
		return v.String()
	}
	switch n {
	case 0:
		return "Auto"
	case 1:
		return "Manual"
	default:
		return strconv.FormatInt(n, 10)
	}
}
