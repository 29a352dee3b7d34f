package metadata

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/photogeoview/photogeoview/internal/gps"
	"github.com/photogeoview/photogeoview/pkg/models"
)

// displayTimeLayout is used for timestamps in maps and summaries
const displayTimeLayout = "2006-01-02 15:04:05"

// ToMap converts a record to the flat display mapping. GPS is nested under
// "gps"; tags without a dedicated field appear under their EXIF names.
// An empty record yields an empty map.
func ToMap(r *models.ImageMetadataRecord) map[string]interface{} {
	result := make(map[string]interface{})
	if r.IsEmpty() {
		return result
	}

	result["file_path"] = r.FilePath
	result["file_size_bytes"] = r.FileSizeBytes
	result["file_size"] = humanize.Bytes(uint64(r.FileSizeBytes))
	result["modified_timestamp"] = r.ModifiedTimestamp.Format(displayTimeLayout)

	setString(result, "camera_make", r.CameraMake)
	setString(result, "camera_model", r.CameraModel)
	setString(result, "lens_model", r.LensModel)
	setString(result, "software", r.Software)
	setString(result, "exposure_time", r.ExposureTime)
	setString(result, "f_number", r.FNumber)
	setString(result, "focal_length", r.FocalLength)
	setString(result, "flash", r.Flash)
	setString(result, "white_balance", r.WhiteBalance)

	setInt(result, "iso_speed", r.ISOSpeed)
	setInt(result, "orientation", r.Orientation)
	setInt(result, "width", r.Width)
	setInt(result, "height", r.Height)

	setTime(result, "datetime_original", r.DateTimeOriginal)
	setTime(result, "datetime", r.DateTime)

	if r.HasLocation() {
		location := map[string]interface{}{
			"latitude":  r.GPS.Latitude,
			"longitude": r.GPS.Longitude,
		}
		if r.GPS.Altitude != nil {
			location["altitude"] = *r.GPS.Altitude
		}
		if r.GPS.Time != "" {
			location["time"] = r.GPS.Time
		}
		if r.GPS.Date != "" {
			location["date"] = r.GPS.Date
		}
		result["gps"] = location
	}

	for name, value := range r.Other {
		if _, taken := result[name]; !taken {
			result[name] = value
		}
	}

	return result
}

func setString(m map[string]interface{}, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func setInt(m map[string]interface{}, key string, value *int) {
	if value != nil {
		m[key] = *value
	}
}

func setTime(m map[string]interface{}, key string, value *time.Time) {
	if value != nil {
		m[key] = value.Format(displayTimeLayout)
	}
}

// CameraInfo identifies the capturing device
type CameraInfo struct {
	Make  string `json:"make,omitempty" yaml:"make,omitempty"`
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	Lens  string `json:"lens,omitempty" yaml:"lens,omitempty"`
}

// ShootingInfo holds the capture settings of a photo
type ShootingInfo struct {
	Taken        *time.Time `json:"taken,omitempty" yaml:"taken,omitempty"`
	ExposureTime string     `json:"exposure_time,omitempty" yaml:"exposure_time,omitempty"`
	FNumber      string     `json:"f_number,omitempty" yaml:"f_number,omitempty"`
	ISOSpeed     *int       `json:"iso_speed,omitempty" yaml:"iso_speed,omitempty"`
	FocalLength  string     `json:"focal_length,omitempty" yaml:"focal_length,omitempty"`
	Flash        string     `json:"flash,omitempty" yaml:"flash,omitempty"`
	WhiteBalance string     `json:"white_balance,omitempty" yaml:"white_balance,omitempty"`
}

// GPSCoordinates returns the usable location of path, if any
func (e *Extractor) GPSCoordinates(path string) (lat, lon float64, ok bool) {
	r := e.Extract(path)
	if !r.HasLocation() {
		return 0, 0, false
	}
	return r.GPS.Latitude, r.GPS.Longitude, true
}

// CameraInfo returns the camera identification of path
func (e *Extractor) CameraInfo(path string) CameraInfo {
	r := e.Extract(path)
	return CameraInfo{Make: r.CameraMake, Model: r.CameraModel, Lens: r.LensModel}
}

// ShootingInfo returns the capture settings of path. The capture time falls
// back to the file's DateTime tag when DateTimeOriginal is missing.
func (e *Extractor) ShootingInfo(path string) ShootingInfo {
	r := e.Extract(path)
	taken := r.DateTimeOriginal
	if taken == nil {
		taken = r.DateTime
	}
	return ShootingInfo{
		Taken:        taken,
		ExposureTime: r.ExposureTime,
		FNumber:      r.FNumber,
		ISOSpeed:     r.ISOSpeed,
		FocalLength:  r.FocalLength,
		Flash:        r.Flash,
		WhiteBalance: r.WhiteBalance,
	}
}

// FormatSummary returns a short multi-line description of path
func (e *Extractor) FormatSummary(path string) string {
	return Summary(e.Extract(path))
}

// Summary renders a record as a short multi-line description
func Summary(r *models.ImageMetadataRecord) string {
	if r.IsEmpty() {
		return "No EXIF data"
	}

	var lines []string

	if camera := strings.TrimSpace(r.CameraMake + " " + r.CameraModel); camera != "" {
		lines = append(lines, "Camera: "+camera)
	}
	if r.LensModel != "" {
		lines = append(lines, "Lens: "+r.LensModel)
	}
	if r.DateTimeOriginal != nil {
		lines = append(lines, "Taken: "+r.DateTimeOriginal.Format(displayTimeLayout))
	}

	var settings []string
	if r.ExposureTime != "" {
		settings = append(settings, r.ExposureTime+"s")
	}
	if r.FNumber != "" {
		settings = append(settings, "f/"+r.FNumber)
	}
	if r.ISOSpeed != nil {
		settings = append(settings, fmt.Sprintf("ISO %d", *r.ISOSpeed))
	}
	if r.FocalLength != "" {
		settings = append(settings, r.FocalLength+"mm")
	}
	if len(settings) > 0 {
		lines = append(lines, "Settings: "+strings.Join(settings, " "))
	}

	if r.HasLocation() {
		lines = append(lines, "Location: "+gps.Format(r.GPS.Latitude, r.GPS.Longitude))
	}

	if len(lines) == 0 {
		return "No EXIF data"
	}
	return strings.Join(lines, "\n")
}
