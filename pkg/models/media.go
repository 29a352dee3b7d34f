package models

import "time"

// GPSInfo is a resolved photo location in signed decimal degrees
type GPSInfo struct {
	Latitude  float64  `json:"latitude" yaml:"latitude"`
	Longitude float64  `json:"longitude" yaml:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty" yaml:"altitude,omitempty"`
	Time      string   `json:"time,omitempty" yaml:"time,omitempty"`
	Date      string   `json:"date,omitempty" yaml:"date,omitempty"`
}

// ImageMetadataRecord is the normalized metadata of one image. It is built
// fresh on every extraction and never mutated afterwards.
type ImageMetadataRecord struct {
	FilePath          string    `json:"file_path" yaml:"file_path"`
	FileSizeBytes     int64     `json:"file_size_bytes" yaml:"file_size_bytes"`
	ModifiedTimestamp time.Time `json:"modified_timestamp" yaml:"modified_timestamp"`

	CameraMake  string `json:"camera_make,omitempty" yaml:"camera_make,omitempty"`
	CameraModel string `json:"camera_model,omitempty" yaml:"camera_model,omitempty"`
	LensModel   string `json:"lens_model,omitempty" yaml:"lens_model,omitempty"`
	Software    string `json:"software,omitempty" yaml:"software,omitempty"`

	ExposureTime string `json:"exposure_time,omitempty" yaml:"exposure_time,omitempty"`
	FNumber      string `json:"f_number,omitempty" yaml:"f_number,omitempty"`
	ISOSpeed     *int   `json:"iso_speed,omitempty" yaml:"iso_speed,omitempty"`
	FocalLength  string `json:"focal_length,omitempty" yaml:"focal_length,omitempty"`
	Flash        string `json:"flash,omitempty" yaml:"flash,omitempty"`
	WhiteBalance string `json:"white_balance,omitempty" yaml:"white_balance,omitempty"`
	Orientation  *int   `json:"orientation,omitempty" yaml:"orientation,omitempty"`

	Width  *int `json:"width,omitempty" yaml:"width,omitempty"`
	Height *int `json:"height,omitempty" yaml:"height,omitempty"`

	DateTimeOriginal *time.Time `json:"datetime_original,omitempty" yaml:"datetime_original,omitempty"`
	DateTime         *time.Time `json:"datetime,omitempty" yaml:"datetime,omitempty"`

	GPS *GPSInfo `json:"gps,omitempty" yaml:"gps,omitempty"`

	// Other holds EXIF tags that have no dedicated field, keyed by tag name
	Other map[string]string `json:"other,omitempty" yaml:"other,omitempty"`

	hasExif bool
}

// NewRecord creates a record for path carrying only filesystem attributes
func NewRecord(path string, size int64, modified time.Time) *ImageMetadataRecord {
	return &ImageMetadataRecord{
		FilePath:          path,
		FileSizeBytes:     size,
		ModifiedTimestamp: modified,
	}
}

// MarkExif flags the record as backed by an EXIF segment
func (r *ImageMetadataRecord) MarkExif() {
	r.hasExif = true
}

// IsEmpty reports whether no EXIF metadata was found for the image
func (r *ImageMetadataRecord) IsEmpty() bool {
	return r == nil || !r.hasExif
}

// HasLocation reports whether the record carries a usable location.
// A (0, 0) reading is treated as no location.
func (r *ImageMetadataRecord) HasLocation() bool {
	if r == nil || r.GPS == nil {
		return false
	}
	return !(r.GPS.Latitude == 0 && r.GPS.Longitude == 0)
}
