package exif

import (
	"fmt"
	"strings"

	"github.com/photogeoview/photogeoview/internal/gps"
)

// Kind identifies an EXIF tag the extraction service maps to a record field.
// KindUnrecognized carries any other tag by name.
type Kind int

const (
	KindUnrecognized Kind = iota

	// camera identification
	KindMake
	KindModel
	KindLensModel
	KindSoftware

	// capture settings
	KindExposureTime
	KindFNumber
	KindISOSpeed
	KindFocalLength
	KindFlash
	KindWhiteBalance
	KindOrientation

	// timestamps
	KindDateTimeOriginal
	KindDateTime

	// dimensions
	KindPixelXDimension
	KindPixelYDimension

	// GPS sub-tags
	KindGPSLatitude
	KindGPSLatitudeRef
	KindGPSLongitude
	KindGPSLongitudeRef
	KindGPSAltitude
	KindGPSAltitudeRef
	KindGPSTimeStamp
	KindGPSDateStamp
	KindGPSVersionID
)

// kindNames maps goexif field names to kinds
var kindNames = map[string]Kind{
	"Make":             KindMake,
	"Model":            KindModel,
	"LensModel":        KindLensModel,
	"Software":         KindSoftware,
	"ExposureTime":     KindExposureTime,
	"FNumber":          KindFNumber,
	"ISOSpeedRatings":  KindISOSpeed,
	"FocalLength":      KindFocalLength,
	"Flash":            KindFlash,
	"WhiteBalance":     KindWhiteBalance,
	"Orientation":      KindOrientation,
	"DateTimeOriginal": KindDateTimeOriginal,
	"DateTime":         KindDateTime,
	"PixelXDimension":  KindPixelXDimension,
	"PixelYDimension":  KindPixelYDimension,
	"GPSLatitude":      KindGPSLatitude,
	"GPSLatitudeRef":   KindGPSLatitudeRef,
	"GPSLongitude":     KindGPSLongitude,
	"GPSLongitudeRef":  KindGPSLongitudeRef,
	"GPSAltitude":      KindGPSAltitude,
	"GPSAltitudeRef":   KindGPSAltitudeRef,
	"GPSTimeStamp":     KindGPSTimeStamp,
	"GPSDateStamp":     KindGPSDateStamp,
	"GPSVersionID":     KindGPSVersionID,
}

// KindOf returns the kind for an EXIF field name
func KindOf(name string) Kind {
	if k, ok := kindNames[name]; ok {
		return k
	}
	return KindUnrecognized
}

// IsPointer reports IFD pointer tags, which carry offsets rather than data
func IsPointer(name string) bool {
	switch name {
	case "ExifIFDPointer", "GPSInfoIFDPointer", "InteroperabilityIFDPointer", "ThumbJPEGInterchangeFormat", "ThumbJPEGInterchangeFormatLength":
		return true
	}
	return false
}

// Format is the decoded shape of a tag value
type Format int

const (
	FormatOther Format = iota
	FormatString
	FormatInt
	FormatRational
	FormatFloat
)

// Value is a decoded tag value. Only the slice matching Format is set.
type Value struct {
	Format    Format
	Str       string
	Ints      []int64
	Rationals []gps.Rational
	Floats    []float64
	Raw       string
}

// StringValue creates a string value
func StringValue(s string) Value {
	return Value{Format: FormatString, Str: s, Raw: s}
}

// IntValue creates an integer value
func IntValue(v ...int64) Value {
	return Value{Format: FormatInt, Ints: v, Raw: joinInts(v)}
}

// RationalValue creates a rational value
func RationalValue(v ...gps.Rational) Value {
	return Value{Format: FormatRational, Rationals: v, Raw: joinRationals(v)}
}

// FloatValue creates a floating point value
func FloatValue(v ...float64) Value {
	return Value{Format: FormatFloat, Floats: v, Raw: joinFloats(v)}
}

// String returns a display form of the value
func (v Value) String() string {
	if v.Format == FormatString {
		return strings.TrimSpace(v.Str)
	}
	return v.Raw
}

// Int returns the first integer, accepting rationals with denominator 1
func (v Value) Int() (int64, bool) {
	switch v.Format {
	case FormatInt:
		if len(v.Ints) > 0 {
			return v.Ints[0], true
		}
	case FormatRational:
		if len(v.Rationals) > 0 && v.Rationals[0].Den == 1 {
			return v.Rationals[0].Num, true
		}
	}
	return 0, false
}

// Float returns the first value as a float
func (v Value) Float() (float64, bool) {
	switch v.Format {
	case FormatRational:
		if len(v.Rationals) > 0 {
			return v.Rationals[0].Float()
		}
	case FormatFloat:
		if len(v.Floats) > 0 {
			return v.Floats[0], true
		}
	case FormatInt:
		if len(v.Ints) > 0 {
			return float64(v.Ints[0]), true
		}
	}
	return 0, false
}

// Tag is one EXIF tag: a known kind, or KindUnrecognized with its raw name
type Tag struct {
	Kind  Kind
	Name  string
	Value Value
}

// NewTag creates a tag, resolving its kind from name
func NewTag(name string, value Value) Tag {
	return Tag{Kind: KindOf(name), Name: name, Value: value}
}

// Tags is the result of reading a file's EXIF segment
type Tags struct {
	known map[Kind]Tag
	other []Tag
}

// NewTags builds a tag set. Later duplicates of a known kind replace earlier ones.
func NewTags(tags ...Tag) *Tags {
	t := &Tags{known: make(map[Kind]Tag)}
	for _, tag := range tags {
		t.Add(tag)
	}
	return t
}

// Add inserts a tag
func (t *Tags) Add(tag Tag) {
	if tag.Kind == KindUnrecognized {
		t.other = append(t.other, tag)
		return
	}
	t.known[tag.Kind] = tag
}

// Get returns the tag of a known kind
func (t *Tags) Get(k Kind) (Tag, bool) {
	if t == nil {
		return Tag{}, false
	}
	tag, ok := t.known[k]
	return tag, ok
}

// Known returns the recognized tags in kind order
func (t *Tags) Known() []Tag {
	if t == nil {
		return nil
	}
	out := make([]Tag, 0, len(t.known))
	for k := KindMake; k <= KindGPSVersionID; k++ {
		if tag, ok := t.known[k]; ok {
			out = append(out, tag)
		}
	}
	return out
}

// Unrecognized returns tags without a dedicated kind, in read order
func (t *Tags) Unrecognized() []Tag {
	if t == nil {
		return nil
	}
	return t.other
}

// Len returns the number of tags
func (t *Tags) Len() int {
	if t == nil {
		return 0
	}
	return len(t.known) + len(t.other)
}

// IsEmpty reports whether no tags were read
func (t *Tags) IsEmpty() bool {
	return t.Len() == 0
}

func joinInts(v []int64) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return bracket(parts)
}

func joinRationals(v []gps.Rational) string {
	parts := make([]string, len(v))
	for i, r := range v {
		if r.Den == 1 {
			parts[i] = fmt.Sprintf("%d", r.Num)
		} else {
			parts[i] = r.String()
		}
	}
	return bracket(parts)
}

func joinFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return bracket(parts)
}

func bracket(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
