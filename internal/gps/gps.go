// Package gps converts EXIF degree/minute/second coordinates into signed
// decimal degrees and formats them for display.
package gps

import (
	"fmt"
	"math"
	"strings"
)

// Rational is an EXIF RATIONAL or SRATIONAL value
type Rational struct {
	Num int64
	Den int64
}

// NewRational creates a rational from a numerator and denominator
func NewRational(num, den int64) Rational {
	return Rational{Num: num, Den: den}
}

// Float returns the value of r. ok is false for a zero denominator.
func (r Rational) Float() (float64, bool) {
	if r.Den == 0 {
		return 0, false
	}
	return float64(r.Num) / float64(r.Den), true
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// ToDecimal converts a degrees/minutes/seconds triple plus a hemisphere
// reference (N, S, E or W) to decimal degrees. S and W are negative.
// ok is false when any component has a zero denominator.
func ToDecimal(degrees, minutes, seconds Rational, ref string) (float64, bool) {
	d, ok := degrees.Float()
	if !ok {
		return 0, false
	}
	m, ok := minutes.Float()
	if !ok {
		return 0, false
	}
	s, ok := seconds.Float()
	if !ok {
		return 0, false
	}

	decimal := d + m/60.0 + s/3600.0

	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "S", "W":
		decimal = -decimal
	}

	return decimal, true
}

// FromTriple converts an EXIF coordinate tag value, which must hold at least
// three rationals, using ToDecimal
func FromTriple(values []Rational, ref string) (float64, bool) {
	if len(values) < 3 {
		return 0, false
	}
	return ToDecimal(values[0], values[1], values[2], ref)
}

// Validate reports whether lat is within [-90, 90] and lon within [-180, 180]
func Validate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// IsNullIsland reports the degenerate (0, 0) reading that stands for "no GPS"
func IsNullIsland(lat, lon float64) bool {
	return lat == 0 && lon == 0
}

// Usable reports whether a coordinate is valid and not null island
func Usable(lat, lon float64) bool {
	return Validate(lat, lon) && !IsNullIsland(lat, lon)
}

// DefaultPrecision is the number of decimals used by Format
const DefaultPrecision = 6

// FormatForDisplay renders "35.676200°N, 139.650300°E" with the given precision
func FormatForDisplay(lat, lon float64, precision int) string {
	if precision < 0 {
		precision = DefaultPrecision
	}

	latDir := "N"
	if lat < 0 {
		latDir = "S"
	}
	lonDir := "E"
	if lon < 0 {
		lonDir = "W"
	}

	return fmt.Sprintf("%.*f°%s, %.*f°%s", precision, math.Abs(lat), latDir, precision, math.Abs(lon), lonDir)
}

// Format renders a coordinate with DefaultPrecision
func Format(lat, lon float64) string {
	return FormatForDisplay(lat, lon, DefaultPrecision)
}

// FormatTime renders a GPS timestamp triple (hours, minutes, seconds) as HH:MM:SS
func FormatTime(values []Rational) (string, bool) {
	if len(values) < 3 {
		return "", false
	}

	var parts [3]int
	for i := 0; i < 3; i++ {
		f, ok := values[i].Float()
		if !ok {
			return "", false
		}
		parts[i] = int(f)
	}

	return fmt.Sprintf("%02d:%02d:%02d", parts[0], parts[1], parts[2]), true
}
