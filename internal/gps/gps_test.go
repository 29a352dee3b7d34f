package gps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDecimal_Tokyo(t *testing.T) {
	lat, ok := ToDecimal(NewRational(35, 1), NewRational(40, 1), NewRational(3432, 100), "N")
	require.True(t, ok)
	assert.InDelta(t, 35.676200, lat, 1e-4)

	lon, ok := ToDecimal(NewRational(139, 1), NewRational(39, 1), NewRational(108, 100), "E")
	require.True(t, ok)
	assert.InDelta(t, 139.6503, lon, 1e-4)
}

func TestToDecimal_SouthAndWestAreNegative(t *testing.T) {
	lat, ok := ToDecimal(NewRational(33, 1), NewRational(52, 1), NewRational(0, 1), "S")
	require.True(t, ok)
	assert.Less(t, lat, 0.0)

	lon, ok := ToDecimal(NewRational(151, 1), NewRational(12, 1), NewRational(0, 1), " w ")
	require.True(t, ok)
	assert.InDelta(t, -151.2, lon, 1e-9)
}

func TestToDecimal_ZeroDenominatorFails(t *testing.T) {
	tests := []struct {
		name    string
		d, m, s Rational
	}{
		{"degrees", NewRational(35, 0), NewRational(40, 1), NewRational(1, 1)},
		{"minutes", NewRational(35, 1), NewRational(40, 0), NewRational(1, 1)},
		{"seconds", NewRational(35, 1), NewRational(40, 1), NewRational(1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ToDecimal(tt.d, tt.m, tt.s, "N")
			assert.False(t, ok)
		})
	}
}

func TestFromTriple_ShortInput(t *testing.T) {
	_, ok := FromTriple([]Rational{NewRational(1, 1), NewRational(2, 1)}, "N")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	valid := [][2]float64{{0, 0}, {90, 180}, {-90, -180}, {35.6762, 139.6503}, {-33.86, 151.2}}
	for _, c := range valid {
		assert.True(t, Validate(c[0], c[1]), "%v should be valid", c)
	}

	invalid := [][2]float64{{90.0001, 0}, {-91, 0}, {0, 180.5}, {0, -181}}
	for _, c := range invalid {
		assert.False(t, Validate(c[0], c[1]), "%v should be invalid", c)
	}
}

func TestFormatForDisplay_Hemispheres(t *testing.T) {
	s := FormatForDisplay(35.6762, 139.6503, 6)
	assert.Equal(t, "35.676200°N, 139.650300°E", s)

	s = FormatForDisplay(-33.8688, -70.25, 2)
	assert.Equal(t, "33.87°S, 70.25°W", s)
	assert.False(t, strings.Contains(s, "-"))
}

func TestValidAndFormattedRoundTrip(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 22.5 {
		for lon := -180.0; lon <= 180; lon += 45 {
			require.True(t, Validate(lat, lon))

			s := Format(lat, lon)
			if lat < 0 {
				assert.Contains(t, s, "°S")
			} else {
				assert.Contains(t, s, "°N")
			}
			if lon < 0 {
				assert.Contains(t, s, "°W")
			} else {
				assert.Contains(t, s, "°E")
			}
		}
	}
}

func TestNullIsland(t *testing.T) {
	assert.True(t, IsNullIsland(0, 0))
	assert.False(t, Usable(0, 0))
	assert.False(t, IsNullIsland(0, 0.0001))
	assert.True(t, Usable(0, 0.0001))
}

func TestFormatTime(t *testing.T) {
	s, ok := FormatTime([]Rational{NewRational(9, 1), NewRational(5, 1), NewRational(3050, 100)})
	require.True(t, ok)
	assert.Equal(t, "09:05:30", s)

	_, ok = FormatTime([]Rational{NewRational(9, 1), NewRational(5, 0), NewRational(1, 1)})
	assert.False(t, ok)
}
