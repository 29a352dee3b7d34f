package testutil

import (
	"bytes"
	"testing"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTIFF_GPSWithoutExifSubIFD(t *testing.T) {
	x := Tokyo()
	require.Nil(t, x.FNumber)
	require.Empty(t, x.DateTimeOriginal)

	decoded, err := exif.Decode(bytes.NewReader(TIFF(x)))
	require.NoError(t, err)

	lat, lon, err := decoded.LatLong()
	require.NoError(t, err)
	assert.InDelta(t, 35.6762, lat, 1e-4)
	assert.InDelta(t, 139.6503, lon, 1e-4)

	_, err = decoded.Get(exif.FNumber)
	assert.Error(t, err, "no Exif sub-IFD was written")
}

func TestTIFF_GPSAfterExifSubIFD(t *testing.T) {
	x := Tokyo()
	x.FNumber = &Rat{28, 10}
	x.DateTimeOriginal = "2024:03:15 14:30:00"

	decoded, err := exif.Decode(bytes.NewReader(TIFF(x)))
	require.NoError(t, err)

	fn, err := decoded.Get(exif.FNumber)
	require.NoError(t, err)
	num, den, err := fn.Rat2(0)
	require.NoError(t, err)
	assert.Equal(t, [2]int64{28, 10}, [2]int64{num, den})

	_, _, err = decoded.LatLong()
	assert.NoError(t, err)
}

func TestJPEGWithExif_Decodes(t *testing.T) {
	decoded, err := exif.Decode(bytes.NewReader(JPEGWithExif(t, 16, 12, Tokyo())))
	require.NoError(t, err)

	model, err := decoded.Get(exif.Model)
	require.NoError(t, err)
	s, err := model.StringVal()
	require.NoError(t, err)
	assert.Equal(t, "EOS R5", s)
}
