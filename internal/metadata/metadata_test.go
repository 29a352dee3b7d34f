package metadata

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photogeoview/photogeoview/internal/logger"
	"github.com/photogeoview/photogeoview/internal/testutil"
	"github.com/photogeoview/photogeoview/pkg/common"
)

func newTestExtractor() *Extractor {
	return NewExtractor(logger.Nop(), nil)
}

func TestExtract_GPSJPEG(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "tokyo.jpg", testutil.JPEGWithExif(t, 40, 30, testutil.Tokyo()))

	record := newTestExtractor().Extract(path)

	require.False(t, record.IsEmpty())
	assert.Equal(t, "Canon", record.CameraMake)
	assert.Equal(t, "EOS R5", record.CameraModel)
	require.NotNil(t, record.GPS)
	assert.InDelta(t, 35.6762, record.GPS.Latitude, 1e-4)
	assert.InDelta(t, 139.6503, record.GPS.Longitude, 1e-4)
	assert.True(t, record.HasLocation())
	assert.True(t, filepath.IsAbs(record.FilePath))
	assert.Greater(t, record.FileSizeBytes, int64(0))
}

func TestExtract_SouthWestAndExtras(t *testing.T) {
	below := byte(1)
	x := testutil.Exif{
		Make:             "Apple",
		Model:            "iPhone 15",
		Software:         "17.1",
		Orientation:      6,
		DateTimeOriginal: "2024:02:29 18:45:10",
		DateTime:         "not a date",
		ExposureTime:     &testutil.Rat{1, 250},
		FNumber:          &testutil.Rat{18, 10},
		ISO:              64,
		FocalLength:      &testutil.Rat{24, 1},
		LensModel:        "Main Camera",
		Artist:           "someone",
		LatRef:           "S",
		Lat:              []testutil.Rat{{33, 1}, {52, 1}, {0, 1}},
		LonRef:           "W",
		Lon:              []testutil.Rat{{70, 1}, {15, 1}, {0, 1}},
		AltRef:           &below,
		Alt:              &testutil.Rat{125, 10},
		GPSTime:          []testutil.Rat{{9, 1}, {5, 1}, {30, 1}},
		GPSDate:          "2024:02:29",
	}
	path := testutil.WriteFile(t, t.TempDir(), "iphone.jpeg", testutil.JPEGWithExif(t, 20, 20, x))

	record := newTestExtractor().Extract(path)
	require.False(t, record.IsEmpty())

	assert.Equal(t, "17.1", record.Software)
	assert.Equal(t, "Main Camera", record.LensModel)
	assert.Equal(t, "1/250", record.ExposureTime)
	assert.Equal(t, "1.8", record.FNumber)
	assert.Equal(t, "24", record.FocalLength)
	require.NotNil(t, record.ISOSpeed)
	assert.Equal(t, 64, *record.ISOSpeed)
	require.NotNil(t, record.Orientation)
	assert.Equal(t, 6, *record.Orientation)

	require.NotNil(t, record.DateTimeOriginal)
	assert.Equal(t, time.Date(2024, 2, 29, 18, 45, 10, 0, time.UTC), *record.DateTimeOriginal)
	assert.Nil(t, record.DateTime, "unparsable timestamps are dropped")

	assert.Equal(t, "someone", record.Other["Artist"])

	require.NotNil(t, record.GPS)
	assert.InDelta(t, -33.8667, record.GPS.Latitude, 1e-4)
	assert.InDelta(t, -70.25, record.GPS.Longitude, 1e-4)
	require.NotNil(t, record.GPS.Altitude)
	assert.InDelta(t, -12.5, *record.GPS.Altitude, 1e-9)
	assert.Equal(t, "09:05:30", record.GPS.Time)
	assert.Equal(t, "2024:02:29", record.GPS.Date)
}

func TestExtract_GPSRejected(t *testing.T) {
	tests := []struct {
		name string
		exif testutil.Exif
	}{
		{
			name: "null island",
			exif: testutil.Exif{
				Make: "Generic", LatRef: "N", Lat: []testutil.Rat{{0, 1}, {0, 1}, {0, 1}},
				LonRef: "E", Lon: []testutil.Rat{{0, 1}, {0, 1}, {0, 1}},
			},
		},
		{
			name: "zero denominator",
			exif: testutil.Exif{
				Make: "Generic", LatRef: "N", Lat: []testutil.Rat{{35, 0}, {40, 1}, {0, 1}},
				LonRef: "E", Lon: []testutil.Rat{{139, 1}, {39, 1}, {0, 1}},
			},
		},
		{
			name: "out of range",
			exif: testutil.Exif{
				Make: "Generic", LatRef: "N", Lat: []testutil.Rat{{95, 1}, {0, 1}, {0, 1}},
				LonRef: "E", Lon: []testutil.Rat{{10, 1}, {0, 1}, {0, 1}},
			},
		},
		{
			name: "latitude only",
			exif: testutil.Exif{
				Make: "Generic", LatRef: "N", Lat: []testutil.Rat{{35, 1}, {0, 1}, {0, 1}},
			},
		},
		{
			name: "missing refs",
			exif: testutil.Exif{
				Make: "Generic", Lat: []testutil.Rat{{33, 1}, {52, 1}, {1, 1}},
				Lon: []testutil.Rat{{151, 1}, {12, 1}, {1, 1}},
			},
		},
		{
			name: "missing longitude ref",
			exif: testutil.Exif{
				Make: "Generic", LatRef: "S", Lat: []testutil.Rat{{33, 1}, {52, 1}, {1, 1}},
				Lon: []testutil.Rat{{151, 1}, {12, 1}, {1, 1}},
			},
		},
		{
			name: "unknown latitude ref",
			exif: testutil.Exif{
				Make: "Generic", LatRef: "X", Lat: []testutil.Rat{{33, 1}, {52, 1}, {1, 1}},
				LonRef: "E", Lon: []testutil.Rat{{151, 1}, {12, 1}, {1, 1}},
			},
		},
		{
			name: "short triple",
			exif: testutil.Exif{
				Make: "Generic", LatRef: "N", Lat: []testutil.Rat{{35, 1}, {0, 1}},
				LonRef: "E", Lon: []testutil.Rat{{139, 1}, {0, 1}, {0, 1}},
			},
		},
	}

	dir := t.TempDir()
	e := newTestExtractor()

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, dir, filepath.Base(t.Name())+string(rune('a'+i))+".jpg", testutil.JPEGWithExif(t, 8, 8, tt.exif))

			record := e.Extract(path)
			require.False(t, record.IsEmpty())
			assert.Equal(t, "Generic", record.CameraMake)
			assert.Nil(t, record.GPS)
			assert.False(t, record.HasLocation())
			assert.NotContains(t, ToMap(record), "gps")
		})
	}
}

func TestExtract_GracefulDegradation(t *testing.T) {
	dir := t.TempDir()

	paths := map[string]string{
		"missing":   filepath.Join(dir, "missing.jpg"),
		"zero-byte": testutil.WriteFile(t, dir, "empty.jpg", nil),
		"renamed":   testutil.WriteFile(t, dir, "notes.jpg", []byte("plain text, not an image")),
		"directory": testutil.WriteFile(t, dir, "folder.jpg/inner.txt", []byte("x")),
		"text":      testutil.WriteFile(t, dir, "readme.txt", []byte("hello")),
	}
	paths["directory"] = filepath.Dir(paths["directory"])

	e := newTestExtractor()
	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			var m map[string]interface{}
			assert.NotPanics(t, func() {
				record := e.Extract(path)
				require.NotNil(t, record)
				assert.True(t, record.IsEmpty())
				m = ToMap(record)
			})
			assert.Empty(t, m)
		})
	}
}

func TestRead_ErrorKinds(t *testing.T) {
	dir := t.TempDir()
	e := newTestExtractor()

	_, err := e.Read(filepath.Join(dir, "missing.jpg"))
	assert.ErrorIs(t, err, common.ErrIOFailure)

	_, err = e.Read(testutil.WriteFile(t, dir, "fake.jpg", []byte("nope")))
	assert.ErrorIs(t, err, common.ErrNotAnImage)

	record, err := e.Read(testutil.WriteFile(t, dir, "shot.png", testutil.PNG(t, 10, 10)))
	assert.ErrorIs(t, err, common.ErrNoMetadata)
	assert.Greater(t, record.FileSizeBytes, int64(0))
	assert.True(t, record.IsEmpty())
}

func TestExtract_PNGScreenshot(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "screenshot.png", testutil.PNG(t, 32, 32))

	m := ToMap(newTestExtractor().Extract(path))
	assert.Empty(t, m)

	groups := Categorize(m)
	require.Len(t, groups, 5)
	for _, c := range Categories {
		assert.Empty(t, groups[c], c)
	}
}

func TestExtract_Timezone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	x := testutil.Exif{Make: "Sony", DateTimeOriginal: "2023:01:02 03:04:05"}
	path := testutil.WriteFile(t, t.TempDir(), "sony.jpg", testutil.JPEGWithExif(t, 8, 8, x))

	record := NewExtractor(logger.Nop(), tokyo).Extract(path)
	require.NotNil(t, record.DateTimeOriginal)
	assert.Equal(t, tokyo, record.DateTimeOriginal.Location())
	assert.Equal(t, 3, record.DateTimeOriginal.Hour())
}

func TestParseTime(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		in   string
		want *time.Time
	}{
		{"2023:07:14 09:30:00", ptrTime(time.Date(2023, 7, 14, 9, 30, 0, 0, time.UTC))},
		{"2023-07-14T09:30:00Z", ptrTime(time.Date(2023, 7, 14, 9, 30, 0, 0, time.UTC))},
		{"2023-07-14 09:30:00", ptrTime(time.Date(2023, 7, 14, 9, 30, 0, 0, time.UTC))},
		{"0000:00:00 00:00:00", nil},
		{"", nil},
		{"yesterday", nil},
	}

	for _, tt := range tests {
		got := e.parseTime(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.True(t, tt.want.Equal(*got), tt.in)
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
