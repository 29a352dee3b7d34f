// Package testutil builds image fixtures for tests: plain encoded images and
// JPEGs carrying a hand-assembled EXIF segment.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// TIFF field types
const (
	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

// Rat is an unsigned EXIF rational
type Rat [2]uint32

// Exif describes the tags written by TIFF. Zero values are omitted.
type Exif struct {
	Make        string
	Model       string
	Software    string
	DateTime    string
	Artist      string
	Orientation uint16

	DateTimeOriginal string
	ExposureTime     *Rat
	FNumber          *Rat
	ISO              uint16
	FocalLength      *Rat
	LensModel        string

	LatRef  string
	Lat     []Rat
	LonRef  string
	Lon     []Rat
	AltRef  *byte
	Alt     *Rat
	GPSTime []Rat
	GPSDate string
}

// Tokyo is a fixture positioned at 35.6762 N, 139.6503 E
func Tokyo() Exif {
	return Exif{
		Make:   "Canon",
		Model:  "EOS R5",
		LatRef: "N",
		Lat:    []Rat{{35, 1}, {40, 1}, {3432, 100}},
		LonRef: "E",
		Lon:    []Rat{{139, 1}, {39, 1}, {108, 100}},
	}
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func ascii(tag uint16, s string) entry {
	b := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

func short(tag uint16, v uint16) entry {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return entry{tag: tag, typ: typeShort, count: 1, data: b}
}

func long(tag uint16, v uint32) entry {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return entry{tag: tag, typ: typeLong, count: 1, data: b}
}

func rationals(tag uint16, v ...Rat) entry {
	b := make([]byte, 8*len(v))
	for i, r := range v {
		binary.LittleEndian.PutUint32(b[i*8:], r[0])
		binary.LittleEndian.PutUint32(b[i*8+4:], r[1])
	}
	return entry{tag: tag, typ: typeRational, count: uint32(len(v)), data: b}
}

func ifdSize(entries []entry) uint32 {
	size := uint32(2 + 12*len(entries) + 4)
	for _, e := range entries {
		if len(e.data) > 4 {
			size += uint32(len(e.data) + len(e.data)%2)
		}
	}
	return size
}

// encodeIFD lays out one directory at offset start, with out-of-line values
// directly after it
func encodeIFD(start uint32, entries []entry) []byte {
	buf := make([]byte, ifdSize(entries))
	binary.LittleEndian.PutUint16(buf, uint16(len(entries)))

	dataOff := uint32(2 + 12*len(entries) + 4)
	for i, e := range entries {
		p := 2 + 12*i
		binary.LittleEndian.PutUint16(buf[p:], e.tag)
		binary.LittleEndian.PutUint16(buf[p+2:], e.typ)
		binary.LittleEndian.PutUint32(buf[p+4:], e.count)
		if len(e.data) <= 4 {
			copy(buf[p+8:p+12], e.data)
			continue
		}
		binary.LittleEndian.PutUint32(buf[p+8:], start+dataOff)
		copy(buf[dataOff:], e.data)
		dataOff += uint32(len(e.data) + len(e.data)%2)
	}
	return buf
}

// TIFF encodes x as a little-endian TIFF structure with IFD0, an Exif
// sub-IFD and a GPS sub-IFD
func TIFF(x Exif) []byte {
	var ifd0, sub, gpsIFD []entry

	if x.Make != "" {
		ifd0 = append(ifd0, ascii(0x010F, x.Make))
	}
	if x.Model != "" {
		ifd0 = append(ifd0, ascii(0x0110, x.Model))
	}
	if x.Orientation != 0 {
		ifd0 = append(ifd0, short(0x0112, x.Orientation))
	}
	if x.Software != "" {
		ifd0 = append(ifd0, ascii(0x0131, x.Software))
	}
	if x.DateTime != "" {
		ifd0 = append(ifd0, ascii(0x0132, x.DateTime))
	}
	if x.Artist != "" {
		ifd0 = append(ifd0, ascii(0x013B, x.Artist))
	}

	if x.ExposureTime != nil {
		sub = append(sub, rationals(0x829A, *x.ExposureTime))
	}
	if x.FNumber != nil {
		sub = append(sub, rationals(0x829D, *x.FNumber))
	}
	if x.ISO != 0 {
		sub = append(sub, short(0x8827, x.ISO))
	}
	if x.DateTimeOriginal != "" {
		sub = append(sub, ascii(0x9003, x.DateTimeOriginal))
	}
	if x.FocalLength != nil {
		sub = append(sub, rationals(0x920A, *x.FocalLength))
	}
	if x.LensModel != "" {
		sub = append(sub, ascii(0xA434, x.LensModel))
	}

	if x.LatRef != "" {
		gpsIFD = append(gpsIFD, ascii(0x0001, x.LatRef))
	}
	if len(x.Lat) > 0 {
		gpsIFD = append(gpsIFD, rationals(0x0002, x.Lat...))
	}
	if x.LonRef != "" {
		gpsIFD = append(gpsIFD, ascii(0x0003, x.LonRef))
	}
	if len(x.Lon) > 0 {
		gpsIFD = append(gpsIFD, rationals(0x0004, x.Lon...))
	}
	if x.AltRef != nil {
		gpsIFD = append(gpsIFD, entry{tag: 0x0005, typ: 1, count: 1, data: []byte{*x.AltRef}})
	}
	if x.Alt != nil {
		gpsIFD = append(gpsIFD, rationals(0x0006, *x.Alt))
	}
	if len(x.GPSTime) > 0 {
		gpsIFD = append(gpsIFD, rationals(0x0007, x.GPSTime...))
	}
	if x.GPSDate != "" {
		gpsIFD = append(gpsIFD, ascii(0x001D, x.GPSDate))
	}

	// Pointer entries are LONGs, so their size is known before their values
	if len(sub) > 0 {
		ifd0 = append(ifd0, long(0x8769, 0))
	}
	if len(gpsIFD) > 0 {
		ifd0 = append(ifd0, long(0x8825, 0))
	}

	ifd0Off := uint32(8)
	subOff := ifd0Off + ifdSize(ifd0)
	gpsOff := subOff
	if len(sub) > 0 {
		gpsOff += ifdSize(sub)
	}

	for i := range ifd0 {
		switch ifd0[i].tag {
		case 0x8769:
			binary.LittleEndian.PutUint32(ifd0[i].data, subOff)
		case 0x8825:
			binary.LittleEndian.PutUint32(ifd0[i].data, gpsOff)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("II*\x00")
	_ = binary.Write(&buf, binary.LittleEndian, ifd0Off)
	buf.Write(encodeIFD(ifd0Off, ifd0))
	if len(sub) > 0 {
		buf.Write(encodeIFD(subOff, sub))
	}
	if len(gpsIFD) > 0 {
		buf.Write(encodeIFD(gpsOff, gpsIFD))
	}
	return buf.Bytes()
}

// Solid returns a w×h image filled with c
func Solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// JPEG encodes a solid w×h image
func JPEG(tb testing.TB, w, h int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Solid(w, h, color.RGBA{R: 200, G: 60, B: 40, A: 255}), &jpeg.Options{Quality: 90}); err != nil {
		tb.Fatalf("encoding jpeg fixture: %v", err)
	}
	return buf.Bytes()
}

// PNG encodes a solid w×h image
func PNG(tb testing.TB, w, h int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, Solid(w, h, color.RGBA{R: 40, G: 60, B: 200, A: 255})); err != nil {
		tb.Fatalf("encoding png fixture: %v", err)
	}
	return buf.Bytes()
}

// JPEGWithExif encodes a solid w×h JPEG and splices an APP1 Exif segment
// holding x right after the SOI marker
func JPEGWithExif(tb testing.TB, w, h int, x Exif) []byte {
	tb.Helper()
	plain := JPEG(tb, w, h)
	payload := append([]byte("Exif\x00\x00"), TIFF(x)...)

	var buf bytes.Buffer
	buf.Write(plain[:2])
	buf.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write(plain[2:])
	return buf.Bytes()
}

// WriteFile writes data to name inside dir and returns the full path
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		tb.Fatalf("creating fixture directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		tb.Fatalf("writing fixture: %v", err)
	}
	return path
}
