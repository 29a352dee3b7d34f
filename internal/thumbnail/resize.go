package thumbnail

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// fitWithin scales (w, h) down to fit inside (maxW, maxH), keeping the aspect
// ratio. Sizes that already fit are returned unchanged.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))

	nw = min(max(nw, 1), maxW)
	nh = min(max(nh, 1), maxH)
	return nw, nh
}

// scale resamples src to exactly w×h with Catmull-Rom
func scale(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Resize shrinks src to fit within width×height. Large reductions go through
// an intermediate image fitting max(2·S, min(srcW, srcH)) square, S being the
// smaller target side. Sources that already fit are returned as-is.
func Resize(src image.Image, width, height int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()

	if sw <= width && sh <= height {
		return src
	}

	s := min(width, height)
	intermediate := max(2*s, min(sw, sh))

	img := src
	if sw > intermediate || sh > intermediate {
		iw, ih := fitWithin(sw, sh, intermediate, intermediate)
		img = scale(src, iw, ih)
	}

	ib := img.Bounds()
	tw, th := fitWithin(ib.Dx(), ib.Dy(), width, height)
	if tw == ib.Dx() && th == ib.Dy() {
		return img
	}
	return scale(img, tw, th)
}

// Compose centers img on a white width×height canvas
func Compose(img image.Image, width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	b := img.Bounds()
	x := (width - b.Dx()) / 2
	y := (height - b.Dy()) / 2
	target := image.Rect(x, y, x+b.Dx(), y+b.Dy())

	draw.Draw(canvas, target, img, b.Min, draw.Over)
	return canvas
}
