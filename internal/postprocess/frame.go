// Package postprocess turns raw preview renders into final thumbnails.
package postprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// DefaultFillRatio is the share of the canvas the framed subject spans.
const DefaultFillRatio = 0.85

// Frame crops img to its opaque pixels and centers the result on a square
// transparent canvas of size pixels, scaled so the longer side spans
// fillRatio of it. img is usually a supersampled render, so this is also
// the one resampling step of a preview. Scaling runs on premultiplied
// alpha so edges blend toward the subject color and not toward black. A
// fully transparent image gives an empty canvas.
func Frame(img *image.NRGBA, size int, fillRatio float64) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	box, ok := opaqueBounds(img)
	if !ok {
		return canvas
	}
	if fillRatio <= 0 || fillRatio > 1 {
		fillRatio = DefaultFillRatio
	}

	maxDim := float64(size) * fillRatio
	s := maxDim / math.Max(float64(box.Dx()), float64(box.Dy()))
	w := max(int(float64(box.Dx())*s+0.5), 1)
	h := max(int(float64(box.Dy())*s+0.5), 1)

	src := image.NewRGBA(box)
	draw.Draw(src, box, img, box.Min, draw.Src)

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, box, draw.Src, nil)

	off := image.Pt((size-w)/2, (size-h)/2)
	draw.Draw(canvas, scaled.Bounds().Add(off), scaled, image.Point{}, draw.Src)
	return canvas
}

// opaqueBounds is the bounding rectangle of pixels with non-zero alpha.
func opaqueBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
