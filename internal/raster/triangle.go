package raster

import (
	"image/color"
	"math"

	"haptics-installer/internal/mathutil"
)

// RasterizeTriangle draws one flat-shaded triangle given in screen space
// (x right, y down, z toward the viewer) with z-buffering. Colors with
// alpha below 255 are blended over what is already in the buffer; the
// z-buffer is still written.
func RasterizeTriangle(fb *FrameBuffer, a, b, c mathutil.Vec3, col color.NRGBA, lt *Lighting) {
	if col.A < 8 {
		return
	}
	x0, y0, z0 := a[0], a[1], a[2]
	x1, y1, z1 := b[0], b[1], b[2]
	x2, y2, z2 := c[0], c[1], c[2]

	// Face normal for flat shading
	n := b.Sub(a).Cross(c.Sub(a))
	nl := n.Len()
	if nl < 1e-8 {
		return
	}
	lit := lt.Apply(col, lt.Shade(n.Mul(1/nl)))
	sr, sg, sb := lit.R, lit.G, lit.B

	// Bounding box
	minX := max(int(math.Min(math.Min(x0, x1), x2)), 0)
	maxX := min(int(math.Max(math.Max(x0, x1), x2))+1, fb.Width-1)
	minY := max(int(math.Min(math.Min(y0, y1), y2)), 0)
	maxY := min(int(math.Max(math.Max(y0, y1), y2))+1, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	alpha := float64(col.A) / 255
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			i := zIdx * 4
			if col.A == 255 {
				fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3] = sr, sg, sb, 255
				continue
			}
			// Source-over blend in non-premultiplied space.
			da := float64(fb.Color[i+3]) / 255
			oa := alpha + da*(1-alpha)
			blend := func(s uint8, d uint8) uint8 {
				return clamp255((float64(s)*alpha + float64(d)*da*(1-alpha)) / oa)
			}
			fb.Color[i] = blend(sr, fb.Color[i])
			fb.Color[i+1] = blend(sg, fb.Color[i+1])
			fb.Color[i+2] = blend(sb, fb.Color[i+2])
			fb.Color[i+3] = clamp255(oa * 255)
		}
	}
}
