package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is the float64 3-vector used for positions and directions.
type Vec3 = mgl64.Vec3

// Normalize returns v scaled to unit length, or the zero vector when v is
// shorter than Epsilon. mgl64's Normalize divides by zero in that case.
func Normalize(v Vec3) Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// ToR3 converts to gonum's vector type.
func ToR3(v Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// FromR3 converts from gonum's vector type.
func FromR3(v r3.Vec) Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// EmptyBox returns a box that any Extend call will replace.
func EmptyBox() r3.Box {
	inf := math.Inf(1)
	return r3.Box{
		Min: r3.Vec{X: inf, Y: inf, Z: inf},
		Max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// Extend grows b to contain p.
func Extend(b r3.Box, p Vec3) r3.Box {
	b.Min = r3.Vec{X: math.Min(b.Min.X, p[0]), Y: math.Min(b.Min.Y, p[1]), Z: math.Min(b.Min.Z, p[2])}
	b.Max = r3.Vec{X: math.Max(b.Max.X, p[0]), Y: math.Max(b.Max.Y, p[1]), Z: math.Max(b.Max.Z, p[2])}
	return b
}

// Union returns the smallest box containing a and b.
func Union(a, b r3.Box) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

// BoxIsEmpty reports whether b contains no points.
func BoxIsEmpty(b r3.Box) bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// BoxCenter returns the midpoint of b.
func BoxCenter(b r3.Box) Vec3 {
	return FromR3(r3.Scale(0.5, r3.Add(b.Min, b.Max)))
}
