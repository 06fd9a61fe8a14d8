package raster

import (
	"image/color"
	"math"

	"haptics-installer/internal/mathutil"
)

// Light is a directional light in view space. Dir points toward the light.
type Light struct {
	Dir       mathutil.Vec3
	Intensity float64
}

// Lighting shades the flat-colored proxy meshes of a preview. Faces are lit
// from both sides since proxies are seen through each other.
type Lighting struct {
	Lights   []Light
	Sky      float64 // fill for faces turned up
	Ground   float64 // fill for faces turned down
	Gloss    float64 // highlight strength of the first light
	Shine    float64 // highlight exponent
	Exposure float64
	White    float64 // linear value mapped to full white
}

// PreviewLighting is a key light from the upper right of the camera and a
// back light from the lower left, over a sky/ground fill.
func PreviewLighting() Lighting {
	return Lighting{
		Lights: []Light{
			{Dir: mathutil.Vec3{0.45, 0.6, 0.65}.Normalize(), Intensity: 1.3},
			{Dir: mathutil.Vec3{-0.5, -0.3, -0.8}.Normalize(), Intensity: 0.5},
		},
		Sky:      0.55,
		Ground:   0.3,
		Gloss:    0.35,
		Shine:    16,
		Exposure: 1.1,
		White:    2.5,
	}
}

// Shade returns the light reaching a face with unit normal n.
func (l *Lighting) Shade(n mathutil.Vec3) float64 {
	up := (n[1] + 1) / 2
	s := l.Ground + (l.Sky-l.Ground)*up
	for _, lt := range l.Lights {
		s += math.Abs(n.Dot(lt.Dir)) * lt.Intensity
	}
	if len(l.Lights) > 0 && l.Gloss > 0 {
		// camera looks down -z
		half := l.Lights[0].Dir.Add(mathutil.Vec3{0, 0, 1}).Normalize()
		if h := math.Abs(n.Dot(half)); h > 0 {
			s += math.Pow(h, l.Shine) * l.Gloss
		}
	}
	return s
}

// Apply lights c by shade in linear space and maps the result back to
// sRGB with an extended Reinhard curve. Alpha is kept.
func (l *Lighting) Apply(c color.NRGBA, shade float64) color.NRGBA {
	k := shade * l.Exposure
	w2 := l.White * l.White
	ch := func(v uint8) uint8 {
		x := toLinear[v] * k
		x = x * (1 + x/w2) / (1 + x)
		return clamp255(math.Pow(x, 1/2.2) * 255)
	}
	return color.NRGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: c.A}
}

var toLinear = func() (t [256]float64) {
	for i := range t {
		t[i] = math.Pow(float64(i)/255, 2.2)
	}
	return t
}()

func clamp255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
