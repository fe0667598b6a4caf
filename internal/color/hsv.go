package color

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// HSV is a color in hue (degrees, [0,360)), saturation and value ([0,1]).
type HSV struct {
	H, S, V float64
}

// RGBToHSV converts 8-bit RGB channels to HSV.
func RGBToHSV(r, g, b uint8) HSV {
	c := colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}
	h, s, v := c.Hsv()
	return HSV{H: h, S: s, V: v}
}

// Packed returns the opaque packed ARGB value of the HSV color. Components
// outside their valid ranges are clamped first.
func (c HSV) Packed() uint32 {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	rgb := colorful.Hsv(h, clamp01(c.S), clamp01(c.V)).Clamped()
	r, g, b := rgb.RGB255()
	return PackRGB(r, g, b)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}
