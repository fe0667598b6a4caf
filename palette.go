package mandelray

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	pcolor "github.com/gogpu/mandelray/internal/color"
)

// Palette is an immutable, ordered sequence of colors plus the index of the
// color used for interior points.
type Palette struct {
	name     string
	colors   []Color
	interior int
}

// NewPalette builds a palette. It fails with ErrInvalidPalette when colors
// is empty or interior is out of range. colors is copied.
func NewPalette(name string, colors []Color, interior int) (*Palette, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("%w: %q has no colors", ErrInvalidPalette, name)
	}
	if interior < 0 || interior >= len(colors) {
		return nil, fmt.Errorf("%w: %q interior index %d not in [0,%d)",
			ErrInvalidPalette, name, interior, len(colors))
	}
	return &Palette{
		name:     name,
		colors:   append([]Color(nil), colors...),
		interior: interior,
	}, nil
}

func mustPalette(name string, colors []Color, interior int) *Palette {
	p, err := NewPalette(name, colors, interior)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the display name.
func (p *Palette) Name() string { return p.name }

// Len returns the number of colors.
func (p *Palette) Len() int { return len(p.colors) }

// InteriorIndex returns the index of the interior color.
func (p *Palette) InteriorIndex() int { return p.interior }

// Interior returns the color of points that never escape.
func (p *Palette) Interior() Color { return p.colors[p.interior] }

// Color returns the color at index i. It panics if i is out of range.
func (p *Palette) Color(i int) Color { return p.colors[i] }

// Colors returns a copy of the colors.
func (p *Palette) Colors() []Color {
	return append([]Color(nil), p.colors...)
}

func (p *Palette) String() string { return p.name }

// Built-in palettes.
var (
	UltraFractal = buildUltraFractal()
	MultiColor   = buildMultiColor()
	Grayscale    = buildGrayscale()
)

// BuiltinPalettes returns the built-in palettes in display order.
func BuiltinPalettes() []*Palette {
	return []*Palette{UltraFractal, MultiColor, Grayscale}
}

const (
	ultraFractalSize = 128

	// ultraFractalInterior is the position of the last control color.
	ultraFractalInterior = 0.8575
)

// buildUltraFractal interpolates five control colors in HSV space with a
// natural cubic spline per channel.
func buildUltraFractal() *Palette {
	const n = ultraFractalSize
	xs := []float64{0, 0.16 * n, 0.42 * n, 0.6425 * n, ultraFractalInterior * n}
	ctrl := [][3]uint8{
		{0, 7, 100},
		{32, 107, 203},
		{237, 255, 255},
		{255, 170, 0},
		{0, 2, 0},
	}

	hs := make([]float64, len(ctrl))
	ss := make([]float64, len(ctrl))
	vs := make([]float64, len(ctrl))
	for i, c := range ctrl {
		hsv := pcolor.RGBToHSV(c[0], c[1], c[2])
		hs[i], ss[i], vs[i] = hsv.H, hsv.S, hsv.V
	}

	hue := mustSpline(xs, hs)
	sat := mustSpline(xs, ss)
	val := mustSpline(xs, vs)

	colors := make([]Color, n)
	for i := range colors {
		x := float64(i)
		c := pcolor.HSV{
			H: clamp(hue.Predict(x), 0, 255),
			S: clamp(sat.Predict(x), 0, 1),
			V: clamp(val.Predict(x), 0, 1),
		}
		colors[i] = Color(c.Packed())
	}
	// 0.8575*128 = 109.76, truncated to 109.
	return mustPalette("Ultra Fractal", colors, int(xs[len(xs)-1]))
}

// mustSpline fits a natural cubic spline. Past the last knot it holds the
// last value.
func mustSpline(xs, ys []float64) *interp.NaturalCubic {
	var s interp.NaturalCubic
	if err := s.Fit(xs, ys); err != nil {
		panic(err)
	}
	return &s
}

// buildMultiColor is a 256-entry rainbow: seven 32-step ramps from white
// through yellow, green, cyan, blue, violet and red, ending in black.
func buildMultiColor() *Palette {
	colors := make([]Color, 256)
	for i := 1; i <= 31; i++ {
		d := uint8(8 * i) //nolint:gosec // G115: at most 248
		colors[i] = RGB(255, 255, 255-d)
		colors[i+31] = RGB(255-d, 255, 0)
		colors[i+63] = RGB(0, 255, d)
		colors[i+95] = RGB(0, 255-d, 255)
		colors[i+127] = RGB(d, 0, 255)
		colors[i+159] = RGB(255, 0, 255-d)
		colors[i+191] = RGB(255-d, 0, 0)
	}
	colors[0] = RGB(255, 255, 255)
	colors[31] = RGB(255, 255, 0)
	colors[63] = RGB(0, 255, 0)
	colors[95] = RGB(0, 255, 255)
	colors[127] = RGB(0, 0, 255)
	colors[159] = RGB(255, 0, 255)
	colors[191] = RGB(255, 0, 0)
	// Indices 222 through 255 are black.
	for i := 222; i < len(colors); i++ {
		colors[i] = RGB(0, 0, 0)
	}
	return mustPalette("Multi Color", colors, 0)
}

func buildGrayscale() *Palette {
	colors := make([]Color, 256)
	for i := range colors {
		v := uint8(255 - i) //nolint:gosec // G115: i < 256
		colors[i] = RGB(v, v, v)
	}
	return mustPalette("Grayscale", colors, 0)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
