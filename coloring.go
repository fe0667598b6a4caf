package mandelray

import (
	"fmt"
	"strings"
)

// ColorMode selects how an escaped cell maps to a palette index.
type ColorMode uint8

const (
	// ColorSmooth uses the continuous escape index, modulo the palette
	// length. It removes iteration banding.
	ColorSmooth ColorMode = iota
	// ColorCyclic uses the raw iteration count modulo the palette length.
	ColorCyclic
	// ColorProportional spreads [0, maxIterations] across the palette.
	ColorProportional
)

var colorModeNames = [...]string{
	ColorSmooth:       "smooth",
	ColorCyclic:       "cyclic",
	ColorProportional: "proportional",
}

func (m ColorMode) String() string {
	if int(m) < len(colorModeNames) {
		return colorModeNames[m]
	}
	return fmt.Sprintf("ColorMode(%d)", m)
}

// Next returns the mode after m, wrapping around.
func (m ColorMode) Next() ColorMode {
	return ColorMode((int(m) + 1) % len(colorModeNames))
}

// ParseColorMode parses the name of a color mode, ignoring case.
func ParseColorMode(s string) (ColorMode, error) {
	for i, name := range colorModeNames {
		if strings.EqualFold(s, name) {
			return ColorMode(i), nil
		}
	}
	return 0, fmt.Errorf("mandelray: unknown color mode %q", s)
}

// Index maps an escaped cell to a palette index in [0, n).
//
//   - smooth: cell.Smooth mod n
//   - cyclic: iterations mod n, and n-1 when iterations == maxIterations
//   - proportional: (n-1) * iterations / maxIterations
func (m ColorMode) Index(c Cell, maxIterations, n int) int {
	it := int(c.Iterations)
	switch m {
	case ColorCyclic:
		if it == maxIterations {
			return n - 1
		}
		return mod(it, n)
	case ColorProportional:
		if maxIterations <= 0 {
			return 0
		}
		return min(max((n-1)*it/maxIterations, 0), n-1)
	default:
		return mod(int(c.Smooth), n)
	}
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// Coloring is the palette and mapping mode a pass colorizes with. It is
// passed into every render and redraw instead of being read from shared
// state.
type Coloring struct {
	Palette *Palette
	Mode    ColorMode
}

// DefaultColoring is UltraFractal with smooth coloring.
var DefaultColoring = Coloring{Palette: UltraFractal, Mode: ColorSmooth}

// Validate reports whether the coloring can be used for a pass.
func (c Coloring) Validate() error {
	if c.Palette == nil || c.Palette.Len() == 0 {
		return fmt.Errorf("%w: no palette", ErrInvalidPalette)
	}
	if int(c.Mode) >= len(colorModeNames) {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidPalette, c.Mode)
	}
	return nil
}

// ColorOf returns the color of a cell. Interior cells take the palette's
// interior color; unset cells are transparent.
func (c Coloring) ColorOf(cell Cell, maxIterations int) Color {
	switch cell.Kind {
	case CellInterior:
		return c.Palette.Interior()
	case CellEscaped:
		return c.Palette.colors[c.Mode.Index(cell, maxIterations, len(c.Palette.colors))]
	}
	return 0
}

// Colorize writes the colors of cells into dst.
func (c Coloring) Colorize(dst []uint32, cells []Cell, maxIterations int) {
	for i, cell := range cells {
		dst[i] = uint32(c.ColorOf(cell, maxIterations))
	}
}
