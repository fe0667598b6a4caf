package mandelray

import (
	"fmt"
	"image/color"

	pcolor "github.com/gogpu/mandelray/internal/color"
)

// Color is a packed 32-bit 0xAARRGGBB color, the pixel format of every
// display surface. Color implements color.Color.
type Color uint32

// RGB returns an opaque Color.
func RGB(r, g, b uint8) Color {
	return Color(pcolor.PackRGB(r, g, b))
}

// ARGB returns a Color with the given alpha.
func ARGB(a, r, g, b uint8) Color {
	return Color(pcolor.Pack(r, g, b, a))
}

// Channels returns the 8-bit straight (non-premultiplied) channels.
func (c Color) Channels() (r, g, b, a uint8) {
	return pcolor.Unpack(uint32(c))
}

// RGBA implements color.Color. The result is alpha-premultiplied.
func (c Color) RGBA() (r, g, b, a uint32) {
	cr, cg, cb, ca := c.Channels()
	return color.NRGBA{R: cr, G: cg, B: cb, A: ca}.RGBA()
}

// String formats the color as "#RRGGBB", or "#RRGGBBAA" when translucent.
func (c Color) String() string {
	r, g, b, a := c.Channels()
	if a == 0xFF {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}

// Hex parses a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", each with an
// optional leading '#'.
func Hex(hex string) (Color, error) {
	s := hex
	if s != "" && s[0] == '#' {
		s = s[1:]
	}

	var r, g, b uint32
	a := uint32(255)
	ok := true

	switch len(s) {
	case 3:
		ok = parseHex(s[0:1], &r) && parseHex(s[1:2], &g) && parseHex(s[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		ok = parseHex(s[0:1], &r) && parseHex(s[1:2], &g) && parseHex(s[2:3], &b) && parseHex(s[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		ok = parseHex(s[0:2], &r) && parseHex(s[2:4], &g) && parseHex(s[4:6], &b)
	case 8:
		ok = parseHex(s[0:2], &r) && parseHex(s[2:4], &g) && parseHex(s[4:6], &b) && parseHex(s[6:8], &a)
	default:
		ok = false
	}
	if !ok {
		return 0, fmt.Errorf("mandelray: invalid hex color %q", hex)
	}
	//nolint:gosec // G115: every channel is at most 255
	return ARGB(uint8(a), uint8(r), uint8(g), uint8(b)), nil
}

// parseHex accumulates the hex digits of s into val.
func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}
