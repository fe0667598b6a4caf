// Package color provides packed-pixel helpers and the interpolation
// primitives used to build mandelray's gradient palettes.
package color

// Packed pixels are 32-bit 0xAARRGGBB values, one per pixel, row-major.

// Pack combines 8-bit channels into a packed ARGB value.
func Pack(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// PackRGB combines 8-bit channels into an opaque packed ARGB value.
func PackRGB(r, g, b uint8) uint32 {
	return Pack(r, g, b, 0xFF)
}

// Unpack splits a packed ARGB value into its 8-bit channels.
func Unpack(c uint32) (r, g, b, a uint8) {
	//nolint:gosec // G115: each shift isolates a single byte
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}

// ToRGBA expands packed ARGB pixels into an RGBA byte slice as used by
// image.RGBA. dst must hold at least 4*len(src) bytes.
//
// Packed colors are straight (non-premultiplied). Fully opaque pixels are
// copied as-is; translucent pixels are premultiplied so the result is a
// valid image.RGBA payload.
func ToRGBA(dst []byte, src []uint32) {
	_ = dst[len(src)*4-1]
	for i, c := range src {
		r, g, b, a := Unpack(c)
		j := i * 4
		if a != 0xFF {
			r = premul(r, a)
			g = premul(g, a)
			b = premul(b, a)
		}
		dst[j+0] = r
		dst[j+1] = g
		dst[j+2] = b
		dst[j+3] = a
	}
}

func premul(c, a uint8) uint8 {
	//nolint:gosec // G115: result is always <= 255
	return uint8((uint32(c)*uint32(a) + 127) / 255)
}
