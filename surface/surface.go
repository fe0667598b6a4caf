// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
	"image/color"
)

// ErrClosed is returned by Acquire after the surface was closed.
var ErrClosed = errors.New("surface: closed")

// Surface is the display surface a renderer writes into.
//
// Pixel memory is owned by the surface. Writers bracket every batch of
// writes with Acquire and Release: Acquire grants exclusive access and a
// Buffer addressing the pixels, Release commits the writes, marks the given
// region dirty and gives access back. A writer must not keep using a Buffer
// after releasing it.
//
// Pixels are packed 32-bit 0xAARRGGBB values, one per pixel, row-major.
//
// Implementations must be safe for concurrent use; concurrent Acquire calls
// are serialized.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Acquire blocks until exclusive write access is available.
	Acquire() (*Buffer, error)

	// Release commits the writes made through buf, marks dirty as changed
	// and ends exclusive access.
	Release(buf *Buffer, dirty image.Rectangle)

	// MarkDirty flags r as changed without writing anything.
	MarkDirty(r image.Rectangle)

	// Clear fills the entire surface with c and marks it dirty.
	Clear(c color.Color)
}

// ResizableSurface is an optional interface for surfaces whose resolution
// can change. Resize discards the current contents.
type ResizableSurface interface {
	Surface

	// Resize changes the surface dimensions. Zero dimensions are allowed
	// and produce an empty surface; negative ones are treated as zero.
	Resize(width, height int) error
}

// Buffer is index-addressed write access to a surface's pixels, valid
// between Acquire and Release.
type Buffer struct {
	// Pix holds the pixels; pixel (x, y) is Pix[y*Stride+x].
	Pix []uint32

	// Stride is the distance in elements between vertically adjacent pixels.
	Stride int

	// Width and Height bound the addressable area.
	Width, Height int
}

// Set writes one pixel. Writes outside the buffer are ignored.
func (b *Buffer) Set(x, y int, c uint32) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	b.Pix[y*b.Stride+x] = c
}

// At returns the pixel at (x, y), or 0 outside the buffer.
func (b *Buffer) At(x, y int) uint32 {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return 0
	}
	return b.Pix[y*b.Stride+x]
}

// Row returns the pixels of row y for bulk writes. y must be in
// [0, Height); the returned slice has exactly Width elements.
func (b *Buffer) Row(y int) []uint32 {
	off := y * b.Stride
	return b.Pix[off : off+b.Width : off+b.Width]
}

// RowRect returns the full-width rectangle covering rows [y0, y1).
func RowRect(width, y0, y1 int) image.Rectangle {
	return image.Rect(0, y0, width, y1)
}
