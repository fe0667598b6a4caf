package parallel

import (
	"image"
	"math/bits"
	"sync/atomic"
)

// BandHeight is the number of pixel rows covered by one dirty bit.
const BandHeight = 16

// DirtyBands tracks which horizontal bands of a raster were written since
// the last collection, using an atomic bitmap.
//
// One bit covers BandHeight full-width rows, packed into uint64 words. All
// methods are safe for concurrent use without external synchronization, so
// render workers can mark rows while a display loop collects them.
type DirtyBands struct {
	words  []atomic.Uint64
	width  int
	height int
}

// NewDirtyBands creates a tracker for a width×height raster with every band
// clean. Returns nil if either dimension is zero or negative.
func NewDirtyBands(width, height int) *DirtyBands {
	if width <= 0 || height <= 0 {
		return nil
	}

	bands := (height + BandHeight - 1) / BandHeight
	return &DirtyBands{
		words:  make([]atomic.Uint64, (bands+63)/64),
		width:  width,
		height: height,
	}
}

// MarkRows marks the bands intersecting rows [y0, y1) as dirty.
// Rows outside the raster are ignored.
func (d *DirtyBands) MarkRows(y0, y1 int) {
	if y0 < 0 {
		y0 = 0
	}
	if y1 > d.height {
		y1 = d.height
	}
	if y0 >= y1 {
		return
	}
	for b := y0 / BandHeight; b <= (y1-1)/BandHeight; b++ {
		d.words[b/64].Or(1 << (b & 63))
	}
}

// MarkRect marks every band that intersects r.
func (d *DirtyBands) MarkRect(r image.Rectangle) {
	r = r.Intersect(image.Rect(0, 0, d.width, d.height))
	if r.Empty() {
		return
	}
	d.MarkRows(r.Min.Y, r.Max.Y)
}

// MarkAll marks the whole raster dirty.
func (d *DirtyBands) MarkAll() {
	d.MarkRows(0, d.height)
}

// IsEmpty reports whether no band is dirty.
func (d *DirtyBands) IsEmpty() bool {
	for i := range d.words {
		if d.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Collect atomically clears the bitmap and returns the smallest full-width
// rectangle covering every band that was dirty. The rectangle is empty when
// nothing was marked.
func (d *DirtyBands) Collect() image.Rectangle {
	first, last := -1, -1
	for w := range d.words {
		word := d.words[w].Swap(0)
		if word == 0 {
			continue
		}
		lo := w*64 + bits.TrailingZeros64(word)
		hi := w*64 + 63 - bits.LeadingZeros64(word)
		if first < 0 {
			first = lo
		}
		last = hi
	}
	if first < 0 {
		return image.Rectangle{}
	}

	y1 := (last + 1) * BandHeight
	if y1 > d.height {
		y1 = d.height
	}
	return image.Rect(0, first*BandHeight, d.width, y1)
}
