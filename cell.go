package mandelray

import "sync/atomic"

// CellKind tags the content of one iteration buffer cell.
type CellKind uint8

const (
	// CellUnset marks a cell no render pass has written.
	CellUnset CellKind = iota
	// CellEscaped marks a point whose orbit left the radius-2 disc.
	CellEscaped
	// CellInterior marks a point that did not escape within the budget.
	CellInterior
)

func (k CellKind) String() string {
	switch k {
	case CellUnset:
		return "unset"
	case CellEscaped:
		return "escaped"
	case CellInterior:
		return "interior"
	}
	return "CellKind(?)"
}

// Cell is the escape-time result for one pixel.
//
// Iterations is the raw escape count. Smooth is the continuous-coloring
// index computed from the final orbit magnitude; storing it lets a redraw
// reproduce smooth coloring without recomputing the orbit. Both are zero
// unless Kind is CellEscaped.
type Cell struct {
	Kind       CellKind
	Iterations int32
	Smooth     int32
}

// IterationBuffer is the per-pixel escape-time field of one render.
//
// Rows are written concurrently by render workers, one worker per row.
// The buffer is complete only after every row has been written by a pass
// that was neither cancelled nor faulted.
type IterationBuffer struct {
	width, height int
	maxIterations int
	cells         []Cell
	complete      atomic.Bool
}

// NewIterationBuffer allocates a buffer with every cell unset.
func NewIterationBuffer(width, height, maxIterations int) *IterationBuffer {
	width, height = max(width, 0), max(height, 0)
	return &IterationBuffer{
		width:         width,
		height:        height,
		maxIterations: maxIterations,
		cells:         make([]Cell, width*height),
	}
}

// Dims returns the raster dimensions.
func (b *IterationBuffer) Dims() (width, height int) { return b.width, b.height }

// MaxIterations returns the iteration budget the buffer was computed with.
func (b *IterationBuffer) MaxIterations() int { return b.maxIterations }

// At returns the cell at (x, y). It panics if the point is out of range.
func (b *IterationBuffer) At(x, y int) Cell {
	return b.cells[y*b.width+x]
}

// Set stores the cell at (x, y).
func (b *IterationBuffer) Set(x, y int, c Cell) {
	b.cells[y*b.width+x] = c
}

// Row returns the cells of row y.
func (b *IterationBuffer) Row(y int) []Cell {
	off := y * b.width
	return b.cells[off : off+b.width : off+b.width]
}

// Complete reports whether every cell holds a finished result.
func (b *IterationBuffer) Complete() bool { return b.complete.Load() }

func (b *IterationBuffer) markComplete() { b.complete.Store(true) }

// Matches reports whether the buffer is a complete result for a
// width×height raster computed with maxIterations.
func (b *IterationBuffer) Matches(width, height, maxIterations int) bool {
	return b != nil && b.Complete() &&
		b.width == width && b.height == height && b.maxIterations == maxIterations
}
