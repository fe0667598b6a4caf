package mandelray

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// FrameState is the cache state of a frame relative to a render size.
type FrameState int

const (
	// FrameUncomputed: no complete iteration buffer has been stored.
	FrameUncomputed FrameState = iota
	// FrameRendering: a render or redraw pass for the frame is running.
	FrameRendering
	// FrameRendered: the stored buffer matches the render size and budget.
	FrameRendered
	// FrameStale: a buffer is stored but was computed for another render
	// size or iteration budget.
	FrameStale
)

func (s FrameState) String() string {
	switch s {
	case FrameUncomputed:
		return "uncomputed"
	case FrameRendering:
		return "rendering"
	case FrameRendered:
		return "rendered"
	case FrameStale:
		return "stale"
	}
	return fmt.Sprintf("FrameState(%d)", int(s))
}

var frameIDs atomic.Uint64

// Frame binds one viewport to its cached iteration buffer.
//
// The buffer is only reused while it is complete and its dimensions and
// iteration budget match the current render; anything else is a cache
// miss that the Engine answers with a full recompute.
//
// Frame is safe for concurrent use.
type Frame struct {
	id       uint64
	viewport Viewport
	maxIter  atomic.Int64

	mu  sync.Mutex
	buf *IterationBuffer

	passes atomic.Int32
}

// NewFrame creates an uncomputed frame for v with the recommended
// iteration budget.
func NewFrame(v Viewport) *Frame {
	f := &Frame{id: frameIDs.Add(1), viewport: v}
	f.maxIter.Store(int64(v.RecommendedIterations()))
	return f
}

// ID returns a process-unique frame identifier.
func (f *Frame) ID() uint64 { return f.id }

// Viewport returns the frame's region of the complex plane.
func (f *Frame) Viewport() Viewport { return f.viewport }

// MaxIterations returns the iteration budget.
func (f *Frame) MaxIterations() int { return int(f.maxIter.Load()) }

// SetMaxIterations changes the iteration budget. A different budget
// invalidates the cached buffer.
func (f *Frame) SetMaxIterations(n int) error {
	if n < 1 || n > MaxIterationBudget {
		return fmt.Errorf("%w: %d", ErrInvalidIterations, n)
	}
	if f.maxIter.Swap(int64(n)) != int64(n) {
		f.Discard()
	}
	return nil
}

// Buffer returns the stored iteration buffer, or nil.
func (f *Frame) Buffer() *IterationBuffer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf
}

// State reports the cache state relative to size.
func (f *Frame) State(size RenderSize) FrameState {
	if f.passes.Load() > 0 {
		return FrameRendering
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.buf == nil:
		return FrameUncomputed
	case f.buf.Matches(size.RenderWidth, size.RenderHeight, f.MaxIterations()):
		return FrameRendered
	default:
		return FrameStale
	}
}

// cached returns the stored buffer if it can be redrawn at width×height.
func (f *Frame) cached(width, height int) *IterationBuffer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buf.Matches(width, height, f.MaxIterations()) {
		return f.buf
	}
	return nil
}

// store keeps buf if it is complete.
func (f *Frame) store(buf *IterationBuffer) {
	if buf == nil || !buf.Complete() {
		return
	}
	f.mu.Lock()
	f.buf = buf
	f.mu.Unlock()
}

// Discard drops the cached buffer; the next draw recomputes.
func (f *Frame) Discard() {
	f.mu.Lock()
	f.buf = nil
	f.mu.Unlock()
}

func (f *Frame) beginPass() { f.passes.Add(1) }
func (f *Frame) endPass()   { f.passes.Add(-1) }

func (f *Frame) String() string {
	return fmt.Sprintf("frame %d %s (%d iterations)", f.id, f.viewport, f.MaxIterations())
}
