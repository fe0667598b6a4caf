package mandelray

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/mandelray/internal/parallel"
	"github.com/gogpu/mandelray/surface"
)

// oneOverLog2 is 1/ln(2).
const oneOverLog2 = 1.4426950408889634

// bailout is the squared escape radius.
const bailout = 4.0

// Escape iterates z ← z² + c from z = 0 until |z|² ≥ 4 or the budget is
// spent. It returns the number of iterations performed and the final |z|².
// The point escaped if and only if mag2 ≥ 4.
func Escape(c complex128, maxIterations int) (iterations int, mag2 float64) {
	cr, ci := real(c), imag(c)
	var zr, zi, zr2, zi2 float64
	for iterations < maxIterations && zr2+zi2 < bailout {
		zi = 2*zr*zi + ci
		zr = zr2 - zi2 + cr
		zr2 = zr * zr
		zi2 = zi * zi
		iterations++
	}
	return iterations, zr2 + zi2
}

// SmoothIndex returns the continuous escape index
//
//	iterations + 1 - floor(log2(ln(mag2)/2 / ln 2))
//
// for an orbit that escaped with final squared magnitude mag2.
func SmoothIndex(iterations int, mag2 float64) int {
	if math.IsInf(mag2, 0) || math.IsNaN(mag2) {
		return iterations + 1
	}
	zLog := math.Log(mag2) / 2
	nu := int(math.Log(zLog*oneOverLog2) * oneOverLog2)
	return iterations + 1 - nu
}

// Classify computes the cell for point c.
func Classify(c complex128, maxIterations int) Cell {
	it, mag2 := Escape(c, maxIterations)
	if mag2 < bailout {
		return Cell{Kind: CellInterior}
	}
	//nolint:gosec // G115: bounded by maxIterations, which is an int32 budget
	return Cell{Kind: CellEscaped, Iterations: int32(it), Smooth: int32(SmoothIndex(it, mag2))}
}

// MaxIterationBudget is the largest accepted iteration budget.
const MaxIterationBudget = math.MaxInt32

// Job describes one render pass.
type Job struct {
	Viewport      Viewport
	Width, Height int
	MaxIterations int
	Coloring      Coloring

	// Target receives the colorized pixels. It must be at least
	// Width×Height.
	Target surface.Surface

	// Token cancels the pass once stale. The zero Token never cancels.
	Token Token
}

func (j Job) validate() error {
	if j.Width <= 0 || j.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyRaster, j.Width, j.Height)
	}
	if j.Viewport.IsZero() {
		return ErrInvalidViewport
	}
	if j.MaxIterations < 1 || j.MaxIterations > MaxIterationBudget {
		return fmt.Errorf("%w: %d", ErrInvalidIterations, j.MaxIterations)
	}
	if err := j.Coloring.Validate(); err != nil {
		return err
	}
	return checkTarget(j.Target, j.Width, j.Height)
}

func checkTarget(s surface.Surface, width, height int) error {
	if s == nil {
		return fmt.Errorf("%w: no target surface", ErrSurfaceTooSmall)
	}
	if s.Width() < width || s.Height() < height {
		return fmt.Errorf("%w: surface %dx%d, raster %dx%d",
			ErrSurfaceTooSmall, s.Width(), s.Height(), width, height)
	}
	return nil
}

// Stats summarizes a finished, cancelled or faulted pass.
type Stats struct {
	// Rows is the number of rows written to the target.
	Rows int

	// TotalRows is the raster height.
	TotalRows int

	// Cancelled is set when the token went stale or the context ended
	// before every row was written.
	Cancelled bool

	Elapsed time.Duration
}

// Renderer computes escape-time fields on a worker pool and writes them,
// colorized, into display surfaces.
//
// Rows are scheduled from the middle third outward: middle rows first,
// then the top third bottom-up, then the bottom third. Each row is written
// to the target in its own Acquire/Release bracket, so the target sees
// progressive dirty notifications while the pass runs.
//
// Renderer is safe for concurrent use, but passes writing into the same
// surface must be serialized by the caller.
type Renderer struct {
	pool    *parallel.WorkerPool
	scratch sync.Pool
}

// NewRenderer creates a renderer with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewRenderer(workers int) *Renderer {
	return &Renderer{pool: parallel.NewWorkerPool(workers)}
}

// Workers returns the number of render workers.
func (r *Renderer) Workers() int { return r.pool.Workers() }

// Close stops the worker pool.
func (r *Renderer) Close() { r.pool.Close() }

func (r *Renderer) getScratch(width int) *[]uint32 {
	if p, ok := r.scratch.Get().(*[]uint32); ok && cap(*p) >= width {
		*p = (*p)[:width]
		return p
	}
	s := make([]uint32, width)
	return &s
}

// Render computes the escape-time field for job and writes it to
// job.Target.
//
// Cancellation is not an error: a pass that stops because its token went
// stale or ctx ended returns a nil error with Stats.Cancelled set. The
// returned buffer is always non-nil once validation passed; rows that were
// not reached remain CellUnset and the buffer is not Complete.
//
// A panic inside a worker aborts that worker's row and is returned
// wrapped in ErrWorkerFault. After Close, Render fails with ErrClosed.
func (r *Renderer) Render(ctx context.Context, job Job) (*IterationBuffer, Stats, error) {
	if !r.pool.IsRunning() {
		return nil, Stats{}, ErrClosed
	}
	if err := job.validate(); err != nil {
		return nil, Stats{}, err
	}

	buf := NewIterationBuffer(job.Width, job.Height, job.MaxIterations)
	start := time.Now()

	var written atomic.Int64
	var cancelled atomic.Bool
	var writeErr atomic.Pointer[error]

	stop := func() bool {
		if job.Token.Stale() || ctx.Err() != nil {
			cancelled.Store(true)
			return true
		}
		return writeErr.Load() != nil
	}

	w, h := job.Width, job.Height
	maxIt := job.MaxIterations
	coloring := job.Coloring

	rows := parallel.RowOrder(h)
	work := make([]func(), len(rows))
	for i, y := range rows {
		work[i] = func() {
			if stop() {
				return
			}
			cells := buf.Row(y)
			for x := range cells {
				cells[x] = Classify(job.Viewport.Point(x, y, w, h), maxIt)
			}

			sp := r.getScratch(w)
			defer r.scratch.Put(sp)
			coloring.Colorize(*sp, cells, maxIt)

			if stop() {
				return
			}
			if err := writeRow(job.Target, y, *sp); err != nil {
				writeErr.CompareAndSwap(nil, &err)
				return
			}
			written.Add(1)
		}
	}

	err := r.pool.ExecuteAll(work)

	stats := Stats{
		Rows:      int(written.Load()),
		TotalRows: h,
		Cancelled: cancelled.Load(),
		Elapsed:   time.Since(start),
	}
	if err != nil {
		return buf, stats, fmt.Errorf("%w: %w", ErrWorkerFault, err)
	}
	if e := writeErr.Load(); e != nil {
		return buf, stats, *e
	}
	if stats.Rows == h {
		stats.Cancelled = false
		buf.markComplete()
	}

	Logger().Debug("render pass",
		"viewport", job.Viewport.String(),
		"size", fmt.Sprintf("%dx%d", w, h),
		"iterations", maxIt,
		"rows", stats.Rows,
		"cancelled", stats.Cancelled,
		"elapsed", stats.Elapsed)
	return buf, stats, nil
}

// Redraw recolorizes a complete iteration buffer into target without
// recomputing any orbit. Output is identical to what Render wrote for the
// same coloring.
//
// Cancellation and Close follow the same rules as Render.
func (r *Renderer) Redraw(ctx context.Context, buf *IterationBuffer, coloring Coloring, target surface.Surface, token Token) (Stats, error) {
	if !r.pool.IsRunning() {
		return Stats{}, ErrClosed
	}
	if buf == nil || !buf.Complete() {
		return Stats{}, fmt.Errorf("%w: no complete buffer to redraw", ErrEmptyRaster)
	}
	w, h := buf.Dims()
	if w <= 0 || h <= 0 {
		return Stats{}, fmt.Errorf("%w: %dx%d", ErrEmptyRaster, w, h)
	}
	if err := coloring.Validate(); err != nil {
		return Stats{}, err
	}
	if err := checkTarget(target, w, h); err != nil {
		return Stats{}, err
	}

	start := time.Now()
	maxIt := buf.MaxIterations()

	var written atomic.Int64
	var cancelled atomic.Bool
	var writeErr atomic.Pointer[error]

	rows := parallel.RowOrder(h)
	work := make([]func(), len(rows))
	for i, y := range rows {
		work[i] = func() {
			if token.Stale() || ctx.Err() != nil {
				cancelled.Store(true)
				return
			}
			if writeErr.Load() != nil {
				return
			}
			sp := r.getScratch(w)
			defer r.scratch.Put(sp)
			coloring.Colorize(*sp, buf.Row(y), maxIt)
			if err := writeRow(target, y, *sp); err != nil {
				writeErr.CompareAndSwap(nil, &err)
				return
			}
			written.Add(1)
		}
	}

	err := r.pool.ExecuteAll(work)
	stats := Stats{
		Rows:      int(written.Load()),
		TotalRows: h,
		Cancelled: cancelled.Load() && int(written.Load()) < h,
		Elapsed:   time.Since(start),
	}
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrWorkerFault, err)
	}
	if e := writeErr.Load(); e != nil {
		return stats, *e
	}

	Logger().Debug("redraw pass",
		"size", fmt.Sprintf("%dx%d", w, h),
		"palette", coloring.Palette.Name(),
		"mode", coloring.Mode.String(),
		"rows", stats.Rows,
		"cancelled", stats.Cancelled,
		"elapsed", stats.Elapsed)
	return stats, nil
}

// writeRow copies one colorized row into the target inside its own
// exclusive-access bracket and marks the row dirty.
func writeRow(target surface.Surface, y int, row []uint32) error {
	buf, err := target.Acquire()
	if err != nil {
		return err
	}
	if y >= buf.Height || len(row) > buf.Width {
		target.Release(buf, image.Rectangle{})
		return fmt.Errorf("%w: row %d outside surface", ErrSurfaceTooSmall, y)
	}
	copy(buf.Row(y), row)
	target.Release(buf, surface.RowRect(len(row), y, y+1))
	return nil
}
