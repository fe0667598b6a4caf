package mandelray

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/gogpu/mandelray/surface"
)

// PassKind identifies the kind of pass a Report describes.
type PassKind int

const (
	// PassPreview is the low-resolution pass run before a full render.
	PassPreview PassKind = iota
	// PassRender is a full escape-time computation.
	PassRender
	// PassRedraw recolorizes a cached iteration buffer.
	PassRedraw
)

func (k PassKind) String() string {
	switch k {
	case PassPreview:
		return "preview"
	case PassRender:
		return "render"
	case PassRedraw:
		return "redraw"
	}
	return fmt.Sprintf("PassKind(%d)", int(k))
}

// Report describes one finished, cancelled, skipped or failed pass.
type Report struct {
	Kind  PassKind
	Frame *Frame

	// Generation is the render epoch the pass ran under.
	Generation uint64

	Rows, TotalRows int

	// Cancelled is set when a newer request superseded the pass, either
	// before it acquired the render lock or while it was running.
	Cancelled bool

	// Skipped is set when the render size has no area.
	Skipped bool

	Err     error
	Elapsed time.Duration
}

// Engine orchestrates frames against one display surface.
//
// Every request takes a ticket from the render epoch before waiting for
// the render lock, which makes all earlier requests stale: a pass that is
// running stops at its next row and a pass still waiting for the lock is
// dropped once it gets it. The latest request always wins and requests
// never queue up.
//
// The render lock serializes every pass that writes to the display or
// preview surface, as well as display resizes.
//
// Engine is safe for concurrent use.
type Engine struct {
	display   surface.Surface
	preview   surface.Surface
	renderer  *Renderer
	ownsPool  bool
	observers []func(Report)

	epoch Epoch

	// renderMu is the render lock.
	renderMu sync.Mutex

	mu       sync.Mutex
	size     RenderSize
	coloring Coloring
	closed   bool

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

// NewEngine creates an engine rendering into display.
//
// Unless WithRenderSize is given, display is assumed to be at render
// resolution and the display size is derived from it.
func NewEngine(display surface.Surface, opts ...EngineOption) (*Engine, error) {
	if display == nil {
		return nil, fmt.Errorf("%w: no display surface", ErrSurfaceTooSmall)
	}
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.coloring.Validate(); err != nil {
		return nil, err
	}

	size := o.size
	if !o.sizeSet {
		size = NewRenderSize(
			float64(display.Width())/SupersamplingFactor,
			float64(display.Height())/SupersamplingFactor)
	}
	if o.preview == nil {
		size = size.WithoutPreview()
	}
	if err := fitSurface(display, size.RenderWidth, size.RenderHeight); err != nil {
		return nil, err
	}
	if o.preview != nil {
		if err := fitSurface(o.preview, size.PreviewWidth, size.PreviewHeight); err != nil {
			return nil, err
		}
	}

	r, owns := o.renderer, false
	if r == nil {
		r, owns = NewRenderer(o.workers), true
	}

	ctx, stop := context.WithCancel(context.Background())
	e := &Engine{
		display:   display,
		preview:   o.preview,
		renderer:  r,
		ownsPool:  owns,
		observers: o.observers,
		size:      size,
		coloring:  o.coloring,
		ctx:       ctx,
		stop:      stop,
	}
	Logger().Debug("engine created", "size", size.String(), "workers", r.Workers())
	return e, nil
}

// fitSurface makes s hold at least width×height, resizing when possible.
func fitSurface(s surface.Surface, width, height int) error {
	if s.Width() == width && s.Height() == height {
		return nil
	}
	if rs, ok := s.(surface.ResizableSurface); ok {
		return rs.Resize(width, height)
	}
	if s.Width() < width || s.Height() < height {
		return fmt.Errorf("%w: surface %dx%d, need %dx%d",
			ErrSurfaceTooSmall, s.Width(), s.Height(), width, height)
	}
	return nil
}

// Display returns the display surface.
func (e *Engine) Display() surface.Surface { return e.display }

// Preview returns the preview surface, or nil.
func (e *Engine) Preview() surface.Surface { return e.preview }

// Size returns the current render size.
func (e *Engine) Size() RenderSize {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

// Coloring returns the coloring used by the next pass.
func (e *Engine) Coloring() Coloring {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coloring
}

// SetColoring changes the coloring used by subsequent passes. It does not
// redraw; call Draw or DrawAsync for that.
func (e *Engine) SetColoring(c Coloring) error {
	if err := c.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.coloring = c
	e.mu.Unlock()
	return nil
}

func (e *Engine) snapshot() (RenderSize, Coloring, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size, e.coloring, e.closed
}

// Render recomputes f at the current render size and waits for the pass
// to finish: first the preview pass if enabled, then the full pass into
// the cleared display surface. The complete iteration buffer is cached on
// f.
//
// Cancellation by a newer request is reported through Report.Cancelled
// with a nil error.
func (e *Engine) Render(ctx context.Context, f *Frame) (Report, error) {
	return e.run(ctx, f, e.epoch.Advance(), PassRender)
}

// Draw redraws f from its cached buffer when the buffer matches the
// current render size and iteration budget, and falls back to Render
// otherwise.
func (e *Engine) Draw(ctx context.Context, f *Frame) (Report, error) {
	return e.run(ctx, f, e.epoch.Advance(), PassRedraw)
}

// RenderAsync is Render on a background goroutine. The epoch advances
// before RenderAsync returns, so any pass already running is cancelled
// immediately. Results are delivered to observers and to the display
// surface's dirty notifications.
func (e *Engine) RenderAsync(f *Frame) { e.async(f, PassRender) }

// DrawAsync is Draw on a background goroutine.
func (e *Engine) DrawAsync(f *Frame) { e.async(f, PassRedraw) }

func (e *Engine) async(f *Frame, kind PassKind) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	tok := e.epoch.Advance()
	go func() {
		defer e.wg.Done()
		if _, err := e.run(e.ctx, f, tok, kind); err != nil && !errors.Is(err, ErrClosed) {
			Logger().Warn("async pass failed", "pass", kind.String(), "err", err)
		}
	}()
}

// Cancel makes every in-flight and waiting pass stale.
func (e *Engine) Cancel() {
	e.epoch.Advance()
}

// Wait blocks until every pass started by RenderAsync or DrawAsync has
// returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Generation returns the current render epoch.
func (e *Engine) Generation() uint64 {
	return e.epoch.Generation()
}

func (e *Engine) run(ctx context.Context, f *Frame, tok Token, kind PassKind) (Report, error) {
	if f == nil {
		return Report{Kind: kind}, errors.New("mandelray: nil frame")
	}

	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	size, coloring, closed := e.snapshot()
	if closed {
		return Report{Kind: kind, Frame: f}, ErrClosed
	}
	if tok.Stale() {
		rep := Report{Kind: kind, Frame: f, Generation: tok.Generation(), Cancelled: true}
		Logger().Debug("pass superseded before start", "pass", kind.String(), "frame", f.ID())
		e.notify(rep)
		return rep, nil
	}
	if size.Empty() {
		rep := Report{Kind: kind, Frame: f, Generation: tok.Generation(), Skipped: true}
		Logger().Warn("pass skipped: empty render size", "pass", kind.String(), "size", size.String())
		e.notify(rep)
		return rep, nil
	}

	f.beginPass()
	defer f.endPass()

	if kind == PassRedraw {
		if buf := f.cached(size.RenderWidth, size.RenderHeight); buf != nil {
			stats, err := e.renderer.Redraw(ctx, buf, coloring, e.display, tok)
			return e.finish(PassRedraw, f, tok, stats, err)
		}
		Logger().Debug("cache miss, recomputing", "frame", f.ID(), "size", size.String())
	}
	return e.renderLocked(ctx, f, tok, size, coloring)
}

// renderLocked must be called with the render lock held.
func (e *Engine) renderLocked(ctx context.Context, f *Frame, tok Token, size RenderSize, coloring Coloring) (Report, error) {
	job := Job{
		Viewport:      f.Viewport(),
		MaxIterations: f.MaxIterations(),
		Coloring:      coloring,
		Token:         tok,
	}

	if e.preview != nil && size.HasPreview() {
		pj := job
		pj.Width, pj.Height = size.PreviewWidth, size.PreviewHeight
		pj.Target = e.preview
		_, stats, err := e.renderer.Render(ctx, pj)
		rep, err := e.finish(PassPreview, f, tok, stats, err)
		if err != nil || rep.Cancelled {
			return rep, err
		}
	}

	e.display.Clear(color.Transparent)
	job.Width, job.Height = size.RenderWidth, size.RenderHeight
	job.Target = e.display
	buf, stats, err := e.renderer.Render(ctx, job)
	f.store(buf)
	return e.finish(PassRender, f, tok, stats, err)
}

func (e *Engine) finish(kind PassKind, f *Frame, tok Token, stats Stats, err error) (Report, error) {
	rep := Report{
		Kind:       kind,
		Frame:      f,
		Generation: tok.Generation(),
		Rows:       stats.Rows,
		TotalRows:  stats.TotalRows,
		Cancelled:  stats.Cancelled,
		Elapsed:    stats.Elapsed,
	}

	log := Logger()
	switch {
	case errors.Is(err, ErrEmptyRaster):
		rep.Skipped = true
		err = nil
		log.Warn("pass skipped", "pass", kind.String(), "frame", f.ID())
	case err != nil:
		rep.Err = err
		log.Warn("pass aborted", "pass", kind.String(), "frame", f.ID(),
			"rows", rep.Rows, "total", rep.TotalRows, "err", err)
	case rep.Cancelled:
		log.Debug("pass cancelled", "pass", kind.String(), "frame", f.ID(),
			"rows", rep.Rows, "total", rep.TotalRows, "generation", rep.Generation)
	default:
		log.Debug("pass complete", "pass", kind.String(), "frame", f.ID(),
			"rows", rep.Rows, "elapsed", rep.Elapsed)
	}

	e.notify(rep)
	return rep, err
}

func (e *Engine) notify(rep Report) {
	for _, fn := range e.observers {
		fn(rep)
	}
}

// ChangeDisplaySize cancels any running pass, recomputes the render size
// and resizes the display and preview surfaces to match. Cached buffers
// of other sizes become stale and are recomputed on the next Draw.
func (e *Engine) ChangeDisplaySize(width, height float64) (RenderSize, error) {
	e.epoch.Advance()

	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	size := NewRenderSize(width, height)
	if e.preview == nil {
		size = size.WithoutPreview()
	}
	if err := fitSurface(e.display, size.RenderWidth, size.RenderHeight); err != nil {
		return e.Size(), err
	}
	if e.preview != nil {
		if err := fitSurface(e.preview, size.PreviewWidth, size.PreviewHeight); err != nil {
			return e.Size(), err
		}
	}

	e.mu.Lock()
	e.size = size
	e.mu.Unlock()

	Logger().Info("display resized", "size", size.String())
	return size, nil
}

// WatchPalettes keeps the engine's coloring in sync with set and redraws
// the frame returned by current after every change. Redraws reuse the
// cached buffer; they never recompute escape times unless the cache is
// stale. The returned function stops watching.
func (e *Engine) WatchPalettes(set *PaletteSet, current func() *Frame) (stop func()) {
	if err := e.SetColoring(set.Coloring()); err != nil {
		Logger().Warn("palette set has invalid coloring", "err", err)
	}
	return set.Subscribe(func(Coloring) {
		// The set may have moved on while this call waited; apply what it
		// holds now.
		if err := e.SetColoring(set.Coloring()); err != nil {
			Logger().Warn("ignoring invalid coloring", "err", err)
			return
		}
		if f := current(); f != nil {
			e.DrawAsync(f)
		}
	})
}

// Close cancels all passes, waits for background passes to return and
// stops the worker pool unless it was shared through WithRenderer.
// Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.Cancel()
	e.stop()
	e.wg.Wait()

	// Wait for a synchronous pass that may still hold the lock.
	e.renderMu.Lock()
	if e.ownsPool {
		e.renderer.Close()
	}
	e.renderMu.Unlock()
	return nil
}
