package mandelray

import "github.com/gogpu/mandelray/surface"

// EngineOption configures an Engine during creation.
//
// Example:
//
//	display := surface.NewImageSurface(1600, 1200)
//	e, err := mandelray.NewEngine(display,
//	    mandelray.WithPreview(surface.NewImageSurface(160, 120)),
//	    mandelray.WithWorkers(4))
type EngineOption func(*engineOptions)

type engineOptions struct {
	preview   surface.Surface
	workers   int
	renderer  *Renderer
	coloring  Coloring
	size      RenderSize
	sizeSet   bool
	observers []func(Report)
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		coloring: DefaultColoring,
	}
}

// WithPreview enables the low-resolution preview pass, rendered into s
// before every full render.
func WithPreview(s surface.Surface) EngineOption {
	return func(o *engineOptions) {
		o.preview = s
	}
}

// WithWorkers sets the number of render workers. Zero or negative means
// GOMAXPROCS.
func WithWorkers(n int) EngineOption {
	return func(o *engineOptions) {
		o.workers = n
	}
}

// WithRenderer shares an existing renderer (and its worker pool) instead
// of creating one. The Engine does not close a shared renderer.
func WithRenderer(r *Renderer) EngineOption {
	return func(o *engineOptions) {
		o.renderer = r
	}
}

// WithColoring sets the initial palette and color mode.
func WithColoring(c Coloring) EngineOption {
	return func(o *engineOptions) {
		o.coloring = c
	}
}

// WithRenderSize sets the initial render size. By default it is derived
// from the display surface, which is taken to be at render resolution.
func WithRenderSize(s RenderSize) EngineOption {
	return func(o *engineOptions) {
		o.size = s
		o.sizeSet = true
	}
}

// WithObserver registers fn to receive a Report after every pass.
// Observers run on the render goroutine while the render lock is held:
// they must not block and must not call Render, Draw or
// ChangeDisplaySize. The async variants are fine.
func WithObserver(fn func(Report)) EngineOption {
	return func(o *engineOptions) {
		o.observers = append(o.observers, fn)
	}
}

// HistoryOption configures a History during creation.
type HistoryOption func(*historyOptions)

type historyOptions struct {
	resident int
}

// DefaultResidentFrames is how many frames keep their iteration buffers by
// default.
const DefaultResidentFrames = 16

// WithResidentFrames bounds how many frames keep their iteration buffers
// in memory. Less recently visited frames drop their buffer and are
// recomputed when drawn again. Zero or negative means unlimited.
func WithResidentFrames(n int) HistoryOption {
	return func(o *historyOptions) {
		o.resident = n
	}
}
