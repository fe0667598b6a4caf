package mandelray

import "errors"

var (
	// ErrInvalidViewport is returned when a viewport is empty, inverted or
	// not finite.
	ErrInvalidViewport = errors.New("mandelray: invalid viewport")

	// ErrEmptyRaster is returned when a render is requested with a zero or
	// negative width or height.
	ErrEmptyRaster = errors.New("mandelray: empty raster")

	// ErrInvalidIterations is returned for an iteration budget below 1.
	ErrInvalidIterations = errors.New("mandelray: invalid iteration budget")

	// ErrInvalidPalette is returned for a palette with no colors or an
	// interior index outside the color range.
	ErrInvalidPalette = errors.New("mandelray: invalid palette")

	// ErrUnknownPalette is returned when a palette name is not registered.
	ErrUnknownPalette = errors.New("mandelray: unknown palette")

	// ErrSurfaceTooSmall is returned when the target surface cannot hold
	// the requested raster.
	ErrSurfaceTooSmall = errors.New("mandelray: surface smaller than raster")

	// ErrWorkerFault wraps a panic recovered from a render worker.
	ErrWorkerFault = errors.New("mandelray: render worker fault")

	// ErrNoSelection is returned when a zoom selection has no area.
	ErrNoSelection = errors.New("mandelray: empty selection")

	// ErrUnknownLandmark is returned when a landmark name is not known.
	ErrUnknownLandmark = errors.New("mandelray: unknown landmark")

	// ErrClosed is returned by an Engine or Renderer after Close.
	ErrClosed = errors.New("mandelray: closed")
)
