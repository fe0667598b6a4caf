package mandelray

import (
	"fmt"
	"math"
)

const (
	// SupersamplingFactor scales the display size to the render size.
	SupersamplingFactor = 2.0

	// PreviewFactor scales the display size to the preview size.
	PreviewFactor = 0.2
)

// RenderSize derives the compute resolutions from a display size.
//
// RenderSize is a value; ChangeDisplaySize returns a new one with all four
// derived sizes recomputed together.
type RenderSize struct {
	DisplayWidth, DisplayHeight float64

	RenderWidth, RenderHeight   int
	PreviewWidth, PreviewHeight int
}

// NewRenderSize returns the render size for a display of the given size.
func NewRenderSize(displayWidth, displayHeight float64) RenderSize {
	return RenderSize{}.ChangeDisplaySize(displayWidth, displayHeight)
}

// ChangeDisplaySize recomputes every derived size:
//
//	render  = round(display * SupersamplingFactor)
//	preview = round(display * PreviewFactor)
//
// Negative or non-finite results become 0, which yields an empty raster
// the renderer refuses to run on.
func (s RenderSize) ChangeDisplaySize(displayWidth, displayHeight float64) RenderSize {
	return RenderSize{
		DisplayWidth:  displayWidth,
		DisplayHeight: displayHeight,
		RenderWidth:   scaled(displayWidth, SupersamplingFactor),
		RenderHeight:  scaled(displayHeight, SupersamplingFactor),
		PreviewWidth:  scaled(displayWidth, PreviewFactor),
		PreviewHeight: scaled(displayHeight, PreviewFactor),
	}
}

func scaled(v, factor float64) int {
	r := math.Round(v * factor)
	if !(r > 0) || math.IsInf(r, 0) {
		return 0
	}
	if r > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(r)
}

// WithoutPreview returns s with the preview pass disabled.
func (s RenderSize) WithoutPreview() RenderSize {
	s.PreviewWidth, s.PreviewHeight = 0, 0
	return s
}

// Empty reports whether the render raster has no area.
func (s RenderSize) Empty() bool {
	return s.RenderWidth <= 0 || s.RenderHeight <= 0
}

// HasPreview reports whether a preview pass should run.
func (s RenderSize) HasPreview() bool {
	return s.PreviewWidth > 0 && s.PreviewHeight > 0
}

func (s RenderSize) String() string {
	return fmt.Sprintf("display %gx%g, render %dx%d, preview %dx%d",
		s.DisplayWidth, s.DisplayHeight,
		s.RenderWidth, s.RenderHeight,
		s.PreviewWidth, s.PreviewHeight)
}

// FitDisplay returns the largest display size with height/width equal to
// ratio that fits inside availWidth×availHeight. A non-positive ratio
// yields the available area unchanged.
func FitDisplay(availWidth, availHeight, ratio float64) (width, height float64) {
	if !(ratio > 0) {
		return availWidth, availHeight
	}
	width, height = availWidth, availWidth*ratio
	if height > availHeight {
		height = availHeight
		width = availHeight / ratio
	}
	return width, height
}
