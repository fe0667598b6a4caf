package mandelray

import (
	"fmt"
	"math"
)

// Viewport is an immutable rectangle of the complex plane.
//
// The real axis runs from XMin to XMax, the imaginary axis from YMin to
// YMax. Raster row 0 maps to YMin.
type Viewport struct {
	xMin, xMax float64
	yMin, yMax float64
}

// DefaultViewport is the region shown at startup: [-2.5,1.5]×[-1.5,1.5].
var DefaultViewport = Viewport{xMin: -2.5, xMax: 1.5, yMin: -1.5, yMax: 1.5}

// NewViewport returns the viewport [xMin,xMax]×[yMin,yMax].
// It fails with ErrInvalidViewport unless xMax > xMin, yMax > yMin and all
// bounds are finite.
func NewViewport(xMin, xMax, yMin, yMax float64) (Viewport, error) {
	for _, v := range [...]float64{xMin, xMax, yMin, yMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Viewport{}, fmt.Errorf("%w: non-finite bound %v", ErrInvalidViewport, v)
		}
	}
	if !(xMax > xMin) || !(yMax > yMin) {
		return Viewport{}, fmt.Errorf("%w: [%g,%g]×[%g,%g]", ErrInvalidViewport, xMin, xMax, yMin, yMax)
	}
	if math.IsInf(xMax-xMin, 0) || math.IsInf(yMax-yMin, 0) {
		return Viewport{}, fmt.Errorf("%w: extent overflows float64", ErrInvalidViewport)
	}
	return Viewport{xMin: xMin, xMax: xMax, yMin: yMin, yMax: yMax}, nil
}

// MustViewport is like NewViewport but panics on invalid bounds.
// It is intended for constant regions.
func MustViewport(xMin, xMax, yMin, yMax float64) Viewport {
	v, err := NewViewport(xMin, xMax, yMin, yMax)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Viewport) XMin() float64 { return v.xMin }
func (v Viewport) XMax() float64 { return v.xMax }
func (v Viewport) YMin() float64 { return v.yMin }
func (v Viewport) YMax() float64 { return v.yMax }

// XDiff returns the real extent.
func (v Viewport) XDiff() float64 { return v.xMax - v.xMin }

// YDiff returns the imaginary extent.
func (v Viewport) YDiff() float64 { return v.yMax - v.yMin }

// IsZero reports whether v is the zero Viewport, which is not valid.
func (v Viewport) IsZero() bool { return v == Viewport{} }

// RecommendedIterations returns the iteration budget for this zoom depth:
//
//	floor(ln(1/min(xDiff, yDiff)) * 40 + 100)
//
// The smaller extent is clamped to the smallest positive float64 first, and
// ln(1/d) is taken as -ln(d) so subnormal extents never overflow to +Inf.
// Shallow viewports (extent above 1) yield budgets below 100; the result
// is never less than 1.
func (v Viewport) RecommendedIterations() int {
	d := math.Min(v.XDiff(), v.YDiff())
	if !(d > 0) {
		d = math.SmallestNonzeroFloat64
	}
	n := math.Floor(-math.Log(d)*40 + 100)
	return max(int(n), 1)
}

// Point maps raster pixel (px, py) of a width×height raster to the complex
// plane: c = (xMin + px*xDiff/width) + (yMin + py*yDiff/height)i.
func (v Viewport) Point(px, py, width, height int) complex128 {
	re := v.xMin + float64(px)*v.XDiff()/float64(width)
	im := v.yMin + float64(py)*v.YDiff()/float64(height)
	return complex(re, im)
}

// Center returns the midpoint of the viewport.
func (v Viewport) Center() complex128 {
	return complex((v.xMin+v.xMax)/2, (v.yMin+v.yMax)/2)
}

// AspectRatio returns yDiff/xDiff.
func (v Viewport) AspectRatio() float64 {
	return v.YDiff() / v.XDiff()
}

// String formats the viewport as "[xMin,xMax]×[yMin,yMax]".
func (v Viewport) String() string {
	return fmt.Sprintf("[%g,%g]×[%g,%g]", v.xMin, v.xMax, v.yMin, v.yMax)
}
