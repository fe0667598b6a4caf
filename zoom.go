package mandelray

import (
	"fmt"
	"sync"
)

// DefaultAspectRatio is yDiff/xDiff of DefaultViewport. Zoom selections
// are locked to it so successive zooms stay similar to the start view.
var DefaultAspectRatio = DefaultViewport.AspectRatio()

// Selection is a screen-space rectangle in display pixels.
type Selection struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the selection has no area.
func (s Selection) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// FixRatio corrects a dragged width and height so height/width matches
// ratio:
//
//	if |w| >= |h| { w = int(h / ratio) }
//	if |h| > |w|  { h = int(w * ratio) }
func FixRatio(width, height int, ratio float64) (int, int) {
	if abs(width) >= abs(height) {
		width = int(float64(height) / ratio)
	}
	if abs(height) > abs(width) {
		height = int(float64(width) * ratio)
	}
	return width, height
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ZoomViewport maps a selection on a displayWidth×displayHeight display
// showing current to the selected sub-viewport:
//
//	x = xMin + xDiff*sel.X/displayWidth
//	y = yMin + yDiff*sel.Y/displayHeight
//	w = xDiff*sel.Width/displayWidth
//	h = yDiff*sel.Height/displayHeight
//	result = [x, x+w]×[y, y+h]
func ZoomViewport(current Viewport, sel Selection, displayWidth, displayHeight float64) (Viewport, error) {
	if sel.Empty() {
		return Viewport{}, fmt.Errorf("%w: %dx%d", ErrNoSelection, sel.Width, sel.Height)
	}
	if !(displayWidth > 0) || !(displayHeight > 0) {
		return Viewport{}, fmt.Errorf("%w: display %gx%g", ErrEmptyRaster, displayWidth, displayHeight)
	}

	rx := current.XDiff() * float64(sel.X) / displayWidth
	ry := current.YDiff() * float64(sel.Y) / displayHeight
	rw := current.XDiff() * float64(sel.Width) / displayWidth
	rh := current.YDiff() * float64(sel.Height) / displayHeight

	return NewViewport(
		current.xMin+rx, current.xMin+rx+rw,
		current.yMin+ry, current.yMin+ry+rh)
}

// ZoomSelector tracks a pointer drag and turns it into an aspect-locked
// zoom selection.
//
// Only drags toward the lower right (positive width and height) produce a
// selection; any other drag shows an empty rectangle and ends without a
// zoom. Listeners registered with OnZoom fire when End yields a selection.
//
// ZoomSelector is safe for concurrent use.
type ZoomSelector struct {
	mu     sync.Mutex
	ratio  float64
	active bool
	startX int
	startY int
	endX   int
	endY   int

	listeners map[int]func(Selection)
	nextID    int
}

// NewZoomSelector creates a selector locked to height/width = ratio.
// A non-positive ratio selects DefaultAspectRatio.
func NewZoomSelector(ratio float64) *ZoomSelector {
	if !(ratio > 0) {
		ratio = DefaultAspectRatio
	}
	return &ZoomSelector{ratio: ratio, listeners: make(map[int]func(Selection))}
}

// Ratio returns the locked height/width ratio.
func (z *ZoomSelector) Ratio() float64 { return z.ratio }

// Begin starts a drag at (x, y).
func (z *ZoomSelector) Begin(x, y int) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.active = true
	z.startX, z.startY = x, y
	z.endX, z.endY = x, y
}

// Move updates the drag end point and returns the rectangle to show.
// The rectangle is empty outside the lower-right quadrant or when no drag
// is active.
func (z *ZoomSelector) Move(x, y int) Selection {
	z.mu.Lock()
	defer z.mu.Unlock()
	if !z.active {
		return Selection{}
	}
	z.endX, z.endY = x, y
	return z.selectionLocked()
}

func (z *ZoomSelector) selectionLocked() Selection {
	w, h := z.endX-z.startX, z.endY-z.startY
	sel := Selection{X: z.startX, Y: z.startY}
	if w > 0 && h > 0 {
		sel.Width, sel.Height = FixRatio(w, h, z.ratio)
	}
	return sel
}

// End finishes the drag. It returns the aspect-corrected selection and
// notifies OnZoom listeners, or fails with ErrNoSelection when no drag is
// active or the selection has no area.
func (z *ZoomSelector) End() (Selection, error) {
	z.mu.Lock()
	if !z.active {
		z.mu.Unlock()
		return Selection{}, ErrNoSelection
	}
	sel := z.selectionLocked()
	z.active = false
	if sel.Empty() {
		z.mu.Unlock()
		return Selection{}, fmt.Errorf("%w: %dx%d", ErrNoSelection, sel.Width, sel.Height)
	}
	fns := make([]func(Selection), 0, len(z.listeners))
	for _, fn := range z.listeners {
		fns = append(fns, fn)
	}
	z.mu.Unlock()

	for _, fn := range fns {
		fn(sel)
	}
	return sel, nil
}

// Abort cancels the drag without a selection.
func (z *ZoomSelector) Abort() {
	z.mu.Lock()
	z.active = false
	z.mu.Unlock()
}

// Active reports whether a drag is in progress.
func (z *ZoomSelector) Active() bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.active
}

// OnZoom registers fn to be called with every completed selection. The
// returned function removes the listener.
func (z *ZoomSelector) OnZoom(fn func(Selection)) (remove func()) {
	z.mu.Lock()
	id := z.nextID
	z.nextID++
	z.listeners[id] = fn
	z.mu.Unlock()

	return func() {
		z.mu.Lock()
		delete(z.listeners, id)
		z.mu.Unlock()
	}
}
