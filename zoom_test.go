package mandelray

import (
	"errors"
	"math"
	"testing"
)

func TestZoomViewport_Golden(t *testing.T) {
	current := MustViewport(-2, 1, -1.5, 1.5)
	sel := Selection{X: 400, Y: 300, Width: 80, Height: 60}

	got, err := ZoomViewport(current, sel, 800, 600)
	if err != nil {
		t.Fatalf("ZoomViewport() error = %v", err)
	}

	xMin := -2 + 3.0*400/800
	yMin := -1.5 + 3.0*300/600
	want := MustViewport(xMin, xMin+3.0*80/800, yMin, yMin+3.0*60/600)
	if got != want {
		t.Errorf("ZoomViewport() = %v, want %v", got, want)
	}

	const eps = 1e-12
	for _, c := range []struct {
		name      string
		got, want float64
	}{
		{"xMin", got.XMin(), -0.5},
		{"xMax", got.XMax(), -0.2},
		{"yMin", got.YMin(), 0},
		{"yMax", got.YMax(), 0.3},
	} {
		if math.Abs(c.got-c.want) > eps {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestZoomViewport_Rejects(t *testing.T) {
	v := DefaultViewport
	if _, err := ZoomViewport(v, Selection{X: 1, Y: 1, Width: 0, Height: 5}, 800, 600); !errors.Is(err, ErrNoSelection) {
		t.Errorf("zero width error = %v", err)
	}
	if _, err := ZoomViewport(v, Selection{Width: 5, Height: -1}, 800, 600); !errors.Is(err, ErrNoSelection) {
		t.Errorf("negative height error = %v", err)
	}
	if _, err := ZoomViewport(v, Selection{Width: 5, Height: 5}, 0, 600); !errors.Is(err, ErrEmptyRaster) {
		t.Errorf("zero display error = %v", err)
	}
}

func TestFixRatio(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{80, 60, 80, 60},
		{100, 60, 80, 60},
		{80, 100, 80, 60},
		{40, 40, 53, 40},
		{5, 0, 0, 0},
	}
	for _, tt := range tests {
		w, h := FixRatio(tt.w, tt.h, 0.75)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("FixRatio(%d, %d) = %d, %d; want %d, %d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestZoomSelector(t *testing.T) {
	z := NewZoomSelector(0)
	if z.Ratio() != 0.75 {
		t.Errorf("Ratio() = %v, want 0.75", z.Ratio())
	}

	var fired []Selection
	remove := z.OnZoom(func(s Selection) { fired = append(fired, s) })

	z.Begin(10, 20)
	if !z.Active() {
		t.Fatal("not active after Begin")
	}
	if got := z.Move(110, 200); got != (Selection{X: 10, Y: 20, Width: 100, Height: 75}) {
		t.Errorf("Move() = %+v", got)
	}
	// Dragging up-left shows nothing.
	if got := z.Move(5, 5); !got.Empty() {
		t.Errorf("Move() outside the lower-right quadrant = %+v, want empty", got)
	}
	z.Move(90, 80)
	sel, err := z.End()
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if sel != (Selection{X: 10, Y: 20, Width: 80, Height: 60}) {
		t.Errorf("End() = %+v", sel)
	}
	if z.Active() {
		t.Error("still active after End")
	}
	if len(fired) != 1 || fired[0] != sel {
		t.Errorf("listeners saw %+v", fired)
	}

	z.Begin(50, 50)
	z.Move(40, 60)
	if _, err := z.End(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("End() of a wrong-quadrant drag error = %v", err)
	}
	if _, err := z.End(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("End() without a drag error = %v", err)
	}

	z.Begin(0, 0)
	z.Abort()
	if z.Active() {
		t.Error("active after Abort")
	}

	remove()
	z.Begin(0, 0)
	z.Move(40, 30)
	if _, err := z.End(); err != nil {
		t.Fatal(err)
	}
	if len(fired) != 1 {
		t.Errorf("removed listener fired: %d calls", len(fired))
	}
}
