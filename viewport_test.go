package mandelray

import (
	"errors"
	"math"
	"testing"
)

func TestNewViewport(t *testing.T) {
	tests := []struct {
		name                   string
		xMin, xMax, yMin, yMax float64
		wantErr                bool
	}{
		{"default", -2.5, 1.5, -1.5, 1.5, false},
		{"tiny", 0, 1e-300, 0, 1e-300, false},
		{"inverted x", 1, -1, -1, 1, true},
		{"inverted y", -1, 1, 1, -1, true},
		{"empty x", 1, 1, -1, 1, true},
		{"nan", math.NaN(), 1, -1, 1, true},
		{"inf", -1, math.Inf(1), -1, 1, true},
		{"overflowing extent", -math.MaxFloat64, math.MaxFloat64, -1, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewViewport(tt.xMin, tt.xMax, tt.yMin, tt.yMax)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewViewport() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidViewport) {
				t.Errorf("error %v is not ErrInvalidViewport", err)
			}
		})
	}
}

func TestViewport_Diffs(t *testing.T) {
	v := DefaultViewport
	if v.XDiff() != 4 {
		t.Errorf("XDiff() = %v, want 4", v.XDiff())
	}
	if v.YDiff() != 3 {
		t.Errorf("YDiff() = %v, want 3", v.YDiff())
	}
	if v.AspectRatio() != 0.75 {
		t.Errorf("AspectRatio() = %v, want 0.75", v.AspectRatio())
	}
	if v.Center() != complex(-0.5, 0) {
		t.Errorf("Center() = %v, want (-0.5+0i)", v.Center())
	}
}

func TestViewport_RecommendedIterations(t *testing.T) {
	want := int(math.Floor(math.Log(1.0/3)*40 + 100))
	if got := DefaultViewport.RecommendedIterations(); got != want {
		t.Errorf("RecommendedIterations() = %d, want %d", got, want)
	}
	if want != 56 {
		t.Errorf("floor(ln(1/3)*40+100) = %d, want 56", want)
	}

	deep := MustViewport(0, 1e-3, 0, 1e-3)
	if got := deep.RecommendedIterations(); got != int(math.Floor(math.Log(1e3)*40+100)) {
		t.Errorf("deep RecommendedIterations() = %d", got)
	}
	if deep.RecommendedIterations() <= DefaultViewport.RecommendedIterations() {
		t.Error("deeper viewport should get a larger budget")
	}

	// Subnormal extents keep growing the budget.
	subnormal := MustViewport(0, 1e-310, 0, 1e-310)
	normal := MustViewport(0, 1e-300, 0, 1e-300)
	if got := subnormal.RecommendedIterations(); got <= normal.RecommendedIterations() {
		t.Errorf("subnormal RecommendedIterations() = %d, want more than %d", got, normal.RecommendedIterations())
	}

	// Huge extents would go negative; the budget bottoms out at 1.
	huge := MustViewport(-1e300, 1e300, -1e300, 1e300)
	if got := huge.RecommendedIterations(); got != 1 {
		t.Errorf("huge RecommendedIterations() = %d, want 1", got)
	}
}

func TestViewport_Point(t *testing.T) {
	v := MustViewport(-2, 2, -1, 1)
	tests := []struct {
		px, py int
		want   complex128
	}{
		{0, 0, complex(-2, -1)},
		{50, 25, complex(0, 0)},
		{100, 50, complex(2, 1)},
	}
	for _, tt := range tests {
		if got := v.Point(tt.px, tt.py, 100, 50); got != tt.want {
			t.Errorf("Point(%d, %d) = %v, want %v", tt.px, tt.py, got, tt.want)
		}
	}
}

func TestViewport_String(t *testing.T) {
	if got := DefaultViewport.String(); got != "[-2.5,1.5]×[-1.5,1.5]" {
		t.Errorf("String() = %q", got)
	}
}

func TestLandmark(t *testing.T) {
	for _, name := range []string{"Seahorse Valley", "seahorse-valley", "SEAHORSEVALLEY"} {
		r, err := Landmark(name)
		if err != nil {
			t.Fatalf("Landmark(%q) error = %v", name, err)
		}
		if r.Viewport.XMin() != -0.8 || r.Viewport.XMax() != -0.7 {
			t.Errorf("Landmark(%q) = %v", name, r.Viewport)
		}
	}

	if _, err := Landmark("atlantis"); !errors.Is(err, ErrUnknownLandmark) {
		t.Errorf("Landmark(atlantis) error = %v, want ErrUnknownLandmark", err)
	}

	all := Landmarks()
	if len(all) != 7 || all[0].Viewport != DefaultViewport {
		t.Errorf("Landmarks() = %d regions, first %v", len(all), all[0].Viewport)
	}
}
