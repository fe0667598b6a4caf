package parallel

import (
	"image"
	"sync"
	"testing"
)

func TestNewDirtyBands_Invalid(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := NewDirtyBands(tt.w, tt.h); d != nil {
				t.Error("expected nil tracker")
			}
		})
	}
}

func TestDirtyBands_StartsClean(t *testing.T) {
	d := NewDirtyBands(100, 100)
	if !d.IsEmpty() {
		t.Error("new tracker should be empty")
	}
	if r := d.Collect(); !r.Empty() {
		t.Errorf("Collect() on clean tracker = %v", r)
	}
}

func TestDirtyBands_MarkRowsCollect(t *testing.T) {
	d := NewDirtyBands(64, 100)

	d.MarkRows(BandHeight+1, BandHeight+2)
	if d.IsEmpty() {
		t.Error("IsEmpty() = true after MarkRows")
	}

	got := d.Collect()
	want := image.Rect(0, BandHeight, 64, 2*BandHeight)
	if got != want {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
	if !d.IsEmpty() {
		t.Error("Collect should clear the bitmap")
	}
}

func TestDirtyBands_CollectUnion(t *testing.T) {
	d := NewDirtyBands(10, 100)
	d.MarkRows(0, 1)
	d.MarkRows(99, 100)

	got := d.Collect()
	want := image.Rect(0, 0, 10, 100)
	if got != want {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
}

func TestDirtyBands_Clipping(t *testing.T) {
	d := NewDirtyBands(10, 20)
	d.MarkRows(-50, -1)
	d.MarkRows(25, 40)
	d.MarkRect(image.Rect(20, 0, 30, 5))
	if !d.IsEmpty() {
		t.Errorf("out-of-range marks should be ignored, Collect() = %v", d.Collect())
	}

	d.MarkRect(image.Rect(-5, 18, 5, 40))
	if got, want := d.Collect(), image.Rect(0, BandHeight, 10, 20); got != want {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
}

func TestDirtyBands_MarkAllManyWords(t *testing.T) {
	h := BandHeight * 130 // three words
	d := NewDirtyBands(8, h)
	d.MarkAll()
	if d.IsEmpty() {
		t.Fatal("IsEmpty() = true after MarkAll")
	}
	if got, want := d.Collect(), image.Rect(0, 0, 8, h); got != want {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
}

func TestDirtyBands_Concurrent(t *testing.T) {
	h := 1000
	d := NewDirtyBands(4, h)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := w; y < h; y += 8 {
				d.MarkRows(y, y+1)
			}
		}()
	}
	wg.Wait()

	if got, want := d.Collect(), image.Rect(0, 0, 4, h); got != want {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
}
