package mandelray

import (
	"errors"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBuiltinPalettes(t *testing.T) {
	tests := []struct {
		p        *Palette
		name     string
		n        int
		interior int
	}{
		{UltraFractal, "Ultra Fractal", 128, 109},
		{MultiColor, "Multi Color", 256, 0},
		{Grayscale, "Grayscale", 256, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.p.Name() != tt.name {
				t.Errorf("Name() = %q", tt.p.Name())
			}
			if tt.p.Len() != tt.n {
				t.Errorf("Len() = %d, want %d", tt.p.Len(), tt.n)
			}
			if tt.p.InteriorIndex() != tt.interior {
				t.Errorf("InteriorIndex() = %d, want %d", tt.p.InteriorIndex(), tt.interior)
			}
			for i, c := range tt.p.Colors() {
				if _, _, _, a := c.Channels(); a != 0xFF {
					t.Fatalf("color %d = %v is not opaque", i, c)
				}
			}
		})
	}
}

func TestUltraFractal_ControlPoints(t *testing.T) {
	// Index 0 sits on the first control color.
	if got := UltraFractal.Color(0); got != RGB(0, 7, 100) {
		t.Errorf("Color(0) = %v, want #000764", got)
	}
	// The interior index sits just before the last control color (0, 2, 0).
	r, g, b, _ := UltraFractal.Interior().Channels()
	if int(r)+int(g)+int(b) > 30 {
		t.Errorf("Interior() = %v, want a near-black color", UltraFractal.Interior())
	}
	if got := UltraFractal.InteriorIndex(); got != 109 {
		t.Errorf("InteriorIndex() = %d, want 109", got)
	}
	// Past the last control point the gradient holds its final color.
	for i := 110; i < UltraFractal.Len(); i++ {
		if UltraFractal.Color(i) != UltraFractal.Color(110) {
			t.Fatalf("Color(%d) = %v, want %v", i, UltraFractal.Color(i), UltraFractal.Color(110))
		}
	}
}

func TestMultiColor_Anchors(t *testing.T) {
	tests := map[int]Color{
		0:   RGB(255, 255, 255),
		1:   RGB(255, 255, 247),
		31:  RGB(255, 255, 0),
		63:  RGB(0, 255, 0),
		127: RGB(0, 0, 255),
		191: RGB(255, 0, 0),
		221: RGB(15, 0, 0),
		255: RGB(0, 0, 0),
	}
	for i, want := range tests {
		if got := MultiColor.Color(i); got != want {
			t.Errorf("Color(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestGrayscale(t *testing.T) {
	if Grayscale.Color(0) != RGB(255, 255, 255) || Grayscale.Color(255) != RGB(0, 0, 0) {
		t.Errorf("Grayscale ends = %v, %v", Grayscale.Color(0), Grayscale.Color(255))
	}
}

func TestNewPalette_Invalid(t *testing.T) {
	if _, err := NewPalette("empty", nil, 0); !errors.Is(err, ErrInvalidPalette) {
		t.Errorf("empty palette error = %v", err)
	}
	if _, err := NewPalette("oob", []Color{1, 2}, 2); !errors.Is(err, ErrInvalidPalette) {
		t.Errorf("out of range interior error = %v", err)
	}
	if _, err := NewPalette("neg", []Color{1, 2}, -1); !errors.Is(err, ErrInvalidPalette) {
		t.Errorf("negative interior error = %v", err)
	}

	colors := []Color{1, 2, 3}
	p, err := NewPalette("ok", colors, 2)
	if err != nil {
		t.Fatal(err)
	}
	colors[0] = 99
	if p.Color(0) != 1 {
		t.Error("NewPalette did not copy colors")
	}
}

func TestColor(t *testing.T) {
	c := ARGB(0x80, 0x10, 0x20, 0x30)
	if uint32(c) != 0x80102030 {
		t.Errorf("ARGB() = %#08x", uint32(c))
	}
	if c.String() != "#10203080" {
		t.Errorf("String() = %q", c.String())
	}
	if RGB(1, 2, 3).String() != "#010203" {
		t.Errorf("String() = %q", RGB(1, 2, 3).String())
	}

	want := color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}
	r1, g1, b1, a1 := c.RGBA()
	r2, g2, b2, a2 := want.RGBA()
	if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
		t.Errorf("RGBA() = %v %v %v %v, want %v %v %v %v", r1, g1, b1, a1, r2, g2, b2, a2)
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		err  bool
	}{
		{"#fff", RGB(255, 255, 255), false},
		{"f008", ARGB(0x88, 0xFF, 0, 0), false},
		{"#0a141e", RGB(10, 20, 30), false},
		{"0A141E80", ARGB(0x80, 10, 20, 30), false},
		{"#12", 0, true},
		{"zzzzzz", 0, true},
	}
	for _, tt := range tests {
		got, err := Hex(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("Hex(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorMode_Index(t *testing.T) {
	esc := func(it, smooth int32) Cell {
		return Cell{Kind: CellEscaped, Iterations: it, Smooth: smooth}
	}
	tests := []struct {
		name  string
		mode  ColorMode
		cell  Cell
		maxIt int
		n     int
		want  int
	}{
		{"smooth", ColorSmooth, esc(5, 12), 100, 10, 2},
		{"smooth negative", ColorSmooth, esc(1, -3), 100, 10, 7},
		{"cyclic", ColorCyclic, esc(23, 0), 100, 10, 3},
		{"cyclic at budget", ColorCyclic, esc(100, 0), 100, 10, 9},
		{"proportional", ColorProportional, esc(50, 0), 100, 11, 5},
		{"proportional top", ColorProportional, esc(100, 0), 100, 11, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Index(tt.cell, tt.maxIt, tt.n); got != tt.want {
				t.Errorf("Index() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestColorMode_Parse(t *testing.T) {
	for _, m := range []ColorMode{ColorSmooth, ColorCyclic, ColorProportional} {
		got, err := ParseColorMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseColorMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseColorMode("psychedelic"); err == nil {
		t.Error("ParseColorMode(psychedelic) succeeded")
	}
	if ColorProportional.Next() != ColorSmooth {
		t.Errorf("ColorProportional.Next() = %v", ColorProportional.Next())
	}
}

func TestColoring_ColorOf(t *testing.T) {
	p, _ := NewPalette("test", []Color{10, 20, 30, 40}, 3)
	c := Coloring{Palette: p, Mode: ColorCyclic}

	if got := c.ColorOf(Cell{Kind: CellInterior}, 50); got != 40 {
		t.Errorf("interior color = %v, want 40", got)
	}
	if got := c.ColorOf(Cell{Kind: CellEscaped, Iterations: 5}, 50); got != 20 {
		t.Errorf("escaped color = %v, want 20", got)
	}
	if got := c.ColorOf(Cell{}, 50); got != 0 {
		t.Errorf("unset color = %v, want 0", got)
	}

	if err := (Coloring{}).Validate(); !errors.Is(err, ErrInvalidPalette) {
		t.Errorf("Validate() of empty coloring = %v", err)
	}
}

func TestPaletteSet(t *testing.T) {
	s := NewPaletteSet()
	if s.Selected() != UltraFractal || s.Mode() != ColorSmooth {
		t.Fatalf("initial selection = %v/%v", s.Selected(), s.Mode())
	}

	var calls atomic.Int32
	var last atomic.Pointer[Coloring]
	cancel := s.Subscribe(func(c Coloring) {
		calls.Add(1)
		last.Store(&c)
	})

	if err := s.Select("grayscale"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if s.Selected() != Grayscale {
		t.Errorf("Selected() = %v, want Grayscale", s.Selected())
	}
	if got := last.Load(); got == nil || got.Palette != Grayscale {
		t.Errorf("subscriber saw %v", got)
	}

	// Selecting the current palette is not a change.
	_ = s.Select("Grayscale")
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}

	if p := s.Next(); p != UltraFractal {
		t.Errorf("Next() wrapped to %v, want UltraFractal", p)
	}
	if err := s.SetMode(ColorCyclic); err != nil {
		t.Fatal(err)
	}
	if got := s.Coloring(); got.Mode != ColorCyclic || got.Palette != UltraFractal {
		t.Errorf("Coloring() = %v/%v", got.Palette, got.Mode)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}

	if err := s.Select("nope"); !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("Select(nope) error = %v", err)
	}
	if err := s.SelectIndex(7); !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("SelectIndex(7) error = %v", err)
	}

	cancel()
	_ = s.SelectIndex(1)
	if calls.Load() != 3 {
		t.Errorf("cancelled subscriber still called: %d", calls.Load())
	}
}

func TestPaletteSet_RacingChangesDeliverLatest(t *testing.T) {
	s := NewPaletteSet()

	entered := make(chan struct{})
	release := make(chan struct{})
	var first sync.Once
	var last atomic.Pointer[Coloring]
	s.Subscribe(func(c Coloring) {
		first.Do(func() {
			close(entered)
			<-release
		})
		last.Store(&c)
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = s.Select("Grayscale")
	}()
	<-entered

	go func() {
		defer wg.Done()
		_ = s.Select("Multi Color")
	}()
	deadline := time.Now().Add(5 * time.Second)
	for s.Selected() != MultiColor {
		if time.Now().After(deadline) {
			t.Fatal("second Select never applied")
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	if s.Selected() != MultiColor {
		t.Fatalf("Selected() = %v, want Multi Color", s.Selected())
	}
	if got := last.Load(); got == nil || got.Palette != MultiColor {
		t.Errorf("last delivered = %v, want Multi Color", got)
	}
}

func TestPaletteSet_RejectsNil(t *testing.T) {
	s := NewPaletteSet(nil, Grayscale, nil)
	if got := len(s.Palettes()); got != 1 {
		t.Fatalf("len(Palettes()) = %d, want 1", got)
	}
	if s.Selected() != Grayscale {
		t.Errorf("Selected() = %v, want Grayscale", s.Selected())
	}

	if s := NewPaletteSet(nil); len(s.Palettes()) != len(BuiltinPalettes()) {
		t.Errorf("NewPaletteSet(nil) holds %d palettes, want the built-ins", len(s.Palettes()))
	}

	if _, err := s.Add(nil); !errors.Is(err, ErrInvalidPalette) {
		t.Errorf("Add(nil) error = %v, want ErrInvalidPalette", err)
	}
	i, err := s.Add(MultiColor)
	if err != nil || i != 1 {
		t.Fatalf("Add(MultiColor) = %d, %v", i, err)
	}
	if err := s.Select("multi color"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got := s.Coloring(); got.Palette != MultiColor {
		t.Errorf("Coloring().Palette = %v", got.Palette)
	}
}
