package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/spf13/cobra"

	"github.com/gogpu/mandelray"
	"github.com/gogpu/mandelray/export"
	"github.com/gogpu/mandelray/surface"
)

const viewHelp = `drag: zoom  backspace/left: back  right: forward  home: start
p: palette  m: color mode  r: re-render  +/-: iterations  s: save  q: quit`

func viewCmd(g *globals) *cobra.Command {
	var (
		region  string
		saveDir string
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Explore the Mandelbrot set interactively",
		Long: `Open a window showing the Mandelbrot set.

Drag a rectangle with the left mouse button to zoom into it. The zoom
history can be walked back and forth; frames that were visited recently
are redrawn from cache without recomputation.

` + viewHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := mandelray.DefaultViewport
			if region != "" {
				r, err := mandelray.Landmark(region)
				if err != nil {
					return err
				}
				start = r.Viewport
			}

			v, err := newViewer(g, start, saveDir)
			if err != nil {
				return err
			}
			defer v.Close()

			ebiten.SetWindowTitle("mandelray")
			ebiten.SetWindowSize(int(g.cfg.Display.Width), int(g.cfg.Display.Height))
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "", "Named region to start at")
	cmd.Flags().StringVar(&saveDir, "save-dir", ".", "Directory for images saved with the S key")

	return cmd
}

// viewer implements ebiten.Game on top of the render engine.
//
// Render passes write into display and preview from worker goroutines;
// the dirty listeners only raise flags, and Draw copies the surfaces into
// ebiten images on the game goroutine.
type viewer struct {
	engine   *mandelray.Engine
	display  *surface.ImageSurface
	preview  *surface.ImageSurface
	history  *mandelray.History
	palettes *mandelray.PaletteSet
	selector *mandelray.ZoomSelector

	format     export.Format
	exportOpts export.Options
	quality    export.Quality
	saveDir    string

	displayDirty atomic.Bool
	previewDirty atomic.Bool
	last         atomic.Pointer[mandelray.Report]

	displayImg, previewImg   *ebiten.Image
	displayRGBA, previewRGBA *image.RGBA

	outW, outH int
	offX, offY float64
	sel        mandelray.Selection

	statusMu sync.Mutex
	status   string
	statusAt time.Time

	cleanup []func()
}

func newViewer(g *globals, start mandelray.Viewport, saveDir string) (*viewer, error) {
	cfg := g.cfg
	set, err := cfg.PaletteSet()
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}
	quality, err := export.ParseQuality(cfg.Export.Downsample)
	if err != nil {
		return nil, err
	}

	v := &viewer{
		display:    surface.NewImageSurface(0, 0),
		preview:    surface.NewImageSurface(0, 0),
		history:    mandelray.NewHistory(cfg.HistoryOptions()...),
		palettes:   set,
		selector:   mandelray.NewZoomSelector(start.AspectRatio()),
		format:     format,
		exportOpts: export.Options{JPEGQuality: cfg.Export.Quality},
		quality:    quality,
		saveDir:    saveDir,
	}

	opts := append(cfg.EngineOptions(),
		mandelray.WithRenderSize(mandelray.NewRenderSize(cfg.Display.Width, cfg.Display.Height)),
		mandelray.WithObserver(v.observe),
	)
	if cfg.Render.Preview {
		opts = append(opts, mandelray.WithPreview(v.preview))
	}
	v.engine, err = mandelray.NewEngine(v.display, opts...)
	if err != nil {
		return nil, err
	}

	v.cleanup = append(v.cleanup,
		v.display.OnDirty(func(image.Rectangle) { v.displayDirty.Store(true) }),
		v.preview.OnDirty(func(image.Rectangle) { v.previewDirty.Store(true) }),
		v.engine.WatchPalettes(set, v.history.Current),
		v.selector.OnZoom(v.zoom),
	)

	f := v.history.Submit(start)
	if cfg.Render.MaxIterations > 0 {
		if err := f.SetMaxIterations(cfg.Render.MaxIterations); err != nil {
			v.Close()
			return nil, err
		}
	}
	v.engine.RenderAsync(f)
	return v, nil
}

// observe runs under the render lock; it only records the report.
func (v *viewer) observe(rep mandelray.Report) {
	v.last.Store(&rep)
	if rep.Err != nil {
		v.setStatus("render failed: " + rep.Err.Error())
	}
}

func (v *viewer) setStatus(s string) {
	v.statusMu.Lock()
	v.status, v.statusAt = s, time.Now()
	v.statusMu.Unlock()
}

func (v *viewer) statusLine() string {
	v.statusMu.Lock()
	defer v.statusMu.Unlock()
	if time.Since(v.statusAt) > 4*time.Second {
		return ""
	}
	return v.status
}

// zoom is called by the selector when a drag ends.
func (v *viewer) zoom(sel mandelray.Selection) {
	size := v.engine.Size()
	cur := v.history.Current()
	vp, err := mandelray.ZoomViewport(cur.Viewport(), sel, size.DisplayWidth, size.DisplayHeight)
	if err != nil {
		v.setStatus(err.Error())
		return
	}
	f := v.history.Submit(vp)
	slog.Info("zoom", "viewport", vp.String(), "iterations", f.MaxIterations())
	v.engine.RenderAsync(f)
}

func (v *viewer) Update() error {
	v.resize()

	x, y := ebiten.CursorPosition()
	px, py := x-int(v.offX), y-int(v.offY)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		v.selector.Begin(px, py)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		v.sel = mandelray.Selection{}
		if _, err := v.selector.End(); err != nil && !errors.Is(err, mandelray.ErrNoSelection) {
			v.setStatus(err.Error())
		}
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
		v.selector.Abort()
		v.sel = mandelray.Selection{}
	case v.selector.Active():
		v.sel = v.selector.Move(px, py)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		v.selector.Abort()
		v.sel = mandelray.Selection{}
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace), inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		v.step(v.history.Back)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		v.step(v.history.Forward)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		v.step(v.history.Home)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		p := v.palettes.Next()
		v.setStatus("palette: " + p.Name())
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		m := v.palettes.Mode().Next()
		if err := v.palettes.SetMode(m); err != nil {
			v.setStatus(err.Error())
		} else {
			v.setStatus("color mode: " + m.String())
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		v.engine.RenderAsync(v.history.Current())
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		v.scaleIterations(2, 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		v.scaleIterations(1, 2)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		v.save()
	}
	return nil
}

func (v *viewer) step(move func() (*mandelray.Frame, bool)) {
	if f, ok := move(); ok {
		v.engine.DrawAsync(f)
	}
}

func (v *viewer) scaleIterations(num, den int) {
	f := v.history.Current()
	n := max(f.MaxIterations()*num/den, 1)
	if err := f.SetMaxIterations(n); err != nil {
		v.setStatus(err.Error())
		return
	}
	v.setStatus(fmt.Sprintf("iterations: %d", n))
	v.engine.DrawAsync(f)
}

// resize fits the display into the window while keeping the aspect
// ratio of the zoom selector.
func (v *viewer) resize() {
	if v.outW == 0 || v.outH == 0 {
		return
	}
	w, h := mandelray.FitDisplay(float64(v.outW), float64(v.outH), v.selector.Ratio())
	w, h = float64(int(w)), float64(int(h))
	v.offX, v.offY = (float64(v.outW)-w)/2, (float64(v.outH)-h)/2

	size := v.engine.Size()
	if size.DisplayWidth == w && size.DisplayHeight == h {
		return
	}
	if _, err := v.engine.ChangeDisplaySize(w, h); err != nil {
		v.setStatus(err.Error())
		return
	}
	v.engine.DrawAsync(v.history.Current())
}

// save writes the current frame at display resolution.
func (v *viewer) save() {
	size := v.engine.Size()
	f := v.history.Current()
	if f.State(size) != mandelray.FrameRendered {
		v.setStatus("nothing to save yet")
		return
	}
	snap := v.display.Snapshot()
	path := filepath.Join(v.saveDir, fmt.Sprintf("mandelray-%d.%s", time.Now().Unix(), v.format))

	go func() {
		img, err := export.Downsample(snap, int(size.DisplayWidth), int(size.DisplayHeight), v.quality)
		if err == nil {
			err = export.WriteFile(path, img, v.exportOpts)
		}
		if err != nil {
			v.setStatus("save failed: " + err.Error())
			return
		}
		v.setStatus("saved " + path)
	}()
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	if v.previewDirty.Swap(false) {
		v.previewRGBA = v.preview.SnapshotInto(v.previewRGBA)
		v.previewImg = upload(v.previewImg, v.previewRGBA)
	}
	if v.displayDirty.Swap(false) {
		v.displayRGBA = v.display.SnapshotInto(v.displayRGBA)
		v.displayImg = upload(v.displayImg, v.displayRGBA)
	}

	size := v.engine.Size()
	v.drawScaled(screen, v.previewImg, size.DisplayWidth)
	v.drawScaled(screen, v.displayImg, size.DisplayWidth)

	if !v.sel.Empty() {
		vector.StrokeRect(screen,
			float32(v.offX)+float32(v.sel.X), float32(v.offY)+float32(v.sel.Y),
			float32(v.sel.Width), float32(v.sel.Height),
			1, color.White, false)
	}

	ebitenutil.DebugPrint(screen, v.hud(size))
}

// drawScaled draws img stretched to the display width.
func (v *viewer) drawScaled(screen, img *ebiten.Image, displayWidth float64) {
	if img == nil || displayWidth <= 0 {
		return
	}
	w := img.Bounds().Dx()
	if w == 0 {
		return
	}
	s := displayWidth / float64(w)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(v.offX, v.offY)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

func (v *viewer) hud(size mandelray.RenderSize) string {
	f := v.history.Current()
	c := v.palettes.Coloring()
	s := fmt.Sprintf("frame %d/%d  %s\n%d iterations  %s  %s",
		v.history.Index()+1, v.history.Len(), f.Viewport(),
		f.MaxIterations(), c.Palette.Name(), c.Mode)
	if rep := v.last.Load(); rep != nil && rep.Frame == f {
		switch {
		case rep.Cancelled:
		case rep.Rows < rep.TotalRows:
			s += fmt.Sprintf("\n%s %d/%d rows", rep.Kind, rep.Rows, rep.TotalRows)
		default:
			s += fmt.Sprintf("\n%s %v", rep.Kind, rep.Elapsed.Round(time.Millisecond))
		}
	}
	if st := v.statusLine(); st != "" {
		s += "\n" + st
	}
	return s
}

// upload copies src into img, reallocating img when the size changed.
func upload(img *ebiten.Image, src *image.RGBA) *ebiten.Image {
	b := src.Bounds()
	if b.Empty() {
		return img
	}
	if img == nil || img.Bounds().Size() != b.Size() {
		if img != nil {
			img.Deallocate()
		}
		img = ebiten.NewImage(b.Dx(), b.Dy())
	}
	img.WritePixels(src.Pix)
	return img
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.outW, v.outH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Close stops rendering and releases the surfaces.
func (v *viewer) Close() {
	for _, fn := range v.cleanup {
		fn()
	}
	_ = v.engine.Close()
	_ = v.display.Close()
	_ = v.preview.Close()
}
