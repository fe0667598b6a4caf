package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/mandelray"
	"github.com/gogpu/mandelray/export"
	"github.com/gogpu/mandelray/surface"
)

type renderFlags struct {
	Regions    []string
	Viewport   string
	Width      float64
	Height     float64
	Palette    string
	Mode       string
	Iterations int
	Output     string
	Format     string
	Jobs       int
}

// target is one image to render.
type target struct {
	Name     string
	Viewport mandelray.Viewport
	Path     string
}

func renderCmd(g *globals) *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render regions to image files",
		Long: `Render one or more regions headless and write them as images.

Regions are rendered at twice the requested size and downsampled, so the
output is anti-aliased. With more than one region, --output names a
directory and each image is named after its region.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, g, f)
		},
	}

	cmd.Flags().StringArrayVarP(&f.Regions, "region", "r", nil, `Named region to render (repeatable, see "mandelray regions")`)
	cmd.Flags().StringVar(&f.Viewport, "viewport", "", "Custom viewport as xmin,xmax,ymin,ymax")
	cmd.Flags().Float64Var(&f.Width, "width", 0, "Image width in pixels (default from config)")
	cmd.Flags().Float64Var(&f.Height, "height", 0, "Image height in pixels (default from config)")
	cmd.Flags().StringVarP(&f.Palette, "palette", "p", "", "Palette name (default from config)")
	cmd.Flags().StringVarP(&f.Mode, "mode", "m", "", "Color mode: smooth, cyclic or proportional")
	cmd.Flags().IntVarP(&f.Iterations, "iterations", "i", 0, "Iteration budget (default: recommended per viewport)")
	cmd.Flags().StringVarP(&f.Output, "output", "o", ".", "Output file or directory")
	cmd.Flags().StringVar(&f.Format, "format", "", "Image format when writing to a directory: png, jpeg, bmp or tiff")
	cmd.Flags().IntVarP(&f.Jobs, "jobs", "j", 2, "Number of regions rendered concurrently")

	return cmd
}

func runRender(cmd *cobra.Command, g *globals, f renderFlags) error {
	cfg := g.cfg

	width, height := cfg.Display.Width, cfg.Display.Height
	if f.Width > 0 {
		width = f.Width
	}
	if f.Height > 0 {
		height = f.Height
	}

	set, err := cfg.PaletteSet()
	if err != nil {
		return err
	}
	if f.Palette != "" {
		if err := set.Select(f.Palette); err != nil {
			return err
		}
	}
	if f.Mode != "" {
		m, err := mandelray.ParseColorMode(f.Mode)
		if err != nil {
			return err
		}
		if err := set.SetMode(m); err != nil {
			return err
		}
	}
	iterations := cfg.Render.MaxIterations
	if f.Iterations != 0 {
		iterations = f.Iterations
	}

	format := cfg.Export.Format
	if f.Format != "" {
		format = f.Format
	}
	targets, err := resolveTargets(f, format)
	if err != nil {
		return err
	}
	quality, err := export.ParseQuality(cfg.Export.Downsample)
	if err != nil {
		return err
	}

	renderer := mandelray.NewRenderer(cfg.Render.Workers)
	defer renderer.Close()

	job := renderJob{
		renderer:   renderer,
		size:       mandelray.NewRenderSize(width, height),
		coloring:   set.Coloring(),
		iterations: iterations,
		quality:    quality,
		opts:       export.Options{JPEGQuality: cfg.Export.Quality},
	}

	p := message.NewPrinter(language.English)
	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(max(f.Jobs, 1))
	for _, t := range targets {
		eg.Go(func() error {
			rep, err := job.run(ctx, t)
			if err != nil {
				return fmt.Errorf("%s: %w", t.Name, err)
			}
			p.Fprintf(cmd.OutOrStdout(), "%s: %d pixels in %v -> %s\n",
				t.Name, job.size.RenderWidth*job.size.RenderHeight,
				rep.Elapsed.Round(time.Millisecond), t.Path)
			return nil
		})
	}
	return eg.Wait()
}

// resolveTargets builds the list of images from the region and viewport
// flags and assigns their output paths.
func resolveTargets(f renderFlags, format string) ([]target, error) {
	var targets []target
	for _, name := range f.Regions {
		r, err := mandelray.Landmark(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target{Name: r.Name, Viewport: r.Viewport})
	}
	if f.Viewport != "" {
		v, err := parseViewport(f.Viewport)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target{Name: "custom", Viewport: v})
	}
	if len(targets) == 0 {
		targets = append(targets, target{Name: "Default", Viewport: mandelray.DefaultViewport})
	}

	// A single target may be written straight to a file.
	if len(targets) == 1 && filepath.Ext(f.Output) != "" {
		if _, err := export.FormatFromPath(f.Output); err != nil {
			return nil, err
		}
		targets[0].Path = f.Output
		return targets, nil
	}

	ff, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(f.Output, 0o755); err != nil {
		return nil, err
	}
	for i := range targets {
		targets[i].Path = filepath.Join(f.Output, slug(targets[i].Name)+"."+ff.String())
	}
	return targets, nil
}

// parseViewport parses "xmin,xmax,ymin,ymax".
func parseViewport(s string) (mandelray.Viewport, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return mandelray.Viewport{}, fmt.Errorf("%w: want xmin,xmax,ymin,ymax, got %q",
			mandelray.ErrInvalidViewport, s)
	}
	var v [4]float64
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mandelray.Viewport{}, fmt.Errorf("%w: %w", mandelray.ErrInvalidViewport, err)
		}
		v[i] = x
	}
	return mandelray.NewViewport(v[0], v[1], v[2], v[3])
}

// slug turns a region name into a file name.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// renderJob holds the settings shared by every target of one invocation.
type renderJob struct {
	renderer   *mandelray.Renderer
	size       mandelray.RenderSize
	coloring   mandelray.Coloring
	iterations int
	quality    export.Quality
	opts       export.Options
}

func (j renderJob) run(ctx context.Context, t target) (mandelray.Report, error) {
	display := surface.NewImageSurface(j.size.RenderWidth, j.size.RenderHeight)
	defer display.Close()

	engine, err := mandelray.NewEngine(display,
		mandelray.WithRenderer(j.renderer),
		mandelray.WithRenderSize(j.size),
		mandelray.WithColoring(j.coloring),
	)
	if err != nil {
		return mandelray.Report{}, err
	}
	defer engine.Close()

	frame := mandelray.NewFrame(t.Viewport)
	if j.iterations > 0 {
		if err := frame.SetMaxIterations(j.iterations); err != nil {
			return mandelray.Report{}, err
		}
	}

	rep, err := engine.Render(ctx, frame)
	if err != nil {
		return rep, err
	}
	switch {
	case rep.Skipped:
		return rep, mandelray.ErrEmptyRaster
	case rep.Cancelled:
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		return rep, errors.New("render cancelled")
	}

	img, err := export.Downsample(display.Snapshot(),
		int(j.size.DisplayWidth+0.5), int(j.size.DisplayHeight+0.5), j.quality)
	if err != nil {
		return rep, err
	}
	if err := export.WriteFile(t.Path, img, j.opts); err != nil {
		return rep, err
	}
	slog.Debug("wrote image", "region", t.Name, "path", t.Path, "iterations", frame.MaxIterations())
	return rep, nil
}
