// Package config loads mandelray.toml settings.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/mandelray"
	"github.com/gogpu/mandelray/export"
)

// FileName is the configuration file searched for by Find.
const FileName = "mandelray.toml"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the decoded configuration file.
type Config struct {
	Display  Display         `toml:"display"`
	Render   Render          `toml:"render"`
	History  History         `toml:"history"`
	Export   Export          `toml:"export"`
	Log      Log             `toml:"log"`
	Palettes []PaletteConfig `toml:"palette,omitempty"`
}

// Display is the logical display size in pixels.
type Display struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Render controls the render engine.
type Render struct {
	// Workers is the worker pool size. Zero means GOMAXPROCS.
	Workers int `toml:"workers"`

	Preview   bool   `toml:"preview"`
	Palette   string `toml:"palette"`
	ColorMode string `toml:"color_mode"`

	// MaxIterations overrides the per-viewport recommendation when set.
	MaxIterations int `toml:"max_iterations,omitempty"`
}

// History bounds the zoom history.
type History struct {
	ResidentFrames int `toml:"resident_frames"`
}

// Export holds image export defaults.
type Export struct {
	Format     string `toml:"format"`
	Quality    int    `toml:"quality"`
	Downsample string `toml:"downsample"`
}

// Log sets the CLI log level.
type Log struct {
	Level string `toml:"level"`
}

// PaletteConfig declares a user palette.
type PaletteConfig struct {
	Name     string   `toml:"name"`
	Colors   []string `toml:"colors"`
	Interior int      `toml:"interior"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Display: Display{Width: 800, Height: 600},
		Render: Render{
			Workers:   runtime.GOMAXPROCS(0),
			Preview:   true,
			Palette:   mandelray.UltraFractal.Name(),
			ColorMode: mandelray.ColorSmooth.String(),
		},
		History: History{ResidentFrames: mandelray.DefaultResidentFrames},
		Export: Export{
			Format:     export.PNG.String(),
			Quality:    export.DefaultJPEGQuality,
			Downsample: export.QualityBest.String(),
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find searches for mandelray.toml starting at dir and walking up to
// parent directories, stopping at a .git boundary. It returns ("", nil,
// nil) if no file is found.
func Find(dir string) (string, *Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			if err != nil {
				return "", nil, err
			}
			return path, cfg, nil
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		bad("display size %gx%g must be positive", c.Display.Width, c.Display.Height)
	}
	if c.Render.Workers < 0 {
		bad("render.workers %d is negative", c.Render.Workers)
	}
	if c.Render.MaxIterations < 0 || c.Render.MaxIterations > mandelray.MaxIterationBudget {
		bad("render.max_iterations %d out of range", c.Render.MaxIterations)
	}
	if _, err := mandelray.ParseColorMode(c.Render.ColorMode); err != nil {
		bad("render.color_mode %q", c.Render.ColorMode)
	}
	if c.History.ResidentFrames < 1 {
		bad("history.resident_frames %d must be at least 1", c.History.ResidentFrames)
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		bad("export.format %q", c.Export.Format)
	}
	if c.Export.Quality < 1 || c.Export.Quality > 100 {
		bad("export.quality %d must be within 1..100", c.Export.Quality)
	}
	if _, err := export.ParseQuality(c.Export.Downsample); err != nil {
		bad("export.downsample %q", c.Export.Downsample)
	}
	if _, err := c.LogLevel(); err != nil {
		bad("log.level %q", c.Log.Level)
	}

	if set, err := c.PaletteSet(); err != nil {
		errs = append(errs, err)
	} else if err := set.Select(c.Render.Palette); err != nil {
		bad("render.palette %q", c.Render.Palette)
	}
	return errors.Join(errs...)
}

// LogLevel parses the log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.Log.Level))
	return l, err
}

// PaletteSet returns the built-in palettes followed by the configured
// ones, with the configured palette and color mode selected when they
// are valid.
func (c *Config) PaletteSet() (*mandelray.PaletteSet, error) {
	set := mandelray.NewPaletteSet()
	for _, pc := range c.Palettes {
		p, err := pc.build()
		if err != nil {
			return nil, err
		}
		if _, err := set.Add(p); err != nil {
			return nil, err
		}
	}
	_ = set.Select(c.Render.Palette)
	if m, err := mandelray.ParseColorMode(c.Render.ColorMode); err == nil {
		_ = set.SetMode(m)
	}
	return set, nil
}

func (pc PaletteConfig) build() (*mandelray.Palette, error) {
	colors := make([]mandelray.Color, len(pc.Colors))
	for i, s := range pc.Colors {
		col, err := mandelray.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("%w: palette %q color %d: %w", ErrInvalid, pc.Name, i, err)
		}
		colors[i] = col
	}
	p, err := mandelray.NewPalette(pc.Name, colors, pc.Interior)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return p, nil
}

// EngineOptions converts the render section to engine options. The
// preview surface is left to the caller since it depends on the display.
func (c *Config) EngineOptions() []mandelray.EngineOption {
	var opts []mandelray.EngineOption
	if c.Render.Workers > 0 {
		opts = append(opts, mandelray.WithWorkers(c.Render.Workers))
	}
	if set, err := c.PaletteSet(); err == nil {
		opts = append(opts, mandelray.WithColoring(set.Coloring()))
	}
	return opts
}

// HistoryOptions converts the history section to history options.
func (c *Config) HistoryOptions() []mandelray.HistoryOption {
	return []mandelray.HistoryOption{mandelray.WithResidentFrames(c.History.ResidentFrames)}
}
