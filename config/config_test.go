package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mandelray"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 800.0, cfg.Display.Width)
	assert.Equal(t, "Ultra Fractal", cfg.Render.Palette)
	assert.Equal(t, mandelray.DefaultResidentFrames, cfg.History.ResidentFrames)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[display]
width = 1024
height = 768

[render]
workers = 2
palette = "grayscale"
color_mode = "cyclic"

[export]
format = "jpeg"
quality = 75

[log]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1024.0, cfg.Display.Width)
	assert.Equal(t, 768.0, cfg.Display.Height)
	assert.Equal(t, 2, cfg.Render.Workers)
	assert.Equal(t, "jpeg", cfg.Export.Format)
	assert.Equal(t, 75, cfg.Export.Quality)

	// Sections absent from the file keep their defaults.
	assert.Equal(t, mandelray.DefaultResidentFrames, cfg.History.ResidentFrames)
	assert.Equal(t, "best", cfg.Export.Downsample)

	set, err := cfg.PaletteSet()
	require.NoError(t, err)
	assert.Equal(t, "Grayscale", set.Selected().Name())
	assert.Equal(t, mandelray.ColorCyclic, set.Mode())

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_CustomPalette(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[render]
palette = "fire"

[[palette]]
name = "Fire"
colors = ["#000000", "#ff0000", "#ffff00", "#ffffff"]
interior = 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	set, err := cfg.PaletteSet()
	require.NoError(t, err)
	p := set.Selected()
	assert.Equal(t, "Fire", p.Name())
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, mandelray.RGB(255, 0, 0), p.Color(1))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `[display`},
		{"unknown key", "[render]\nthreads = 4\n"},
		{"negative size", "[display]\nwidth = -1\n"},
		{"color mode", "[render]\ncolor_mode = \"rainbow\"\n"},
		{"palette", "[render]\npalette = \"nope\"\n"},
		{"format", "[export]\nformat = \"gif\"\n"},
		{"quality", "[export]\nquality = 0\n"},
		{"resident", "[history]\nresident_frames = 0\n"},
		{"level", "[log]\nlevel = \"loud\"\n"},
		{"bad color", "[[palette]]\nname = \"x\"\ncolors = [\"#zz\"]\n"},
		{"bad interior", "[[palette]]\nname = \"x\"\ncolors = [\"#000\"]\ninterior = 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate_ReportsEverything(t *testing.T) {
	cfg := Default()
	cfg.Display.Width = 0
	cfg.Export.Quality = 500

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "display size")
	assert.Contains(t, err.Error(), "export.quality")
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, cfg, err := Find(nested)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Nil(t, cfg)

	want := writeConfig(t, root, "[display]\nwidth = 640\nheight = 480\n")
	path, cfg, err = Find(nested)
	require.NoError(t, err)
	assert.Equal(t, want, path)
	assert.Equal(t, 640.0, cfg.Display.Width)
}

func TestFind_StopsAtGitBoundary(t *testing.T) {
	outer := t.TempDir()
	writeConfig(t, outer, "[display]\nwidth = 640\nheight = 480\n")

	repo := filepath.Join(outer, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))

	path, cfg, err := Find(repo)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Nil(t, cfg)
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Render.Workers = 3
	assert.Len(t, cfg.EngineOptions(), 2)
	assert.Len(t, cfg.HistoryOptions(), 1)
}
