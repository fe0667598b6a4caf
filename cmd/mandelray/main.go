// Command mandelray renders and explores the Mandelbrot set.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/gogpu/mandelray"
	"github.com/gogpu/mandelray/config"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	Debug      bool
	ConfigPath string

	cfg     *config.Config
	cfgFile string
}

func main() {
	var g globals

	rootCmd := &cobra.Command{
		Use:   "mandelray",
		Short: "Mandelbrot set renderer and explorer",
		Long: `mandelray renders the Mandelbrot set with a supersampled, multi-core
escape-time renderer. Use "view" to explore interactively or "render" to
write images of named regions or arbitrary viewports.`,
		Example: `  # Open the interactive viewer
  mandelray view

  # Render two landmarks to PNG
  mandelray render --region "seahorse valley" --region "triple spiral" -o out/

  # Render a custom viewport as JPEG
  mandelray render --viewport -0.75,-0.74,0.1,0.11 -o zoom.jpg`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			g.cfg = cfg
			if err := setupLogging(cmd.ErrOrStderr(), cfg, g.Debug); err != nil {
				return err
			}
			if g.cfgFile != "" {
				slog.Debug("loaded config", "path", g.cfgFile)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&g.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&g.ConfigPath, "config", "",
		"Path to "+config.FileName+" (searched upward from the working directory by default)")

	rootCmd.AddCommand(
		renderCmd(&g),
		viewCmd(&g),
		palettesCmd(&g),
		regionsCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		stop()
		os.Exit(1)
	}
}

func (g *globals) loadConfig() (*config.Config, error) {
	if g.ConfigPath != "" {
		g.cfgFile = g.ConfigPath
		return config.Load(g.ConfigPath)
	}
	path, cfg, err := config.Find(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return config.Default(), nil
	}
	g.cfgFile = path
	return cfg, nil
}

func setupLogging(w io.Writer, cfg *config.Config, debug bool) error {
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	mandelray.SetLogger(logger)
	return nil
}
