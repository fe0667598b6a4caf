// Package mandelray renders the Mandelbrot set.
//
// # Overview
//
// mandelray maps a rectangle of the complex plane (a Viewport) onto a pixel
// raster, computes an escape-time value per pixel on a worker pool, and
// writes colorized pixels into a display surface. The escape-time field is
// cached per Frame so palette changes and history navigation redraw
// without recomputing.
//
// # Quick Start
//
//	display := surface.NewImageSurface(1600, 1200)
//	engine, err := mandelray.NewEngine(display)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	history := mandelray.NewHistory()
//	frame := history.Submit(mandelray.DefaultViewport)
//	if _, err := engine.Render(ctx, frame); err != nil {
//	    return err
//	}
//	img := display.Snapshot()
//
// # Rendering
//
// Rows are scheduled middle third first, then the top third bottom-up,
// then the bottom third, so the center of the image appears first. Each
// row is written in its own Acquire/Release bracket on the surface, which
// gives presenters progressive dirty notifications.
//
// Escaped points are colored with one of three ColorMode mappings; smooth
// coloring (the default) removes iteration banding. Interior points always
// use the palette's interior color.
//
// # Cancellation
//
// Every request advances a render epoch before it waits for the render
// lock. In-flight passes notice the newer epoch at their next row and
// stop; passes still waiting are dropped. Cancellation is never an error:
// it shows up as Report.Cancelled.
//
// # Display Sizes
//
// RenderSize derives the compute resolution from the display size with a
// fixed supersampling factor of 2 and an optional preview pass at 0.2.
// Changing the display size makes cached buffers stale; the next Draw
// recomputes.
//
// # Logging
//
// mandelray is silent by default. Use SetLogger to route its log/slog
// output.
package mandelray
