// Package export turns a rendered surface into an image file.
//
// Renders are supersampled, so a finished raster is first reduced to the
// display resolution with [Downsample] and then written with [Encode] or
// [WriteFile]. PNG and JPEG use the standard library encoders; BMP and TIFF
// are provided by golang.org/x/image.
package export
