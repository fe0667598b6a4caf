package export

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned for file formats the package cannot write.
var ErrUnknownFormat = errors.New("export: unknown image format")

// Format is an output image format.
type Format int

const (
	PNG Format = iota
	JPEG
	BMP
	TIFF
)

var formatNames = [...]string{PNG: "png", JPEG: "jpeg", BMP: "bmp", TIFF: "tiff"}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses a format name. Common aliases ("jpg", "tif") are
// accepted and matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// DefaultJPEGQuality is used when Options.JPEGQuality is zero.
const DefaultJPEGQuality = 90

// Options control encoding.
type Options struct {
	// JPEGQuality ranges from 1 to 100. Zero selects DefaultJPEGQuality.
	JPEGQuality int

	// Compress enables deflate compression for TIFF output.
	Compress bool
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format, opts Options) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		q := opts.JPEGQuality
		if q == 0 {
			q = DefaultJPEGQuality
		}
		if q < 1 || q > 100 {
			return fmt.Errorf("export: jpeg quality %d out of range", q)
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		var to *tiff.Options
		if opts.Compress {
			to = &tiff.Options{Compression: tiff.Deflate}
		}
		return tiff.Encode(w, img, to)
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
}

// WriteFile encodes img into the file at path, choosing the format from
// the extension.
func WriteFile(path string, img image.Image, opts Options) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: %w", cerr)
		}
	}()
	if err := Encode(out, img, f, opts); err != nil {
		return fmt.Errorf("export: writing %s: %w", path, err)
	}
	return nil
}
