package export

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Quality selects the resampling kernel used by Downsample.
type Quality int

const (
	// QualityBest uses a Catmull-Rom kernel. It is the default.
	QualityBest Quality = iota
	// QualityFast uses an approximate bilinear kernel, suitable for
	// interactive previews.
	QualityFast
	// QualityNearest picks the nearest source pixel.
	QualityNearest
)

func (q Quality) String() string {
	switch q {
	case QualityBest:
		return "best"
	case QualityFast:
		return "fast"
	case QualityNearest:
		return "nearest"
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ParseQuality parses "best", "fast" or "nearest".
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "best", "":
		return QualityBest, nil
	case "fast":
		return QualityFast, nil
	case "nearest":
		return QualityNearest, nil
	}
	return 0, fmt.Errorf("export: unknown quality %q", s)
}

func (q Quality) scaler() xdraw.Scaler {
	switch q {
	case QualityFast:
		return xdraw.ApproxBiLinear
	case QualityNearest:
		return xdraw.NearestNeighbor
	default:
		return xdraw.CatmullRom
	}
}

// Downsample scales src to width×height. When src already has that size
// it is returned unchanged.
func Downsample(src image.Image, width, height int, q Quality) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("export: invalid target size %dx%d", width, height)
	}
	sb := src.Bounds()
	if sb.Empty() {
		return nil, fmt.Errorf("export: empty source image")
	}
	if sb.Dx() == width && sb.Dy() == height {
		return src, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	q.scaler().Scale(dst, dst.Bounds(), src, sb, xdraw.Src, nil)
	return dst, nil
}
