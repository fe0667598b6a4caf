package mandelray

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Region is a named viewport of interest.
type Region struct {
	Name        string
	Description string
	Viewport    Viewport
}

// landmarks are classic regions of the Mandelbrot set, in display order.
var landmarks = []Region{
	{"Default", "the whole set", DefaultViewport},
	{"Seahorse Valley", "dense filaments and repeating seahorse curls",
		MustViewport(-0.8, -0.7, 0.05, 0.15)},
	{"Elephant Valley", "large bulb with trunk-like tendrils",
		MustViewport(-1.85, -1.75, -0.10, -0.02)},
	{"Spiral Minibrot", "small copy of the set with tight spiral arms",
		MustViewport(-0.7435, -0.7420, 0.1310, 0.1325)},
	{"Triple Spiral", "threefold symmetric spiral structure",
		MustViewport(-0.7480, -0.7450, 0.0950, 0.0980)},
	{"Valley of the Dragon", "deep, highly detailed spiral filaments",
		MustViewport(-0.7400, -0.7350, 0.1800, 0.1850)},
	{"Minibrot in a Mini-Spiral", "self-similar copy inside a spiral arm",
		MustViewport(-1.7390, -1.7375, -0.0235, -0.0220)},
}

// foldName reduces a name to its case-folded letters and digits, so
// "Seahorse Valley", "seahorse-valley" and "SEAHORSEVALLEY" compare equal.
func foldName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
	// A Caser is stateful and cannot be shared between goroutines.
	return cases.Fold().String(name)
}

// Landmarks returns the built-in regions in display order.
func Landmarks() []Region {
	return append([]Region(nil), landmarks...)
}

// Landmark looks up a built-in region by name, ignoring case, spaces and
// punctuation.
func Landmark(name string) (Region, error) {
	key := foldName(name)
	for _, r := range landmarks {
		if foldName(r.Name) == key {
			return r, nil
		}
	}
	return Region{}, fmt.Errorf("%w: %q", ErrUnknownLandmark, name)
}
