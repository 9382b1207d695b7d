/*
Package palette defines the bounded color palette produced by quantization
together with the color distance formulas used for nearest-entry lookup.

A palette derived from an image or supplied by a caller always holds between
2 and 256 entries. Entries are points in RGBA space; palettes whose entries
are all fully opaque leave the source alpha channel untouched during
remapping.
*/
package palette

import (
	"errors"
	"image/color"
)

const (
	// MinColors is the smallest usable palette size.
	MinColors = 2
	// MaxColors is the largest usable palette size.
	MaxColors = 256
)

var (
	// ErrTooFew is returned when a palette holds fewer than MinColors
	// entries.
	ErrTooFew = errors.New("palette: need at least 2 entries")
	// ErrTooMany is returned when a palette holds more than MaxColors
	// entries.
	ErrTooMany = errors.New("palette: more than 256 entries")
)

// Entry is a single palette color.
type Entry struct {
	R, G, B, A uint8
}

// Palette is an ordered set of entries.
type Palette []Entry

// Validate checks the palette size bounds.
func (p Palette) Validate() error {
	if len(p) < MinColors {
		return ErrTooFew
	}
	if len(p) > MaxColors {
		return ErrTooMany
	}
	return nil
}

// Opaque reports whether every entry is fully opaque.
func (p Palette) Opaque() bool {
	for _, e := range p {
		if e.A != 0xff {
			return false
		}
	}
	return true
}

// Nearest returns the index of the entry closest to the given color under
// the distance function. Ties resolve to the lowest index so lookups are
// stable for identical inputs.
func (p Palette) Nearest(r, g, b uint8, dist Func) int {
	best := 0
	bestDist := dist(r, g, b, p[0].R, p[0].G, p[0].B)
	for i := 1; i < len(p); i++ {
		if d := dist(r, g, b, p[i].R, p[i].G, p[i].B); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// FromColors converts a standard library palette, converting each color
// through non-premultiplied RGBA.
func FromColors(cp color.Palette) Palette {
	p := make(Palette, len(cp))
	for i, c := range cp {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		p[i] = Entry{R: n.R, G: n.G, B: n.B, A: n.A}
	}
	return p
}

// ColorPalette converts to a standard library palette for interoperability
// with image/png and friends.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, e := range p {
		cp[i] = color.NRGBA{R: e.R, G: e.G, B: e.B, A: e.A}
	}
	return cp
}
