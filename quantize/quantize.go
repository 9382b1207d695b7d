/*
Package quantize computes bounded color palettes from pixel buffers using one
of five selectable reduction strategies. All strategies are deterministic:
identical input and configuration produce a bit-identical palette.
*/
package quantize

import (
	"errors"

	"github.com/leo-petrucci/ditherizer/palette"
	"github.com/leo-petrucci/ditherizer/pixel"
)

// Mode names a color-reduction strategy.
type Mode string

// The supported reduction modes. Each mode is a named pairing of a
// quantization algorithm and, for Perceptual, a forced distance formula.
const (
	// Perceptual uses the variance-minimizing Wu quantizer and forces
	// CIEDE2000 distance during remapping.
	Perceptual Mode = "perceptual"
	// PerceptualPlus uses the floating-point neural network quantizer.
	PerceptualPlus Mode = "perceptual-plus"
	// Selective uses the standard integer neural network quantizer.
	Selective Mode = "selective"
	// Adaptive uses the Wu quantizer with the caller's distance formula.
	Adaptive Mode = "adaptive"
	// Restrictive uses statistical histogram quantization.
	Restrictive Mode = "restrictive"
)

var errUnknownMode = errors.New("quantize: unknown reduction mode")

// Valid reports whether the mode is one of the supported names.
func (m Mode) Valid() bool {
	switch m {
	case Perceptual, PerceptualPlus, Selective, Adaptive, Restrictive:
		return true
	}
	return false
}

// Distance returns the formula the mode forces, or the empty string when the
// caller's choice stands.
func (m Mode) Distance() palette.Formula {
	if m == Perceptual {
		return palette.CIEDE2000
	}
	return ""
}

// Build computes a palette of at most maxColors entries for the buffer using
// the given mode. The result may hold fewer entries when the source has
// lower color cardinality, but never fewer than two.
func Build(b *pixel.Buffer, maxColors int, mode Mode) (palette.Palette, error) {
	if maxColors < palette.MinColors {
		maxColors = palette.MinColors
	}
	if maxColors > palette.MaxColors {
		maxColors = palette.MaxColors
	}

	var p palette.Palette
	switch mode {
	case Perceptual, Adaptive:
		p = wuPalette(b, maxColors)
	case PerceptualPlus:
		p = neuQuantFloatPalette(b, maxColors)
	case Selective:
		p = neuQuantPalette(b, maxColors)
	case Restrictive:
		p = histogramPalette(b, maxColors)
	default:
		return nil, errUnknownMode
	}

	return pad(dedupe(p)), nil
}

// dedupe drops exact duplicate entries, keeping first occurrences in order.
func dedupe(p palette.Palette) palette.Palette {
	seen := make(map[palette.Entry]struct{}, len(p))
	out := p[:0]
	for _, e := range p {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// pad grows degenerate palettes up to the two-entry minimum. A single-color
// source quantizes to one entry; the filler never wins a nearest-color
// search against the real entry for pixels of that color, so output pixels
// are unaffected.
func pad(p palette.Palette) palette.Palette {
	filler := palette.Entry{A: 0xff}
	for len(p) < palette.MinColors {
		if len(p) > 0 && p[0] == filler {
			filler = palette.Entry{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		}
		p = append(p, filler)
	}
	return p
}
