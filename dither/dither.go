/*
Package dither implements the two dithering strategies used by the pipeline:
an ordered Bayer pre-pass that perturbs source pixels before the palette is
built, and classic Floyd-Steinberg error diffusion applied while pixels are
remapped onto the palette.

The ordered pre-pass biases each channel by a fixed position-dependent
threshold so that a later nearest-color remap still shows dither texture
without any per-pixel error propagation. Error diffusion instead perturbs
the mapping decision itself by carrying accumulated quantization error into
not-yet-visited neighbors.
*/
package dither

import (
	"github.com/leo-petrucci/ditherizer/palette"
	"github.com/leo-petrucci/ditherizer/pixel"
)

// Mode selects the dithering strategy.
type Mode string

// The supported dithering modes.
const (
	Ordered   Mode = "ordered"
	Diffusion Mode = "diffusion"
	None      Mode = "none"
)

// Valid reports whether the mode is one of the supported names.
func (m Mode) Valid() bool {
	switch m {
	case Ordered, Diffusion, None:
		return true
	}
	return false
}

// 4x4 Bayer threshold matrix, periodic over the image.
var bayer = [4][4]float64{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

const (
	bayerLevels  = 16
	biasStrength = 24
)

// OrderedBias returns a copy of src with each R, G and B channel shifted by
// the Bayer threshold for its position. Alpha passes through unchanged. The
// output is a pure function of position and input, so repeated runs over the
// same buffer are bit-identical.
func OrderedBias(src *pixel.Buffer) *pixel.Buffer {
	dst := src.Clone()
	for y := 0; y < dst.Height; y++ {
		row := bayer[y%4]
		for x := 0; x < dst.Width; x++ {
			threshold := (row[x%4]/bayerLevels - 0.5) * biasStrength
			i := dst.PixOffset(x, y)
			dst.Pix[i] = clampChannel(float64(dst.Pix[i]) + threshold)
			dst.Pix[i+1] = clampChannel(float64(dst.Pix[i+1]) + threshold)
			dst.Pix[i+2] = clampChannel(float64(dst.Pix[i+2]) + threshold)
		}
	}
	return dst
}

// Remap maps every pixel of src onto the palette and returns a new buffer of
// the same dimensions. Diffusion mode applies Floyd-Steinberg error
// diffusion; the other modes use plain nearest-color lookup. Source alpha is
// preserved unless the palette carries non-opaque entries.
func Remap(src *pixel.Buffer, pal palette.Palette, mode Mode, dist palette.Func) *pixel.Buffer {
	if mode == Diffusion {
		return diffuse(src, pal, dist)
	}
	return nearest(src, pal, dist)
}

func nearest(src *pixel.Buffer, pal palette.Palette, dist palette.Func) *pixel.Buffer {
	dst := pixel.New(src.Width, src.Height)
	keepAlpha := pal.Opaque()

	// Images repeat colors heavily, so memoize lookups by packed RGB.
	lookup := make(map[uint32]int)

	for i := 0; i < len(src.Pix); i += 4 {
		r, g, b := src.Pix[i], src.Pix[i+1], src.Pix[i+2]
		key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
		n, ok := lookup[key]
		if !ok {
			n = pal.Nearest(r, g, b, dist)
			lookup[key] = n
		}
		e := pal[n]
		dst.Pix[i] = e.R
		dst.Pix[i+1] = e.G
		dst.Pix[i+2] = e.B
		if keepAlpha {
			dst.Pix[i+3] = src.Pix[i+3]
		} else {
			dst.Pix[i+3] = e.A
		}
	}
	return dst
}

// Floyd-Steinberg weights, in sixteenths.
const (
	weightRight      = 7
	weightBelowLeft  = 3
	weightBelow      = 5
	weightBelowRight = 1
)

func diffuse(src *pixel.Buffer, pal palette.Palette, dist palette.Func) *pixel.Buffer {
	dst := pixel.New(src.Width, src.Height)
	keepAlpha := pal.Opaque()
	w := src.Width

	lookup := make(map[uint32]int)

	// Per-channel error for the current and next row.
	cur := make([]float64, w*3)
	next := make([]float64, w*3)

	for y := 0; y < src.Height; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x, y)
			r := clampChannel(float64(src.Pix[i]) + cur[x*3])
			g := clampChannel(float64(src.Pix[i+1]) + cur[x*3+1])
			b := clampChannel(float64(src.Pix[i+2]) + cur[x*3+2])

			key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
			n, ok := lookup[key]
			if !ok {
				n = pal.Nearest(r, g, b, dist)
				lookup[key] = n
			}
			e := pal[n]
			dst.Pix[i] = e.R
			dst.Pix[i+1] = e.G
			dst.Pix[i+2] = e.B
			if keepAlpha {
				dst.Pix[i+3] = src.Pix[i+3]
			} else {
				dst.Pix[i+3] = e.A
			}

			er := float64(r) - float64(e.R)
			eg := float64(g) - float64(e.G)
			eb := float64(b) - float64(e.B)

			if x+1 < w {
				spread(cur, x+1, er, eg, eb, weightRight)
				spread(next, x+1, er, eg, eb, weightBelowRight)
			}
			if x > 0 {
				spread(next, x-1, er, eg, eb, weightBelowLeft)
			}
			spread(next, x, er, eg, eb, weightBelow)
		}
		cur, next = next, cur
		for i := range next {
			next[i] = 0
		}
	}
	return dst
}

func spread(row []float64, x int, er, eg, eb float64, weight float64) {
	row[x*3] += er * weight / 16
	row[x*3+1] += eg * weight / 16
	row[x*3+2] += eb * weight / 16
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
