/*
Package resample scales pixel buffers by a scale factor using Catmull-Rom
interpolation, which antialiases downscales rather than nearest-sampling
them. Moire patterns introduced before quantization are very hard to dither
away afterwards.
*/
package resample

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/leo-petrucci/ditherizer/pixel"
)

// Size returns the output dimensions for a source size and scale factor.
// Dimensions are rounded, not truncated, and never drop below 1.
func Size(w, h int, factor float64) (int, int) {
	nw := int(math.Round(float64(w) * factor))
	nh := int(math.Round(float64(h) * factor))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// Scale resamples src by factor and returns a new buffer. A factor of 1
// still returns a fresh copy so callers can treat the result as their own.
func Scale(src *pixel.Buffer, factor float64) *pixel.Buffer {
	nw, nh := Size(src.Width, src.Height, factor)
	if nw == src.Width && nh == src.Height {
		return src.Clone()
	}
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src.NRGBA(), src.Bounds(), draw.Src, nil)
	return &pixel.Buffer{Pix: dst.Pix, Width: nw, Height: nh}
}
