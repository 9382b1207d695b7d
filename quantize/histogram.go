package quantize

import (
	"image/color"

	mediancut "github.com/ericpauley/go-quantize/quantize"

	"github.com/leo-petrucci/ditherizer/palette"
	"github.com/leo-petrucci/ditherizer/pixel"
)

// Restrictive mode: statistical histogram quantization. The image is
// collapsed into a frequency histogram of its exact colors and median cut
// over the histogram buckets keeps the most frequent real color of each
// bucket, so every palette entry is a color that actually occurs in the
// source.
func histogramPalette(b *pixel.Buffer, maxColors int) palette.Palette {
	q := mediancut.MedianCutQuantizer{}
	cp := q.Quantize(make(color.Palette, 0, maxColors), b.NRGBA())
	return palette.FromColors(cp)
}
