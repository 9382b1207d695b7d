package ditherizer

import (
	"errors"
	"fmt"
	"hash"

	"github.com/leo-petrucci/ditherizer/dither"
	"github.com/leo-petrucci/ditherizer/fingerprint"
	"github.com/leo-petrucci/ditherizer/palette"
	"github.com/leo-petrucci/ditherizer/quantize"
)

// The error kinds surfaced by the pipeline. All failures are synchronous and
// non-recoverable within a single run; no partial output is ever produced.
var (
	// ErrInvalidConfiguration covers a manual palette with fewer than two
	// entries, MaxColors below two with no manual palette, and unknown
	// enum values.
	ErrInvalidConfiguration = errors.New("ditherizer: invalid configuration")
	// ErrResourceUnavailable means the raster surface could not be
	// acquired for resampling.
	ErrResourceUnavailable = errors.New("ditherizer: raster surface unavailable")
	// ErrEncodingFailure means the final output container could not be
	// produced.
	ErrEncodingFailure = errors.New("ditherizer: encoding failed")
	// ErrSuperseded means a newer Render was requested before this one
	// finished, so its result was discarded.
	ErrSuperseded = errors.New("ditherizer: render superseded")
)

// Scale factor bounds. Out-of-range factors are clamped, not rejected, so a
// slider wired straight to Scale can never fail a render.
const (
	MinScale = 0.25
	MaxScale = 4.0
)

// Config holds the full configuration surface of a pipeline run.
type Config struct {
	// MaxColors bounds the derived palette size. Values above 256 are
	// clamped; values below 2 fail validation. Ignored when Palette is
	// set.
	MaxColors int

	// Scale resizes the source before quantization, clamped into
	// [MinScale, MaxScale].
	Scale float64

	// Dither selects ordered pre-bias, Floyd-Steinberg error diffusion,
	// or plain nearest-color mapping.
	Dither dither.Mode

	// Reduction selects the palette-building strategy. Ignored when
	// Palette is set.
	Reduction quantize.Mode

	// Distance optionally overrides the color distance formula used for
	// nearest-entry lookup. Empty means the reduction mode's default, or
	// BT.709-weighted Euclidean when the mode has none.
	Distance palette.Formula

	// Palette, when non-nil, is used directly and the statistical build
	// is skipped entirely. Must hold at least two entries.
	Palette palette.Palette
}

// DefaultConfig returns a sensible interactive starting point: sixteen
// colors, no resize, Floyd-Steinberg diffusion over a Wu-derived palette.
func DefaultConfig() Config {
	return Config{
		MaxColors: 16,
		Scale:     1,
		Dither:    dither.Diffusion,
		Reduction: quantize.Adaptive,
	}
}

// normalize validates the palette rules and enum values, clamps MaxColors
// and Scale, and resolves the effective distance formula. Clamping rather
// than rejecting keeps later stages free of range checks.
func (c Config) normalize() (Config, error) {
	if c.Palette != nil {
		if err := c.Palette.Validate(); err != nil {
			return c, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
	} else {
		if c.MaxColors < palette.MinColors {
			return c, fmt.Errorf("%w: max colors %d is below the minimum of %d", ErrInvalidConfiguration, c.MaxColors, palette.MinColors)
		}
		if !c.Reduction.Valid() {
			return c, fmt.Errorf("%w: unknown reduction mode %q", ErrInvalidConfiguration, c.Reduction)
		}
		if override := c.Reduction.Distance(); override != "" {
			c.Distance = override
		}
	}

	if c.MaxColors > palette.MaxColors {
		c.MaxColors = palette.MaxColors
	}
	if c.Scale < MinScale {
		c.Scale = MinScale
	}
	if c.Scale > MaxScale {
		c.Scale = MaxScale
	}

	if !c.Dither.Valid() {
		return c, fmt.Errorf("%w: unknown dither mode %q", ErrInvalidConfiguration, c.Dither)
	}
	if c.Distance == "" {
		c.Distance = palette.EuclideanBT709
	}
	if !c.Distance.Valid() {
		return c, fmt.Errorf("%w: unknown distance formula %q", ErrInvalidConfiguration, c.Distance)
	}
	return c, nil
}

// sum mixes every field that affects pipeline output into the digest.
func (c Config) sum(h hash.Hash32) {
	fingerprint.WriteInt(h, c.MaxColors)
	fingerprint.WriteFloat(h, c.Scale)
	fingerprint.WriteString(h, string(c.Dither))
	fingerprint.WriteString(h, string(c.Reduction))
	fingerprint.WriteString(h, string(c.Distance))
	fingerprint.WriteInt(h, len(c.Palette))
	for _, e := range c.Palette {
		h.Write([]byte{e.R, e.G, e.B, e.A})
	}
}
