package ditherizer

import (
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo-petrucci/ditherizer/dither"
	"github.com/leo-petrucci/ditherizer/palette"
	"github.com/leo-petrucci/ditherizer/pixel"
	"github.com/leo-petrucci/ditherizer/quantize"
)

var (
	allReductions = []quantize.Mode{
		quantize.Perceptual,
		quantize.PerceptualPlus,
		quantize.Selective,
		quantize.Adaptive,
		quantize.Restrictive,
	}
	allDithers = []dither.Mode{dither.Ordered, dither.Diffusion, dither.None}
)

func gradient(w, h int) *pixel.Buffer {
	b := pixel.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := b.PixOffset(x, y)
			b.Pix[i] = uint8(x * 255 / (w - 1))
			b.Pix[i+1] = uint8(y * 255 / (h - 1))
			b.Pix[i+2] = uint8((x + y*w) % 256)
			b.Pix[i+3] = 255
		}
	}
	return b
}

func TestProcessDeterministic(t *testing.T) {
	src := gradient(24, 16)
	for _, reduction := range allReductions {
		for _, dm := range allDithers {
			t.Run(string(reduction)+"/"+string(dm), func(t *testing.T) {
				cfg := Config{
					MaxColors: 8,
					Scale:     0.5,
					Dither:    dm,
					Reduction: reduction,
				}
				a, err := Process(src, cfg)
				require.NoError(t, err)
				b, err := Process(src, cfg)
				require.NoError(t, err)
				assert.Equal(t, a.Pix, b.Pix)
				assert.Equal(t, a.Width, b.Width)
				assert.Equal(t, a.Height, b.Height)
			})
		}
	}
}

func TestProcessDimensions(t *testing.T) {
	tables := []struct {
		name   string
		w, h   int
		scale  float64
		ew, eh int
	}{
		{"identity", 4, 2, 1, 4, 2},
		{"half", 10, 10, 0.5, 5, 5},
		{"floor of one", 2, 2, 0.25, 1, 1},
		{"clamped high", 4, 2, 25, 16, 8},
		{"clamped low", 8, 8, 0.01, 2, 2},
	}

	cfg := DefaultConfig()
	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			cfg.Scale = table.scale
			out, err := Process(gradient(table.w, table.h), cfg)
			require.NoError(t, err)
			assert.Equal(t, table.ew, out.Width)
			assert.Equal(t, table.eh, out.Height)
			assert.GreaterOrEqual(t, out.Width, 1)
			assert.GreaterOrEqual(t, out.Height, 1)
		})
	}
}

func TestProcessPaletteBound(t *testing.T) {
	src := gradient(32, 32)
	for _, reduction := range allReductions {
		t.Run(string(reduction), func(t *testing.T) {
			out, err := Process(src, Config{
				MaxColors: 8,
				Scale:     1,
				Dither:    dither.Diffusion,
				Reduction: reduction,
			})
			require.NoError(t, err)
			assert.LessOrEqual(t, out.DistinctColors(), 8)
		})
	}
}

func TestProcessManualPaletteContainment(t *testing.T) {
	entries := palette.Palette{
		{R: 10, G: 20, B: 30, A: 255},
		{R: 200, G: 210, B: 220, A: 255},
	}
	out, err := Process(gradient(8, 8), Config{
		Scale:   1,
		Dither:  dither.None,
		Palette: entries,
	})
	require.NoError(t, err)

	for i := 0; i < len(out.Pix); i += 4 {
		e := palette.Entry{R: out.Pix[i], G: out.Pix[i+1], B: out.Pix[i+2], A: out.Pix[i+3]}
		assert.Contains(t, entries, e)
	}
}

func TestProcessValidation(t *testing.T) {
	tables := []struct {
		name string
		cfg  Config
	}{
		{"max colors below two", Config{MaxColors: 1, Scale: 1, Dither: dither.None, Reduction: quantize.Adaptive}},
		{"single entry palette", Config{Scale: 1, Dither: dither.None, Palette: palette.Palette{{A: 255}}}},
		{"unknown dither mode", Config{MaxColors: 8, Scale: 1, Dither: dither.Mode("bayer"), Reduction: quantize.Adaptive}},
		{"unknown reduction mode", Config{MaxColors: 8, Scale: 1, Dither: dither.None, Reduction: quantize.Mode("octree")}},
		{"unknown distance formula", Config{MaxColors: 8, Scale: 1, Dither: dither.None, Reduction: quantize.Adaptive, Distance: palette.Formula("sepia")}},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			out, err := Process(gradient(4, 4), table.cfg)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestProcessEndToEnd(t *testing.T) {
	// 4x2 source holding four distinct saturated colors. With four palette
	// slots, no dithering and no resize the output must keep its
	// dimensions and at most four distinct colors.
	colors := []palette.Entry{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
	}
	src := pixel.New(4, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			i := src.PixOffset(x, y)
			e := colors[x]
			src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = e.R, e.G, e.B, e.A
		}
	}

	out, err := Process(src, Config{
		MaxColors: 4,
		Scale:     1,
		Dither:    dither.None,
		Reduction: quantize.Adaptive,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Width)
	assert.Equal(t, 2, out.Height)
	assert.LessOrEqual(t, out.DistinctColors(), 4)
}

func TestProcessOrderedDiffersFromNone(t *testing.T) {
	// The pre-pass must actually change quantization decisions somewhere.
	src := gradient(16, 16)
	cfg := Config{MaxColors: 4, Scale: 1, Reduction: quantize.Adaptive}

	cfg.Dither = dither.Ordered
	ordered, err := Process(src, cfg)
	require.NoError(t, err)

	cfg.Dither = dither.None
	plain, err := Process(src, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, ordered.Pix, plain.Pix)
}

type failingSurface struct {
	resampleErr error
	encodeErr   error
}

func (s failingSurface) Resample(src *pixel.Buffer, factor float64) (*pixel.Buffer, error) {
	if s.resampleErr != nil {
		return nil, s.resampleErr
	}
	return SoftwareSurface{}.Resample(src, factor)
}

func (s failingSurface) EncodePNG(w io.Writer, src *pixel.Buffer) error {
	return s.encodeErr
}

func TestProcessSurfaceUnavailable(t *testing.T) {
	s := failingSurface{resampleErr: errors.New("context creation failed")}
	_, err := process(gradient(4, 4), DefaultConfig(), s)
	assert.True(t, errors.Is(err, ErrResourceUnavailable), "got %v", err)
}

func TestBatch(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	src := gradient(8, 8)
	f, err := os.Create(filepath.Join(srcDir, "in.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src.NRGBA()))
	require.NoError(t, f.Close())

	// Hidden files are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, ".hidden.png"), []byte("junk"), 0o644))

	d := New(nil, nil)
	require.NoError(t, d.Batch(context.Background(), srcDir, dstDir, DefaultConfig()))

	out, err := os.Open(filepath.Join(dstDir, "in.png"))
	require.NoError(t, err)
	defer out.Close()

	m, err := png.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 8, m.Bounds().Dx())
	assert.Equal(t, 8, m.Bounds().Dy())

	_, err = os.Stat(filepath.Join(dstDir, ".hidden.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatchInvalidConfig(t *testing.T) {
	d := New(nil, nil)
	err := d.Batch(context.Background(), t.TempDir(), t.TempDir(), Config{MaxColors: 1, Scale: 1, Dither: dither.None, Reduction: quantize.Adaptive})
	assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
}
