package ditherizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo-petrucci/ditherizer/dither"
	"github.com/leo-petrucci/ditherizer/fingerprint"
	"github.com/leo-petrucci/ditherizer/palette"
	"github.com/leo-petrucci/ditherizer/quantize"
)

func TestDefaultConfigValid(t *testing.T) {
	_, err := DefaultConfig().normalize()
	assert.NoError(t, err)
}

func TestNormalizeClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxColors = 1000
	cfg.Scale = 25

	out, err := cfg.normalize()
	require.NoError(t, err)
	assert.Equal(t, palette.MaxColors, out.MaxColors)
	assert.Equal(t, MaxScale, out.Scale)

	cfg.MaxColors = 16
	cfg.Scale = 0.01
	out, err = cfg.normalize()
	require.NoError(t, err)
	assert.Equal(t, MinScale, out.Scale)
}

func TestNormalizeRejects(t *testing.T) {
	tables := []struct {
		name   string
		mutate func(*Config)
	}{
		{"max colors one", func(c *Config) { c.MaxColors = 1 }},
		{"max colors zero", func(c *Config) { c.MaxColors = 0 }},
		{"short manual palette", func(c *Config) { c.Palette = palette.Palette{{A: 255}} }},
		{"bad dither", func(c *Config) { c.Dither = dither.Mode("bayer") }},
		{"bad reduction", func(c *Config) { c.Reduction = quantize.Mode("octree") }},
		{"bad distance", func(c *Config) { c.Distance = palette.Formula("sepia") }},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			cfg := DefaultConfig()
			table.mutate(&cfg)
			_, err := cfg.normalize()
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestNormalizeDistanceResolution(t *testing.T) {
	cfg := DefaultConfig()

	// No override: perceptually weighted Euclidean.
	out, err := cfg.normalize()
	require.NoError(t, err)
	assert.Equal(t, palette.EuclideanBT709, out.Distance)

	// Caller choice survives for modes without an override.
	cfg.Distance = palette.Manhattan
	out, err = cfg.normalize()
	require.NoError(t, err)
	assert.Equal(t, palette.Manhattan, out.Distance)

	// Perceptual always forces CIEDE2000, even over a caller choice.
	cfg.Reduction = quantize.Perceptual
	out, err = cfg.normalize()
	require.NoError(t, err)
	assert.Equal(t, palette.CIEDE2000, out.Distance)
}

func TestNormalizeManualPaletteSkipsReduction(t *testing.T) {
	cfg := Config{
		Scale:   1,
		Dither:  dither.None,
		Palette: palette.Palette{{A: 255}, {R: 255, G: 255, B: 255, A: 255}},
	}

	// Reduction and MaxColors are unused and unvalidated on this path.
	out, err := cfg.normalize()
	require.NoError(t, err)
	assert.Equal(t, palette.EuclideanBT709, out.Distance)
}

func TestConfigSum(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()

	ha := fingerprint.New()
	a.sum(ha)
	hb := fingerprint.New()
	b.sum(hb)
	assert.Equal(t, ha.Sum32(), hb.Sum32())

	b.MaxColors++
	hb.Reset()
	b.sum(hb)
	assert.NotEqual(t, ha.Sum32(), hb.Sum32())
}
