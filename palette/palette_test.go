package palette

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tables := []struct {
		name string
		size int
		err  error
	}{
		{"empty", 0, ErrTooFew},
		{"single", 1, ErrTooFew},
		{"minimum", 2, nil},
		{"maximum", 256, nil},
		{"oversized", 257, ErrTooMany},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			p := make(Palette, table.size)
			assert.Equal(t, table.err, p.Validate())
		})
	}
}

func TestOpaque(t *testing.T) {
	assert.True(t, Palette{{A: 0xff}, {R: 1, A: 0xff}}.Opaque())
	assert.False(t, Palette{{A: 0xff}, {A: 0x7f}}.Opaque())
}

func TestNearest(t *testing.T) {
	p := Palette{
		{R: 0, G: 0, B: 0, A: 0xff},
		{R: 255, G: 255, B: 255, A: 0xff},
	}
	dist, err := EuclideanBT709.Metric()
	require.NoError(t, err)

	assert.Equal(t, 0, p.Nearest(10, 10, 10, dist))
	assert.Equal(t, 1, p.Nearest(240, 240, 240, dist))
}

func TestNearestTieBreak(t *testing.T) {
	// Duplicate entries tie exactly; the lower index must win.
	p := Palette{
		{R: 128, G: 128, B: 128, A: 0xff},
		{R: 128, G: 128, B: 128, A: 0xff},
	}
	dist, err := Euclidean.Metric()
	require.NoError(t, err)

	assert.Equal(t, 0, p.Nearest(128, 128, 128, dist))
	assert.Equal(t, 0, p.Nearest(1, 2, 3, dist))
}

func TestFromColorsRoundTrip(t *testing.T) {
	cp := color.Palette{
		color.NRGBA{R: 1, G: 2, B: 3, A: 255},
		color.NRGBA{R: 250, G: 251, B: 252, A: 255},
	}
	p := FromColors(cp)
	require.Len(t, p, 2)
	assert.Equal(t, Entry{R: 1, G: 2, B: 3, A: 255}, p[0])
	assert.Equal(t, cp, p.ColorPalette())
}
