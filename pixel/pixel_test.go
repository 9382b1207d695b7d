package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tables := []struct {
		name string
		pix  int
		w, h int
		ok   bool
	}{
		{"valid", 4 * 3 * 4, 4, 3, true},
		{"short", 4*3*4 - 4, 4, 3, false},
		{"long", 4*3*4 + 4, 4, 3, false},
		{"zero width", 0, 0, 3, false},
		{"zero height", 0, 4, 0, false},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b, err := Wrap(make([]uint8, table.pix), table.w, table.h)
			if !table.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, table.w, b.Width)
			assert.Equal(t, table.h, b.Height)
		})
	}
}

func TestFromImage(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	m.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	m.SetNRGBA(2, 1, color.NRGBA{G: 128, B: 64, A: 200})

	b := FromImage(m)
	require.Len(t, b.Pix, 3*2*4)
	assert.Equal(t, 3, b.Width)
	assert.Equal(t, 2, b.Height)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, b.At(0, 0))
	assert.Equal(t, color.NRGBA{G: 128, B: 64, A: 200}, b.At(2, 1))
}

func TestFromImageOffsetBounds(t *testing.T) {
	m := image.NewNRGBA(image.Rect(5, 7, 8, 9))
	m.SetNRGBA(5, 7, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	b := FromImage(m)
	assert.Equal(t, 3, b.Width)
	assert.Equal(t, 2, b.Height)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, b.At(0, 0))
}

func TestCloneIndependent(t *testing.T) {
	b := New(2, 2)
	b.Pix[0] = 99

	dup := b.Clone()
	dup.Pix[0] = 1

	assert.EqualValues(t, 99, b.Pix[0])
	assert.EqualValues(t, 1, dup.Pix[0])
}

func TestNRGBASharesPixels(t *testing.T) {
	b := New(2, 2)
	m := b.NRGBA()
	m.SetNRGBA(1, 1, color.NRGBA{R: 42, A: 255})

	i := b.PixOffset(1, 1)
	assert.EqualValues(t, 42, b.Pix[i])
	assert.EqualValues(t, 255, b.Pix[i+3])
}

func TestDistinctColors(t *testing.T) {
	b := New(4, 1)
	for x := 0; x < 4; x++ {
		i := b.PixOffset(x, 0)
		b.Pix[i] = uint8(x % 2 * 255)
		b.Pix[i+3] = 255
	}
	assert.Equal(t, 2, b.DistinctColors())
}
