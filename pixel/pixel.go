/*
Package pixel implements the dense RGBA pixel buffer that flows through the
dithering pipeline.

A Buffer is row-major with four 8-bit channels per pixel so its Pix slice
always has length Width*Height*4. Buffers implement image.Image which means
they can be handed directly to the standard library drawing primitives and
the x/image scalers without copying.
*/
package pixel

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
)

var errLength = errors.New("pixel: buffer length must equal width*height*4")

// Buffer is a dense row-major RGBA pixel buffer.
type Buffer struct {
	Pix    []uint8
	Width  int
	Height int
}

// New returns a zeroed buffer of the given dimensions.
func New(w, h int) *Buffer {
	return &Buffer{
		Pix:    make([]uint8, w*h*4),
		Width:  w,
		Height: h,
	}
}

// Wrap adopts an existing pixel slice without copying. The slice length must
// match the dimensions exactly.
func Wrap(pix []uint8, w, h int) (*Buffer, error) {
	if w < 1 || h < 1 || len(pix) != w*h*4 {
		return nil, errLength
	}
	return &Buffer{Pix: pix, Width: w, Height: h}, nil
}

// FromImage flattens any image into a fresh Buffer, converting through
// non-premultiplied RGBA.
func FromImage(m image.Image) *Buffer {
	b := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
	return &Buffer{Pix: dst.Pix, Width: dst.Rect.Dx(), Height: dst.Rect.Dy()}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	dup := &Buffer{
		Pix:    make([]uint8, len(b.Pix)),
		Width:  b.Width,
		Height: b.Height,
	}
	copy(dup.Pix, b.Pix)
	return dup
}

// NRGBA wraps the buffer as an *image.NRGBA sharing the same pixels.
func (b *Buffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// PixOffset returns the index of the first channel of the pixel at (x, y).
func (b *Buffer) PixOffset(x, y int) int {
	return (y*b.Width + x) * 4
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color {
	i := b.PixOffset(x, y)
	return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

// DistinctColors counts the unique RGBA values present in the buffer.
func (b *Buffer) DistinctColors() int {
	seen := make(map[uint32]struct{})
	for i := 0; i < len(b.Pix); i += 4 {
		c := uint32(b.Pix[i])<<24 | uint32(b.Pix[i+1])<<16 | uint32(b.Pix[i+2])<<8 | uint32(b.Pix[i+3])
		seen[c] = struct{}{}
	}
	return len(seen)
}
