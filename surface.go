package ditherizer

import (
	"image/png"
	"io"

	"github.com/leo-petrucci/ditherizer/pixel"
	"github.com/leo-petrucci/ditherizer/resample"
)

// Surface abstracts the raster facilities the pipeline borrows from its
// host: resampling onto a fresh drawing surface and encoding the final
// buffer into its output container. Substituting an implementation keeps
// the pipeline testable without any windowing system present and lets a
// host route these operations to hardware.
type Surface interface {
	Resample(src *pixel.Buffer, factor float64) (*pixel.Buffer, error)
	EncodePNG(w io.Writer, src *pixel.Buffer) error
}

// SoftwareSurface is the default pure-Go Surface backed by x/image
// resampling and the standard library PNG encoder.
type SoftwareSurface struct{}

// Resample implements Surface.
func (SoftwareSurface) Resample(src *pixel.Buffer, factor float64) (*pixel.Buffer, error) {
	return resample.Scale(src, factor), nil
}

// EncodePNG implements Surface.
func (SoftwareSurface) EncodePNG(w io.Writer, src *pixel.Buffer) error {
	return png.Encode(w, src.NRGBA())
}
