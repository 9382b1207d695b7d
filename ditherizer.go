/*
Package ditherizer reduces raster images to a bounded color palette with
optional ordered or error-diffusion dithering, producing a resized,
low-color-count "save for web" rendition of the source.

The pipeline is resample, optional ordered pre-bias, palette build, palette
remap. Process is a pure function of its inputs and is byte-deterministic:
the same buffer and configuration always produce the same output. The
Ditherizer type adds the interactive conveniences around it: a cached
decoded source shared read-only across renders, a fingerprint memo that
short-circuits byte-identical re-renders, and a generation counter so a
superseded render is discarded instead of racing a newer one.
*/
package ditherizer

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"sync"

	"github.com/leo-petrucci/ditherizer/fingerprint"
	"github.com/leo-petrucci/ditherizer/pixel"
)

var errNoSource = errors.New("ditherizer: no source image set")

// Ditherizer runs the pipeline against a cached source image.
type Ditherizer struct {
	surface Surface
	logger  *log.Logger

	mu      sync.Mutex
	gen     uint64
	src     *pixel.Buffer
	lastSum uint32
	lastOut *pixel.Buffer
}

// New returns a Ditherizer using the given surface and logger. A nil
// surface selects the software implementation; a nil logger discards
// output.
func New(surface Surface, logger *log.Logger) *Ditherizer {
	if surface == nil {
		surface = SoftwareSurface{}
	}
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Ditherizer{
		surface: surface,
		logger:  logger,
	}
}

// SetSource installs the decoded source image. The buffer is copied once
// here and treated as read-only from then on, so repeated parameter changes
// never re-decode or mutate it. Any in-flight render is superseded and the
// memo of the previous output is dropped.
func (d *Ditherizer) SetSource(src *pixel.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.src = src.Clone()
	d.lastSum = 0
	d.lastOut = nil
}

// Render runs the pipeline against the cached source. A render that is
// superseded by a newer Render or SetSource before it completes returns
// ErrSuperseded and its result is discarded; the pipeline itself has no
// suspension points, so cancellation is only ever this coarse. An
// invocation whose inputs fingerprint identically to the previous one
// returns a copy of the memoized output without recomputing.
func (d *Ditherizer) Render(cfg Config) (*pixel.Buffer, error) {
	d.mu.Lock()
	if d.src == nil {
		d.mu.Unlock()
		return nil, errNoSource
	}
	d.gen++
	gen := d.gen
	src := d.src
	sum := renderSum(src, cfg)
	if d.lastOut != nil && sum == d.lastSum {
		out := d.lastOut.Clone()
		d.mu.Unlock()
		return out, nil
	}
	d.mu.Unlock()

	out, err := process(src, cfg, d.surface)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen != gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	d.lastSum = sum
	d.lastOut = out.Clone()
	return out, nil
}

// EncodePNG serializes a rendered buffer through the surface encoder.
func (d *Ditherizer) EncodePNG(w io.Writer, src *pixel.Buffer) error {
	if err := d.surface.EncodePNG(w, src); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodingFailure, err)
	}
	return nil
}

func renderSum(src *pixel.Buffer, cfg Config) uint32 {
	h := fingerprint.New()
	cfg.sum(h)
	fingerprint.WriteInt(h, src.Width)
	fingerprint.WriteInt(h, src.Height)
	h.Write(src.Pix)
	return h.Sum32()
}
