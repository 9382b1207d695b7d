package ditherizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/leo-petrucci/ditherizer/dither"
	"github.com/leo-petrucci/ditherizer/pixel"
	"github.com/leo-petrucci/ditherizer/quantize"
)

// Process runs the full pipeline over src with the software surface and
// returns the final buffer, which carries its own dimensions. The input
// buffer is never mutated; each stage produces a fresh buffer.
func Process(src *pixel.Buffer, cfg Config) (*pixel.Buffer, error) {
	return process(src, cfg, SoftwareSurface{})
}

func process(src *pixel.Buffer, cfg Config, s Surface) (*pixel.Buffer, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	out, err := s.Resample(src, cfg.Scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}

	// The ordered pre-pass perturbs pixels before the palette is derived,
	// so the build sees the same biased buffer the mapper will.
	if cfg.Dither == dither.Ordered {
		out = dither.OrderedBias(out)
	}

	pal := cfg.Palette
	if pal == nil {
		if pal, err = quantize.Build(out, cfg.MaxColors, cfg.Reduction); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
	}

	metric, err := cfg.Distance.Metric()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	return dither.Remap(out, pal, cfg.Dither, metric), nil
}

const batchWorkers = 4

// Image formats the batch walker will pick up. Decoders must be registered
// by the importing binary.
var batchExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

func (d *Ditherizer) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() {
				return nil
			}

			if _, ok := batchExtensions[strings.ToLower(filepath.Ext(file))]; !ok {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (d *Ditherizer) imageWorker(ctx context.Context, srcDir, dstDir string, cfg Config, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := d.convertFile(file, srcDir, dstDir, cfg); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func (d *Ditherizer) convertFile(file, srcDir, dstDir string, cfg Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return err
	}

	out, err := process(pixel.FromImage(m), cfg, d.surface)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(srcDir, file)
	if err != nil {
		return err
	}
	dst := filepath.Join(dstDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".png")

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := d.EncodePNG(w, out); err != nil {
		return err
	}

	d.logger.Printf("Converted \"%s\" to \"%s\" (%dx%d, %d colors)\n", file, dst, out.Width, out.Height, out.DistinctColors())
	return nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Batch walks srcDir, converts every decodable image through the pipeline
// and writes the result under dstDir as PNG, mirroring the directory
// structure. Conversion fans out across a small pool of workers; the
// configuration is validated once up front so a bad one fails before any
// file is touched.
func (d *Ditherizer) Batch(ctx context.Context, srcDir, dstDir string, cfg Config) error {
	if _, err := cfg.normalize(); err != nil {
		return err
	}

	src, err := filepath.Abs(srcDir)
	if err != nil {
		return err
	}
	dst, err := filepath.Abs(dstDir)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := d.findImages(ctx, src)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < batchWorkers; i++ {
		errc, err := d.imageWorker(ctx, src, dst, cfg, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
