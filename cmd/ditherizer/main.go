package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/leo-petrucci/ditherizer"
	"github.com/leo-petrucci/ditherizer/dither"
	"github.com/leo-petrucci/ditherizer/palette"
	"github.com/leo-petrucci/ditherizer/pixel"
	"github.com/leo-petrucci/ditherizer/quantize"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func configFromFlags(c *cli.Context) (ditherizer.Config, error) {
	cfg := ditherizer.DefaultConfig()
	cfg.MaxColors = c.Int("colors")
	cfg.Scale = c.Float64("scale")
	cfg.Dither = dither.Mode(c.String("dither"))
	cfg.Reduction = quantize.Mode(c.String("mode"))
	cfg.Distance = palette.Formula(c.String("distance"))

	if s := c.String("palette"); s != "" {
		p, err := parsePalette(s)
		if err != nil {
			return cfg, err
		}
		cfg.Palette = p
	}
	return cfg, nil
}

// parsePalette accepts a comma-separated list of #rrggbb or #rrggbbaa hex
// colors.
func parsePalette(s string) (palette.Palette, error) {
	var p palette.Palette
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimPrefix(strings.TrimSpace(tok), "#")
		var e palette.Entry
		switch len(tok) {
		case 6:
			e.A = 0xff
			if _, err := fmt.Sscanf(tok, "%02x%02x%02x", &e.R, &e.G, &e.B); err != nil {
				return nil, fmt.Errorf("invalid palette color %q", tok)
			}
		case 8:
			if _, err := fmt.Sscanf(tok, "%02x%02x%02x%02x", &e.R, &e.G, &e.B, &e.A); err != nil {
				return nil, fmt.Errorf("invalid palette color %q", tok)
			}
		default:
			return nil, fmt.Errorf("invalid palette color %q", tok)
		}
		p = append(p, e)
	}
	return p, nil
}

func decode(path string) (*pixel.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return pixel.FromImage(m), nil
}

func main() {
	app := cli.NewApp()

	app.Name = "ditherizer"
	app.Usage = "palette reduction and dithering for raster images"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:    "colors",
			Aliases: []string{"c"},
			Value:   16,
			Usage:   "maximum palette size (2-256)",
		},
		&cli.Float64Flag{
			Name:    "scale",
			Aliases: []string{"s"},
			Value:   1,
			Usage:   fmt.Sprintf("resize factor, clamped to [%g, %g]", ditherizer.MinScale, ditherizer.MaxScale),
		},
		&cli.StringFlag{
			Name:  "dither",
			Value: string(dither.Diffusion),
			Usage: "dither mode: ordered, diffusion or none",
		},
		&cli.StringFlag{
			Name:  "mode",
			Value: string(quantize.Adaptive),
			Usage: "color reduction mode: perceptual, perceptual-plus, selective, adaptive or restrictive",
		},
		&cli.StringFlag{
			Name:  "distance",
			Usage: "color distance formula override",
		},
		&cli.StringFlag{
			Name:  "palette",
			Usage: "explicit palette as comma-separated hex colors, bypasses reduction",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	newLogger := func(c *cli.Context) *log.Logger {
		logger := log.New(ioutil.Discard, "", 0)
		if c.Bool("verbose") {
			logger.SetOutput(os.Stderr)
		}
		return logger
	}

	app.Commands = []*cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert a single image to a dithered PNG",
			ArgsUsage: "INPUT OUTPUT",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := configFromFlags(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				src, err := decode(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}

				d := ditherizer.New(nil, newLogger(c))
				d.SetSource(src)

				out, err := d.Render(cfg)
				if err != nil {
					return cli.Exit(err, 1)
				}

				w, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer w.Close()

				if err := d.EncodePNG(w, out); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "batch",
			Usage:     "Convert every image under a directory to dithered PNGs",
			ArgsUsage: "SRCDIR DSTDIR",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := configFromFlags(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				d := ditherizer.New(nil, newLogger(c))

				if err := d.Batch(c.Context, c.Args().Get(0), c.Args().Get(1), cfg); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
