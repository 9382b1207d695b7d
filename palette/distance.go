package palette

import (
	"errors"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Formula names a color distance metric.
type Formula string

// The supported distance formulas. EuclideanBT709 is the default used when
// neither the caller nor the reduction mode chooses one.
const (
	Euclidean      Formula = "euclidean"
	EuclideanBT709 Formula = "euclidean-bt709"
	Manhattan      Formula = "manhattan"
	ManhattanBT709 Formula = "manhattan-bt709"
	CIE94          Formula = "cie94"
	CIEDE2000      Formula = "ciede2000"
)

// BT.709 luma coefficients, used to weight the RGB axes perceptually.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

var errUnknownFormula = errors.New("palette: unknown distance formula")

// Func computes the distance between two RGB colors. Values are only
// compared against other values from the same function, so formulas are free
// to omit monotonic transforms such as the final square root.
type Func func(r1, g1, b1, r2, g2, b2 uint8) float64

// Metric returns the distance function for the formula.
func (f Formula) Metric() (Func, error) {
	switch f {
	case Euclidean:
		return euclidean, nil
	case EuclideanBT709:
		return euclideanBT709, nil
	case Manhattan:
		return manhattan, nil
	case ManhattanBT709:
		return manhattanBT709, nil
	case CIE94:
		return cie94, nil
	case CIEDE2000:
		return ciede2000, nil
	}
	return nil, errUnknownFormula
}

// Valid reports whether the formula is one of the supported names.
func (f Formula) Valid() bool {
	_, err := f.Metric()
	return err == nil
}

func euclidean(r1, g1, b1, r2, g2, b2 uint8) float64 {
	dr := float64(r1) - float64(r2)
	dg := float64(g1) - float64(g2)
	db := float64(b1) - float64(b2)
	return dr*dr + dg*dg + db*db
}

func euclideanBT709(r1, g1, b1, r2, g2, b2 uint8) float64 {
	dr := float64(r1) - float64(r2)
	dg := float64(g1) - float64(g2)
	db := float64(b1) - float64(b2)
	return lumaR*dr*dr + lumaG*dg*dg + lumaB*db*db
}

func manhattan(r1, g1, b1, r2, g2, b2 uint8) float64 {
	return abs(float64(r1)-float64(r2)) + abs(float64(g1)-float64(g2)) + abs(float64(b1)-float64(b2))
}

func manhattanBT709(r1, g1, b1, r2, g2, b2 uint8) float64 {
	return lumaR*abs(float64(r1)-float64(r2)) + lumaG*abs(float64(g1)-float64(g2)) + lumaB*abs(float64(b1)-float64(b2))
}

func cie94(r1, g1, b1, r2, g2, b2 uint8) float64 {
	return toColorful(r1, g1, b1).DistanceCIE94(toColorful(r2, g2, b2))
}

func ciede2000(r1, g1, b1, r2, g2, b2 uint8) float64 {
	return toColorful(r1, g1, b1).DistanceCIEDE2000(toColorful(r2, g2, b2))
}

func toColorful(r, g, b uint8) colorful.Color {
	return colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
