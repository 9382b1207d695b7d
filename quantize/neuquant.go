package quantize

import (
	"github.com/leo-petrucci/ditherizer/palette"
	"github.com/leo-petrucci/ditherizer/pixel"
)

// NeuQuant neural network color quantizer, integer variant. A one-dimensional
// ring of neurons is trained over a deterministic sub-sample of the image;
// each sampled pixel pulls the winning neuron and its neighborhood toward it
// with decaying strength and radius. Sampling walks the image with a prime
// stride so there is no randomness to seed.

const (
	neuCycles = 100 // learning cycles over the sample

	netBiasShift = 4 // network value precision above 8 bits
	intBiasShift = 16
	intBias      = 1 << intBiasShift
	gammaShift   = 10
	betaShift    = 10
	beta         = intBias >> betaShift
	betaGamma    = intBias << (gammaShift - betaShift)

	radiusBiasShift = 6
	radiusBias      = 1 << radiusBiasShift
	radiusDec       = 30

	alphaBiasShift = 10
	initAlpha      = 1 << alphaBiasShift

	radBiasShift   = 8
	radBias        = 1 << radBiasShift
	alphaRadBShift = alphaBiasShift + radBiasShift
	alphaRadBias   = 1 << alphaRadBShift

	// Prime strides near 500 for pseudo-uniform sampling.
	prime1 = 499
	prime2 = 491
	prime3 = 487
	prime4 = 503

	neuSampleFac = 10
)

type neuQuant struct {
	netsize  int
	network  [][3]int // biased b, g, r per neuron
	bias     []int
	freq     []int
	radpower []int
}

func neuQuantPalette(b *pixel.Buffer, maxColors int) palette.Palette {
	n := newNeuQuant(maxColors)
	n.learn(b)
	n.unbias()
	return n.palette()
}

func newNeuQuant(netsize int) *neuQuant {
	n := &neuQuant{
		netsize:  netsize,
		network:  make([][3]int, netsize),
		bias:     make([]int, netsize),
		freq:     make([]int, netsize),
		radpower: make([]int, netsize>>3+1),
	}
	for i := range n.network {
		v := (i << (netBiasShift + 8)) / netsize
		n.network[i] = [3]int{v, v, v}
		n.freq[i] = intBias / netsize
	}
	return n
}

func (n *neuQuant) learn(b *pixel.Buffer) {
	npix := b.Width * b.Height
	if npix == 0 {
		return
	}

	samplefac := neuSampleFac
	if npix < prime4 {
		samplefac = 1
	}
	alphadec := 30 + (samplefac-1)/3
	samplepixels := npix / samplefac
	delta := samplepixels / neuCycles
	if delta == 0 {
		delta = 1
	}
	alpha := initAlpha
	radius := (n.netsize >> 3) * radiusBias
	rad := radius >> radiusBiasShift
	if rad <= 1 {
		rad = 0
	}
	n.setRadPower(rad, alpha)

	var step int
	switch {
	case npix%prime1 != 0:
		step = prime1
	case npix%prime2 != 0:
		step = prime2
	case npix%prime3 != 0:
		step = prime3
	default:
		step = prime4
	}

	p := 0
	for i := 0; i < samplepixels; i++ {
		o := p * 4
		bl := int(b.Pix[o+2]) << netBiasShift
		g := int(b.Pix[o+1]) << netBiasShift
		r := int(b.Pix[o]) << netBiasShift

		j := n.contest(bl, g, r)
		n.alterSingle(alpha, j, bl, g, r)
		if rad > 0 {
			n.alterNeigh(rad, j, bl, g, r)
		}

		p = (p + step) % npix

		if (i+1)%delta == 0 {
			alpha -= alpha / alphadec
			radius -= radius / radiusDec
			rad = radius >> radiusBiasShift
			if rad <= 1 {
				rad = 0
			}
			n.setRadPower(rad, alpha)
		}
	}
}

func (n *neuQuant) setRadPower(rad, alpha int) {
	for i := 0; i < rad; i++ {
		n.radpower[i] = alpha * ((rad*rad - i*i) * radBias) / (rad * rad)
	}
}

// contest finds the best-matching neuron by biased distance, favoring
// neurons that have won rarely, and updates every neuron's bias and
// frequency.
func (n *neuQuant) contest(bl, g, r int) int {
	bestd := int(^uint(0) >> 1)
	bestbiasd := bestd
	bestpos := -1
	bestbiaspos := -1

	for i := 0; i < n.netsize; i++ {
		nt := &n.network[i]
		dist := nt[0] - bl
		if dist < 0 {
			dist = -dist
		}
		d := nt[1] - g
		if d < 0 {
			d = -d
		}
		dist += d
		d = nt[2] - r
		if d < 0 {
			d = -d
		}
		dist += d

		if dist < bestd {
			bestd = dist
			bestpos = i
		}
		biasdist := dist - (n.bias[i] >> (intBiasShift - netBiasShift))
		if biasdist < bestbiasd {
			bestbiasd = biasdist
			bestbiaspos = i
		}
		betafreq := n.freq[i] >> betaShift
		n.freq[i] -= betafreq
		n.bias[i] += betafreq << gammaShift
	}
	n.freq[bestpos] += beta
	n.bias[bestpos] -= betaGamma
	return bestbiaspos
}

// alterSingle pulls the winning neuron toward the sampled color.
func (n *neuQuant) alterSingle(alpha, j, bl, g, r int) {
	nt := &n.network[j]
	nt[0] -= alpha * (nt[0] - bl) / initAlpha
	nt[1] -= alpha * (nt[1] - g) / initAlpha
	nt[2] -= alpha * (nt[2] - r) / initAlpha
}

// alterNeigh pulls neurons within rad of j toward the sampled color with
// strength falling off by the square of the distance.
func (n *neuQuant) alterNeigh(rad, j, bl, g, r int) {
	lo := j - rad
	if lo < -1 {
		lo = -1
	}
	hi := j + rad
	if hi > n.netsize {
		hi = n.netsize
	}

	jj := j + 1
	k := j - 1
	m := 1
	for jj < hi || k > lo {
		a := n.radpower[m]
		m++
		if jj < hi {
			nt := &n.network[jj]
			nt[0] -= a * (nt[0] - bl) / alphaRadBias
			nt[1] -= a * (nt[1] - g) / alphaRadBias
			nt[2] -= a * (nt[2] - r) / alphaRadBias
			jj++
		}
		if k > lo {
			nt := &n.network[k]
			nt[0] -= a * (nt[0] - bl) / alphaRadBias
			nt[1] -= a * (nt[1] - g) / alphaRadBias
			nt[2] -= a * (nt[2] - r) / alphaRadBias
			k--
		}
	}
}

func (n *neuQuant) unbias() {
	for i := range n.network {
		for k := 0; k < 3; k++ {
			v := n.network[i][k] >> netBiasShift
			if v > 255 {
				v = 255
			}
			if v < 0 {
				v = 0
			}
			n.network[i][k] = v
		}
	}
}

func (n *neuQuant) palette() palette.Palette {
	p := make(palette.Palette, n.netsize)
	for i, nt := range n.network {
		p[i] = palette.Entry{R: uint8(nt[2]), G: uint8(nt[1]), B: uint8(nt[0]), A: 0xff}
	}
	return p
}
