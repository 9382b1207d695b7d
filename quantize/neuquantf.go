package quantize

import (
	"github.com/leo-petrucci/ditherizer/palette"
	"github.com/leo-petrucci/ditherizer/pixel"
)

// Floating-point NeuQuant variant. Same network topology and deterministic
// prime-stride sampling as the integer variant, but neuron positions,
// frequencies and biases are kept as float64 so no precision is shed to bit
// shifts during training. Slower, slightly more faithful placement.

const (
	neuFloatBeta  = 1.0 / 1024
	neuFloatGamma = 1024.0
)

type neuQuantFloat struct {
	netsize  int
	network  [][3]float64 // b, g, r per neuron
	bias     []float64
	freq     []float64
	radpower []float64
}

func neuQuantFloatPalette(b *pixel.Buffer, maxColors int) palette.Palette {
	n := newNeuQuantFloat(maxColors)
	n.learn(b)
	return n.palette()
}

func newNeuQuantFloat(netsize int) *neuQuantFloat {
	n := &neuQuantFloat{
		netsize:  netsize,
		network:  make([][3]float64, netsize),
		bias:     make([]float64, netsize),
		freq:     make([]float64, netsize),
		radpower: make([]float64, netsize>>3+1),
	}
	for i := range n.network {
		v := float64(i) * 256 / float64(netsize)
		n.network[i] = [3]float64{v, v, v}
		n.freq[i] = 1 / float64(netsize)
	}
	return n
}

func (n *neuQuantFloat) learn(b *pixel.Buffer) {
	npix := b.Width * b.Height
	if npix == 0 {
		return
	}

	samplefac := neuSampleFac
	if npix < prime4 {
		samplefac = 1
	}
	alphadec := float64(30 + (samplefac-1)/3)
	samplepixels := npix / samplefac
	delta := samplepixels / neuCycles
	if delta == 0 {
		delta = 1
	}
	alpha := 1.0
	radius := float64(n.netsize >> 3)
	rad := int(radius)
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
		bl := float64(b.Pix[o+2])
		g := float64(b.Pix[o+1])
		r := float64(b.Pix[o])

		j := n.contest(bl, g, r)
		n.alterSingle(alpha, j, bl, g, r)
		if rad > 0 {
			n.alterNeigh(rad, j, bl, g, r)
		}

		p = (p + step) % npix

		if (i+1)%delta == 0 {
			alpha -= alpha / alphadec
			radius -= radius / radiusDec
			rad = int(radius)
			if rad <= 1 {
				rad = 0
			}
			n.setRadPower(rad, alpha)
		}
	}
}

func (n *neuQuantFloat) setRadPower(rad int, alpha float64) {
	for i := 0; i < rad; i++ {
		n.radpower[i] = alpha * float64(rad*rad-i*i) / float64(rad*rad)
	}
}

func (n *neuQuantFloat) contest(bl, g, r float64) int {
	bestd := float64(1 << 30)
	bestbiasd := bestd
	bestpos := -1
	bestbiaspos := -1

	for i := 0; i < n.netsize; i++ {
		nt := &n.network[i]
		dist := absFloat(nt[0]-bl) + absFloat(nt[1]-g) + absFloat(nt[2]-r)
		if dist < bestd {
			bestd = dist
			bestpos = i
		}
		biasdist := dist - n.bias[i]
		if biasdist < bestbiasd {
			bestbiasd = biasdist
			bestbiaspos = i
		}
		n.freq[i] -= neuFloatBeta * n.freq[i]
		n.bias[i] += neuFloatBeta * neuFloatGamma * n.freq[i]
	}
	n.freq[bestpos] += neuFloatBeta
	n.bias[bestpos] -= neuFloatBeta * neuFloatGamma
	return bestbiaspos
}

func (n *neuQuantFloat) alterSingle(alpha float64, j int, bl, g, r float64) {
	nt := &n.network[j]
	nt[0] -= alpha * (nt[0] - bl)
	nt[1] -= alpha * (nt[1] - g)
	nt[2] -= alpha * (nt[2] - r)
}

func (n *neuQuantFloat) alterNeigh(rad, j int, bl, g, r float64) {
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
			nt[0] -= a * (nt[0] - bl)
			nt[1] -= a * (nt[1] - g)
			nt[2] -= a * (nt[2] - r)
			jj++
		}
		if k > lo {
			nt := &n.network[k]
			nt[0] -= a * (nt[0] - bl)
			nt[1] -= a * (nt[1] - g)
			nt[2] -= a * (nt[2] - r)
			k--
		}
	}
}

func (n *neuQuantFloat) palette() palette.Palette {
	p := make(palette.Palette, n.netsize)
	for i, nt := range n.network {
		p[i] = palette.Entry{
			R: clampFloat(nt[2]),
			G: clampFloat(nt[1]),
			B: clampFloat(nt[0]),
			A: 0xff,
		}
	}
	return p
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clampFloat(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
