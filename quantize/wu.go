package quantize

import (
	"github.com/leo-petrucci/ditherizer/palette"
	"github.com/leo-petrucci/ditherizer/pixel"
)

// Wu's variance-minimizing color quantizer. The color cube is binned into a
// 32x32x32 histogram of statistical moments, cumulated so any axis-aligned
// box can be summed in constant time, then repeatedly split along the axis
// and position that minimizes the resulting variance.

// Histogram cells per axis plus a zero guard plane for the cumulative sums.
const wuSide = 33

const ( // split axis
	axisRed = iota
	axisGreen
	axisBlue
)

// wuBox is an axis-aligned box in histogram space, half-open on the low side.
type wuBox struct {
	r0, r1 int
	g0, g1 int
	b0, b1 int
	vol    int
}

type wuMoments struct {
	wt [wuSide][wuSide][wuSide]int64
	mr [wuSide][wuSide][wuSide]int64
	mg [wuSide][wuSide][wuSide]int64
	mb [wuSide][wuSide][wuSide]int64
	m2 [wuSide][wuSide][wuSide]float64
}

func wuPalette(b *pixel.Buffer, maxColors int) palette.Palette {
	m := new(wuMoments)
	m.histogram(b)
	m.cumulate()

	cube := make([]wuBox, maxColors)
	vv := make([]float64, maxColors)
	cube[0] = wuBox{r1: wuSide - 1, g1: wuSide - 1, b1: wuSide - 1}

	boxes := 1
	next := 0
	for i := 1; i < maxColors; i++ {
		if m.cut(&cube[next], &cube[i]) {
			if cube[next].vol > 1 {
				vv[next] = m.variance(&cube[next])
			} else {
				vv[next] = 0
			}
			if cube[i].vol > 1 {
				vv[i] = m.variance(&cube[i])
			} else {
				vv[i] = 0
			}
		} else {
			// Couldn't split this box; retry with the next best.
			vv[next] = 0
			i--
		}
		boxes = i + 1

		next = 0
		temp := vv[0]
		for j := 1; j <= i; j++ {
			if vv[j] > temp {
				temp = vv[j]
				next = j
			}
		}
		if temp <= 0 {
			break
		}
	}

	p := make(palette.Palette, 0, boxes)
	for i := 0; i < boxes; i++ {
		w := boxSum(&cube[i], &m.wt)
		if w == 0 {
			continue
		}
		p = append(p, palette.Entry{
			R: uint8(boxSum(&cube[i], &m.mr) / w),
			G: uint8(boxSum(&cube[i], &m.mg) / w),
			B: uint8(boxSum(&cube[i], &m.mb) / w),
			A: 0xff,
		})
	}
	return p
}

func (m *wuMoments) histogram(b *pixel.Buffer) {
	for i := 0; i < len(b.Pix); i += 4 {
		r, g, bl := b.Pix[i], b.Pix[i+1], b.Pix[i+2]
		ir, ig, ib := int(r>>3)+1, int(g>>3)+1, int(bl>>3)+1
		m.wt[ir][ig][ib]++
		m.mr[ir][ig][ib] += int64(r)
		m.mg[ir][ig][ib] += int64(g)
		m.mb[ir][ig][ib] += int64(bl)
		m.m2[ir][ig][ib] += float64(int(r)*int(r) + int(g)*int(g) + int(bl)*int(bl))
	}
}

// cumulate converts the histogram into cumulative moments so boxSum can
// evaluate any box by inclusion-exclusion.
func (m *wuMoments) cumulate() {
	var area, areaR, areaG, areaB [wuSide]int64
	var area2 [wuSide]float64

	for r := 1; r < wuSide; r++ {
		for i := range area {
			area[i], areaR[i], areaG[i], areaB[i], area2[i] = 0, 0, 0, 0, 0
		}
		for g := 1; g < wuSide; g++ {
			var line, lineR, lineG, lineB int64
			var line2 float64
			for b := 1; b < wuSide; b++ {
				line += m.wt[r][g][b]
				lineR += m.mr[r][g][b]
				lineG += m.mg[r][g][b]
				lineB += m.mb[r][g][b]
				line2 += m.m2[r][g][b]

				area[b] += line
				areaR[b] += lineR
				areaG[b] += lineG
				areaB[b] += lineB
				area2[b] += line2

				m.wt[r][g][b] = m.wt[r-1][g][b] + area[b]
				m.mr[r][g][b] = m.mr[r-1][g][b] + areaR[b]
				m.mg[r][g][b] = m.mg[r-1][g][b] + areaG[b]
				m.mb[r][g][b] = m.mb[r-1][g][b] + areaB[b]
				m.m2[r][g][b] = m.m2[r-1][g][b] + area2[b]
			}
		}
	}
}

func boxSum(c *wuBox, m *[wuSide][wuSide][wuSide]int64) int64 {
	return m[c.r1][c.g1][c.b1] - m[c.r1][c.g1][c.b0] - m[c.r1][c.g0][c.b1] + m[c.r1][c.g0][c.b0] -
		m[c.r0][c.g1][c.b1] + m[c.r0][c.g1][c.b0] + m[c.r0][c.g0][c.b1] - m[c.r0][c.g0][c.b0]
}

func boxSumFloat(c *wuBox, m *[wuSide][wuSide][wuSide]float64) float64 {
	return m[c.r1][c.g1][c.b1] - m[c.r1][c.g1][c.b0] - m[c.r1][c.g0][c.b1] + m[c.r1][c.g0][c.b0] -
		m[c.r0][c.g1][c.b1] + m[c.r0][c.g1][c.b0] + m[c.r0][c.g0][c.b1] - m[c.r0][c.g0][c.b0]
}

// base is the lower-plane contribution when splitting c along axis.
func base(c *wuBox, axis int, m *[wuSide][wuSide][wuSide]int64) int64 {
	switch axis {
	case axisRed:
		return -m[c.r0][c.g1][c.b1] + m[c.r0][c.g1][c.b0] + m[c.r0][c.g0][c.b1] - m[c.r0][c.g0][c.b0]
	case axisGreen:
		return -m[c.r1][c.g0][c.b1] + m[c.r1][c.g0][c.b0] + m[c.r0][c.g0][c.b1] - m[c.r0][c.g0][c.b0]
	default:
		return -m[c.r1][c.g1][c.b0] + m[c.r1][c.g0][c.b0] + m[c.r0][c.g1][c.b0] - m[c.r0][c.g0][c.b0]
	}
}

// top is the contribution of the plane at pos when splitting c along axis.
func top(c *wuBox, axis, pos int, m *[wuSide][wuSide][wuSide]int64) int64 {
	switch axis {
	case axisRed:
		return m[pos][c.g1][c.b1] - m[pos][c.g1][c.b0] - m[pos][c.g0][c.b1] + m[pos][c.g0][c.b0]
	case axisGreen:
		return m[c.r1][pos][c.b1] - m[c.r1][pos][c.b0] - m[c.r0][pos][c.b1] + m[c.r0][pos][c.b0]
	default:
		return m[c.r1][c.g1][pos] - m[c.r1][c.g0][pos] - m[c.r0][c.g1][pos] + m[c.r0][c.g0][pos]
	}
}

// variance is the weighted squared-error of the box around its mean color.
func (m *wuMoments) variance(c *wuBox) float64 {
	dr := boxSum(c, &m.mr)
	dg := boxSum(c, &m.mg)
	db := boxSum(c, &m.mb)
	xx := boxSumFloat(c, &m.m2)
	return xx - float64(dr*dr+dg*dg+db*db)/float64(boxSum(c, &m.wt))
}

// maximize finds the split position along axis that maximizes the summed
// squared means of the two halves, which minimizes their combined variance.
func (m *wuMoments) maximize(c *wuBox, axis, first, last int, cut *int, wholeR, wholeG, wholeB, wholeW int64) float64 {
	baseR := base(c, axis, &m.mr)
	baseG := base(c, axis, &m.mg)
	baseB := base(c, axis, &m.mb)
	baseW := base(c, axis, &m.wt)

	max := 0.0
	*cut = -1

	for i := first; i < last; i++ {
		halfR := baseR + top(c, axis, i, &m.mr)
		halfG := baseG + top(c, axis, i, &m.mg)
		halfB := baseB + top(c, axis, i, &m.mb)
		halfW := baseW + top(c, axis, i, &m.wt)
		if halfW == 0 {
			continue
		}
		temp := float64(halfR*halfR+halfG*halfG+halfB*halfB) / float64(halfW)

		halfR = wholeR - halfR
		halfG = wholeG - halfG
		halfB = wholeB - halfB
		halfW = wholeW - halfW
		if halfW == 0 {
			continue
		}
		temp += float64(halfR*halfR+halfG*halfG+halfB*halfB) / float64(halfW)

		if temp > max {
			max = temp
			*cut = i
		}
	}
	return max
}

// cut splits set1, placing the upper half in set2. It reports false when
// set1 cannot be split further.
func (m *wuMoments) cut(set1, set2 *wuBox) bool {
	wholeR := boxSum(set1, &m.mr)
	wholeG := boxSum(set1, &m.mg)
	wholeB := boxSum(set1, &m.mb)
	wholeW := boxSum(set1, &m.wt)

	var cutR, cutG, cutB int
	maxR := m.maximize(set1, axisRed, set1.r0+1, set1.r1, &cutR, wholeR, wholeG, wholeB, wholeW)
	maxG := m.maximize(set1, axisGreen, set1.g0+1, set1.g1, &cutG, wholeR, wholeG, wholeB, wholeW)
	maxB := m.maximize(set1, axisBlue, set1.b0+1, set1.b1, &cutB, wholeR, wholeG, wholeB, wholeW)

	var axis int
	switch {
	case maxR >= maxG && maxR >= maxB:
		if cutR < 0 {
			return false
		}
		axis = axisRed
	case maxG >= maxR && maxG >= maxB:
		axis = axisGreen
	default:
		axis = axisBlue
	}

	set2.r1, set2.g1, set2.b1 = set1.r1, set1.g1, set1.b1

	switch axis {
	case axisRed:
		set1.r1 = cutR
		set2.r0 = cutR
		set2.g0, set2.b0 = set1.g0, set1.b0
	case axisGreen:
		set1.g1 = cutG
		set2.g0 = cutG
		set2.r0, set2.b0 = set1.r0, set1.b0
	default:
		set1.b1 = cutB
		set2.b0 = cutB
		set2.r0, set2.g0 = set1.r0, set1.g0
	}

	set1.vol = (set1.r1 - set1.r0) * (set1.g1 - set1.g0) * (set1.b1 - set1.b0)
	set2.vol = (set2.r1 - set2.r0) * (set2.g1 - set2.g0) * (set2.b1 - set2.b0)
	return true
}
