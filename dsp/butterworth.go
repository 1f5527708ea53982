package dsp

import "math"

// DefaultFilterOrder is the Butterworth order used when none is configured.
const DefaultFilterOrder = 4

// section is one normalized IIR stage (a0 == 1) in transposed direct form II.
// First-order stages leave b2 and a2 at zero.
type section struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// designLowPass builds a Butterworth low-pass as cascaded bilinear-transform
// sections, pre-warped at the cutoff.
func designLowPass(order int, cutoffHz, sampleRate float64) []section {
	if order < 1 {
		order = 1
	}
	w0 := 2 * math.Pi * cutoffHz / sampleRate
	cosw := math.Cos(w0)
	sinw := math.Sin(w0)

	sections := make([]section, 0, (order+1)/2)
	for k := 0; k < order/2; k++ {
		q := 1.0 / (2 * math.Sin(math.Pi*float64(2*k+1)/float64(2*order)))
		alpha := sinw / (2 * q)
		a0 := 1 + alpha
		sections = append(sections, section{
			b0: (1 - cosw) / 2 / a0,
			b1: (1 - cosw) / a0,
			b2: (1 - cosw) / 2 / a0,
			a1: -2 * cosw / a0,
			a2: (1 - alpha) / a0,
		})
	}
	if order%2 == 1 {
		k := math.Tan(w0 / 2)
		sections = append(sections, section{
			b0: k / (1 + k),
			b1: k / (1 + k),
			a1: (k - 1) / (k + 1),
		})
	}
	return sections
}

// apply filters x starting from the steady state reached for a constant input
// equal to x[0]. Every section has unity DC gain, so the same state holds for
// each stage of the cascade.
func (s section) apply(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	u := x[0]
	z1 := u * (1 - s.b0)
	z2 := u * (s.b2 - s.a2)
	for i, v := range x {
		y := s.b0*v + z1
		z1 = s.b1*v - s.a1*y + z2
		z2 = s.b2*v - s.a2*y
		out[i] = y
	}
	return out
}

func cascade(sections []section, x []float64) []float64 {
	y := x
	for _, s := range sections {
		y = s.apply(y)
	}
	return y
}

func reversed(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}

// LowPass applies a zero-phase Butterworth low-pass (forward then backward
// pass with odd-reflection padding). A cutoff that is not positive or not
// below Nyquist returns an unchanged copy. The input is never modified.
func LowPass(x []float64, sampleRate, cutoffHz float64, order int) []float64 {
	n := len(x)
	out := make([]float64, n)
	copy(out, x)
	if n == 0 || sampleRate <= 0 || cutoffHz <= 0 || cutoffHz >= sampleRate/2 {
		return out
	}
	if order < 1 {
		order = DefaultFilterOrder
	}
	sections := designLowPass(order, cutoffHz, sampleRate)

	pad := 3 * (order + 1)
	if pad > n-1 {
		pad = n - 1
	}
	ext := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-pad; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}

	y := cascade(sections, ext)
	y = reversed(cascade(sections, reversed(y)))
	copy(out, y[pad:pad+n])
	return out
}
