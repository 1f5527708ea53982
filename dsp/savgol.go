package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SavGolWindow converts a smoothing window in milliseconds into an odd sample
// count of at least 3.
func SavGolWindow(sampleRate, windowMS float64) int {
	w := int(sampleRate*windowMS/1000.0) | 1
	if w < 3 {
		w = 3
	}
	return w
}

// SavGolCoefficients returns the centered least-squares smoothing weights for
// a polynomial of the given order fitted over window samples.
func SavGolCoefficients(window, order int) ([]float64, error) {
	if window < 1 || window%2 == 0 {
		return nil, fmt.Errorf("savgol window must be odd and positive, got %d", window)
	}
	if order < 0 || order >= window {
		return nil, fmt.Errorf("savgol order %d must be in [0, %d)", order, window)
	}
	half := window / 2
	a := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		for j := 0; j <= order; j++ {
			a.Set(i, j, math.Pow(x, float64(j)))
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("savgol normal equations: %w", err)
	}
	var pinv mat.Dense
	pinv.Mul(&inv, a.T())
	return mat.Row(nil, 0, &pinv), nil
}

// SavGolSmooth applies a Savitzky-Golay smoother with edge replication
// ("nearest" padding). The window is shrunk to fit short inputs and the order
// is clipped below the window; inputs too short to smooth are copied.
func SavGolSmooth(x []float64, window, order int) []float64 {
	n := len(x)
	out := make([]float64, n)
	copy(out, x)
	if window > n {
		window = n
		if window%2 == 0 {
			window--
		}
	}
	if window < 3 {
		return out
	}
	if order >= window {
		order = window - 1
	}
	if order < 0 {
		order = 0
	}
	coeffs, err := SavGolCoefficients(window, order)
	if err != nil {
		return out
	}

	half := window / 2
	for i := 0; i < n; i++ {
		acc := 0.0
		for k, c := range coeffs {
			j := i + k - half
			if j < 0 {
				j = 0
			} else if j >= n {
				j = n - 1
			}
			acc += c * x[j]
		}
		out[i] = acc
	}
	return out
}

// RFD returns the rate of force development: the Savitzky-Golay smoothed
// force differentiated with central differences (N/s).
func RFD(force []float64, sampleRate, windowMS float64, order int) []float64 {
	if sampleRate <= 0 {
		return make([]float64, len(force))
	}
	smoothed := SavGolSmooth(force, SavGolWindow(sampleRate, windowMS), order)
	return Gradient(smoothed, 1.0/sampleRate)
}
