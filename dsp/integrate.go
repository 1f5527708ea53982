// Package dsp holds the numeric building blocks shared by the CMJ engine:
// trapezoidal integration, differentiation, Savitzky-Golay smoothing and a
// zero-phase Butterworth low-pass.
package dsp

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Trapz returns the trapezoidal integral of y sampled every dt seconds.
// Fewer than two samples integrate to zero.
func Trapz(y []float64, dt float64) float64 {
	if len(y) < 2 {
		return 0
	}
	return integrate.Trapezoidal(TimeAxis(len(y), dt), y)
}

// CumTrapz returns the running trapezoidal integral of y, starting at 0.
func CumTrapz(y []float64, dt float64) []float64 {
	out := make([]float64, len(y))
	for i := 1; i < len(y); i++ {
		out[i] = out[i-1] + 0.5*(y[i-1]+y[i])*dt
	}
	return out
}

// TimeAxis returns n evenly spaced sample times 0, dt, 2dt, ...
func TimeAxis(n int, dt float64) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{0}
	}
	return floats.Span(make([]float64, n), 0, dt*float64(n-1))
}

// Gradient mirrors numpy.gradient for uniform spacing: central differences
// inside, one-sided differences at the edges.
func Gradient(y []float64, dt float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 || dt <= 0 {
		return out
	}
	out[0] = (y[1] - y[0]) / dt
	out[n-1] = (y[n-1] - y[n-2]) / dt
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / (2 * dt)
	}
	return out
}
