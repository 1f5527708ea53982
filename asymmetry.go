package cmj

import (
	"github.com/lucasjlepore/cmj-analyzer/dsp"
	"gonum.org/v1/gonum/floats"
)

// AsymmetryIndex returns 2(L-R)/(L+R)*100; positive means left dominant. It
// is undefined when L+R <= 0.
func AsymmetryIndex(left, right float64) Opt[float64] {
	sum := left + right
	if sum <= 0 {
		return None[float64]()
	}
	return Some(2 * (left - right) / sum * 100)
}

type asymmetryNeeds struct {
	onset, takeOff, velocityZero, minForce need
}

func indexValue(ai Opt[float64]) (float64, []string) {
	v, ok := ai.Get()
	if !ok {
		return 0, []string{InputLimbSum}
	}
	return v, nil
}

// impulseAsymmetry compares limb impulses over [a, b]. An undefined interval
// is reported against until, the event closing it.
func impulseAsymmetry(left, right []float64, a, b int, sr float64, until need) (float64, []string) {
	l, okL := rawImpulse(left, a, b, sr).Get()
	r, okR := rawImpulse(right, a, b, sr).Get()
	if !okL || !okR {
		return 0, []string{until.name}
	}
	return indexValue(AsymmetryIndex(l, r))
}

// addAsymmetry appends the per-limb metrics. Limb impulses integrate raw limb
// force rather than force net of bodyweight.
func addAsymmetry(b *metricBuilder, in MetricInputs, nd asymmetryNeeds, onset, to, vz, minForce int) {
	left, right := in.LeftForce, in.RightForce
	sr := in.Force.SampleRate

	concentric := []need{nd.velocityZero, nd.takeOff}
	b.add("peak_force_asymmetry_pct", "%", concentric, func() (float64, []string) {
		return indexValue(AsymmetryIndex(floats.Max(left[vz:to+1]), floats.Max(right[vz:to+1])))
	})
	b.add("concentric_impulse_asymmetry_pct", "%", concentric, func() (float64, []string) {
		return impulseAsymmetry(left, right, vz, to, sr, nd.takeOff)
	})
	b.add("eccentric_impulse_asymmetry_pct", "%", []need{nd.onset, nd.minForce}, func() (float64, []string) {
		return impulseAsymmetry(left, right, onset, minForce, sr, nd.minForce)
	})
	b.add("rfd_asymmetry_pct", "%", []need{nd.onset, nd.takeOff}, func() (float64, []string) {
		rfdL := dsp.RFD(left, sr, in.Config.RFDWindowMS, in.Config.RFDPolyOrder)
		rfdR := dsp.RFD(right, sr, in.Config.RFDWindowMS, in.Config.RFDPolyOrder)
		return indexValue(AsymmetryIndex(floats.Max(rfdL[onset:to+1]), floats.Max(rfdR[onset:to+1])))
	})
}
