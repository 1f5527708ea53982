package cmj

import (
	"gonum.org/v1/gonum/stat"
)

// Baseline is the quiet-stance reference computed from raw force.
type Baseline struct {
	BodyweightN   float64 `json:"bodyweight_n"`
	MassKg        float64 `json:"mass_kg"`
	SigmaQuietN   float64 `json:"sigma_quiet_n"`
	WindowSamples int     `json:"window_samples"`
}

// EstimateBaseline averages the first weighingSeconds of raw force. The
// window is clipped to the trial length and never shorter than one sample.
func EstimateBaseline(force []float64, sampleRate, weighingSeconds float64) (Baseline, error) {
	n := len(force)
	if n == 0 {
		return Baseline{}, &InputError{Field: "force", Reason: "force array is empty"}
	}
	if sampleRate <= 0 {
		return Baseline{}, &InputError{Field: "sample_rate", Reason: "must be positive"}
	}
	window := min(int(sampleRate*weighingSeconds), n)
	if window < 1 {
		window = 1
	}
	seg := force[:window]

	bw := stat.Mean(seg, nil)
	sigma := 0.0
	if len(seg) > 1 {
		sigma = stat.StdDev(seg, nil)
	}
	return Baseline{
		BodyweightN:   bw,
		MassKg:        bw / Gravity,
		SigmaQuietN:   sigma,
		WindowSamples: window,
	}, nil
}
