// Package cmj analyzes counter-movement-jump force-plate trials: it locates
// jump events, reconstructs centre-of-mass kinematics and computes the metric
// battery with validity flags.
package cmj

import (
	"fmt"

	"github.com/lucasjlepore/cmj-analyzer/dsp"
)

// WorkingForce is the force series every detector and the integrator read.
// It is the raw force unless low-pass conditioning was enabled.
type WorkingForce struct {
	Force       []float64 `json:"force"`
	SampleRate  float64   `json:"sample_rate"`
	Filtered    bool      `json:"filtered"`
	CutoffHz    float64   `json:"cutoff_hz,omitempty"`
	FilterOrder int       `json:"filter_order,omitempty"`
}

// Condition builds the working force for a trial. Filtering is skipped when
// the cutoff is disabled or at or above Nyquist.
func Condition(trial *Trial, cfg Config) WorkingForce {
	wf := WorkingForce{SampleRate: trial.SampleRate}
	if cfg.FilterCutoffHz > 0 && cfg.FilterCutoffHz < trial.SampleRate/2 {
		wf.Force = dsp.LowPass(trial.Force, trial.SampleRate, cfg.FilterCutoffHz, cfg.FilterOrder)
		wf.Filtered = true
		wf.CutoffHz = cfg.FilterCutoffHz
		wf.FilterOrder = cfg.FilterOrder
		return wf
	}
	wf.Force = append([]float64(nil), trial.Force...)
	return wf
}

// Analysis is the full result of one trial.
type Analysis struct {
	AthleteID    string          `json:"athlete_id,omitempty"`
	TestType     string          `json:"test_type,omitempty"`
	SampleCount  int             `json:"sample_count"`
	Config       Config          `json:"config"`
	Baseline     Baseline        `json:"baseline"`
	Thresholds   Thresholds      `json:"thresholds"`
	WorkingForce WorkingForce    `json:"working_force"`
	Events       Events          `json:"events"`
	Kinematics   Opt[Kinematics] `json:"kinematics"`
	Phases       Phases          `json:"phases"`
	Metrics      Metrics         `json:"metrics"`
	Validity     Validity        `json:"validity"`
	Notes        string          `json:"notes"`
}

// Analyze runs the pipeline baseline -> conditioning -> events -> kinematics
// -> phases -> metrics -> validity. Only malformed input is an error; events
// that cannot be found leave their dependents undefined.
func Analyze(trial *Trial, cfg Config) (*Analysis, error) {
	if err := trial.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := EstimateBaseline(trial.Force, trial.SampleRate, cfg.WeighingSeconds)
	if err != nil {
		return nil, err
	}
	if base.BodyweightN <= 0 {
		return nil, &InputError{Field: "force", Reason: fmt.Sprintf("quiet-stance bodyweight must be positive, got %.3f N", base.BodyweightN)}
	}

	wf := Condition(trial, cfg)
	events := DetectEvents(wf, base, cfg)
	kin := Integrate(wf, base, events)
	events = CompleteEvents(events, wf, kin)

	analysis := &Analysis{
		AthleteID:    trial.AthleteID,
		TestType:     trial.TestType,
		SampleCount:  trial.N(),
		Config:       cfg,
		Baseline:     base,
		Thresholds:   ResolveThresholds(cfg, base),
		WorkingForce: wf,
		Events:       events,
		Kinematics:   kin,
		Phases:       ResolvePhases(events, trial.N()),
	}
	analysis.Metrics = ComputeMetrics(MetricInputs{
		Force:      wf,
		Baseline:   base,
		Events:     events,
		Kinematics: kin,
		Config:     cfg,
		LeftForce:  trial.LeftForce,
		RightForce: trial.RightForce,
	})
	analysis.Validity = CheckValidity(wf, base, events, cfg)
	analysis.Notes = BuildTrialNotes(analysis)

	return analysis, nil
}

// Time converts a sample index to seconds at the analysis sample rate.
func (a *Analysis) Time(index int) float64 {
	return float64(index) / a.WorkingForce.SampleRate
}
