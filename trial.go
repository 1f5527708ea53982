package cmj

import (
	"fmt"
	"math"
)

// Gravity is the gravitational acceleration used for mass and jump height (m/s^2).
const Gravity = 9.81

// Trial is one counter-movement-jump force-plate recording. The core reads it
// and never modifies it.
type Trial struct {
	AthleteID  string    `json:"athlete_id,omitempty"`
	TestType   string    `json:"test_type,omitempty"`
	SampleRate float64   `json:"sample_rate"`
	Force      []float64 `json:"force"`
	LeftForce  []float64 `json:"left_force,omitempty"`
	RightForce []float64 `json:"right_force,omitempty"`
}

// InputError reports a trial or configuration that cannot be analyzed at all.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// N returns the sample count.
func (t *Trial) N() int {
	return len(t.Force)
}

// HasSides reports whether per-limb force is available.
func (t *Trial) HasSides() bool {
	return len(t.LeftForce) > 0 && len(t.RightForce) > 0
}

// Time converts a sample index into seconds from the start of the trial.
func (t *Trial) Time(index int) float64 {
	return float64(index) / t.SampleRate
}

// Validate checks the input contract: non-empty finite force, a positive
// sample rate and per-limb arrays matching the total force length.
func (t *Trial) Validate() error {
	if t == nil || len(t.Force) == 0 {
		return &InputError{Field: "force", Reason: "force array is empty"}
	}
	if !isFinite(t.SampleRate) || t.SampleRate <= 0 {
		return &InputError{Field: "sample_rate", Reason: fmt.Sprintf("must be positive, got %v", t.SampleRate)}
	}
	for i, v := range t.Force {
		if !isFinite(v) {
			return &InputError{Field: "force", Reason: fmt.Sprintf("non-finite value at sample %d", i)}
		}
	}
	if (len(t.LeftForce) > 0) != (len(t.RightForce) > 0) {
		return &InputError{Field: "left_force/right_force", Reason: "both limbs are required when either is given"}
	}
	if len(t.LeftForce) > 0 && len(t.LeftForce) != len(t.Force) {
		return &InputError{Field: "left_force", Reason: fmt.Sprintf("length %d != force length %d", len(t.LeftForce), len(t.Force))}
	}
	if len(t.RightForce) > 0 && len(t.RightForce) != len(t.Force) {
		return &InputError{Field: "right_force", Reason: fmt.Sprintf("length %d != force length %d", len(t.RightForce), len(t.Force))}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
