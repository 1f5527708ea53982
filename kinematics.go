package cmj

import "github.com/lucasjlepore/cmj-analyzer/dsp"

// Kinematics is the reconstructed centre-of-mass motion. Acceleration covers
// the whole trial; Velocity and Displacement are zero outside [Start, End].
type Kinematics struct {
	Start int `json:"start"`
	End   int `json:"end"`

	Acceleration []float64 `json:"acceleration_m_s2"`
	Velocity     []float64 `json:"velocity_m_s"`
	Displacement []float64 `json:"displacement_m"`

	// ExpectedTakeOffVelocity is J/m over [Start, End]; Velocity[End] equals it.
	ExpectedTakeOffVelocity float64 `json:"expected_take_off_velocity_m_s"`
}

// Integrate reconstructs velocity and displacement between movement onset and
// take-off. The raw cumulative integral of acceleration is corrected by a
// linear ramp so that velocity at take-off matches the impulse-momentum value.
func Integrate(wf WorkingForce, base Baseline, ev Events) Opt[Kinematics] {
	onset, okOnset := ev.MovementOnset.Get()
	to, okTO := ev.TakeOff.Get()
	if !okOnset || !okTO || onset > to || base.MassKg <= 0 {
		return None[Kinematics]()
	}

	n := len(wf.Force)
	dt := 1 / wf.SampleRate
	acc := make([]float64, n)
	for i, f := range wf.Force {
		acc[i] = (f - base.BodyweightN) / base.MassKg
	}

	impulse, ok := Impulse(wf.Force, base.BodyweightN, onset, to, wf.SampleRate).Get()
	if !ok {
		return None[Kinematics]()
	}
	vExpected := impulse / base.MassKg
	vRaw := dsp.CumTrapz(acc[onset:to+1], dt)
	drift := vExpected - vRaw[len(vRaw)-1]
	span := float64(to - onset)

	contactVelocity := make([]float64, len(vRaw))
	for i, v := range vRaw {
		ramp := 0.0
		if span > 0 {
			ramp = float64(i) / span
		}
		contactVelocity[i] = v + ramp*drift
	}
	contactVelocity[len(contactVelocity)-1] = vExpected
	contactDisplacement := dsp.CumTrapz(contactVelocity, dt)

	vel := make([]float64, n)
	disp := make([]float64, n)
	copy(vel[onset:], contactVelocity)
	copy(disp[onset:], contactDisplacement)

	return Some(Kinematics{
		Start:                   onset,
		End:                     to,
		Acceleration:            acc,
		Velocity:                vel,
		Displacement:            disp,
		ExpectedTakeOffVelocity: vExpected,
	})
}

// Impulse integrates net force (force minus bodyweight) over the inclusive
// sample range [a, b] in N*s. A single-sample range has zero impulse; a
// reversed or out-of-range interval is undefined.
func Impulse(force []float64, bodyweightN float64, a, b int, sampleRate float64) Opt[float64] {
	if !validRange(force, a, b) {
		return None[float64]()
	}
	net := make([]float64, b-a+1)
	for i := range net {
		net[i] = force[a+i] - bodyweightN
	}
	return Some(dsp.Trapz(net, 1/sampleRate))
}

// rawImpulse integrates force itself over [a, b]; per-limb impulses are not
// net of bodyweight.
func rawImpulse(force []float64, a, b int, sampleRate float64) Opt[float64] {
	if !validRange(force, a, b) {
		return None[float64]()
	}
	return Some(dsp.Trapz(force[a:b+1], 1/sampleRate))
}

func validRange(x []float64, a, b int) bool {
	return a >= 0 && b < len(x) && a <= b
}
