package cmj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrateMatchesImpulseAtTakeOff(t *testing.T) {
	trial := scenarioTrial()
	cfg := DefaultConfig()
	base, err := EstimateBaseline(trial.Force, trial.SampleRate, cfg.WeighingSeconds)
	require.NoError(t, err)
	wf := Condition(trial, cfg)
	ev := DetectEvents(wf, base, cfg)

	kin, ok := Integrate(wf, base, ev).Get()
	require.True(t, ok)

	onset, _ := ev.MovementOnset.Get()
	to, _ := ev.TakeOff.Get()
	assert.Equal(t, onset, kin.Start)
	assert.Equal(t, to, kin.End)
	require.Len(t, kin.Velocity, trial.N())
	require.Len(t, kin.Displacement, trial.N())
	require.Len(t, kin.Acceleration, trial.N())

	impulse, ok := Impulse(wf.Force, base.BodyweightN, onset, to, wf.SampleRate).Get()
	require.True(t, ok)
	want := impulse / base.MassKg
	assert.Equal(t, want, kin.Velocity[to])
	assert.Equal(t, want, kin.ExpectedTakeOffVelocity)

	assert.Equal(t, 0.0, kin.Velocity[onset])
	assert.Equal(t, 0.0, kin.Displacement[onset])
	for i := 0; i < onset; i++ {
		if kin.Velocity[i] != 0 || kin.Displacement[i] != 0 {
			t.Fatalf("sample %d before onset should be zero, got v=%v s=%v", i, kin.Velocity[i], kin.Displacement[i])
		}
	}
	for i := to + 1; i < trial.N(); i++ {
		if kin.Velocity[i] != 0 || kin.Displacement[i] != 0 {
			t.Fatalf("sample %d after take-off should be zero, got v=%v s=%v", i, kin.Velocity[i], kin.Displacement[i])
		}
	}

	// Flight samples are in free fall.
	assert.InDelta(t, -Gravity, kin.Acceleration[to+10], 1e-9)
}

func TestIntegrateRequiresOnsetAndTakeOff(t *testing.T) {
	wf := WorkingForce{Force: constant(700, 100), SampleRate: testRate}
	base := Baseline{BodyweightN: 700, MassKg: 700 / Gravity}

	assert.False(t, Integrate(wf, base, Events{TakeOff: Some(50)}).Defined())
	assert.False(t, Integrate(wf, base, Events{MovementOnset: Some(10)}).Defined())
	assert.False(t, Integrate(wf, base, Events{MovementOnset: Some(60), TakeOff: Some(50)}).Defined())
}

func TestIntegrateSingleSampleContact(t *testing.T) {
	wf := WorkingForce{Force: constant(700, 100), SampleRate: testRate}
	base := Baseline{BodyweightN: 700, MassKg: 700 / Gravity}

	kin, ok := Integrate(wf, base, Events{MovementOnset: Some(40), TakeOff: Some(40)}).Get()
	require.True(t, ok)
	assert.Equal(t, 0.0, kin.Velocity[40])
	assert.Equal(t, 0.0, kin.ExpectedTakeOffVelocity)
}

func TestImpulse(t *testing.T) {
	force := constant(800, 1001)
	j, ok := Impulse(force, 700, 0, 1000, testRate).Get()
	require.True(t, ok)
	assert.InDelta(t, 100, j, 1e-9)

	j, ok = Impulse(force, 700, 10, 10, testRate).Get()
	require.True(t, ok)
	assert.Equal(t, 0.0, j)

	for _, r := range [][2]int{{0, 5000}, {-1, 10}, {20, 10}} {
		if Impulse(force, 700, r[0], r[1], testRate).Defined() {
			t.Fatalf("Impulse over [%d, %d] should be undefined", r[0], r[1])
		}
		if rawImpulse(force, r[0], r[1], testRate).Defined() {
			t.Fatalf("rawImpulse over [%d, %d] should be undefined", r[0], r[1])
		}
	}
}
