package cmj

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeScenario(t *testing.T) {
	a, err := Analyze(scenarioTrial(), DefaultConfig())
	require.NoError(t, err)

	assert.InDelta(t, 700, a.Baseline.BodyweightN, 1e-9)
	assert.InDelta(t, 700/Gravity, a.Baseline.MassKg, 1e-9)
	assert.Equal(t, 1000, a.Baseline.WindowSamples)
	assert.False(t, a.WorkingForce.Filtered)

	flight, ok := a.Metrics.Value("flight_time_s").Get()
	require.True(t, ok)
	assert.InDelta(t, 0.28, flight, 1e-9)

	height, ok := a.Metrics.Value("jump_height_flight_m").Get()
	require.True(t, ok)
	assert.InDelta(t, 0.096, height, 0.001)

	if diff := cmp.Diff(Validity{IsValid: true, Flags: []string{}, TakeOffCrossings: 1}, a.Validity); diff != "" {
		t.Fatalf("validity mismatch (-want +got):\n%s", diff)
	}

	onset, _ := a.Events.MovementOnset.Get()
	minForce, _ := a.Events.MinForce.Get()
	vz, _ := a.Events.VelocityZero.Get()
	want := Phases{
		Unweighting: Some(Interval{Start: onset, End: minForce}),
		Braking:     Some(Interval{Start: minForce, End: vz}),
		Propulsion:  Some(Interval{Start: vz, End: 1620}),
		Flight:      Some(Interval{Start: 1620, End: 1900}),
		Landing:     Some(Interval{Start: 1900, End: 2399}),
	}
	if diff := cmp.Diff(want, a.Phases, cmp.AllowUnexported(Opt[Interval]{})); diff != "" {
		t.Fatalf("phases mismatch (-want +got):\n%s", diff)
	}

	assert.Contains(t, a.Notes, "Trial: athlete-1 (CMJ)")
	assert.Contains(t, a.Notes, "Take-off: sample 1620")
}

func TestAnalyzeJumpHeightMethodsAgree(t *testing.T) {
	a, err := Analyze(impulseTrial(), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, Some(1000), a.Events.MovementOnset)
	assert.Equal(t, Some(1550), a.Events.TakeOff)
	assert.Equal(t, Some(2050), a.Events.Landing)

	hImpulse, ok := a.Metrics.Value("jump_height_impulse_m").Get()
	require.True(t, ok)
	hFlight, ok := a.Metrics.Value("jump_height_flight_m").Get()
	require.True(t, ok)

	assert.InDelta(t, Gravity*0.25/8, hFlight, 1e-9)
	if rel := math.Abs(hImpulse-hFlight) / hFlight; rel > 0.05 {
		t.Fatalf("impulse height %.4f and flight height %.4f differ by %.1f%%", hImpulse, hFlight, rel*100)
	}

	vTakeOff, ok := a.Metrics.Value("take_off_velocity_m_s").Get()
	require.True(t, ok)
	assert.InDelta(t, Gravity*0.5/2, vTakeOff, 0.02)

	// Countermovement goes down then up, finishing above the start.
	depth, ok := a.Metrics.Value("countermovement_depth_m").Get()
	require.True(t, ok)
	assert.Less(t, depth, 0.0)
	pev, ok := a.Metrics.Value("peak_eccentric_velocity_m_s").Get()
	require.True(t, ok)
	assert.InDelta(t, 1.0, pev, 0.01)

	assert.True(t, a.Validity.IsValid, "flags: %v", a.Validity.Flags)
}

func TestAnalyzePropagatesMissingOnset(t *testing.T) {
	a, err := Analyze(noOnsetTrial(), DefaultConfig())
	require.NoError(t, err)

	assert.False(t, a.Events.MovementOnset.Defined())
	assert.False(t, a.Events.MinForce.Defined())
	assert.False(t, a.Events.EccentricEnd.Defined())
	assert.False(t, a.Events.VelocityZero.Defined())
	assert.False(t, a.Kinematics.Defined())
	assert.Equal(t, Some(1300), a.Events.TakeOff)
	assert.Equal(t, Some(1600), a.Events.Landing)

	assert.False(t, a.Phases.Unweighting.Defined())
	assert.False(t, a.Phases.Braking.Defined())
	assert.False(t, a.Phases.Propulsion.Defined())
	assert.True(t, a.Phases.Flight.Defined())
	assert.True(t, a.Phases.Landing.Defined())

	m, ok := a.Metrics.Lookup("jump_height_impulse_m")
	require.True(t, ok)
	assert.False(t, m.Value.Defined())
	assert.Equal(t, []string{InputMovementOnset}, m.Missing)

	m, _ = a.Metrics.Lookup("peak_power_W")
	assert.Equal(t, []string{InputVelocity}, m.Missing)

	m, _ = a.Metrics.Lookup("braking_impulse_Ns")
	assert.Equal(t, []string{InputMinForce, InputVelocityZero}, m.Missing)

	for _, metric := range a.Metrics {
		if !metric.Value.Defined() {
			assert.NotEmpty(t, metric.Missing, metric.Name)
		}
	}

	flight, ok := a.Metrics.Value("flight_time_s").Get()
	require.True(t, ok)
	assert.InDelta(t, 0.3, flight, 1e-9)

	assert.Equal(t, []string{FlagNoOnset}, a.Validity.Flags)
	assert.False(t, a.Validity.IsValid)
}

func TestAnalyzeWithFilter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilterCutoffHz = 50
	trial := scenarioTrial()
	raw := append([]float64(nil), trial.Force...)

	a, err := Analyze(trial, cfg)
	require.NoError(t, err)
	assert.True(t, a.WorkingForce.Filtered)
	assert.Equal(t, 50.0, a.WorkingForce.CutoffHz)
	assert.Len(t, a.WorkingForce.Force, len(raw))
	assert.Equal(t, raw, trial.Force, "trial force must not be modified")

	// Baseline always comes from the raw force.
	assert.InDelta(t, 700, a.Baseline.BodyweightN, 1e-9)
	assert.True(t, a.Events.TakeOff.Defined())
	assert.True(t, a.Events.Landing.Defined())
}

func TestAnalyzeInputErrors(t *testing.T) {
	tests := []struct {
		name  string
		trial *Trial
		cfg   func(*Config)
		field string
	}{
		{name: "empty force", trial: &Trial{SampleRate: 1000}, field: "force"},
		{name: "zero rate", trial: &Trial{SampleRate: 0, Force: []float64{700}}, field: "sample_rate"},
		{name: "nan rate", trial: &Trial{SampleRate: math.NaN(), Force: []float64{700}}, field: "sample_rate"},
		{name: "nan force", trial: &Trial{SampleRate: 1000, Force: []float64{700, math.NaN()}}, field: "force"},
		{
			name:  "one limb",
			trial: &Trial{SampleRate: 1000, Force: []float64{700, 700}, LeftForce: []float64{350, 350}},
			field: "left_force/right_force",
		},
		{
			name:  "limb length",
			trial: &Trial{SampleRate: 1000, Force: []float64{700, 700}, LeftForce: []float64{350}, RightForce: []float64{350, 350}},
			field: "left_force",
		},
		{name: "no bodyweight", trial: &Trial{SampleRate: 1000, Force: constant(0, 2000)}, field: "force"},
		{
			name:  "bad config",
			trial: scenarioTrial(),
			cfg:   func(c *Config) { c.FilterOrder = 0 },
			field: "filter_order",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tc.cfg != nil {
				tc.cfg(&cfg)
			}
			_, err := Analyze(tc.trial, cfg)
			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr), "expected InputError, got %v", err)
			assert.Equal(t, tc.field, inputErr.Field)
		})
	}
}

func TestAnalyzeSingleSample(t *testing.T) {
	a, err := Analyze(&Trial{SampleRate: 1000, Force: []float64{700}}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.Baseline.SigmaQuietN)
	assert.Equal(t, 1, a.Baseline.WindowSamples)
	assert.False(t, a.Events.TakeOff.Defined())
	assert.ElementsMatch(t, []string{FlagNoTakeOff, FlagNoOnset}, a.Validity.Flags)
}
