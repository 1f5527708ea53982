package cmj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeOffScannerResumesAfterFailedCandidate(t *testing.T) {
	s := sustainScanner{threshold: 35, dir: falling, lookahead: 4}
	x := []float64{100, 100, 10, 100, 10, 10, 10, 10, 10, 10}

	got, ok := s.next(x, 1).Get()
	require.True(t, ok)
	assert.Equal(t, 4, got)
}

func TestTakeOffScannerNeedsFullLookahead(t *testing.T) {
	s := sustainScanner{threshold: 35, dir: falling, lookahead: 4}
	x := []float64{100, 100, 10, 10, 10}

	assert.False(t, s.next(x, 1).Defined())

	x = append(x, 10, 10)
	got, ok := s.next(x, 1).Get()
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestLandingScannerRejectsShortSpike(t *testing.T) {
	cfg := DefaultConfig()
	th := Thresholds{LandingN: 200}
	s := landingScanner(cfg, th, testRate)
	assert.Equal(t, 19, s.lookahead)

	x := concat(constant(0, 10), constant(300, 5), constant(0, 5), constant(300, 30))
	got, ok := s.next(x, 1).Get()
	require.True(t, ok)
	assert.Equal(t, 20, got)
}

func TestScannerAllCountsEverySustainedCrossing(t *testing.T) {
	s := sustainScanner{threshold: 35, dir: falling, lookahead: 4}
	x := concat(constant(700, 10), constant(0, 10), constant(700, 10), constant(0, 10), constant(700, 3), constant(0, 2), constant(700, 5))

	assert.Equal(t, []int{10, 30}, s.all(x))
}

func TestResolveThresholds(t *testing.T) {
	cfg := DefaultConfig()

	th := ResolveThresholds(cfg, Baseline{BodyweightN: 700, SigmaQuietN: 2})
	assert.InDelta(t, 35, th.TakeOffN, 1e-12)
	assert.InDelta(t, 200, th.LandingN, 1e-12)
	assert.InDelta(t, 690, th.OnsetN, 1e-12)
	assert.False(t, th.OnsetFallback)

	// Light athlete: the fixed floors win over the bodyweight fraction.
	th = ResolveThresholds(cfg, Baseline{BodyweightN: 300, SigmaQuietN: 1})
	assert.InDelta(t, 20, th.TakeOffN, 1e-12)

	// Noise-free quiet stance falls back to a bodyweight fraction.
	th = ResolveThresholds(cfg, Baseline{BodyweightN: 700})
	assert.True(t, th.OnsetFallback)
	assert.InDelta(t, 665, th.OnsetN, 1e-9)

	// A huge sigma would put the threshold below zero.
	th = ResolveThresholds(cfg, Baseline{BodyweightN: 700, SigmaQuietN: 200})
	assert.True(t, th.OnsetFallback)

	cfg.TakeOffThresholdN = 50
	cfg.LandingThresholdN = 400
	th = ResolveThresholds(cfg, Baseline{BodyweightN: 700, SigmaQuietN: 2})
	assert.Equal(t, 50.0, th.TakeOffN)
	assert.Equal(t, 400.0, th.LandingN)
}

func TestDetectEventsScenario(t *testing.T) {
	trial := scenarioTrial()
	cfg := DefaultConfig()
	base, err := EstimateBaseline(trial.Force, trial.SampleRate, cfg.WeighingSeconds)
	require.NoError(t, err)

	wf := Condition(trial, cfg)
	ev := DetectEvents(wf, base, cfg)

	onset, ok := ev.MovementOnset.Get()
	require.True(t, ok, "movement onset")
	assert.GreaterOrEqual(t, onset, 1000)
	assert.LessOrEqual(t, onset, 1010)

	to, ok := ev.TakeOff.Get()
	require.True(t, ok, "take-off")
	assert.Equal(t, 1620, to)

	landing, ok := ev.Landing.Get()
	require.True(t, ok, "landing")
	assert.Equal(t, 1900, landing)

	assert.False(t, ev.EccentricEnd.Defined())
	assert.False(t, ev.VelocityZero.Defined())

	kin := Integrate(wf, base, ev)
	ev = CompleteEvents(ev, wf, kin)

	minForce, ok := ev.MinForce.Get()
	require.True(t, ok, "min force")
	assert.Equal(t, 1300, minForce)
	assert.InDelta(t, 550, trial.Force[minForce], 1e-9)

	ecc, ok := ev.EccentricEnd.Get()
	require.True(t, ok, "eccentric end")
	vz, ok := ev.VelocityZero.Get()
	require.True(t, ok, "velocity zero")
	assert.False(t, ev.VelocityZeroFallback)

	// Indices are ordered as the jump unfolds.
	assert.LessOrEqual(t, onset, minForce)
	assert.LessOrEqual(t, minForce, ecc)
	assert.Less(t, ecc, vz)
	assert.LessOrEqual(t, vz, to)
	assert.Greater(t, landing, to)

	// Velocity bottoms out where force climbs back through bodyweight.
	assert.InDelta(t, 1353, ecc, 5)
}

func TestDetectOnsetFlatStanceFallsBack(t *testing.T) {
	// Same jump as scenarioTrial but with a noiseless stance: sigma is zero,
	// so the onset threshold falls back to 0.95 BW = 665 N and onset lands
	// where the 0.5 N/sample dip first drops below it.
	force := scenarioTrial().Force
	copy(force, constant(700, 1000))
	trial := &Trial{SampleRate: testRate, Force: force}
	cfg := DefaultConfig()
	base, err := EstimateBaseline(force, testRate, cfg.WeighingSeconds)
	require.NoError(t, err)
	assert.Equal(t, 0.0, base.SigmaQuietN)

	th := ResolveThresholds(cfg, base)
	assert.True(t, th.OnsetFallback)
	assert.InDelta(t, 665, th.OnsetN, 1e-9)

	ev := DetectEvents(Condition(trial, cfg), base, cfg)
	onset, ok := ev.MovementOnset.Get()
	require.True(t, ok, "movement onset")
	assert.Equal(t, 1071, onset)

	a, err := Analyze(trial, cfg)
	require.NoError(t, err)
	assert.True(t, a.Thresholds.OnsetFallback)
	assert.Equal(t, Some(1071), a.Events.MovementOnset)
}

func TestDetectOnsetRunMayExtendIntoFlight(t *testing.T) {
	// The drop from stance to take-off takes 19 samples, shorter than the
	// 30 ms onset run; the run is completed by the flight samples.
	force := concat(
		quietStance(1000, 700),
		ramp(700, 0, 20),
		constant(0, 300),
		constant(1500, 50),
		constant(700, 300),
	)
	trial := &Trial{SampleRate: testRate, Force: force}
	cfg := DefaultConfig()
	base, err := EstimateBaseline(force, testRate, cfg.WeighingSeconds)
	require.NoError(t, err)

	ev := DetectEvents(Condition(trial, cfg), base, cfg)
	assert.Equal(t, Some(1020), ev.TakeOff)
	assert.Equal(t, Some(1001), ev.MovementOnset)
}

func TestDetectEventsWithoutTakeOff(t *testing.T) {
	force := concat(quietStance(1000, 700), ramp(700, 500, 200), constant(500, 300))
	trial := &Trial{SampleRate: testRate, Force: force}
	cfg := DefaultConfig()
	base, err := EstimateBaseline(force, testRate, cfg.WeighingSeconds)
	require.NoError(t, err)

	ev := DetectEvents(Condition(trial, cfg), base, cfg)
	assert.False(t, ev.TakeOff.Defined())
	assert.False(t, ev.Landing.Defined())
	assert.False(t, ev.MinForce.Defined())
	// Without take-off the onset search runs to the end of the trial.
	assert.True(t, ev.MovementOnset.Defined())
}

func TestCompleteEventsFallback(t *testing.T) {
	vel := []float64{0, -0.1, -0.2, -0.3, -0.4}
	kin := Some(Kinematics{Start: 0, End: 4, Velocity: vel})
	wf := WorkingForce{Force: []float64{700, 650, 600, 550, 500}, SampleRate: testRate}

	ev := CompleteEvents(Events{MovementOnset: Some(0), TakeOff: Some(4)}, wf, kin)
	assert.Equal(t, Some(4), ev.EccentricEnd)
	assert.Equal(t, Some(4), ev.VelocityZero)
	assert.True(t, ev.VelocityZeroFallback)

	vel = []float64{0, -0.3, -0.2, -0.1, -0.05}
	kin = Some(Kinematics{Start: 0, End: 4, Velocity: vel})
	ev = CompleteEvents(Events{MovementOnset: Some(0), TakeOff: Some(4)}, wf, kin)
	assert.Equal(t, Some(1), ev.EccentricEnd)
	assert.Equal(t, Some(2), ev.VelocityZero)
	assert.True(t, ev.VelocityZeroFallback)
	assert.Equal(t, Some(2), ev.MinForce)
}
