package cmj

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Events are the sample indices of the jump landmarks. They are produced once
// by DetectEvents and CompleteEvents and never modified afterwards.
type Events struct {
	MovementOnset Opt[int] `json:"movement_onset"`
	MinForce      Opt[int] `json:"min_force"`
	EccentricEnd  Opt[int] `json:"eccentric_end"`
	VelocityZero  Opt[int] `json:"velocity_zero"`
	TakeOff       Opt[int] `json:"take_off"`
	Landing       Opt[int] `json:"landing"`

	// VelocityZeroFallback is set when no upward zero crossing existed and
	// VelocityZero was placed one sample after EccentricEnd.
	VelocityZeroFallback bool `json:"velocity_zero_fallback"`
}

// Thresholds are the resolved force levels used by the detectors.
type Thresholds struct {
	TakeOffN float64 `json:"take_off_n"`
	LandingN float64 `json:"landing_n"`
	OnsetN   float64 `json:"onset_n"`
	// OnsetFallback is true when quiet-stance noise was negligible and the
	// onset threshold fell back to a bodyweight fraction.
	OnsetFallback bool `json:"onset_fallback"`
}

// ResolveThresholds derives the detector force levels from the baseline.
func ResolveThresholds(cfg Config, base Baseline) Thresholds {
	th := Thresholds{
		TakeOffN: cfg.TakeOffThreshold(base.BodyweightN),
		LandingN: cfg.LandingThreshold(base.BodyweightN),
		OnsetN:   base.BodyweightN - cfg.OnsetSigmaMultiplier*base.SigmaQuietN,
	}
	negligible := base.SigmaQuietN <= 1e-9*math.Max(1, math.Abs(base.BodyweightN))
	if negligible || th.OnsetN <= 0 {
		th.OnsetN = (1 - cfg.OnsetFallbackFraction) * base.BodyweightN
		th.OnsetFallback = true
	}
	return th
}

// crossing is the direction a signal takes through a threshold.
type crossing int

const (
	falling crossing = iota // previous >= threshold, current < threshold
	rising                  // previous < threshold, current >= threshold
)

// scanState is the state of a sustain scanner.
type scanState int

const (
	searching scanState = iota
	verifying
)

// sustainScanner finds threshold crossings that stay past the threshold for a
// fixed number of follow-up samples.
type sustainScanner struct {
	threshold float64
	dir       crossing
	lookahead int // samples after the candidate that must stay past the threshold
}

func (s sustainScanner) past(v float64) bool {
	if s.dir == falling {
		return v < s.threshold
	}
	return v >= s.threshold
}

func (s sustainScanner) isCrossing(x []float64, i int) bool {
	return i > 0 && !s.past(x[i-1]) && s.past(x[i])
}

// next returns the first qualifying crossing in [from, len(x)). A candidate
// without enough samples left to verify fails. After a failed verification
// the search resumes at the sample that broke the run.
func (s sustainScanner) next(x []float64, from int) Opt[int] {
	if from < 1 {
		from = 1
	}
	state := searching
	candidate := 0
	i := from
	for i < len(x) {
		switch state {
		case searching:
			if s.isCrossing(x, i) {
				candidate = i
				state = verifying
			}
			i++
		case verifying:
			if i > candidate+s.lookahead {
				return Some(candidate)
			}
			if !s.past(x[i]) {
				state = searching
				continue
			}
			i++
		}
	}
	if state == verifying && len(x)-1 >= candidate+s.lookahead {
		return Some(candidate)
	}
	return None[int]()
}

// all returns every qualifying crossing, scanning on from the end of each
// accepted run.
func (s sustainScanner) all(x []float64) []int {
	var out []int
	from := 1
	for {
		hit, ok := s.next(x, from).Get()
		if !ok {
			return out
		}
		out = append(out, hit)
		from = hit + s.lookahead + 1
	}
}

func takeOffScanner(cfg Config, th Thresholds) sustainScanner {
	return sustainScanner{threshold: th.TakeOffN, dir: falling, lookahead: cfg.TakeOffSustainSamples}
}

func landingScanner(cfg Config, th Thresholds, sampleRate float64) sustainScanner {
	run := int(math.Round(cfg.LandingSustainMS / 1000 * sampleRate))
	if run < 1 {
		run = 1
	}
	return sustainScanner{threshold: th.LandingN, dir: rising, lookahead: run - 1}
}

// DetectEvents locates take-off, landing, movement onset and minimum force in
// the working force. EccentricEnd and VelocityZero need the velocity series
// and are filled in by CompleteEvents.
func DetectEvents(wf WorkingForce, base Baseline, cfg Config) Events {
	th := ResolveThresholds(cfg, base)
	force := wf.Force
	var ev Events

	ev.TakeOff = takeOffScanner(cfg, th).next(force, 1)

	if to, ok := ev.TakeOff.Get(); ok {
		ev.Landing = landingScanner(cfg, th, wf.SampleRate).next(force, to+1)
	}

	ev.MovementOnset = detectOnset(force, wf.SampleRate, cfg, th, ev.TakeOff)

	onset, okOnset := ev.MovementOnset.Get()
	to, okTO := ev.TakeOff.Get()
	// Provisional: the take-off sample is already below the take-off
	// threshold, so the search stops just before it. CompleteEvents narrows
	// this to the unweighting dip once velocity zero is known.
	if okOnset && okTO && onset < to {
		ev.MinForce = Some(onset + floats.MinIdx(force[onset:to]))
	}
	return ev
}

// detectOnset returns the first sample that begins a run of at least the
// onset sustain duration strictly below the onset threshold. The search skips
// the start of quiet stance and ends before take-off when take-off is known.
func detectOnset(force []float64, sampleRate float64, cfg Config, th Thresholds, takeOff Opt[int]) Opt[int] {
	n := len(force)
	start := int(math.Floor(cfg.OnsetSearchStartS * sampleRate))
	end := n
	if to, ok := takeOff.Get(); ok {
		end = to
	}
	run := int(math.Ceil(cfg.OnsetSustainMS / 1000 * sampleRate))
	if run < 1 {
		run = 1
	}

	i := max(start, 0)
	for i < end {
		if force[i] >= th.OnsetN {
			i++
			continue
		}
		if i+run > n {
			return None[int]()
		}
		broken := -1
		for j := i; j < i+run; j++ {
			if force[j] >= th.OnsetN {
				broken = j
				break
			}
		}
		if broken < 0 {
			return Some(i)
		}
		i = broken + 1
	}
	return None[int]()
}

// CompleteEvents derives EccentricEnd and VelocityZero from the velocity
// series, moves MinForce to the lowest force in [onset, velocity zero] and
// returns the finished event record.
func CompleteEvents(ev Events, wf WorkingForce, kin Opt[Kinematics]) Events {
	k, ok := kin.Get()
	if !ok {
		return ev
	}
	v := k.Velocity
	ecc := k.Start + floats.MinIdx(v[k.Start:k.End+1])
	ev.EccentricEnd = Some(ecc)

	vz := -1
	for i := ecc + 1; i <= k.End; i++ {
		if v[i-1] <= 0 && v[i] > 0 {
			vz = i
			break
		}
	}
	if vz < 0 {
		vz = min(ecc+1, k.End)
		ev.VelocityZeroFallback = true
	}
	ev.VelocityZero = Some(vz)

	if vz > k.Start {
		ev.MinForce = Some(k.Start + floats.MinIdx(wf.Force[k.Start:vz+1]))
	}
	return ev
}
