package cmj

import (
	"math"

	"github.com/lucasjlepore/cmj-analyzer/dsp"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Input names reported in Metric.Missing.
const (
	InputMovementOnset = "movement_onset"
	InputMinForce      = "min_force"
	InputEccentricEnd  = "eccentric_end"
	InputVelocityZero  = "velocity_zero"
	InputTakeOff       = "take_off"
	InputLanding       = "landing"
	InputVelocity      = "velocity"
	InputContactTime   = "time_to_takeoff_s"
	InputSampleRate    = "sample_rate"
	InputLimbSum       = "left_plus_right"
)

// Metric is one named result. An undefined value lists the inputs that were
// unavailable; a metric is never reported as 0 in place of undefined.
type Metric struct {
	Name    string       `json:"name"`
	Unit    string       `json:"unit"`
	Value   Opt[float64] `json:"value"`
	Missing []string     `json:"missing,omitempty"`
}

// Metrics is the ordered metric battery.
type Metrics []Metric

// Lookup finds a metric by name.
func (m Metrics) Lookup(name string) (Metric, bool) {
	for _, metric := range m {
		if metric.Name == name {
			return metric, true
		}
	}
	return Metric{}, false
}

// Value returns a metric's value, absent when the metric is unknown or
// undefined.
func (m Metrics) Value(name string) Opt[float64] {
	metric, ok := m.Lookup(name)
	if !ok {
		return None[float64]()
	}
	return metric.Value
}

// Names returns metric names in output order.
func (m Metrics) Names() []string {
	names := make([]string, len(m))
	for i, metric := range m {
		names[i] = metric.Name
	}
	return names
}

// MetricInputs bundles everything the metric engine reads.
type MetricInputs struct {
	Force      WorkingForce
	Baseline   Baseline
	Events     Events
	Kinematics Opt[Kinematics]
	Config     Config
	LeftForce  []float64
	RightForce []float64
}

// need is a required input and whether it is available.
type need struct {
	name string
	ok   bool
}

type metricBuilder struct {
	out Metrics
}

// add appends a metric. compute runs only when every need is met; it may
// still decline by returning the names of degenerate inputs.
func (b *metricBuilder) add(name, unit string, needs []need, compute func() (float64, []string)) {
	m := Metric{Name: name, Unit: unit}
	for _, n := range needs {
		if !n.ok {
			m.Missing = append(m.Missing, n.name)
		}
	}
	if len(m.Missing) == 0 {
		if v, missing := compute(); len(missing) > 0 {
			m.Missing = missing
		} else {
			m.Value = Some(v)
		}
	}
	b.out = append(b.out, m)
}

func value(v float64) (float64, []string) { return v, nil }

// ComputeMetrics evaluates the full metric battery in output order.
func ComputeMetrics(in MetricInputs) Metrics {
	force := in.Force.Force
	sr := in.Force.SampleRate
	bw := in.Baseline.BodyweightN
	mass := in.Baseline.MassKg

	onset, okOnset := in.Events.MovementOnset.Get()
	to, okTO := in.Events.TakeOff.Get()
	landing, okLanding := in.Events.Landing.Get()
	minForce, okMin := in.Events.MinForce.Get()
	vz, okVZ := in.Events.VelocityZero.Get()
	ecc, okEcc := in.Events.EccentricEnd.Get()
	kin, okKin := in.Kinematics.Get()

	nOnset := need{InputMovementOnset, okOnset}
	nTO := need{InputTakeOff, okTO}
	nLanding := need{InputLanding, okLanding}
	nMin := need{InputMinForce, okMin}
	nVZ := need{InputVelocityZero, okVZ}
	nEcc := need{InputEccentricEnd, okEcc}
	nVel := need{InputVelocity, okKin}

	contact := []need{nOnset, nTO}
	var b metricBuilder

	// Impulse-momentum.
	takeOffVelocity := func() (float64, []string) {
		j, ok := Impulse(force, bw, onset, to, sr).Get()
		if !ok {
			return 0, []string{InputTakeOff}
		}
		return j / mass, nil
	}
	b.add("take_off_velocity_m_s", "m/s", contact, takeOffVelocity)
	b.add("jump_height_impulse_m", "m", contact, func() (float64, []string) {
		v, missing := takeOffVelocity()
		if missing != nil {
			return 0, missing
		}
		return value(v * v / (2 * Gravity))
	})
	b.add("time_to_takeoff_s", "s", contact, func() (float64, []string) {
		return value(float64(to-onset) / sr)
	})
	b.add("rsi_mod", "m/s", contact, func() (float64, []string) {
		tt := float64(to-onset) / sr
		if tt <= 0 {
			return 0, []string{InputContactTime}
		}
		v, missing := takeOffVelocity()
		if missing != nil {
			return 0, missing
		}
		return value(v * v / (2 * Gravity) / tt)
	})

	// Flight time.
	flight := []need{nTO, nLanding}
	b.add("flight_time_s", "s", flight, func() (float64, []string) {
		return value(float64(landing-to) / sr)
	})
	b.add("jump_height_flight_m", "m", flight, func() (float64, []string) {
		t := float64(landing-to) / sr
		return value(Gravity * t * t / 8)
	})

	b.add("peak_power_W", "W", []need{nVel}, func() (float64, []string) {
		power := make([]float64, kin.End-kin.Start+1)
		for i := range power {
			power[i] = force[kin.Start+i] * kin.Velocity[kin.Start+i]
		}
		return value(floats.Max(power))
	})

	// Rate of force development.
	var rfd []float64
	rfdSeries := func() []float64 {
		if rfd == nil {
			rfd = dsp.RFD(force, sr, in.Config.RFDWindowMS, in.Config.RFDPolyOrder)
		}
		return rfd
	}
	peakRFDIndex := func() int {
		return onset + floats.MaxIdx(rfdSeries()[onset:to+1])
	}
	b.add("peak_rfd_N_per_s", "N/s", contact, func() (float64, []string) {
		return value(rfdSeries()[peakRFDIndex()])
	})
	b.add("max_rfd_index", "sample", contact, func() (float64, []string) {
		return value(float64(peakRFDIndex()))
	})
	b.add("max_rfd_time_s", "s", contact, func() (float64, []string) {
		return value(float64(peakRFDIndex()) / sr)
	})
	earlyRFD := func(seconds float64) func() (float64, []string) {
		return func() (float64, []string) {
			window := min(int(sr*seconds), to-onset+1)
			if window <= 0 {
				return 0, []string{InputSampleRate}
			}
			return value(floats.Max(rfdSeries()[onset : onset+window]))
		}
	}
	b.add("rfd_0_100ms_N_per_s", "N/s", contact, earlyRFD(0.1))
	b.add("rfd_0_200ms_N_per_s", "N/s", contact, earlyRFD(0.2))
	b.add("peak_rfd_eccentric_N_per_s", "N/s", []need{nOnset, nVZ}, func() (float64, []string) {
		return value(floats.Max(rfdSeries()[onset : vz+1]))
	})
	b.add("peak_rfd_concentric_N_per_s", "N/s", []need{nVZ, nTO}, func() (float64, []string) {
		return value(floats.Max(rfdSeries()[vz : to+1]))
	})

	// Phase impulses and durations.
	phase := func(name string, from, until need, start, end int) {
		needs := []need{from, until}
		ordered := func(compute func() Opt[float64]) func() (float64, []string) {
			return func() (float64, []string) {
				if end < start {
					return 0, []string{until.name}
				}
				v, ok := compute().Get()
				if !ok {
					return 0, []string{until.name}
				}
				return v, nil
			}
		}
		b.add(name+"_impulse_Ns", "N*s", needs, ordered(func() Opt[float64] {
			return Impulse(force, bw, start, end, sr)
		}))
		b.add(name+"_time_s", "s", needs, ordered(func() Opt[float64] {
			return Some(float64(end-start) / sr)
		}))
	}
	phase("unweighting", nOnset, nMin, onset, minForce)
	phase("braking", nMin, nVZ, minForce, vz)
	phase("propulsion", nVZ, nTO, vz, to)

	b.add("eccentric_time_s", "s", []need{nOnset, nEcc}, func() (float64, []string) {
		return value(float64(ecc-onset) / sr)
	})
	b.add("min_force_N", "N", []need{nMin}, func() (float64, []string) {
		return value(force[minForce])
	})
	b.add("peak_eccentric_velocity_m_s", "m/s", []need{nVel}, func() (float64, []string) {
		return value(math.Max(0, -floats.Min(kin.Velocity[kin.Start:kin.End+1])))
	})

	concentric := []need{nVZ, nTO}
	b.add("peak_concentric_force_N", "N", concentric, func() (float64, []string) {
		return value(floats.Max(force[vz : to+1]))
	})
	b.add("mean_concentric_force_N", "N", concentric, func() (float64, []string) {
		return value(stat.Mean(force[vz:to+1], nil))
	})

	b.add("countermovement_depth_m", "m", []need{nVel}, func() (float64, []string) {
		return value(floats.Min(kin.Displacement[kin.Start : kin.End+1]))
	})
	b.add("com_displacement_at_takeoff_m", "m", []need{nVel}, func() (float64, []string) {
		return value(kin.Displacement[kin.End])
	})

	if len(in.LeftForce) > 0 && len(in.RightForce) > 0 {
		addAsymmetry(&b, in, asymmetryNeeds{onset: nOnset, takeOff: nTO, velocityZero: nVZ, minForce: nMin},
			onset, to, vz, minForce)
	}
	return b.out
}
