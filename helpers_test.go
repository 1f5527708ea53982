package cmj

import "math"

const testRate = 1000.0

// quietStance returns n samples alternating +/-0.5 N around bw so the quiet
// standard deviation is non-zero. A perfectly flat stance sends the onset
// threshold to its bodyweight fallback and moves onset about 70 samples
// later; TestDetectOnsetFlatStanceFallsBack covers that case.
func quietStance(n int, bw float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = bw + 0.5
		} else {
			out[i] = bw - 0.5
		}
	}
	return out
}

func ramp(from, to float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + (to-from)*float64(i)/float64(n)
	}
	return out
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// scenarioTrial is a 1000 Hz jump: quiet 700 N for 1 s, a dip to 550 N at
// 1.3 s, a push to 1400 N at 1.6 s, take-off at 1.62 s and landing at 1.9 s.
func scenarioTrial() *Trial {
	landing := make([]float64, 500)
	for i := range landing {
		landing[i] = 700 + 800*math.Exp(-float64(i)/50)
	}
	force := concat(
		quietStance(1000, 700),
		ramp(700, 550, 300),
		ramp(550, 1400, 300),
		ramp(1400, 0, 20),
		constant(0, 280),
		landing,
	)
	return &Trial{AthleteID: "athlete-1", TestType: "CMJ", SampleRate: testRate, Force: force}
}

// impulseTrial has piecewise-constant acceleration so the take-off velocity is
// known: 0.2 s at -5 m/s^2, then 0.35 s of propulsion reaching g*T/2 for a
// 0.5 s flight.
func impulseTrial() *Trial {
	const bw = 700.0
	mass := bw / Gravity
	vTakeOff := Gravity * 0.5 / 2
	propulsion := (vTakeOff + 1.0) / 0.35
	force := concat(
		quietStance(1000, bw),
		constant(bw+mass*-5, 200),
		constant(bw+mass*propulsion, 350),
		constant(0, 500),
		constant(1500, 50),
		constant(bw, 500),
	)
	return &Trial{SampleRate: testRate, Force: force}
}

// noOnsetTrial rises straight from quiet stance to take-off without a dip.
func noOnsetTrial() *Trial {
	force := concat(
		quietStance(1000, 700),
		ramp(700, 1400, 300),
		constant(0, 300),
		constant(1500, 50),
		constant(700, 350),
	)
	return &Trial{SampleRate: testRate, Force: force}
}
