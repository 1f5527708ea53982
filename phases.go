package cmj

// Interval is an inclusive range of sample indices.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Samples returns the number of samples between the endpoints.
func (iv Interval) Samples() int {
	return iv.End - iv.Start
}

// Seconds converts the interval length to seconds.
func (iv Interval) Seconds(sampleRate float64) float64 {
	return float64(iv.End-iv.Start) / sampleRate
}

// Phases are the contiguous segments of a jump between consecutive events.
type Phases struct {
	Unweighting Opt[Interval] `json:"unweighting"`
	Braking     Opt[Interval] `json:"braking"`
	Propulsion  Opt[Interval] `json:"propulsion"`
	Flight      Opt[Interval] `json:"flight"`
	Landing     Opt[Interval] `json:"landing"`
}

// ResolvePhases derives phase intervals from events. A phase is undefined
// whenever either endpoint is.
func ResolvePhases(ev Events, n int) Phases {
	return Phases{
		Unweighting: between(ev.MovementOnset, ev.MinForce),
		Braking:     between(ev.MinForce, ev.VelocityZero),
		Propulsion:  between(ev.VelocityZero, ev.TakeOff),
		Flight:      between(ev.TakeOff, ev.Landing),
		Landing:     between(ev.Landing, Some(n-1)),
	}
}

func between(a, b Opt[int]) Opt[Interval] {
	start, okA := a.Get()
	end, okB := b.Get()
	if !okA || !okB || end < start {
		return None[Interval]()
	}
	return Some(Interval{Start: start, End: end})
}

// PhaseAt names the phase a sample belongs to. Boundary samples belong to the
// later phase; samples before onset are "quiet" and unlabelled samples after
// it are "unknown".
func (p Phases) PhaseAt(index int) string {
	ordered := []struct {
		name string
		iv   Opt[Interval]
	}{
		{"landing", p.Landing},
		{"flight", p.Flight},
		{"propulsion", p.Propulsion},
		{"braking", p.Braking},
		{"unweighting", p.Unweighting},
	}
	for _, ph := range ordered {
		if iv, ok := ph.iv.Get(); ok && index >= iv.Start && index <= iv.End {
			return ph.name
		}
	}
	if iv, ok := p.Unweighting.Get(); ok && index < iv.Start {
		return "quiet"
	}
	return "unknown"
}
