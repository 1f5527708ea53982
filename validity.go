package cmj

// Validity flags.
const (
	FlagMultipleTakeOff = "multiple_takeoff"
	FlagShortFlight     = "short_flight"
	FlagLongFlight      = "long_flight"
	FlagNoTakeOff       = "no_takeoff"
	FlagNoLanding       = "no_landing"
	FlagNoOnset         = "no_movement_onset"
)

// Validity summarises whether a trial is trustworthy. Flags are advisory;
// metrics are still reported for flagged trials.
type Validity struct {
	IsValid          bool     `json:"is_valid"`
	Flags            []string `json:"flags"`
	TakeOffCrossings int      `json:"take_off_crossings"`
}

// CheckValidity counts sustained take-off crossings over the whole working
// force and checks flight duration against the configured bounds.
func CheckValidity(wf WorkingForce, base Baseline, ev Events, cfg Config) Validity {
	th := ResolveThresholds(cfg, base)
	crossings := len(takeOffScanner(cfg, th).all(wf.Force))

	flags := []string{}
	if crossings > 1 {
		flags = append(flags, FlagMultipleTakeOff)
	}
	to, okTO := ev.TakeOff.Get()
	landing, okLanding := ev.Landing.Get()
	if okTO && okLanding {
		flight := float64(landing-to) / wf.SampleRate
		if flight < cfg.FlightTimeMinS {
			flags = append(flags, FlagShortFlight)
		}
		if flight > cfg.FlightTimeMaxS {
			flags = append(flags, FlagLongFlight)
		}
	}
	if !okTO {
		flags = append(flags, FlagNoTakeOff)
	}
	if okTO && !okLanding {
		flags = append(flags, FlagNoLanding)
	}
	if !ev.MovementOnset.Defined() {
		flags = append(flags, FlagNoOnset)
	}
	return Validity{
		IsValid:          len(flags) == 0,
		Flags:            flags,
		TakeOffCrossings: crossings,
	}
}
