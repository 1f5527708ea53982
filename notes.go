package cmj

import (
	"fmt"
	"math"
	"strings"
)

// BuildTrialNotes turns an analysis into a short human-readable trial report.
func BuildTrialNotes(a *Analysis) string {
	if a == nil {
		return ""
	}

	var b strings.Builder

	athlete := a.AthleteID
	if athlete == "" {
		athlete = "unknown athlete"
	}
	testType := a.TestType
	if testType == "" {
		testType = "CMJ"
	}
	fmt.Fprintf(&b, "Trial: %s (%s)\n", athlete, testType)
	fmt.Fprintf(
		&b,
		"Samples %d at %.0f Hz | Bodyweight %.1f N (%.1f kg) | Quiet sigma %.2f N\n",
		a.SampleCount,
		a.WorkingForce.SampleRate,
		a.Baseline.BodyweightN,
		a.Baseline.MassKg,
		a.Baseline.SigmaQuietN,
	)
	if a.WorkingForce.Filtered {
		fmt.Fprintf(&b, "Force low-pass filtered at %.1f Hz (order %d)\n", a.WorkingForce.CutoffHz, a.WorkingForce.FilterOrder)
	}

	b.WriteString("\nEvents\n")
	events := []struct {
		label string
		index Opt[int]
	}{
		{"Movement onset", a.Events.MovementOnset},
		{"Minimum force", a.Events.MinForce},
		{"Eccentric end", a.Events.EccentricEnd},
		{"Velocity zero", a.Events.VelocityZero},
		{"Take-off", a.Events.TakeOff},
		{"Landing", a.Events.Landing},
	}
	for _, e := range events {
		idx, ok := e.index.Get()
		if !ok {
			fmt.Fprintf(&b, "- %s: not detected\n", e.label)
			continue
		}
		fmt.Fprintf(&b, "- %s: sample %d (%.3f s)\n", e.label, idx, a.Time(idx))
	}
	if a.Events.VelocityZeroFallback {
		b.WriteString("- Velocity zero placed after eccentric end: no upward velocity crossing was found.\n")
	}

	b.WriteString("\nJump\n")
	fmt.Fprintf(
		&b,
		"- Height %s (impulse) / %s (flight) | Take-off velocity %s\n",
		formatMetric(a.Metrics, "jump_height_impulse_m", "%.3f m"),
		formatMetric(a.Metrics, "jump_height_flight_m", "%.3f m"),
		formatMetric(a.Metrics, "take_off_velocity_m_s", "%.2f m/s"),
	)
	fmt.Fprintf(
		&b,
		"- Flight %s | Time to take-off %s | RSImod %s\n",
		formatMetric(a.Metrics, "flight_time_s", "%.3f s"),
		formatMetric(a.Metrics, "time_to_takeoff_s", "%.3f s"),
		formatMetric(a.Metrics, "rsi_mod", "%.2f"),
	)
	fmt.Fprintf(
		&b,
		"- Peak power %s | Peak RFD %s | Depth %s\n",
		formatMetric(a.Metrics, "peak_power_W", "%.0f W"),
		formatMetric(a.Metrics, "peak_rfd_N_per_s", "%.0f N/s"),
		formatMetric(a.Metrics, "countermovement_depth_m", "%.3f m"),
	)

	if _, ok := a.Metrics.Lookup("peak_force_asymmetry_pct"); ok {
		b.WriteString("\nAsymmetry (positive = left dominant)\n")
		fmt.Fprintf(
			&b,
			"- Peak force %s | Concentric impulse %s | Eccentric impulse %s | RFD %s\n",
			formatMetric(a.Metrics, "peak_force_asymmetry_pct", "%+.1f%%"),
			formatMetric(a.Metrics, "concentric_impulse_asymmetry_pct", "%+.1f%%"),
			formatMetric(a.Metrics, "eccentric_impulse_asymmetry_pct", "%+.1f%%"),
			formatMetric(a.Metrics, "rfd_asymmetry_pct", "%+.1f%%"),
		)
	}

	b.WriteString("\nValidity\n")
	if a.Validity.IsValid {
		b.WriteString("- Trial passed all checks.\n")
	} else {
		fmt.Fprintf(&b, "- Flags: %s\n", strings.Join(a.Validity.Flags, ", "))
	}
	b.WriteString("- ")
	b.WriteString(heightAgreement(a))
	b.WriteByte('\n')

	return strings.TrimSpace(b.String())
}

// heightAgreement compares the two jump height estimates.
func heightAgreement(a *Analysis) string {
	hImp, okImp := a.Metrics.Value("jump_height_impulse_m").Get()
	hFlight, okFlight := a.Metrics.Value("jump_height_flight_m").Get()
	if !okImp || !okFlight {
		return "Jump height methods could not be compared."
	}
	if hFlight <= 0 {
		return "Flight-time height is zero; check landing detection."
	}
	diff := (hImp - hFlight) / hFlight * 100
	switch {
	case math.Abs(diff) <= 5:
		return fmt.Sprintf("Impulse and flight-time heights agree within %.1f%%.", math.Abs(diff))
	case diff > 0:
		return fmt.Sprintf("Impulse height exceeds flight-time height by %.1f%%; check bodyweight stability.", diff)
	default:
		return fmt.Sprintf("Flight-time height exceeds impulse height by %.1f%%; tucked landings inflate flight time.", -diff)
	}
}

func formatMetric(m Metrics, name, format string) string {
	v, ok := m.Value(name).Get()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}
