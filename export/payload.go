// Package export renders an analyzed trial into presentation payloads and
// artifact files for viewers, APIs and downstream tooling.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	cmj "github.com/lucasjlepore/cmj-analyzer"
)

// BuildPayload assembles the presentation payload for an analysis. trial
// supplies the raw force and limb arrays; the analysis supplies everything
// derived from them.
func BuildPayload(a *cmj.Analysis, trial *cmj.Trial) Payload {
	sr := a.WorkingForce.SampleRate
	n := a.SampleCount

	p := Payload{
		FormatVersion: PayloadFormatVersion,
		AthleteID:     a.AthleteID,
		TestType:      a.TestType,
		SampleRate:    sr,
		SampleCount:   n,
		BodyweightN:   a.Baseline.BodyweightN,
		MassKg:        a.Baseline.MassKg,
		Conditioning: Conditioning{
			Filtered:    a.WorkingForce.Filtered,
			CutoffHz:    a.WorkingForce.CutoffHz,
			FilterOrder: a.WorkingForce.FilterOrder,
		},
		Validity: a.Validity,
		TimeS:    make([]float64, n),
		Events:   a.Events,
		Warnings: BuildWarnings(a),
	}
	for i := range p.TimeS {
		p.TimeS[i] = float64(i) / sr
	}
	if trial != nil {
		p.ForceN = trial.Force
		p.LeftForceN = trial.LeftForce
		p.RightForceN = trial.RightForce
	} else {
		p.ForceN = a.WorkingForce.Force
	}
	if a.WorkingForce.Filtered {
		p.WorkingForceN = a.WorkingForce.Force
	}
	if kin, ok := a.Kinematics.Get(); ok {
		p.VelocityMS = kin.Velocity
	}

	p.Phases = buildPhases(a)
	p.KeyPoints = buildKeyPoints(a)
	p.Metrics = make([]MetricEntry, 0, len(a.Metrics))
	for _, m := range a.Metrics {
		p.Metrics = append(p.Metrics, MetricEntry{Name: m.Name, Unit: m.Unit, Value: m.Value, Missing: m.Missing})
	}
	p.Analysis = buildAnalysisBlock(p)
	return p
}

func buildPhases(a *cmj.Analysis) []PhaseEntry {
	intervals := map[string]cmj.Opt[cmj.Interval]{
		"eccentric_unloading": a.Phases.Unweighting,
		"eccentric_braking":   a.Phases.Braking,
		"concentric":          a.Phases.Propulsion,
		"flight":              a.Phases.Flight,
		"landing":             a.Phases.Landing,
	}
	if onset, ok := a.Events.MovementOnset.Get(); ok {
		intervals["quiet"] = cmj.Some(cmj.Interval{Start: 0, End: onset})
	}

	out := make([]PhaseEntry, 0, len(PhaseOrder))
	for _, slug := range PhaseOrder {
		iv, ok := intervals[slug].Get()
		if !ok {
			continue
		}
		sem := phaseSemantics[slug]
		out = append(out, PhaseEntry{
			Slug:        slug,
			Name:        sem.name,
			Description: sem.description,
			StartIndex:  iv.Start,
			EndIndex:    iv.End,
			StartTimeS:  a.Time(iv.Start),
			EndTimeS:    a.Time(iv.End),
			DurationS:   iv.Seconds(a.WorkingForce.SampleRate),
		})
	}
	return out
}

func buildKeyPoints(a *cmj.Analysis) []KeyPoint {
	indices := map[string]cmj.Opt[int]{
		"start_of_movement": a.Events.MovementOnset,
		"minimum_force":     a.Events.MinForce,
		"eccentric_end":     a.Events.EccentricEnd,
		"velocity_zero":     a.Events.VelocityZero,
		"take_off":          a.Events.TakeOff,
		"landing":           a.Events.Landing,
	}
	force := a.WorkingForce.Force

	out := make([]KeyPoint, 0, len(KeyPointOrder))
	for _, slug := range KeyPointOrder {
		idx, ok := indices[slug].Get()
		if !ok || idx < 0 || idx >= len(force) {
			continue
		}
		out = append(out, KeyPoint{
			Slug:   slug,
			Name:   keyPointSemantics[slug].name,
			Index:  idx,
			TimeS:  a.Time(idx),
			ValueN: force[idx],
		})
	}
	return out
}

func buildAnalysisBlock(p Payload) AnalysisBlock {
	block := AnalysisBlock{
		Phases:        make(map[string]AnalysisEntry, len(p.Phases)),
		KeyPoints:     make(map[string]AnalysisEntry, len(p.KeyPoints)),
		Metrics:       make(map[string]AnalysisEntry, len(p.Metrics)),
		PhaseOrder:    PhaseOrder,
		KeyPointOrder: KeyPointOrder,
	}
	for _, ph := range p.Phases {
		block.Phases[ph.Slug] = AnalysisEntry{Value: ph.DurationS, Explanation: phaseSemantics[ph.Slug].explanation}
	}
	for _, kp := range p.KeyPoints {
		block.KeyPoints[kp.Slug] = AnalysisEntry{Value: kp.TimeS, Explanation: keyPointSemantics[kp.Slug].explanation}
	}
	for _, m := range p.Metrics {
		block.Metrics[m.Name] = AnalysisEntry{Value: m.Value, Explanation: MetricExplanation(m.Name)}
	}
	return block
}

var flagWarnings = map[string]string{
	cmj.FlagMultipleTakeOff: "more than one take-off crossing; the trial may contain several jumps",
	cmj.FlagShortFlight:     "flight time below the configured minimum",
	cmj.FlagLongFlight:      "flight time above the configured maximum",
	cmj.FlagNoTakeOff:       "no take-off detected; jump metrics are undefined",
	cmj.FlagNoLanding:       "no landing detected after take-off",
	cmj.FlagNoOnset:         "no countermovement onset detected; kinematics are undefined",
}

// BuildWarnings returns deterministic, human-readable quality notes for an
// analysis.
func BuildWarnings(a *cmj.Analysis) []string {
	if a == nil {
		return nil
	}
	warnings := make([]string, 0, len(a.Validity.Flags)+3)
	for _, flag := range a.Validity.Flags {
		if msg, ok := flagWarnings[flag]; ok {
			warnings = append(warnings, msg)
			continue
		}
		if s := strings.TrimSpace(flag); s != "" {
			warnings = append(warnings, s)
		}
	}
	if a.Thresholds.OnsetFallback {
		warnings = append(warnings, fmt.Sprintf("quiet-stance noise negligible; onset threshold fell back to %.1f N", a.Thresholds.OnsetN))
	}
	if a.Events.VelocityZeroFallback {
		warnings = append(warnings, "velocity never crossed zero upward; velocity zero placed after peak eccentric velocity")
	}
	undefined := 0
	for _, m := range a.Metrics {
		if !m.Value.Defined() {
			undefined++
		}
	}
	if undefined > 0 {
		warnings = append(warnings, fmt.Sprintf("%d of %d metrics undefined", undefined, len(a.Metrics)))
	}
	return dedupeStrings(warnings)
}

// MarshalJSON renders indented JSON with a trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out = append(out, '\n')
	return out, nil
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
