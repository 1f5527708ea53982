package export

import (
	"time"

	cmj "github.com/lucasjlepore/cmj-analyzer"
)

const (
	// PayloadFormatVersion identifies the analysis.json schema.
	PayloadFormatVersion = "cmj_analysis_v1"
	// ManifestFormatVersion identifies the manifest.json schema.
	ManifestFormatVersion = "cmj_artifacts_v1"
)

// Payload is the presentation view of one analyzed trial.
type Payload struct {
	FormatVersion string  `json:"format_version"`
	AthleteID     string  `json:"athlete_id"`
	TestType      string  `json:"test_type"`
	SampleRate    float64 `json:"sample_rate"`
	SampleCount   int     `json:"sample_count"`
	BodyweightN   float64 `json:"bodyweight_N"`
	MassKg        float64 `json:"mass_kg"`

	Conditioning Conditioning `json:"conditioning"`
	Validity     cmj.Validity `json:"validity"`

	TimeS         []float64 `json:"time_s"`
	ForceN        []float64 `json:"force_N"`
	WorkingForceN []float64 `json:"working_force_N,omitempty"`
	LeftForceN    []float64 `json:"left_force_N,omitempty"`
	RightForceN   []float64 `json:"right_force_N,omitempty"`
	VelocityMS    []float64 `json:"velocity_m_s,omitempty"`

	Phases    []PhaseEntry  `json:"phases"`
	KeyPoints []KeyPoint    `json:"key_points"`
	Events    cmj.Events    `json:"events"`
	Metrics   []MetricEntry `json:"metrics"`
	Analysis  AnalysisBlock `json:"analysis"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// Conditioning records whether the working force was filtered.
type Conditioning struct {
	Filtered    bool    `json:"filtered"`
	CutoffHz    float64 `json:"cutoff_hz,omitempty"`
	FilterOrder int     `json:"filter_order,omitempty"`
}

// PhaseEntry is one displayed phase with indices and times.
type PhaseEntry struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StartIndex  int     `json:"start_index"`
	EndIndex    int     `json:"end_index"`
	StartTimeS  float64 `json:"start_time_s"`
	EndTimeS    float64 `json:"end_time_s"`
	DurationS   float64 `json:"duration_s"`
}

// KeyPoint is a marked sample on the force curve.
type KeyPoint struct {
	Slug   string  `json:"slug"`
	Name   string  `json:"name"`
	Index  int     `json:"index"`
	TimeS  float64 `json:"time_s"`
	ValueN float64 `json:"value_N"`
}

// MetricEntry is a metric with its unit and missing inputs.
type MetricEntry struct {
	Name    string           `json:"name"`
	Unit    string           `json:"unit"`
	Value   cmj.Opt[float64] `json:"value"`
	Missing []string         `json:"missing,omitempty"`
}

// AnalysisEntry pairs a value with a plain-language explanation.
type AnalysisEntry struct {
	Value       any    `json:"value"`
	Explanation string `json:"explanation"`
}

// AnalysisBlock is the keyed view used by viewers and API clients.
type AnalysisBlock struct {
	Phases        map[string]AnalysisEntry `json:"phases"`
	KeyPoints     map[string]AnalysisEntry `json:"key_points"`
	Metrics       map[string]AnalysisEntry `json:"metrics"`
	PhaseOrder    []string                 `json:"phase_order"`
	KeyPointOrder []string                 `json:"key_point_order"`
}

// Manifest captures artifact metadata and pointers to the written files.
type Manifest struct {
	FormatVersion     string        `json:"format_version"`
	GeneratedAt       time.Time     `json:"generated_at"`
	SourceFile        string        `json:"source_file,omitempty"`
	SourceFileName    string        `json:"source_file_name"`
	SourceSHA256      string        `json:"source_sha256"`
	SourceSizeBytes   int64         `json:"source_size_bytes"`
	AthleteID         string        `json:"athlete_id,omitempty"`
	Config            cmj.Config    `json:"config"`
	Files             []string      `json:"files"`
	IsValid           bool          `json:"is_valid"`
	Warnings          []string      `json:"warnings,omitempty"`
	SchemaDescription SchemaDetails `json:"schema_description"`
}

// SchemaDetails documents the artifact shapes for downstream applications.
type SchemaDetails struct {
	Samples string   `json:"samples"`
	Notes   []string `json:"notes"`
}
