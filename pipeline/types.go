package pipeline

import (
	cmj "github.com/lucasjlepore/cmj-analyzer"
	"github.com/lucasjlepore/cmj-analyzer/export"
	"github.com/sirupsen/logrus"
)

// Artifact file names.
const (
	AnalysisFile = "analysis.json"
	MetricsFile  = "metrics.csv"
	NotesFile    = "trial_notes.md"
	ManifestFile = "manifest.json"
)

// Options configures the cmj_analyze pipeline.
type Options struct {
	TrialPath  string
	OutDir     string
	Config     cmj.Config // zero value means cmj.DefaultConfig()
	SampleRate float64    // overrides the rate stored in the trial file
	Format     string     // parquet|csv
	Overwrite  bool
	CopySource bool
	Logger     logrus.FieldLogger
}

// BytesOptions configures the in-memory pipeline used by the wasm build and
// the HTTP service.
type BytesOptions struct {
	SourceFileName string
	SourcePath     string
	Data           []byte
	Config         cmj.Config
	SampleRate     float64
	Format         string
	CopySource     bool
	Logger         logrus.FieldLogger
}

// Result returns generated output paths.
type Result struct {
	OutputDir      string   `json:"output_dir"`
	AnalysisPath   string   `json:"analysis_path"`
	SamplesPath    string   `json:"samples_path"`
	MetricsPath    string   `json:"metrics_path"`
	NotesPath      string   `json:"notes_path"`
	ManifestPath   string   `json:"manifest_path"`
	SourceCopyPath string   `json:"source_copy_path,omitempty"`
	IsValid        bool     `json:"is_valid"`
	Warnings       []string `json:"warnings,omitempty"`
}

// BytesResult holds every artifact keyed by file name.
type BytesResult struct {
	Files       map[string][]byte
	SamplesFile string
	Analysis    *cmj.Analysis
	Payload     export.Payload
	Warnings    []string
}

// SampleRow is one row of the per-sample export. Optional columns are nil
// when the trial has no limb data or the kinematics are undefined.
type SampleRow struct {
	SampleIndex     int
	TimeS           float64
	ForceN          float64
	WorkingForceN   float64
	LeftForceN      *float64
	RightForceN     *float64
	AccelerationMS2 *float64
	VelocityMS      *float64
	DisplacementM   *float64
	PowerW          *float64
	Phase           string
}
