package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	cmj "github.com/lucasjlepore/cmj-analyzer"
	"github.com/lucasjlepore/cmj-analyzer/export"
	"github.com/lucasjlepore/cmj-analyzer/loader"
	"github.com/sirupsen/logrus"
)

var errParquetUnsupported = errors.New("parquet output is not supported in this build")

var sampleColumns = []string{
	"sample_index", "time_s", "force_n", "working_force_n", "left_force_n", "right_force_n",
	"acceleration_m_s2", "velocity_m_s", "displacement_m", "power_w", "phase",
}

// Run executes the full cmj_analyze pipeline and writes all artifacts into
// OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.TrialPath) == "" {
		return nil, fmt.Errorf("trial path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	data, err := os.ReadFile(opts.TrialPath)
	if err != nil {
		return nil, fmt.Errorf("read trial file: %w", err)
	}

	res, err := RunBytes(BytesOptions{
		SourceFileName: filepath.Base(opts.TrialPath),
		SourcePath:     opts.TrialPath,
		Data:           data,
		Config:         opts.Config,
		SampleRate:     opts.SampleRate,
		Format:         opts.Format,
		CopySource:     opts.CopySource,
		Logger:         opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	if err := export.EnsureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}
	if err := export.WriteBundle(opts.OutDir, res.Files); err != nil {
		return nil, err
	}

	out := &Result{
		OutputDir:    opts.OutDir,
		AnalysisPath: filepath.Join(opts.OutDir, AnalysisFile),
		SamplesPath:  filepath.Join(opts.OutDir, res.SamplesFile),
		MetricsPath:  filepath.Join(opts.OutDir, MetricsFile),
		NotesPath:    filepath.Join(opts.OutDir, NotesFile),
		ManifestPath: filepath.Join(opts.OutDir, ManifestFile),
		IsValid:      res.Analysis.Validity.IsValid,
		Warnings:     res.Warnings,
	}
	if name := sourceCopyName(res.Files); name != "" {
		out.SourceCopyPath = filepath.Join(opts.OutDir, name)
	}
	return out, nil
}

// RunBytes runs the pipeline on in-memory trial bytes and returns every
// artifact keyed by file name.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	if len(opts.Data) == 0 {
		return nil, fmt.Errorf("trial data is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	cfg := opts.Config
	if cfg == (cmj.Config{}) {
		cfg = cmj.DefaultConfig()
	}
	name := opts.SourceFileName
	if strings.TrimSpace(name) == "" {
		name = "trial"
	}

	trial, err := loader.Parse(name, opts.Data, loader.Options{SampleRate: opts.SampleRate})
	if err != nil {
		return nil, fmt.Errorf("load trial: %w", err)
	}
	log = log.WithFields(logrus.Fields{
		"source":      name,
		"athlete_id":  trial.AthleteID,
		"sample_rate": trial.SampleRate,
		"samples":     trial.N(),
	})
	log.Debug("trial loaded")

	analysis, err := cmj.Analyze(trial, cfg)
	if err != nil {
		return nil, fmt.Errorf("analyze trial: %w", err)
	}
	log.WithFields(logrus.Fields{
		"take_off": indexField(analysis.Events.TakeOff),
		"landing":  indexField(analysis.Events.Landing),
		"valid":    analysis.Validity.IsValid,
		"flags":    analysis.Validity.Flags,
	}).Info("trial analyzed")

	payload := export.BuildPayload(analysis, trial)
	warnings := append([]string(nil), payload.Warnings...)
	files := make(map[string][]byte, 6)

	files[AnalysisFile], err = export.MarshalJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", AnalysisFile, err)
	}

	rows := BuildSamples(analysis, trial)
	samplesFile := "samples." + format
	switch format {
	case "parquet":
		data, err := marshalSamplesParquet(rows)
		if errors.Is(err, errParquetUnsupported) {
			warnings = append(warnings, "parquet output unavailable in this build; wrote samples.csv instead")
			samplesFile = "samples.csv"
			if files[samplesFile], err = marshalSamplesCSV(rows); err != nil {
				return nil, fmt.Errorf("encode samples csv: %w", err)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("encode samples parquet: %w", err)
		}
		files[samplesFile] = data
	case "csv":
		if files[samplesFile], err = marshalSamplesCSV(rows); err != nil {
			return nil, fmt.Errorf("encode samples csv: %w", err)
		}
	}

	if files[MetricsFile], err = marshalMetricsCSV(analysis.Metrics); err != nil {
		return nil, fmt.Errorf("encode %s: %w", MetricsFile, err)
	}
	files[NotesFile] = []byte(renderNotes(analysis))

	if opts.CopySource {
		files[sourceName(name, opts.Data)] = opts.Data
	}

	manifest := export.Manifest{
		FormatVersion:   export.ManifestFormatVersion,
		GeneratedAt:     time.Now().UTC(),
		SourceFile:      opts.SourcePath,
		SourceFileName:  name,
		SourceSHA256:    export.Checksum(opts.Data),
		SourceSizeBytes: int64(len(opts.Data)),
		AthleteID:       trial.AthleteID,
		Config:          cfg,
		Files:           sortedNames(files),
		IsValid:         analysis.Validity.IsValid,
		Warnings:        warnings,
		SchemaDescription: export.SchemaDetails{
			Samples: samplesFile + ": one row per force sample; columns " + strings.Join(sampleColumns, ", "),
			Notes: []string{
				"analysis.json holds events, phases, key points, metrics and validity with plain-language explanations.",
				"Undefined events and metrics are null; metrics.csv lists the missing inputs for each.",
				"Kinematic columns are empty (CSV) or NaN (parquet) when movement onset or take-off is undefined.",
				"Velocity and displacement are zero outside movement onset to take-off.",
			},
		},
	}
	if files[ManifestFile], err = export.MarshalJSON(manifest); err != nil {
		return nil, fmt.Errorf("encode %s: %w", ManifestFile, err)
	}

	return &BytesResult{
		Files:       files,
		SamplesFile: samplesFile,
		Analysis:    analysis,
		Payload:     payload,
		Warnings:    warnings,
	}, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

// BuildSamples flattens an analysis into one row per force sample.
func BuildSamples(a *cmj.Analysis, trial *cmj.Trial) []SampleRow {
	kin, hasKin := a.Kinematics.Get()
	rows := make([]SampleRow, len(trial.Force))
	for i := range rows {
		row := SampleRow{
			SampleIndex:   i,
			TimeS:         trial.Time(i),
			ForceN:        trial.Force[i],
			WorkingForceN: a.WorkingForce.Force[i],
			Phase:         a.Phases.PhaseAt(i),
		}
		if trial.HasSides() {
			row.LeftForceN = floatPtr(trial.LeftForce[i])
			row.RightForceN = floatPtr(trial.RightForce[i])
		}
		if hasKin {
			row.AccelerationMS2 = floatPtr(kin.Acceleration[i])
			row.VelocityMS = floatPtr(kin.Velocity[i])
			row.DisplacementM = floatPtr(kin.Displacement[i])
			row.PowerW = floatPtr(a.WorkingForce.Force[i] * kin.Velocity[i])
		}
		rows[i] = row
	}
	return rows
}

func marshalSamplesCSV(rows []SampleRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sampleColumns); err != nil {
		return nil, err
	}
	for _, s := range rows {
		row := []string{
			strconv.Itoa(s.SampleIndex),
			formatFloat(s.TimeS),
			formatFloat(s.ForceN),
			formatFloat(s.WorkingForceN),
			formatFloatPtr(s.LeftForceN),
			formatFloatPtr(s.RightForceN),
			formatFloatPtr(s.AccelerationMS2),
			formatFloatPtr(s.VelocityMS),
			formatFloatPtr(s.DisplacementM),
			formatFloatPtr(s.PowerW),
			s.Phase,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalMetricsCSV(metrics cmj.Metrics) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"name", "value", "unit", "missing"}); err != nil {
		return nil, err
	}
	for _, m := range metrics {
		value := ""
		if v, ok := m.Value.Get(); ok {
			value = formatFloat(v)
		}
		if err := w.Write([]string{m.Name, value, m.Unit, strings.Join(m.Missing, ";")}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderNotes(a *cmj.Analysis) string {
	var b strings.Builder
	b.WriteString("# CMJ trial notes\n\n```text\n")
	b.WriteString(a.Notes)
	if !strings.HasSuffix(a.Notes, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("```\n")
	return b.String()
}

// sourceName picks the copy name from the upload extension, falling back to
// the detected format.
func sourceName(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = "." + string(loader.DetectFormat(name, data, ""))
	}
	return "source" + ext
}

func sourceCopyName(files map[string][]byte) string {
	for name := range files {
		if strings.HasPrefix(name, "source.") {
			return name
		}
	}
	return ""
}

func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func indexField(o cmj.Opt[int]) any {
	if v, ok := o.Get(); ok {
		return v
	}
	return "undefined"
}

func floatPtr(v float64) *float64 {
	out := v
	return &out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
