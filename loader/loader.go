// Package loader reads force-plate trial exports into cmj.Trial values.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	cmj "github.com/lucasjlepore/cmj-analyzer"
	"gonum.org/v1/gonum/stat"
)

// Format is a supported trial encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Options control how a trial is decoded.
type Options struct {
	// SampleRate overrides the rate stored in or derived from the file (Hz).
	SampleRate float64
	// Format forces a decoder; empty means detect from the file name or content.
	Format Format
}

// ErrNoSampleRate is returned when a file carries neither a sample rate nor
// enough timing information to derive one.
var ErrNoSampleRate = errors.New("sample rate not available")

// LoadFile reads a trial from disk.
func LoadFile(path string, opts Options) (*cmj.Trial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trial file: %w", err)
	}
	trial, err := Parse(filepath.Base(path), data, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return trial, nil
}

// Parse decodes trial bytes. name is only used for format detection.
func Parse(name string, data []byte, opts Options) (*cmj.Trial, error) {
	switch DetectFormat(name, data, opts.Format) {
	case FormatCSV:
		return ParseCSV(data, opts)
	default:
		return ParseJSON(data, opts)
	}
}

// DetectFormat picks a decoder from an explicit format, the file extension or
// the first non-space byte.
func DetectFormat(name string, data []byte, explicit Format) Format {
	if explicit != "" {
		return explicit
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".csv", ".txt":
		return FormatCSV
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatCSV
}

type trialFile struct {
	AthleteID    string    `json:"athlete_id"`
	TestType     string    `json:"test_type"`
	TestDuration *float64  `json:"test_duration"`
	SampleCount  *int      `json:"sample_count"`
	SampleRate   *float64  `json:"sample_rate"`
	Force        []float64 `json:"force"`
	TotalForce   []float64 `json:"total_force"`
	LeftForce    []float64 `json:"left_force"`
	RightForce   []float64 `json:"right_force"`
}

// ParseJSON decodes a JSON trial export. Either force or total_force is
// accepted; sample_count defaults to the force length and must match it.
// sample_rate wins over sample_count/test_duration.
func ParseJSON(data []byte, opts Options) (*cmj.Trial, error) {
	var raw trialFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode trial JSON: %w", err)
	}

	force := raw.Force
	if force == nil {
		force = raw.TotalForce
	}
	if len(force) == 0 {
		return nil, fmt.Errorf("trial JSON: missing force or total_force")
	}

	count := len(force)
	if raw.SampleCount != nil {
		if *raw.SampleCount != len(force) {
			return nil, fmt.Errorf("trial JSON: force length %d != sample_count %d", len(force), *raw.SampleCount)
		}
		count = *raw.SampleCount
	}

	var rate float64
	switch {
	case opts.SampleRate > 0:
		rate = opts.SampleRate
	case raw.SampleRate != nil:
		rate = *raw.SampleRate
	case raw.TestDuration != nil:
		if *raw.TestDuration <= 0 {
			return nil, fmt.Errorf("trial JSON: test_duration must be positive, got %v", *raw.TestDuration)
		}
		rate = float64(count) / *raw.TestDuration
	default:
		return nil, fmt.Errorf("trial JSON: %w (need sample_rate or test_duration)", ErrNoSampleRate)
	}

	return &cmj.Trial{
		AthleteID:  raw.AthleteID,
		TestType:   raw.TestType,
		SampleRate: rate,
		Force:      force,
		LeftForce:  raw.LeftForce,
		RightForce: raw.RightForce,
	}, nil
}

var csvColumns = map[string]string{
	"force":         "force",
	"force_n":       "force",
	"total_force":   "force",
	"total_force_n": "force",
	"left_force":    "left",
	"left_force_n":  "left",
	"right_force":   "right",
	"right_force_n": "right",
	"time_s":        "time",
	"time":          "time",
	"t":             "time",
}

// ParseCSV decodes a CSV trial with a header row. A force column is
// required; left/right and time columns are optional. Without an explicit
// sample rate the rate is derived from the median time step.
func ParseCSV(data []byte, opts Options) (*cmj.Trial, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.Comment = '#'

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("trial CSV: empty input")
		}
		return nil, fmt.Errorf("trial CSV header: %w", err)
	}
	index := map[string]int{}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if col, ok := csvColumns[key]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	if _, ok := index["force"]; !ok {
		return nil, fmt.Errorf("trial CSV: header has no force column (got %s)", strings.Join(header, ","))
	}

	columns := map[string][]float64{}
	line := 1
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("trial CSV line %d: %w", line, err)
		}
		for col, i := range index {
			if i >= len(record) {
				return nil, fmt.Errorf("trial CSV line %d: missing %s column", line, col)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("trial CSV line %d column %s: %w", line, header[i], err)
			}
			columns[col] = append(columns[col], v)
		}
	}
	if len(columns["force"]) == 0 {
		return nil, fmt.Errorf("trial CSV: no samples")
	}

	rate := opts.SampleRate
	if rate <= 0 {
		rate, err = rateFromTimes(columns["time"])
		if err != nil {
			return nil, fmt.Errorf("trial CSV: %w", err)
		}
	}

	return &cmj.Trial{
		SampleRate: rate,
		Force:      columns["force"],
		LeftForce:  columns["left"],
		RightForce: columns["right"],
	}, nil
}

// rateFromTimes returns 1/median(dt) for a time column in seconds.
func rateFromTimes(times []float64) (float64, error) {
	if len(times) < 2 {
		return 0, fmt.Errorf("%w (need a time_s column or an explicit rate)", ErrNoSampleRate)
	}
	steps := make([]float64, len(times)-1)
	for i := 1; i < len(times); i++ {
		steps[i-1] = times[i] - times[i-1]
	}
	sort.Float64s(steps)
	dt := stat.Quantile(0.5, stat.Empirical, steps, nil)
	if dt <= 0 {
		return 0, fmt.Errorf("%w: time column is not increasing", ErrNoSampleRate)
	}
	return 1 / dt, nil
}
