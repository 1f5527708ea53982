package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	cmj "github.com/lucasjlepore/cmj-analyzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONDerivesRateFromDuration(t *testing.T) {
	data := []byte(`{
		"athlete_id": "a1",
		"test_type": "CMJ",
		"test_duration": 0.004,
		"sample_count": 4,
		"force": [700, 701, 699, 700],
		"left_force": [350, 350, 350, 350],
		"right_force": [350, 351, 349, 350]
	}`)
	trial, err := ParseJSON(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, "a1", trial.AthleteID)
	assert.Equal(t, "CMJ", trial.TestType)
	assert.InDelta(t, 1000, trial.SampleRate, 1e-9)
	assert.Len(t, trial.Force, 4)
	assert.True(t, trial.HasSides())
	require.NoError(t, trial.Validate())
}

func TestParseJSONTotalForceAndExplicitRate(t *testing.T) {
	data := []byte(`{"total_force": [700, 700, 700], "sample_rate": 500, "test_duration": 1}`)
	trial, err := ParseJSON(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 500.0, trial.SampleRate)
	assert.Equal(t, []float64{700, 700, 700}, trial.Force)
	assert.False(t, trial.HasSides())

	trial, err = ParseJSON(data, Options{SampleRate: 2000})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, trial.SampleRate)
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"force": [1, 2`, "decode trial JSON"},
		{"no force", `{"sample_rate": 1000}`, "missing force"},
		{"count mismatch", `{"force": [1, 2, 3], "sample_count": 4, "sample_rate": 1000}`, "sample_count 4"},
		{"no rate", `{"force": [1, 2, 3]}`, "sample rate not available"},
		{"bad duration", `{"force": [1, 2, 3], "test_duration": 0}`, "test_duration must be positive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tc.body), Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseCSVWithTimeColumn(t *testing.T) {
	var b strings.Builder
	b.WriteString("time_s,Force_N,left_force,right_force\n")
	for i := 0; i < 10; i++ {
		b.WriteString(strings.Join([]string{
			formatTime(i),
			"700",
			"350",
			"350",
		}, ","))
		b.WriteByte('\n')
	}
	trial, err := ParseCSV([]byte(b.String()), Options{})
	require.NoError(t, err)
	assert.InDelta(t, 1000, trial.SampleRate, 1e-6)
	assert.Len(t, trial.Force, 10)
	assert.Len(t, trial.LeftForce, 10)
	assert.Len(t, trial.RightForce, 10)
}

func formatTime(i int) string {
	return strconv.FormatFloat(float64(i)*0.001, 'f', 3, 64)
}

func TestParseCSVNeedsRate(t *testing.T) {
	_, err := ParseCSV([]byte("force\n700\n701\n"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSampleRate))

	trial, err := ParseCSV([]byte("force\n700\n701\n"), Options{SampleRate: 1200})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, trial.SampleRate)
	assert.Equal(t, []float64{700, 701}, trial.Force)
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV([]byte(""), Options{SampleRate: 1000})
	require.Error(t, err)

	_, err = ParseCSV([]byte("left_force,right_force\n1,2\n"), Options{SampleRate: 1000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no force column")

	_, err = ParseCSV([]byte("force\n700\nabc\n"), Options{SampleRate: 1000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestLoadFileDetectsFormat(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "trial.json")
	csvPath := filepath.Join(dir, "trial.csv")
	if err := os.WriteFile(jsonPath, []byte(`{"force":[700,700],"sample_rate":1000}`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := os.WriteFile(csvPath, []byte("force\n700\n700\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	trial, err := LoadFile(jsonPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, trial.SampleRate)

	trial, err = LoadFile(csvPath, Options{SampleRate: 500})
	require.NoError(t, err)
	assert.Equal(t, 500.0, trial.SampleRate)

	_, err = LoadFile(filepath.Join(dir, "missing.json"), Options{})
	require.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat("x.JSON", nil, ""))
	assert.Equal(t, FormatCSV, DetectFormat("x.csv", nil, ""))
	assert.Equal(t, FormatJSON, DetectFormat("upload", []byte("  {\"force\":[]}"), ""))
	assert.Equal(t, FormatCSV, DetectFormat("upload", []byte("force\n1\n"), ""))
	assert.Equal(t, FormatCSV, DetectFormat("x.json", nil, FormatCSV))
}

func TestLoadedTrialAnalyzes(t *testing.T) {
	force := make([]string, 0, 2000)
	for i := 0; i < 2000; i++ {
		force = append(force, "700")
	}
	data := []byte(`{"force":[` + strings.Join(force, ",") + `],"test_duration":2.0}`)
	trial, err := ParseJSON(data, Options{})
	require.NoError(t, err)

	a, err := cmj.Analyze(trial, cmj.DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, a.Validity.Flags, cmj.FlagNoTakeOff)
}
