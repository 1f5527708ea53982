package cmj

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds every detection and metric threshold. Zero thresholds marked
// "auto" are derived from bodyweight at analysis time.
type Config struct {
	WeighingSeconds float64 `toml:"weighing_seconds" json:"weighing_seconds"`

	TakeOffThresholdN     float64 `toml:"take_off_threshold_n" json:"take_off_threshold_n"` // 0 = auto
	TakeOffFloorN         float64 `toml:"take_off_floor_n" json:"take_off_floor_n"`
	TakeOffBWFraction     float64 `toml:"take_off_bw_fraction" json:"take_off_bw_fraction"`
	TakeOffSustainSamples int     `toml:"take_off_sustain_samples" json:"take_off_sustain_samples"`

	LandingThresholdN float64 `toml:"landing_threshold_n" json:"landing_threshold_n"` // 0 = auto
	LandingFloorN     float64 `toml:"landing_floor_n" json:"landing_floor_n"`
	LandingBWFraction float64 `toml:"landing_bw_fraction" json:"landing_bw_fraction"`
	LandingSustainMS  float64 `toml:"landing_sustain_ms" json:"landing_sustain_ms"`

	OnsetSigmaMultiplier  float64 `toml:"onset_sigma_multiplier" json:"onset_sigma_multiplier"`
	OnsetFallbackFraction float64 `toml:"onset_fallback_fraction" json:"onset_fallback_fraction"`
	OnsetSustainMS        float64 `toml:"onset_sustain_ms" json:"onset_sustain_ms"`
	OnsetSearchStartS     float64 `toml:"onset_search_start_s" json:"onset_search_start_s"`

	FilterCutoffHz float64 `toml:"filter_cutoff_hz" json:"filter_cutoff_hz"` // 0 = disabled
	FilterOrder    int     `toml:"filter_order" json:"filter_order"`

	FlightTimeMinS float64 `toml:"flight_time_min_s" json:"flight_time_min_s"`
	FlightTimeMaxS float64 `toml:"flight_time_max_s" json:"flight_time_max_s"`

	RFDWindowMS  float64 `toml:"rfd_window_ms" json:"rfd_window_ms"`
	RFDPolyOrder int     `toml:"rfd_poly_order" json:"rfd_poly_order"`
}

// DefaultConfig returns the research defaults.
func DefaultConfig() Config {
	return Config{
		WeighingSeconds:       1.0,
		TakeOffFloorN:         20,
		TakeOffBWFraction:     0.05,
		TakeOffSustainSamples: 4,
		LandingFloorN:         200,
		LandingBWFraction:     0.05,
		LandingSustainMS:      20,
		OnsetSigmaMultiplier:  5,
		OnsetFallbackFraction: 0.05,
		OnsetSustainMS:        30,
		OnsetSearchStartS:     0.5,
		FilterOrder:           4,
		FlightTimeMinS:        0.1,
		FlightTimeMaxS:        2.0,
		RFDWindowMS:           20,
		RFDPolyOrder:          3,
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Keys missing from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("decode config %s: unknown keys %v", path, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects thresholds that would make detection meaningless.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"weighing_seconds", c.WeighingSeconds},
		{"landing_sustain_ms", c.LandingSustainMS},
		{"onset_sustain_ms", c.OnsetSustainMS},
		{"rfd_window_ms", c.RFDWindowMS},
		{"flight_time_max_s", c.FlightTimeMaxS},
	}
	for _, p := range positive {
		if !isFinite(p.value) || p.value <= 0 {
			return &InputError{Field: p.name, Reason: fmt.Sprintf("must be positive, got %v", p.value)}
		}
	}
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"take_off_threshold_n", c.TakeOffThresholdN},
		{"take_off_floor_n", c.TakeOffFloorN},
		{"take_off_bw_fraction", c.TakeOffBWFraction},
		{"landing_threshold_n", c.LandingThresholdN},
		{"landing_floor_n", c.LandingFloorN},
		{"landing_bw_fraction", c.LandingBWFraction},
		{"onset_sigma_multiplier", c.OnsetSigmaMultiplier},
		{"onset_search_start_s", c.OnsetSearchStartS},
		{"filter_cutoff_hz", c.FilterCutoffHz},
		{"flight_time_min_s", c.FlightTimeMinS},
	}
	for _, p := range nonNegative {
		if !isFinite(p.value) || p.value < 0 {
			return &InputError{Field: p.name, Reason: fmt.Sprintf("must not be negative, got %v", p.value)}
		}
	}
	if c.OnsetFallbackFraction <= 0 || c.OnsetFallbackFraction >= 1 {
		return &InputError{Field: "onset_fallback_fraction", Reason: fmt.Sprintf("must be in (0, 1), got %v", c.OnsetFallbackFraction)}
	}
	if c.TakeOffSustainSamples < 0 {
		return &InputError{Field: "take_off_sustain_samples", Reason: "must not be negative"}
	}
	if c.FilterOrder < 1 {
		return &InputError{Field: "filter_order", Reason: "must be at least 1"}
	}
	if c.RFDPolyOrder < 0 {
		return &InputError{Field: "rfd_poly_order", Reason: "must not be negative"}
	}
	if c.FlightTimeMinS >= c.FlightTimeMaxS {
		return &InputError{Field: "flight_time_min_s", Reason: "must be below flight_time_max_s"}
	}
	return nil
}

// TakeOffThreshold resolves the take-off force threshold for a bodyweight.
func (c Config) TakeOffThreshold(bodyweightN float64) float64 {
	if c.TakeOffThresholdN > 0 {
		return c.TakeOffThresholdN
	}
	return max(c.TakeOffFloorN, c.TakeOffBWFraction*bodyweightN)
}

// LandingThreshold resolves the landing force threshold for a bodyweight.
func (c Config) LandingThreshold(bodyweightN float64) float64 {
	if c.LandingThresholdN > 0 {
		return c.LandingThresholdN
	}
	return max(c.LandingFloorN, c.LandingBWFraction*bodyweightN)
}
