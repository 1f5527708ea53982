package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	cmj "github.com/lucasjlepore/cmj-analyzer"
	"github.com/lucasjlepore/cmj-analyzer/export"
	"github.com/lucasjlepore/cmj-analyzer/loader"
	"github.com/lucasjlepore/cmj-analyzer/pipeline"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// detectionFlags are optional overrides applied on top of the TOML config.
type detectionFlags struct {
	configPath string
	logLevel   string
	sampleRate float64
	filterHz   float64
	takeOffN   float64
	landingN   float64
}

func newRootCmd() *cobra.Command {
	df := &detectionFlags{}
	cmd := &cobra.Command{
		Use:   "cmj_analyze",
		Short: "Analyze counter-movement-jump force-plate trials",
		Long: `Detect jump events, reconstruct centre-of-mass kinematics and compute the
CMJ metric battery from a JSON or CSV force-plate trial.
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := log.ParseLevel(df.logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&df.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	pf.StringVar(&df.configPath, "config", "", "Detection config TOML file")
	pf.Float64Var(&df.sampleRate, "sample-rate", 0, "Override the trial sample rate (Hz)")
	pf.Float64Var(&df.filterHz, "filter-hz", 0, "Low-pass cutoff in Hz (0 disables filtering)")
	pf.Float64Var(&df.takeOffN, "take-off-threshold", 0, "Take-off force threshold in N (0 = auto)")
	pf.Float64Var(&df.landingN, "landing-threshold", 0, "Landing force threshold in N (0 = auto)")

	cmd.AddCommand(analyzeCmd(df), notesCmd(df))
	return cmd
}

// resolveConfig loads the TOML config and applies any flags the user set.
func (df *detectionFlags) resolveConfig(cmd *cobra.Command) (cmj.Config, error) {
	flags := cmd.Flags()
	cfg := cmj.DefaultConfig()
	if df.configPath != "" {
		loaded, err := cmj.LoadConfig(df.configPath)
		if err != nil {
			return cmj.Config{}, err
		}
		cfg = loaded
	}
	if flags.Changed("filter-hz") {
		cfg.FilterCutoffHz = df.filterHz
	}
	if flags.Changed("take-off-threshold") {
		cfg.TakeOffThresholdN = df.takeOffN
	}
	if flags.Changed("landing-threshold") {
		cfg.LandingThresholdN = df.landingN
	}
	return cfg, cfg.Validate()
}

func analyzeCmd(df *detectionFlags) *cobra.Command {
	var (
		outDir     string
		format     string
		overwrite  bool
		copySource bool
	)
	cmd := &cobra.Command{
		Use:     "analyze <trial>",
		Short:   "Analyze a trial and write the artifact bundle",
		Example: `cmj_analyze analyze trial.json --out out/ --format csv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := df.resolveConfig(cmd)
			if err != nil {
				return err
			}
			trialPath := args[0]
			if strings.TrimSpace(outDir) == "" {
				base := strings.TrimSuffix(filepath.Base(trialPath), filepath.Ext(trialPath))
				outDir = filepath.Join(".", "exports", base+"_"+export.PayloadFormatVersion)
			}
			log.WithField("trial", trialPath).Debug("running pipeline")

			result, err := pipeline.Run(pipeline.Options{
				TrialPath:  trialPath,
				OutDir:     outDir,
				Config:     cfg,
				SampleRate: df.sampleRate,
				Format:     format,
				Overwrite:  overwrite,
				CopySource: copySource,
				Logger:     log.StandardLogger(),
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default ./exports/<trial>_"+export.PayloadFormatVersion+")")
	cmd.Flags().StringVar(&format, "format", "parquet", "Per-sample format: parquet|csv")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Allow writing into non-empty output directories")
	cmd.Flags().BoolVar(&copySource, "copy-source", true, "Copy the trial file into the bundle")
	return cmd
}

func printResult(w io.Writer, result *pipeline.Result) {
	fmt.Fprintf(w, "cmj_analyze complete\n")
	fmt.Fprintf(w, "Output dir:     %s\n", result.OutputDir)
	fmt.Fprintf(w, "analysis.json:  %s\n", result.AnalysisPath)
	fmt.Fprintf(w, "samples:        %s\n", result.SamplesPath)
	fmt.Fprintf(w, "metrics.csv:    %s\n", result.MetricsPath)
	fmt.Fprintf(w, "trial notes:    %s\n", result.NotesPath)
	fmt.Fprintf(w, "manifest.json:  %s\n", result.ManifestPath)
	if result.SourceCopyPath != "" {
		fmt.Fprintf(w, "source copy:    %s\n", result.SourceCopyPath)
	}
	fmt.Fprintf(w, "valid:          %t\n", result.IsValid)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning:        %s\n", warning)
	}
}

func notesCmd(df *detectionFlags) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "notes <trial>",
		Short: "Print the trial report (or the full payload as JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := df.resolveConfig(cmd)
			if err != nil {
				return err
			}
			trial, err := loader.LoadFile(args[0], loader.Options{SampleRate: df.sampleRate})
			if err != nil {
				return err
			}
			analysis, err := cmj.Analyze(trial, cfg)
			if err != nil {
				return fmt.Errorf("analyze trial: %w", err)
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(export.BuildPayload(analysis, trial))
			}
			fmt.Fprint(cmd.OutOrStdout(), analysis.Notes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the analysis payload as JSON")
	return cmd
}
