package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	cmj "github.com/lucasjlepore/cmj-analyzer"
	"github.com/lucasjlepore/cmj-analyzer/loader"
)

func main() {
	var (
		configPath = flag.String("config", "", "Detection config TOML file (optional)")
		sampleRate = flag.Float64("rate", 0, "Sample rate in Hz (optional; overrides the trial file)")
		jsonOut    = flag.Bool("json", false, "Emit full analysis as JSON")
		showPhases = flag.Bool("phases", false, "Include a phase table in text output")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-trial>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := cmj.DefaultConfig()
	if *configPath != "" {
		loaded, err := cmj.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config failed: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	trial, err := loader.LoadFile(flag.Arg(0), loader.Options{SampleRate: *sampleRate})
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		os.Exit(1)
	}
	analysis, err := cmj.Analyze(trial, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Print(analysis.Notes)
	if *showPhases {
		sr := analysis.WorkingForce.SampleRate
		fmt.Println()
		fmt.Println("Phases")
		phases := []struct {
			name string
			iv   cmj.Opt[cmj.Interval]
		}{
			{"unweighting", analysis.Phases.Unweighting},
			{"braking", analysis.Phases.Braking},
			{"propulsion", analysis.Phases.Propulsion},
			{"flight", analysis.Phases.Flight},
			{"landing", analysis.Phases.Landing},
		}
		for _, ph := range phases {
			iv, ok := ph.iv.Get()
			if !ok {
				fmt.Printf("- %-11s | not resolved\n", ph.name)
				continue
			}
			fmt.Printf("- %-11s | %5d-%-5d | %6.3fs\n", ph.name, iv.Start, iv.End, iv.Seconds(sr))
		}
	}
}
