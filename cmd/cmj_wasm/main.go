//go:build js && wasm

// cmj_wasm exposes analyzeTrial(bytes, options) to the browser viewer. The
// call returns {ok, zip, analysis, valid, warnings, files} or {ok:false, error}.
package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	cmj "github.com/lucasjlepore/cmj-analyzer"
	"github.com/lucasjlepore/cmj-analyzer/pipeline"
	"github.com/sirupsen/logrus"
)

func main() {
	js.Global().Set("analyzeTrial", js.FuncOf(analyzeTrial))
	select {}
}

// jsOptions mirrors the options object passed from JavaScript.
type jsOptions struct {
	sourceName string
	format     string
	sampleRate float64
	config     cmj.Config
}

func parseOptions(v js.Value) (jsOptions, error) {
	opts := jsOptions{
		sourceName: stringField(v, "source_file_name", "trial.json"),
		format:     stringField(v, "format", "csv"),
		sampleRate: numberField(v, "sample_rate"),
		config:     cmj.DefaultConfig(),
	}
	opts.config.FilterCutoffHz = numberField(v, "filter_hz")
	opts.config.TakeOffThresholdN = numberField(v, "take_off_threshold_n")
	opts.config.LandingThresholdN = numberField(v, "landing_threshold_n")
	return opts, opts.config.Validate()
}

func failure(format string, args ...any) map[string]any {
	return map[string]any{"ok": false, "error": fmt.Sprintf(format, args...)}
}

func analyzeTrial(_ js.Value, args []js.Value) any {
	if len(args) == 0 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	data, err := copyBytes(args[0])
	if err != nil {
		return failure("%v", err)
	}
	optsArg := js.Undefined()
	if len(args) > 1 {
		optsArg = args[1]
	}
	opts, err := parseOptions(optsArg)
	if err != nil {
		return failure("invalid options: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	result, err := pipeline.RunBytes(pipeline.BytesOptions{
		SourceFileName: opts.sourceName,
		Data:           data,
		Config:         opts.config,
		SampleRate:     opts.sampleRate,
		Format:         opts.format,
		CopySource:     true,
		Logger:         logger,
	})
	if err != nil {
		return failure("%v", err)
	}

	names := sortedNames(result.Files)
	archive, err := bundleZip(result.Files, names)
	if err != nil {
		return failure("create zip: %v", err)
	}
	zipJS := js.Global().Get("Uint8Array").New(len(archive))
	js.CopyBytesToJS(zipJS, archive)

	return map[string]any{
		"ok":       true,
		"zip":      zipJS,
		"analysis": string(result.Files[pipeline.AnalysisFile]),
		"valid":    result.Analysis.Validity.IsValid,
		"warnings": toAnySlice(result.Warnings),
		"files":    toAnySlice(names),
	}
}

func copyBytes(v js.Value) ([]byte, error) {
	if v.IsUndefined() || v.IsNull() {
		return nil, fmt.Errorf("trial file bytes are required")
	}
	n := v.Get("length").Int()
	if n == 0 {
		return nil, fmt.Errorf("trial file is empty")
	}
	out := make([]byte, n)
	if js.CopyBytesToGo(out, v) != n {
		return nil, fmt.Errorf("failed to read trial bytes from JS input")
	}
	return out, nil
}

// bundleZip writes files in name order with a fixed mod time so identical
// trials produce identical archives.
func bundleZip(files map[string][]byte, names []string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	epoch := time.Unix(0, 0).UTC()
	for _, name := range names {
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		hdr.SetModTime(epoch)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func field(v js.Value, key string) (js.Value, bool) {
	if v.IsUndefined() || v.IsNull() {
		return js.Value{}, false
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return js.Value{}, false
	}
	return out, true
}

func stringField(v js.Value, key, fallback string) string {
	out, ok := field(v, key)
	if !ok || out.Type() != js.TypeString || out.String() == "" {
		return fallback
	}
	return out.String()
}

func numberField(v js.Value, key string) float64 {
	out, ok := field(v, key)
	if !ok || out.Type() != js.TypeNumber {
		return 0
	}
	return out.Float()
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
