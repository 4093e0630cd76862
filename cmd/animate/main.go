package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sprite-animator/internal/batch"
	"sprite-animator/internal/config"
	"sprite-animator/internal/overrides"
	"sprite-animator/internal/sheet"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	inputDir := flag.String("input", "", "Directory of sprite sheets (default: .)")
	outputDir := flag.String("output", "", "Output directory (default: <input>/animations)")
	threshold := flag.Float64("threshold", 0, "Background color distance (default: 1)")
	frames := flag.Int("frames", 0, "Frames per animation (default: 12)")
	delay := flag.Int("delay", 0, "Frame delay in ms (default: 300)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	only := flag.String("only", "", "Process only the sheet with this name")
	testN := flag.Int("test", 0, "Process only first N sheets for testing")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		InputDir:   *inputDir,
		OutputDir:  *outputDir,
		Threshold:  *threshold,
		FrameCount: *frames,
		DelayMs:    *delay,
		Workers:    *workers,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	params, err := cfg.Params()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Index sheets
	idx, err := sheet.BuildIndex(cfg.InputDir, cfg.OutputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning %s: %v\n", cfg.InputDir, err)
		os.Exit(1)
	}
	sheets := idx.Entries()

	if *only != "" {
		path, ok := idx.Lookup(*only)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no sheet named %q in %s\n", *only, cfg.InputDir)
			os.Exit(1)
		}
		sheets = []sheet.Entry{{Name: filepath.ToSlash(*only), Path: path}}
	}

	// Limit for testing
	if *testN > 0 && *testN < len(sheets) {
		sheets = sheets[:*testN]
	}

	if len(sheets) == 0 {
		fmt.Println("No sprite sheets to process.")
		os.Exit(0)
	}

	// Load overrides
	ov, err := overrides.Load(cfg.OverridesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: overrides: %v\n", err)
		ov = &overrides.Set{}
	}
	if ov.Len() > 0 {
		fmt.Printf("Overrides: %d sheet keys from %s\n", ov.Len(), cfg.OverridesFile)
	}

	// Print summary
	mode := ""
	if *only != "" {
		mode = fmt.Sprintf(" (%s)", *only)
	} else if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}

	fmt.Printf("Sprite sheet → animation%s\n", mode)
	fmt.Printf("Sheets: %d, Workers: %d, Frames: %d, Delay: %dms\n", len(sheets), cfg.Workers, cfg.FrameCount, cfg.DelayMs)
	fmt.Printf("Output: %s %v\n", cfg.OutputDir, cfg.Formats)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	runID := batch.NewRunID()

	// Run batch
	batchCfg := batch.Config{
		OutputDir: cfg.OutputDir,
		Params:    params,
		Encode:    cfg.EncodeOptions(),
		Overrides: ov,
		Workers:   cfg.Workers,
	}

	results := batch.Run(ctx, batchCfg, sheets)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Animated: %d/%d\n", success, len(sheets))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(len(errors), 20)
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := batch.WriteManifest(manifestPath, runID, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s (run %s)\n", manifestPath, runID)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
