package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"sprite-animator/internal/encode"
	"sprite-animator/internal/overrides"
	"sprite-animator/internal/sheet"
	"sprite-animator/internal/sprite"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir string
	Params    sprite.Params
	Encode    encode.Options
	Overrides *overrides.Set
	Workers   int
}

// Result holds the outcome of processing one sheet.
type Result struct {
	Name     string
	Path     string
	Detected int      // blobs found before count normalization
	Frames   int      // frames written
	Size     int      // frame edge in pixels
	DelayMs  int      // per-frame delay used for the animations
	Outputs  []string // written files, relative to the output dir
	Success  bool
	Error    string
}

// Run processes all sheets using a worker pool. Sheets not started before
// ctx is cancelled are reported as failed with the context error.
func Run(ctx context.Context, cfg Config, sheets []sheet.Entry) []Result {
	total := len(sheets)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f sheets/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	workers := max(cfg.Workers, 1)
	sheetChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range sheetChan {
				if err := ctx.Err(); err != nil {
					results[idx] = failed(sheets[idx], err)
				} else {
					results[idx] = processSheet(ctx, cfg, sheets[idx])
				}
				processed.Add(1)
			}
		}()
	}

	// Send work
	sent := 0
send:
	for ; sent < total; sent++ {
		select {
		case sheetChan <- sent:
		case <-ctx.Done():
			break send
		}
	}
	close(sheetChan)

	wg.Wait()
	close(done)

	for i := sent; i < total; i++ {
		results[i] = failed(sheets[i], ctx.Err())
	}
	return results
}

func failed(s sheet.Entry, err error) Result {
	return Result{Name: s.Name, Path: s.Path, Error: err.Error()}
}

func processSheet(ctx context.Context, cfg Config, s sheet.Entry) Result {
	img, err := sheet.Load(s.Path)
	if err != nil {
		return failed(s, err)
	}

	params := cfg.Params
	opts := cfg.Encode
	if e, ok := cfg.Overrides.Lookup(s.Name); ok {
		e.Apply(&params, &opts.GIF.DelayMs)
	}

	res, err := sprite.Run(img, params)
	if err != nil {
		if errors.Is(err, sprite.ErrNoForeground) {
			return failed(s, fmt.Errorf("%w (threshold %g, min pixels %d)", err, params.Threshold, params.MinPixels))
		}
		return failed(s, err)
	}

	outDir := filepath.Join(cfg.OutputDir, filepath.FromSlash(s.Name))
	paths, err := encode.WriteAll(ctx, outDir, res.Frames, opts)
	if err != nil {
		return failed(s, err)
	}

	outputs := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(cfg.OutputDir, p)
		if err != nil {
			rel = p
		}
		outputs[i] = filepath.ToSlash(rel)
	}

	return Result{
		Name:     s.Name,
		Path:     s.Path,
		Detected: res.Detected,
		Frames:   len(res.Frames),
		Size:     res.Size,
		DelayMs:  opts.GIF.DelayMs,
		Outputs:  outputs,
		Success:  true,
	}
}
