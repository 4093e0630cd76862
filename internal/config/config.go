package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"sprite-animator/internal/encode"
	"sprite-animator/internal/sprite"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds all configurable paths and pipeline settings.
type Config struct {
	// Paths
	InputDir      string `json:"input_dir" yaml:"input_dir"`
	OutputDir     string `json:"output_dir" yaml:"output_dir"`
	OverridesFile string `json:"overrides_file" yaml:"overrides_file"`

	// Pipeline settings
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	MinPixels  int     `json:"min_pixels" yaml:"min_pixels"`
	FrameCount int     `json:"frame_count" yaml:"frame_count"`
	RowHeight  int     `json:"row_height" yaml:"row_height"`
	Padding    float64 `json:"padding" yaml:"padding"`
	Fill       float64 `json:"fill" yaml:"fill"`
	Resample   string  `json:"resample" yaml:"resample"`

	// Output settings
	DelayMs    int      `json:"delay_ms" yaml:"delay_ms"`
	GIFSize    *int     `json:"gif_size" yaml:"gif_size"`       // nil = default, 0 = native frame size
	GIFPadding *int     `json:"gif_padding" yaml:"gif_padding"` // nil = default
	GIFColors  int      `json:"gif_colors" yaml:"gif_colors"`
	Formats    []string `json:"formats" yaml:"formats"`
	Workers    int      `json:"workers" yaml:"workers"`
}

// Load reads a JSON or YAML config file, chosen by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir   string
	OutputDir  string
	Threshold  float64
	FrameCount int
	DelayMs    int
	Workers    int
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Threshold > 0 {
		c.Threshold = flags.Threshold
	}
	if flags.FrameCount > 0 {
		c.FrameCount = flags.FrameCount
	}
	if flags.DelayMs > 0 {
		c.DelayMs = flags.DelayMs
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Paths
	if c.InputDir == "" {
		c.InputDir = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.InputDir, "animations")
	}
	if c.OverridesFile == "" {
		c.OverridesFile = findOverrides(c.InputDir)
	} else if !filepath.IsAbs(c.OverridesFile) {
		if _, err := os.Stat(c.OverridesFile); err != nil {
			c.OverridesFile = filepath.Join(c.InputDir, c.OverridesFile)
		}
	}

	// Pipeline defaults
	if c.Threshold <= 0 {
		c.Threshold = sprite.DefaultThreshold
	}
	if c.MinPixels <= 0 {
		c.MinPixels = sprite.DefaultMinPixels
	}
	if c.FrameCount <= 0 {
		c.FrameCount = sprite.DefaultFrameCount
	}
	if c.RowHeight <= 0 {
		c.RowHeight = sprite.DefaultRowHeight
	}
	if c.Padding <= 0 {
		c.Padding = sprite.DefaultPadding
	}
	if c.Fill <= 0 {
		c.Fill = sprite.DefaultFill
	}
	if c.Resample == "" {
		c.Resample = "catmullrom"
	}

	// Output defaults
	if c.DelayMs <= 0 {
		c.DelayMs = encode.DefaultDelayMs
	}
	if c.GIFSize == nil {
		size := encode.DefaultGIFSize
		c.GIFSize = &size
	}
	if c.GIFPadding == nil {
		padding := encode.DefaultGIFPadding
		c.GIFPadding = &padding
	}
	if c.GIFColors <= 0 {
		c.GIFColors = encode.DefaultGIFColors
	}
	if len(c.Formats) == 0 {
		c.Formats = append([]string(nil), encode.DefaultFormats...)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports the first out-of-range setting. Call after Resolve.
func (c *Config) Validate() error {
	switch {
	case c.Threshold <= 0:
		return fmt.Errorf("%w: threshold %g must be positive", ErrInvalid, c.Threshold)
	case c.MinPixels < 1:
		return fmt.Errorf("%w: min_pixels %d must be at least 1", ErrInvalid, c.MinPixels)
	case c.FrameCount < 1:
		return fmt.Errorf("%w: frame_count %d must be at least 1", ErrInvalid, c.FrameCount)
	case c.RowHeight < 1:
		return fmt.Errorf("%w: row_height %d must be at least 1", ErrInvalid, c.RowHeight)
	case c.Padding < 1:
		return fmt.Errorf("%w: padding %g must be at least 1", ErrInvalid, c.Padding)
	case c.Fill <= 0 || c.Fill > 1:
		return fmt.Errorf("%w: fill %g must be in (0, 1]", ErrInvalid, c.Fill)
	case c.DelayMs <= 0:
		return fmt.Errorf("%w: delay_ms %d must be positive", ErrInvalid, c.DelayMs)
	case c.GIFColors < 1 || c.GIFColors > 255:
		return fmt.Errorf("%w: gif_colors %d out of range 1-255", ErrInvalid, c.GIFColors)
	case c.GIFSize != nil && *c.GIFSize < 0:
		return fmt.Errorf("%w: gif_size %d is negative", ErrInvalid, *c.GIFSize)
	case c.GIFPadding != nil && *c.GIFPadding < 0:
		return fmt.Errorf("%w: gif_padding %d is negative", ErrInvalid, *c.GIFPadding)
	case c.GIFSize != nil && c.GIFPadding != nil && *c.GIFSize > 0 && *c.GIFSize-2**c.GIFPadding < 1:
		return fmt.Errorf("%w: gif_padding %d leaves no room in gif_size %d", ErrInvalid, *c.GIFPadding, *c.GIFSize)
	}
	for _, f := range c.Formats {
		if !encode.ValidFormat(f) {
			return fmt.Errorf("%w: unknown format %q", ErrInvalid, f)
		}
	}
	if _, err := sprite.ParseKernel(c.Resample); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Params returns the pipeline parameters described by c.
func (c *Config) Params() (sprite.Params, error) {
	kernel, err := sprite.ParseKernel(c.Resample)
	if err != nil {
		return sprite.Params{}, err
	}
	return sprite.Params{
		Threshold:  c.Threshold,
		MinPixels:  c.MinPixels,
		FrameCount: c.FrameCount,
		RowHeight:  c.RowHeight,
		Extract: sprite.ExtractOptions{
			Padding: c.Padding,
			Fill:    c.Fill,
			Kernel:  kernel,
		},
	}, nil
}

// EncodeOptions returns the artifact settings described by c.
func (c *Config) EncodeOptions() encode.Options {
	size, padding := 0, 0
	if c.GIFSize != nil {
		size = *c.GIFSize
	}
	if c.GIFPadding != nil {
		padding = *c.GIFPadding
	}
	return encode.Options{
		Formats: c.Formats,
		GIF: encode.GIFOptions{
			Size:    size,
			Padding: padding,
			DelayMs: c.DelayMs,
			Colors:  c.GIFColors,
		},
	}
}

func findOverrides(inputDir string) string {
	candidates := []string{
		filepath.Join(inputDir, "overrides.yaml"),
		filepath.Join(inputDir, "overrides.yml"),
		filepath.Join(inputDir, "overrides.json"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
