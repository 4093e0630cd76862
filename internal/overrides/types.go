package overrides

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"sprite-animator/internal/sprite"
)

// Entry holds per-sheet setting overrides. Nil fields keep the configured value.
type Entry struct {
	Preset     string   `json:"preset,omitempty" yaml:"preset,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	MinPixels  *int     `json:"min_pixels,omitempty" yaml:"min_pixels,omitempty"`
	FrameCount *int     `json:"frame_count,omitempty" yaml:"frame_count,omitempty"`
	RowHeight  *int     `json:"row_height,omitempty" yaml:"row_height,omitempty"`
	Padding    *float64 `json:"padding,omitempty" yaml:"padding,omitempty"`
	Fill       *float64 `json:"fill,omitempty" yaml:"fill,omitempty"`
	DelayMs    *int     `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty"`
}

// merge copies the non-nil fields of o over e.
func (e *Entry) merge(o Entry) {
	if o.Threshold != nil {
		e.Threshold = o.Threshold
	}
	if o.MinPixels != nil {
		e.MinPixels = o.MinPixels
	}
	if o.FrameCount != nil {
		e.FrameCount = o.FrameCount
	}
	if o.RowHeight != nil {
		e.RowHeight = o.RowHeight
	}
	if o.Padding != nil {
		e.Padding = o.Padding
	}
	if o.Fill != nil {
		e.Fill = o.Fill
	}
	if o.DelayMs != nil {
		e.DelayMs = o.DelayMs
	}
}

// Apply writes the entry's fields into p and delayMs.
func (e Entry) Apply(p *sprite.Params, delayMs *int) {
	if e.Threshold != nil {
		p.Threshold = *e.Threshold
	}
	if e.MinPixels != nil {
		p.MinPixels = *e.MinPixels
	}
	if e.FrameCount != nil {
		p.FrameCount = *e.FrameCount
	}
	if e.RowHeight != nil {
		p.RowHeight = *e.RowHeight
	}
	if e.Padding != nil {
		p.Extract.Padding = *e.Padding
	}
	if e.Fill != nil {
		p.Extract.Fill = *e.Fill
	}
	if e.DelayMs != nil && delayMs != nil {
		*delayMs = *e.DelayMs
	}
}

func (e Entry) validate() error {
	switch {
	case e.Threshold != nil && *e.Threshold <= 0:
		return fmt.Errorf("threshold %g must be positive", *e.Threshold)
	case e.MinPixels != nil && *e.MinPixels < 1:
		return fmt.Errorf("min_pixels %d must be at least 1", *e.MinPixels)
	case e.FrameCount != nil && *e.FrameCount < 1:
		return fmt.Errorf("frame_count %d must be at least 1", *e.FrameCount)
	case e.RowHeight != nil && *e.RowHeight < 1:
		return fmt.Errorf("row_height %d must be at least 1", *e.RowHeight)
	case e.Padding != nil && *e.Padding < 1:
		return fmt.Errorf("padding %g must be at least 1", *e.Padding)
	case e.Fill != nil && (*e.Fill <= 0 || *e.Fill > 1):
		return fmt.Errorf("fill %g must be in (0, 1]", *e.Fill)
	case e.DelayMs != nil && *e.DelayMs <= 0:
		return fmt.Errorf("delay_ms %d must be positive", *e.DelayMs)
	}
	return nil
}

// entryRef is a sheet value: either a preset name or an inline entry.
type entryRef struct {
	Entry
}

func (r *entryRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.Entry = Entry{Preset: name}
		return nil
	}
	return json.Unmarshal(data, &r.Entry)
}

func (r *entryRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Entry = Entry{Preset: value.Value}
		return nil
	}
	return value.Decode(&r.Entry)
}

// file matches the schema of an overrides file.
type file struct {
	Presets map[string]Entry    `json:"presets" yaml:"presets"`
	Sheets  map[string]entryRef `json:"sheets" yaml:"sheets"`
}
