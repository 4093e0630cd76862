// Package overrides resolves per-sheet pipeline settings from an overrides
// file. Sheet keys are exact sheet names or path.Match globs, and each value
// is either a preset name or an inline entry that may extend a preset:
//
//	presets:
//	  tiny: {min_pixels: 2, row_height: 12}
//	sheets:
//	  "ui/*": tiny
//	  hero_walk: {preset: tiny, frame_count: 8}
package overrides

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set is a resolved overrides file. The zero value matches nothing.
type Set struct {
	exact map[string]Entry
	globs []glob
}

type glob struct {
	pattern string
	entry   Entry
}

// Load reads a JSON or YAML overrides file. An empty path yields an empty Set.
func Load(filename string) (*Set, error) {
	if filename == "" {
		return &Set{}, nil
	}
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("overrides: read %s: %w", filename, err)
	}

	var f file
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &f)
	default:
		err = json.Unmarshal(raw, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("overrides: parse %s: %w", filename, err)
	}

	s, err := build(f)
	if err != nil {
		return nil, fmt.Errorf("overrides: %s: %w", filename, err)
	}
	return s, nil
}

func build(f file) (*Set, error) {
	s := &Set{exact: make(map[string]Entry)}
	for key, ref := range f.Sheets {
		e, err := resolve(ref.Entry, f.Presets)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", key, err)
		}
		if !isGlob(key) {
			s.exact[key] = e
			continue
		}
		if _, err := path.Match(key, ""); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", key, err)
		}
		s.globs = append(s.globs, glob{pattern: key, entry: e})
	}
	slices.SortFunc(s.globs, func(a, b glob) int { return strings.Compare(a.pattern, b.pattern) })
	return s, nil
}

// resolve expands a preset reference; inline fields win over the preset's.
func resolve(e Entry, presets map[string]Entry) (Entry, error) {
	out := Entry{}
	if e.Preset != "" {
		p, ok := presets[e.Preset]
		if !ok {
			return Entry{}, fmt.Errorf("preset %q not found", e.Preset)
		}
		if p.Preset != "" {
			return Entry{}, fmt.Errorf("preset %q references another preset", e.Preset)
		}
		out.merge(p)
	}
	out.merge(e)
	out.Preset = e.Preset
	if err := out.validate(); err != nil {
		return Entry{}, err
	}
	return out, nil
}

func isGlob(key string) bool {
	return strings.ContainsAny(key, `*?[\`)
}

// Lookup returns the entry for a sheet name. An exact key wins; otherwise
// the first matching glob in lexical order is used.
func (s *Set) Lookup(name string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	if e, ok := s.exact[name]; ok {
		return e, true
	}
	for _, g := range s.globs {
		if ok, _ := path.Match(g.pattern, name); ok {
			return g.entry, true
		}
	}
	return Entry{}, false
}

// Len returns the number of sheet keys.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.exact) + len(s.globs)
}
