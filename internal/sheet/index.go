package sheet

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// extPriority ranks supported extensions; lower wins when two files share a
// name. Lossless formats come first since JPEG noise breaks background removal.
var extPriority = map[string]int{
	".png":  0,
	".tga":  1,
	".bmp":  2,
	".webp": 3,
	".gif":  4,
	".jpg":  5,
	".jpeg": 5,
}

// Supported reports whether path has a decodable sprite sheet extension.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Entry is one sprite sheet found under an input directory.
type Entry struct {
	Name string // slash-separated path relative to the root, without extension
	Path string
}

// Index lists sprite sheets by name.
type Index struct {
	entries map[string]string // name → full path
}

// BuildIndex walks dir recursively for supported image files. Hidden
// directories and the directories listed in skip (typically the output
// directory when it lives under dir) are not descended into.
func BuildIndex(dir string, skip ...string) (*Index, error) {
	idx := &Index{entries: make(map[string]string)}

	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		if s == "" {
			continue
		}
		if abs, err := filepath.Abs(s); err == nil {
			skipped[abs] = true
		}
	}

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if abs, err := filepath.Abs(path); err == nil && skipped[abs] {
				return filepath.SkipDir
			}
			return nil
		}
		if !Supported(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		idx.add(name, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) add(name, path string) {
	existing, exists := idx.entries[name]
	if !exists || rank(path) < rank(existing) {
		idx.entries[name] = path
	}
}

func rank(path string) int {
	return extPriority[strings.ToLower(filepath.Ext(path))]
}

// Entries returns all sheets sorted by name.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, 0, len(idx.entries))
	for name, path := range idx.entries {
		out = append(out, Entry{Name: name, Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the path for a sheet name, or ("", false).
func (idx *Index) Lookup(name string) (string, bool) {
	path, ok := idx.entries[filepath.ToSlash(name)]
	return path, ok
}

// Len returns the number of indexed sheets.
func (idx *Index) Len() int {
	return len(idx.entries)
}
