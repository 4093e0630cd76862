package batch

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
)

// Manifest describes one batch run.
type Manifest struct {
	RunID     string          `json:"run_id"`
	CreatedAt time.Time       `json:"created_at"`
	Sheets    []ManifestEntry `json:"sheets"`
}

// ManifestEntry represents one sheet in the output manifest.
type ManifestEntry struct {
	Name     string   `json:"name"`
	Source   string   `json:"source"`
	Detected int      `json:"detected"`
	Frames   int      `json:"frames"`
	Size     int      `json:"size"`
	DelayMs  int      `json:"delay_ms"`
	Outputs  []string `json:"outputs,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// NewRunID returns a fresh identifier for a batch run.
func NewRunID() uuid.UUID {
	return uuid.New()
}

// WriteManifest writes manifest.json describing results to path.
func WriteManifest(path string, runID uuid.UUID, results []Result) error {
	m := Manifest{
		RunID:     runID.String(),
		CreatedAt: time.Now().UTC(),
		Sheets:    make([]ManifestEntry, len(results)),
	}
	for i, r := range results {
		m.Sheets[i] = ManifestEntry{
			Name:     r.Name,
			Source:   r.Path,
			Detected: r.Detected,
			Frames:   r.Frames,
			Size:     r.Size,
			DelayMs:  r.DelayMs,
			Outputs:  r.Outputs,
			Error:    r.Error,
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
