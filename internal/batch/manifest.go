package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestEntry represents one extracted asset in the output manifest.
type ManifestEntry struct {
	Kind   Kind       `json:"kind"`
	Name   string     `json:"name"`
	Path   string     `json:"path"`
	Size   int        `json:"size"`
	XXHash string     `json:"xxhash64"`
	Sound  *SoundInfo `json:"sound,omitempty"`
}

// Manifest describes a finished extraction run.
type Manifest struct {
	Source  string          `json:"source"`
	Version int             `json:"version"`
	Assets  []ManifestEntry `json:"assets"`
}

// NewManifest lists the successful results in job order.
func NewManifest(source string, version int, results []Result) Manifest {
	m := Manifest{Source: source, Version: version, Assets: []ManifestEntry{}}
	for _, r := range results {
		if !r.Success {
			continue
		}
		m.Assets = append(m.Assets, ManifestEntry{
			Kind:   r.Kind,
			Name:   r.Name,
			Path:   r.Path,
			Size:   r.Size,
			XXHash: fmt.Sprintf("%016x", r.Hash),
			Sound:  r.Sound,
		})
	}
	return m
}

// WriteManifest writes manifest.json to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
