package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one preview in the output manifest.
type ManifestEntry struct {
	Name      string `json:"name"`
	Image     string `json:"image"`
	Triangles int    `json:"triangles"`
}

// WriteManifest writes the successful results to path as JSON.
func WriteManifest(path string, results []Result) error {
	entries := []ManifestEntry{}
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{Name: r.Name, Image: r.Image, Triangles: r.Triangles})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
