package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestFile is written at the top of the staging root.
const ManifestFile = "upack.json"

// Manifest describes a package to the feed that stores it.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func writeManifest(dir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
