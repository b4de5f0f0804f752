package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// Encode serializes the result as indented JSON, or YAML when format is "yaml" or "yml".
func (r *Result) Encode(format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(r)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteFile writes the result to path; the extension picks the format.
func (r *Result) WriteFile(path string) error {
	data, err := r.Encode(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DumpToTmpFile writes the result as JSON to a new temporary file and returns its name.
func (r *Result) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "screening_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}
