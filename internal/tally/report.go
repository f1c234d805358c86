package tally

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// WriteReport writes the result to path, JSON or YAML by file extension. The
// write is atomic so a crash never leaves a truncated report behind.
func WriteReport(path string, result *Result) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(result, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case ".yaml", ".yml":
		data, err = yaml.Marshal(result)
	default:
		return fmt.Errorf("unsupported report format %q (use .json, .yaml or .yml)", ext)
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
