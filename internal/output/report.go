package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteReport encodes v to w as JSON or YAML. FormatTable is rendered by the
// caller and is rejected here.
func WriteReport(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("format %s not supported for report output", format)
	}
}
