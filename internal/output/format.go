package output

import "strings"

// Format specifies how a run report is written to stdout.
type Format string

const (
	// FormatTable renders stage lines and a summary table.
	FormatTable Format = "table"

	// FormatJSON outputs the report as JSON.
	FormatJSON Format = "json"

	// FormatYAML outputs the report as YAML.
	FormatYAML Format = "yaml"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// ParseFormat parses s case-insensitively. The empty string is FormatTable.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, true
	case "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// ValidFormats returns the accepted --output values.
func ValidFormats() []string {
	return []string{"table", "json", "yaml"}
}
