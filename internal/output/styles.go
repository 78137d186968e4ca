package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals outside this block.
var (
	// ColorCyan is used for identifiable nouns: package names, paths, versions.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for completed stages.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for skipped stages.
	ColorYellow = lipgloss.Color("220")

	// ColorBoldRed is used for failed stages (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (packaging, uploading, registering).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Stage status constants.
const (
	StatusDone    = "done"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// StatusStyle returns the style for a stage status. Unknown statuses are unstyled.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusDone:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minStageColumnWidth keeps status words aligned.
const minStageColumnWidth = 32

// FormatStageLine renders a pipeline stage with a right-aligned status.
//
// Format: s:<stage>  <status>
func FormatStageLine(stage, status string) string {
	padding := minStageColumnWidth - len(stage)
	if padding < 2 {
		padding = 2
	}

	return StyleDim.Render("s:") + StyleNoun.Render(stage) + strings.Repeat(" ", padding) + StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatArtifact renders an artifact path with its size.
func FormatArtifact(path string, size int64) string {
	return fmt.Sprintf("%s %s", StyleNoun.Render(path), StyleDim.Render(fmt.Sprintf("(%d bytes)", size)))
}
