package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// SummaryRow is one key/value line of a run summary.
type SummaryRow struct {
	Key   string
	Value string
}

var (
	summaryHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue).Padding(0, 1)
	summaryKeyStyle    = lipgloss.NewStyle().Foreground(ColorCyan).Padding(0, 1)
	summaryValueStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// RenderSummaryTable renders key/value rows as a two column table.
// Rows with an empty value are dropped.
func RenderSummaryTable(rows []SummaryRow) string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorDimGray)).
		Headers("FIELD", "VALUE").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return summaryHeaderStyle
			case col == 0:
				return summaryKeyStyle
			default:
				return summaryValueStyle
			}
		})

	for _, r := range rows {
		if r.Value == "" {
			continue
		}
		tbl.Row(r.Key, r.Value)
	}

	return tbl.String()
}
