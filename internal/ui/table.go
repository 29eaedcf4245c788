package ui

import (
	"strings"

	"github.com/five82/taskboard/internal/model"
)

type column struct {
	title string
	width int
}

// renderTable draws a header row and a scrolled window of rows that keeps
// selected visible. The statusCol cell of each row is drawn as a badge.
func (m Model) renderTable(columns []column, rows [][]string, statuses []model.Status, statusCol, selected, height int, empty string) string {
	styles := m.theme.Styles()

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = cell(c.title, c.width)
	}
	lines := []string{styles.AccentText.Bold(true).Render(" " + strings.Join(header, "  "))}

	if len(rows) == 0 {
		lines = append(lines, "", styles.FaintText.Render(" "+empty))
		return strings.Join(lines, "\n")
	}

	visible := max(height-1, 1)
	offset := 0
	if selected >= visible {
		offset = selected - visible + 1
	}
	end := min(offset+visible, len(rows))

	for i := offset; i < end; i++ {
		parts := make([]string, len(columns))
		for j, c := range columns {
			text := ""
			if j < len(rows[i]) {
				text = rows[i][j]
			}
			parts[j] = cell(text, c.width)
		}
		if i == selected {
			lines = append(lines, styles.Selected.Render(" "+strings.Join(parts, "  ")+" "))
			continue
		}
		if statusCol >= 0 && statusCol < len(parts) {
			parts[statusCol] = styles.StatusStyle(statuses[i]).Render(truncate(string(statuses[i]), columns[statusCol].width-2)) +
				strings.Repeat(" ", max(columns[statusCol].width-len(string(statuses[i]))-2, 0))
		}
		lines = append(lines, " "+strings.Join(parts, "  "))
	}
	return strings.Join(lines, "\n")
}
