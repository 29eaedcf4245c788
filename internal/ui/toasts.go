package ui

import (
	"strings"

	"github.com/five82/taskboard/internal/notify"
)

// renderToasts draws active notifications newest first, one per line.
func (m Model) renderToasts() string {
	active := m.toasts.Active()
	if len(active) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Background)

	lines := make([]string, 0, len(active))
	for _, t := range active {
		marker, style := "✓ ", styles.SuccessText
		if t.Level == notify.LevelFailure {
			marker, style = "✗ ", styles.DangerText
		}
		lines = append(lines, bg.FillLine(bg.Render(marker+truncate(t.Message, max(m.width-2, 1)), style), m.width))
	}
	return strings.Join(lines, "\n")
}
