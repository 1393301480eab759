package studio

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	statusStyle = lipgloss.NewStyle().Faint(true)
	logStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

const help = "ctrl+r run · ctrl+k cadence · ctrl+o open · ctrl+s save · ctrl+x export · ctrl+g reset · ctrl+n example · ctrl+l clear · ctrl+q quit"

func (m Model) View() string {
	doc := m.nb.Document()
	header := headerStyle.Render(fmt.Sprintf("plotpad · %s · %s · runs %d",
		doc.FileName, m.nb.Mode(), m.nb.Kernel().Runs()))
	if m.status != "" {
		header += "  " + statusStyle.Render(m.status)
	}

	if m.picking {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			"Open a script (esc to cancel)",
			m.picker.View(),
		)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.editor.View(),
		"  ",
		m.surface.String(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		logStyle.Render(m.logView.View()),
		helpStyle.Render(help),
	)
}
