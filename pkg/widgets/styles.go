package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/hearth/pkg/theme"
)

// frame renders a widget body inside its bordered tile. The border color
// follows the lifecycle: active beats focused beats idle.
func frame(c *Core, th theme.Theme, title, body string, width, height int) string {
	if width < 4 || height < 3 {
		return ""
	}

	borderColor := th.Border
	switch {
	case c.Active():
		borderColor = th.BorderActive
	case c.Focused():
		borderColor = th.BorderFocus
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(th.Title)).
		Bold(c.Focused())

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Foreground(lipgloss.Color(th.Foreground)).
		Width(width - 2).
		Height(height - 2).
		Padding(0, 1)

	content := titleStyle.Render(title)
	if body != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, body)
	}
	return box.Render(content)
}

// dimStyle renders placeholder text in the theme's dim color.
func dimStyle(th theme.Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(th.Dim))
}

// accentStyle renders highlighted values in the theme's accent color.
func accentStyle(th theme.Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(th.Accent))
}
