package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/hearth/pkg/focus"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "starting…"
	}

	gridH := m.height - 1
	rects := m.grid.Rects(m.width, gridH, 0)

	tiles := make(map[string]string, len(m.widgets))
	for id, w := range m.widgets {
		rect, ok := rects[id]
		if !ok {
			continue
		}
		tiles[id] = zone.Mark(id, w.View(m.th, rect.W, rect.H))
	}

	body := compose(tiles, rects, m.width, gridH)

	// An open focus menu is modal: it covers the dashboard until a choice
	// is made or escape closes it.
	if focused := m.focus.Focused(); focused != "" && m.focus.MenuOpen(focused) {
		if menu := m.focus.Menu(focused); menu != nil {
			body = lipgloss.Place(m.width, gridH, lipgloss.Center, lipgloss.Center,
				m.renderMenu(focused, menu))
		}
	}

	helpBar := m.help.View(m.keys)
	return zone.Scan(body + "\n" + helpBar)
}

// renderMenu draws the focus menu for a widget: its options vertically,
// with the selected row highlighted.
func (m Model) renderMenu(widgetID string, menu *focus.Menu) string {
	title := widgetID
	if w, ok := m.widgets[widgetID]; ok {
		title = w.Title()
	}

	selStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.th.Background)).
		Background(lipgloss.Color(m.th.MenuSelected)).
		Padding(0, 1)
	itemStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.th.MenuItem)).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.th.Title)).
		Bold(true)

	var rows []string
	rows = append(rows, titleStyle.Render(title))
	for i, item := range menu.Items() {
		label := item.Label
		if item.Kind == focus.ItemView {
			label += " →"
		}
		if i == menu.Selected() {
			rows = append(rows, selStyle.Render(label))
		} else {
			rows = append(rows, itemStyle.Render(label))
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.th.MenuBorder)).
		Padding(0, 2)
	return box.Render(strings.Join(rows, "\n"))
}
