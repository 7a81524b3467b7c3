package widgets

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
	"gitlab.com/tinyland/lab/hearth/pkg/sources"
	"gitlab.com/tinyland/lab/hearth/pkg/theme"
)

// Calendar shows a month grid with event markers. When active, the
// directional pad moves the selected day; left from the first of the
// month hands control back to the focus menu.
type Calendar struct {
	Core
	events   []sources.Event
	month    time.Time // first of the displayed month
	selected int       // day of month, 1-based
	now      func() time.Time
}

// NewCalendar builds the calendar widget showing the current month.
func NewCalendar() *Calendar {
	c := &Calendar{Core: NewCore("calendar"), now: time.Now}
	today := c.now()
	c.month = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.Local)
	c.selected = today.Day()
	return c
}

func (c *Calendar) Title() string { return "Calendar" }

func (c *Calendar) MinSize() (int, int) { return 24, 10 }

// Today snaps the view back to the current month with today selected.
func (c *Calendar) Today() {
	now := c.now()
	c.month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	c.selected = now.Day()
}

func (c *Calendar) daysInMonth() int {
	return c.month.AddDate(0, 1, -1).Day()
}

func (c *Calendar) Deliver(env message.Envelope) []message.Envelope {
	if resp, handled := c.Apply(env); handled {
		return resp
	}

	switch env.Type {
	case message.TypeData:
		if env.DataType == message.DataCalendar {
			var events []sources.Event
			if err := env.DecodePayload(&events); err == nil {
				c.events = events
			}
		}
		return nil

	case message.TypeCommand:
		resp := c.ack(env)
		switch env.Action {
		case message.ActionUp:
			if c.selected > 7 {
				c.selected -= 7
			}
		case message.ActionDown:
			if c.selected+7 <= c.daysInMonth() {
				c.selected += 7
			}
		case message.ActionLeft:
			if c.selected == 1 {
				return append(resp, c.returnToMenu())
			}
			c.selected--
		case message.ActionRight:
			if c.selected < c.daysInMonth() {
				c.selected++
			}
		}
		return resp
	}
	return nil
}

// eventsOn returns the events starting on a given day of the displayed
// month.
func (c *Calendar) eventsOn(day int) []sources.Event {
	date := c.month.AddDate(0, 0, day-1)
	var out []sources.Event
	for _, ev := range c.events {
		y, m, d := ev.Start.Date()
		if y == date.Year() && m == date.Month() && d == date.Day() {
			out = append(out, ev)
		}
	}
	return out
}

func (c *Calendar) View(th theme.Theme, width, height int) string {
	var b strings.Builder
	b.WriteString(dimStyle(th).Render("Su Mo Tu We Th Fr Sa"))
	b.WriteString("\n")

	today := c.now()
	selStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(th.Background)).
		Background(lipgloss.Color(th.Accent))
	todayStyle := accentStyle(th).Bold(true)
	markStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(th.StatusOK))

	// Leading blanks up to the month's first weekday.
	col := int(c.month.Weekday())
	b.WriteString(strings.Repeat("   ", col))

	for day := 1; day <= c.daysInMonth(); day++ {
		cell := fmt.Sprintf("%2d", day)
		switch {
		case c.Active() && day == c.selected:
			cell = selStyle.Render(cell)
		case day == today.Day() && c.month.Month() == today.Month() && c.month.Year() == today.Year():
			cell = todayStyle.Render(cell)
		case len(c.eventsOn(day)) > 0:
			cell = markStyle.Render(cell)
		}
		b.WriteString(cell)
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		} else {
			b.WriteString(" ")
		}
	}

	// Upcoming list under the grid when there is room.
	if extra := height - 12; extra > 0 {
		shown := 0
		for _, ev := range c.events {
			if shown == extra {
				break
			}
			if ev.Start.Before(today.Truncate(24 * time.Hour)) {
				continue
			}
			line := fmt.Sprintf("%s %s", ev.Start.Format("Jan 2"), ev.Summary)
			if width > 7 {
				line = ansi.Truncate(line, width-6, "…")
			}
			b.WriteString("\n")
			b.WriteString(dimStyle(th).Render(line))
			shown++
		}
	}

	title := c.month.Format("January 2006")
	return frame(&c.Core, th, title, b.String(), width, height)
}
