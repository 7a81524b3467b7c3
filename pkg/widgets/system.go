package widgets

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
	"gitlab.com/tinyland/lab/hearth/pkg/sources"
	"gitlab.com/tinyland/lab/hearth/pkg/theme"
)

// System shows kiosk host health: CPU, memory, disk, uptime. Display-only.
type System struct {
	Core
	stats *sources.SystemStats
}

// NewSystem builds the system widget.
func NewSystem() *System {
	return &System{Core: NewCore("system")}
}

func (s *System) Title() string { return "System" }

func (s *System) MinSize() (int, int) { return 20, 6 }

func (s *System) Deliver(env message.Envelope) []message.Envelope {
	if resp, handled := s.Apply(env); handled {
		return resp
	}
	if env.Type == message.TypeData && env.DataType == message.DataSystem {
		var stats sources.SystemStats
		if err := env.DecodePayload(&stats); err == nil {
			s.stats = &stats
		}
	}
	return nil
}

// gauge renders a fixed-width bar for a 0-100 percentage.
func gauge(th theme.Theme, label string, pct float64, width int) string {
	if width < 10 {
		width = 10
	}
	barW := width - 10
	filled := int(pct / 100 * float64(barW))
	if filled > barW {
		filled = barW
	}
	if filled < 0 {
		filled = 0
	}

	color := th.StatusOK
	switch {
	case pct >= 90:
		color = th.StatusError
	case pct >= 70:
		color = th.StatusWarn
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).
		Render(strings.Repeat("█", filled) + strings.Repeat("░", barW-filled))
	return fmt.Sprintf("%-4s %s %3.0f%%", label, bar, pct)
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	if days > 0 {
		return fmt.Sprintf("up %dd %dh", days, hours)
	}
	return fmt.Sprintf("up %dh %dm", hours, int(d.Minutes())%60)
}

func (s *System) View(th theme.Theme, width, height int) string {
	if s.stats == nil {
		body := dimStyle(th).Render("collecting…")
		return frame(&s.Core, th, s.Title(), body, width, height)
	}

	inner := width - 6
	lines := []string{
		gauge(th, "cpu", s.stats.CPUPercent, inner),
		gauge(th, "mem", s.stats.MemPercent, inner),
	}
	if height >= 7 {
		lines = append(lines, gauge(th, "disk", s.stats.DiskPercent, inner))
	}
	if height >= 8 && s.stats.Uptime > 0 {
		lines = append(lines, dimStyle(th).Render(formatUptime(s.stats.Uptime)))
	}
	return frame(&s.Core, th, s.Title(), strings.Join(lines, "\n"), width, height)
}
