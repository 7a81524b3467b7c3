package widgets

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
	"gitlab.com/tinyland/lab/hearth/pkg/sources"
	"gitlab.com/tinyland/lab/hearth/pkg/theme"
)

// Weather shows current conditions for the configured postal code. Until
// the first successful fetch it renders a "--°" placeholder instead of an
// error, so a flaky network never breaks the dashboard.
type Weather struct {
	Core
	cond    *sources.Conditions
	celsius bool
}

// NewWeather builds the weather widget. celsius selects the display unit.
func NewWeather(celsius bool) *Weather {
	return &Weather{Core: NewCore("weather"), celsius: celsius}
}

func (w *Weather) Title() string { return "Weather" }

func (w *Weather) MinSize() (int, int) { return 16, 4 }

type weatherSettings struct {
	Weather struct {
		Units string `json:"units"`
	} `json:"weather"`
}

func (w *Weather) Deliver(env message.Envelope) []message.Envelope {
	if resp, handled := w.Apply(env); handled {
		return resp
	}
	if env.Type != message.TypeData {
		return nil
	}
	switch env.DataType {
	case message.DataWeather:
		var cond sources.Conditions
		if err := env.DecodePayload(&cond); err == nil {
			w.cond = &cond
		}
	case message.DataSettings:
		var s weatherSettings
		if err := env.DecodePayload(&s); err == nil && s.Weather.Units != "" {
			w.celsius = !strings.EqualFold(s.Weather.Units, "imperial")
		}
	}
	return nil
}

func (w *Weather) tempString() string {
	if w.cond == nil {
		return "--°"
	}
	if w.celsius {
		return fmt.Sprintf("%.0f°C", w.cond.TempC)
	}
	return fmt.Sprintf("%.0f°F", w.cond.TempF)
}

func (w *Weather) View(th theme.Theme, width, height int) string {
	var lines []string
	lines = append(lines, accentStyle(th).Bold(true).Render(w.tempString()))
	if w.cond == nil {
		lines = append(lines, dimStyle(th).Render("waiting for data"))
	} else {
		lines = append(lines, w.cond.Description)
		if height >= 6 {
			hi, lo := w.cond.HighC, w.cond.LowC
			if !w.celsius {
				hi, lo = hi*9/5+32, lo*9/5+32
			}
			lines = append(lines, dimStyle(th).Render(fmt.Sprintf("H %.0f° / L %.0f°", hi, lo)))
		}
		if height >= 7 && w.cond.Location != "" {
			lines = append(lines, dimStyle(th).Render(w.cond.Location))
		}
	}
	return frame(&w.Core, th, w.Title(), strings.Join(lines, "\n"), width, height)
}
