package widgets

import (
	"time"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
	"gitlab.com/tinyland/lab/hearth/pkg/theme"
)

// Clock shows the current time and date. It is display-only: no menu and
// no active mode, so it never consumes directional input.
type Clock struct {
	Core
	format24h bool
	now       func() time.Time
}

// NewClock builds the clock widget.
func NewClock(format24h bool) *Clock {
	return &Clock{
		Core:      NewCore("clock"),
		format24h: format24h,
		now:       time.Now,
	}
}

func (c *Clock) Title() string { return "Clock" }

func (c *Clock) MinSize() (int, int) { return 12, 4 }

// clockSettings is the slice of the settings tree the clock cares about.
type clockSettings struct {
	Clock struct {
		Format24h bool `json:"format24h"`
	} `json:"clock"`
}

func (c *Clock) Deliver(env message.Envelope) []message.Envelope {
	if resp, handled := c.Apply(env); handled {
		return resp
	}
	if env.Type == message.TypeData && env.DataType == message.DataSettings {
		var s clockSettings
		if err := env.DecodePayload(&s); err == nil {
			c.format24h = s.Clock.Format24h
		}
	}
	return nil
}

func (c *Clock) timeString() string {
	layout := "3:04 PM"
	if c.format24h {
		layout = "15:04"
	}
	return c.now().Format(layout)
}

func (c *Clock) View(th theme.Theme, width, height int) string {
	now := c.now()
	body := accentStyle(th).Bold(true).Render(c.timeString())
	if height >= 5 {
		body += "\n" + dimStyle(th).Render(now.Format("Mon Jan 2"))
	}
	return frame(&c.Core, th, c.Title(), body, width, height)
}
