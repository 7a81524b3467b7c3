package widgets

import (
	"fmt"
	"time"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
	"gitlab.com/tinyland/lab/hearth/pkg/theme"
)

// Header is the banner across the top of the grid: a time-of-day greeting
// plus the family name. Display-only.
type Header struct {
	Core
	familyName string
	now        func() time.Time
}

// NewHeader builds the header widget.
func NewHeader(familyName string) *Header {
	return &Header{
		Core:       NewCore("header"),
		familyName: familyName,
		now:        time.Now,
	}
}

func (h *Header) Title() string { return "Home" }

func (h *Header) MinSize() (int, int) { return 20, 3 }

type headerSettings struct {
	Family struct {
		Name string `json:"name"`
	} `json:"family"`
}

func (h *Header) Deliver(env message.Envelope) []message.Envelope {
	if resp, handled := h.Apply(env); handled {
		return resp
	}
	if env.Type == message.TypeData && env.DataType == message.DataSettings {
		var s headerSettings
		if err := env.DecodePayload(&s); err == nil && s.Family.Name != "" {
			h.familyName = s.Family.Name
		}
	}
	return nil
}

// greeting picks a salutation from the hour of day.
func (h *Header) greeting() string {
	switch hour := h.now().Hour(); {
	case hour < 5:
		return "Good night"
	case hour < 12:
		return "Good morning"
	case hour < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

func (h *Header) View(th theme.Theme, width, height int) string {
	text := h.greeting()
	if h.familyName != "" {
		text = fmt.Sprintf("%s, %s", text, h.familyName)
	}
	body := accentStyle(th).Bold(true).Render(text)
	return frame(&h.Core, th, h.now().Format("Monday, January 2"), body, width, height)
}
