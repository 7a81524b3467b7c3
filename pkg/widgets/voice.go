package widgets

import (
	"strings"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
	"gitlab.com/tinyland/lab/hearth/pkg/theme"
)

// Voice shows the voice assistant's microphone state. Enter while active
// toggles listening; the actual audio pipeline lives outside the
// dashboard and is driven through the OnToggle hook.
type Voice struct {
	Core
	listening bool

	// OnToggle is called after every listening state change.
	OnToggle func(listening bool)
}

// NewVoice builds the voice widget.
func NewVoice() *Voice {
	return &Voice{Core: NewCore("voice")}
}

func (v *Voice) Title() string { return "Voice" }

func (v *Voice) MinSize() (int, int) { return 14, 4 }

func (v *Voice) Listening() bool { return v.listening }

// Toggle flips the listening state and fires OnToggle. Used by both the
// enter key while active and the focus menu action.
func (v *Voice) Toggle() {
	v.listening = !v.listening
	if v.OnToggle != nil {
		v.OnToggle(v.listening)
	}
}

func (v *Voice) Deliver(env message.Envelope) []message.Envelope {
	if resp, handled := v.Apply(env); handled {
		return resp
	}
	if env.Type != message.TypeCommand {
		return nil
	}

	resp := v.ack(env)
	switch env.Action {
	case message.ActionEnter:
		v.Toggle()
	case message.ActionLeft:
		return append(resp, v.returnToMenu())
	}
	return resp
}

func (v *Voice) View(th theme.Theme, width, height int) string {
	var lines []string
	if v.listening {
		lines = append(lines,
			accentStyle(th).Bold(true).Render("● listening"),
			dimStyle(th).Render("press enter to stop"))
	} else {
		lines = append(lines,
			dimStyle(th).Render("○ idle"),
			dimStyle(th).Render("press enter to talk"))
	}
	if height-2 < len(lines) && height > 2 {
		lines = lines[:height-2]
	}
	return frame(&v.Core, th, v.Title(), strings.Join(lines, "\n"), width, height)
}
