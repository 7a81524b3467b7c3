package widgets

import (
	"fmt"
	"path/filepath"
	"time"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
	"gitlab.com/tinyland/lab/hearth/pkg/sources"
	"gitlab.com/tinyland/lab/hearth/pkg/theme"
)

// ImageRenderer converts an image file into a terminal escape string for
// a target cell region.
type ImageRenderer interface {
	RenderFile(path string, widthCells, heightCells int) (string, error)
}

// Photos is the slideshow widget. It advances on a timer; when active the
// directional pad browses manually, enter pauses, and left from the first
// photo hands control back to the focus menu.
type Photos struct {
	Core
	renderer ImageRenderer
	interval time.Duration

	paths    []string
	index    int
	paused   bool
	lastStep time.Time
}

// NewPhotos builds the photos widget. renderer may be nil, in which case
// only the filename caption is shown.
func NewPhotos(renderer ImageRenderer, interval time.Duration) *Photos {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Photos{Core: NewCore("photos"), renderer: renderer, interval: interval}
}

func (p *Photos) Title() string { return "Photos" }

func (p *Photos) MinSize() (int, int) { return 16, 6 }

func (p *Photos) Index() int   { return p.index }
func (p *Photos) Paused() bool { return p.paused }

// TogglePause flips slideshow pause. Wired to the "pause"/"resume" menu
// actions.
func (p *Photos) TogglePause() {
	p.paused = !p.paused
}

// Tick advances the slideshow when the interval has elapsed. The app
// calls this on its frame tick.
func (p *Photos) Tick(now time.Time) {
	if p.paused || len(p.paths) < 2 {
		return
	}
	if p.lastStep.IsZero() {
		p.lastStep = now
		return
	}
	if now.Sub(p.lastStep) >= p.interval {
		p.index = (p.index + 1) % len(p.paths)
		p.lastStep = now
	}
}

type photosSettings struct {
	Photos struct {
		IntervalSeconds int `json:"intervalSeconds"`
	} `json:"photos"`
}

func (p *Photos) Deliver(env message.Envelope) []message.Envelope {
	if resp, handled := p.Apply(env); handled {
		return resp
	}

	switch env.Type {
	case message.TypeData:
		switch env.DataType {
		case message.DataPhotos:
			var idx sources.PhotoIndex
			if err := env.DecodePayload(&idx); err == nil {
				p.paths = idx.Paths
				if p.index >= len(p.paths) {
					p.index = 0
				}
			}
		case message.DataSettings:
			var s photosSettings
			if err := env.DecodePayload(&s); err == nil && s.Photos.IntervalSeconds > 0 {
				p.interval = time.Duration(s.Photos.IntervalSeconds) * time.Second
			}
		}
		return nil

	case message.TypeCommand:
		resp := p.ack(env)
		switch env.Action {
		case message.ActionLeft, message.ActionUp:
			if p.index == 0 {
				return append(resp, p.returnToMenu())
			}
			p.index--
		case message.ActionRight, message.ActionDown:
			if len(p.paths) > 0 {
				p.index = (p.index + 1) % len(p.paths)
			}
		case message.ActionEnter:
			p.TogglePause()
		}
		return resp
	}
	return nil
}

func (p *Photos) View(th theme.Theme, width, height int) string {
	if len(p.paths) == 0 {
		body := dimStyle(th).Render("no photos found")
		return frame(&p.Core, th, p.Title(), body, width, height)
	}

	path := p.paths[p.index]
	caption := fmt.Sprintf("%s  (%d/%d)", filepath.Base(path), p.index+1, len(p.paths))
	if p.paused {
		caption += "  ⏸"
	}

	body := dimStyle(th).Render(caption)
	if p.renderer != nil && height > 5 {
		if img, err := p.renderer.RenderFile(path, width-4, height-5); err == nil {
			body = img + "\n" + body
		}
	}
	return frame(&p.Core, th, p.Title(), body, width, height)
}
