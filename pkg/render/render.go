package render

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"sync"

	"github.com/blacktop/go-termimg"
	"github.com/disintegration/imaging"
)

// Renderer converts images to escape sequences, memoizing by path and
// target size so the slideshow does not re-decode on every frame.
type Renderer struct {
	protocol Protocol

	mu    sync.Mutex
	memo  map[string]string
	order []string
	limit int
}

// NewRenderer builds a renderer for the given protocol.
func NewRenderer(protocol Protocol) *Renderer {
	return &Renderer{
		protocol: protocol,
		memo:     make(map[string]string),
		limit:    16,
	}
}

// Protocol returns the active graphics protocol.
func (r *Renderer) Protocol() Protocol { return r.protocol }

// RenderFile renders the image at path into a widthCells x heightCells
// region. The result is memoized.
func (r *Renderer) RenderFile(path string, widthCells, heightCells int) (string, error) {
	if r.protocol == ProtocolNone {
		return "", fmt.Errorf("render: image rendering disabled")
	}
	if widthCells < 1 || heightCells < 1 {
		return "", fmt.Errorf("render: target size %dx%d too small", widthCells, heightCells)
	}

	key := fmt.Sprintf("%s|%d|%dx%d", path, r.protocol, widthCells, heightCells)
	r.mu.Lock()
	if out, ok := r.memo[key]; ok {
		r.mu.Unlock()
		return out, nil
	}
	r.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("render: open %s: %w", path, err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("render: decode %s: %w", path, err)
	}

	out, err := r.render(img, widthCells, heightCells)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	if _, ok := r.memo[key]; !ok {
		if len(r.order) >= r.limit {
			oldest := r.order[0]
			r.order = r.order[1:]
			delete(r.memo, oldest)
		}
		r.memo[key] = out
		r.order = append(r.order, key)
	}
	r.mu.Unlock()
	return out, nil
}

func (r *Renderer) render(img image.Image, widthCells, heightCells int) (string, error) {
	switch r.protocol {
	case ProtocolKitty:
		return renderTermimg(img, termimg.Kitty, widthCells, heightCells)
	case ProtocolITerm2:
		return renderTermimg(img, termimg.ITerm2, widthCells, heightCells)
	case ProtocolSixel:
		return renderTermimg(img, termimg.Sixel, widthCells, heightCells)
	default:
		return renderHalfblocks(img, widthCells, heightCells)
	}
}

func renderTermimg(img image.Image, proto termimg.Protocol, widthCells, heightCells int) (string, error) {
	ti := termimg.New(img)
	if ti == nil {
		return "", fmt.Errorf("render: create termimg wrapper")
	}
	ti.Protocol(proto).Size(widthCells, heightCells).Scale(termimg.ScaleFit)
	return ti.Render()
}

// renderHalfblocks draws the image with U+2580 upper half blocks and
// 24-bit color. Each cell encodes two vertical pixels: top as foreground,
// bottom as background.
func renderHalfblocks(img image.Image, widthCells, heightCells int) (string, error) {
	fitted := imaging.Fit(img, widthCells, heightCells*2, imaging.Lanczos)
	bounds := fitted.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return "", nil
	}

	var b strings.Builder
	b.Grow(w * (h/2 + 1) * 30)

	for y := 0; y < h; y += 2 {
		if y > 0 {
			b.WriteString("\x1b[0m\n")
		}
		for x := 0; x < w; x++ {
			top := fitted.NRGBAAt(x, y)
			switch {
			case y+1 >= h || fitted.NRGBAAt(x, y+1).A == 0:
				if top.A == 0 {
					b.WriteString("\x1b[0m ")
					continue
				}
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[49m▀", top.R, top.G, top.B)
			case top.A == 0:
				bot := fitted.NRGBAAt(x, y+1)
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[49m▄", bot.R, bot.G, bot.B)
			default:
				bot := fitted.NRGBAAt(x, y+1)
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
					top.R, top.G, top.B, bot.R, bot.G, bot.B)
			}
		}
	}
	b.WriteString("\x1b[0m")
	return b.String(), nil
}
