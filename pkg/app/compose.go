package app

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/hearth/pkg/layout"
)

// compose assembles pre-rendered widget tiles into one screen-sized
// string. Rects come from the grid and never overlap, so each terminal
// row is built left to right from the tiles that cover it, with plain
// spaces filling the gaps.
func compose(tiles map[string]string, rects map[string]layout.Rect, width, height int) string {
	type placed struct {
		rect  layout.Rect
		lines []string
	}

	var items []placed
	for id, content := range tiles {
		rect, ok := rects[id]
		if !ok || content == "" {
			continue
		}
		items = append(items, placed{rect: rect, lines: strings.Split(content, "\n")})
	}

	rows := make([]string, height)
	for y := 0; y < height; y++ {
		var b strings.Builder
		x := 0

		// Tiles covering this row, left to right.
		for {
			next := -1
			for i, it := range items {
				if y < it.rect.Y || y >= it.rect.Y+it.rect.H || it.rect.X < x {
					continue
				}
				if next == -1 || it.rect.X < items[next].rect.X {
					next = i
				}
			}
			if next == -1 {
				break
			}

			it := items[next]
			if it.rect.X > x {
				b.WriteString(strings.Repeat(" ", it.rect.X-x))
			}

			line := ""
			if idx := y - it.rect.Y; idx < len(it.lines) {
				line = it.lines[idx]
			}
			b.WriteString(padLine(line, it.rect.W))
			x = it.rect.X + it.rect.W
		}

		if x < width {
			b.WriteString(strings.Repeat(" ", width-x))
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

// padLine pads or truncates a possibly styled line to an exact printed
// width.
func padLine(line string, width int) string {
	w := ansi.StringWidth(line)
	switch {
	case w == width:
		return line
	case w > width:
		return ansi.Truncate(line, width, "")
	default:
		return line + strings.Repeat(" ", width-w)
	}
}
