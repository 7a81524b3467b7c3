// Package layout maps widgets onto a named grid and resolves D-pad
// movement between cells. The grid is the spatial model behind focus
// navigation: pressing a direction moves focus to the nearest cell in
// that direction, measured between cell centers.
package layout

import (
	"sort"
)

// Direction is a D-pad movement.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Cell places one widget on the grid.
type Cell struct {
	WidgetID string
	Row      int
	Col      int
	RowSpan  int // minimum 1
	ColSpan  int // minimum 1
}

// Rect is a computed screen region for a cell.
type Rect struct {
	X, Y, W, H int
}

// Grid is a named arrangement of widget cells.
type Grid struct {
	Name  string
	Rows  int
	Cols  int
	Cells []Cell
}

// Presets returns the built-in grid arrangements.
//
//	dashboard: header spanning the top, calendar dominating the left,
//	           clock/weather/photos stacked on the right.
//	compact:   2x2 for small displays.
//	photos:    photo frame with a slim header.
func Presets() map[string]Grid {
	return map[string]Grid{
		"dashboard": {
			Name: "dashboard",
			Rows: 4,
			Cols: 3,
			Cells: []Cell{
				{WidgetID: "header", Row: 0, Col: 0, RowSpan: 1, ColSpan: 3},
				{WidgetID: "calendar", Row: 1, Col: 0, RowSpan: 3, ColSpan: 2},
				{WidgetID: "clock", Row: 1, Col: 2, RowSpan: 1, ColSpan: 1},
				{WidgetID: "weather", Row: 2, Col: 2, RowSpan: 1, ColSpan: 1},
				{WidgetID: "photos", Row: 3, Col: 2, RowSpan: 1, ColSpan: 1},
			},
		},
		"compact": {
			Name: "compact",
			Rows: 2,
			Cols: 2,
			Cells: []Cell{
				{WidgetID: "clock", Row: 0, Col: 0, RowSpan: 1, ColSpan: 1},
				{WidgetID: "weather", Row: 0, Col: 1, RowSpan: 1, ColSpan: 1},
				{WidgetID: "calendar", Row: 1, Col: 0, RowSpan: 1, ColSpan: 1},
				{WidgetID: "photos", Row: 1, Col: 1, RowSpan: 1, ColSpan: 1},
			},
		},
		"photos": {
			Name: "photos",
			Rows: 5,
			Cols: 1,
			Cells: []Cell{
				{WidgetID: "header", Row: 0, Col: 0, RowSpan: 1, ColSpan: 1},
				{WidgetID: "photos", Row: 1, Col: 0, RowSpan: 4, ColSpan: 1},
			},
		},
	}
}

// Preset returns a built-in grid by name.
func Preset(name string) (Grid, bool) {
	g, ok := Presets()[name]
	return g, ok
}

// CellFor returns the cell hosting the given widget.
func (g Grid) CellFor(id string) (Cell, bool) {
	for _, c := range g.Cells {
		if c.WidgetID == id {
			return c, true
		}
	}
	return Cell{}, false
}

// WidgetIDs returns widget ids in reading order (top-left to
// bottom-right).
func (g Grid) WidgetIDs() []string {
	cells := append([]Cell(nil), g.Cells...)
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	ids := make([]string, len(cells))
	for i, c := range cells {
		ids[i] = c.WidgetID
	}
	return ids
}

// Move resolves D-pad movement from a widget's cell. Candidates are the
// cells sharing a row (horizontal) or column (vertical) with the source;
// of those, the nearest center in the pressed direction wins. Returns
// false when the edge of the grid is reached.
func (g Grid) Move(from string, dir Direction) (string, bool) {
	src, ok := g.CellFor(from)
	if !ok {
		return "", false
	}
	srcR, srcC := center(src)

	bestID := ""
	bestDist := -1.0
	for _, c := range g.Cells {
		if c.WidgetID == from {
			continue
		}
		// Horizontal moves only consider cells sharing a row with the
		// source, vertical moves cells sharing a column. A full-width
		// header is above a cell below it, never "left" of it.
		switch dir {
		case Left, Right:
			if !spansOverlap(c.Row, c.RowSpan, src.Row, src.RowSpan) {
				continue
			}
		case Up, Down:
			if !spansOverlap(c.Col, c.ColSpan, src.Col, src.ColSpan) {
				continue
			}
		}
		r, col := center(c)
		dr, dc := r-srcR, col-srcC

		var forward, lateral float64
		switch dir {
		case Up:
			forward, lateral = -dr, abs(dc)
		case Down:
			forward, lateral = dr, abs(dc)
		case Left:
			forward, lateral = -dc, abs(dr)
		case Right:
			forward, lateral = dc, abs(dr)
		}
		if forward <= 0 {
			continue
		}
		// Lateral drift is penalized so movement prefers aligned cells.
		dist := forward + 2*lateral
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			bestID = c.WidgetID
		}
	}
	if bestID == "" {
		return "", false
	}
	return bestID, true
}

// Rects divides a width x height region among the grid's cells, with a
// fixed gap between them. Remainder rows/columns are given to the last
// row/column so the grid always fills the region.
func (g Grid) Rects(width, height, gap int) map[string]Rect {
	out := make(map[string]Rect, len(g.Cells))
	if g.Rows <= 0 || g.Cols <= 0 || width <= 0 || height <= 0 {
		return out
	}

	colW := (width - gap*(g.Cols-1)) / g.Cols
	rowH := (height - gap*(g.Rows-1)) / g.Rows
	if colW <= 0 || rowH <= 0 {
		return out
	}

	for _, c := range g.Cells {
		span := func(n int) int {
			if n < 1 {
				return 1
			}
			return n
		}
		rs, cs := span(c.RowSpan), span(c.ColSpan)

		r := Rect{
			X: c.Col * (colW + gap),
			Y: c.Row * (rowH + gap),
			W: cs*colW + (cs-1)*gap,
			H: rs*rowH + (rs-1)*gap,
		}
		// Cells touching the right/bottom edge absorb rounding remainder.
		if c.Col+cs == g.Cols {
			r.W = width - r.X
		}
		if c.Row+rs == g.Rows {
			r.H = height - r.Y
		}
		out[c.WidgetID] = r
	}
	return out
}

// center returns a cell's midpoint in grid coordinates.
func center(c Cell) (float64, float64) {
	rs, cs := c.RowSpan, c.ColSpan
	if rs < 1 {
		rs = 1
	}
	if cs < 1 {
		cs = 1
	}
	return float64(c.Row) + float64(rs)/2, float64(c.Col) + float64(cs)/2
}

// spansOverlap reports whether two [start, start+span) ranges intersect.
func spansOverlap(a, aSpan, b, bSpan int) bool {
	if aSpan < 1 {
		aSpan = 1
	}
	if bSpan < 1 {
		bSpan = 1
	}
	return a < b+bSpan && b < a+aSpan
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
