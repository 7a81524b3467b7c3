package layout

import "testing"

func dashboard(t *testing.T) Grid {
	t.Helper()
	g, ok := Preset("dashboard")
	if !ok {
		t.Fatal("dashboard preset missing")
	}
	return g
}

func TestPresetUnknown(t *testing.T) {
	if _, ok := Preset("cinema"); ok {
		t.Error("expected unknown preset to be absent")
	}
}

func TestWidgetIDsReadingOrder(t *testing.T) {
	g := dashboard(t)
	ids := g.WidgetIDs()
	if len(ids) != 5 {
		t.Fatalf("expected 5 widgets, got %d", len(ids))
	}
	if ids[0] != "header" {
		t.Errorf("expected header first, got %q", ids[0])
	}
	if ids[len(ids)-1] != "photos" {
		t.Errorf("expected photos last, got %q", ids[len(ids)-1])
	}
}

func TestMoveBetweenStackedCells(t *testing.T) {
	g := dashboard(t)

	got, ok := g.Move("clock", Down)
	if !ok || got != "weather" {
		t.Errorf("clock down: expected weather, got %q %v", got, ok)
	}
	got, ok = g.Move("weather", Down)
	if !ok || got != "photos" {
		t.Errorf("weather down: expected photos, got %q %v", got, ok)
	}
	got, ok = g.Move("photos", Up)
	if !ok || got != "weather" {
		t.Errorf("photos up: expected weather, got %q %v", got, ok)
	}
}

func TestMoveAcrossColumns(t *testing.T) {
	g := dashboard(t)

	got, ok := g.Move("clock", Left)
	if !ok || got != "calendar" {
		t.Errorf("clock left: expected calendar, got %q %v", got, ok)
	}
	got, ok = g.Move("calendar", Right)
	if !ok {
		t.Fatal("calendar right: expected a move")
	}
	if got != "weather" && got != "clock" && got != "photos" {
		t.Errorf("calendar right: expected right-column widget, got %q", got)
	}
}

func TestMoveStaysInLane(t *testing.T) {
	g := dashboard(t)

	// The full-width header sits above clock; Left must not reach it.
	got, ok := g.Move("clock", Left)
	if !ok || got != "calendar" {
		t.Errorf("clock left: expected calendar, got %q %v", got, ok)
	}
	got, ok = g.Move("clock", Up)
	if !ok || got != "header" {
		t.Errorf("clock up: expected header, got %q %v", got, ok)
	}
	// Calendar reaches the bottom row; nothing lies below it.
	if _, ok := g.Move("calendar", Down); ok {
		t.Error("expected no move down from calendar")
	}
}

func TestMoveAtEdgeFails(t *testing.T) {
	g := dashboard(t)

	if _, ok := g.Move("header", Up); ok {
		t.Error("expected no move up from header")
	}
	if _, ok := g.Move("calendar", Left); ok {
		t.Error("expected no move left from calendar")
	}
}

func TestMoveUnknownWidget(t *testing.T) {
	g := dashboard(t)
	if _, ok := g.Move("ghost", Down); ok {
		t.Error("expected no move from unknown widget")
	}
}

func TestRectsFillRegion(t *testing.T) {
	g := dashboard(t)
	rects := g.Rects(120, 40, 1)

	if len(rects) != 5 {
		t.Fatalf("expected 5 rects, got %d", len(rects))
	}

	// Header spans the full width.
	h := rects["header"]
	if h.X != 0 || h.W != 120 {
		t.Errorf("header should span full width, got %+v", h)
	}

	// Bottom-right cell reaches the region edges.
	p := rects["photos"]
	if p.X+p.W != 120 {
		t.Errorf("photos should reach right edge, got %+v", p)
	}
	if p.Y+p.H != 40 {
		t.Errorf("photos should reach bottom edge, got %+v", p)
	}

	for id, r := range rects {
		if r.W <= 0 || r.H <= 0 {
			t.Errorf("rect for %q has non-positive size: %+v", id, r)
		}
	}
}

func TestRectsTinyRegionEmpty(t *testing.T) {
	g := dashboard(t)
	if rects := g.Rects(2, 2, 1); len(rects) != 0 {
		t.Errorf("expected no rects for tiny region, got %d", len(rects))
	}
}

func TestAllPresetsConsistent(t *testing.T) {
	for name, g := range Presets() {
		if g.Name != name {
			t.Errorf("preset %q has mismatched name %q", name, g.Name)
		}
		for _, c := range g.Cells {
			if c.Row < 0 || c.Col < 0 || c.Row >= g.Rows || c.Col >= g.Cols {
				t.Errorf("preset %q: cell %q out of bounds", name, c.WidgetID)
			}
		}
	}
}
