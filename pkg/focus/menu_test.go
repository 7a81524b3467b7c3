package focus

import (
	"testing"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
)

// photosMenu is the canonical mixed menu: 2 action items, 3 view items.
func photosMenu(defaultIndex int) MenuConfig {
	return MenuConfig{
		DefaultIndex: defaultIndex,
		Items: []MenuItem{
			{Label: "Shuffle", Kind: ItemAction, Action: "shuffle"},
			{Label: "Pause", Kind: ItemAction, Action: "pause"},
			{Label: "Albums", Kind: ItemView, Action: "albums"},
			{Label: "Favorites", Kind: ItemView, Action: "favorites"},
			{Label: "Recent", Kind: ItemView, Action: "recent"},
		},
	}
}

func TestDefaultSelectionConfigured(t *testing.T) {
	m := NewMenu(photosMenu(3))
	if got := m.DefaultSelection(); got != 3 {
		t.Errorf("expected configured default index 3, got %d", got)
	}
}

func TestDefaultSelectionFallsBackToFirstAction(t *testing.T) {
	cfg := MenuConfig{
		DefaultIndex: -1,
		Items: []MenuItem{
			{Label: "Albums", Kind: ItemView, Action: "albums"},
			{Label: "Shuffle", Kind: ItemAction, Action: "shuffle"},
			{Label: "Pause", Kind: ItemAction, Action: "pause"},
		},
	}
	m := NewMenu(cfg)
	if got := m.DefaultSelection(); got != 1 {
		t.Errorf("expected first action item at 1, got %d", got)
	}
}

func TestDefaultSelectionOutOfRange(t *testing.T) {
	m := NewMenu(photosMenu(17))
	if got := m.DefaultSelection(); got != 0 {
		t.Errorf("expected fallback to first action (0) for out-of-range default, got %d", got)
	}
}

func TestOpenResetsSelection(t *testing.T) {
	m := NewMenu(photosMenu(1))
	m.Open()
	m.Down()
	m.Down()
	m.Close()

	m.Open()
	if got := m.Selected(); got != 1 {
		t.Errorf("expected selection reset to default 1 on reopen, got %d", got)
	}
}

func TestUpDownClampAtEnds(t *testing.T) {
	m := NewMenu(photosMenu(0))
	m.Open()

	m.Up()
	if m.Selected() != 0 {
		t.Errorf("expected clamp at top, got %d", m.Selected())
	}

	for i := 0; i < 10; i++ {
		m.Down()
	}
	if m.Selected() != 4 {
		t.Errorf("expected clamp at bottom (4), got %d", m.Selected())
	}
}

func TestSelectedItemEmptyMenu(t *testing.T) {
	m := NewMenu(MenuConfig{DefaultIndex: -1})
	if _, ok := m.SelectedItem(); ok {
		t.Error("expected no selected item in empty menu")
	}
}

func TestMenuOpensOnlyFromFocused(t *testing.T) {
	f := newFixture(t, "photos")
	cfg := photosMenu(0)
	f.mgr.Register("photos", &cfg) // re-register with a menu

	// Not focused: no menu.
	f.mgr.OpenMenu()
	if f.mgr.MenuOpen("photos") {
		t.Fatal("menu opened without focus")
	}

	// Active: still no menu; the overlay is reachable only from FOCUSED.
	f.mgr.Focus("photos")
	f.mgr.Activate()
	f.mgr.OpenMenu()
	if f.mgr.MenuOpen("photos") {
		t.Fatal("menu opened while widget active")
	}

	f.mgr.Deactivate()
	f.mgr.OpenMenu()
	if !f.mgr.MenuOpen("photos") {
		t.Error("expected menu open from focused state")
	}
}

func TestMenuConsumesDirectionalInput(t *testing.T) {
	f := newFixture(t, "photos")
	cfg := photosMenu(0)
	f.mgr.Register("photos", &cfg)
	f.mgr.Focus("photos")
	f.mgr.OpenMenu()

	if !f.mgr.RouteDirection(message.ActionDown) {
		t.Fatal("expected menu to consume down")
	}
	menu := f.mgr.Menu("photos")
	if menu.Selected() != 1 {
		t.Errorf("expected selection 1 after down, got %d", menu.Selected())
	}

	// The widget beneath must not see directional input while the menu
	// is open.
	if f.probes["photos"].moves != 0 {
		t.Error("directional input leaked past open menu")
	}
}

func TestMenuEnterSelectsAndCloses(t *testing.T) {
	f := newFixture(t, "photos")
	cfg := photosMenu(0)
	f.mgr.Register("photos", &cfg)
	f.mgr.Focus("photos")
	f.mgr.OpenMenu()

	var selected []MenuItem
	f.mgr.OnMenuSelect = func(id string, item MenuItem) {
		selected = append(selected, item)
	}

	f.mgr.RouteDirection(message.ActionDown) // -> Pause
	f.mgr.RouteDirection(message.ActionEnter)

	if f.mgr.MenuOpen("photos") {
		t.Error("expected menu closed after selection")
	}
	if len(selected) != 1 || selected[0].Action != "pause" {
		t.Errorf("expected pause selected, got %+v", selected)
	}
}

func TestMenuEscapeClosesBeforeUnwindingFocus(t *testing.T) {
	f := newFixture(t, "photos")
	cfg := photosMenu(0)
	f.mgr.Register("photos", &cfg)
	f.mgr.Focus("photos")
	f.mgr.OpenMenu()

	if !f.mgr.HandleEscape() {
		t.Fatal("expected escape consumed by open menu")
	}
	if f.mgr.MenuOpen("photos") {
		t.Error("expected menu closed")
	}
	if f.mgr.Focused() != "photos" {
		t.Error("expected focus retained after menu close")
	}
}

func TestReturnToMenuEventReopensMenu(t *testing.T) {
	f := newFixture(t, "photos")
	cfg := photosMenu(0)
	f.mgr.Register("photos", &cfg)
	f.mgr.Focus("photos")
	f.mgr.Activate()

	// Active widget reports Left at its home position.
	f.router.Receive(message.Event("photos", message.EventReturnToMenu))

	if f.mgr.Active() != "" {
		t.Error("expected widget deactivated by return-to-menu")
	}
	if !f.mgr.MenuOpen("photos") {
		t.Error("expected focus menu reopened")
	}
	if got := f.mgr.Menu("photos").Selected(); got != 0 {
		t.Errorf("expected default selection 0, got %d", got)
	}
}

func TestFocusMoveClosesOpenMenu(t *testing.T) {
	f := newFixture(t, "photos", "clock")
	cfg := photosMenu(0)
	f.mgr.Register("photos", &cfg)
	f.mgr.Focus("photos")
	f.mgr.OpenMenu()

	f.mgr.Focus("clock")

	if f.mgr.MenuOpen("photos") {
		t.Error("expected menu closed when focus moved away")
	}
}
