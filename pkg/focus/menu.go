package focus

// ItemKind distinguishes the two flavors of focus menu entries.
type ItemKind int

const (
	// ItemAction triggers an immediate widget action when selected.
	ItemAction ItemKind = iota

	// ItemView switches the widget to a named view when selected.
	ItemView
)

// MenuItem is one entry in a widget's focus menu.
type MenuItem struct {
	Label  string
	Kind   ItemKind
	Action string
}

// MenuConfig declares a widget's focus menu. DefaultIndex selects the
// initially highlighted item; a negative value means unset, in which case
// the first action-type item is the default.
type MenuConfig struct {
	Items        []MenuItem
	DefaultIndex int
}

// Menu is the runtime state of a focus menu. It is owned by the focus
// manager; widgets only see open-menu/close-menu commands.
type Menu struct {
	cfg      MenuConfig
	open     bool
	selected int
}

// NewMenu builds a Menu from its configuration.
func NewMenu(cfg MenuConfig) *Menu {
	m := &Menu{cfg: cfg}
	m.selected = m.DefaultSelection()
	return m
}

// DefaultSelection returns the index highlighted when the menu opens:
// the configured DefaultIndex when valid, otherwise the first action-type
// item, otherwise 0.
func (m *Menu) DefaultSelection() int {
	if m.cfg.DefaultIndex >= 0 && m.cfg.DefaultIndex < len(m.cfg.Items) {
		return m.cfg.DefaultIndex
	}
	for i, item := range m.cfg.Items {
		if item.Kind == ItemAction {
			return i
		}
	}
	return 0
}

// Open marks the menu open and resets the selection to the default.
func (m *Menu) Open() {
	m.open = true
	m.selected = m.DefaultSelection()
}

// Close marks the menu closed.
func (m *Menu) Close() {
	m.open = false
}

// IsOpen reports whether the menu is showing.
func (m *Menu) IsOpen() bool {
	return m.open
}

// Up moves the selection toward the first item, stopping at the top.
func (m *Menu) Up() {
	if m.selected > 0 {
		m.selected--
	}
}

// Down moves the selection toward the last item, stopping at the bottom.
func (m *Menu) Down() {
	if m.selected < len(m.cfg.Items)-1 {
		m.selected++
	}
}

// Selected returns the index of the highlighted item.
func (m *Menu) Selected() int {
	return m.selected
}

// SelectedItem returns the highlighted item. The second return is false
// when the menu has no items.
func (m *Menu) SelectedItem() (MenuItem, bool) {
	if len(m.cfg.Items) == 0 {
		return MenuItem{}, false
	}
	return m.cfg.Items[m.selected], true
}

// Items returns the configured menu entries.
func (m *Menu) Items() []MenuItem {
	return m.cfg.Items
}
