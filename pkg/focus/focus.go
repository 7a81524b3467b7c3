// Package focus implements the shell's focus/active state machine. The
// shell is the single source of truth: widgets are responders that mirror
// the state they are commanded into, never independent owners of it.
//
// Per widget the states are IDLE -> FOCUSED -> ACTIVE, with an orthogonal
// menu-open overlay reachable only from FOCUSED. At most one widget is
// focused and at most one is active at any time; activating a widget
// first deactivates whichever widget held the active role. Every
// transition command carries a generation number so a widget can discard
// a transition that was superseded before it was applied.
package focus

import (
	"log/slog"
	"sync"

	"gitlab.com/tinyland/lab/hearth/pkg/bus"
	"gitlab.com/tinyland/lab/hearth/pkg/message"
)

// State is a widget's position in the focus lifecycle.
type State int

const (
	// StateIdle: not focused; the widget renders passively.
	StateIdle State = iota

	// StateFocused: visually highlighted, not yet receiving directional
	// input.
	StateFocused

	// StateActive: focused and receiving directional commands.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFocused:
		return "focused"
	case StateActive:
		return "active"
	}
	return "unknown"
}

// record is the shell-side registration for one widget.
type record struct {
	id   string
	menu *Menu // nil when the widget has no focus menu
}

// Manager owns focus/active state for all registered widgets and drives
// transitions by sending commands through the router.
//
// Router delivery is synchronous and a widget reply may re-enter the
// manager, so commands are queued under the lock and sent after it is
// released.
type Manager struct {
	logger *slog.Logger
	router *bus.Router

	mu      sync.Mutex
	recs    map[string]*record
	focused string
	active  string
	gen     uint64

	// OnMenuSelect is invoked when a menu item is chosen. Set once during
	// wiring, before input starts flowing.
	OnMenuSelect func(widgetID string, item MenuItem)
}

// outCmd is a queued transition command, stamped while the lock is held
// and sent after release.
type outCmd struct {
	id     string
	action message.Action
	gen    uint64
}

// NewManager creates a focus manager routing commands through router.
func NewManager(router *bus.Router, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger: logger,
		router: router,
		recs:   make(map[string]*record),
	}
}

// Register adds a widget to the focus registry. A non-nil menu config
// gives the widget a focus menu.
func (m *Manager) Register(id string, menuCfg *MenuConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := &record{id: id}
	if menuCfg != nil {
		rec.menu = NewMenu(*menuCfg)
	}
	m.recs[id] = rec
}

// Unregister removes a widget. If it held focus or the active role, the
// roles are cleared without sending exit commands (the widget is gone).
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.recs, id)
	if m.focused == id {
		m.focused = ""
	}
	if m.active == id {
		m.active = ""
	}
}

// State returns the widget's current lifecycle state.
func (m *Manager) State(id string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked(id)
}

func (m *Manager) stateLocked(id string) State {
	if id == "" {
		return StateIdle
	}
	if id == m.active {
		return StateActive
	}
	if id == m.focused {
		return StateFocused
	}
	return StateIdle
}

// Focused returns the focused widget id, or "" when nothing is focused.
func (m *Manager) Focused() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

// Active returns the active widget id, or "" when nothing is active.
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Generation returns the current transition generation.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// MenuOpen reports whether the widget's focus menu is showing.
func (m *Manager) MenuOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	return ok && rec.menu != nil && rec.menu.IsOpen()
}

// Menu returns the widget's menu state for rendering, or nil.
func (m *Manager) Menu(id string) *Menu {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.recs[id]; ok {
		return rec.menu
	}
	return nil
}

// Focus moves focus to the given widget. The previous focus holder gets
// exit-focus (its menu closed first if open), and an active widget is
// deactivated: focus movement implies leaving active mode.
func (m *Manager) Focus(id string) {
	m.mu.Lock()

	if _, ok := m.recs[id]; !ok {
		m.mu.Unlock()
		m.logger.Warn("focus request for unregistered widget", "widget", id)
		return
	}
	if m.focused == id {
		m.mu.Unlock()
		return
	}

	var out []outCmd
	if m.active != "" {
		out = m.queueLocked(out, m.active, message.ActionExitActive)
		m.active = ""
	}
	if m.focused != "" {
		out = m.closeMenuLocked(out, m.focused)
		out = m.queueLocked(out, m.focused, message.ActionExitFocus)
	}
	m.focused = id
	out = m.queueLocked(out, id, message.ActionEnterFocus)

	m.mu.Unlock()
	m.send(out)
}

// ClearFocus drops focus entirely, deactivating first if needed.
func (m *Manager) ClearFocus() {
	m.mu.Lock()

	var out []outCmd
	if m.active != "" {
		out = m.queueLocked(out, m.active, message.ActionExitActive)
		m.active = ""
	}
	if m.focused != "" {
		out = m.closeMenuLocked(out, m.focused)
		out = m.queueLocked(out, m.focused, message.ActionExitFocus)
		m.focused = ""
	}

	m.mu.Unlock()
	m.send(out)
}

// Activate promotes the focused widget to active. Only a focused widget
// may become active, and activation displaces any current active widget:
// the single-active invariant is enforced here, not trusted to widgets.
func (m *Manager) Activate() {
	m.mu.Lock()

	if m.focused == "" || m.active == m.focused {
		m.mu.Unlock()
		return
	}
	if rec := m.recs[m.focused]; rec != nil && rec.menu != nil && rec.menu.IsOpen() {
		// A menu overlay absorbs input; the widget beneath cannot activate.
		m.mu.Unlock()
		return
	}

	var out []outCmd
	if m.active != "" {
		out = m.queueLocked(out, m.active, message.ActionExitActive)
	}
	m.active = m.focused
	out = m.queueLocked(out, m.active, message.ActionEnterActive)

	m.mu.Unlock()
	m.send(out)
}

// Deactivate demotes the active widget back to focused.
func (m *Manager) Deactivate() {
	m.mu.Lock()
	var out []outCmd
	if m.active != "" {
		out = m.queueLocked(out, m.active, message.ActionExitActive)
		m.active = ""
	}
	m.mu.Unlock()
	m.send(out)
}

// OpenMenu shows the focused widget's menu. It is reachable only from
// FOCUSED: an active widget has to leave active mode first.
func (m *Manager) OpenMenu() {
	m.mu.Lock()

	if m.focused == "" || m.active == m.focused {
		m.mu.Unlock()
		return
	}
	rec := m.recs[m.focused]
	if rec == nil || rec.menu == nil || rec.menu.IsOpen() {
		m.mu.Unlock()
		return
	}
	rec.menu.Open()
	out := m.queueLocked(nil, m.focused, message.ActionOpenMenu)

	m.mu.Unlock()
	m.send(out)
}

// CloseMenu hides the focused widget's menu.
func (m *Manager) CloseMenu() {
	m.mu.Lock()
	out := m.closeMenuLocked(nil, m.focused)
	m.mu.Unlock()
	m.send(out)
}

func (m *Manager) closeMenuLocked(out []outCmd, id string) []outCmd {
	rec := m.recs[id]
	if rec == nil || rec.menu == nil || !rec.menu.IsOpen() {
		return out
	}
	rec.menu.Close()
	return m.queueLocked(out, id, message.ActionCloseMenu)
}

// RouteDirection routes a directional action according to the current
// state: an open menu consumes up/down/left/enter, an active widget
// receives the action as a command, and enter on a merely focused widget
// activates it. The return value reports whether the action was consumed;
// when false the caller should treat it as grid navigation.
func (m *Manager) RouteDirection(action message.Action) bool {
	m.mu.Lock()

	if m.focused != "" {
		if rec := m.recs[m.focused]; rec != nil && rec.menu != nil && rec.menu.IsOpen() {
			return m.routeMenu(rec, action) // unlocks
		}
	}

	if m.active != "" {
		out := m.queueLocked(nil, m.active, action)
		m.mu.Unlock()
		m.send(out)
		return true
	}

	if action == message.ActionEnter && m.focused != "" {
		m.mu.Unlock()
		m.Activate()
		return true
	}

	m.mu.Unlock()
	return false
}

// routeMenu handles directional input while a menu is open. Called with
// m.mu held; always unlocks before returning.
func (m *Manager) routeMenu(rec *record, action message.Action) bool {
	switch action {
	case message.ActionUp:
		rec.menu.Up()
		m.mu.Unlock()
	case message.ActionDown:
		rec.menu.Down()
		m.mu.Unlock()
	case message.ActionLeft:
		out := m.closeMenuLocked(nil, rec.id)
		m.mu.Unlock()
		m.send(out)
	case message.ActionEnter:
		item, ok := rec.menu.SelectedItem()
		if !ok {
			m.mu.Unlock()
			return true
		}
		out := m.closeMenuLocked(nil, rec.id)
		m.mu.Unlock()
		m.send(out)
		if cb := m.OnMenuSelect; cb != nil {
			cb(rec.id, item)
		}
	default:
		// Right is absorbed: the menu owns horizontal input while open.
		m.mu.Unlock()
	}
	return true
}

// HandleEscape unwinds one layer of state: menu -> focused, active ->
// focused. Returns false when there was nothing to unwind, letting the
// caller decide what escape means at the top level.
func (m *Manager) HandleEscape() bool {
	m.mu.Lock()

	if m.focused != "" {
		if rec := m.recs[m.focused]; rec != nil && rec.menu != nil && rec.menu.IsOpen() {
			out := m.closeMenuLocked(nil, m.focused)
			m.mu.Unlock()
			m.send(out)
			return true
		}
	}
	if m.active != "" {
		out := m.queueLocked(nil, m.active, message.ActionExitActive)
		m.active = ""
		m.mu.Unlock()
		m.send(out)
		return true
	}

	m.mu.Unlock()
	return false
}

// HandleEvent consumes widget-originated events forwarded by the router.
func (m *Manager) HandleEvent(env message.Envelope) {
	switch env.Event {
	case message.EventWidgetReady:
		m.resync(env.WidgetID)
	case message.EventReturnToMenu:
		m.returnToMenu(env.WidgetID)
	case message.EventError:
		m.logger.Warn("widget reported error", "widget", env.WidgetID, "payload", string(env.Payload))
	}
}

// returnToMenu handles an active widget signalling that Left at its home
// position should reopen the focus menu rather than move its internal
// selection.
func (m *Manager) returnToMenu(id string) {
	m.mu.Lock()
	if m.active != id {
		m.mu.Unlock()
		return
	}
	out := m.queueLocked(nil, id, message.ActionExitActive)
	m.active = ""
	m.mu.Unlock()
	m.send(out)

	m.OpenMenu()
}

// resync pushes the authoritative state to a widget that announced
// readiness; the router has already replayed unacked commands, this makes
// the end state explicit regardless of what the widget missed.
func (m *Manager) resync(id string) {
	m.mu.Lock()
	state := m.stateLocked(id)
	menuOpen := false
	if rec := m.recs[id]; rec != nil && rec.menu != nil {
		menuOpen = rec.menu.IsOpen()
	}
	m.mu.Unlock()

	env, err := message.Data(id, message.DataFocusState, map[string]any{
		"state":    state.String(),
		"menuOpen": menuOpen,
	})
	if err != nil {
		m.logger.Warn("encode focus resync", "widget", id, "error", err)
		return
	}
	if err := m.router.Send(id, env); err != nil {
		m.logger.Debug("focus resync skipped", "widget", id, "error", err)
	}
}

// queueLocked stamps the next generation on a command and queues it.
// Caller must hold m.mu.
func (m *Manager) queueLocked(out []outCmd, id string, action message.Action) []outCmd {
	m.gen++
	return append(out, outCmd{id: id, action: action, gen: m.gen})
}

// send delivers queued commands in order, outside the lock.
func (m *Manager) send(out []outCmd) {
	for _, c := range out {
		env := message.Command(c.id, c.action)
		env.Gen = c.gen
		if err := m.router.Send(c.id, env); err != nil {
			m.logger.Warn("focus command undeliverable", "widget", c.id, "action", c.action, "error", err)
		}
	}
}
