package app

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/hearth/pkg/bus"
	"gitlab.com/tinyland/lab/hearth/pkg/config"
	"gitlab.com/tinyland/lab/hearth/pkg/focus"
	"gitlab.com/tinyland/lab/hearth/pkg/layout"
	"gitlab.com/tinyland/lab/hearth/pkg/message"
	"gitlab.com/tinyland/lab/hearth/pkg/settings"
	"gitlab.com/tinyland/lab/hearth/pkg/sources"
	"gitlab.com/tinyland/lab/hearth/pkg/theme"
	"gitlab.com/tinyland/lab/hearth/pkg/widgets"
)

// sourceTarget maps a source name to the widget and data type its results
// are delivered as.
var sourceTargets = map[string]struct {
	widgetID string
	dataType message.DataType
}{
	"weather":  {"weather", message.DataWeather},
	"calendar": {"calendar", message.DataCalendar},
	"photos":   {"photos", message.DataPhotos},
	"system":   {"system", message.DataSystem},
}

// Model is the bubbletea root model.
type Model struct {
	cfg      config.Config
	logger   *slog.Logger
	router   *bus.Router
	focus    *focus.Manager
	settings *settings.Controller

	grid    layout.Grid
	widgets map[string]widgets.Widget
	photos  *widgets.Photos

	th   theme.Theme
	keys KeyMap
	help help.Model
	tick time.Duration

	width, height int
	layoutDirty   bool

	updates <-chan sources.Update
	changes chan settings.Change
}

// NewModel wires the router, focus manager, and widgets together. Every
// widget is attached to the router and announced as ready so the router
// replays anything queued for it.
func NewModel(cfg config.Config, logger *slog.Logger, ctrl *settings.Controller,
	updates <-chan sources.Update, ws ...widgets.Widget) Model {

	zone.NewGlobal()

	router := bus.New(logger)
	fm := focus.NewManager(router, logger)
	router.Handle(message.TypeEvent, fm.HandleEvent)

	m := Model{
		cfg:      cfg,
		logger:   logger,
		router:   router,
		focus:    fm,
		settings: ctrl,
		widgets:  make(map[string]widgets.Widget),
		th:       theme.Get(ctrl.GetString("display.theme", cfg.Theme.Name)),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		tick:     cfg.Refresh(),
		updates:  updates,
		changes:  make(chan settings.Change, 16),
	}

	preset := ctrl.GetString("system.gridPreset", cfg.Layout.Preset)
	grid, ok := layout.Preset(preset)
	if !ok {
		logger.Warn("unknown grid preset, using dashboard", "preset", preset)
		grid, _ = layout.Preset("dashboard")
	}
	m.grid = grid

	for _, w := range ws {
		m.widgets[w.ID()] = w
		router.Attach(w.ID(), w.Deliver)
		fm.Register(w.ID(), menuFor(w))
		router.Receive(w.Ready())
		if p, isPhotos := w.(*widgets.Photos); isPhotos {
			m.photos = p
		}
	}

	fm.OnMenuSelect = func(widgetID string, item focus.MenuItem) {
		m.handleMenuSelect(widgetID, item)
	}

	ctrl.Subscribe(func(ch settings.Change) {
		select {
		case m.changes <- ch:
		default:
			logger.Warn("settings change dropped, channel full", "path", ch.Path)
		}
	})

	// Seed every widget with the current settings tree.
	m.broadcastSettings()
	return m
}

// menuFor builds the focus menu for widgets that have one. Widgets without
// interactive content get no menu; enter activates them directly.
func menuFor(w widgets.Widget) *focus.MenuConfig {
	switch w.(type) {
	case *widgets.Photos:
		return &focus.MenuConfig{
			Items: []focus.MenuItem{
				{Label: "Slideshow", Kind: focus.ItemView},
				{Label: "Pause", Kind: focus.ItemAction, Action: "toggle-pause"},
			},
			DefaultIndex: -1,
		}
	case *widgets.Calendar:
		return &focus.MenuConfig{
			Items: []focus.MenuItem{
				{Label: "Browse", Kind: focus.ItemView},
				{Label: "Today", Kind: focus.ItemAction, Action: "today"},
			},
			DefaultIndex: -1,
		}
	case *widgets.Voice:
		return &focus.MenuConfig{
			Items: []focus.MenuItem{
				{Label: "Talk", Kind: focus.ItemView},
				{Label: "Toggle listening", Kind: focus.ItemAction, Action: "toggle-listening"},
			},
			DefaultIndex: -1,
		}
	default:
		return nil
	}
}

func (m *Model) handleMenuSelect(widgetID string, item focus.MenuItem) {
	if item.Kind == focus.ItemView {
		m.focus.Activate()
		return
	}
	switch item.Action {
	case "toggle-pause":
		if m.photos != nil {
			m.photos.TogglePause()
		}
	case "today":
		if c, ok := m.widgets["calendar"].(*widgets.Calendar); ok {
			c.Today()
		}
	case "toggle-listening":
		if v, ok := m.widgets["voice"].(*widgets.Voice); ok {
			v.Toggle()
		}
	default:
		m.logger.Warn("unknown menu action", "widget", widgetID, "action", item.Action)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{TickCmd(m.tick), waitForSettings(m.changes)}
	if m.updates != nil {
		cmds = append(cmds, waitForUpdate(m.updates))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layoutDirty = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case TickEvent:
		if m.photos != nil {
			m.photos.Tick(msg.Time)
		}
		return m, TickCmd(m.tick)

	case DataUpdateEvent:
		m.handleData(msg.Update)
		return m, waitForUpdate(m.updates)

	case SettingsChangedEvent:
		m.applySettings()
		return m, waitForSettings(m.changes)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, k.Up):
		m.routeDirection(message.ActionUp, layout.Up)
	case key.Matches(msg, k.Down):
		m.routeDirection(message.ActionDown, layout.Down)
	case key.Matches(msg, k.Left):
		m.routeDirection(message.ActionLeft, layout.Left)
	case key.Matches(msg, k.Right):
		m.routeDirection(message.ActionRight, layout.Right)

	case key.Matches(msg, k.Enter):
		if m.focus.Focused() == "" {
			m.focusFirst()
		} else {
			m.focus.RouteDirection(message.ActionEnter)
		}

	case key.Matches(msg, k.Escape):
		if !m.focus.HandleEscape() && m.focus.Focused() != "" {
			m.focus.ClearFocus()
		}

	case key.Matches(msg, k.Menu):
		m.focus.OpenMenu()

	case key.Matches(msg, k.Tab):
		m.cycleFocus()
	}
	return m, nil
}

// routeDirection gives the focus layer first claim on a directional key
// (open menus and active widgets consume it); otherwise it moves grid
// focus spatially.
func (m *Model) routeDirection(action message.Action, dir layout.Direction) {
	if m.focus.RouteDirection(action) {
		return
	}
	current := m.focus.Focused()
	if current == "" {
		m.focusFirst()
		return
	}
	if next, ok := m.grid.Move(current, dir); ok {
		m.focus.Focus(next)
	}
}

func (m *Model) focusFirst() {
	ids := m.grid.WidgetIDs()
	for _, id := range ids {
		if _, ok := m.widgets[id]; ok {
			m.focus.Focus(id)
			return
		}
	}
}

func (m *Model) cycleFocus() {
	ids := m.grid.WidgetIDs()
	if len(ids) == 0 {
		return
	}
	current := m.focus.Focused()
	idx := 0
	for i, id := range ids {
		if id == current {
			idx = (i + 1) % len(ids)
			break
		}
	}
	m.focus.Focus(ids[idx])
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for id := range m.widgets {
		if zone.Get(id).InBounds(msg) {
			if m.focus.Focused() == id {
				m.focus.RouteDirection(message.ActionEnter)
			} else {
				m.focus.Focus(id)
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) handleData(u sources.Update) {
	if u.Error != nil {
		m.logger.Warn("source fetch failed", "source", u.Source, "error", u.Error)
		return
	}
	target, ok := sourceTargets[u.Source]
	if !ok {
		m.logger.Debug("update from unmapped source", "source", u.Source)
		return
	}
	env, err := message.Data(target.widgetID, target.dataType, u.Data)
	if err != nil {
		m.logger.Warn("encode source payload", "source", u.Source, "error", err)
		return
	}
	if err := m.router.Send(target.widgetID, env); err != nil {
		m.logger.Debug("widget not attached for update", "source", u.Source, "error", err)
	}
}

// applySettings reacts to a settings change: restyle, swap layout preset,
// and re-seed every widget with the new tree.
func (m *Model) applySettings() {
	name := m.settings.GetString("display.theme", m.th.Name)
	if name != m.th.Name {
		theme.SetCurrent(name)
		m.th = theme.Get(name)
	}

	preset := m.settings.GetString("system.gridPreset", m.grid.Name)
	if preset != m.grid.Name {
		if grid, ok := layout.Preset(preset); ok {
			m.grid = grid
			m.layoutDirty = true
		}
	}

	m.broadcastSettings()
}

func (m *Model) broadcastSettings() {
	env, err := message.Data("all", message.DataSettings, m.settings.Snapshot())
	if err != nil {
		m.logger.Warn("encode settings snapshot", "error", err)
		return
	}
	m.router.Broadcast(env)
}
