// Package app is the Bubbletea root of the dashboard: the Elm-architecture
// model that owns the widget grid, the envelope router, the focus manager,
// and the settings controller, and translates key and mouse input into
// focus commands.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/hearth/pkg/settings"
	"gitlab.com/tinyland/lab/hearth/pkg/sources"
)

// TickEvent drives the render refresh and the photo slideshow timer.
type TickEvent struct {
	Time time.Time
}

// DataUpdateEvent carries a source fetch result into the update loop,
// where it is wrapped in a data envelope and routed to its widget.
type DataUpdateEvent struct {
	Update sources.Update
}

// SettingsChangedEvent carries a settings change (local or remote) into
// the update loop.
type SettingsChangedEvent struct {
	Change settings.Change
}

// TickCmd schedules the next TickEvent.
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickEvent{Time: t}
	})
}

// waitForUpdate blocks on the source updates channel and re-enters the
// update loop with the next result.
func waitForUpdate(ch <-chan sources.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return DataUpdateEvent{Update: u}
	}
}

// waitForSettings blocks on the settings change channel.
func waitForSettings(ch <-chan settings.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return SettingsChangedEvent{Change: c}
	}
}
