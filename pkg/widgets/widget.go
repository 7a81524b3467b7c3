// Package widgets implements the dashboard tiles. Each widget is a
// command responder: it receives command and data envelopes from the
// router, mirrors the focus lifecycle into local state, and renders
// itself from whatever data it last received. Widgets never talk to each
// other; everything goes through the router.
package widgets

import (
	"gitlab.com/tinyland/lab/hearth/pkg/message"
	"gitlab.com/tinyland/lab/hearth/pkg/theme"
)

// Widget is one dashboard tile. Deliver is the router attachment point:
// it consumes an envelope and returns any reply envelopes (acks, events).
type Widget interface {
	ID() string
	Title() string
	Deliver(env message.Envelope) []message.Envelope
	Ready() message.Envelope
	View(th theme.Theme, width, height int) string
	MinSize() (width, height int)
}

// Core carries the lifecycle state every widget shares: the focused and
// active flags commanded by the focus manager, and the generation of the
// last applied transition. Widgets embed Core and call Apply first in
// their Deliver method.
type Core struct {
	id      string
	focused bool
	active  bool
	gen     uint64
}

// NewCore builds the shared state for a widget with the given id.
func NewCore(id string) Core {
	return Core{id: id}
}

func (c *Core) ID() string    { return c.id }
func (c *Core) Focused() bool { return c.focused }
func (c *Core) Active() bool  { return c.active }

// Ready builds the widget-ready announcement sent once after the widget
// is attached to the router. The router responds by replaying anything
// the widget missed.
func (c *Core) Ready() message.Envelope {
	return message.Event(c.id, message.EventWidgetReady)
}

// returnToMenu builds the event a widget emits when navigation leaves its
// content on the left edge.
func (c *Core) returnToMenu() message.Envelope {
	return message.Event(c.id, message.EventReturnToMenu)
}

// focusStatePayload mirrors the resync data message the focus manager
// sends after a widget-ready event.
type focusStatePayload struct {
	State    string `json:"state"`
	MenuOpen bool   `json:"menuOpen"`
}

// Apply consumes the envelopes common to all widgets: lifecycle
// transitions, focus-state resyncs, and the directional gate. It returns
// reply envelopes and whether the envelope was fully handled. Stale
// transitions (generation lower than the last applied one) are acked but
// not applied.
func (c *Core) Apply(env message.Envelope) ([]message.Envelope, bool) {
	switch env.Type {
	case message.TypeCommand:
		return c.applyCommand(env)
	case message.TypeData:
		if env.DataType == message.DataFocusState {
			var p focusStatePayload
			if err := env.DecodePayload(&p); err == nil {
				c.focused = p.State == "focused" || p.State == "active"
				c.active = p.State == "active"
			}
			return nil, true
		}
	}
	return nil, false
}

func (c *Core) applyCommand(env message.Envelope) ([]message.Envelope, bool) {
	switch env.Action {
	case message.ActionEnterFocus, message.ActionExitFocus,
		message.ActionEnterActive, message.ActionExitActive:
		resp := c.ack(env)
		if env.Gen != 0 && env.Gen < c.gen {
			return resp, true
		}
		if env.Gen > c.gen {
			c.gen = env.Gen
		}
		switch env.Action {
		case message.ActionEnterFocus:
			c.focused = true
		case message.ActionExitFocus:
			c.focused = false
			c.active = false
		case message.ActionEnterActive:
			c.active = true
		case message.ActionExitActive:
			c.active = false
		}
		return resp, true

	case message.ActionOpenMenu, message.ActionCloseMenu:
		// Menu chrome is drawn by the app layer; widgets only ack.
		return c.ack(env), true
	}

	if env.IsDirectional() && !c.active {
		// Directional input reaches only the active widget. Anything
		// arriving here without the active flag is stale and dropped.
		return c.ack(env), true
	}
	return nil, false
}

// ack builds the receipt for a sequenced command. Unsequenced commands
// produce no reply.
func (c *Core) ack(env message.Envelope) []message.Envelope {
	if env.Seq == 0 {
		return nil
	}
	return []message.Envelope{message.Ack(c.id, env.Seq)}
}
