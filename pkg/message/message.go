// Package message defines the wire protocol between the hearth shell and
// its widgets. Every exchange is an Envelope: a tagged union discriminated
// by Type, validated at the shell/widget boundary so malformed traffic is
// rejected in one place instead of being optional-chained throughout.
//
// Widgets run in-process today, but the envelope is JSON-serializable so a
// widget could later be hosted out of process without changing the contract.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
)

// Type discriminates the three envelope categories.
type Type string

const (
	// TypeCommand flows shell -> widget: focus transitions and directional
	// input routed to whichever widget currently owns it.
	TypeCommand Type = "command"

	// TypeData flows shell -> widget: source results and settings
	// snapshots a widget renders from.
	TypeData Type = "data"

	// TypeEvent flows widget -> shell: readiness, acknowledgments, and
	// menu requests.
	TypeEvent Type = "event"
)

// Action names a command. Directional actions are only honored by a widget
// while it is active; the focus transitions are issued solely by the shell's
// focus manager.
type Action string

const (
	ActionEnterFocus  Action = "enter-focus"
	ActionExitFocus   Action = "exit-focus"
	ActionEnterActive Action = "enter-active"
	ActionExitActive  Action = "exit-active"
	ActionOpenMenu    Action = "open-menu"
	ActionCloseMenu   Action = "close-menu"

	ActionUp     Action = "up"
	ActionDown   Action = "down"
	ActionLeft   Action = "left"
	ActionRight  Action = "right"
	ActionEnter  Action = "enter"
	ActionEscape Action = "escape"

	// ActionStateUpdate re-synchronizes a widget that (re)announced itself
	// with widget-ready.
	ActionStateUpdate Action = "state-update"
)

// EventType names a widget-originated event.
type EventType string

const (
	// EventWidgetReady announces a widget is attached and wants its state
	// replayed. It is the only retransmission trigger in the protocol.
	EventWidgetReady EventType = "widget-ready"

	// EventAck acknowledges receipt of a command by sequence number.
	EventAck EventType = "ack"

	// EventReturnToMenu is emitted by an active widget when a Left at its
	// home position should reopen the focus menu instead of moving the
	// widget-internal selection.
	EventReturnToMenu EventType = "return-to-menu"

	// EventMenuSelect reports a menu action chosen by the user.
	EventMenuSelect EventType = "menu-select"

	// EventError reports a widget-side failure. The shell logs it; nothing
	// in the protocol is fatal.
	EventError EventType = "error"
)

// DataType names the payload category of a data envelope.
type DataType string

const (
	DataSettings DataType = "settings-updated"
	DataWeather  DataType = "weather"
	DataCalendar DataType = "calendar-events"
	DataPhotos   DataType = "photos"
	DataSystem   DataType = "system"
	DataClock    DataType = "clock"

	// DataFocusState is the authoritative focus snapshot re-sent to a
	// widget that announced readiness.
	DataFocusState DataType = "focus-state"
)

// Validation errors returned by Envelope.Validate. The router logs and
// drops envelopes that fail validation; nothing is surfaced to the sender.
var (
	ErrUnknownType     = errors.New("message: unknown envelope type")
	ErrMissingAction   = errors.New("message: command envelope missing action")
	ErrMissingWidgetID = errors.New("message: event envelope missing widget id")
	ErrMissingEvent    = errors.New("message: event envelope missing event type")
	ErrMissingDataType = errors.New("message: data envelope missing data type")
)

// Envelope is the unit of shell<->widget communication.
//
// Seq is a monotonic per-connection sequence number stamped by the router
// on commands; widgets acknowledge it with an ack event. Gen carries the
// focus manager's transition generation so a widget can discard a stale
// focus command that was superseded before delivery.
type Envelope struct {
	Type     Type            `json:"type"`
	Action   Action          `json:"action,omitempty"`
	WidgetID string          `json:"widgetId,omitempty"`
	Seq      uint64          `json:"seq,omitempty"`
	Gen      uint64          `json:"gen,omitempty"`
	Event    EventType       `json:"eventType,omitempty"`
	DataType DataType        `json:"dataType,omitempty"`
	AckSeq   uint64          `json:"ackSeq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Command builds a command envelope addressed to a widget.
func Command(widgetID string, action Action) Envelope {
	return Envelope{Type: TypeCommand, WidgetID: widgetID, Action: action}
}

// Data builds a data envelope carrying a JSON-encoded payload. Encoding
// errors are returned rather than silently producing an empty payload.
func Data(widgetID string, dt DataType, payload any) (Envelope, error) {
	env := Envelope{Type: TypeData, WidgetID: widgetID, DataType: dt}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("message: encode %s payload: %w", dt, err)
		}
		env.Payload = raw
	}
	return env, nil
}

// Event builds a widget-originated event envelope.
func Event(widgetID string, et EventType) Envelope {
	return Envelope{Type: TypeEvent, WidgetID: widgetID, Event: et}
}

// Ack builds the acknowledgment for a received command.
func Ack(widgetID string, seq uint64) Envelope {
	return Envelope{Type: TypeEvent, WidgetID: widgetID, Event: EventAck, AckSeq: seq}
}

// Validate checks the envelope's shape against its type. It is called by
// the router on every inbound envelope and by Decode.
func (e Envelope) Validate() error {
	switch e.Type {
	case TypeCommand:
		if e.Action == "" {
			return ErrMissingAction
		}
	case TypeData:
		if e.DataType == "" {
			return ErrMissingDataType
		}
	case TypeEvent:
		if e.WidgetID == "" {
			return ErrMissingWidgetID
		}
		if e.Event == "" {
			return ErrMissingEvent
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
	return nil
}

// IsDirectional reports whether the action is D-pad navigation that only an
// active widget may honor.
func (e Envelope) IsDirectional() bool {
	switch e.Action {
	case ActionUp, ActionDown, ActionLeft, ActionRight, ActionEnter:
		return true
	}
	return false
}

// DecodePayload unmarshals the envelope payload into v.
func (e Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return errors.New("message: envelope has no payload")
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("message: decode payload: %w", err)
	}
	return nil
}

// Decode parses and validates a raw envelope.
func Decode(raw []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return Envelope{}, fmt.Errorf("message: decode envelope: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// Encode serializes an envelope for an out-of-process transport.
func (e Envelope) Encode() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("message: encode envelope: %w", err)
	}
	return raw, nil
}

// Sequencer issues monotonically increasing sequence numbers. The zero
// value is ready to use and safe for concurrent callers.
type Sequencer struct {
	n atomic.Uint64
}

// Next returns the next sequence number, starting at 1.
func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

// Last returns the most recently issued sequence number.
func (s *Sequencer) Last() uint64 {
	return s.n.Load()
}
