// Package bus implements the shell-side message router. It is the single
// entry point for widget traffic: every envelope a widget emits passes
// through Router.Receive, is validated, and is either consumed by the
// router itself (acks, readiness) or forwarded to the subsystem registered
// for its type (focus manager, settings, data).
//
// Delivery to a widget is per-connection FIFO with monotonic sequence
// numbers. Commands stay pending until the widget acknowledges them; a
// widget that re-announces itself with widget-ready gets its unacknowledged
// commands and the latest data snapshots replayed, closing the
// lost-message gap a fire-and-forget protocol would otherwise have.
package bus

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
)

// Deliverer receives an envelope on behalf of a widget and returns any
// envelopes the widget emits in response (acks, events). The router feeds
// the replies back through Receive.
type Deliverer func(message.Envelope) []message.Envelope

// Handler consumes an inbound widget envelope on the shell side.
type Handler func(message.Envelope)

// conn tracks one widget connection.
type conn struct {
	id        string
	deliver   Deliverer
	seq       message.Sequencer
	lastAcked uint64
	pending   []message.Envelope // unacked commands, ascending Seq
	lastData  map[message.DataType]message.Envelope
}

// Router routes envelopes between the shell and its widgets.
type Router struct {
	logger *slog.Logger

	mu       sync.Mutex
	conns    map[string]*conn
	handlers map[message.Type]Handler
}

// New creates a Router. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		logger:   logger,
		conns:    make(map[string]*conn),
		handlers: make(map[message.Type]Handler),
	}
}

// Handle registers the shell-side subsystem for a given envelope type.
// Registering again replaces the previous handler.
func (r *Router) Handle(t message.Type, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[t] = h
}

// Attach registers a widget connection. Re-attaching an existing widget id
// replaces its deliverer but preserves pending commands and sequence state,
// so a restarted widget can recover by sending widget-ready.
func (r *Router) Attach(id string, deliver Deliverer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.conns[id]; ok {
		c.deliver = deliver
		return
	}
	r.conns[id] = &conn{
		id:       id,
		deliver:  deliver,
		lastData: make(map[message.DataType]message.Envelope),
	}
}

// Detach suspends delivery for a widget without destroying its connection
// state. Commands sent while detached accumulate as pending.
func (r *Router) Detach(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[id]; ok {
		c.deliver = nil
	}
}

// Remove destroys a widget connection entirely, dropping pending state.
// Used when a grid cell is removed.
func (r *Router) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Connected reports whether a widget id has a registered connection.
func (r *Router) Connected(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[id]
	return ok
}

// Pending returns the number of unacknowledged commands for a widget.
func (r *Router) Pending(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[id]; ok {
		return len(c.pending)
	}
	return 0
}

// Send delivers an envelope to the widget it addresses. Commands are
// stamped with the connection's next sequence number and retained until
// acknowledged. Data envelopes are recorded as the latest snapshot for
// their data type so they can be replayed to a re-announcing widget.
//
// Sending to an unknown widget id is an error; sending to a detached
// widget queues silently.
func (r *Router) Send(id string, env message.Envelope) error {
	env.WidgetID = id

	r.mu.Lock()
	c, ok := r.conns[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("bus: send to unknown widget %q", id)
	}

	switch env.Type {
	case message.TypeCommand:
		env.Seq = c.seq.Next()
		c.pending = append(c.pending, env)
	case message.TypeData:
		c.lastData[env.DataType] = env
	}
	deliver := c.deliver
	r.mu.Unlock()

	if deliver == nil {
		return nil
	}
	r.feedback(deliver(env))
	return nil
}

// Broadcast sends an envelope to every connected widget. Per-widget order
// is preserved; cross-widget order is not guaranteed.
func (r *Router) Broadcast(env message.Envelope) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)

	for _, id := range ids {
		if err := r.Send(id, env); err != nil {
			r.logger.Warn("broadcast delivery failed", "widget", id, "error", err)
		}
	}
}

// Receive is the single entry point for widget-originated envelopes.
// Malformed envelopes are logged and dropped; no error is surfaced to the
// sender. Acks and widget-ready events are consumed here; everything else
// is dispatched to the handler registered for the envelope type.
func (r *Router) Receive(env message.Envelope) {
	if err := env.Validate(); err != nil {
		r.logger.Warn("dropping malformed envelope", "error", err, "widget", env.WidgetID)
		return
	}

	if env.Type == message.TypeEvent {
		switch env.Event {
		case message.EventAck:
			r.ack(env.WidgetID, env.AckSeq)
			return
		case message.EventWidgetReady:
			r.replay(env.WidgetID)
			// Fall through to the event handler as well: the focus manager
			// may want to (re)issue authoritative state on readiness.
		}
	}

	r.mu.Lock()
	h := r.handlers[env.Type]
	r.mu.Unlock()

	if h == nil {
		r.logger.Debug("no handler for envelope type", "type", env.Type, "widget", env.WidgetID)
		return
	}
	h(env)
}

// ack trims pending commands up to and including seq.
func (r *Router) ack(id string, seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[id]
	if !ok {
		return
	}
	if seq > c.lastAcked {
		c.lastAcked = seq
	}
	i := 0
	for i < len(c.pending) && c.pending[i].Seq <= seq {
		i++
	}
	c.pending = c.pending[i:]
}

// replay resends unacknowledged commands and latest data snapshots to a
// widget that announced readiness. Sequence numbers are preserved so the
// widget's ack bookkeeping stays consistent.
func (r *Router) replay(id string) {
	r.mu.Lock()
	c, ok := r.conns[id]
	if !ok || c.deliver == nil {
		r.mu.Unlock()
		return
	}
	deliver := c.deliver
	batch := make([]message.Envelope, 0, len(c.pending)+len(c.lastData))
	batch = append(batch, c.pending...)

	dts := make([]message.DataType, 0, len(c.lastData))
	for dt := range c.lastData {
		dts = append(dts, dt)
	}
	sort.Slice(dts, func(i, j int) bool { return dts[i] < dts[j] })
	for _, dt := range dts {
		batch = append(batch, c.lastData[dt])
	}
	r.mu.Unlock()

	r.logger.Debug("replaying state to widget", "widget", id, "envelopes", len(batch))
	for _, env := range batch {
		r.feedback(deliver(env))
	}
}

// feedback routes widget replies back through Receive. Replies are
// processed breadth-first to keep the call stack flat when a reply itself
// produces replies.
func (r *Router) feedback(replies []message.Envelope) {
	queue := replies
	for len(queue) > 0 {
		env := queue[0]
		queue = queue[1:]
		r.Receive(env)
	}
}
