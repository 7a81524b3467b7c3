package bus

import (
	"io"
	"log/slog"
	"testing"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder is a test deliverer that records received envelopes and
// optionally acks every command.
type recorder struct {
	received []message.Envelope
	autoAck  bool
	id       string
}

func (rec *recorder) deliver(env message.Envelope) []message.Envelope {
	rec.received = append(rec.received, env)
	if rec.autoAck && env.Type == message.TypeCommand {
		return []message.Envelope{message.Ack(rec.id, env.Seq)}
	}
	return nil
}

func TestSendStampsMonotonicSequence(t *testing.T) {
	r := New(testLogger())
	rec := &recorder{id: "clock"}
	r.Attach("clock", rec.deliver)

	for i := 0; i < 3; i++ {
		if err := r.Send("clock", message.Command("clock", message.ActionUp)); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	if len(rec.received) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(rec.received))
	}
	for i, env := range rec.received {
		if env.Seq != uint64(i+1) {
			t.Errorf("envelope %d: expected seq %d, got %d", i, i+1, env.Seq)
		}
	}
}

func TestSendUnknownWidgetErrors(t *testing.T) {
	r := New(testLogger())
	if err := r.Send("ghost", message.Command("ghost", message.ActionUp)); err == nil {
		t.Error("expected error sending to unknown widget")
	}
}

func TestAckTrimsPending(t *testing.T) {
	r := New(testLogger())
	rec := &recorder{id: "photos"}
	r.Attach("photos", rec.deliver)

	r.Send("photos", message.Command("photos", message.ActionLeft))
	r.Send("photos", message.Command("photos", message.ActionRight))
	r.Send("photos", message.Command("photos", message.ActionEnter))

	if got := r.Pending("photos"); got != 3 {
		t.Fatalf("expected 3 pending, got %d", got)
	}

	r.Receive(message.Ack("photos", 2))
	if got := r.Pending("photos"); got != 1 {
		t.Errorf("expected 1 pending after ack of seq 2, got %d", got)
	}

	r.Receive(message.Ack("photos", 3))
	if got := r.Pending("photos"); got != 0 {
		t.Errorf("expected 0 pending after ack of seq 3, got %d", got)
	}
}

func TestAutoAckLeavesNothingPending(t *testing.T) {
	r := New(testLogger())
	rec := &recorder{id: "clock", autoAck: true}
	r.Attach("clock", rec.deliver)

	r.Send("clock", message.Command("clock", message.ActionEnterFocus))
	r.Send("clock", message.Command("clock", message.ActionEnterActive))

	if got := r.Pending("clock"); got != 0 {
		t.Errorf("expected 0 pending with auto-acking widget, got %d", got)
	}
}

func TestDetachedWidgetQueuesCommands(t *testing.T) {
	r := New(testLogger())
	rec := &recorder{id: "calendar"}
	r.Attach("calendar", rec.deliver)
	r.Detach("calendar")

	r.Send("calendar", message.Command("calendar", message.ActionEnterFocus))

	if len(rec.received) != 0 {
		t.Errorf("expected no delivery while detached, got %d", len(rec.received))
	}
	if got := r.Pending("calendar"); got != 1 {
		t.Errorf("expected 1 pending while detached, got %d", got)
	}
}

func TestWidgetReadyReplaysPendingAndData(t *testing.T) {
	r := New(testLogger())
	rec := &recorder{id: "weather"}
	r.Attach("weather", rec.deliver)
	r.Detach("weather")

	r.Send("weather", message.Command("weather", message.ActionEnterFocus))
	env, err := message.Data("weather", message.DataWeather, map[string]any{"tempC": 18.0})
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	r.Send("weather", env)

	// Reattach and announce readiness.
	r.Attach("weather", rec.deliver)
	r.Receive(message.Event("weather", message.EventWidgetReady))

	if len(rec.received) != 2 {
		t.Fatalf("expected 2 replayed envelopes, got %d", len(rec.received))
	}
	if rec.received[0].Type != message.TypeCommand || rec.received[0].Seq != 1 {
		t.Errorf("expected command seq 1 first, got %+v", rec.received[0])
	}
	if rec.received[1].DataType != message.DataWeather {
		t.Errorf("expected weather data replay, got %+v", rec.received[1])
	}
}

func TestReplayKeepsOnlyLatestDataPerType(t *testing.T) {
	r := New(testLogger())
	rec := &recorder{id: "weather"}
	r.Attach("weather", rec.deliver)
	r.Detach("weather")

	for _, temp := range []float64{10, 15, 20} {
		env, _ := message.Data("weather", message.DataWeather, map[string]any{"tempC": temp})
		r.Send("weather", env)
	}

	r.Attach("weather", rec.deliver)
	r.Receive(message.Event("weather", message.EventWidgetReady))

	if len(rec.received) != 1 {
		t.Fatalf("expected 1 data replay (latest wins), got %d", len(rec.received))
	}
	var payload struct {
		TempC float64 `json:"tempC"`
	}
	if err := rec.received[0].DecodePayload(&payload); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if payload.TempC != 20 {
		t.Errorf("expected latest tempC=20, got %v", payload.TempC)
	}
}

func TestReceiveDropsMalformed(t *testing.T) {
	r := New(testLogger())
	var handled []message.Envelope
	r.Handle(message.TypeEvent, func(env message.Envelope) {
		handled = append(handled, env)
	})

	// Missing event type: must be dropped, not dispatched.
	r.Receive(message.Envelope{Type: message.TypeEvent, WidgetID: "clock"})
	// Unknown type entirely.
	r.Receive(message.Envelope{Type: "broadcast"})

	if len(handled) != 0 {
		t.Errorf("expected malformed envelopes dropped, %d reached handler", len(handled))
	}
}

func TestReceiveDispatchesByType(t *testing.T) {
	r := New(testLogger())
	var events []message.Envelope
	r.Handle(message.TypeEvent, func(env message.Envelope) {
		events = append(events, env)
	})

	r.Receive(message.Event("photos", message.EventReturnToMenu))

	if len(events) != 1 || events[0].Event != message.EventReturnToMenu {
		t.Fatalf("expected return-to-menu dispatched to event handler, got %+v", events)
	}
}

func TestWidgetReadyAlsoReachesEventHandler(t *testing.T) {
	r := New(testLogger())
	rec := &recorder{id: "clock"}
	r.Attach("clock", rec.deliver)

	var events []message.Envelope
	r.Handle(message.TypeEvent, func(env message.Envelope) {
		events = append(events, env)
	})

	r.Receive(message.Event("clock", message.EventWidgetReady))

	if len(events) != 1 || events[0].Event != message.EventWidgetReady {
		t.Errorf("expected widget-ready forwarded to event handler, got %+v", events)
	}
}

func TestBroadcastReachesAllWidgets(t *testing.T) {
	r := New(testLogger())
	a := &recorder{id: "a"}
	b := &recorder{id: "b"}
	r.Attach("a", a.deliver)
	r.Attach("b", b.deliver)

	env, _ := message.Data("", message.DataSettings, map[string]any{"display": map[string]any{"theme": "dark"}})
	r.Broadcast(env)

	if len(a.received) != 1 || len(b.received) != 1 {
		t.Errorf("expected broadcast to both widgets, got a=%d b=%d", len(a.received), len(b.received))
	}
	if a.received[0].WidgetID != "a" || b.received[0].WidgetID != "b" {
		t.Error("expected broadcast envelopes readdressed per widget")
	}
}

func TestRemoveDropsConnectionState(t *testing.T) {
	r := New(testLogger())
	rec := &recorder{id: "clock"}
	r.Attach("clock", rec.deliver)
	r.Send("clock", message.Command("clock", message.ActionEnterFocus))

	r.Remove("clock")

	if r.Connected("clock") {
		t.Error("expected widget disconnected after Remove")
	}
	if got := r.Pending("clock"); got != 0 {
		t.Errorf("expected no pending after Remove, got %d", got)
	}
}
