package widgets

import (
	"testing"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
)

func command(action message.Action, seq, gen uint64) message.Envelope {
	env := message.Command("w", action)
	env.Seq = seq
	env.Gen = gen
	return env
}

func TestCoreLifecycle(t *testing.T) {
	c := NewCore("w")

	resp, handled := c.Apply(command(message.ActionEnterFocus, 1, 1))
	if !handled {
		t.Fatal("enter-focus not handled")
	}
	if !c.Focused() || c.Active() {
		t.Errorf("after enter-focus: focused=%v active=%v", c.Focused(), c.Active())
	}
	if len(resp) != 1 || resp[0].Event != message.EventAck || resp[0].AckSeq != 1 {
		t.Errorf("expected ack of seq 1, got %+v", resp)
	}

	c.Apply(command(message.ActionEnterActive, 2, 2))
	if !c.Active() {
		t.Error("not active after enter-active")
	}

	c.Apply(command(message.ActionExitFocus, 3, 3))
	if c.Focused() || c.Active() {
		t.Error("exit-focus should clear both flags")
	}
}

// Each core only tracks its own flags, so two cores that both receive
// enter-active without an intervening exit-active end up active at the
// same time. Single-active is the focus manager's job, not the widgets'.
func TestCoreLocalFlagsAllowTwoActives(t *testing.T) {
	a := NewCore("a")
	b := NewCore("b")

	a.Apply(command(message.ActionEnterFocus, 1, 1))
	a.Apply(command(message.ActionEnterActive, 2, 2))
	b.Apply(command(message.ActionEnterFocus, 1, 3))
	b.Apply(command(message.ActionEnterActive, 2, 4))

	if !a.Active() || !b.Active() {
		t.Fatalf("cores track local state only: a=%v b=%v", a.Active(), b.Active())
	}
}

func TestCoreStaleGenerationDiscarded(t *testing.T) {
	c := NewCore("w")
	c.Apply(command(message.ActionEnterFocus, 1, 5))

	// A late-arriving older transition must not clear the focus flag.
	resp, handled := c.Apply(command(message.ActionExitFocus, 2, 3))
	if !handled {
		t.Fatal("stale command should still be consumed")
	}
	if !c.Focused() {
		t.Error("stale exit-focus was applied")
	}
	if len(resp) != 1 || resp[0].AckSeq != 2 {
		t.Error("stale command should still be acked")
	}
}

func TestCoreUnsequencedCommandNoAck(t *testing.T) {
	c := NewCore("w")
	resp, _ := c.Apply(command(message.ActionEnterFocus, 0, 1))
	if len(resp) != 0 {
		t.Errorf("unsequenced command produced replies: %+v", resp)
	}
}

func TestCoreDirectionalGate(t *testing.T) {
	c := NewCore("w")
	c.Apply(command(message.ActionEnterFocus, 1, 1))

	// Focused but not active: directional input is consumed, not passed on.
	if _, handled := c.Apply(command(message.ActionRight, 2, 0)); !handled {
		t.Error("inactive widget should swallow directional input")
	}

	c.Apply(command(message.ActionEnterActive, 3, 2))
	if _, handled := c.Apply(command(message.ActionRight, 4, 0)); handled {
		t.Error("active widget should pass directional input to the embedder")
	}
}

func TestCoreFocusStateResync(t *testing.T) {
	c := NewCore("w")
	env, err := message.Data("w", message.DataFocusState, map[string]any{
		"state":    "active",
		"menuOpen": false,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, handled := c.Apply(env); !handled {
		t.Fatal("resync not handled")
	}
	if !c.Focused() || !c.Active() {
		t.Errorf("after resync: focused=%v active=%v", c.Focused(), c.Active())
	}
}

func TestCoreReady(t *testing.T) {
	c := NewCore("w")
	env := c.Ready()
	if env.Type != message.TypeEvent || env.Event != message.EventWidgetReady {
		t.Errorf("Ready() = %+v", env)
	}
	if env.WidgetID != "w" {
		t.Errorf("WidgetID = %q", env.WidgetID)
	}
}
