package theme

import "testing"

func TestBuiltinsRegistered(t *testing.T) {
	names := Names()
	want := map[string]bool{"dark": false, "light": false, "midnight": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, found := range want {
		if !found {
			t.Errorf("builtin theme %q not registered", n)
		}
	}
}

func TestGetFallsBackToDark(t *testing.T) {
	got := Get("no-such-theme")
	if got.Name != "dark" {
		t.Errorf("expected dark fallback, got %q", got.Name)
	}
}

func TestGetCaseInsensitive(t *testing.T) {
	if got := Get("Light"); got.Name != "light" {
		t.Errorf("expected light, got %q", got.Name)
	}
}

func TestSetCurrent(t *testing.T) {
	defer SetCurrent("dark")

	SetCurrent("midnight")
	if got := Current(); got.Name != "midnight" {
		t.Errorf("expected current midnight, got %q", got.Name)
	}
}

func TestThemesHaveCompleteChrome(t *testing.T) {
	for _, name := range Names() {
		th := Get(name)
		if th.Border == "" || th.BorderFocus == "" || th.BorderActive == "" {
			t.Errorf("theme %q missing border colors", name)
		}
		if th.StatusOK == "" || th.StatusWarn == "" || th.StatusError == "" {
			t.Errorf("theme %q missing status colors", name)
		}
	}
}
