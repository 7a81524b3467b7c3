package widgets

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/hearth/pkg/message"
	"gitlab.com/tinyland/lab/hearth/pkg/settings"
	"gitlab.com/tinyland/lab/hearth/pkg/sources"
	"gitlab.com/tinyland/lab/hearth/pkg/theme"
)

// Color output is normally stripped when stdout is not a terminal, which
// would make every styled view identical.
func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func testTheme() theme.Theme { return theme.Get("dark") }

// activate drives a widget through enter-focus and enter-active.
func activate(t *testing.T, w Widget) {
	t.Helper()
	for i, action := range []message.Action{message.ActionEnterFocus, message.ActionEnterActive} {
		env := message.Command(w.ID(), action)
		env.Seq = uint64(i + 1)
		env.Gen = uint64(i + 1)
		w.Deliver(env)
	}
}

func dataEnvelope(t *testing.T, id string, dt message.DataType, payload any) message.Envelope {
	t.Helper()
	env, err := message.Data(id, dt, payload)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

// --- Clock ---

func TestClockFormats(t *testing.T) {
	c := NewClock(false)
	c.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 9, 0, 0, time.Local)
	}
	if got := c.timeString(); got != "3:09 PM" {
		t.Errorf("12h format = %q", got)
	}

	c.Deliver(dataEnvelope(t, "clock", message.DataSettings, map[string]any{
		"clock": map[string]any{"format24h": true},
	}))
	if got := c.timeString(); got != "15:09" {
		t.Errorf("24h format = %q", got)
	}
}

func TestClockView(t *testing.T) {
	c := NewClock(true)
	c.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 9, 0, 0, time.Local)
	}
	out := c.View(testTheme(), 20, 6)
	if !strings.Contains(out, "15:09") {
		t.Error("view missing time")
	}
}

// --- Header ---

func TestHeaderGreeting(t *testing.T) {
	h := NewHeader("Sullivans")
	tests := []struct {
		hour int
		want string
	}{
		{3, "Good night"},
		{9, "Good morning"},
		{14, "Good afternoon"},
		{20, "Good evening"},
	}
	for _, tt := range tests {
		h.now = func() time.Time {
			return time.Date(2026, 3, 14, tt.hour, 0, 0, 0, time.Local)
		}
		if got := h.greeting(); got != tt.want {
			t.Errorf("hour %d: greeting = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestHeaderFamilyNameFromSettings(t *testing.T) {
	h := NewHeader("")
	h.Deliver(dataEnvelope(t, "header", message.DataSettings, map[string]any{
		"family": map[string]any{"name": "Kowalski"},
	}))
	out := h.View(testTheme(), 40, 4)
	if !strings.Contains(out, "Kowalski") {
		t.Error("view missing family name from settings")
	}
}

// --- Weather ---

func TestWeatherPlaceholderBeforeData(t *testing.T) {
	w := NewWeather(true)
	out := w.View(testTheme(), 24, 6)
	if !strings.Contains(out, "--°") {
		t.Error("expected placeholder temperature before first fetch")
	}
}

func TestWeatherShowsConditions(t *testing.T) {
	w := NewWeather(true)
	w.Deliver(dataEnvelope(t, "weather", message.DataWeather, sources.Conditions{
		TempC: 21.4, TempF: 70.5, Description: "Partly cloudy",
	}))
	out := w.View(testTheme(), 24, 6)
	if !strings.Contains(out, "21°C") {
		t.Errorf("view missing celsius temperature:\n%s", out)
	}
	if !strings.Contains(out, "Partly cloudy") {
		t.Error("view missing description")
	}
}

func TestWeatherUnitSwitch(t *testing.T) {
	w := NewWeather(true)
	w.Deliver(dataEnvelope(t, "weather", message.DataWeather, sources.Conditions{
		TempC: 20, TempF: 68,
	}))
	w.Deliver(dataEnvelope(t, "weather", message.DataSettings, map[string]any{
		"weather": map[string]any{"units": "imperial"},
	}))
	if got := w.tempString(); got != "68°F" {
		t.Errorf("tempString = %q after switching to imperial", got)
	}
}

func TestWeatherFactoryDefaultIsFahrenheit(t *testing.T) {
	w := NewWeather(true)
	w.Deliver(dataEnvelope(t, "weather", message.DataWeather, sources.Conditions{
		TempC: 20, TempF: 68,
	}))
	w.Deliver(dataEnvelope(t, "weather", message.DataSettings, settings.Defaults()))
	if got := w.tempString(); got != "68°F" {
		t.Errorf("tempString = %q under factory defaults", got)
	}
}

// --- Calendar ---

func TestCalendarNavigation(t *testing.T) {
	c := NewCalendar()
	c.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	}
	c.month = time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	c.selected = 14
	activate(t, c)

	c.Deliver(message.Command("calendar", message.ActionRight))
	if c.selected != 15 {
		t.Errorf("selected = %d after right", c.selected)
	}
	c.Deliver(message.Command("calendar", message.ActionDown))
	if c.selected != 22 {
		t.Errorf("selected = %d after down", c.selected)
	}
	c.Deliver(message.Command("calendar", message.ActionUp))
	if c.selected != 15 {
		t.Errorf("selected = %d after up", c.selected)
	}

	// Down past the end of the month is clamped.
	c.selected = 28
	c.Deliver(message.Command("calendar", message.ActionDown))
	if c.selected != 28 {
		t.Errorf("selected = %d, down past month end should clamp", c.selected)
	}
}

func TestCalendarLeftAtFirstReturnsToMenu(t *testing.T) {
	c := NewCalendar()
	c.selected = 1
	activate(t, c)

	resp := c.Deliver(message.Command("calendar", message.ActionLeft))
	found := false
	for _, env := range resp {
		if env.Event == message.EventReturnToMenu {
			found = true
		}
	}
	if !found {
		t.Error("left from day 1 should emit return-to-menu")
	}
	if c.selected != 1 {
		t.Errorf("selected moved to %d", c.selected)
	}
}

func TestCalendarIgnoresNavigationWhenInactive(t *testing.T) {
	c := NewCalendar()
	c.selected = 10
	env := message.Command("calendar", message.ActionRight)
	env.Seq = 9
	c.Deliver(env)
	if c.selected != 10 {
		t.Error("inactive calendar moved selection")
	}
}

func TestCalendarUpcomingTruncatesOnRuneBoundary(t *testing.T) {
	c := NewCalendar()
	c.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	}
	c.month = time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	c.Deliver(dataEnvelope(t, "calendar", message.DataCalendar, []sources.Event{{
		Summary: "Fête des équipes régionales",
		Start:   time.Date(2026, 3, 20, 9, 0, 0, 0, time.Local),
	}}))

	out := c.View(testTheme(), 18, 14)
	if !utf8.ValidString(out) {
		t.Error("view split a multi-byte rune")
	}
	if !strings.Contains(out, "…") {
		t.Error("long summary not truncated")
	}
}

// --- Photos ---

func photoIndex(t *testing.T, paths ...string) message.Envelope {
	t.Helper()
	return dataEnvelope(t, "photos", message.DataPhotos, sources.PhotoIndex{Paths: paths})
}

func TestPhotosTickAdvances(t *testing.T) {
	p := NewPhotos(nil, time.Minute)
	p.Deliver(photoIndex(t, "a.jpg", "b.jpg", "c.jpg"))

	start := time.Now()
	p.Tick(start)
	if p.Index() != 0 {
		t.Error("first tick should only arm the timer")
	}
	p.Tick(start.Add(2 * time.Minute))
	if p.Index() != 1 {
		t.Errorf("index = %d after interval elapsed", p.Index())
	}
}

func TestPhotosPauseStopsTick(t *testing.T) {
	p := NewPhotos(nil, time.Minute)
	p.Deliver(photoIndex(t, "a.jpg", "b.jpg"))
	activate(t, p)

	p.Deliver(message.Command("photos", message.ActionEnter))
	if !p.Paused() {
		t.Fatal("enter should pause")
	}

	start := time.Now()
	p.Tick(start)
	p.Tick(start.Add(time.Hour))
	if p.Index() != 0 {
		t.Error("paused slideshow advanced")
	}
}

func TestPhotosManualBrowse(t *testing.T) {
	p := NewPhotos(nil, time.Minute)
	p.Deliver(photoIndex(t, "a.jpg", "b.jpg", "c.jpg"))
	activate(t, p)

	p.Deliver(message.Command("photos", message.ActionRight))
	if p.Index() != 1 {
		t.Errorf("index = %d after right", p.Index())
	}
	p.Deliver(message.Command("photos", message.ActionLeft))
	if p.Index() != 0 {
		t.Errorf("index = %d after left", p.Index())
	}

	resp := p.Deliver(message.Command("photos", message.ActionLeft))
	found := false
	for _, env := range resp {
		if env.Event == message.EventReturnToMenu {
			found = true
		}
	}
	if !found {
		t.Error("left at first photo should emit return-to-menu")
	}
}

func TestPhotosIndexResetOnShrink(t *testing.T) {
	p := NewPhotos(nil, time.Minute)
	p.Deliver(photoIndex(t, "a.jpg", "b.jpg", "c.jpg"))
	activate(t, p)
	p.Deliver(message.Command("photos", message.ActionRight))
	p.Deliver(message.Command("photos", message.ActionRight))

	p.Deliver(photoIndex(t, "a.jpg"))
	if p.Index() != 0 {
		t.Errorf("index = %d after index shrank", p.Index())
	}
}

// --- System ---

func TestSystemView(t *testing.T) {
	s := NewSystem()
	out := s.View(testTheme(), 30, 6)
	if !strings.Contains(out, "collecting") {
		t.Error("expected placeholder before first sample")
	}

	s.Deliver(dataEnvelope(t, "system", message.DataSystem, sources.SystemStats{
		CPUPercent: 42, MemPercent: 65,
	}))
	out = s.View(testTheme(), 30, 6)
	if !strings.Contains(out, "42%") || !strings.Contains(out, "65%") {
		t.Errorf("view missing gauges:\n%s", out)
	}
}

func TestFormatUptime(t *testing.T) {
	if got := formatUptime(26 * time.Hour); got != "up 1d 2h" {
		t.Errorf("formatUptime = %q", got)
	}
	if got := formatUptime(90 * time.Minute); got != "up 1h 30m" {
		t.Errorf("formatUptime = %q", got)
	}
}

// --- Voice ---

func TestVoiceToggle(t *testing.T) {
	v := NewVoice()
	var states []bool
	v.OnToggle = func(on bool) { states = append(states, on) }
	activate(t, v)

	v.Deliver(message.Command("voice", message.ActionEnter))
	v.Deliver(message.Command("voice", message.ActionEnter))
	if len(states) != 2 || !states[0] || states[1] {
		t.Errorf("toggle sequence = %v", states)
	}
}

// --- Frame ---

func TestFrameBorderFollowsState(t *testing.T) {
	c := NewClock(true)
	th := testTheme()

	idle := c.View(th, 20, 6)
	activate(t, c)
	active := c.View(th, 20, 6)
	if idle == active {
		t.Error("active border should differ from idle border")
	}
}

func TestFrameTinyRegion(t *testing.T) {
	c := NewClock(true)
	if out := c.View(testTheme(), 2, 1); out != "" {
		t.Errorf("tiny region should render empty, got %q", out)
	}
}
