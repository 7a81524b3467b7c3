// Package theme defines the color palettes for the dashboard chrome and
// widgets, with a registry keyed by name. The active theme is a setting
// (display.theme) so a change on one device restyles every device.
package theme

import (
	"sort"
	"strings"
	"sync"
)

// Theme defines the dashboard's color palette.
type Theme struct {
	Name string

	// Base colors
	Background string // hex color e.g. "#1a1b26"
	Foreground string
	Dim        string
	Accent     string

	// Widget chrome
	Border       string // idle widget borders
	BorderFocus  string // focused widget border
	BorderActive string // active widget border
	Title        string

	// Focus menu
	MenuBorder   string
	MenuSelected string
	MenuItem     string

	// Status colors
	StatusOK    string
	StatusWarn  string
	StatusError string

	// Help bar
	HelpKey  string
	HelpDesc string
}

var (
	mu       sync.RWMutex
	registry = map[string]Theme{}
	current  Theme
)

func init() {
	registerBuiltins()
	current = Get("dark")
}

// Get returns a named theme, falling back to the dark theme if not found.
func Get(name string) Theme {
	mu.RLock()
	defer mu.RUnlock()
	if t, ok := registry[strings.ToLower(name)]; ok {
		return t
	}
	return registry["dark"]
}

// Names returns all available theme names sorted alphabetically.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Current returns the active theme.
func Current() Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetCurrent sets the active theme by name.
func SetCurrent(name string) {
	t := Get(name)
	mu.Lock()
	current = t
	mu.Unlock()
}

// register adds a theme to the registry under its lowercase name.
func register(t Theme) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(t.Name)] = t
}
