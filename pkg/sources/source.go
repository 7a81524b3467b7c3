// Package sources defines the interfaces, registry, and runner for the
// dashboard data sources. Each source (weather, calendar, photos index,
// system metrics) implements the Source interface and is orchestrated by a
// Runner that fans results into a single updates channel consumed by the
// app event loop, which forwards them to widgets as data envelopes.
package sources

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Source is the interface all data sources implement. Implementations are
// registered with the Registry at startup.
type Source interface {
	// Name returns a unique identifier for this source (e.g., "weather").
	Name() string

	// Fetch performs one fetch cycle and returns the data. The returned
	// value is opaque here; consumers type-assert based on the source name.
	Fetch(ctx context.Context) (interface{}, error)

	// Interval returns how often this source should run. The runner uses
	// this to configure a per-source ticker.
	Interval() time.Duration
}

// Status tracks the runtime state of a single source. The runner updates
// this after every fetch cycle.
type Status struct {
	Name        string
	Healthy     bool
	LastRun     time.Time
	LastError   error
	RunCount    int64
	ErrorCount  int64
	LastLatency time.Duration
}

// Update carries the result of a single fetch cycle from a source goroutine
// to the consumer.
type Update struct {
	Source    string
	Data      interface{}
	Timestamp time.Time
	Error     error
}

// Registry manages a set of named sources. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sources  map[string]Source
	statuses map[string]*Status
}

// NewRegistry returns an empty registry ready for source registration.
func NewRegistry() *Registry {
	return &Registry{
		sources:  make(map[string]Source),
		statuses: make(map[string]*Status),
	}
}

// Register adds a source to the registry. It returns an error if a source
// with the same name is already registered.
func (r *Registry) Register(s Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.sources[name]; exists {
		return fmt.Errorf("source %q already registered", name)
	}

	r.sources[name] = s
	r.statuses[name] = &Status{Name: name, Healthy: true}
	return nil
}

// Unregister removes a source by name. It is a no-op if the name is not
// found.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sources, name)
	delete(r.statuses, name)
}

// Get returns the source with the given name, or false if not found.
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[name]
	return s, ok
}

// List returns a sorted slice of all registered source names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns a copy of the status for the named source.
func (r *Registry) Status(name string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statuses[name]
	if !ok {
		return Status{}, false
	}
	return *s, true
}

// AllStatus returns copies of every source status, sorted by name.
func (r *Registry) AllStatus() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Status, 0, len(r.statuses))
	for _, s := range r.statuses {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) updateStatus(name string, fn func(s *Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.statuses[name]; ok {
		fn(s)
	}
}
