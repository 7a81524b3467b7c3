// Package settings implements the dashboard settings controller: a nested
// settings tree with dotted-path access, debounced autosave to a shared
// disk store, a local snapshot fallback for devices that cannot reach the
// store, and last-write-wins synchronization across devices watching the
// same store directory.
package settings

import (
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is how long after the last Set the tree is persisted.
const DefaultDebounce = 2 * time.Second

// SnapshotMaxAge is how old a local snapshot may be before it is discarded
// in favor of defaults when the shared store is unavailable. Stale local
// state on a device that lost its store is worse than factory settings.
const SnapshotMaxAge = time.Hour

// Change describes a settings mutation delivered to subscribers. Path is
// empty for a whole-tree replacement (remote sync).
type Change struct {
	Path         string
	Remote       bool
	LastModified time.Time
}

// Options configures a Controller.
type Options struct {
	// StoreDir is the shared store directory. Empty means no store:
	// snapshot-or-defaults only.
	StoreDir string

	// SnapshotPath is the local fallback cache file. Empty disables the
	// snapshot.
	SnapshotPath string

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration

	Logger *slog.Logger

	// Now is a clock hook for tests.
	Now func() time.Time
}

// Controller owns the settings tree. All methods are safe for concurrent
// use.
type Controller struct {
	logger   *slog.Logger
	now      func() time.Time
	debounce time.Duration
	snapPath string

	mu           sync.Mutex
	values       map[string]any
	lastModified time.Time
	store        *DiskStore // nil when unavailable
	memOnly      bool       // persistence abandoned after repeated failure
	timer        *time.Timer
	subs         []func(Change)
	closed       bool
}

// New creates a Controller and loads its initial tree: the shared store
// when it has content, else a sufficiently fresh snapshot, else defaults.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	c := &Controller{
		logger:   logger,
		now:      now,
		debounce: debounce,
		snapPath: opts.SnapshotPath,
		values:   Defaults(),
	}

	if opts.StoreDir != "" {
		store, err := OpenStore(opts.StoreDir)
		if err != nil {
			logger.Warn("settings store unavailable", "dir", opts.StoreDir, "error", err)
		} else {
			c.store = store
		}
	}

	c.load()
	return c
}

// load populates the tree from store, snapshot, or defaults.
func (c *Controller) load() {
	if c.store != nil && !c.store.Empty() {
		if c.loadFromStore() {
			return
		}
	}

	if c.snapPath == "" {
		return
	}
	snap, err := readSnapshot(c.snapPath)
	if err != nil {
		c.logger.Warn("settings snapshot unreadable", "path", c.snapPath, "error", err)
		return
	}
	if snap.LastModified.IsZero() {
		return
	}

	if c.store == nil {
		// No store to trust: a stale snapshot is discarded for defaults.
		if c.now().Sub(snap.LastModified) > SnapshotMaxAge {
			c.logger.Info("settings snapshot stale, using defaults",
				"age", c.now().Sub(snap.LastModified))
			return
		}
	}

	c.mu.Lock()
	c.values = mergeOverDefaults(snap.Values)
	c.lastModified = snap.LastModified
	c.mu.Unlock()
}

// loadFromStore replaces the tree with the store's contents. Returns false
// when the store could not be read.
func (c *Controller) loadFromStore() bool {
	cats, err := c.store.Categories()
	if err != nil {
		c.logger.Warn("settings store unreadable", "error", err)
		return false
	}
	values := Defaults()
	for _, cat := range cats {
		sub, err := c.store.ReadCategory(cat)
		if err != nil {
			c.logger.Warn("settings category unreadable", "category", cat, "error", err)
			continue
		}
		if sub != nil {
			values[cat] = sub
		}
	}
	lastModified, err := c.store.ReadMeta()
	if err != nil {
		c.logger.Warn("settings meta unreadable", "error", err)
	}

	c.mu.Lock()
	c.values = values
	c.lastModified = lastModified
	c.mu.Unlock()
	return true
}

// mergeOverDefaults lays persisted categories over the defaults so new
// categories added in an upgrade keep their factory values.
func mergeOverDefaults(stored map[string]any) map[string]any {
	values := Defaults()
	for cat, sub := range stored {
		values[cat] = sub
	}
	return values
}

// Get returns the value at a dotted path ("display.theme").
func (c *Controller) Get(path string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return valueAt(c.values, path)
}

// GetString returns a string-typed setting, or fallback.
func (c *Controller) GetString(path, fallback string) string {
	if v, ok := c.Get(path); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// GetBool returns a bool-typed setting, or fallback.
func (c *Controller) GetBool(path string, fallback bool) bool {
	if v, ok := c.Get(path); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// GetInt returns an integer setting, tolerating the float64 shape JSON
// decoding produces.
func (c *Controller) GetInt(path string, fallback int) int {
	if v, ok := c.Get(path); ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return fallback
}

// Set writes the value at a dotted path. The modification stamp bumps only
// when the value actually changes; setting an equal value is a no-op and
// returns false. A change schedules the debounced autosave and notifies
// subscribers.
func (c *Controller) Set(path string, value any) bool {
	c.mu.Lock()
	prev, existed := valueAt(c.values, path)
	if existed && reflect.DeepEqual(prev, value) {
		c.mu.Unlock()
		return false
	}

	setAt(c.values, path, value)
	stamp := c.now()
	if !stamp.After(c.lastModified) {
		// Coarse clocks: force strict monotonicity.
		stamp = c.lastModified.Add(time.Nanosecond)
	}
	c.lastModified = stamp
	c.scheduleSaveLocked()
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	ch := Change{Path: path, LastModified: stamp}
	for _, fn := range subs {
		fn(ch)
	}
	return true
}

// LastModified returns the tree's modification stamp.
func (c *Controller) LastModified() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastModified
}

// MemoryOnly reports whether persistence has been abandoned.
func (c *Controller) MemoryOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memOnly
}

// Snapshot returns a deep copy of the whole settings tree.
func (c *Controller) Snapshot() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return deepCopy(c.values)
}

// Subscribe registers a callback for settings changes. Callbacks run on
// the mutating goroutine and must not block.
func (c *Controller) Subscribe(fn func(Change)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Flush persists immediately, canceling any pending debounce.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.persist()
}

// Close flushes and shuts the controller down.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.persist()
}

// scheduleSaveLocked (re)arms the autosave debounce. Caller holds c.mu.
func (c *Controller) scheduleSaveLocked() {
	if c.memOnly || c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.persist)
}

// persist writes the tree to the store and snapshot. On failure the
// controller degrades to memory-only operation rather than crashing an
// always-on display.
func (c *Controller) persist() {
	c.mu.Lock()
	if c.memOnly {
		c.mu.Unlock()
		return
	}
	values := deepCopy(c.values)
	stamp := c.lastModified
	store := c.store
	snapPath := c.snapPath
	c.mu.Unlock()

	var failed bool
	if store != nil {
		for cat, sub := range values {
			if err := store.WriteCategory(cat, sub); err != nil {
				c.logger.Warn("settings persist failed", "category", cat, "error", err)
				failed = true
			}
		}
		if !failed {
			if err := store.WriteMeta(stamp); err != nil {
				c.logger.Warn("settings meta persist failed", "error", err)
				failed = true
			}
		}
	}
	if snapPath != "" {
		if err := writeSnapshot(snapPath, snapshot{LastModified: stamp, Values: values}); err != nil {
			c.logger.Warn("settings snapshot write failed", "error", err)
			if store == nil {
				failed = true
			}
		}
	}

	if failed {
		c.mu.Lock()
		c.memOnly = true
		c.mu.Unlock()
		c.logger.Warn("settings persistence abandoned, continuing in memory")
	}
}

// applyRemote replaces the tree with a newer remote version. Last write
// wins by modification stamp; concurrent field edits are not merged.
func (c *Controller) applyRemote() {
	if c.store == nil {
		return
	}
	remote, err := c.store.ReadMeta()
	if err != nil {
		c.logger.Debug("remote meta unreadable during sync", "error", err)
		return
	}

	c.mu.Lock()
	if !remote.After(c.lastModified) {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if !c.loadFromStore() {
		return
	}

	c.mu.Lock()
	stamp := c.lastModified
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	c.logger.Info("settings replaced by remote update", "lastModified", stamp)
	ch := Change{Remote: true, LastModified: stamp}
	for _, fn := range subs {
		fn(ch)
	}
}

// --- dotted-path helpers ---

// valueAt walks a dotted path through nested maps.
func valueAt(tree map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := any(tree)
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setAt writes a value at a dotted path, creating intermediate maps.
// A non-map intermediate value is replaced by a map.
func setAt(tree map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	m := tree
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// deepCopy clones a settings tree. Values are JSON-shaped (maps, slices,
// scalars), so structural recursion suffices.
func deepCopy(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopy(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
