package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle coalesces bursts of filesystem events from a single remote
// write (diskv writes each category as its own file).
const watchSettle = 250 * time.Millisecond

// Watch observes the shared store directory and applies remote updates
// until ctx is cancelled. Remote changes are merged last-write-wins by
// modification stamp; this device's own writes carry its current stamp
// and are ignored.
func (c *Controller) Watch(ctx context.Context) error {
	if c.store == nil {
		return fmt.Errorf("settings: watch requires a store")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings: create watcher: %w", err)
	}
	if err := watcher.Add(c.store.BasePath()); err != nil {
		watcher.Close()
		return fmt.Errorf("settings: watch %s: %w", c.store.BasePath(), err)
	}

	go func() {
		defer watcher.Close()

		var settle *time.Timer
		defer func() {
			if settle != nil {
				settle.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if settle == nil {
					settle = time.AfterFunc(watchSettle, c.applyRemote)
				} else {
					settle.Reset(watchSettle)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("settings watcher error", "error", err)
			}
		}
	}()

	return nil
}
