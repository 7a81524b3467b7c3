package sources

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Runner drives every registered source on its own ticker and fans the
// results into a single updates channel. An immediate fetch happens at
// Start so widgets have data before the first interval elapses.
type Runner struct {
	registry *Registry
	updates  chan<- Update

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewRunner wires a registry to an updates channel. The channel is owned by
// the caller and is never closed by the runner.
func NewRunner(registry *Registry, updates chan<- Update) *Runner {
	return &Runner{registry: registry, updates: updates}
}

// Start launches one goroutine per registered source. Calling Start twice
// without an intervening Stop is an error.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("runner already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.started = true

	for _, name := range r.registry.List() {
		src, ok := r.registry.Get(name)
		if !ok {
			continue
		}
		r.wg.Add(1)
		go r.run(ctx, src)
	}
	return nil
}

// Stop cancels all source goroutines and waits for them to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.started = false
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, src Source) {
	defer r.wg.Done()

	r.fetchOnce(ctx, src)

	ticker := time.NewTicker(src.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchOnce(ctx, src)
		}
	}
}

func (r *Runner) fetchOnce(ctx context.Context, src Source) {
	start := time.Now()
	data, err := src.Fetch(ctx)
	latency := time.Since(start)

	r.registry.updateStatus(src.Name(), func(s *Status) {
		s.LastRun = start
		s.LastLatency = latency
		s.RunCount++
		s.LastError = err
		if err != nil {
			s.ErrorCount++
			s.Healthy = false
		} else {
			s.Healthy = true
		}
	})

	select {
	case r.updates <- Update{Source: src.Name(), Data: data, Timestamp: start, Error: err}:
	case <-ctx.Done():
	}
}
