package component

import (
	"context"
	"fmt"
	"sync"
)

// Base is a Component assembled from functions. Start runs the start
// function at most once until Stop; a failed start may be retried.
type Base struct {
	name string

	mu        sync.RWMutex
	started   bool
	lastError error
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
	check     func(ctx context.Context) error
}

// New creates a component named name with the given start function. A nil
// start function makes Start a no-op.
func New(name string, start func(context.Context) error) *Base {
	return &Base{name: name, start: start}
}

// Name returns the component name.
func (b *Base) Name() string {
	return b.name
}

// Start runs the start function using double-check locking.
func (b *Base) Start(ctx context.Context) error {
	b.mu.RLock()
	if b.started {
		b.mu.RUnlock()
		return nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	// Double-check after acquiring write lock
	if b.started {
		return nil
	}
	if b.start != nil {
		if err := b.start(ctx); err != nil {
			b.lastError = err
			return fmt.Errorf("failed to start %s: %w", b.name, err)
		}
	}
	b.started = true
	b.lastError = nil
	return nil
}

// Started reports whether the component started successfully and has not
// been stopped since.
func (b *Base) Started() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.started
}

// Stop runs the stop function, if the component is started.
func (b *Base) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil
	}
	b.started = false
	if b.stop != nil {
		return b.stop(ctx)
	}
	return nil
}

// Health reports unhealthy before a successful start, degraded when the
// custom check fails and healthy otherwise.
func (b *Base) Health(ctx context.Context) Health {
	b.mu.RLock()
	started, lastErr, check := b.started, b.lastError, b.check
	b.mu.RUnlock()

	h := Health{Name: b.name, Status: StatusHealthy}
	switch {
	case !started && lastErr != nil:
		h.Status, h.Message = StatusUnhealthy, lastErr.Error()
	case !started:
		h.Status, h.Message = StatusUnhealthy, "not started"
	case check != nil:
		if err := check(ctx); err != nil {
			h.Status, h.Message = StatusDegraded, err.Error()
		}
	}
	return h
}

// WithHealthCheck sets a custom health check function.
func (b *Base) WithHealthCheck(fn func(context.Context) error) *Base {
	b.check = fn
	return b
}

// WithStop sets the stop function.
func (b *Base) WithStop(fn func(context.Context) error) *Base {
	b.stop = fn
	return b
}
