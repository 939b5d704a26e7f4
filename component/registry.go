package component

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/weld/errors"
	"github.com/kbukum/weld/logger"
)

// DefaultStopTimeout bounds the Stop call of each component.
const DefaultStopTimeout = 10 * time.Second

// componentEntry holds a component and its started state.
type componentEntry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	entries     []*componentEntry
	lookup      map[string]*componentEntry
	mu          sync.RWMutex
	log         *logger.Logger
	stopTimeout time.Duration
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// WithStopTimeout sets the per-component Stop timeout.
func WithStopTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.stopTimeout = d
		}
	}
}

// NewRegistry creates a new component registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries:     make([]*componentEntry, 0),
		lookup:      make(map[string]*componentEntry),
		log:         logger.Get("component"),
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a component to the registry. Components are started in
// the order they are registered, so register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return errors.RegistrationConflict("name", name)
	}

	entry := &componentEntry{component: c}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry

	fields := logger.Fields(logger.FieldComponent, name)
	if d, ok := c.(Describable); ok {
		desc := d.Describe()
		fields["kind"] = desc.Type
		fields["details"] = desc.Details
	}
	r.log.Debug("Component registered", fields)
	return nil
}

// StartAll starts all components in registration order. It stops at the
// first failure; components already started stay started.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Starting all components", logger.Fields(logger.FieldCount, len(r.entries)))

	for _, entry := range r.entries {
		if entry.started {
			continue
		}
		name := entry.component.Name()

		r.log.Debug("Starting component", logger.Fields(logger.FieldComponent, name))
		begin := time.Now()
		if err := entry.component.Start(ctx); err != nil {
			r.log.Error("Component start failed", logger.MergeWithError(
				logger.Fields(logger.FieldComponent, name), err))
			return fmt.Errorf("failed to start %s: %w", name, err)
		}

		entry.started = true
		fields := logger.DurationFields("start", time.Since(begin))
		fields[logger.FieldComponent] = name
		r.log.Debug("Component started", fields)
	}

	r.log.Info("All components started successfully")
	return nil
}

// StopAll gracefully stops all started components in reverse registration
// order and joins the errors.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Stopping all components")

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if !entry.started {
			continue
		}

		name := entry.component.Name()
		r.log.Debug("Stopping component", logger.Fields(logger.FieldComponent, name))

		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		if err := entry.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("Component stop failed", logger.MergeWithError(
				logger.Fields(logger.FieldComponent, name), err))
		} else {
			r.log.Info("Component stopped", logger.Fields(logger.FieldComponent, name))
		}
		entry.started = false
		cancel()
	}

	if len(errs) > 0 {
		return stderrors.Join(errs...)
	}

	r.log.Info("All components stopped successfully")
	return nil
}

// HealthAll returns health status for all registered components.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, entry := range r.entries {
		results = append(results, entry.component.Health(ctx))
	}
	return results
}

// Get returns a registered component by name, or nil if not found.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, exists := r.lookup[name]; exists {
		return entry.component
	}
	return nil
}

// All returns all registered components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Component, 0, len(r.entries))
	for _, entry := range r.entries {
		result = append(result, entry.component)
	}
	return result
}
