package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/weld/errors"
	"github.com/kbukum/weld/logger"
	"github.com/kbukum/weld/observability"
	"github.com/kbukum/weld/version"
)

// ContainerName is the name under which a container registers itself.
const ContainerName = "container"

// Container holds registered providers and resolves instances from them.
// It is safe for concurrent use.
type Container struct {
	id string

	mu       sync.RWMutex
	reg      *registry
	override OverrideStrategy

	naming         NamingStrategy
	lazySingletons bool
	interceptors   *interceptorChain
	flights        *flightTable

	log     *logger.Logger
	tracer  trace.Tracer
	metrics *observability.ContainerMetrics
}

// RegistrationInfo describes a registered provider for introspection.
type RegistrationInfo struct {
	Type        reflect.Type
	Name        string
	Scope       Scope
	Primary     bool
	Initialized bool
}

// New creates a container. Unless WithoutDefaultInterceptors is given it
// installs PostConstructInterceptor and FieldInjector. The container
// registers itself under ContainerName.
func New(opts ...Option) (*Container, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.err != nil {
		return nil, o.err
	}

	c := &Container{
		id:             uuid.NewString(),
		reg:            newRegistry(o.matching == NameMatchingInsensitive),
		override:       o.override,
		naming:         o.naming,
		lazySingletons: o.lazySingletons,
		interceptors:   newInterceptorChain(),
		flights:        newFlightTable(),
	}

	base := logger.Get("di")
	if o.logger != nil {
		base = o.logger.WithComponent("di")
	}
	c.log = base.WithFields(map[string]interface{}{
		logger.FieldContainerID: c.id,
	})

	tracerVersion := trace.WithInstrumentationVersion(version.Version)
	if o.tracerProvider != nil {
		c.tracer = o.tracerProvider.Tracer(observability.InstrumentationName, tracerVersion)
	} else {
		c.tracer = observability.Tracer(observability.InstrumentationName, tracerVersion)
	}

	meterVersion := metric.WithInstrumentationVersion(version.Version)
	meter := observability.Meter(observability.InstrumentationName, meterVersion)
	if o.meterProvider != nil {
		meter = o.meterProvider.Meter(observability.InstrumentationName, meterVersion)
	}
	metrics, err := observability.NewContainerMetrics(meter)
	if err != nil {
		return nil, errors.Internal(err)
	}
	c.metrics = metrics

	if !o.noDefaults {
		c.interceptors.add(PostConstructInterceptor())
		c.interceptors.add(FieldInjector(c))
	}

	if err := c.RegisterInstance(c, WithName(ContainerName)); err != nil {
		return nil, err
	}

	c.log.Debug("container created", logger.Fields(
		"override_strategy", o.override.String(),
		"name_matching", o.matching.String(),
		"lazy_singletons", o.lazySingletons,
		"version", version.Short(),
	))
	return c, nil
}

// ID identifies the container in logs and spans.
func (c *Container) ID() string { return c.id }

func (c *Container) newContext() context.Context {
	return withResolution(context.Background())
}

func (c *Container) effectiveName(u *Unit) string {
	if u.Name != "" {
		return u.Name
	}
	return c.naming(u.Type)
}

// --- Registration ---

// Register validates u and adds a provider for it. Singletons are built
// here unless the container uses lazy singletons.
func (c *Container) Register(u *Unit) error {
	_, err := c.register(c.newContext(), u)
	return err
}

// RegisterAll registers units in order and stops at the first error.
func (c *Container) RegisterAll(units ...*Unit) error {
	for _, u := range units {
		if err := c.Register(u); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) register(ctx context.Context, u *Unit) (_ Provider, err error) {
	if u == nil {
		return nil, c.fail(ctx, errors.InvalidUnit("<nil>", "unit is nil"))
	}
	u = u.clone()
	if u.Scope == "" {
		u.Scope = Singleton
	}
	if err := u.validate(); err != nil {
		return nil, c.fail(ctx, err)
	}
	name := c.effectiveName(u)

	ctx, span := observability.StartSpan(ctx, c.tracer, observability.SpanRegister, typeName(u.Type), name, string(u.Scope))
	defer func() { observability.EndSpan(span, err) }()

	if err := c.checkConflict(ctx, u.Type, name); err != nil {
		return nil, err
	}

	var p Provider
	switch u.Scope {
	case Prototype:
		p = &prototypeProvider{c: c, unit: u}
	default:
		sp := &singletonProvider{c: c, unit: u}
		if !c.lazySingletons {
			if _, err := sp.resolve(ctx); err != nil {
				return nil, err
			}
		}
		p = sp
	}

	if err := c.insert(ctx, newEntry(u.Type, name, u, p)); err != nil {
		return nil, err
	}
	c.log.Debug("registered", logger.Fields(
		logger.FieldType, typeName(u.Type),
		logger.FieldName, name,
		logger.FieldScope, string(u.Scope),
	))
	return p, nil
}

// RegisterInstance adds an already built instance. Interceptors do not run
// for it. WithName, Primary, As, Implements and WithTags apply.
func (c *Container) RegisterInstance(instance any, opts ...UnitOption) (err error) {
	ctx := c.newContext()
	if isNil(instance) {
		return c.fail(ctx, errors.InvalidUnit(fmt.Sprintf("%T", instance), "instance is nil"))
	}
	u := &Unit{Type: reflect.TypeOf(instance), Scope: Singleton}
	for _, opt := range opts {
		opt(u)
	}
	if u.err != nil {
		return c.fail(ctx, errors.InvalidUnit(typeName(u.Type), u.err.Error()))
	}
	if err := validateCapabilities(u.Type, u.Implements); err != nil {
		return c.fail(ctx, errors.InvalidUnit(typeName(u.Type), err.Error()).WithCause(err))
	}
	name := c.effectiveName(u)

	ctx, span := observability.StartSpan(ctx, c.tracer, observability.SpanRegister, typeName(u.Type), name, string(Singleton))
	defer func() { observability.EndSpan(span, err) }()

	if err := c.checkConflict(ctx, u.Type, name); err != nil {
		return err
	}
	p := &definedProvider{typ: u.Type, instance: instance}
	if err := c.insert(ctx, newEntry(u.Type, name, u, p)); err != nil {
		return err
	}
	c.log.Debug("registered instance", logger.Fields(
		logger.FieldType, typeName(u.Type),
		logger.FieldName, name,
	))
	return nil
}

// Declare adds units to the catalog without registering them. A missing
// unqualified dependency is satisfied by registering the single declared
// unit assignable to it.
func (c *Container) Declare(units ...*Unit) error {
	entries := make([]*entry, 0, len(units))
	for _, u := range units {
		if u == nil {
			return errors.InvalidUnit("<nil>", "unit is nil")
		}
		u = u.clone()
		if u.Scope == "" {
			u.Scope = Singleton
		}
		if err := u.validate(); err != nil {
			return err
		}
		entries = append(entries, newEntry(u.Type, c.effectiveName(u), u, nil))
	}

	c.mu.Lock()
	c.reg.catalog = append(c.reg.catalog, entries...)
	c.mu.Unlock()
	return nil
}

func (c *Container) checkConflict(ctx context.Context, t reflect.Type, name string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conflictLocked(ctx, t, name)
}

func (c *Container) conflictLocked(ctx context.Context, t reflect.Type, name string) error {
	if c.override != OverrideNotAllowed {
		return nil
	}
	if c.reg.hasType(t) {
		c.log.Error("registration conflict", logger.Fields(logger.FieldType, typeName(t)))
		return c.fail(ctx, errors.RegistrationConflict("type", typeName(t)))
	}
	if _, ok := c.reg.named(name); ok && name != "" {
		c.log.Error("registration conflict", logger.Fields(logger.FieldName, name))
		return c.fail(ctx, errors.RegistrationConflict("name", name))
	}
	return nil
}

// insert re-checks the override strategy under the write lock, since
// construction ran without it.
func (c *Container) insert(ctx context.Context, e *entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conflictLocked(ctx, e.typ, e.name); err != nil {
		return err
	}
	c.reg.put(e)
	return nil
}

// SetOverrideStrategy changes the override strategy for later
// registrations.
func (c *Container) SetOverrideStrategy(s OverrideStrategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.override = s
}

// OverrideStrategy returns the current override strategy.
func (c *Container) OverrideStrategy() OverrideStrategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.override
}

// --- Lookup ---

// Provider returns the unique provider assignable to t, or nil when there
// is none. More than one match is an AMBIGUOUS_CANDIDATE error.
func (c *Container) Provider(t reflect.Type) (Provider, error) {
	c.mu.RLock()
	p, err := c.reg.providerFor(t)
	c.mu.RUnlock()
	if err != nil {
		c.log.Error("ambiguous candidates", logger.Fields(logger.FieldType, typeName(t)))
		return nil, err
	}
	return p, nil
}

// NamedProvider returns the provider registered under name.
func (c *Container) NamedProvider(name string) (Provider, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.reg.named(name)
	if !ok {
		return nil, false
	}
	return e.provider, true
}

// Instance returns the instance of the unique provider assignable to t.
func (c *Container) Instance(t reflect.Type) (any, error) {
	ctx := c.newContext()
	p, err := c.Provider(t)
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	if p == nil {
		return nil, c.fail(ctx, errors.UnsatisfiedDependency("type", typeName(t)))
	}
	return c.unwrap(ctx, p)
}

// Named returns the instance registered under name.
func (c *Container) Named(name string) (any, error) {
	ctx := c.newContext()
	p, ok := c.NamedProvider(name)
	if !ok {
		return nil, c.fail(ctx, errors.UnsatisfiedDependency("name", name))
	}
	return c.unwrap(ctx, p)
}

// PrimaryProvider returns the single primary provider assignable to t. Zero
// or several primaries are an AMBIGUOUS_CANDIDATE error.
func (c *Container) PrimaryProvider(t reflect.Type) (Provider, error) {
	c.mu.RLock()
	primaries := c.reg.primaries(t)
	c.mu.RUnlock()
	if len(primaries) != 1 {
		c.log.Error("expected one primary candidate", logger.Fields(
			logger.FieldType, typeName(t),
			logger.FieldCount, len(primaries),
		))
		return nil, errors.AmbiguousCandidate(len(primaries), typeName(t))
	}
	return primaries[0].provider, nil
}

// PrimaryInstance returns the instance of PrimaryProvider(t).
func (c *Container) PrimaryInstance(t reflect.Type) (any, error) {
	ctx := c.newContext()
	p, err := c.PrimaryProvider(t)
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	return c.unwrap(ctx, p)
}

// Providers returns every provider assignable to t in registration order.
func (c *Container) Providers(t reflect.Type) []Provider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cands := c.reg.candidates(t)
	out := make([]Provider, len(cands))
	for i, e := range cands {
		out[i] = e.provider
	}
	return out
}

// Instances returns the instances of every provider assignable to t in
// registration order.
func (c *Container) Instances(t reflect.Type) ([]any, error) {
	ctx := c.newContext()
	providers := c.Providers(t)
	out := make([]any, 0, len(providers))
	for _, p := range providers {
		v, err := c.unwrap(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Contains reports whether any provider is assignable to t.
func (c *Container) Contains(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.reg.candidates(t)) > 0
}

// ContainsName reports whether a provider is registered under name.
func (c *Container) ContainsName(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.reg.named(name)
	return ok
}

// Tagged returns the registered types carrying tag, in registration order.
func (c *Container) Tagged(tag string) []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []reflect.Type
	for _, e := range c.reg.entries() {
		if e.hasTag(tag) {
			out = append(out, e.typ)
		}
	}
	return out
}

// Registrations describes every registered provider in registration order.
func (c *Container) Registrations() []RegistrationInfo {
	c.mu.RLock()
	entries := c.reg.entries()
	out := make([]RegistrationInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, RegistrationInfo{
			Type:    e.typ,
			Name:    e.name,
			Scope:   e.provider.Scope(),
			Primary: e.primary,
		})
	}
	c.mu.RUnlock()

	for i, e := range entries {
		if r, ok := e.provider.(resolvable); ok {
			out[i].Initialized = r.initialized()
		}
	}
	return out
}

// --- Interceptors ---

// AddInterceptor adds i to the chain of its interception point. Adding the
// same interceptor twice has no effect.
func (c *Container) AddInterceptor(i Interceptor) {
	if c.interceptors.add(i) {
		c.log.Debug("interceptor added", logger.Fields(
			logger.FieldHook, hookName(i),
			logger.FieldPriority, i.Priority(),
		))
	}
}

// RemoveInterceptor removes i and reports whether it was present.
func (c *Container) RemoveInterceptor(i Interceptor) bool {
	return c.interceptors.remove(i)
}

// RemoveAllInterceptors empties every chain.
func (c *Container) RemoveAllInterceptors() {
	c.interceptors.clear()
}

// Interceptors returns every interceptor, grouped by point in the order
// points were first used, each group in run order.
func (c *Container) Interceptors() []Interceptor {
	return c.interceptors.all()
}

// InterceptorsAt returns the interceptors at point in run order.
func (c *Container) InterceptorsAt(point InterceptionPoint) []Interceptor {
	return c.interceptors.at(point)
}

// --- Teardown ---

// Close closes built instances that implement Close() error, newest
// registration first, and joins the errors.
func (c *Container) Close() error {
	c.mu.RLock()
	entries := c.reg.entries()
	c.mu.RUnlock()

	var errs []error
	for _, e := range slices.Backward(entries) {
		instance, ok := builtInstance(e.provider)
		if !ok || instance == any(c) {
			continue
		}
		closer, ok := instance.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			fields := logger.ErrorFields("close", err)
			fields[logger.FieldType] = typeName(e.typ)
			c.log.Warn("close failed", fields)
			errs = append(errs, fmt.Errorf("closing %s: %w", typeName(e.typ), err))
		}
	}
	return stderrors.Join(errs...)
}

func builtInstance(p Provider) (any, bool) {
	switch p := p.(type) {
	case *definedProvider:
		return p.instance, true
	case *singletonProvider:
		return p.cached()
	default:
		return nil, false
	}
}
