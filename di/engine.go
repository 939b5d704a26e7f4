package di

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/kbukum/weld/errors"
	"github.com/kbukum/weld/logger"
	"github.com/kbukum/weld/observability"
)

// construct builds one instance of u within the resolution carried by ctx:
// parameters left to right, then the factory, then the post-construct
// interceptors. Nothing is cached here; callers decide by scope.
func (c *Container) construct(ctx context.Context, u *Unit) (instance any, err error) {
	res := resolutionFrom(ctx)
	name := typeName(u.Type)
	start := time.Now()

	// Only attempts that reach the factory are measured, so a failure is
	// counted once, at the level where it happened.
	attempted := false
	ctx, span := observability.StartSpan(ctx, c.tracer, observability.SpanConstruct, name, c.effectiveName(u), string(u.Scope))
	defer func() {
		observability.EndSpan(span, err)
		if attempted {
			c.metrics.RecordConstruct(ctx, name, string(u.Scope), err, time.Since(start))
		}
	}()

	res.push(u.Type)
	defer res.pop()

	args := make([]any, len(u.Params))
	for i, p := range u.Params {
		arg, err := c.resolveParam(ctx, res, p)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	attempted = true
	instance, err = c.invoke(u, args)
	if err != nil {
		c.log.Error("construction failed", logger.MergeWithError(logger.Fields(
			logger.FieldType, name,
		), err))
		return nil, err
	}

	if err := c.interceptors.run(ctx, PostConstruct, instance, u.Type); err != nil {
		c.log.Error("post-construct interceptor failed", logger.MergeWithError(logger.Fields(
			logger.FieldType, name,
		), err))
		return nil, err
	}

	fields := logger.DurationFields("construct", time.Since(start))
	fields[logger.FieldType] = name
	fields[logger.FieldScope] = string(u.Scope)
	c.log.Debug("instance constructed", fields)
	return instance, nil
}

// resolveParam produces the argument for p: a Binding for wrapped
// parameters, otherwise the unwrapped instance.
func (c *Container) resolveParam(ctx context.Context, res *resolution, p Param) (any, error) {
	if p.Binding == BindNone && res.contains(p.Type) {
		return nil, c.circular(ctx, res, p.Type)
	}

	if p.Binding != BindNone {
		provider, err := c.lookupParam(p)
		if err != nil {
			return nil, err
		}
		return newBinding(c, p, provider, res.mark()), nil
	}

	provider, err := c.find(ctx, p)
	if err != nil {
		return nil, err
	}
	if res.contains(provider.Type()) {
		return nil, c.circular(ctx, res, provider.Type())
	}
	return c.unwrap(ctx, provider)
}

// lookupParam finds an existing provider for p without registering
// anything. A nil provider means none exists yet.
func (c *Container) lookupParam(p Param) (Provider, error) {
	if p.Qualifier != "" {
		c.mu.RLock()
		e, ok := c.reg.named(p.Qualifier)
		c.mu.RUnlock()
		if !ok {
			return nil, nil
		}
		if !assignable(p.Type, e) {
			return nil, errors.UnsatisfiedDependency("name", p.Qualifier).
				WithDetail("type", typeName(p.Type)).
				WithDetail("registered", typeName(e.typ))
		}
		return e.provider, nil
	}
	return c.Provider(p.Type)
}

// find returns the provider for p, registering a declared unit for
// unqualified types that have no provider yet.
func (c *Container) find(ctx context.Context, p Param) (Provider, error) {
	provider, err := c.lookupParam(p)
	if err != nil || provider != nil {
		return provider, err
	}
	if p.Qualifier != "" {
		c.log.Error("no candidate for name", logger.Fields(
			logger.FieldQualifier, p.Qualifier,
			logger.FieldType, typeName(p.Type),
		))
		return nil, c.fail(ctx, errors.UnsatisfiedDependency("name", p.Qualifier))
	}
	return c.implicit(ctx, p.Type)
}

// implicit registers the single declared unit assignable to t as a
// singleton. Concurrent callers for the same unit wait for the first one.
func (c *Container) implicit(ctx context.Context, t reflect.Type) (Provider, error) {
	res := resolutionFrom(ctx)
	for {
		c.mu.RLock()
		provider, err := c.reg.providerFor(t)
		declared := c.reg.declared(t)
		c.mu.RUnlock()

		switch {
		case err != nil:
			return nil, c.fail(ctx, err)
		case provider != nil:
			return provider, nil
		case len(declared) == 0:
			c.log.Error("no candidate for type", logger.Fields(logger.FieldType, typeName(t)))
			return nil, c.fail(ctx, errors.UnsatisfiedDependency("type", typeName(t)))
		case len(declared) > 1:
			c.log.Error("ambiguous declared candidates", logger.Fields(
				logger.FieldType, typeName(t),
				logger.FieldCount, len(declared),
			))
			return nil, c.fail(ctx, errors.AmbiguousCandidate(len(declared), typeName(t)))
		}

		key := declared[0]
		f, owner, err := c.flights.begin(res, key, t)
		if err != nil {
			return nil, c.fail(ctx, err)
		}
		if !owner {
			c.flights.wait(res, f)
			continue
		}

		// Another resolution may have registered t between the lookup
		// above and begin.
		c.mu.RLock()
		provider, err = c.reg.providerFor(t)
		c.mu.RUnlock()
		if err != nil || provider != nil {
			c.flights.end(key, f)
			if err != nil {
				return nil, c.fail(ctx, err)
			}
			return provider, nil
		}

		u := key.unit.clone()
		u.Scope = Singleton
		c.log.Info("implicit registration", logger.Fields(
			logger.FieldType, typeName(u.Type),
			logger.FieldName, c.effectiveName(u),
			"requested", typeName(t),
		))
		provider, err = c.register(ctx, u)
		c.flights.end(key, f)
		return provider, err
	}
}

// unwrap yields the provider's instance within the current resolution.
func (c *Container) unwrap(ctx context.Context, p Provider) (any, error) {
	if r, ok := p.(resolvable); ok {
		return r.resolve(ctx)
	}
	return p.Get()
}

// invoke runs the factory. Errors, panics, nil results and results of the
// wrong type are construction failures.
func (c *Container) invoke(u *Unit, args []any) (instance any, err error) {
	name := typeName(u.Type)
	defer func() {
		if r := recover(); r != nil {
			instance, err = nil, errors.ConstructionFailure(name, fmt.Errorf("panic: %v", r))
		}
	}()

	v, err := u.Factory(args)
	if err != nil {
		return nil, errors.ConstructionFailure(name, err)
	}
	if isNil(v) {
		return nil, errors.ConstructionFailure(name, fmt.Errorf("factory returned nil"))
	}
	if !reflect.TypeOf(v).AssignableTo(u.Type) {
		return nil, errors.ConstructionFailure(name, fmt.Errorf("factory returned %T, not assignable to %s", v, name))
	}
	return v, nil
}

func (c *Container) circular(ctx context.Context, res *resolution, t reflect.Type) error {
	chain := res.path(t)
	c.log.Error("circular dependency", logger.Fields(
		logger.FieldType, typeName(t),
		logger.FieldChain, chain,
	))
	return c.fail(ctx, errors.CircularDependency(chain))
}

// fail counts err where it originates and returns it.
func (c *Container) fail(ctx context.Context, err error) error {
	c.metrics.RecordError(ctx, err)
	return err
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
