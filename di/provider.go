package di

import (
	"context"
	"reflect"
	"sync"
)

// Provider yields instances of a registered type according to its scope.
type Provider interface {
	Get() (any, error)
	Type() reflect.Type
	Scope() Scope
}

// resolvable is implemented by the container's providers so that nested
// lookups share the resolution carried in ctx.
type resolvable interface {
	resolve(ctx context.Context) (any, error)
	initialized() bool
}

// definedProvider wraps an instance supplied from outside the container.
type definedProvider struct {
	typ      reflect.Type
	instance any
}

func (p *definedProvider) Get() (any, error)                    { return p.instance, nil }
func (p *definedProvider) Type() reflect.Type                   { return p.typ }
func (p *definedProvider) Scope() Scope                         { return Singleton }
func (p *definedProvider) resolve(context.Context) (any, error) { return p.instance, nil }
func (p *definedProvider) initialized() bool                    { return true }

// singletonProvider builds its instance once. The first construction is
// guarded by a flight keyed on the provider itself.
type singletonProvider struct {
	c    *Container
	unit *Unit

	mu       sync.RWMutex
	built    bool
	instance any
}

func (p *singletonProvider) Get() (any, error)  { return p.resolve(p.c.newContext()) }
func (p *singletonProvider) Type() reflect.Type { return p.unit.Type }
func (p *singletonProvider) Scope() Scope       { return Singleton }

func (p *singletonProvider) initialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.built
}

func (p *singletonProvider) cached() (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.instance, p.built
}

func (p *singletonProvider) resolve(ctx context.Context) (any, error) {
	res := resolutionFrom(ctx)
	for {
		if v, ok := p.cached(); ok {
			return v, nil
		}
		f, owner, err := p.c.flights.begin(res, p, p.unit.Type)
		if err != nil {
			return nil, p.c.fail(ctx, err)
		}
		if !owner {
			p.c.flights.wait(res, f)
			continue
		}

		v, err := p.build(ctx)
		p.c.flights.end(p, f)
		return v, err
	}
}

func (p *singletonProvider) build(ctx context.Context) (any, error) {
	if v, ok := p.cached(); ok {
		return v, nil
	}
	v, err := p.c.construct(ctx, p.unit)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.instance, p.built = v, true
	p.mu.Unlock()
	return v, nil
}

// prototypeProvider builds a new instance on every call.
type prototypeProvider struct {
	c    *Container
	unit *Unit
}

func (p *prototypeProvider) Get() (any, error)                        { return p.resolve(p.c.newContext()) }
func (p *prototypeProvider) Type() reflect.Type                       { return p.unit.Type }
func (p *prototypeProvider) Scope() Scope                             { return Prototype }
func (p *prototypeProvider) resolve(ctx context.Context) (any, error) { return p.c.construct(ctx, p.unit) }
func (p *prototypeProvider) initialized() bool                        { return false }
