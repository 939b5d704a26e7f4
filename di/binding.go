package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/kbukum/weld/errors"
)

// Binding defers access to an instance until Get is called.
type Binding interface {
	Get() (any, error)
}

type valueBinding struct {
	value any
}

// BindValue returns a Binding that always yields v.
func BindValue(v any) Binding {
	return valueBinding{value: v}
}

func (b valueBinding) Get() (any, error) { return b.value, nil }

// source locates the provider behind a wrapped parameter. The provider is
// looked up, and implicitly registered if needed, on first use. A Get made
// while the construction that received the binding is still running
// continues that construction's chain.
type source struct {
	c      *Container
	param  Param
	origin frame

	mu       sync.Mutex
	provider Provider
}

func (s *source) context() context.Context {
	if s.origin.active() {
		return context.WithValue(context.Background(), resolutionKey{}, s.origin.res.fork())
	}
	return s.c.newContext()
}

func (s *source) get() (any, error) {
	ctx := s.context()
	s.mu.Lock()
	p := s.provider
	s.mu.Unlock()
	if p == nil {
		found, err := s.c.find(ctx, s.param)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.provider == nil {
			s.provider = found
		}
		p = s.provider
		s.mu.Unlock()
	}
	return s.c.unwrap(ctx, p)
}

// providerBinding asks the provider again on every Get.
type providerBinding struct {
	src *source
}

func (b *providerBinding) Get() (any, error) { return b.src.get() }

// lazyBinding asks the provider once and caches a successful result.
type lazyBinding struct {
	src *source

	mu    sync.Mutex
	done  bool
	value any
}

func (b *lazyBinding) Get() (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return b.value, nil
	}
	v, err := b.src.get()
	if err != nil {
		return nil, err
	}
	b.value, b.done = v, true
	return v, nil
}

func newBinding(c *Container, p Param, provider Provider, origin frame) Binding {
	src := &source{c: c, param: p, provider: provider, origin: origin}
	if p.Binding == BindLazy {
		return &lazyBinding{src: src}
	}
	return &providerBinding{src: src}
}

// wrapper is implemented by the zero values of Lazy and ProviderOf so that
// Constructor can recognise wrapped parameters.
type wrapper interface {
	target() reflect.Type
	kind() BindingKind
	wrap(b Binding) any
}

// Lazy is a typed lazy-once reference to a T. The first successful Get
// resolves the instance; later calls return the same value.
type Lazy[T any] struct {
	b Binding
}

// NewLazy wraps b as a Lazy[T].
func NewLazy[T any](b Binding) Lazy[T] { return Lazy[T]{b: b} }

// Get resolves the referenced instance.
func (l Lazy[T]) Get() (T, error) { return get[T](l.b) }

// MustGet is Get that panics on error.
func (l Lazy[T]) MustGet() T { return mustGet(l.Get()) }

func (Lazy[T]) target() reflect.Type { return TypeOf[T]() }
func (Lazy[T]) kind() BindingKind    { return BindLazy }
func (Lazy[T]) wrap(b Binding) any   { return Lazy[T]{b: b} }

// ProviderOf is a typed reference that asks the container for a T on every
// Get. A singleton still yields its single instance; a prototype yields a
// fresh one each time.
type ProviderOf[T any] struct {
	b Binding
}

// NewProviderOf wraps b as a ProviderOf[T].
func NewProviderOf[T any](b Binding) ProviderOf[T] { return ProviderOf[T]{b: b} }

// Get resolves an instance.
func (p ProviderOf[T]) Get() (T, error) { return get[T](p.b) }

// MustGet is Get that panics on error.
func (p ProviderOf[T]) MustGet() T { return mustGet(p.Get()) }

func (ProviderOf[T]) target() reflect.Type { return TypeOf[T]() }
func (ProviderOf[T]) kind() BindingKind    { return BindProvider }
func (ProviderOf[T]) wrap(b Binding) any   { return ProviderOf[T]{b: b} }

func get[T any](b Binding) (T, error) {
	var zero T
	if b == nil {
		return zero, errors.Internal(fmt.Errorf("di: unbound reference to %s", TypeOf[T]()))
	}
	v, err := b.Get()
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Internal(fmt.Errorf("di: bound value is %T, expected %s", v, TypeOf[T]()))
	}
	return t, nil
}

func mustGet[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
