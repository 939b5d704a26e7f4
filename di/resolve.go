package di

import (
	"fmt"
	"reflect"

	"github.com/kbukum/weld/errors"
)

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Register registers fn as the factory of T.
//
// Example:
//
//	err := di.Register(c, func() (*Engine, error) {
//	    return &Engine{Cylinders: 4}, nil
//	}, di.WithName("v4"))
func Register[T any](c *Container, fn func() (T, error), opts ...UnitOption) error {
	return c.Register(Supplier(fn, opts...))
}

// Resolve returns the unique instance assignable to T.
//
// Example:
//
//	engine, err := di.Resolve[*Engine](c)
//	if err != nil {
//	    return fmt.Errorf("resolving engine: %w", err)
//	}
func Resolve[T any](c *Container) (T, error) {
	instance, err := c.Instance(TypeOf[T]())
	return cast[T](instance, err)
}

// MustResolve is Resolve that panics on error.
// Use this in wiring code where a missing dependency is a programming error.
func MustResolve[T any](c *Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", TypeOf[T](), err))
	}
	return v
}

// TryResolve returns the zero value and false when T cannot be resolved.
// Use this when a dependency is optional.
//
// Example:
//
//	if m, ok := di.TryResolve[Metrics](c); ok {
//	    m.Record(...)
//	}
func TryResolve[T any](c *Container) (T, bool) {
	v, err := Resolve[T](c)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// ResolveNamed returns the instance registered under name.
func ResolveNamed[T any](c *Container, name string) (T, error) {
	instance, err := c.Named(name)
	return cast[T](instance, err)
}

// ResolvePrimary returns the single primary instance assignable to T.
func ResolvePrimary[T any](c *Container) (T, error) {
	instance, err := c.PrimaryInstance(TypeOf[T]())
	return cast[T](instance, err)
}

// ResolveAll returns every instance assignable to T in registration order.
func ResolveAll[T any](c *Container) ([]T, error) {
	instances, err := c.Instances(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(instances))
	for _, instance := range instances {
		v, err := cast[T](instance, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func cast[T any](instance any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	v, ok := instance.(T)
	if !ok {
		return zero, errors.Internal(fmt.Errorf("di: instance is %T, expected %s", instance, TypeOf[T]()))
	}
	return v, nil
}
