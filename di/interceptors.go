package di

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/weld/errors"
)

// Priorities of the built-in interceptors.
const (
	PostConstructPriority = 0
	FieldInjectPriority   = 999
)

// PostConstructor is implemented by instances that finish their own
// initialization after construction.
type PostConstructor interface {
	PostConstruct() error
}

type postConstructInterceptor struct{}

// PostConstructInterceptor calls PostConstruct on instances that implement
// PostConstructor.
func PostConstructInterceptor() Interceptor { return postConstructInterceptor{} }

func (postConstructInterceptor) Point() InterceptionPoint { return PostConstruct }
func (postConstructInterceptor) Priority() int            { return PostConstructPriority }
func (postConstructInterceptor) Name() string             { return "PostConstruct" }

func (postConstructInterceptor) Intercept(_ context.Context, instance any) error {
	if pc, ok := instance.(PostConstructor); ok {
		return pc.PostConstruct()
	}
	return nil
}

// fieldInjector fills exported struct fields tagged `inject`. An empty tag
// resolves by field type, a non-empty tag by name. Fields that already hold
// a value are left alone.
//
//	type Handler struct {
//	    Repo  Repository  `inject:""`
//	    Cache Cache       `inject:"redis"`
//	    Audit Lazy[Audit] `inject:""`
//	}
type fieldInjector struct {
	c *Container
}

// FieldInjector returns the interceptor that performs field injection
// through c.
func FieldInjector(c *Container) Interceptor { return &fieldInjector{c: c} }

func (f *fieldInjector) Point() InterceptionPoint { return PostConstruct }
func (f *fieldInjector) Priority() int            { return FieldInjectPriority }
func (f *fieldInjector) Name() string             { return "FieldInjector" }

func (f *fieldInjector) Intercept(ctx context.Context, instance any) error {
	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil
	}
	sv := rv.Elem()
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		qualifier, ok := sf.Tag.Lookup("inject")
		if !ok {
			continue
		}
		fv := sv.Field(i)
		if !sf.IsExported() || !fv.CanSet() {
			return errors.InvalidUnit(typeName(st), fmt.Sprintf("field %s is tagged inject but not settable", sf.Name))
		}
		if !fv.IsZero() {
			continue
		}
		v, err := f.value(ctx, sf.Type, qualifier)
		if err != nil {
			return err
		}
		if v != nil {
			fv.Set(reflect.ValueOf(v))
		}
	}
	return nil
}

func (f *fieldInjector) value(ctx context.Context, t reflect.Type, qualifier string) (any, error) {
	p := Param{Type: t, Qualifier: qualifier}
	w, wrapped := reflect.Zero(t).Interface().(wrapper)
	if wrapped {
		p.Type = w.target()
		p.Binding = w.kind()
	}
	arg, err := f.c.resolveParam(ctx, resolutionFrom(ctx), p)
	if err != nil {
		return nil, err
	}
	if wrapped {
		return w.wrap(arg.(Binding)), nil
	}
	return arg, nil
}
