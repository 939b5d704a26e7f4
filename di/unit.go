package di

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/kbukum/weld/errors"
	"github.com/kbukum/weld/validation"
)

// BindingKind marks how a parameter is delivered to a factory.
type BindingKind int

const (
	// BindNone delivers the resolved instance itself.
	BindNone BindingKind = iota
	// BindLazy delivers a Binding that resolves once, on first Get.
	BindLazy
	// BindProvider delivers a Binding that asks the provider on every Get.
	BindProvider
)

func (k BindingKind) String() string {
	switch k {
	case BindNone:
		return "none"
	case BindLazy:
		return "lazy"
	case BindProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// Param describes one factory parameter. Type is the requested type with
// any Lazy or ProviderOf wrapper already removed.
type Param struct {
	Type      reflect.Type `validate:"required"`
	Qualifier string       `validate:"qualifier"`
	Binding   BindingKind
}

// Dep requests an instance of t.
func Dep(t reflect.Type) Param { return Param{Type: t} }

// DepNamed requests the instance registered under name.
func DepNamed(t reflect.Type, name string) Param { return Param{Type: t, Qualifier: name} }

// LazyDep requests a lazy-once Binding for t.
func LazyDep(t reflect.Type) Param { return Param{Type: t, Binding: BindLazy} }

// ProviderDep requests a Binding for t that resolves on every Get.
func ProviderDep(t reflect.Type) Param { return Param{Type: t, Binding: BindProvider} }

// Factory builds an instance from the resolved parameters, in declaration
// order. Wrapped parameters arrive as Binding values.
type Factory func(args []any) (any, error)

// Unit is a registration unit: a target type, its parameters, a scope, an
// optional name and the factory that produces the instance.
type Unit struct {
	Type       reflect.Type `validate:"required"`
	Name       string       `validate:"qualifier"`
	Scope      Scope        `validate:"oneof=singleton prototype"`
	Primary    bool
	Implements []reflect.Type
	Tags       []string
	Params     []Param `validate:"dive"`
	Factory    Factory `validate:"required"`

	err error
}

// UnitOption configures a Unit.
type UnitOption func(*Unit)

// WithName sets an explicit name.
func WithName(name string) UnitOption {
	return func(u *Unit) { u.Name = name }
}

// WithScope sets the scope. The default is Singleton.
func WithScope(scope Scope) UnitOption {
	return func(u *Unit) { u.Scope = scope }
}

// Primary marks the unit as the preferred candidate for its types.
func Primary() UnitOption {
	return func(u *Unit) { u.Primary = true }
}

// As declares interface types the target type satisfies. Lookups by any of
// them match the unit.
func As(types ...reflect.Type) UnitOption {
	return func(u *Unit) { u.Implements = append(u.Implements, types...) }
}

// Implements declares that the target type satisfies interface I.
func Implements[I any]() UnitOption {
	return As(TypeOf[I]())
}

// WithTags attaches free-form labels, queried with Container.Tagged.
func WithTags(tags ...string) UnitOption {
	return func(u *Unit) { u.Tags = append(u.Tags, tags...) }
}

// WithParams appends parameters to the unit.
func WithParams(params ...Param) UnitOption {
	return func(u *Unit) { u.Params = append(u.Params, params...) }
}

// Qualify sets the qualifier of the parameter at index.
func Qualify(index int, name string) UnitOption {
	return func(u *Unit) {
		if index < 0 || index >= len(u.Params) {
			u.err = fmt.Errorf("qualifier index %d out of range for %d params", index, len(u.Params))
			return
		}
		u.Params[index].Qualifier = name
	}
}

// NewUnit builds a unit from an explicit descriptor.
func NewUnit(t reflect.Type, factory Factory, opts ...UnitOption) *Unit {
	u := &Unit{Type: t, Scope: Singleton, Factory: factory}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Supplier builds a zero-parameter unit for T.
func Supplier[T any](fn func() (T, error), opts ...UnitOption) *Unit {
	var factory Factory
	if fn != nil {
		factory = func([]any) (any, error) {
			v, err := fn()
			if err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	return NewUnit(TypeOf[T](), factory, opts...)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Constructor builds a unit from a function of the form
// func(A, B, ...) T or func(A, B, ...) (T, error). Parameters of type
// Lazy[X] or ProviderOf[X] become wrapped parameters requesting X.
// Problems with fn are reported when the unit is registered.
func Constructor(fn any, opts ...UnitOption) *Unit {
	u := &Unit{Scope: Singleton}
	fv := reflect.ValueOf(fn)
	if fn == nil || fv.Kind() != reflect.Func || fv.IsNil() {
		u.err = fmt.Errorf("constructor must be a non-nil function, got %T", fn)
		return u
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		u.err = fmt.Errorf("constructor %s must not be variadic", ft)
		return u
	}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		u.err = fmt.Errorf("constructor %s must return (T) or (T, error)", ft)
		return u
	}

	u.Type = ft.Out(0)
	wrappers := make([]wrapper, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		in := ft.In(i)
		p := Param{Type: in}
		if w, ok := reflect.Zero(in).Interface().(wrapper); ok {
			p.Type = w.target()
			p.Binding = w.kind()
			wrappers[i] = w
		}
		u.Params = append(u.Params, p)
	}

	u.Factory = func(args []any) (any, error) {
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			switch {
			case wrappers[i] != nil:
				b, _ := arg.(Binding)
				in[i] = reflect.ValueOf(wrappers[i].wrap(b))
			case arg == nil:
				in[i] = reflect.Zero(ft.In(i))
			default:
				in[i] = reflect.ValueOf(arg)
			}
		}
		out := fv.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}

	for _, opt := range opts {
		opt(u)
	}
	return u
}

// validate reports problems with the unit as INVALID_UNIT errors.
func (u *Unit) validate() error {
	if u == nil {
		return errors.InvalidUnit("<nil>", "unit is nil")
	}
	name := typeName(u.Type)
	if u.err != nil {
		return errors.InvalidUnit(name, u.err.Error())
	}
	if err := validation.Validate(u); err != nil {
		return errors.InvalidUnit(name, err.Error()).WithCause(err)
	}
	if u.Type != nil {
		if err := validateCapabilities(u.Type, u.Implements); err != nil {
			return errors.InvalidUnit(name, err.Error()).WithCause(err)
		}
	}
	return nil
}

func validateCapabilities(t reflect.Type, caps []reflect.Type) error {
	v := validation.New()
	for i, iface := range caps {
		v.Implements(fmt.Sprintf("implements[%d]", i), t, iface)
	}
	return v.Err()
}

// clone returns a copy whose slices are not shared with the caller.
func (u *Unit) clone() *Unit {
	cp := *u
	cp.Implements = slices.Clone(u.Implements)
	cp.Tags = slices.Clone(u.Tags)
	cp.Params = slices.Clone(u.Params)
	return &cp
}

func paramCount(u *Unit) int {
	if u == nil {
		return 0
	}
	return len(u.Params)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
