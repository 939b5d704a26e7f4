package di

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type HTTPServer struct{}
type userID int
type Box[T any] struct{ v T }

func TestDefaultNaming(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{TypeOf[*Engine](), "engine"},
		{TypeOf[Engine](), "engine"},
		{TypeOf[[]*Engine](), "engine"},
		{TypeOf[Greeter](), "greeter"},
		{TypeOf[*HTTPServer](), "hTTPServer"},
		{TypeOf[Box[int]](), "box"},
		{TypeOf[userID](), "userID"},
		{TypeOf[map[string]int](), "map"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultNaming(tt.typ), tt.typ.String())
	}
}

func TestSnakeCaseNaming(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{TypeOf[*HTTPServer](), "http_server"},
		{TypeOf[*Engine](), "engine"},
		{TypeOf[userID](), "user_id"},
		{TypeOf[*Box[string]](), "box"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SnakeCaseNaming(tt.typ), tt.typ.String())
	}
}

func TestConstructor(t *testing.T) {
	u := Constructor(func(e *Engine, g Lazy[Greeter], p ProviderOf[*Car]) (*Car, error) {
		return &Car{Engine: e}, nil
	}, WithName("car"), Primary(), WithTags("x"))

	require.NoError(t, u.validate())
	assert.Equal(t, TypeOf[*Car](), u.Type)
	assert.Equal(t, "car", u.Name)
	assert.True(t, u.Primary)
	assert.Equal(t, Singleton, u.Scope)
	assert.Equal(t, []Param{
		{Type: TypeOf[*Engine]()},
		{Type: TypeOf[Greeter](), Binding: BindLazy},
		{Type: TypeOf[*Car](), Binding: BindProvider},
	}, u.Params)

	engine := &Engine{}
	v, err := u.Factory([]any{engine, BindValue(&english{}), BindValue(&Car{})})
	require.NoError(t, err)
	assert.Same(t, engine, v.(*Car).Engine)
}

func TestConstructor_NilArgument(t *testing.T) {
	u := Constructor(func(g Greeter) *Car { return &Car{} })
	v, err := u.Factory([]any{nil})
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestUnitHelpers(t *testing.T) {
	assert.Equal(t, Param{Type: TypeOf[*Engine](), Qualifier: "v8"}, DepNamed(TypeOf[*Engine](), "v8"))
	assert.Equal(t, BindLazy, LazyDep(TypeOf[*Engine]()).Binding)
	assert.Equal(t, BindProvider, ProviderDep(TypeOf[*Engine]()).Binding)
	assert.Equal(t, BindNone, Dep(TypeOf[*Engine]()).Binding)

	u := NewUnit(TypeOf[*Car](), func(args []any) (any, error) {
		return &Car{Engine: args[0].(*Engine)}, nil
	}, WithParams(Dep(TypeOf[*Engine]())), As(TypeOf[any]()))
	require.NoError(t, u.validate())
	assert.Equal(t, 1, paramCount(u))
	assert.Equal(t, 0, paramCount(nil))

	cp := u.clone()
	cp.Params[0].Qualifier = "changed"
	assert.Empty(t, u.Params[0].Qualifier)

	assert.Equal(t, "lazy", BindLazy.String())
	assert.Equal(t, "not_allowed", OverrideNotAllowed.String())
	assert.Equal(t, "insensitive", NameMatchingInsensitive.String())
}
