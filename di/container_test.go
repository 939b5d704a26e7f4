package di

import (
	"bytes"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/weld/errors"
	"github.com/kbukum/weld/logger"
)

func TestNew_RegistersItself(t *testing.T) {
	c := newContainer(t)

	self, err := Resolve[*Container](c)
	require.NoError(t, err)
	assert.Same(t, c, self)

	named, err := c.Named(ContainerName)
	require.NoError(t, err)
	assert.Same(t, c, named)
	assert.NotEmpty(t, c.ID())
}

func TestNew_DefaultInterceptors(t *testing.T) {
	c := newContainer(t)
	assert.Len(t, c.InterceptorsAt(PostConstruct), 2)

	bare := newContainer(t, WithoutDefaultInterceptors())
	assert.Empty(t, bare.Interceptors())
}

func TestRegister_SingletonIdentity(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.RegisterAll(Constructor(NewEngine), Constructor(NewCar)))

	car1 := MustResolve[*Car](c)
	car2 := MustResolve[*Car](c)
	assert.Same(t, car1, car2)
	assert.Same(t, MustResolve[*Engine](c), car1.Engine)
}

func TestRegister_PrototypeIsFresh(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.Register(Constructor(NewEngine)))
	require.NoError(t, c.Register(Constructor(NewCar, WithScope(Prototype))))

	car1 := MustResolve[*Car](c)
	car2 := MustResolve[*Car](c)
	assert.NotSame(t, car1, car2)
	assert.Same(t, car1.Engine, car2.Engine)
}

func TestRegister_EagerSingletonBuildsAtRegistration(t *testing.T) {
	var cnt counter
	c := newContainer(t)
	require.NoError(t, Register(c, cnt.engineFactory()))
	assert.Equal(t, int32(1), cnt.n.Load())

	MustResolve[*Engine](c)
	assert.Equal(t, int32(1), cnt.n.Load())
}

func TestRegister_LazySingletonBuildsOnFirstUse(t *testing.T) {
	var cnt counter
	c := newContainer(t, WithLazySingletons())
	require.NoError(t, Register(c, cnt.engineFactory()))
	assert.Equal(t, int32(0), cnt.n.Load())
	assert.False(t, registration(t, c, TypeOf[*Engine]()).Initialized)

	MustResolve[*Engine](c)
	MustResolve[*Engine](c)
	assert.Equal(t, int32(1), cnt.n.Load())
	assert.True(t, registration(t, c, TypeOf[*Engine]()).Initialized)
}

func TestRegister_MissingDependency(t *testing.T) {
	c := newContainer(t)
	err := c.Register(Constructor(NewCar))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsatisfiedDependency))
	assert.False(t, c.Contains(TypeOf[*Car]()))
}

func TestRegister_InvalidUnits(t *testing.T) {
	tests := []struct {
		name string
		unit *Unit
	}{
		{"nil unit", nil},
		{"nil factory", NewUnit(TypeOf[*Engine](), nil)},
		{"nil type", NewUnit(nil, func([]any) (any, error) { return nil, nil })},
		{"not a function", Constructor("engine")},
		{"bad return", Constructor(func() (*Engine, int) { return nil, 0 })},
		{"variadic", Constructor(func(...int) *Engine { return nil })},
		{"bad capability", Constructor(NewEngine, Implements[Greeter]())},
		{"blank qualifier", Constructor(NewCar, Qualify(0, "my engine"))},
		{"qualify out of range", Constructor(NewCar, Qualify(3, "engine"))},
		{"unknown scope", Constructor(NewEngine, WithScope("request"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContainer(t)
			err := c.Register(tt.unit)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidUnit), "got %v", err)
		})
	}
}

func TestRegister_OverrideAllowed(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.Register(Constructor(NewEngine, WithName("v4"))))
	require.NoError(t, Register(c, func() (*Engine, error) {
		return &Engine{Cylinders: 8}, nil
	}, WithName("v8")))

	assert.Equal(t, 8, MustResolve[*Engine](c).Cylinders)
	assert.False(t, c.ContainsName("v4"))
	assert.True(t, c.ContainsName("v8"))
	assert.Len(t, c.Providers(TypeOf[*Engine]()), 1)
}

func TestRegister_OverrideTakesName(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.RegisterInstance(&english{}, WithName("greeter")))
	require.NoError(t, c.RegisterInstance(&french{}, WithName("greeter")))

	g, err := c.Named("greeter")
	require.NoError(t, err)
	assert.IsType(t, &french{}, g)

	names := map[reflect.Type]string{}
	for _, r := range c.Registrations() {
		names[r.Type] = r.Name
	}
	assert.Equal(t, "", names[TypeOf[*english]()])
	assert.Equal(t, "greeter", names[TypeOf[*french]()])
}

func TestRegister_OverrideKeepsPosition(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.Register(Constructor(NewEngine)))
	require.NoError(t, c.RegisterInstance(&english{}))
	require.NoError(t, c.Register(Constructor(NewEngine)))

	regs := c.Registrations()
	require.Len(t, regs, 3)
	assert.Equal(t, TypeOf[*Container](), regs[0].Type)
	assert.Equal(t, TypeOf[*Engine](), regs[1].Type)
	assert.Equal(t, TypeOf[*english](), regs[2].Type)
}

func TestRegister_OverrideNotAllowed(t *testing.T) {
	c := newContainer(t, WithOverrideStrategy(OverrideNotAllowed))
	require.NoError(t, c.Register(Constructor(NewEngine)))

	err := c.Register(Constructor(NewEngine, WithName("other")))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrRegistrationConflict))

	err = c.RegisterInstance(&english{}, WithName("engine"))
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "name", appErr.Details["kind"])
	assert.Equal(t, "engine", appErr.Details["key"])

	c.SetOverrideStrategy(OverrideAllowed)
	assert.Equal(t, OverrideAllowed, c.OverrideStrategy())
	require.NoError(t, c.Register(Constructor(NewEngine)))
}

func TestRegisterInstance(t *testing.T) {
	c := newContainer(t)
	calls := []string{}
	c.AddInterceptor(record("recorder", 1, &calls))

	engine := &Engine{Cylinders: 2}
	require.NoError(t, c.RegisterInstance(engine, WithName("tiny"), Primary(), WithTags("small")))

	assert.Same(t, engine, MustResolve[*Engine](c))
	got, err := ResolveNamed[*Engine](c, "tiny")
	require.NoError(t, err)
	assert.Same(t, engine, got)
	assert.Empty(t, calls)
	assert.Equal(t, []reflect.Type{TypeOf[*Engine]()}, c.Tagged("small"))

	err = c.RegisterInstance(nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidUnit))
	err = c.RegisterInstance(&Engine{}, Implements[Greeter]())
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidUnit))
}

func TestLookup_Capabilities(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.Register(Constructor(func() *english { return &english{} }, Implements[Greeter]())))

	g, err := Resolve[Greeter](c)
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())
	assert.True(t, c.Contains(TypeOf[Greeter]()))
	assert.True(t, c.Contains(TypeOf[*english]()))
	assert.False(t, c.Contains(TypeOf[*french]()))
}

func TestLookup_Ambiguous(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.RegisterInstance(&english{}, Implements[Greeter]()))
	require.NoError(t, c.RegisterInstance(&french{}, Implements[Greeter]()))

	_, err := Resolve[Greeter](c)
	require.Error(t, err)
	n, ok := errors.Count(err)
	require.True(t, ok)
	assert.Equal(t, 2, n)

	_, err = c.Provider(TypeOf[Greeter]())
	assert.True(t, errors.HasCode(err, errors.ErrCodeAmbiguousCandidate))

	all, err := ResolveAll[Greeter](c)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "hello", all[0].Greet())
	assert.Equal(t, "bonjour", all[1].Greet())

	_, err = ResolvePrimary[Greeter](c)
	n, _ = errors.Count(err)
	assert.Equal(t, 0, n)
}

func TestLookup_Primary(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.RegisterInstance(&english{}, Implements[Greeter]()))
	require.NoError(t, c.RegisterInstance(&french{}, Implements[Greeter](), Primary()))

	g, err := ResolvePrimary[Greeter](c)
	require.NoError(t, err)
	assert.Equal(t, "bonjour", g.Greet())

	require.NoError(t, c.RegisterInstance(&Engine{}, Primary()))
	_, err = ResolvePrimary[*Engine](c)
	assert.NoError(t, err)
}

func TestLookup_TwoPrimaries(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.RegisterInstance(&english{}, Implements[Greeter](), Primary()))
	require.NoError(t, c.RegisterInstance(&french{}, Implements[Greeter](), Primary()))

	_, err := c.PrimaryInstance(TypeOf[Greeter]())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAmbiguousCandidate))
	n, ok := errors.Count(err)
	require.True(t, ok)
	assert.Equal(t, 2, n)

	_, err = ResolvePrimary[Greeter](c)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAmbiguousCandidate))
}

func TestLookup_NotFound(t *testing.T) {
	c := newContainer(t)

	p, err := c.Provider(TypeOf[*Engine]())
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = Resolve[*Engine](c)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsatisfiedDependency))
	_, err = c.Named("missing")
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsatisfiedDependency))

	_, ok := TryResolve[*Engine](c)
	assert.False(t, ok)
	assert.Panics(t, func() { MustResolve[*Engine](c) })
}

func TestLookup_NamedWrongType(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.RegisterInstance(&english{}, WithName("greeter")))

	_, err := ResolveNamed[*Engine](c, "greeter")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInternal))
}

func TestNameMatching(t *testing.T) {
	sensitive := newContainer(t)
	require.NoError(t, sensitive.Register(Constructor(NewEngine)))
	assert.True(t, sensitive.ContainsName("engine"))
	assert.False(t, sensitive.ContainsName("ENGINE"))

	insensitive := newContainer(t, WithNameMatching(NameMatchingInsensitive))
	require.NoError(t, insensitive.Register(Constructor(NewEngine)))
	e, err := ResolveNamed[*Engine](insensitive, "ENGINE")
	require.NoError(t, err)
	assert.Equal(t, 4, e.Cylinders)
}

func TestNamingStrategyOption(t *testing.T) {
	c := newContainer(t, WithNamingStrategy(SnakeCaseNaming))
	require.NoError(t, c.Register(Constructor(func() *english { return &english{} })))
	assert.True(t, c.ContainsName("english"))

	require.NoError(t, c.Register(Constructor(NewEngine, WithName("Main"))))
	assert.True(t, c.ContainsName("Main"))
}

func TestRegisterModule(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.RegisterModule(carModule{}))

	assert.True(t, c.Contains(TypeOf[carModule]()))
	car := MustResolve[*Car](c)
	assert.Same(t, MustResolve[*Engine](c), car.Engine)
}

func TestTagged(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.Register(Constructor(NewEngine, WithTags("vehicle", "part"))))
	require.NoError(t, c.Register(Constructor(NewCar, WithTags("vehicle"))))

	assert.Equal(t, []reflect.Type{TypeOf[*Engine](), TypeOf[*Car]()}, c.Tagged("vehicle"))
	assert.Equal(t, []reflect.Type{TypeOf[*Engine]()}, c.Tagged("part"))
	assert.Empty(t, c.Tagged("none"))
}

func TestClose(t *testing.T) {
	var order []string
	c := newContainer(t, WithLazySingletons())
	require.NoError(t, c.RegisterInstance(&closerA{closer{name: "a", order: &order}}))
	require.NoError(t, c.RegisterInstance(&closerB{closer{name: "b", order: &order, err: stderrors.New("boom")}}))
	require.NoError(t, Register(c, func() (*closer, error) {
		return &closer{name: "unbuilt", order: &order}, nil
	}))

	err := c.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestClose_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&logger.Config{Level: "warn", Format: "json"}, "weld", &buf)
	c := newContainer(t, WithLogger(l))
	var order []string
	require.NoError(t, c.RegisterInstance(&closerB{closer{name: "b", order: &order, err: stderrors.New("boom")}}))

	require.Error(t, c.Close())
	out := buf.String()
	assert.Contains(t, out, `"operation":"close"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"type":"*di.closerB"`)
}

func TestConstruct_LogsDuration(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "weld", &buf)
	c := newContainer(t, WithLogger(l))
	require.NoError(t, c.Register(Constructor(NewEngine)))

	var constructed bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, `"message":"instance constructed"`) {
			constructed = true
			assert.Contains(t, line, `"operation":"construct"`)
			assert.Contains(t, line, `"duration_ms":`)
			assert.Contains(t, line, `"type":"*di.Engine"`)
		}
	}
	assert.True(t, constructed)
}

func registration(t *testing.T, c *Container, typ reflect.Type) RegistrationInfo {
	t.Helper()
	for _, r := range c.Registrations() {
		if r.Type == typ {
			return r
		}
	}
	t.Fatalf("no registration for %s", typ)
	return RegistrationInfo{}
}
