package di

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/weld/errors"
)

func TestInterceptors_PriorityOrder(t *testing.T) {
	c := newContainer(t, WithoutDefaultInterceptors())
	var calls []string
	c.AddInterceptor(record("late", 10, &calls))
	c.AddInterceptor(record("first", 1, &calls))
	c.AddInterceptor(record("tie", 10, &calls))

	require.NoError(t, c.Register(Constructor(NewEngine)))
	assert.Equal(t, []string{"first", "late", "tie"}, calls)
}

func TestInterceptors_NotRunOnCachedInstances(t *testing.T) {
	c := newContainer(t)
	var calls []string
	c.AddInterceptor(record("count", 1, &calls))

	require.NoError(t, c.Register(Constructor(NewEngine)))
	MustResolve[*Engine](c)
	MustResolve[*Engine](c)
	assert.Len(t, calls, 1)

	c.RemoveAllInterceptors()
	c.AddInterceptor(record("count", 1, &calls))
	require.NoError(t, c.Register(Constructor(NewEngine, WithScope(Prototype))))
	MustResolve[*Engine](c)
	MustResolve[*Engine](c)
	assert.Len(t, calls, 3)
}

func TestInterceptors_AddRemove(t *testing.T) {
	c := newContainer(t, WithoutDefaultInterceptors())
	i := NewInterceptor("once", 3, func(context.Context, any) error { return nil })

	c.AddInterceptor(i)
	c.AddInterceptor(i)
	assert.Equal(t, []string{"once"}, hookNames(c.Interceptors()))

	c.AddInterceptor(PostConstructInterceptor())
	c.AddInterceptor(PostConstructInterceptor())
	assert.Equal(t, []string{"PostConstruct", "once"}, hookNames(c.InterceptorsAt(PostConstruct)))

	assert.True(t, c.RemoveInterceptor(i))
	assert.False(t, c.RemoveInterceptor(i))
	assert.Equal(t, []string{"PostConstruct"}, hookNames(c.Interceptors()))

	c.RemoveAllInterceptors()
	assert.Empty(t, c.Interceptors())
	assert.Empty(t, c.InterceptorsAt(PostConstruct))
}

func TestInterceptors_FailureNamesHook(t *testing.T) {
	c := newContainer(t)
	boom := stderrors.New("boom")
	c.AddInterceptor(NewInterceptor("audit", 5, func(context.Context, any) error { return boom }))

	err := c.Register(Constructor(NewEngine))
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodePostConstructFailure, appErr.Code)
	assert.Equal(t, "audit", appErr.Details["hook"])
	assert.Equal(t, "*di.Engine", appErr.Details["type"])
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Contains(TypeOf[*Engine]()))
}

func TestPostConstructInterceptor(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, Register(c, func() (*initializer, error) { return &initializer{}, nil }))
	assert.True(t, MustResolve[*initializer](c).ready)

	err := c.Register(Supplier(func() (*initializer, error) { return &initializer{fail: true}, nil }))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodePostConstructFailure, appErr.Code)
	assert.Equal(t, "PostConstruct", appErr.Details["hook"])
}

type dashboard struct {
	Engine   *Engine             `inject:""`
	Greeter  Greeter             `inject:"fr"`
	Car      Lazy[*Car]          `inject:""`
	Spare    ProviderOf[*Engine] `inject:""`
	Preset   *english            `inject:""`
	Untagged *Engine
}

type badDashboard struct {
	engine *Engine `inject:""`
}

func TestFieldInjector(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.Register(Constructor(NewEngine)))
	require.NoError(t, c.RegisterInstance(&french{}, WithName("fr"), Implements[Greeter]()))
	require.NoError(t, c.Declare(Constructor(NewCar)))

	preset := &english{}
	require.NoError(t, Register(c, func() (*dashboard, error) {
		return &dashboard{Preset: preset}, nil
	}))

	d := MustResolve[*dashboard](c)
	engine := MustResolve[*Engine](c)
	assert.Same(t, engine, d.Engine)
	assert.Equal(t, "bonjour", d.Greeter.Greet())
	assert.Same(t, engine, d.Car.MustGet().Engine)
	assert.Same(t, engine, d.Spare.MustGet())
	assert.Same(t, preset, d.Preset)
	assert.Nil(t, d.Untagged)
}

func TestFieldInjector_Failures(t *testing.T) {
	c := newContainer(t)
	err := Register(c, func() (*badDashboard, error) { return &badDashboard{}, nil })
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePostConstructFailure))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidUnit))

	err = Register(c, func() (*dashboard, error) { return &dashboard{}, nil })
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsatisfiedDependency))
}

func TestFieldInjector_DetectsCycles(t *testing.T) {
	type selfRef struct {
		Self *selfRef `inject:""`
	}
	c := newContainer(t, WithLazySingletons())
	require.NoError(t, Register(c, func() (*selfRef, error) { return &selfRef{}, nil }))

	_, err := Resolve[*selfRef](c)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCircularDependency))
}

func hookNames(is []Interceptor) []string {
	out := make([]string, len(is))
	for i, ic := range is {
		out[i] = hookName(ic)
	}
	return out
}
