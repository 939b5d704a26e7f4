package di

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/weld/logger"
)

type Engine struct {
	Cylinders int
}

func NewEngine() *Engine { return &Engine{Cylinders: 4} }

type Car struct {
	Engine *Engine
}

func NewCar(e *Engine) *Car { return &Car{Engine: e} }

type Greeter interface {
	Greet() string
}

type english struct{}

func (*english) Greet() string { return "hello" }

type french struct{}

func (*french) Greet() string { return "bonjour" }

type cycA struct{ b *cycB }
type cycB struct{ a *cycA }

type lazyA struct{ b Lazy[*lazyB] }
type lazyB struct{ a *lazyA }

type selfGreeter struct{ next Greeter }

func (g *selfGreeter) Greet() string { return g.next.Greet() }

// garage unwraps its valet while it is being built.
type garage struct{ valet *valet }
type valet struct{ garage *garage }

func newGarage(v Lazy[*valet]) (*garage, error) {
	got, err := v.Get()
	if err != nil {
		return nil, err
	}
	return &garage{valet: got}, nil
}

type counter struct {
	n atomic.Int32
}

func (c *counter) engineFactory() func() (*Engine, error) {
	return func() (*Engine, error) {
		c.n.Add(1)
		return &Engine{Cylinders: 6}, nil
	}
}

type initializer struct {
	ready bool
	fail  bool
}

func (i *initializer) PostConstruct() error {
	if i.fail {
		return fmt.Errorf("not ready")
	}
	i.ready = true
	return nil
}

type closer struct {
	name  string
	order *[]string
	err   error
}

func (c *closer) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

type closerA struct{ closer }
type closerB struct{ closer }

type carModule struct{}

func (carModule) Provides() []*Unit {
	return []*Unit{
		Constructor(NewCar),
		Constructor(NewEngine),
	}
}

// record returns an interceptor that appends its name to calls.
func record(name string, priority int, calls *[]string) Interceptor {
	return NewInterceptor(name, priority, func(_ context.Context, instance any) error {
		if _, ok := instance.(*Engine); ok {
			*calls = append(*calls, name)
		}
		return nil
	})
}

func newContainer(t *testing.T, opts ...Option) *Container {
	t.Helper()
	c, err := New(append([]Option{WithLogger(logger.Nop())}, opts...)...)
	require.NoError(t, err)
	return c
}
