package di

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/kbukum/weld/errors"
)

// InterceptionPoint names a stage at which interceptors run.
type InterceptionPoint string

// PostConstruct runs after a new instance is built, before it is cached.
const PostConstruct InterceptionPoint = "post_construct"

// Interceptor is a hook run on every newly constructed instance. Lower
// priorities run first.
type Interceptor interface {
	Point() InterceptionPoint
	Priority() int
	Intercept(ctx context.Context, instance any) error
}

// Named is implemented by interceptors that want a readable name in errors
// and logs.
type Named interface {
	Name() string
}

// InterceptorFunc is the function form of an interceptor.
type InterceptorFunc func(ctx context.Context, instance any) error

type funcInterceptor struct {
	name     string
	priority int
	fn       InterceptorFunc
}

// NewInterceptor adapts fn to a post-construct Interceptor.
func NewInterceptor(name string, priority int, fn InterceptorFunc) Interceptor {
	return &funcInterceptor{name: name, priority: priority, fn: fn}
}

func (i *funcInterceptor) Point() InterceptionPoint { return PostConstruct }
func (i *funcInterceptor) Priority() int            { return i.priority }
func (i *funcInterceptor) Name() string             { return i.name }

func (i *funcInterceptor) Intercept(ctx context.Context, instance any) error {
	return i.fn(ctx, instance)
}

func hookName(i Interceptor) string {
	if n, ok := i.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", i)
}

// interceptorChain keeps interceptors per point sorted by ascending
// priority, ties in insertion order. Adding an interceptor twice is a no-op.
type interceptorChain struct {
	mu      sync.RWMutex
	points  []InterceptionPoint
	byPoint map[InterceptionPoint][]Interceptor
}

func newInterceptorChain() *interceptorChain {
	return &interceptorChain{byPoint: make(map[InterceptionPoint][]Interceptor)}
}

func sameInterceptor(a, b Interceptor) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func (ic *interceptorChain) add(i Interceptor) bool {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	point := i.Point()
	list := ic.byPoint[point]
	if slices.ContainsFunc(list, func(x Interceptor) bool { return sameInterceptor(x, i) }) {
		return false
	}
	if _, ok := ic.byPoint[point]; !ok {
		ic.points = append(ic.points, point)
	}
	pos := len(list)
	for idx, x := range list {
		if x.Priority() > i.Priority() {
			pos = idx
			break
		}
	}
	ic.byPoint[point] = slices.Insert(list, pos, i)
	return true
}

func (ic *interceptorChain) remove(i Interceptor) bool {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	point := i.Point()
	list := ic.byPoint[point]
	idx := slices.IndexFunc(list, func(x Interceptor) bool { return sameInterceptor(x, i) })
	if idx < 0 {
		return false
	}
	ic.byPoint[point] = slices.Delete(slices.Clone(list), idx, idx+1)
	return true
}

func (ic *interceptorChain) clear() {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.points = nil
	ic.byPoint = make(map[InterceptionPoint][]Interceptor)
}

func (ic *interceptorChain) at(point InterceptionPoint) []Interceptor {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return slices.Clone(ic.byPoint[point])
}

func (ic *interceptorChain) all() []Interceptor {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	var out []Interceptor
	for _, p := range ic.points {
		out = append(out, ic.byPoint[p]...)
	}
	return out
}

// run invokes the interceptors at point in order and stops at the first
// failure, reported as POST_CONSTRUCT_FAILURE.
func (ic *interceptorChain) run(ctx context.Context, point InterceptionPoint, instance any, t reflect.Type) error {
	for _, i := range ic.at(point) {
		if err := i.Intercept(ctx, instance); err != nil {
			return errors.PostConstructFailure(hookName(i), typeName(t), err)
		}
	}
	return nil
}
