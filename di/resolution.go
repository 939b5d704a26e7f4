package di

import (
	"context"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/kbukum/weld/errors"
)

type resolutionKey struct{}

// resolution is the state of one top-level request: the chain of types
// under construction and the flight it is currently waiting on, if any. A
// resolution forked from a construction still in progress keeps a link to
// its parent.
type resolution struct {
	mu      sync.Mutex
	chain   []reflect.Type
	frames  []uint64
	members map[reflect.Type]int
	next    uint64
	parent  *resolution

	// waiting is guarded by flightTable.mu.
	waiting *flight
}

func newResolution() *resolution {
	return &resolution{members: make(map[reflect.Type]int)}
}

func withResolution(ctx context.Context) context.Context {
	if _, ok := ctx.Value(resolutionKey{}).(*resolution); ok {
		return ctx
	}
	return context.WithValue(ctx, resolutionKey{}, newResolution())
}

func resolutionFrom(ctx context.Context) *resolution {
	if res, ok := ctx.Value(resolutionKey{}).(*resolution); ok {
		return res
	}
	return newResolution()
}

func (r *resolution) push(t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.chain = append(r.chain, t)
	r.frames = append(r.frames, r.next)
	r.members[t]++
}

func (r *resolution) pop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	last := r.chain[len(r.chain)-1]
	r.chain = r.chain[:len(r.chain)-1]
	r.frames = r.frames[:len(r.frames)-1]
	if r.members[last]--; r.members[last] == 0 {
		delete(r.members, last)
	}
}

func (r *resolution) contains(t reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members[t] > 0
}

// path returns the chain followed by t, as type names.
func (r *resolution) path(t reflect.Type) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.chain)+1)
	for _, c := range r.chain {
		names = append(names, typeName(c))
	}
	return append(names, typeName(t))
}

// mark identifies the construction on top of the chain.
func (r *resolution) mark() frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := frame{res: r, depth: len(r.frames)}
	if f.depth > 0 {
		f.id = r.frames[f.depth-1]
	}
	return f
}

// fork starts a resolution that continues r's chain.
func (r *resolution) fork() *resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &resolution{
		chain:   slices.Clone(r.chain),
		frames:  slices.Clone(r.frames),
		members: maps.Clone(r.members),
		next:    r.next,
		parent:  r,
	}
}

// within reports whether r is other or was forked from it.
func (r *resolution) within(other *resolution) bool {
	for x := r; x != nil; x = x.parent {
		if x == other {
			return true
		}
	}
	return false
}

// frame is one construction of a resolution, identified by its depth and
// a per-resolution sequence number.
type frame struct {
	res   *resolution
	depth int
	id    uint64
}

// active reports whether the construction is still on its chain.
func (f frame) active() bool {
	if f.res == nil || f.depth == 0 {
		return false
	}
	f.res.mu.Lock()
	defer f.res.mu.Unlock()
	return len(f.res.frames) >= f.depth && f.res.frames[f.depth-1] == f.id
}

// flight marks a first construction in progress. done is closed when the
// owner finishes, successfully or not.
type flight struct {
	owner *resolution
	done  chan struct{}
}

// flightTable serializes first constructions per key across resolutions.
type flightTable struct {
	mu      sync.Mutex
	flights map[any]*flight
}

func newFlightTable() *flightTable {
	return &flightTable{flights: make(map[any]*flight)}
}

// begin makes res the owner of key or returns the flight to wait for. A
// wait that would close a loop back to res, or to a resolution res was
// forked from, is reported as a circular dependency on t.
func (ft *flightTable) begin(res *resolution, key any, t reflect.Type) (*flight, bool, error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	f, ok := ft.flights[key]
	if !ok {
		f = &flight{owner: res, done: make(chan struct{})}
		ft.flights[key] = f
		return f, true, nil
	}

	for r := f.owner; r != nil; r = r.waiting.owner {
		if res.within(r) {
			return nil, false, errors.CircularDependency(res.path(t))
		}
		if r.waiting == nil {
			break
		}
	}
	res.waiting = f
	return f, false, nil
}

func (ft *flightTable) wait(res *resolution, f *flight) {
	<-f.done
	ft.mu.Lock()
	res.waiting = nil
	ft.mu.Unlock()
}

func (ft *flightTable) end(key any, f *flight) {
	ft.mu.Lock()
	delete(ft.flights, key)
	ft.mu.Unlock()
	close(f.done)
}
