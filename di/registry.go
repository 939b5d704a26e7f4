package di

import (
	"reflect"
	"slices"
	"strings"

	"github.com/kbukum/weld/errors"
)

// entry is one row of the type index. Catalog entries have no provider.
type entry struct {
	typ      reflect.Type
	name     string
	primary  bool
	caps     map[reflect.Type]struct{}
	tags     []string
	unit     *Unit
	provider Provider
}

func newEntry(t reflect.Type, name string, u *Unit, p Provider) *entry {
	e := &entry{
		typ:      t,
		name:     name,
		primary:  u.Primary,
		caps:     make(map[reflect.Type]struct{}, len(u.Implements)),
		tags:     slices.Clone(u.Tags),
		unit:     u,
		provider: p,
	}
	for _, c := range u.Implements {
		e.caps[c] = struct{}{}
	}
	return e
}

// assignable is the candidate resolver: an entry satisfies a request for t
// when it was registered as exactly t or declared t as a capability.
func assignable(t reflect.Type, e *entry) bool {
	if e.typ == t {
		return true
	}
	_, ok := e.caps[t]
	return ok
}

func (e *entry) hasTag(tag string) bool {
	return slices.Contains(e.tags, tag)
}

// registry holds the type index (insertion ordered), the name index and
// the catalog of declared units. Callers hold Container.mu.
type registry struct {
	order   []reflect.Type
	byType  map[reflect.Type]*entry
	byName  map[string]*entry
	catalog []*entry
	fold    bool
}

func newRegistry(fold bool) *registry {
	return &registry{
		byType: make(map[reflect.Type]*entry),
		byName: make(map[string]*entry),
		fold:   fold,
	}
}

func (r *registry) key(name string) string {
	if r.fold {
		return strings.ToLower(name)
	}
	return name
}

func (r *registry) named(name string) (*entry, bool) {
	e, ok := r.byName[r.key(name)]
	return e, ok
}

func (r *registry) hasType(t reflect.Type) bool {
	_, ok := r.byType[t]
	return ok
}

// put inserts e. A replaced type keeps its position in the index and loses
// its name; a name taken from another entry now points at e.
func (r *registry) put(e *entry) {
	if old, ok := r.byType[e.typ]; ok {
		if k := r.key(old.name); r.byName[k] == old {
			delete(r.byName, k)
		}
	} else {
		r.order = append(r.order, e.typ)
	}
	r.byType[e.typ] = e
	if e.name != "" {
		k := r.key(e.name)
		if prev, ok := r.byName[k]; ok && prev.typ != e.typ {
			prev.name = ""
		}
		r.byName[k] = e
	}
}

// candidates returns every registered entry assignable to t, in insertion
// order.
func (r *registry) candidates(t reflect.Type) []*entry {
	var out []*entry
	for _, typ := range r.order {
		if e := r.byType[typ]; assignable(t, e) {
			out = append(out, e)
		}
	}
	return out
}

// providerFor returns the unique provider assignable to t, nil when there
// is none.
func (r *registry) providerFor(t reflect.Type) (Provider, error) {
	cands := r.candidates(t)
	switch len(cands) {
	case 0:
		return nil, nil
	case 1:
		return cands[0].provider, nil
	default:
		return nil, errors.AmbiguousCandidate(len(cands), typeName(t))
	}
}

func (r *registry) primaries(t reflect.Type) []*entry {
	var out []*entry
	for _, e := range r.candidates(t) {
		if e.primary {
			out = append(out, e)
		}
	}
	return out
}

func (r *registry) declared(t reflect.Type) []*entry {
	var out []*entry
	for _, e := range r.catalog {
		if assignable(t, e) {
			out = append(out, e)
		}
	}
	return out
}

func (r *registry) entries() []*entry {
	out := make([]*entry, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.byType[t])
	}
	return out
}
