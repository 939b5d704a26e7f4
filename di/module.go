package di

import (
	"cmp"
	"slices"
)

// Module groups related units. The module value itself is registered as a
// defined instance so its units can depend on it.
type Module interface {
	Provides() []*Unit
}

// RegisterModule registers m, then its units ordered by ascending
// parameter count. Units with equal counts keep their order.
func (c *Container) RegisterModule(m Module, opts ...UnitOption) error {
	if err := c.RegisterInstance(m, opts...); err != nil {
		return err
	}
	units := slices.Clone(m.Provides())
	slices.SortStableFunc(units, func(a, b *Unit) int {
		return cmp.Compare(paramCount(a), paramCount(b))
	})
	return c.RegisterAll(units...)
}
