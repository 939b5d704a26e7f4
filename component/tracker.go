package component

import (
	"context"

	"github.com/kbukum/weld/di"
)

// TrackerPriority runs the tracker after field injection.
const TrackerPriority = di.FieldInjectPriority + 1

// Tracker returns a post-construct interceptor that registers every newly
// constructed Component with r. A prototype that builds several instances
// with the same name fails on the second one.
//
//	reg := component.NewRegistry()
//	c.AddInterceptor(component.Tracker(reg))
//	...
//	if err := reg.StartAll(ctx); err != nil { ... }
func Tracker(r *Registry) di.Interceptor {
	return di.NewInterceptor("ComponentTracker", TrackerPriority, func(_ context.Context, instance any) error {
		if c, ok := instance.(Component); ok {
			return r.Register(c)
		}
		return nil
	})
}
