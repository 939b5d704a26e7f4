// Package di provides a dependency injection container.
//
// Units describe how to build a type: its factory, the parameters the
// factory needs, a scope and an optional name. The container keeps one
// provider per registered type, resolves parameters recursively, detects
// circular dependencies and runs post-construct interceptors on every new
// instance. Lazy and ProviderOf parameters defer resolution and can break
// construction cycles.
//
// # Registration
//
//	c, err := di.New()
//	if err != nil {
//	    return err
//	}
//	err = c.RegisterAll(
//	    di.Constructor(NewEngine),
//	    di.Constructor(NewCar, di.WithScope(di.Prototype)),
//	)
//
// # Resolution
//
//	car := di.MustResolve[*Car](c)
//
// # Declared units
//
// Units passed to Declare are registered on demand, the first time an
// unqualified parameter needs a type that nothing registered provides.
package di
