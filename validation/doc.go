// Package validation checks container inputs before they reach the registry.
//
// Struct tag validation covers declarative constraints on units and
// configuration. The programmatic Validator collects field errors for checks
// that tags cannot express, such as interface satisfaction of a reflected type.
//
// # Struct Tag Validation
//
//	type unitSpec struct {
//	    Type  reflect.Type `validate:"required"`
//	    Scope string       `validate:"oneof=singleton prototype"`
//	}
//	err := validation.Validate(spec)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Implements("implements[0]", impl, iface)
//	err := v.Err()
package validation
