// Package validation provides input validation utilities.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// used for configuration structs; the programmatic chain is used on the
// request path.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    PruneInterval int    `validate:"omitempty,min=1"`
//	    AddressFamily string `validate:"omitempty,oneof=ipv4 ipv6"`
//	}
//	err := validation.Validate(&cfg)
//
// # Programmatic Validation
//
//	v := validation.New().Required("name", name).Range("port", port, 1, 65535)
//	err := v.Validate()
package validation
