// Package locale resolves which locale an entity instance reads and writes.
//
// Every setting follows the same precedence: an override set on the instance,
// then the default declared for the entity type, then the process-wide
// default held by State.
package locale

// Resolve returns the first present value among the instance override and the
// type default, falling back to global. A nil pointer means "not set".
func Resolve[T any](override, typeDefault *T, global T) T {
	if override != nil {
		return *override
	}
	if typeDefault != nil {
		return *typeDefault
	}
	return global
}

// ResolveCode behaves like Resolve but also treats empty strings as absent, so
// an entity type cannot accidentally blank out the global locale.
func ResolveCode(override, typeDefault *string, global string) string {
	if override != nil && *override != "" {
		return *override
	}
	if typeDefault != nil && *typeDefault != "" {
		return *typeDefault
	}
	return global
}
