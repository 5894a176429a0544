// Package attributes partitions flat attribute maps into the base table part
// and the translation table part.
package attributes

// Split partitions values by membership in set. Keys found in set go to
// translatable, every other key stays in base. values is not modified and both
// results are always non-nil.
func Split(values map[string]any, set Set) (base, translatable map[string]any) {
	base = make(map[string]any, len(values))
	translatable = make(map[string]any, set.Len())
	for key, value := range values {
		if set.Has(key) {
			translatable[key] = value
			continue
		}
		base[key] = value
	}
	return base, translatable
}

// Only returns the entries of values whose keys belong to set.
func Only(values map[string]any, set Set) map[string]any {
	_, translatable := Split(values, set)
	return translatable
}

// Except returns a copy of values without the listed keys.
func Except(values map[string]any, keys ...string) map[string]any {
	drop := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		drop[key] = struct{}{}
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		if _, skip := drop[key]; skip {
			continue
		}
		out[key] = value
	}
	return out
}

// Clone returns a shallow copy of values. Nil input yields an empty map.
func Clone(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}

// Normalize rewrites driver byte slices as strings in place. Text columns
// come back as []byte from some drivers when scanned into an untyped map.
func Normalize(values map[string]any) map[string]any {
	for key, value := range values {
		if raw, ok := value.([]byte); ok {
			values[key] = string(raw)
		}
	}
	return values
}
