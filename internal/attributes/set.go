package attributes

import "strings"

// Set is an ordered collection of translatable attribute names.
type Set struct {
	names []string
	index map[string]struct{}
}

// NewSet builds a Set, trimming names and dropping blanks and duplicates while
// keeping first-seen order.
func NewSet(names ...string) Set {
	set := Set{index: make(map[string]struct{}, len(names))}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, seen := set.index[name]; seen {
			continue
		}
		set.index[name] = struct{}{}
		set.names = append(set.names, name)
	}
	return set
}

// Has reports membership.
func (s Set) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns a copy of the ordered names.
func (s Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of names.
func (s Set) Len() int {
	return len(s.names)
}

// Empty reports whether the set has no names.
func (s Set) Empty() bool {
	return len(s.names) == 0
}
