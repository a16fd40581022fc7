package skills

import "sort"

// Set is an unordered collection of canonical skill names.
type Set map[string]struct{}

// NewSet builds a Set from the given names. Empty names are ignored.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// Add inserts name into the set.
func (s Set) Add(name string) {
	if name == "" {
		return
	}
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of skills in the set.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the members in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the skills present in both s and other.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for name := range s {
		if other.Has(name) {
			out.Add(name)
		}
	}
	return out
}

// Difference returns the skills in s that are not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for name := range s {
		if !other.Has(name) {
			out.Add(name)
		}
	}
	return out
}

// Equal reports whether both sets hold exactly the same skills.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for name := range s {
		if !other.Has(name) {
			return false
		}
	}
	return true
}
