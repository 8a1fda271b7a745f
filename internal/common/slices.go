package common

// IsEmpty reports whether s has no elements.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// IsSingle reports whether s has exactly one element.
func IsSingle[S ~[]E, E any](s S) bool {
	return len(s) == 1
}

// IsMultiple reports whether s has more than one element.
func IsMultiple[S ~[]E, E any](s S) bool {
	return len(s) > 1
}

// First returns the first element of s, or the zero value and false.
func First[S ~[]E, E any](s S) (E, bool) {
	if IsEmpty(s) {
		var zero E

		return zero, false
	}

	return s[0], true
}

// IndexGroups returns the positions of the elements of s grouped by key, in
// ascending order. Elements for which key reports false are left out.
func IndexGroups[S ~[]E, E any, K comparable](s S, key func(E) (K, bool)) map[K][]int {
	groups := make(map[K][]int)

	for i, e := range s {
		if k, ok := key(e); ok {
			groups[k] = append(groups[k], i)
		}
	}

	return groups
}
