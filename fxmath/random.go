package fxmath

import "math/rand/v2"

// Random returns a uniformly chosen element of items using r. It reports
// false for an empty slice. A nil r uses the package source.
func Random[T any](r *rand.Rand, items []T) (T, bool) {
	var zero T
	switch len(items) {
	case 0:
		return zero, false
	case 1:
		return items[0], true
	}
	if r == nil {
		return items[rand.IntN(len(items))], true
	}
	return items[r.IntN(len(items))], true
}

// RandomElement is Random with the package source.
func RandomElement[T any](items []T) (T, bool) {
	return Random(nil, items)
}
