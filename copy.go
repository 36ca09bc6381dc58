package memoslot

import (
	"maps"
	"slices"
)

// CopyFunc returns a copy of v that shares no mutable state with it.
type CopyFunc[O any] func(v O) O

func identity[O any](v O) O { return v }

// CloneSlice is a CopyFunc for slices of values. A nil slice stays nil.
func CloneSlice[E any](s []E) []E {
	return slices.Clone(s)
}

// CloneMap is a CopyFunc for maps of values. A nil map stays nil.
func CloneMap[K comparable, V any](m map[K]V) map[K]V {
	return maps.Clone(m)
}
