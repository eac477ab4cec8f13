package reconcile

import "sort"

// KeySet is a set of numeric record keys.
type KeySet map[int64]struct{}

// NewKeySet builds a set from keys, dropping duplicates.
func NewKeySet(keys ...int64) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts key.
func (s KeySet) Add(key int64) {
	s[key] = struct{}{}
}

// Has reports whether key is in the set.
func (s KeySet) Has(key int64) bool {
	_, ok := s[key]
	return ok
}

// Union adds every key of other to s.
func (s KeySet) Union(other KeySet) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Minus returns a new set with the keys of s that are not in other.
func (s KeySet) Minus(other KeySet) KeySet {
	out := make(KeySet)
	for k := range s {
		if !other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the keys in ascending order.
func (s KeySet) Sorted() []int64 {
	keys := make([]int64, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
