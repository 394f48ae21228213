// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package sets implements a generic set as a `map[T]struct{}`, used to track visited nodes, descriptors
// and uids.
package sets

// Set of keys of type T.
type Set[T comparable] map[T]struct{}

// Make returns an empty Set. Size is optional, and if given reserves space for that many keys.
func Make[T comparable](size ...int) Set[T] {
	if len(size) == 0 {
		return make(Set[T])
	}
	return make(Set[T], size[0])
}

// MakeWith returns a Set with the given keys inserted.
func MakeWith[T comparable](keys ...T) Set[T] {
	s := Make[T](len(keys))
	s.Insert(keys...)
	return s
}

// Has returns whether key is in the set.
func (s Set[T]) Has(key T) bool {
	_, found := s[key]
	return found
}

// Insert keys into the set.
func (s Set[T]) Insert(keys ...T) {
	for _, key := range keys {
		s[key] = struct{}{}
	}
}

// InsertNew inserts key and returns true, or returns false if it was already in the set.
func (s Set[T]) InsertNew(key T) bool {
	if s.Has(key) {
		return false
	}
	s[key] = struct{}{}
	return true
}

// Equal returns whether s and s2 have the exact same keys.
func (s Set[T]) Equal(s2 Set[T]) bool {
	if len(s) != len(s2) {
		return false
	}
	for key := range s {
		if !s2.Has(key) {
			return false
		}
	}
	return true
}
