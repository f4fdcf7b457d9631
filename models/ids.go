package models

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidPosition = errors.New("models: invalid target position")
	ErrInvalidOrder    = errors.New("models: id order is not a permutation of the existing ids")
)

// sortedKeys returns the keys of m that are >= from, ascending.
func sortedKeys[T any](m map[int]T, from int) []int {
	keys := make([]int, 0, len(m))
	for key := range m {
		if key >= from {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// rekey assigns ids base, base+1, ... to the entries listed in order. Keys below
// base are carried over untouched. The returned mapping is old key to new key.
func rekey[T any](m map[int]T, order []int, base int, setID func(T, int)) (map[int]T, map[int]int) {
	out := make(map[int]T, len(m))
	mapping := make(map[int]int, len(m))
	for key, value := range m {
		if key < base {
			out[key] = value
			mapping[key] = key
		}
	}
	for offset, oldKey := range order {
		newKey := base + offset
		value := m[oldKey]
		setID(value, newKey)
		out[newKey] = value
		mapping[oldKey] = newKey
	}
	return out, mapping
}

// compact renumbers every key >= base densely from base in ascending key order.
func compact[T any](m map[int]T, base int, setID func(T, int)) (map[int]T, map[int]int) {
	return rekey(m, sortedKeys(m, base), base, setID)
}

// reorder renumbers the keys >= base following order, which must name each of
// them exactly once.
func reorder[T any](m map[int]T, order []int, base int, setID func(T, int)) (map[int]T, map[int]int, error) {
	existing := sortedKeys(m, base)
	if len(order) != len(existing) {
		return nil, nil, fmt.Errorf("reorder %d ids, have %d: %w", len(order), len(existing), ErrInvalidOrder)
	}
	seen := make(map[int]bool, len(order))
	for _, key := range order {
		if _, ok := m[key]; !ok || key < base || seen[key] {
			return nil, nil, fmt.Errorf("reorder id %d: %w", key, ErrInvalidOrder)
		}
		seen[key] = true
	}
	out, mapping := rekey(m, order, base, setID)
	return out, mapping, nil
}

// move takes the entry at id out of the ascending key list, inserts it so that it
// lands on target once the list is renumbered from base, and renumbers. Targets
// past the end append.
func move[T any](m map[int]T, id, target, base int, setID func(T, int)) (map[int]T, map[int]int, error) {
	if _, ok := m[id]; !ok || id < base {
		return nil, nil, fmt.Errorf("move id %d: %w", id, ErrInvalidPosition)
	}
	if _, ok := m[target]; !ok || target < base {
		return nil, nil, fmt.Errorf("move to %d: %w", target, ErrInvalidPosition)
	}
	order := sortedKeys(m, base)
	index := slices.Index(order, id)
	order = slices.Delete(order, index, index+1)
	insertAt := min(target-base, len(order))
	order = slices.Insert(order, insertAt, id)
	out, mapping := rekey(m, order, base, setID)
	return out, mapping, nil
}
