// Package listing provides the predicate filtering, keyed sorting and
// pagination shared by the test-case and test-result listings.
package listing

import (
	"sort"
	"strings"
)

// Predicate reports whether a record passes one filter condition.
type Predicate[T any] func(T) bool

// Comparator orders two records; it returns a negative number when a sorts
// before b, zero when they are equivalent and a positive number otherwise.
type Comparator[T any] func(a, b T) int

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Filter keeps the records satisfying every predicate. Nil predicates are
// ignored so callers can build the list from optional filter fields.
func Filter[T any](items []T, predicates ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchesAll(item, predicates) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAll[T any](item T, predicates []Predicate[T]) bool {
	for _, p := range predicates {
		if p != nil && !p(item) {
			return false
		}
	}
	return true
}

// Sort orders items in place with a stable sort. A nil comparator leaves the
// input order untouched.
func Sort[T any](items []T, cmp Comparator[T]) {
	if cmp == nil {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return cmp(items[i], items[j]) < 0
	})
}

// Reverse flips a comparator.
func Reverse[T any](cmp Comparator[T]) Comparator[T] {
	return func(a, b T) int { return cmp(b, a) }
}

// WithOrder applies the direction to an ascending comparator.
func WithOrder[T any](cmp Comparator[T], order Order) Comparator[T] {
	if order == Desc {
		return Reverse(cmp)
	}
	return cmp
}

// ByString builds an ascending lexicographic comparator over a string key.
func ByString[T any](key func(T) string) Comparator[T] {
	return func(a, b T) int { return strings.Compare(key(a), key(b)) }
}

// ByInt64 builds an ascending numeric comparator.
func ByInt64[T any](key func(T) int64) Comparator[T] {
	return func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	}
}

// Equals builds a predicate comparing a field with want. An empty want
// imposes no constraint and yields a nil predicate.
func Equals[T any](want string, field func(T) string) Predicate[T] {
	if want == "" {
		return nil
	}
	return func(item T) bool { return field(item) == want }
}

// AnyOf passes records whose values intersect wanted. An empty wanted list
// yields a nil predicate.
func AnyOf[T any](wanted []string, field func(T) []string) Predicate[T] {
	if len(wanted) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		set[w] = struct{}{}
	}
	return func(item T) bool {
		for _, v := range field(item) {
			if _, ok := set[v]; ok {
				return true
			}
		}
		return false
	}
}

// Paginate returns the window [offset, offset+limit). A limit of zero or
// less means no upper bound.
func Paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
