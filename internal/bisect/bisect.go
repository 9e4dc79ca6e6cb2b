// Package bisect implements integer bisection over an index domain.
package bisect

import "errors"

// ErrEmptyDomain is returned when the domain has no elements.
var ErrEmptyDomain = errors.New("bisect: cannot bisect an empty domain")

// Mapper converts an index of the domain into a testable value.
type Mapper[T any] func(index int) T

// Tester reports whether a value lies in the "right" range, which moves the
// right edge of the window down to it.
type Tester[T any] func(value T) bool

// TesterFunc is a Tester that can fail. A failure aborts the search.
type TesterFunc[T any] func(value T) (bool, error)

// Search bisects the index domain [0, n) and returns mapper(right) once the
// window has width 1.
//
// Index 0 is assumed to fail tester and index n-1 to pass it. Neither edge is
// tested unless the window narrows onto it, so with n == 1 the single element
// is returned without calling tester.
func Search[T any](n int, mapper Mapper[T], tester Tester[T]) (T, error) {
	return SearchFunc(n, mapper, func(v T) (bool, error) {
		return tester(v), nil
	})
}

// SearchFunc is Search with a fallible tester. The first tester error stops
// the search and is returned as is.
func SearchFunc[T any](n int, mapper Mapper[T], tester TesterFunc[T]) (T, error) {
	var zero T
	if n < 1 {
		return zero, ErrEmptyDomain
	}

	left := 0
	right := n - 1

	for left+1 < right {
		mid := Midpoint(left, right)

		ok, err := tester(mapper(mid))
		if err != nil {
			return zero, err
		}

		if ok {
			right = mid
		} else {
			left = mid
		}
	}

	return mapper(right), nil
}

// Midpoint returns the truncated midpoint of two non-negative indices.
func Midpoint(low, high int) int {
	return (low + high) / 2
}

// MaxSteps returns an upper bound on the tester calls of a search over n
// elements.
func MaxSteps(n int) int {
	steps := 0
	left, right := 0, n-1
	for left+1 < right {
		mid := Midpoint(left, right)
		// keep the larger half
		if mid-left > right-mid {
			right = mid
		} else {
			left = mid
		}
		steps++
	}
	return steps
}
