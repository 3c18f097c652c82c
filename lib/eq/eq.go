/*package eq is a simple package for telling whether two arrays are equal to
one another, exactly or to within a tolerance.*/
package eq

import (
	"math"
)

// Slices returns true if x and y have the same length and elements.
func Slices[T comparable](x, y []T) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Float64sEps returns true if every element of x is within eps of the
// corresponding element of y.
func Float64sEps(x, y []float64, eps float64) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i]+eps < y[i] || x[i]-eps > y[i] {
			return false
		}
	}
	return true
}

// Float64sRel returns true if every element of x is within a fractional
// distance rel of the corresponding element of y. Elements which are both
// zero are equal.
func Float64sRel(x, y []float64, rel float64) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] == y[i] {
			continue
		}
		scale := math.Max(math.Abs(x[i]), math.Abs(y[i]))
		if math.Abs(x[i]-y[i]) > rel*scale {
			return false
		}
	}
	return true
}

// FirstDiff returns the index of the first element where x and y differ by
// more than eps, or -1 if there is none. Slices of different lengths differ
// at the end of the shorter one.
func FirstDiff(x, y []float64, eps float64) int {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		if math.Abs(x[i]-y[i]) > eps {
			return i
		}
	}
	if len(x) != len(y) {
		return n
	}
	return -1
}
