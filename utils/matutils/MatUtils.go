// Package matutils implements utility functions for working with
// mat.Matrix structs
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// MaxVec finds and returns the index of the maximum value in a vector.
// If multiple equal max values exist, only the first one is returned.
func MaxVec(values mat.Vector) int {
	max, idx := values.AtVec(0), 0

	for i := 1; i < values.Len(); i++ {
		if values.AtVec(i) > max {
			max = values.AtVec(i)
			idx = i
		}
	}
	return idx
}

// OneHot creates a one-hot vector of length len with a 1.0 at index i
func OneHot(i, len int) *mat.VecDense {
	vec := mat.NewVecDense(len, nil)
	vec.SetVec(i, 1.0)
	return vec
}

// OneHotIndex returns the index of the first non-zero element of a
// one-hot vector, or -1 if all elements are zero
func OneHotIndex(v mat.Vector) int {
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) != 0.0 {
			return i
		}
	}
	return -1
}
