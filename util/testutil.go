// Copyright (c) 2023 Colin McRae

package util

import (
	"fmt"
	"math/rand"
)

// CreateUnimodularPair creates a pair of inverse matrices with integer
// entries and determinant +/- 1, by composing random elementary row
// operations drawn from rnd. The inverse of adding c times row i to row
// j is adding -c times row i to row j, so the pair stays exactly inverse
// at every step. Entries are kept small enough that int64 matrix
// arithmetic cannot overflow.
//
// The first return value doubles as a random full-rank basis for
// reduction tests; the second is its exact inverse.
func CreateUnimodularPair(dim int, rnd *rand.Rand) ([]int64, []int64, error) {
	const maxRowOpEntry = 10
	const maxRowOps = 10
	const maxMatrixEntry = 100
	if dim < 2 {
		return nil, nil, fmt.Errorf("CreateUnimodularPair: dimension %d < 2", dim)
	}
	retValA := make([]int64, dim*dim)
	retValB := make([]int64, dim*dim)
	for j := 0; j < dim; j++ {
		retValA[j*dim+j] = 1
		retValB[j*dim+j] = 1
	}

	for i := 0; i < maxRowOps; i++ {
		srcRow := rnd.Intn(dim)
		destRow := rnd.Intn(dim)
		multiple := int64(rnd.Intn(maxRowOpEntry) - (maxRowOpEntry / 2))
		if multiple == 0 {
			multiple = 1
		}
		if srcRow == destRow {
			if destRow < dim/2 {
				destRow += dim / 2
			} else {
				destRow -= dim / 2
			}
		}
		rowOpMatrixA := make([]int64, dim*dim)
		rowOpMatrixB := make([]int64, dim*dim)
		for j := 0; j < dim; j++ {
			rowOpMatrixA[j*dim+j] = 1
			rowOpMatrixB[j*dim+j] = 1
		}
		rowOpMatrixA[destRow*dim+srcRow] = multiple
		rowOpMatrixB[destRow*dim+srcRow] = -multiple

		// A accumulates on the left, so B accumulates its inverse on
		// the right: (R A)^-1 = A^-1 R^-1.
		tmpA, err := MultiplyIntInt(rowOpMatrixA, retValA, dim)
		if err != nil {
			return nil, nil, fmt.Errorf(
				"CreateUnimodularPair: could not multiply rowOpMatrixA by retValA: %q", err.Error(),
			)
		}
		tmpB, err := MultiplyIntInt(retValB, rowOpMatrixB, dim)
		if err != nil {
			return nil, nil, fmt.Errorf(
				"CreateUnimodularPair: could not multiply retValB by rowOpMatrixB: %q", err.Error(),
			)
		}

		// Stop composing before any entry can grow past the maximum
		// desired magnitude.
		tooLarge := false
		for j := 0; j < dim*dim; j++ {
			if (tmpA[j] > maxMatrixEntry) || (tmpA[j] < -maxMatrixEntry) ||
				(tmpB[j] > maxMatrixEntry) || (tmpB[j] < -maxMatrixEntry) {
				tooLarge = true
				break
			}
		}
		if tooLarge {
			return retValA, retValB, nil
		}
		retValA = tmpA
		retValB = tmpB
	}
	return retValA, retValB, nil
}

// IsInversePair returns whether x and y are inverses of each other
func IsInversePair(x, y []int64, dim int) (bool, error) {
	shouldBeInverse, err := MultiplyIntInt(x, y, dim)
	if err != nil {
		return false, fmt.Errorf(
			"could not multiply x (%d-long) by y (%d-long): %q", len(x), len(y), err.Error(),
		)
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if (i == j) && (shouldBeInverse[i*dim+j] != 1) {
				return false, nil
			} else if (i != j) && (shouldBeInverse[i*dim+j] != 0) {
				return false, nil
			}
		}
	}
	return true, nil
}
