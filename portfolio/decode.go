// Copyright (c) 2023 Colin McRae

package portfolio

import (
	"fmt"

	"github.com/finlattice/lllport/intmatrix"
)

// SparseCombination maps instrument identifiers to nonzero integer
// coefficients. Zero coefficients are never present.
type SparseCombination map[string]int64

// Decode converts each row of the reduced unimodular transform into a
// SparseCombination. Column j of the transform weights the instrument
// ids[j]; the padding columns of the embedded basis never appear here,
// since the transform acts on basis rows, one per instrument.
//
// The transform must be square with one column per id, or an error
// wrapping ErrDimension is returned. A coefficient outside the int64
// range is reported as an error rather than truncated. Decode is pure:
// the transform and ids are read-only and each call allocates its own
// output.
func Decode(transform *intmatrix.Matrix, ids []string) ([]SparseCombination, error) {
	numRows, numCols := transform.Dimensions()
	if numRows != numCols || numRows != len(ids) {
		return nil, fmt.Errorf(
			"Decode: transform is %d x %d with %d ids: %w", numRows, numCols, len(ids), ErrDimension,
		)
	}
	retVal := make([]SparseCombination, numRows)
	for i := 0; i < numRows; i++ {
		combination := make(SparseCombination)
		for j := 0; j < numCols; j++ {
			entry, err := transform.Get(i, j)
			if err != nil {
				return nil, fmt.Errorf("Decode: could not get transform[%d][%d]: %q", i, j, err.Error())
			}
			if entry.Sign() == 0 {
				continue
			}
			if !entry.IsInt64() {
				return nil, fmt.Errorf(
					"Decode: coefficient %s at row %d for %q overflows int64", entry.String(), i, ids[j],
				)
			}
			combination[ids[j]] = entry.Int64()
		}
		retVal[i] = combination
	}
	return retVal, nil
}
