// Copyright (c) 2023 Colin McRae

package portfolio

import (
	"fmt"
	"math"
)

// RiskNorm returns the Euclidean norm of a combination in risk space:
// the length of sum over instruments of coefficient * feature row. It is
// the scalar a reporting layer compares against alternative solvers; the
// reduction itself never consults it.
//
// features and ids must describe the same instruments, in the same order,
// that produced the combination. An id in the combination that is not in
// ids is an error.
func RiskNorm(combination SparseCombination, features [][]float64, ids []string) (float64, error) {
	if len(features) != len(ids) {
		return 0, fmt.Errorf(
			"RiskNorm: %d feature rows for %d ids: %w", len(features), len(ids), ErrDimension,
		)
	}
	if len(features) == 0 {
		return 0, fmt.Errorf("RiskNorm: no instruments: %w", ErrDimension)
	}
	d := len(features[0])
	rowOf := make(map[string]int, len(ids))
	for i, id := range ids {
		if len(features[i]) != d {
			return 0, fmt.Errorf(
				"RiskNorm: row %d has %d entries, expected %d: %w", i, len(features[i]), d, ErrDimension,
			)
		}
		rowOf[id] = i
	}

	sums := make([]float64, d)
	for id, coefficient := range combination {
		row, ok := rowOf[id]
		if !ok {
			return 0, fmt.Errorf("RiskNorm: unknown instrument %q", id)
		}
		for j := 0; j < d; j++ {
			sums[j] += float64(coefficient) * features[row][j]
		}
	}
	var total float64
	for j := 0; j < d; j++ {
		total += sums[j] * sums[j]
	}
	return math.Sqrt(total), nil
}
