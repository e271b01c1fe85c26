// Copyright (c) 2023 Colin McRae

// Package portfolio turns a real-valued risk feature matrix into an
// integer lattice basis for reduction, and turns the reduced unimodular
// transform back into sparse instrument combinations.
package portfolio

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/finlattice/lllport/intmatrix"
)

// Errors
var (
	ErrInvalidParameter = errors.New("invalid embedding parameter")
	ErrDimension        = errors.New("invalid embedding dimensions")
)

// Embed maps an m x d real-valued feature matrix (rows are instruments,
// columns are risk dimensions, typically m >> d) into a square m x m
// integer basis suitable for reduction.
//
// Every feature entry is multiplied by scale and rounded to the nearest
// integer, ties away from zero. A larger scale preserves more of the
// continuous risk structure but grows the integers reduction works on.
// Features are assumed min-max normalized per column by the caller, so
// scale also bounds the magnitude of the risk block.
//
// The remaining m - d columns are filled with values in {0, 1} drawn
// from a generator seeded with padSeed, read row-major. The padding has
// no risk meaning; it exists to make the basis square and, with high
// probability, full rank, and it is kept small so it cannot dominate the
// reduced vectors' norms. Identical (features, scale, padSeed) always
// produce an identical basis.
//
// Embed fails with an error wrapping ErrInvalidParameter when scale is
// not positive, and ErrDimension when the matrix is empty or ragged,
// m < d, or more than one row scales to all zeros (duplicate zero rows
// stay dependent no matter the padding). A single zero row, or padding
// that happens to produce a singular basis, is left for reduction to
// report; retrying with a different padSeed is a caller policy.
func Embed(features [][]float64, scale int64, padSeed int64) (*intmatrix.Matrix, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("Embed: scale = %d is not positive: %w", scale, ErrInvalidParameter)
	}
	m := len(features)
	if m == 0 {
		return nil, fmt.Errorf("Embed: no instruments: %w", ErrDimension)
	}
	d := len(features[0])
	if d == 0 {
		return nil, fmt.Errorf("Embed: no risk dimensions: %w", ErrDimension)
	}
	if m < d {
		return nil, fmt.Errorf(
			"Embed: %d instruments is fewer than %d risk dimensions: %w", m, d, ErrDimension,
		)
	}
	for i := 1; i < m; i++ {
		if len(features[i]) != d {
			return nil, fmt.Errorf(
				"Embed: row %d has %d entries, expected %d: %w", i, len(features[i]), d, ErrDimension,
			)
		}
	}

	basis := intmatrix.NewEmpty(m, m)
	zeroRows := 0
	firstZeroRow := -1
	for i := 0; i < m; i++ {
		rowIsZero := true
		for j := 0; j < d; j++ {
			scaled := roundToInt64(features[i][j] * float64(scale))
			if scaled != 0 {
				rowIsZero = false
			}
			if err := basis.Set(i, j, big.NewInt(scaled)); err != nil {
				return nil, fmt.Errorf("Embed: could not set basis[%d][%d]: %q", i, j, err.Error())
			}
		}
		if rowIsZero {
			zeroRows++
			if firstZeroRow == -1 {
				firstZeroRow = i
			}
		}
	}
	if zeroRows > 1 {
		return nil, fmt.Errorf(
			"Embed: %d rows scale to zero, first at row %d: %w", zeroRows, firstZeroRow, ErrDimension,
		)
	}

	// Padding block, row-major, in {0, 1}
	rnd := rand.New(rand.NewSource(padSeed))
	for i := 0; i < m; i++ {
		for j := d; j < m; j++ {
			if err := basis.Set(i, j, big.NewInt(rnd.Int63n(2))); err != nil {
				return nil, fmt.Errorf("Embed: could not set basis[%d][%d]: %q", i, j, err.Error())
			}
		}
	}
	return basis, nil
}

// roundToInt64 rounds to the nearest integer, ties away from zero,
// matching the rounding used on the Gram-Schmidt coefficients.
func roundToInt64(x float64) int64 {
	if x < 0.0 {
		return -int64(0.5 - x)
	}
	return int64(0.5 + x)
}
