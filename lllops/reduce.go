// Copyright (c) 2023 Colin McRae

package lllops

import (
	"errors"
	"fmt"

	"github.com/finlattice/lllport/intmatrix"
	"github.com/finlattice/lllport/rational"
)

// Errors
var (
	ErrInvalidParameter = errors.New("invalid reduction parameter")
	ErrRankDeficient    = errors.New("rank deficient basis")
	ErrReductionTimeout = errors.New("reduction step budget exceeded")
)

// DefaultMaxSteps bounds the number of main-loop iterations of a
// reduction. The bound exists so that pathological inputs fail with
// ErrReductionTimeout instead of running unbounded; well-conditioned
// bases of the intended size finish in a tiny fraction of it.
const DefaultMaxSteps = 10000000

// Reducer holds the parameters of a reduction. It may be reused and used
// concurrently; each Reduce call owns its basis, transform and
// Gram-Schmidt state copies and shares nothing with other calls.
type Reducer struct {
	delta    *rational.Rational
	maxSteps int
}

// NewReducer returns a Reducer for the reduction parameter delta, which
// must satisfy 1/4 < delta < 1. The standard choice is 3/4. Values
// outside the open interval fail with an error wrapping
// ErrInvalidParameter.
func NewReducer(delta *rational.Rational) (*Reducer, error) {
	quarter, err := rational.NewFromInt64Quotient(1, 4)
	if err != nil {
		return nil, fmt.Errorf("NewReducer: %q", err.Error())
	}
	if delta.Cmp(quarter) <= 0 || delta.Cmp(rational.NewFromInt64(1)) >= 0 {
		return nil, fmt.Errorf(
			"NewReducer: delta = %s outside (1/4, 1): %w", delta.String(), ErrInvalidParameter,
		)
	}
	return &Reducer{
		delta:    rational.NewFromInt64(0).Set(delta),
		maxSteps: DefaultMaxSteps,
	}, nil
}

// SetMaxSteps replaces the step budget and returns r, so it can be
// chained after NewReducer. n <= 0 restores the default.
func (r *Reducer) SetMaxSteps(n int) *Reducer {
	if n <= 0 {
		n = DefaultMaxSteps
	}
	r.maxSteps = n
	return r
}

// Reduce returns a delta-LLL-reduced form of basis together with the
// unimodular transform relating the two: transform * basis = reduced,
// as an exact integer identity, and |det(transform)| = 1. The input is
// not modified.
//
// On return, |mu[k][j]| <= 1/2 for all j < k and every adjacent row pair
// satisfies the Lovász condition B_k >= (delta - mu[k][k-1]^2) B_{k-1}.
// Exact equality in the Lovász comparison counts as satisfied, so an
// already-reduced basis comes back unchanged with the identity transform.
//
// Reduce fails with an error wrapping ErrInvalidParameter when basis is
// not square, ErrRankDeficient when basis is singular (the message names
// an offending row), or ErrReductionTimeout when the step budget runs
// out. No partially reduced result is ever returned.
func (r *Reducer) Reduce(basis *intmatrix.Matrix) (*intmatrix.Matrix, *intmatrix.Matrix, error) {
	numRows, numCols := basis.Dimensions()
	if numRows <= 0 || numRows != numCols {
		return nil, nil, fmt.Errorf(
			"Reducer.Reduce: basis is %d x %d, not square: %w", numRows, numCols, ErrInvalidParameter,
		)
	}
	for i := 0; i < numRows; i++ {
		zero, err := basis.IsZeroRow(i)
		if err != nil {
			return nil, nil, fmt.Errorf("Reducer.Reduce: could not inspect row %d: %q", i, err.Error())
		}
		if zero {
			return nil, nil, fmt.Errorf("Reducer.Reduce: row %d is zero: %w", i, ErrRankDeficient)
		}
	}

	reduced := intmatrix.NewEmpty(0, 0).Copy(basis)
	transform, err := intmatrix.NewIdentity(numRows)
	if err != nil {
		return nil, nil, fmt.Errorf("Reducer.Reduce: could not create transform: %q", err.Error())
	}
	state, err := NewGramSchmidtState(reduced)
	if err != nil {
		return nil, nil, fmt.Errorf("Reducer.Reduce: %w", err)
	}

	half, err := rational.NewFromInt64Quotient(1, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("Reducer.Reduce: %q", err.Error())
	}
	absMu := rational.NewFromInt64(0)
	lhs := rational.NewFromInt64(0)
	rhs := rational.NewFromInt64(0)

	// The cursor invariant: rows 0..k-1 are pairwise size-reduced and
	// Lovász-reduced. Size reduction of row k never disturbs it; a swap
	// can, which is why the cursor backs off.
	steps := 0
	for k := 1; k < numRows; {
		steps++
		if steps > r.maxSteps {
			return nil, nil, fmt.Errorf(
				"Reducer.Reduce: no reduced basis within %d steps: %w", r.maxSteps, ErrReductionTimeout,
			)
		}

		// Size-reduction phase: one pass from j = k-1 down to 0 leaves
		// all |mu[k][j]| <= 1/2, because combining against row j only
		// changes mu[k][l] for l <= j.
		for j := k - 1; j >= 0; j-- {
			muKJ, err := state.Mu(k, j)
			if err != nil {
				return nil, nil, fmt.Errorf("Reducer.Reduce: %q", err.Error())
			}
			if absMu.Abs(muKJ).Cmp(half) <= 0 {
				continue
			}
			q := muKJ.RoundToNearest()
			if err = reduced.SubMultipleOfRow(k, j, q); err != nil {
				return nil, nil, fmt.Errorf("Reducer.Reduce: combining basis rows: %q", err.Error())
			}
			if err = transform.SubMultipleOfRow(k, j, q); err != nil {
				return nil, nil, fmt.Errorf("Reducer.Reduce: combining transform rows: %q", err.Error())
			}
			if err = state.UpdateAfterCombine(k, j, q); err != nil {
				return nil, nil, fmt.Errorf("Reducer.Reduce: %q", err.Error())
			}
		}

		// Lovász phase: B_k >= (delta - mu[k][k-1]^2) B_{k-1} advances
		// the cursor; otherwise swap and back off.
		muK, err := state.Mu(k, k-1)
		if err != nil {
			return nil, nil, fmt.Errorf("Reducer.Reduce: %q", err.Error())
		}
		bK, err := state.B(k)
		if err != nil {
			return nil, nil, fmt.Errorf("Reducer.Reduce: %q", err.Error())
		}
		bKMinus1, err := state.B(k - 1)
		if err != nil {
			return nil, nil, fmt.Errorf("Reducer.Reduce: %q", err.Error())
		}
		lhs.Set(bK)
		rhs.Mul(muK, muK)
		rhs.Sub(r.delta, rhs)
		rhs.Mul(rhs, bKMinus1)
		if lhs.Cmp(rhs) >= 0 {
			k++
			continue
		}
		if err = reduced.SwapRows(k-1, k); err != nil {
			return nil, nil, fmt.Errorf("Reducer.Reduce: swapping basis rows: %q", err.Error())
		}
		if err = transform.SwapRows(k-1, k); err != nil {
			return nil, nil, fmt.Errorf("Reducer.Reduce: swapping transform rows: %q", err.Error())
		}
		if err = state.UpdateAfterSwap(k - 1); err != nil {
			return nil, nil, fmt.Errorf("Reducer.Reduce: %w", err)
		}
		if k > 1 {
			k--
		}
	}
	return reduced, transform, nil
}
