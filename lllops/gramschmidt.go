// Copyright (c) 2023 Colin McRae

// Package lllops performs operations specific to the LLL lattice basis
// reduction algorithm: the incrementally-maintained Gram-Schmidt data and
// the size-reduction / swap loop that consumes it.
package lllops

import (
	"fmt"
	"math/big"

	"github.com/finlattice/lllport/intmatrix"
	"github.com/finlattice/lllport/rational"
)

// GramSchmidtState holds the Gram-Schmidt orthogonalization of the
// current basis: the orthogonalized vectors b*_i, the coefficients
// mu[i][j] for j < i, and the squared norms B_i = ||b*_i||^2. All values
// are exact rationals; the swap and size-reduction decisions in the
// reduction loop depend on exact comparisons of mu and B.
//
// The invariant maintained across updates is
//
// b_i = b*_i + sum over j < i of mu[i][j] b*_j
//
// for the basis as it stands after the mutations the updates mirror.
type GramSchmidtState struct {
	n     int
	mu    [][]*rational.Rational // mu[i][j] is meaningful for j < i
	b     []*rational.Rational   // b[i] = ||b*_i||^2
	bstar [][]*rational.Rational // bstar[i] has one entry per basis column
}

// NewGramSchmidtState computes full Gram-Schmidt data for basis from
// scratch, with O(n^3) rational operations. If some orthogonalized vector
// has zero norm, the basis is not full rank and an error wrapping
// ErrRankDeficient is returned, naming the offending row.
func NewGramSchmidtState(basis *intmatrix.Matrix) (*GramSchmidtState, error) {
	numRows, numCols := basis.Dimensions()
	if numRows <= 0 {
		return nil, fmt.Errorf("NewGramSchmidtState: basis is empty")
	}
	s := &GramSchmidtState{
		n:     numRows,
		mu:    make([][]*rational.Rational, numRows),
		b:     make([]*rational.Rational, numRows),
		bstar: make([][]*rational.Rational, numRows),
	}
	t := rational.NewFromInt64(0)
	for i := 0; i < numRows; i++ {
		s.mu[i] = make([]*rational.Rational, i)
		s.bstar[i] = make([]*rational.Rational, numCols)
		for c := 0; c < numCols; c++ {
			entry, err := basis.Get(i, c)
			if err != nil {
				return nil, fmt.Errorf("NewGramSchmidtState: could not get basis[%d][%d]: %q", i, c, err.Error())
			}
			s.bstar[i][c] = rational.NewFromInt(entry)
		}
		for j := 0; j < i; j++ {
			// mu[i][j] = <b_i, b*_j> / B_j, with b_i still intact in
			// bstar[i] at this point of the elimination.
			dot := rational.NewFromInt64(0)
			for c := 0; c < numCols; c++ {
				entry, err := basis.Get(i, c)
				if err != nil {
					return nil, fmt.Errorf("NewGramSchmidtState: could not get basis[%d][%d]: %q", i, c, err.Error())
				}
				dot.Add(dot, t.Mul(rational.NewFromInt(entry), s.bstar[j][c]))
			}
			muIJ, err := rational.NewFromInt64(0).Quo(dot, s.b[j])
			if err != nil {
				// B_j = 0 is caught below before reaching this point
				return nil, fmt.Errorf("NewGramSchmidtState: dividing by B[%d]: %q", j, err.Error())
			}
			s.mu[i][j] = muIJ
			for c := 0; c < numCols; c++ {
				s.bstar[i][c].Sub(s.bstar[i][c], t.Mul(muIJ, s.bstar[j][c]))
			}
		}
		s.b[i] = rational.NewFromInt64(0)
		for c := 0; c < numCols; c++ {
			s.b[i].Add(s.b[i], t.Mul(s.bstar[i][c], s.bstar[i][c]))
		}
		if s.b[i].Sign() == 0 {
			return nil, fmt.Errorf("NewGramSchmidtState: row %d: %w", i, ErrRankDeficient)
		}
	}
	return s, nil
}

// Mu returns mu[i][j]. The pointer aliases internal state; callers must
// not mutate it.
func (s *GramSchmidtState) Mu(i int, j int) (*rational.Rational, error) {
	if i < 1 || s.n <= i || j < 0 || i <= j {
		return nil, fmt.Errorf("GramSchmidtState.Mu: indices (%d, %d) invalid for dimension %d", i, j, s.n)
	}
	return s.mu[i][j], nil
}

// B returns B_i = ||b*_i||^2. The pointer aliases internal state; callers
// must not mutate it.
func (s *GramSchmidtState) B(i int) (*rational.Rational, error) {
	if i < 0 || s.n <= i {
		return nil, fmt.Errorf("GramSchmidtState.B: index %d invalid for dimension %d", i, s.n)
	}
	return s.b[i], nil
}

// Dimension returns the number of basis rows the state covers.
func (s *GramSchmidtState) Dimension() int {
	return s.n
}

// UpdateAfterCombine adjusts the state after the elementary operation
// row i <- row i - q * row j (j < i) was applied to the basis. Only mu
// row i changes: mu[i][l] -= q mu[j][l] for l < j, and mu[i][j] -= q.
// The orthogonalized vectors and norms are unaffected.
func (s *GramSchmidtState) UpdateAfterCombine(i int, j int, q *big.Int) error {
	if i < 1 || s.n <= i || j < 0 || i <= j {
		return fmt.Errorf(
			"GramSchmidtState.UpdateAfterCombine: indices (%d, %d) invalid for dimension %d", i, j, s.n,
		)
	}
	qr := rational.NewFromInt(q)
	t := rational.NewFromInt64(0)
	for l := 0; l < j; l++ {
		s.mu[i][l].Sub(s.mu[i][l], t.Mul(qr, s.mu[j][l]))
	}
	s.mu[i][j].Sub(s.mu[i][j], qr)
	return nil
}

// UpdateAfterSwap adjusts the state after rows k and k+1 were swapped in
// the basis, using the closed-form update instead of recomputation. Only
// B_k, B_{k+1}, mu rows k/k+1, the (k, k+1) mu columns of later rows, and
// the two affected orthogonalized vectors change.
func (s *GramSchmidtState) UpdateAfterSwap(k int) error {
	if k < 0 || s.n-1 <= k {
		return fmt.Errorf(
			"GramSchmidtState.UpdateAfterSwap: index %d invalid for dimension %d", k, s.n,
		)
	}
	muOld := rational.NewFromInt64(0).Set(s.mu[k+1][k])
	bK := rational.NewFromInt64(0).Set(s.b[k])
	bK1 := rational.NewFromInt64(0).Set(s.b[k+1])
	t := rational.NewFromInt64(0)

	// bNew = B_{k+1} + mu^2 B_k is the new B_k. It is positive whenever
	// the basis is full rank, which initialization guarantees.
	bNew := rational.NewFromInt64(0).Mul(muOld, muOld)
	bNew.Mul(bNew, bK)
	bNew.Add(bNew, bK1)
	if bNew.Sign() == 0 {
		return fmt.Errorf("GramSchmidtState.UpdateAfterSwap: row %d: %w", k, ErrRankDeficient)
	}
	muNew := rational.NewFromInt64(0).Mul(muOld, bK)
	if _, err := muNew.Quo(muNew, bNew); err != nil {
		return fmt.Errorf("GramSchmidtState.UpdateAfterSwap: %q", err.Error())
	}

	// Norms: new B_k = bNew, new B_{k+1} = B_k B_{k+1} / bNew
	s.b[k].Set(bNew)
	if _, err := s.b[k+1].Quo(rational.NewFromInt64(0).Mul(bK, bK1), bNew); err != nil {
		return fmt.Errorf("GramSchmidtState.UpdateAfterSwap: %q", err.Error())
	}

	// mu columns j < k swap between rows k and k+1
	for j := 0; j < k; j++ {
		s.mu[k][j], s.mu[k+1][j] = s.mu[k+1][j], s.mu[k][j]
	}
	s.mu[k+1][k].Set(muNew)

	// Rows below the swapped pair exchange their (k, k+1) coefficients
	// through the standard closed form.
	for i := k + 2; i < s.n; i++ {
		old := rational.NewFromInt64(0).Set(s.mu[i][k+1])
		s.mu[i][k+1].Sub(s.mu[i][k], t.Mul(muOld, old))
		s.mu[i][k].Add(old, t.Mul(muNew, s.mu[i][k+1]))
	}

	// Orthogonalized vectors: with v = old b*_k and u = old b*_{k+1},
	// new b*_k = u + muOld v and new b*_{k+1} = v - muNew (new b*_k)
	numCols := len(s.bstar[k])
	for c := 0; c < numCols; c++ {
		v := rational.NewFromInt64(0).Set(s.bstar[k][c])
		s.bstar[k][c].Add(s.bstar[k+1][c], t.Mul(muOld, v))
		s.bstar[k+1][c].Sub(v, t.Mul(muNew, s.bstar[k][c]))
	}
	return nil
}

// equals reports exact equality with another state, used by tests to
// verify the incremental updates against from-scratch initialization.
func (s *GramSchmidtState) equals(x *GramSchmidtState) bool {
	if s.n != x.n {
		return false
	}
	for i := 0; i < s.n; i++ {
		if s.b[i].Cmp(x.b[i]) != 0 {
			return false
		}
		for j := 0; j < i; j++ {
			if s.mu[i][j].Cmp(x.mu[i][j]) != 0 {
				return false
			}
		}
		for c := 0; c < len(s.bstar[i]); c++ {
			if s.bstar[i][c].Cmp(x.bstar[i][c]) != 0 {
				return false
			}
		}
	}
	return true
}
