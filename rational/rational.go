// Copyright (c) 2023 Colin McRae

// Package rational represents exact ratios of arbitrary-precision integers.
//
// A Rational is always kept in lowest terms with a positive denominator,
// so equality is structural and comparison never needs normalization on
// the fly. No operation introduces rounding error; reduction correctness
// depends on exact sign tests of the Gram-Schmidt data.
package rational

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrDivisionByZero is returned when a quotient has a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

var oneInt = big.NewInt(1)

// Rational is the exact value numerator / denominator. The zero value
// of the struct is not valid; use the New functions.
type Rational struct {
	num big.Int
	den big.Int // always > 0
}

// NewFromInt64 returns a Rational equal to input with denominator 1.
func NewFromInt64(input int64) *Rational {
	r := &Rational{}
	r.num.SetInt64(input)
	r.den.SetInt64(1)
	return r
}

// NewFromInt returns a Rational with the value of the provided big.Int
// and denominator 1.
func NewFromInt(input *big.Int) *Rational {
	r := &Rational{}
	r.num.Set(input)
	r.den.SetInt64(1)
	return r
}

// NewFromQuotient returns num / den in lowest terms. If den is zero,
// ErrDivisionByZero is returned.
func NewFromQuotient(num *big.Int, den *big.Int) (*Rational, error) {
	if den.Sign() == 0 {
		return nil, fmt.Errorf("Rational.NewFromQuotient: %w", ErrDivisionByZero)
	}
	r := &Rational{}
	r.num.Set(num)
	r.den.Set(den)
	return r.normalize(), nil
}

// NewFromInt64Quotient returns num / den in lowest terms. If den is zero,
// ErrDivisionByZero is returned.
func NewFromInt64Quotient(num int64, den int64) (*Rational, error) {
	return NewFromQuotient(big.NewInt(num), big.NewInt(den))
}

// Set copies x to r and returns r. This is a deep copy.
func (r *Rational) Set(x *Rational) *Rational {
	r.num.Set(&x.num)
	r.den.Set(&x.den)
	return r
}

// Add sets r to x + y and returns r. r may alias x and/or y.
func (r *Rational) Add(x *Rational, y *Rational) *Rational {
	var num, t, den big.Int
	num.Mul(&x.num, &y.den)
	t.Mul(&y.num, &x.den)
	num.Add(&num, &t)
	den.Mul(&x.den, &y.den)
	r.num.Set(&num)
	r.den.Set(&den)
	return r.normalize()
}

// Sub sets r to x - y and returns r. r may alias x and/or y.
func (r *Rational) Sub(x *Rational, y *Rational) *Rational {
	var num, t, den big.Int
	num.Mul(&x.num, &y.den)
	t.Mul(&y.num, &x.den)
	num.Sub(&num, &t)
	den.Mul(&x.den, &y.den)
	r.num.Set(&num)
	r.den.Set(&den)
	return r.normalize()
}

// Mul sets r to x * y and returns r. r may alias x and/or y.
func (r *Rational) Mul(x *Rational, y *Rational) *Rational {
	var num, den big.Int
	num.Mul(&x.num, &y.num)
	den.Mul(&x.den, &y.den)
	r.num.Set(&num)
	r.den.Set(&den)
	return r.normalize()
}

// Quo sets r to x / y and returns r. If y is zero, r is left unchanged
// and ErrDivisionByZero is returned.
func (r *Rational) Quo(x *Rational, y *Rational) (*Rational, error) {
	if y.num.Sign() == 0 {
		return nil, fmt.Errorf("Rational.Quo: %w", ErrDivisionByZero)
	}
	var num, den big.Int
	num.Mul(&x.num, &y.den)
	den.Mul(&x.den, &y.num)
	r.num.Set(&num)
	r.den.Set(&den)
	return r.normalize(), nil
}

// Neg sets r to -x and returns r. r may alias x.
func (r *Rational) Neg(x *Rational) *Rational {
	r.num.Neg(&x.num)
	r.den.Set(&x.den)
	return r
}

// Abs sets r to |x| and returns r. r may alias x.
func (r *Rational) Abs(x *Rational) *Rational {
	r.num.Abs(&x.num)
	r.den.Set(&x.den)
	return r
}

// Cmp returns -1, 0 or 1 according to whether r is less than, equal to
// or greater than x. This is a total order.
func (r *Rational) Cmp(x *Rational) int {
	var left, right big.Int
	left.Mul(&r.num, &x.den)
	right.Mul(&x.num, &r.den)
	return left.Cmp(&right)
}

// Sign returns -1, 0 or 1 according to the sign of r.
func (r *Rational) Sign() int {
	return r.num.Sign()
}

// IsInt returns whether r has denominator 1.
func (r *Rational) IsInt() bool {
	return r.den.Cmp(oneInt) == 0
}

// Num returns a copy of the numerator of r.
func (r *Rational) Num() *big.Int {
	return new(big.Int).Set(&r.num)
}

// Den returns a copy of the denominator of r.
func (r *Rational) Den() *big.Int {
	return new(big.Int).Set(&r.den)
}

// RoundToNearest returns the integer nearest to r, rounding ties away
// from zero, e.g. 3/2 -> 2 and -3/2 -> -2.
func (r *Rational) RoundToNearest() *big.Int {
	q := new(big.Int)
	rem := new(big.Int)
	q.QuoRem(&r.num, &r.den, rem)
	rem.Abs(rem)
	rem.Lsh(rem, 1)
	if rem.Cmp(&r.den) >= 0 {
		if r.num.Sign() < 0 {
			q.Sub(q, oneInt)
		} else {
			q.Add(q, oneInt)
		}
	}
	return q
}

// Float64 returns the nearest float64 to r. It is a diagnostic
// convenience; nothing in reduction depends on it.
func (r *Rational) Float64() float64 {
	f, _ := new(big.Rat).SetFrac(&r.num, &r.den).Float64()
	return f
}

// String returns "num/den", or just "num" when r is an integer.
func (r *Rational) String() string {
	if r.IsInt() {
		return r.num.String()
	}
	return fmt.Sprintf("%s/%s", r.num.String(), r.den.String())
}

// normalize restores lowest terms and a positive denominator. Every
// mutating operation ends with a call to normalize, so the invariant
// holds between all exported calls.
func (r *Rational) normalize() *Rational {
	if r.num.Sign() == 0 {
		r.den.SetInt64(1)
		return r
	}
	if r.den.Sign() < 0 {
		r.num.Neg(&r.num)
		r.den.Neg(&r.den)
	}
	var g big.Int
	g.GCD(nil, nil, new(big.Int).Abs(&r.num), &r.den)
	if g.Cmp(oneInt) != 0 {
		r.num.Quo(&r.num, &g)
		r.den.Quo(&r.den, &g)
	}
	return r
}
