package rational

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func checkQuotient(t *testing.T, num, den, expectedNum, expectedDen int64) {
	actual, err := NewFromInt64Quotient(num, den)
	assert.NoError(t, err)
	assert.Equal(t, expectedNum, actual.Num().Int64())
	assert.Equal(t, expectedDen, actual.Den().Int64())
}

func checkRound(t *testing.T, num, den, expected int64) {
	r, err := NewFromInt64Quotient(num, den)
	assert.NoError(t, err)
	assert.Equal(t, expected, r.RoundToNearest().Int64())
}

func TestNewFromQuotient_LowestTerms(t *testing.T) {
	checkQuotient(t, 6, 4, 3, 2)
	checkQuotient(t, -6, 4, -3, 2)
	checkQuotient(t, 6, -4, -3, 2)
	checkQuotient(t, -6, -4, 3, 2)
	checkQuotient(t, 0, -7, 0, 1)
	checkQuotient(t, 12, 3, 4, 1)
}

func TestNewFromQuotient_ZeroDenominator(t *testing.T) {
	_, err := NewFromQuotient(big.NewInt(1), big.NewInt(0))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrDivisionByZero))
}

func TestAddSubMulQuo(t *testing.T) {
	half, err := NewFromInt64Quotient(1, 2)
	assert.NoError(t, err)
	third, err := NewFromInt64Quotient(1, 3)
	assert.NoError(t, err)

	sum := NewFromInt64(0).Add(half, third)
	expected, err := NewFromInt64Quotient(5, 6)
	assert.NoError(t, err)
	assert.Zero(t, sum.Cmp(expected))

	diff := NewFromInt64(0).Sub(half, third)
	expected, err = NewFromInt64Quotient(1, 6)
	assert.NoError(t, err)
	assert.Zero(t, diff.Cmp(expected))

	product := NewFromInt64(0).Mul(half, third)
	expected, err = NewFromInt64Quotient(1, 6)
	assert.NoError(t, err)
	assert.Zero(t, product.Cmp(expected))

	quotient, err := NewFromInt64(0).Quo(half, third)
	assert.NoError(t, err)
	expected, err = NewFromInt64Quotient(3, 2)
	assert.NoError(t, err)
	assert.Zero(t, quotient.Cmp(expected))

	_, err = NewFromInt64(0).Quo(half, NewFromInt64(0))
	assert.True(t, errors.Is(err, ErrDivisionByZero))
}

func TestAliasedReceivers(t *testing.T) {
	// r.Add(r, r) and friends must work when the receiver aliases an
	// operand, since the reduction loop updates mu entries in place.
	r, err := NewFromInt64Quotient(2, 3)
	assert.NoError(t, err)
	r.Add(r, r)
	expected, err := NewFromInt64Quotient(4, 3)
	assert.NoError(t, err)
	assert.Zero(t, r.Cmp(expected))

	r.Mul(r, r)
	expected, err = NewFromInt64Quotient(16, 9)
	assert.NoError(t, err)
	assert.Zero(t, r.Cmp(expected))

	r.Sub(r, r)
	assert.Zero(t, r.Sign())
	assert.True(t, r.IsInt())
}

func TestCmpTotalOrder(t *testing.T) {
	values := []*Rational{
		NewFromInt64(-2),
		func() *Rational { v, _ := NewFromInt64Quotient(-1, 2); return v }(),
		NewFromInt64(0),
		func() *Rational { v, _ := NewFromInt64Quotient(1, 3); return v }(),
		func() *Rational { v, _ := NewFromInt64Quotient(1, 2); return v }(),
		NewFromInt64(7),
	}
	for i := 0; i < len(values); i++ {
		assert.Zero(t, values[i].Cmp(values[i]))
		for j := i + 1; j < len(values); j++ {
			assert.Equal(t, -1, values[i].Cmp(values[j]))
			assert.Equal(t, 1, values[j].Cmp(values[i]))
		}
	}
}

func TestRoundToNearest(t *testing.T) {
	checkRound(t, 1, 2, 1)   // tie rounds away from zero
	checkRound(t, -1, 2, -1) // tie rounds away from zero
	checkRound(t, 1, 3, 0)
	checkRound(t, 2, 3, 1)
	checkRound(t, -2, 3, -1)
	checkRound(t, 7, 1, 7)
	checkRound(t, 0, 5, 0)
	checkRound(t, 637, 421, 2) // 1.513...
	checkRound(t, -205, 421, 0)
}

func TestSignAbsNeg(t *testing.T) {
	v, err := NewFromInt64Quotient(-3, 4)
	assert.NoError(t, err)
	assert.Equal(t, -1, v.Sign())

	a := NewFromInt64(0).Abs(v)
	assert.Equal(t, 1, a.Sign())
	expected, err := NewFromInt64Quotient(3, 4)
	assert.NoError(t, err)
	assert.Zero(t, a.Cmp(expected))

	n := NewFromInt64(0).Neg(v)
	assert.Zero(t, n.Cmp(expected))
}

func TestString(t *testing.T) {
	v, err := NewFromInt64Quotient(-6, 4)
	assert.NoError(t, err)
	assert.Equal(t, "-3/2", v.String())
	assert.Equal(t, "5", NewFromInt64(5).String())
	assert.Equal(t, "0", NewFromInt64(0).String())
}
