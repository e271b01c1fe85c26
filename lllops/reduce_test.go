package lllops

import (
	"errors"
	"math/big"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlattice/lllport/intmatrix"
	"github.com/finlattice/lllport/rational"
	"github.com/finlattice/lllport/util"
)

func newStandardReducer(t *testing.T) *Reducer {
	delta, err := rational.NewFromInt64Quotient(3, 4)
	require.NoError(t, err)
	reducer, err := NewReducer(delta)
	require.NoError(t, err)
	return reducer
}

// checkReduced verifies the postconditions of a successful reduction:
// size reduction, the Lovász condition, unimodularity of the transform
// and exact reconstruction of the output from the input.
func checkReduced(
	t *testing.T, input, reduced, transform *intmatrix.Matrix, delta *rational.Rational,
) {
	n := input.NumRows()

	// transform * input = reduced, as exact integer equality
	product, err := intmatrix.NewEmpty(0, 0).Mul(transform, input)
	require.NoError(t, err)
	assert.True(t, product.Equals(reduced))

	// |det(transform)| = 1
	det, err := transform.Determinant()
	require.NoError(t, err)
	absDet := new(big.Int).Abs(det)
	assert.Equal(t, int64(1), absDet.Int64())

	// Size reduction and the Lovász condition on the output
	state, err := NewGramSchmidtState(reduced)
	require.NoError(t, err)
	half, err := rational.NewFromInt64Quotient(1, 2)
	require.NoError(t, err)
	absMu := rational.NewFromInt64(0)
	for k := 1; k < n; k++ {
		for j := 0; j < k; j++ {
			mu, err := state.Mu(k, j)
			require.NoError(t, err)
			assert.True(
				t, absMu.Abs(mu).Cmp(half) <= 0,
				"mu[%d][%d] = %s is not size-reduced", k, j, mu.String(),
			)
		}
		muK, err := state.Mu(k, k-1)
		require.NoError(t, err)
		bK, err := state.B(k)
		require.NoError(t, err)
		bKMinus1, err := state.B(k - 1)
		require.NoError(t, err)
		rhs := rational.NewFromInt64(0).Mul(muK, muK)
		rhs.Sub(delta, rhs)
		rhs.Mul(rhs, bKMinus1)
		assert.True(
			t, bK.Cmp(rhs) >= 0,
			"rows %d, %d do not satisfy the Lovász condition", k-1, k,
		)
	}
}

func TestReduce_IdentityUnchanged(t *testing.T) {
	reducer := newStandardReducer(t)
	input := newBasis(t, []int64{1, 0, 0, 1}, 2)
	reduced, transform, err := reducer.Reduce(input)
	require.NoError(t, err)

	identity, err := intmatrix.NewIdentity(2)
	require.NoError(t, err)
	assert.True(t, reduced.Equals(input))
	assert.True(t, transform.Equals(identity))
}

func TestReduce_AlreadyReducedUnchanged(t *testing.T) {
	// [[1,1],[1,-1]] has B_0 = B_1 = 2 and mu = 0, so it is already
	// Lovász-reduced under delta = 3/4 and must come back unchanged.
	reducer := newStandardReducer(t)
	input := newBasis(t, []int64{1, 1, 1, -1}, 2)
	reduced, transform, err := reducer.Reduce(input)
	require.NoError(t, err)

	identity, err := intmatrix.NewIdentity(2)
	require.NoError(t, err)
	assert.True(t, reduced.Equals(input))
	assert.True(t, transform.Equals(identity))
}

func TestReduce_PinnedFixture(t *testing.T) {
	// Regression fixture: the exact reduction of [[201,37],[1,29]] under
	// delta = 3/4 is one swap followed by one size-reduction combine.
	reducer := newStandardReducer(t)
	input := newBasis(t, []int64{201, 37, 1, 29}, 2)
	reduced, transform, err := reducer.Reduce(input)
	require.NoError(t, err)

	expectedBasis := newBasis(t, []int64{1, 29, 199, -21}, 2)
	expectedTransform := newBasis(t, []int64{0, 1, 1, -2}, 2)
	assert.True(t, reduced.Equals(expectedBasis))
	assert.True(t, transform.Equals(expectedTransform))

	// The input is never modified
	assert.True(t, input.Equals(newBasis(t, []int64{201, 37, 1, 29}, 2)))

	delta, err := rational.NewFromInt64Quotient(3, 4)
	require.NoError(t, err)
	checkReduced(t, input, reduced, transform, delta)
}

func TestReduce_Idempotent(t *testing.T) {
	reducer := newStandardReducer(t)
	input := newBasis(t, []int64{201, 37, 1, 29}, 2)
	reduced, _, err := reducer.Reduce(input)
	require.NoError(t, err)

	again, transform, err := reducer.Reduce(reduced)
	require.NoError(t, err)
	identity, err := intmatrix.NewIdentity(2)
	require.NoError(t, err)
	assert.True(t, again.Equals(reduced))
	assert.True(t, transform.Equals(identity))
}

func TestReduce_RandomBases(t *testing.T) {
	const numTests = 20
	delta, err := rational.NewFromInt64Quotient(3, 4)
	require.NoError(t, err)
	reducer, err := NewReducer(delta)
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(90203))
	for testNbr := 0; testNbr < numTests; testNbr++ {
		dim := 2 + rnd.Intn(6)
		input := randomFullRankBasis(t, dim, rnd)
		reduced, transform, err := reducer.Reduce(input)
		require.NoError(t, err)
		checkReduced(t, input, reduced, transform, delta)
	}
}

func TestReduce_OtherDeltas(t *testing.T) {
	// Reduction postconditions hold across the legal delta range
	rnd := rand.New(rand.NewSource(11731))
	for _, quotient := range [][2]int64{{1, 3}, {1, 2}, {9, 10}, {99, 100}} {
		delta, err := rational.NewFromInt64Quotient(quotient[0], quotient[1])
		require.NoError(t, err)
		reducer, err := NewReducer(delta)
		require.NoError(t, err)
		for testNbr := 0; testNbr < 5; testNbr++ {
			input := randomFullRankBasis(t, 4, rnd)
			reduced, transform, err := reducer.Reduce(input)
			require.NoError(t, err)
			checkReduced(t, input, reduced, transform, delta)
		}
	}
}

func TestNewReducer_InvalidDelta(t *testing.T) {
	for _, quotient := range [][2]int64{{1, 4}, {1, 5}, {1, 1}, {5, 4}, {-3, 4}, {0, 1}} {
		delta, err := rational.NewFromInt64Quotient(quotient[0], quotient[1])
		require.NoError(t, err)
		_, err = NewReducer(delta)
		assert.True(
			t, errors.Is(err, ErrInvalidParameter),
			"delta = %s should have been rejected", delta.String(),
		)
	}
}

func TestReduce_RankDeficient(t *testing.T) {
	reducer := newStandardReducer(t)

	// Zero row
	input := newBasis(t, []int64{1, 2, 0, 0}, 2)
	_, _, err := reducer.Reduce(input)
	assert.True(t, errors.Is(err, ErrRankDeficient))
	assert.Contains(t, err.Error(), "row 1")

	// Linearly dependent rows
	input = newBasis(t, []int64{3, 6, 1, 2}, 2)
	_, _, err = reducer.Reduce(input)
	assert.True(t, errors.Is(err, ErrRankDeficient))
}

func TestReduce_NonSquare(t *testing.T) {
	reducer := newStandardReducer(t)
	input, err := intmatrix.NewFromInt64Array([]int64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	_, _, err2 := reducer.Reduce(input)
	assert.True(t, errors.Is(err2, ErrInvalidParameter))
}

func TestReduce_StepBudget(t *testing.T) {
	// [[201,37],[1,29]] needs more than one main-loop iteration, so a
	// budget of 1 must time out, and nothing partial is returned.
	reducer := newStandardReducer(t).SetMaxSteps(1)
	input := newBasis(t, []int64{201, 37, 1, 29}, 2)
	reduced, transform, err := reducer.Reduce(input)
	assert.True(t, errors.Is(err, ErrReductionTimeout))
	assert.Nil(t, reduced)
	assert.Nil(t, transform)

	// Restoring the default budget succeeds
	_, _, err = reducer.SetMaxSteps(0).Reduce(input)
	assert.NoError(t, err)
}

func TestReduce_ConcurrentCalls(t *testing.T) {
	// Independent reductions share no state; run several from separate
	// goroutines against the same Reducer and the same input, and check
	// every result against the serial answer.
	const numGoroutines = 8
	reducer := newStandardReducer(t)
	input := newBasis(t, []int64{201, 37, 1, 29}, 2)
	expected, _, err := reducer.Reduce(input)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*intmatrix.Matrix, numGoroutines)
	errs := make([]error, numGoroutines)
	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			own := intmatrix.NewEmpty(0, 0).Copy(input)
			results[g], _, errs[g] = reducer.Reduce(own)
		}(g)
	}
	wg.Wait()
	for g := 0; g < numGoroutines; g++ {
		require.NoError(t, errs[g])
		assert.True(t, results[g].Equals(expected))
	}
}

func TestReduce_ShorterRows(t *testing.T) {
	// Reduction of the pinned fixture strictly shrinks both row norms
	input := newBasis(t, []int64{201, 37, 1, 29}, 2)
	reducer := newStandardReducer(t)
	reduced, _, err := reducer.Reduce(input)
	require.NoError(t, err)

	maxNorm := func(m *intmatrix.Matrix) *big.Int {
		retVal := big.NewInt(0)
		for i := 0; i < m.NumRows(); i++ {
			norm, err := m.RowDot(i, i)
			require.NoError(t, err)
			if norm.Cmp(retVal) > 0 {
				retVal.Set(norm)
			}
		}
		return retVal
	}
	assert.True(
		t, maxNorm(reduced).Cmp(maxNorm(input)) < 0,
		"largest squared row norm did not shrink",
	)
}

func TestReduce_MatchesInt64Arithmetic(t *testing.T) {
	// Cross-check the big-integer reconstruction product against the
	// independent []int64 multiply in the util package.
	reducer := newStandardReducer(t)
	inputEntries := []int64{201, 37, 1, 29}
	input := newBasis(t, inputEntries, 2)
	reduced, transform, err := reducer.Reduce(input)
	require.NoError(t, err)

	transformEntries := make([]int64, 4)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v, err := transform.Get(i, j)
			require.NoError(t, err)
			transformEntries[i*2+j] = v.Int64()
		}
	}
	product, err := util.MultiplyIntInt(transformEntries, inputEntries, 2)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v, err := reduced.Get(i, j)
			require.NoError(t, err)
			assert.Equal(t, product[i*2+j], v.Int64())
		}
	}
}
