// Copyright (c) 2023 Colin McRae

// Package intmatrix represents a matrix with arbitrary-precision integer
// entries, together with the elementary row operations lattice reduction
// performs and an exact determinant for unimodularity checks.
package intmatrix

import (
	"fmt"
	"math/big"
	"strings"
)

type Matrix struct {
	values  []*big.Int
	numRows int
	numCols int
}

// NewFromInt64Array creates a matrix from input with dimensions
// numRowsIn x numColsIn, filling rows in order. If the number of rows and
// columns are not positive and/or do not match the length of the input,
// an error is returned.
func NewFromInt64Array(input []int64, numRowsIn int, numColsIn int) (*Matrix, error) {
	if len(input) != numRowsIn*numColsIn {
		return nil, fmt.Errorf("Matrix.NewFromInt64Array: length of input does not match dimensions")
	}
	if numRowsIn <= 0 || numColsIn <= 0 {
		return nil, fmt.Errorf(
			"Matrix.NewFromInt64Array: illegal number of rows %d or columns %d",
			numRowsIn, numColsIn,
		)
	}
	retVal := &Matrix{
		values:  make([]*big.Int, numRowsIn*numColsIn),
		numRows: numRowsIn,
		numCols: numColsIn,
	}
	for index, value := range input {
		retVal.values[index] = big.NewInt(value)
	}
	return retVal, nil
}

// NewEmpty returns a numRows x numCols matrix with 0s in each value.
// Negative numRows or numCols is interpreted as 0, and a 0 x n or n x 0
// matrix is interpreted as 0 x 0.
func NewEmpty(numRows int, numCols int) *Matrix {
	if numRows < 0 {
		numRows = 0
	}
	if numCols < 0 {
		numCols = 0
	}
	if numRows == 0 || numCols == 0 {
		return &Matrix{
			values:  nil,
			numRows: 0,
			numCols: 0,
		}
	}
	retVal := &Matrix{
		values:  make([]*big.Int, numRows*numCols),
		numRows: numRows,
		numCols: numCols,
	}
	for i := 0; i < numRows*numCols; i++ {
		retVal.values[i] = big.NewInt(0)
	}
	return retVal
}

// NewIdentity returns a dim x dim identity matrix. If dim < 1, an error
// is returned.
func NewIdentity(dim int) (*Matrix, error) {
	if dim < 1 {
		return nil, fmt.Errorf("Matrix.NewIdentity: dimension %d < 1", dim)
	}
	retVal := NewEmpty(dim, dim)
	for i := 0; i < dim; i++ {
		retVal.values[i*dim+i].SetInt64(1)
	}
	return retVal, nil
}

// Set sets the value in row i, column j to x. This is a deep copy.
func (m *Matrix) Set(i int, j int, x *big.Int) error {
	if i < 0 || m.numRows <= i {
		return fmt.Errorf("Matrix.Set: index i = %d outside range {0, ... %d}", i, m.numRows-1)
	}
	if j < 0 || m.numCols <= j {
		return fmt.Errorf("Matrix.Set: index j = %d outside range {0, ... %d}", j, m.numCols-1)
	}
	m.values[i*m.numCols+j].Set(x)
	return nil
}

// Get returns the pointer to the value in row i, column j of m.
// This is not a deep copy.
func (m *Matrix) Get(i int, j int) (*big.Int, error) {
	if i < 0 || m.numRows <= i {
		return nil, fmt.Errorf("Matrix.Get: index i = %d outside range {0, ... %d}", i, m.numRows-1)
	}
	if j < 0 || m.numCols <= j {
		return nil, fmt.Errorf("Matrix.Get: index j = %d outside range {0, ... %d}", j, m.numCols-1)
	}
	return m.values[i*m.numCols+j], nil
}

// Copy copies x to m and returns m. This is a deep copy.
func (m *Matrix) Copy(x *Matrix) *Matrix {
	if x.numRows <= 0 || x.numCols <= 0 {
		m.numRows = 0
		m.numCols = 0
		m.values = nil
		return m
	}
	m.numRows = x.numRows
	m.numCols = x.numCols
	m.values = make([]*big.Int, m.numRows*m.numCols)
	for i := 0; i < m.numRows*m.numCols; i++ {
		m.values[i] = new(big.Int).Set(x.values[i])
	}
	return m
}

// Equals returns whether m and x have the same dimensions and exactly
// equal entries.
func (m *Matrix) Equals(x *Matrix) bool {
	if (m.numRows != x.numRows) || (m.numCols != x.numCols) {
		return false
	}
	for i := 0; i < len(m.values); i++ {
		if m.values[i].Cmp(x.values[i]) != 0 {
			return false
		}
	}
	return true
}

// Mul replaces the contents of m with the matrix xy and returns m. If
// dimensions of x and y do not match, an error is returned.
func (m *Matrix) Mul(x *Matrix, y *Matrix) (*Matrix, error) {
	if x.numRows <= 0 || x.numCols <= 0 || y.numRows <= 0 || y.numCols <= 0 {
		return nil, fmt.Errorf(
			"Matrix.Mul: malformed operands x (%d x %d) and y (%d x %d)",
			x.numRows, x.numCols, y.numRows, y.numCols,
		)
	}
	if x.numCols != y.numRows {
		return nil, fmt.Errorf(
			"Matrix.Mul: mismatched dimensions for operands x (%d x %d) and y (%d x %d)",
			x.numRows, x.numCols, y.numRows, y.numCols,
		)
	}
	retVal := NewEmpty(x.numRows, y.numCols)
	var term big.Int
	for i := 0; i < x.numRows; i++ {
		for j := 0; j < y.numCols; j++ {
			entry := retVal.values[i*retVal.numCols+j]
			for k := 0; k < x.numCols; k++ {
				term.Mul(x.values[i*x.numCols+k], y.values[k*y.numCols+j])
				entry.Add(entry, &term)
			}
		}
	}
	m.Copy(retVal)
	return m, nil
}

// SwapRows exchanges rows i and j of m in place.
func (m *Matrix) SwapRows(i int, j int) error {
	if i < 0 || m.numRows <= i || j < 0 || m.numRows <= j {
		return fmt.Errorf(
			"Matrix.SwapRows: rows %d, %d outside range {0, ... %d}", i, j, m.numRows-1,
		)
	}
	if i == j {
		return nil
	}
	for k := 0; k < m.numCols; k++ {
		m.values[i*m.numCols+k], m.values[j*m.numCols+k] =
			m.values[j*m.numCols+k], m.values[i*m.numCols+k]
	}
	return nil
}

// SubMultipleOfRow applies the elementary operation
// row dst <- row dst - q * row src, in place. dst and src must differ.
func (m *Matrix) SubMultipleOfRow(dst int, src int, q *big.Int) error {
	if dst < 0 || m.numRows <= dst || src < 0 || m.numRows <= src {
		return fmt.Errorf(
			"Matrix.SubMultipleOfRow: rows %d, %d outside range {0, ... %d}",
			dst, src, m.numRows-1,
		)
	}
	if dst == src {
		return fmt.Errorf("Matrix.SubMultipleOfRow: source and destination row are both %d", dst)
	}
	var term big.Int
	for k := 0; k < m.numCols; k++ {
		term.Mul(q, m.values[src*m.numCols+k])
		d := m.values[dst*m.numCols+k]
		d.Sub(d, &term)
	}
	return nil
}

// RowDot returns the exact integer dot product of rows i and j of m.
func (m *Matrix) RowDot(i int, j int) (*big.Int, error) {
	if i < 0 || m.numRows <= i || j < 0 || m.numRows <= j {
		return nil, fmt.Errorf(
			"Matrix.RowDot: rows %d, %d outside range {0, ... %d}", i, j, m.numRows-1,
		)
	}
	retVal := big.NewInt(0)
	var term big.Int
	for k := 0; k < m.numCols; k++ {
		term.Mul(m.values[i*m.numCols+k], m.values[j*m.numCols+k])
		retVal.Add(retVal, &term)
	}
	return retVal, nil
}

// IsZeroRow returns whether every entry of row i is zero.
func (m *Matrix) IsZeroRow(i int) (bool, error) {
	if i < 0 || m.numRows <= i {
		return false, fmt.Errorf(
			"Matrix.IsZeroRow: index i = %d outside range {0, ... %d}", i, m.numRows-1,
		)
	}
	for k := 0; k < m.numCols; k++ {
		if m.values[i*m.numCols+k].Sign() != 0 {
			return false, nil
		}
	}
	return true, nil
}

// Determinant returns the exact determinant of m using Bareiss
// fraction-free elimination, so all intermediate divisions are exact.
// m must be square.
func (m *Matrix) Determinant() (*big.Int, error) {
	if !m.IsSquare() || m.numRows == 0 {
		return nil, fmt.Errorf(
			"Matrix.Determinant: matrix is %d x %d, not square", m.numRows, m.numCols,
		)
	}
	n := m.numRows
	work := make([]*big.Int, n*n)
	for i := 0; i < n*n; i++ {
		work[i] = new(big.Int).Set(m.values[i])
	}
	sign := 1
	prev := big.NewInt(1)
	var t1, t2 big.Int
	for k := 0; k < n-1; k++ {
		if work[k*n+k].Sign() == 0 {
			pivot := -1
			for r := k + 1; r < n; r++ {
				if work[r*n+k].Sign() != 0 {
					pivot = r
					break
				}
			}
			if pivot == -1 {
				return big.NewInt(0), nil
			}
			for c := 0; c < n; c++ {
				work[k*n+c], work[pivot*n+c] = work[pivot*n+c], work[k*n+c]
			}
			sign = -sign
		}
		for i := k + 1; i < n; i++ {
			for j := k + 1; j < n; j++ {
				t1.Mul(work[i*n+j], work[k*n+k])
				t2.Mul(work[i*n+k], work[k*n+j])
				t1.Sub(&t1, &t2)
				work[i*n+j].Quo(&t1, prev)
			}
			work[i*n+k].SetInt64(0)
		}
		prev = work[k*n+k]
	}
	retVal := new(big.Int).Set(work[(n-1)*n+(n-1)])
	if sign < 0 {
		retVal.Neg(retVal)
	}
	return retVal, nil
}

// IsSquare returns whether m has as many rows as columns.
func (m *Matrix) IsSquare() bool {
	return m.numRows == m.numCols
}

// Dimensions returns the number of rows and columns in m, in that order.
func (m *Matrix) Dimensions() (int, int) {
	return m.numRows, m.numCols
}

// NumRows returns the number of rows in m
func (m *Matrix) NumRows() int {
	return m.numRows
}

// NumCols returns the number of columns in m
func (m *Matrix) NumCols() int {
	return m.numCols
}

// String returns a string representing m with rows separated by newlines.
func (m *Matrix) String() string {
	var sb strings.Builder
	for i := 0; i < m.numRows; i++ {
		for j := 0; j < m.numCols; j++ {
			sb.WriteString(fmt.Sprintf("%s, ", m.values[i*m.numCols+j].String()))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
