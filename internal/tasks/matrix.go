package tasks

import (
	"math/rand/v2"

	apperrors "github.com/agbru/cpustress/internal/errors"
)

// Matrix is a dense row-major matrix of float64 values.
type Matrix [][]float64

// Rows returns the number of rows.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the number of columns of the first row, or 0 for an empty matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// rectangular reports whether every row has the same length.
func (m Matrix) rectangular() bool {
	cols := m.Cols()
	for _, row := range m {
		if len(row) != cols {
			return false
		}
	}
	return true
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n, n)
	for i := range n {
		m[i][i] = 1
	}
	return m
}

// GenerateRandomMatrix fills a rows x cols matrix with independent uniform
// values in [0, 1), drawn from a random source created for this call.
func GenerateRandomMatrix(rows, cols int) Matrix {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	m := NewMatrix(rows, cols)
	for i := range m {
		for j := range m[i] {
			m[i][j] = rng.Float64()
		}
	}
	return m
}

// MatrixMultiply computes a x b with the naive triple loop. The result has
// shape rows(a) x cols(b).
//
// Operands must be non-empty, rectangular and conformant (cols(a) ==
// rows(b)); otherwise an InvariantError is returned and no work is done.
func MatrixMultiply(a, b Matrix) (Matrix, error) {
	if a.Rows() == 0 || b.Rows() == 0 {
		return nil, apperrors.NewInvariantError(KindMatrixMultiply.String(),
			"empty operand (%dx%d * %dx%d)", a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}
	if !a.rectangular() || !b.rectangular() {
		return nil, apperrors.NewInvariantError(KindMatrixMultiply.String(), "ragged operand")
	}
	if a.Cols() != b.Rows() {
		return nil, apperrors.NewInvariantError(KindMatrixMultiply.String(),
			"shape mismatch %dx%d * %dx%d", a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}

	n, p, m := a.Rows(), b.Rows(), b.Cols()
	c := NewMatrix(n, m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			var sum float64
			for k := 0; k < p; k++ {
				sum += a[i][k] * b[k][j]
			}
			c[i][j] = sum
		}
	}
	return c, nil
}
