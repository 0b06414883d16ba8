package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"github.com/notargets/gokiva/types"
	"gonum.org/v1/gonum/mat"
)

var ErrNotConverged = types.ErrNotConverged

type DOK struct {
	M    *sparse.DOK
	name string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		"unnamed",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)              { return m.M.Dims() }
func (m DOK) At(i, j int) float64           { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix                 { return m.M.T() }
func (m DOK) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }

// Add accumulates val into (i,j)
func (m DOK) Add(i, j int, val float64) {
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) Set(i, j int, val float64) { m.M.Set(i, j, val) }

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

type CSR struct {
	M    *sparse.CSR
	name string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) NNZ() int                      { return m.M.NNZ() }

// MulVec computes dst = A*x
func (m CSR) MulVec(dst, x []float64) {
	for i := range dst {
		dst[i] = 0
	}
	m.M.MulVecTo(dst, false, x)
}

func (m CSR) DoRowNonZero(i int, fn func(i, j int, v float64)) {
	m.M.DoRowNonZero(i, fn)
}

func (m CSR) Diagonal() (d []float64) {
	nr, _ := m.Dims()
	d = make([]float64, nr)
	for i := 0; i < nr; i++ {
		d[i] = m.M.At(i, i)
	}
	return
}

// Dense expands the matrix for direct factorization of small systems.
func (m CSR) Dense() (D *mat.Dense) {
	nr, nc := m.Dims()
	D = mat.NewDense(nr, nc, nil)
	m.M.DoNonZero(func(i, j int, v float64) {
		D.Set(i, j, v)
	})
	return
}

type SolveStats struct {
	Iterations int
	Residual   float64 // Relative residual ||b-Ax||/||b||
}

// SparseSolver solves A x = b, using x as the initial guess.
type SparseSolver interface {
	Solve(A CSR, b, x []float64) (stats SolveStats, err error)
	Name() string
}

// LinearSystem is assembled row by row into DOK form and converted to CSR for each solve.
type LinearSystem struct {
	N      int
	A      DOK
	B, X   []float64
	solver SparseSolver
	last   SolveStats
}

func NewLinearSystem(n int, solver SparseSolver) (ls *LinearSystem) {
	ls = &LinearSystem{solver: solver}
	ls.Resize(n)
	return
}

// Resize clears the matrix and right hand side. The previous solution is kept as the
// next initial guess when the size is unchanged.
func (ls *LinearSystem) Resize(n int) {
	ls.A = NewDOK(n, n)
	ls.A.name = "A"
	if n != ls.N || ls.X == nil {
		ls.X = make([]float64, n)
		ls.B = make([]float64, n)
	} else {
		for i := range ls.B {
			ls.B[i] = 0
		}
	}
	ls.N = n
}

func (ls *LinearSystem) AddCoefficient(row, col int, val float64) {
	if val == 0 {
		return
	}
	ls.A.Add(row, col, val)
}

func (ls *LinearSystem) SetRHS(row int, val float64) { ls.B[row] = val }

// SetGuess seeds the iterative solver's initial guess.
func (ls *LinearSystem) SetGuess(x []float64) { copy(ls.X, x) }

func (ls *LinearSystem) Solve() (stats SolveStats, err error) {
	if ls.solver == nil {
		err = fmt.Errorf("linear system has no solver")
		return
	}
	csr := ls.A.ToCSR()
	stats, err = ls.solver.Solve(csr, ls.B, ls.X)
	ls.last = stats
	return
}

func (ls *LinearSystem) Solution() []float64 { return ls.X }

func (ls *LinearSystem) LastStats() SolveStats { return ls.last }

func (ls *LinearSystem) SolverName() string {
	if ls.solver == nil {
		return "none"
	}
	return ls.solver.Name()
}

// Close releases the matrix and vectors.
func (ls *LinearSystem) Close() {
	ls.A = DOK{}
	ls.B, ls.X = nil, nil
	ls.N = 0
}
