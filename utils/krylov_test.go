package utils

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// laplace2D assembles the 5 point Laplacian plus a diagonal shift on an n x n grid with the
// right hand side chosen so the exact solution is x[i] = i.
func laplace2D(ls *LinearSystem, n int, shift float64) (exact []float64) {
	N := n * n
	ls.Resize(N)
	exact = make([]float64, N)
	for i := range exact {
		exact[i] = float64(i % 17)
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			row := i + n*j
			ls.AddCoefficient(row, row, 4+shift)
			if i > 0 {
				ls.AddCoefficient(row, row-1, -1)
			}
			if i < n-1 {
				ls.AddCoefficient(row, row+1, -1)
			}
			if j > 0 {
				ls.AddCoefficient(row, row-n, -1)
			}
			if j < n-1 {
				ls.AddCoefficient(row, row+n, -1)
			}
		}
	}
	A := ls.A.ToCSR()
	b := make([]float64, N)
	A.MulVec(b, exact)
	for i := range b {
		ls.SetRHS(i, b[i])
	}
	return
}

func TestLinearSystemSolvers(t *testing.T) {
	var (
		solvers = [][2]string{
			{"bicgstab", "ilu"}, {"bicgstab", "jacobi"}, {"bicgstab", "none"},
			{"cg", "ilu"}, {"cg", "jacobi"}, {"cg", "none"},
			{"lu", ""},
		}
	)
	for _, sp := range solvers {
		s, err := NewSparseSolver(sp[0], sp[1], 1.e-10, 1000)
		require.NoError(t, err)
		ls := NewLinearSystem(1, s)
		exact := laplace2D(ls, 12, 0.1)
		stats, err := ls.Solve()
		require.NoError(t, err, s.Name())
		for i, x := range ls.Solution() {
			assert.InDeltaf(t, exact[i], x, 1.e-6, "%s row %d", s.Name(), i)
		}
		assert.LessOrEqual(t, stats.Residual, 1.e-10)
		ls.Close()
		assert.Nil(t, ls.Solution())
	}
	{ // ILU converges in fewer iterations than no preconditioning
		iters := func(pc string) int {
			s, err := NewSparseSolver("bicgstab", pc, 1.e-10, 1000)
			require.NoError(t, err)
			ls := NewLinearSystem(1, s)
			laplace2D(ls, 20, 0.)
			stats, err := ls.Solve()
			require.NoError(t, err)
			return stats.Iterations
		}
		assert.Less(t, iters("ilu"), iters("none"))
	}
	{ // Exhausting the iteration budget is reported
		s, err := NewSparseSolver("cg", "none", 1.e-14, 2)
		require.NoError(t, err)
		ls := NewLinearSystem(1, s)
		laplace2D(ls, 10, 0.)
		_, err = ls.Solve()
		assert.True(t, errors.Is(err, ErrNotConverged))
	}
	{ // Zero right hand side gives the zero solution
		s, _ := NewSparseSolver("bicgstab", "ilu", 1.e-8, 10)
		ls := NewLinearSystem(3, s)
		ls.SetGuess([]float64{1, 2, 3})
		for i := 0; i < 3; i++ {
			ls.AddCoefficient(i, i, 2)
		}
		_, err := ls.Solve()
		assert.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0}, ls.Solution())
	}
	{ // Bad names and parameters
		_, err := NewSparseSolver("gmres", "ilu", 1.e-6, 10)
		assert.Error(t, err)
		_, err = NewSparseSolver("bicgstab", "amg", 1.e-6, 10)
		assert.Error(t, err)
		_, err = NewSparseSolver("bicgstab", "ilu", 0, 10)
		assert.Error(t, err)
	}
}

func TestPreconditioners(t *testing.T) {
	{ // ILU(0) of a tridiagonal matrix is the exact LU, so Apply inverts A
		ls := NewLinearSystem(5, nil)
		for i := 0; i < 5; i++ {
			ls.AddCoefficient(i, i, 3)
			if i > 0 {
				ls.AddCoefficient(i, i-1, -1)
			}
			if i < 4 {
				ls.AddCoefficient(i, i+1, -1)
			}
		}
		A := ls.A.ToCSR()
		var ilu ILU0
		require.NoError(t, ilu.Setup(A))
		x := []float64{1, -2, 3, 0.5, 7}
		b := make([]float64, 5)
		A.MulVec(b, x)
		y := make([]float64, 5)
		ilu.Apply(y, b)
		for i := range x {
			assert.InDelta(t, x[i], y[i], 1.e-12)
		}
	}
	{ // Missing diagonal is rejected
		ls := NewLinearSystem(2, nil)
		ls.AddCoefficient(0, 1, 1)
		ls.AddCoefficient(1, 0, 1)
		A := ls.A.ToCSR()
		assert.Error(t, (&ILU0{}).Setup(A))
		assert.Error(t, (&Jacobi{}).Setup(A))
	}
	{
		ls := NewLinearSystem(2, nil)
		ls.AddCoefficient(0, 0, 2)
		ls.AddCoefficient(1, 1, 4)
		var jac Jacobi
		require.NoError(t, jac.Setup(ls.A.ToCSR()))
		dst := make([]float64, 2)
		jac.Apply(dst, []float64{2, 2})
		assert.Equal(t, []float64{1, 0.5}, dst)
	}
}

func TestTridiagonal(t *testing.T) {
	{
		n := 50
		td := NewTridiagonal(n)
		exact := make([]float64, n)
		for i := range exact {
			exact[i] = math.Sin(float64(i))
		}
		for i := 0; i < n; i++ {
			td.A[i], td.B[i], td.C[i] = -1, 2.5, -1.2
		}
		for i := 0; i < n; i++ {
			td.D[i] = td.B[i] * exact[i]
			if i > 0 {
				td.D[i] += td.A[i] * exact[i-1]
			}
			if i < n-1 {
				td.D[i] += td.C[i] * exact[i+1]
			}
		}
		require.NoError(t, td.Solve())
		for i := range exact {
			assert.InDelta(t, exact[i], td.X[i], 1.e-12)
		}
	}
	{ // Single row
		td := NewTridiagonal(1)
		td.B[0], td.D[0] = 4, 2
		require.NoError(t, td.Solve())
		assert.Equal(t, 0.5, td.X[0])
	}
	{ // Zero leading diagonal needs a row interchange
		td := NewTridiagonal(2)
		td.B[0], td.C[0] = 0, 1
		td.A[1], td.B[1] = 1, 1
		td.D[0], td.D[1] = 1, 3
		require.NoError(t, td.Solve())
		assert.InDelta(t, 2., td.X[0], 1.e-14)
		assert.InDelta(t, 1., td.X[1], 1.e-14)
		// Coefficients survive the solve
		assert.Equal(t, []float64{0, 1}, td.B)
		assert.Equal(t, []float64{1, 3}, td.D)
	}
	{
		td := NewTridiagonal(2)
		assert.Error(t, td.Solve())
	}
}
