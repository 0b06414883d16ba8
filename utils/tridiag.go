package utils

import (
	"fmt"

	lapack "gonum.org/v1/gonum/lapack/gonum"
)

// Tridiagonal holds one line system a[i]*x[i-1] + b[i]*x[i] + c[i]*x[i+1] = d[i].
// a[0] and c[n-1] are ignored.
type Tridiagonal struct {
	A, B, C, D, X []float64
	dl, d, du     []float64
}

func NewTridiagonal(n int) (td *Tridiagonal) {
	td = &Tridiagonal{}
	td.Resize(n)
	return
}

func (td *Tridiagonal) Resize(n int) {
	if len(td.B) == n {
		return
	}
	td.A, td.B, td.C = make([]float64, n), make([]float64, n), make([]float64, n)
	td.D, td.X = make([]float64, n), make([]float64, n)
	td.d = make([]float64, n)
	if n > 0 {
		td.dl, td.du = make([]float64, n-1), make([]float64, n-1)
	}
}

// Solve factors a copy of the line with LAPACK Dgtsv (partial pivoting), leaving the result in X.
// The assembled coefficients are left intact.
func (td *Tridiagonal) Solve() (err error) {
	n := len(td.B)
	if n == 0 {
		return
	}
	copy(td.dl, td.A[1:])
	copy(td.du, td.C[:n-1])
	copy(td.d, td.B)
	copy(td.X, td.D)
	if ok := (lapack.Implementation{}).Dgtsv(n, 1, td.dl, td.d, td.du, td.X, 1); !ok {
		return fmt.Errorf("tridiagonal solve: singular system of %d rows", n)
	}
	return
}
