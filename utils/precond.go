package utils

import (
	"fmt"
	"sort"
)

type Preconditioner interface {
	Setup(A CSR) error
	// Apply computes dst = M^-1 r
	Apply(dst, r []float64)
	Name() string
}

type Identity struct{}

func (Identity) Setup(CSR) error        { return nil }
func (Identity) Apply(dst, r []float64) { copy(dst, r) }
func (Identity) Name() string           { return "none" }

type Jacobi struct {
	invDiag []float64
}

func (p *Jacobi) Setup(A CSR) error {
	d := A.Diagonal()
	p.invDiag = make([]float64, len(d))
	for i, v := range d {
		if v == 0 {
			return fmt.Errorf("jacobi preconditioner: zero diagonal at row %d", i)
		}
		p.invDiag[i] = 1 / v
	}
	return nil
}

func (p *Jacobi) Apply(dst, r []float64) {
	for i, v := range r {
		dst[i] = v * p.invDiag[i]
	}
}

func (p *Jacobi) Name() string { return "jacobi" }

// ILU0 is an incomplete LU factorization restricted to the sparsity pattern of A.
type ILU0 struct {
	n      int
	rowPtr []int
	col    []int
	val    []float64
	diag   []int
}

func (p *ILU0) Setup(A CSR) (err error) {
	var (
		nr, _ = A.Dims()
		cols  []int
		vals  []float64
	)
	p.n = nr
	p.rowPtr = make([]int, nr+1)
	p.col = p.col[:0]
	p.val = p.val[:0]
	p.diag = make([]int, nr)
	for i := 0; i < nr; i++ {
		cols, vals = cols[:0], vals[:0]
		A.DoRowNonZero(i, func(_, j int, v float64) {
			cols = append(cols, j)
			vals = append(vals, v)
		})
		order := make([]int, len(cols))
		for n := range order {
			order[n] = n
		}
		sort.Slice(order, func(a, b int) bool { return cols[order[a]] < cols[order[b]] })
		p.diag[i] = -1
		for _, n := range order {
			if cols[n] == i {
				p.diag[i] = len(p.col)
			}
			p.col = append(p.col, cols[n])
			p.val = append(p.val, vals[n])
		}
		if p.diag[i] < 0 {
			return fmt.Errorf("ilu preconditioner: missing diagonal at row %d", i)
		}
		p.rowPtr[i+1] = len(p.col)
	}
	iw := make([]int, nr)
	for i := range iw {
		iw[i] = -1
	}
	for i := 0; i < nr; i++ {
		for q := p.rowPtr[i]; q < p.rowPtr[i+1]; q++ {
			iw[p.col[q]] = q
		}
		for q := p.rowPtr[i]; q < p.diag[i]; q++ {
			k := p.col[q]
			pivot := p.val[p.diag[k]]
			if pivot == 0 {
				return fmt.Errorf("ilu preconditioner: zero pivot at row %d", k)
			}
			p.val[q] /= pivot
			for r := p.diag[k] + 1; r < p.rowPtr[k+1]; r++ {
				if w := iw[p.col[r]]; w >= 0 {
					p.val[w] -= p.val[q] * p.val[r]
				}
			}
		}
		for q := p.rowPtr[i]; q < p.rowPtr[i+1]; q++ {
			iw[p.col[q]] = -1
		}
		if p.val[p.diag[i]] == 0 {
			return fmt.Errorf("ilu preconditioner: zero pivot at row %d", i)
		}
	}
	return
}

func (p *ILU0) Apply(dst, r []float64) {
	// L y = r, unit lower triangle
	for i := 0; i < p.n; i++ {
		sum := r[i]
		for q := p.rowPtr[i]; q < p.diag[i]; q++ {
			sum -= p.val[q] * dst[p.col[q]]
		}
		dst[i] = sum
	}
	// U x = y
	for i := p.n - 1; i >= 0; i-- {
		sum := dst[i]
		for q := p.diag[i] + 1; q < p.rowPtr[i+1]; q++ {
			sum -= p.val[q] * dst[p.col[q]]
		}
		dst[i] = sum / p.val[p.diag[i]]
	}
}

func (p *ILU0) Name() string { return "ilu" }
