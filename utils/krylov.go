package utils

import (
	"fmt"

	"github.com/notargets/gokiva/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NewSparseSolver selects a linear solver by name, e.g. ("bicgstab", "ilu").
func NewSparseSolver(solverName, precondName string, tolerance float64, maxIterations int) (s SparseSolver, err error) {
	var (
		st types.SolverType
		pt types.PreconditionerType
		pc Preconditioner
	)
	if st, err = types.NewSolverType(solverName); err != nil {
		return
	}
	if st == types.SOLVER_LU {
		s = &DirectLU{}
		return
	}
	if pt, err = types.NewPreconditionerType(precondName); err != nil {
		return
	}
	switch pt {
	case types.PRECOND_ILU:
		pc = &ILU0{}
	case types.PRECOND_Jacobi:
		pc = &Jacobi{}
	default:
		pc = Identity{}
	}
	if tolerance <= 0 || maxIterations <= 0 {
		err = fmt.Errorf("%w: solver tolerance and max iterations must be positive, have %g and %d",
			types.ErrConfiguration, tolerance, maxIterations)
		return
	}
	s = &Krylov{
		Method:        st,
		Precond:       pc,
		Tolerance:     tolerance,
		MaxIterations: maxIterations,
	}
	return
}

// Krylov is a preconditioned BiCGStab or CG iteration on a CSR matrix.
type Krylov struct {
	Method        types.SolverType
	Precond       Preconditioner
	Tolerance     float64
	MaxIterations int
	work          [8][]float64
}

func (k *Krylov) Name() string {
	return fmt.Sprintf("%s/%s", k.Method, k.Precond.Name())
}

func (k *Krylov) scratch(n int) {
	for i := range k.work {
		if len(k.work[i]) != n {
			k.work[i] = make([]float64, n)
		}
	}
}

func (k *Krylov) Solve(A CSR, b, x []float64) (stats SolveStats, err error) {
	var (
		n     = len(b)
		bnorm = floats.Norm(b, 2)
	)
	if bnorm == 0 {
		for i := range x {
			x[i] = 0
		}
		return
	}
	if err = k.Precond.Setup(A); err != nil {
		return
	}
	k.scratch(n)
	if k.Method == types.SOLVER_CG {
		return k.cg(A, b, x, bnorm)
	}
	return k.bicgstab(A, b, x, bnorm)
}

func (k *Krylov) bicgstab(A CSR, b, x []float64, bnorm float64) (stats SolveStats, err error) {
	var (
		r, rhat, p, v = k.work[0], k.work[1], k.work[2], k.work[3]
		phat, s, shat = k.work[4], k.work[5], k.work[6]
		t             = k.work[7]
		rho, alpha    = 1., 1.
		omega         = 1.
	)
	A.MulVec(r, x)
	floats.SubTo(r, b, r)
	copy(rhat, r)
	for i := range p {
		p[i], v[i] = 0, 0
	}
	stats.Residual = floats.Norm(r, 2) / bnorm
	if stats.Residual < k.Tolerance {
		return
	}
	for stats.Iterations = 1; stats.Iterations <= k.MaxIterations; stats.Iterations++ {
		rhoNew := floats.Dot(rhat, r)
		if rhoNew == 0 {
			err = fmt.Errorf("%w: bicgstab breakdown (rho = 0) after %d iterations", ErrNotConverged, stats.Iterations)
			return
		}
		if stats.Iterations == 1 {
			copy(p, r)
		} else {
			beta := (rhoNew / rho) * (alpha / omega)
			// p = r + beta*(p - omega*v)
			floats.AddScaled(p, -omega, v)
			floats.Scale(beta, p)
			floats.Add(p, r)
		}
		k.Precond.Apply(phat, p)
		A.MulVec(v, phat)
		alpha = rhoNew / floats.Dot(rhat, v)
		floats.AddScaledTo(s, r, -alpha, v)
		if stats.Residual = floats.Norm(s, 2) / bnorm; stats.Residual < k.Tolerance {
			floats.AddScaled(x, alpha, phat)
			return
		}
		k.Precond.Apply(shat, s)
		A.MulVec(t, shat)
		tt := floats.Dot(t, t)
		if tt == 0 {
			err = fmt.Errorf("%w: bicgstab breakdown (t = 0) after %d iterations", ErrNotConverged, stats.Iterations)
			return
		}
		omega = floats.Dot(t, s) / tt
		floats.AddScaled(x, alpha, phat)
		floats.AddScaled(x, omega, shat)
		floats.AddScaledTo(r, s, -omega, t)
		if stats.Residual = floats.Norm(r, 2) / bnorm; stats.Residual < k.Tolerance {
			return
		}
		if omega == 0 {
			err = fmt.Errorf("%w: bicgstab breakdown (omega = 0) after %d iterations", ErrNotConverged, stats.Iterations)
			return
		}
		rho = rhoNew
	}
	stats.Iterations = k.MaxIterations
	err = fmt.Errorf("%w: %d iterations, relative residual %g > %g",
		ErrNotConverged, k.MaxIterations, stats.Residual, k.Tolerance)
	return
}

func (k *Krylov) cg(A CSR, b, x []float64, bnorm float64) (stats SolveStats, err error) {
	var (
		r, z, p, ap = k.work[0], k.work[1], k.work[2], k.work[3]
	)
	A.MulVec(r, x)
	floats.SubTo(r, b, r)
	if stats.Residual = floats.Norm(r, 2) / bnorm; stats.Residual < k.Tolerance {
		return
	}
	k.Precond.Apply(z, r)
	copy(p, z)
	rz := floats.Dot(r, z)
	for stats.Iterations = 1; stats.Iterations <= k.MaxIterations; stats.Iterations++ {
		A.MulVec(ap, p)
		pap := floats.Dot(p, ap)
		if pap == 0 {
			err = fmt.Errorf("%w: cg breakdown after %d iterations", ErrNotConverged, stats.Iterations)
			return
		}
		alpha := rz / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)
		if stats.Residual = floats.Norm(r, 2) / bnorm; stats.Residual < k.Tolerance {
			return
		}
		k.Precond.Apply(z, r)
		rzNew := floats.Dot(r, z)
		floats.Scale(rzNew/rz, p)
		floats.Add(p, z)
		rz = rzNew
	}
	stats.Iterations = k.MaxIterations
	err = fmt.Errorf("%w: %d iterations, relative residual %g > %g",
		ErrNotConverged, k.MaxIterations, stats.Residual, k.Tolerance)
	return
}

// DirectLU factorizes the expanded matrix with gonum's LU. Only practical for small systems.
type DirectLU struct{}

func (DirectLU) Name() string { return "lu" }

func (DirectLU) Solve(A CSR, b, x []float64) (stats SolveStats, err error) {
	var (
		lu  mat.LU
		dst = mat.NewVecDense(len(x), x)
	)
	lu.Factorize(A.Dense())
	if err = lu.SolveVecTo(dst, false, mat.NewVecDense(len(b), b)); err != nil {
		if _, ill := err.(mat.Condition); !ill {
			err = fmt.Errorf("%w: %v", ErrNotConverged, err)
			return
		}
		err = nil
	}
	copy(x, dst.RawVector().Data)
	stats.Iterations = 1
	return
}
