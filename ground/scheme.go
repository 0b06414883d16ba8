package ground

import (
	"fmt"

	"github.com/notargets/gokiva/boundary"
	"github.com/notargets/gokiva/domain"
	"github.com/notargets/gokiva/types"
)

// Scheme advances g.TOld to g.TNew over dt. Boundary face state is resolved before Advance.
type Scheme interface {
	Advance(g *Ground, c boundary.Conditions, dt float64) error
	Name() string
	Close()
}

func NewScheme(ns types.NumericalScheme, fADI float64) (s Scheme, err error) {
	switch ns {
	case types.SCHEME_Explicit:
		s = &explicitScheme{}
	case types.SCHEME_ADE:
		s = &adeScheme{}
	case types.SCHEME_ADI:
		s = &adiScheme{f: fADI}
	case types.SCHEME_Implicit:
		s = &thetaScheme{theta: 1}
	case types.SCHEME_CrankNicolson:
		s = &thetaScheme{theta: 0.5}
	case types.SCHEME_SteadyState:
		s = &thetaScheme{theta: 1, steady: true}
	default:
		err = fmt.Errorf("%w: unknown numerical scheme %d", types.ErrConfiguration, ns)
	}
	return
}

// netFlow is the heat flowing into cell n over all faces for the field T, W. Interior faces use
// neighbor values from T, boundary faces the step's effective temperatures.
func (g *Ground) netFlow(n int, T []float64) (q float64) {
	cell := &g.Domain.Cells[n]
	for o := range cell.Faces {
		face := &cell.Faces[o]
		switch face.Kind {
		case domain.FACE_Interior:
			q += face.G * (T[face.Neighbor] - T[n])
		case domain.FACE_Boundary:
			q += g.bcG[6*n+o] * (g.bcT[6*n+o] - T[n])
		}
	}
	return
}

type explicitScheme struct{}

func (*explicitScheme) Name() string { return types.SCHEME_Explicit.Print() }

func (*explicitScheme) Close() {}

// Advance updates every cell from the old field only, so k-planes are computed in parallel.
func (*explicitScheme) Advance(g *Ground, c boundary.Conditions, dt float64) error {
	var (
		d          = g.Domain
		TOld, TNew = g.TOld, g.TNew
		plane      = d.NX * d.NY
	)
	g.fillAir(c, TNew)
	return g.partitions.Run(func(bn, kMin, kMax int) error {
		for n := kMin * plane; n < kMax*plane; n++ {
			cell := &d.Cells[n]
			if cell.Type != types.CELL_Solid {
				continue
			}
			TNew[n] = TOld[n] + dt/cell.HeatCapacity*g.netFlow(n, TOld)
		}
		return nil
	})
}

// adeScheme averages an ascending sweep and a descending sweep. In each sweep the neighbors
// already visited contribute implicitly through their new values, the rest explicitly.
type adeScheme struct {
	U, V []float64
}

func (*adeScheme) Name() string { return types.SCHEME_ADE.Print() }

func (s *adeScheme) Close() { s.U, s.V = nil, nil }

func (s *adeScheme) Advance(g *Ground, c boundary.Conditions, dt float64) error {
	var (
		N = g.Domain.NumCells()
	)
	if len(s.U) != N {
		s.U, s.V = make([]float64, N), make([]float64, N)
	}
	copy(s.U, g.TOld)
	copy(s.V, g.TOld)
	g.fillAir(c, s.U)
	g.fillAir(c, s.V)
	for n := 0; n < N; n++ {
		s.sweepCell(g, n, dt, s.U, false)
	}
	for n := N - 1; n >= 0; n-- {
		s.sweepCell(g, n, dt, s.V, true)
	}
	for n := range g.TNew {
		g.TNew[n] = 0.5 * (s.U[n] + s.V[n])
	}
	return nil
}

// sweepCell updates cell n in W. Faces on the side already swept (negative faces on the
// ascending sweep, positive on the descending) are implicit.
func (s *adeScheme) sweepCell(g *Ground, n int, dt float64, W []float64, descending bool) {
	var (
		cell = &g.Domain.Cells[n]
		T    = g.TOld
	)
	if cell.Type != types.CELL_Solid {
		return
	}
	var (
		Cdt = cell.HeatCapacity / dt
		num = Cdt * T[n]
		den = Cdt
	)
	for o := range cell.Faces {
		var (
			face     = &cell.Faces[o]
			implicit = types.Orientation(o).IsPositive() == descending
			G, Tnb   float64
		)
		switch face.Kind {
		case domain.FACE_Interior:
			G, Tnb = face.G, W[face.Neighbor]
		case domain.FACE_Boundary:
			G, Tnb = g.bcG[6*n+o], g.bcT[6*n+o]
		default:
			continue
		}
		if implicit {
			num += G * Tnb
			den += G
		} else {
			if face.Kind == domain.FACE_Interior {
				Tnb = T[face.Neighbor]
			}
			num += G * (Tnb - T[n])
		}
	}
	W[n] = num / den
}
