package ground

import (
	"github.com/notargets/gokiva/boundary"
	"github.com/notargets/gokiva/domain"
	"github.com/notargets/gokiva/types"
)

// thetaScheme assembles the full system
//
//	(C/dt + theta*sum(G)) T'p - theta*sum(G T'nb) = C/dt Tp + (1-theta)*sum(G (Tnb - Tp))
//
// with boundary faces contributing G*Teff. theta = 1 is fully implicit, 1/2 Crank-Nicolson.
// The steady form drops the capacity term.
type thetaScheme struct {
	theta  float64
	steady bool
}

func (s *thetaScheme) Name() string {
	switch {
	case s.steady:
		return types.SCHEME_SteadyState.Print()
	case s.theta == 1:
		return types.SCHEME_Implicit.Print()
	default:
		return types.SCHEME_CrankNicolson.Print()
	}
}

func (s *thetaScheme) Close() {}

func (s *thetaScheme) Advance(g *Ground, c boundary.Conditions, dt float64) (err error) {
	var (
		d     = g.Domain
		N     = d.NumCells()
		ls    = g.system
		theta = s.theta
	)
	ls.Resize(N)
	g.fillAir(c, g.TNew)
	for n := 0; n < N; n++ {
		cell := &d.Cells[n]
		if cell.Type != types.CELL_Solid {
			ls.AddCoefficient(n, n, 1)
			ls.SetRHS(n, g.TNew[n])
			continue
		}
		var (
			diag, rhs float64
		)
		if !s.steady {
			diag = cell.HeatCapacity / dt
			rhs = diag * g.TOld[n]
		}
		for o := range cell.Faces {
			face := &cell.Faces[o]
			switch face.Kind {
			case domain.FACE_Interior:
				diag += theta * face.G
				ls.AddCoefficient(n, face.Neighbor, -theta*face.G)
				rhs += (1 - theta) * face.G * (g.TOld[face.Neighbor] - g.TOld[n])
			case domain.FACE_Boundary:
				G, Teff := g.bcG[6*n+o], g.bcT[6*n+o]
				diag += theta * G
				rhs += theta*G*Teff + (1-theta)*G*(Teff-g.TOld[n])
			}
		}
		ls.AddCoefficient(n, n, diag)
		ls.SetRHS(n, rhs)
	}
	ls.SetGuess(g.TOld)
	if _, err = ls.Solve(); err != nil {
		return
	}
	x := ls.Solution()
	for n := range d.Cells {
		if d.Cells[n].Type == types.CELL_Solid {
			g.TNew[n] = x[n]
		}
	}
	return
}
