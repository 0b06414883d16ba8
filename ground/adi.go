package ground

import (
	"github.com/notargets/gokiva/boundary"
	"github.com/notargets/gokiva/domain"
	"github.com/notargets/gokiva/types"
	"github.com/notargets/gokiva/utils"
)

// adiScheme splits the step into one sub-step of dt/ndim per active axis. The solved axis is
// implicit with weight ndim-(ndim-1)f, the other axes explicit with weight f, so every axis
// carries a total weight of ndim over the ndim sub-steps.
type adiScheme struct {
	f       float64
	scratch [2][]float64
	lines   []*utils.Tridiagonal // One per partition
}

func (*adiScheme) Name() string { return types.SCHEME_ADI.Print() }

func (s *adiScheme) Close() {
	s.scratch = [2][]float64{}
	s.lines = nil
}

func (s *adiScheme) Advance(g *Ground, c boundary.Conditions, dt float64) (err error) {
	var (
		d    = g.Domain
		N    = d.NumCells()
		axes = d.ActiveAxes()
		ndim = float64(len(axes))
		h    = dt / ndim
		wImp = ndim - (ndim-1)*s.f
		src  = g.TOld
	)
	for i := range s.scratch {
		if len(s.scratch[i]) != N {
			s.scratch[i] = make([]float64, N)
		}
	}
	for na, a := range axes {
		dst := s.scratch[na%2]
		if na == len(axes)-1 {
			dst = g.TNew
		}
		g.fillAir(c, dst)
		if err = s.subStep(g, a, h, wImp, src, dst); err != nil {
			return
		}
		src = dst
	}
	return
}

// subStep solves every line along axis a. Lines are independent so they are spread over the
// partitions.
func (s *adiScheme) subStep(g *Ground, a int, h, wImp float64, src, dst []float64) error {
	var (
		d      = g.Domain
		dims   = d.Dims()
		nLine  = dims[a]
		nLines = d.NumCells() / nLine
		pm     = utils.NewPartitionMap(g.partitions.ParallelDegree, nLines)
	)
	if len(s.lines) != pm.ParallelDegree {
		s.lines = make([]*utils.Tridiagonal, pm.ParallelDegree)
	}
	return pm.Run(func(bn, lMin, lMax int) (err error) {
		if s.lines[bn] == nil {
			s.lines[bn] = utils.NewTridiagonal(nLine)
		}
		td := s.lines[bn]
		td.Resize(nLine)
		for l := lMin; l < lMax; l++ {
			start := s.lineStart(d, a, l)
			s.assembleLine(g, a, start, h, wImp, src, td)
			if err = td.Solve(); err != nil {
				return
			}
			stride := d.Stride(a)
			for m := 0; m < nLine; m++ {
				n := start + m*stride
				if d.Cells[n].Type == types.CELL_Solid {
					dst[n] = td.X[m]
				}
			}
		}
		return
	})
}

// lineStart is the flat index of the first cell of line l along axis a.
func (s *adiScheme) lineStart(d *domain.Domain, a, l int) int {
	switch a {
	case 0:
		return d.Index(0, l%d.NY, l/d.NY)
	case 1:
		return d.Index(l%d.NX, 0, l/d.NX)
	default:
		return d.Index(l%d.NX, l/d.NX, 0)
	}
}

func (s *adiScheme) assembleLine(g *Ground, a, start int, h, wImp float64, src []float64, td *utils.Tridiagonal) {
	var (
		d      = g.Domain
		stride = d.Stride(a)
		oNeg   = types.NewOrientationFromAxis(a, false)
		oPos   = types.NewOrientationFromAxis(a, true)
	)
	for m := range td.B {
		n := start + m*stride
		cell := &d.Cells[n]
		td.A[m], td.C[m] = 0, 0
		if cell.Type != types.CELL_Solid {
			td.B[m], td.D[m] = 1, src[n]
			continue
		}
		Ch := cell.HeatCapacity / h
		td.B[m] = Ch
		td.D[m] = Ch * src[n]
		for o := range cell.Faces {
			var (
				face = &cell.Faces[o]
				G    float64
			)
			switch face.Kind {
			case domain.FACE_Interior:
				G = face.G
			case domain.FACE_Boundary:
				G = g.bcG[6*n+o]
			default:
				continue
			}
			if types.Orientation(o).Axis() != a {
				// Explicit cross term
				Tnb := g.bcT[6*n+o]
				if face.Kind == domain.FACE_Interior {
					Tnb = src[face.Neighbor]
				}
				td.D[m] += s.f * G * (Tnb - src[n])
				continue
			}
			td.B[m] += wImp * G
			if face.Kind == domain.FACE_Boundary {
				td.D[m] += wImp * G * g.bcT[6*n+o]
				continue
			}
			switch types.Orientation(o) {
			case oNeg:
				td.A[m] = -wImp * G
			case oPos:
				td.C[m] = -wImp * G
			}
		}
	}
}
