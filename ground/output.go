package ground

import (
	"fmt"

	"github.com/notargets/gokiva/domain"
	"github.com/notargets/gokiva/types"
	"gonum.org/v1/gonum/floats"
)

// SurfaceAverage aggregates boundary faces of one surface type. Flux and Rate are positive when
// heat flows from the boundary into the domain.
type SurfaceAverage struct {
	Area                  float64 // m2
	Rate                  float64 // W
	Flux                  float64 // W/m2
	Temperature           float64 // C
	ConvectionCoefficient float64 // W/m2-K
}

// CalculateHeatFlux is -k grad(T) at the center of cell (i,j,k), W/m2. Each active axis uses the
// neighbor centers, or the face temperature where a side has no solid neighbor.
func (g *Ground) CalculateHeatFlux(i, j, k int) (q [3]float64) {
	var (
		d    = g.Domain
		n    = d.Index(i, j, k)
		cell = &d.Cells[n]
		T    = g.TOld
	)
	if cell.Type != types.CELL_Solid {
		return
	}
	for _, a := range d.ActiveAxes() {
		var (
			x  [2]float64
			Tx [2]float64
		)
		for side, positive := range []bool{false, true} {
			o := types.NewOrientationFromAxis(a, positive)
			face := &cell.Faces[o]
			switch face.Kind {
			case domain.FACE_Interior:
				x[side] = d.Cells[face.Neighbor].Center[a]
				Tx[side] = T[face.Neighbor]
			case domain.FACE_Boundary:
				x[side] = face.Center[a]
				Tx[side] = g.faceTemperature(boundaryFace{Cell: n, Orientation: o}, T)
			}
		}
		if dx := x[1] - x[0]; dx > 0 {
			q[a] = -cell.Material.Conductivity * (Tx[1] - Tx[0]) / dx
		}
	}
	return
}

// CalculateSurfaceAverages area weights the committed face state by surface type.
func (g *Ground) CalculateSurfaceAverages() {
	var (
		sums [types.NumSurfaceTypes]SurfaceAverage
		surf = g.Foundation.Surfaces
	)
	for _, bf := range g.bfaces {
		face := &g.Domain.Cells[bf.Cell].Faces[bf.Orientation]
		if face.Surface < 0 {
			continue
		}
		var (
			st = surf[face.Surface].Type
			A  = face.Area
			s  = &sums[st]
		)
		s.Area += A
		s.Rate += g.faceHeatRate(bf, g.TOld)
		s.Temperature += A * g.faceTemperature(bf, g.TOld)
		s.ConvectionCoefficient += A * g.bcH[bf.index()]
	}
	for st := range sums {
		s := &sums[st]
		if s.Area > 0 {
			s.Flux = s.Rate / s.Area
			s.Temperature /= s.Area
			s.ConvectionCoefficient /= s.Area
		}
	}
	g.averages = sums
}

func (g *Ground) SurfaceAverage(st types.SurfaceType) SurfaceAverage { return g.averages[st] }

// SurfaceAverageValue reports one output of the last completed step.
func (g *Ground) SurfaceAverageValue(st types.SurfaceType, ot types.OutputType) (v float64, err error) {
	if st >= types.NumSurfaceTypes {
		err = fmt.Errorf("%w: unknown surface type %d", types.ErrConfiguration, st)
		return
	}
	s := g.averages[st]
	if s.Area == 0 {
		err = fmt.Errorf("%w: no faces of surface type %s", types.ErrConfiguration, st)
		return
	}
	switch ot {
	case types.OUT_Flux:
		v = s.Flux
	case types.OUT_Rate:
		v = s.Rate
	case types.OUT_Temperature:
		v = s.Temperature
	case types.OUT_ConvectionCoefficient:
		v = s.ConvectionCoefficient
	default:
		err = fmt.Errorf("%w: unknown output type %d", types.ErrConfiguration, ot)
	}
	return
}

// StoredEnergy is sum(rho c V T) over solid cells, J relative to 0 C.
func (g *Ground) StoredEnergy() float64 {
	var (
		e = make([]float64, len(g.TOld))
	)
	for n := range g.Domain.Cells {
		e[n] = g.Domain.Cells[n].HeatCapacity * g.TOld[n]
	}
	return floats.Sum(e)
}

// BoundaryHeatRate is the heat flowing into the domain through all boundary faces, W.
func (g *Ground) BoundaryHeatRate() (q float64) {
	for _, bf := range g.bfaces {
		q += g.faceHeatRate(bf, g.TOld)
	}
	return
}

// TemperatureRange spans the committed field over solid cells.
func (g *Ground) TemperatureRange() (min, max float64) {
	var solid []float64
	for n := range g.Domain.Cells {
		if g.Domain.Cells[n].Type == types.CELL_Solid {
			solid = append(solid, g.TOld[n])
		}
	}
	if len(solid) == 0 {
		return
	}
	return floats.Min(solid), floats.Max(solid)
}
