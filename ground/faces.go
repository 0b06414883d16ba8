package ground

import (
	"math"

	"github.com/notargets/gokiva/boundary"
	"github.com/notargets/gokiva/domain"
	"github.com/notargets/gokiva/types"
)

const (
	// Surface properties of solid faces touching air with no declared surface
	defaultEmissivity   = 0.8
	defaultAbsorptivity = 0.8
)

type boundaryFace struct {
	Cell        int
	Orientation types.Orientation
}

func (bf boundaryFace) index() int { return 6*bf.Cell + int(bf.Orientation) }

// indexFaces lists the boundary faces of solid cells.
func (g *Ground) indexFaces() {
	g.bfaces = g.bfaces[:0]
	for n := range g.Domain.Cells {
		cell := &g.Domain.Cells[n]
		if cell.Type != types.CELL_Solid {
			continue
		}
		for o := types.ORIENT_XNeg; o <= types.ORIENT_ZPos; o++ {
			if cell.Faces[o].Kind == domain.FACE_Boundary {
				g.bfaces = append(g.bfaces, boundaryFace{Cell: n, Orientation: o})
			}
		}
	}
}

// resolveBoundaries computes each boundary face's conductance to its effective temperature for
// the step. Surface temperatures for convection and radiation come from the committed field.
func (g *Ground) resolveBoundaries(c boundary.Conditions) {
	for _, bf := range g.bfaces {
		var (
			n  = bf.index()
			ts = g.faceTemperature(bf, g.TOld)
		)
		g.bcG[n], g.bcT[n], g.bcH[n] = g.resolveFace(bf, c, ts)
	}
}

// faceCondition finds the condition acting on a boundary face. Faces toward air without a
// declared surface exchange heat with that air; bare domain edges are adiabatic.
func (g *Ground) faceCondition(bf boundaryFace) (bc types.BoundaryConditionType, s *domain.Surface) {
	var (
		cell = &g.Domain.Cells[bf.Cell]
		face = &cell.Faces[bf.Orientation]
	)
	if face.Surface >= 0 {
		s = &g.Foundation.Surfaces[face.Surface]
		bc = s.BoundaryCondition
		return
	}
	bc = types.BC_ZeroFlux
	if ct, ok := g.Domain.NeighborAcrossAir(cell, bf.Orientation); ok {
		if ct == types.CELL_ExteriorAir {
			bc = types.BC_ExteriorFlux
		} else {
			bc = types.BC_InteriorFlux
		}
	}
	return
}

func (g *Ground) resolveFace(bf boundaryFace, c boundary.Conditions, Ts float64) (G, Teff, h float64) {
	var (
		cell  = &g.Domain.Cells[bf.Cell]
		face  = &cell.Faces[bf.Orientation]
		R     = face.HalfResistance
		bc, s = g.faceCondition(bf)
	)
	Teff = g.TOld[bf.Cell]
	if face.Area == 0 {
		return
	}
	switch bc {
	case types.BC_ZeroFlux:
		return
	case types.BC_ConstantTemperature:
		G, Teff = 1/R, s.Temperature
	case types.BC_InteriorTemperature:
		G, Teff = 1/R, c.IndoorTemperature
	case types.BC_ExteriorTemperature:
		G, Teff = 1/R, c.OutdoorTemperature
	case types.BC_DeepGround:
		if c.DeepGround == types.DG_ZeroFlux {
			return
		}
		G, Teff = 1/R, c.DeepGroundTemperature
	case types.BC_LinearDT:
		var frac float64
		if span := s.LinearEnd - s.LinearStart; span != 0 {
			frac = math.Min(math.Max((face.Center[s.LinearAxis]-s.LinearStart)/span, 0), 1)
		}
		G = 1 / R
		Teff = c.IndoorTemperature + frac*(c.OutdoorTemperature-c.IndoorTemperature)
	case types.BC_InteriorFlux, types.BC_ExteriorFlux:
		var (
			ext     = bc.IsExterior()
			tilt    = bf.Orientation.Tilt()
			Ta      = c.AirTemperature(ext)
			Tr      = Ta
			eps     = defaultEmissivity
			absorb  = defaultAbsorptivity
			azimuth float64
			q       float64
		)
		if s != nil {
			eps, absorb, azimuth = s.Emissivity, s.Absorptivity, s.Azimuth
		}
		h = c.ConvectionCoefficient(Ts, Ta, ext, tilt)
		if ext {
			fSky := (1 + math.Cos(tilt)) / 2
			Tr = fSky*c.SkyTemperature + (1-fSky)*c.OutdoorTemperature
			q = absorb * c.IncidentSolar(tilt, azimuth)
		}
		hr := boundary.RadiationCoefficient(eps, Ts, Tr)
		if hTot := h + hr; hTot > 0 {
			G = 1 / (R + 1/(hTot*face.Area))
			Teff = (h*Ta + hr*Tr + q) / hTot
		}
	}
	return
}

// faceTemperature is the surface temperature implied by the face state and the cell temperature.
func (g *Ground) faceTemperature(bf boundaryFace, T []float64) float64 {
	var (
		n    = bf.index()
		Tc   = T[bf.Cell]
		face = &g.Domain.Cells[bf.Cell].Faces[bf.Orientation]
	)
	return Tc + g.bcG[n]*(g.bcT[n]-Tc)*face.HalfResistance
}

// faceHeatRate is the heat flowing through a boundary face into the domain, W.
func (g *Ground) faceHeatRate(bf boundaryFace, T []float64) float64 {
	n := bf.index()
	return g.bcG[n] * (g.bcT[n] - T[bf.Cell])
}
