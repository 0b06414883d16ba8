package ground

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gokiva/boundarylayer"
	"github.com/notargets/gokiva/domain"
	"github.com/notargets/gokiva/types"
	"github.com/sirupsen/logrus"
)

func (g *Ground) BoundaryLayer() *boundarylayer.Curve { return g.layer }

// CalculateBoundaryLayer rebuilds the influence curve. The grade flux method uses the heat
// flux profile along grade beyond the foundation; without a usable profile (1D, or no heat
// crossing grade) it falls back to the analytic curve for the elapsed simulated time.
func (g *Ground) CalculateBoundaryLayer() error {
	if g.Elapsed <= 0 {
		return nil
	}
	if g.Settings.BoundaryLayer == types.BL_GradeFlux {
		if ds, qs := g.gradeFluxProfile(); len(ds) >= 2 {
			if err := g.layer.FromFlux(ds, qs); err == nil {
				return nil
			}
		}
	}
	return g.layer.Calculate(g.Elapsed, g.Foundation.Soil.Diffusivity())
}

// gradeFluxProfile is the committed grade heat flux magnitude against horizontal distance beyond
// the foundation, area averaged over faces at the same distance.
func (g *Ground) gradeFluxProfile() (distances, fluxes []float64) {
	var (
		fb    = featureBox(g.Foundation)
		surf  = g.Foundation.Surfaces
		rates = make(map[float64]float64)
		areas = make(map[float64]float64)
	)
	for _, bf := range g.bfaces {
		face := &g.Domain.Cells[bf.Cell].Faces[bf.Orientation]
		if bf.Orientation != types.ORIENT_ZPos || face.Surface < 0 || surf[face.Surface].Type != types.SURF_Grade {
			continue
		}
		var (
			center = g.Domain.Cells[bf.Cell].Center
			d      = math.Inf(-1)
		)
		for _, a := range g.Domain.ActiveAxes() {
			if a != 2 {
				d = math.Max(d, center[a]-fb.Max[a])
			}
		}
		if d < 0 {
			continue
		}
		rates[d] += math.Abs(g.faceHeatRate(bf, g.TOld))
		areas[d] += face.Area
	}
	for d := range rates {
		distances = append(distances, d)
	}
	sort.Float64s(distances)
	fluxes = make([]float64, len(distances))
	for i, d := range distances {
		fluxes[i] = rates[d] / areas[d]
	}
	return
}

// featureBox bounds the blocks that are neither soil nor exterior air. A domain without such
// blocks uses its X/Y minimum and Z maximum.
func featureBox(f *domain.Foundation) (b domain.Box) {
	var found bool
	for _, blk := range f.Blocks {
		if blk.CellType == types.CELL_ExteriorAir ||
			(blk.CellType == types.CELL_Solid && blk.Material == f.Soil) {
			continue
		}
		if !found {
			b, found = blk.Box, true
			continue
		}
		for a := 0; a < 3; a++ {
			b.Min[a] = math.Min(b.Min[a], blk.Box.Min[a])
			b.Max[a] = math.Max(b.Max[a], blk.Box.Max[a])
		}
	}
	if !found {
		e := f.Extents
		b = domain.NewBox(e.Min[0], e.Min[0], e.Min[1], e.Min[1], e.Max[2], e.Max[2])
	}
	return
}

type edgeMove struct {
	o   types.Orientation
	pos float64
}

// farFieldMoves are the coarse edges the influence radius r pushes outward: the X max (and
// Y max in 3D) edge up to FarFieldWidth beyond the foundation, and the Z min edge down to
// DeepGroundDepth below grade.
func (g *Ground) farFieldMoves(r float64) (moves []edgeMove) {
	var (
		f    = g.Foundation
		fb   = featureBox(f)
		step = f.Mesh.MinCellDim
	)
	for _, a := range f.ActiveAxes() {
		var (
			o      types.Orientation
			target float64
			grows  bool
		)
		switch a {
		case 2:
			if f.DeepGroundDepth <= 0 {
				continue
			}
			o = types.ORIENT_ZNeg
			target = math.Max(fb.Min[2]-r, -f.DeepGroundDepth)
			grows = target < f.Extents.Min[2]-step
		default:
			if f.FarFieldWidth <= 0 {
				continue
			}
			o = types.NewOrientationFromAxis(a, true)
			target = fb.Max[a] + math.Min(r, f.FarFieldWidth)
			grows = target > f.Extents.Max[a]+step
		}
		if grows && f.IsCoarseEdge(o) {
			moves = append(moves, edgeMove{o: o, pos: target})
		}
	}
	return
}

// SetNewBoundaryGeometry moves the far-field edges out to the current influence radius when it
// has outgrown the domain. Interior cells keep their values, new outer cells start at the deep
// ground temperature. Nothing changes when the radius is already inside the domain.
func (g *Ground) SetNewBoundaryGeometry() (grown bool, err error) {
	if !g.layer.Ready() {
		if err = g.CalculateBoundaryLayer(); err != nil || !g.layer.Ready() {
			return
		}
	}
	var r float64
	if r, err = g.layer.InfluenceRadius(g.Settings.InfluenceThreshold); err != nil {
		return
	}
	moves := g.farFieldMoves(r)
	if len(moves) == 0 {
		return
	}
	f := g.Foundation
	for _, mv := range moves {
		f = f.WithEdge(mv.o, mv.pos)
	}
	var d *domain.Domain
	if d, err = domain.Build(f); err != nil {
		err = fmt.Errorf("%w: far-field remesh: %v", ErrGeometry, err)
		return
	}
	if err = checkPreserved(g.Domain, d, moves); err != nil {
		return
	}
	T := g.transferField(d)
	g.Foundation, g.Domain = f, d
	g.allocate()
	copy(g.TOld, T)
	g.fillAir(g.conditions, g.TOld)
	g.resolveBoundaries(g.conditions)
	g.CalculateSurfaceAverages()
	grown = true
	g.log.WithFields(logrus.Fields{
		"radius": r,
		"dims":   d.Dims(),
		"cells":  d.NumCells(),
	}).Info("far field grown")
	return
}

// checkPreserved requires every old divider outside the regraded outer interval of a moved edge
// to be present in the new mesh, and unmoved axes to be unchanged.
func checkPreserved(old, d *domain.Domain, moves []edgeMove) error {
	for a := 0; a < 3; a++ {
		var (
			om, nm = old.Meshes[a], d.Meshes[a]
			lo, hi = math.Inf(-1), math.Inf(1)
			moved  bool
		)
		for _, mv := range moves {
			if mv.o.Axis() != a {
				continue
			}
			moved = true
			pts := old.Foundation.AxisPoints(a)
			if mv.o.IsPositive() {
				hi = pts[len(pts)-2]
			} else {
				lo = pts[1]
			}
		}
		if !moved {
			if !om.Equal(nm) {
				return fmt.Errorf("%w: far-field remesh changed axis %d", ErrGeometry, a)
			}
			continue
		}
		for _, x := range om.Dividers {
			if x < lo || x > hi {
				continue
			}
			if _, ok := nm.DividerIndex(x); !ok {
				return fmt.Errorf("%w: far-field remesh lost divider %g on axis %d", ErrGeometry, x, a)
			}
		}
	}
	return nil
}

// transferField maps the committed field onto a new domain. Cells inside the old extents take the
// nearest old value, cells outside it the deep ground temperature.
func (g *Ground) transferField(d *domain.Domain) (T []float64) {
	var (
		old  = g.Domain
		axes = d.ActiveAxes()
		Tdg  = g.conditions.DeepGroundTemperature
	)
	T = make([]float64, d.NumCells())
	for n := range d.Cells {
		var (
			c      = &d.Cells[n]
			ijk    [3]int
			inside = true
		)
		for _, a := range axes {
			m := old.Meshes[a]
			x := c.Center[a]
			if x < m.Min() || x > m.Max() {
				inside = false
				break
			}
			ijk[a] = m.NearestIndex(x)
		}
		if inside {
			T[n] = g.TOld[old.Index(ijk[0], ijk[1], ijk[2])]
		} else {
			T[n] = Tdg
		}
	}
	return
}
