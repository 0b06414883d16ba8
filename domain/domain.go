package domain

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gokiva/mesh"
	"github.com/notargets/gokiva/types"
)

type FaceKind uint8

const (
	FACE_None     FaceKind = iota // Collapsed axis, no heat flow
	FACE_Interior                 // Shared with a solid neighbor
	FACE_Boundary                 // Domain edge or interface with an air cell
)

type Face struct {
	Kind     FaceKind
	Neighbor int     // Neighbor cell index for interior faces
	G        float64 // Center to center conductance for interior faces, W/K
	Area     float64 // m2
	// Resistance from the cell center to the face for boundary faces, K/W
	HalfResistance float64
	Surface        int // Index into Foundation.Surfaces, -1 when unmatched
	Center         [3]float64
}

type Cell struct {
	I, J, K      int
	Center       [3]float64
	Material     Material
	Type         types.CellType
	Block        int
	Volume       float64
	HeatCapacity float64 // rho*c*V, J/K
	Faces        [6]Face // Indexed by types.Orientation
}

// Domain is the meshed foundation with per-cell material and face coefficients.
type Domain struct {
	Foundation   *Foundation
	Meshes       [3]*mesh.Mesh
	NX, NY, NZ   int
	Cells        []Cell
	SurfaceAreas []float64 // Indexed like Foundation.Surfaces
}

func (d *Domain) Index(i, j, k int) int { return i + d.NX*(j+d.NY*k) }

func (d *Domain) IJK(index int) (i, j, k int) {
	i = index % d.NX
	j = (index / d.NX) % d.NY
	k = index / (d.NX * d.NY)
	return
}

func (d *Domain) Dims() [3]int { return [3]int{d.NX, d.NY, d.NZ} }

func (d *Domain) NumCells() int { return len(d.Cells) }

func (d *Domain) Cell(i, j, k int) *Cell { return &d.Cells[d.Index(i, j, k)] }

func (d *Domain) ActiveAxes() []int { return d.Foundation.ActiveAxes() }

// Stride is the index offset between neighbors along axis.
func (d *Domain) Stride(axis int) int {
	switch axis {
	case 0:
		return 1
	case 1:
		return d.NX
	default:
		return d.NX * d.NY
	}
}

// Build meshes the foundation and computes cell and face properties.
func Build(f *Foundation) (d *Domain, err error) {
	if err = f.Validate(); err != nil {
		return
	}
	d = &Domain{Foundation: f}
	for a := 0; a < 3; a++ {
		if !f.IsActive(a) {
			d.Meshes[a] = mesh.NewUniformMesh(0, 1, 1)
			continue
		}
		if d.Meshes[a], err = mesh.NewMesh(axisIntervals(f, a), f.Mesh.MaxCellsPerAxis); err != nil {
			err = fmt.Errorf("axis %d: %w", a, err)
			return
		}
	}
	d.NX, d.NY, d.NZ = d.Meshes[0].N(), d.Meshes[1].N(), d.Meshes[2].N()
	d.Cells = make([]Cell, d.NX*d.NY*d.NZ)
	if err = d.assignCells(); err != nil {
		return
	}
	d.computeFaces()
	return
}

// AxisPoints are the sorted, distinct block and surface coordinates on axis a, including the
// domain extents.
func (f *Foundation) AxisPoints(a int) (uniq []float64) {
	var (
		min, max = f.Extents.Min[a], f.Extents.Max[a]
		pts      = []float64{min, max}
	)
	add := func(x float64) {
		if x > min+GeomTol && x < max-GeomTol {
			pts = append(pts, x)
		}
	}
	for _, b := range f.Blocks {
		add(b.Box.Min[a])
		add(b.Box.Max[a])
	}
	for _, s := range f.Surfaces {
		add(s.Box.Min[a])
		add(s.Box.Max[a])
	}
	sort.Float64s(pts)
	uniq = pts[:1]
	for _, p := range pts[1:] {
		if !nearlyEqual(p, uniq[len(uniq)-1]) {
			uniq = append(uniq, p)
		}
	}
	return
}

// axisIntervals splits an axis at every block and surface coordinate and grades each piece.
func axisIntervals(f *Foundation, a int) (intervals []mesh.Interval) {
	var (
		uniq = f.AxisPoints(a)
		ms   = f.Mesh
	)
	var (
		oMin      = types.NewOrientationFromAxis(a, false)
		oMax      = types.NewOrientationFromAxis(a, true)
		coarseMin = f.IsCoarseEdge(oMin)
		coarseMax = f.IsCoarseEdge(oMax)
		n         = len(uniq) - 1
	)
	for i := 0; i < n; i++ {
		iv := mesh.Interval{
			Min:         uniq[i],
			Max:         uniq[i+1],
			MinCellDim:  ms.MinCellDim,
			MaxCellDim:  ms.MaxCellDim,
			GrowthCoeff: ms.MaxNearGrowthCoeff,
			Growth:      mesh.Centered,
		}
		atMin, atMax := i == 0 && coarseMin, i == n-1 && coarseMax
		switch {
		case atMin && atMax:
			iv.Growth = mesh.Uniform
		case atMin:
			iv.Growth = mesh.Backward
			if a == 2 {
				iv.GrowthCoeff = ms.MaxDepthGrowthCoeff
			} else {
				iv.GrowthCoeff = ms.MaxInteriorGrowthCoeff
			}
		case atMax:
			iv.Growth = mesh.Forward
			if a == 2 {
				iv.GrowthCoeff = ms.MaxNearGrowthCoeff
			} else {
				iv.GrowthCoeff = ms.MaxExteriorGrowthCoeff
			}
		}
		intervals = append(intervals, iv)
	}
	return
}

func (d *Domain) assignCells() (err error) {
	var (
		f    = d.Foundation
		axes = f.ActiveAxes()
	)
	for k := 0; k < d.NZ; k++ {
		for j := 0; j < d.NY; j++ {
			for i := 0; i < d.NX; i++ {
				c := d.Cell(i, j, k)
				c.I, c.J, c.K = i, j, k
				c.Center = [3]float64{d.Meshes[0].Centers[i], d.Meshes[1].Centers[j], d.Meshes[2].Centers[k]}
				c.Block = -1
				for n := len(f.Blocks) - 1; n >= 0; n-- {
					if f.Blocks[n].Box.Contains(c.Center, axes) {
						c.Block = n
						break
					}
				}
				if c.Block < 0 {
					return fmt.Errorf("%w: cell (%d,%d,%d) at %v is not covered by any block",
						types.ErrConfiguration, i, j, k, c.Center)
				}
				b := f.Blocks[c.Block]
				c.Material, c.Type = b.Material, b.CellType
				c.Volume = d.volume(i, j, k)
				if c.Type == types.CELL_Solid {
					c.HeatCapacity = c.Material.HeatCapacity() * c.Volume
				}
			}
		}
	}
	return
}

func (d *Domain) isCylindrical() bool {
	return d.Foundation.CoordinateSystem == types.COORD_Cylindrical
}

func (d *Domain) volume(i, j, k int) float64 {
	var (
		mx, my, mz = d.Meshes[0], d.Meshes[1], d.Meshes[2]
	)
	if d.isCylindrical() {
		r1, r2 := mx.Dividers[i], mx.Dividers[i+1]
		return math.Pi * (r2*r2 - r1*r1) * mz.Deltas[k]
	}
	return mx.Deltas[i] * my.Deltas[j] * mz.Deltas[k]
}

// faceArea of the face of cell (i,j,k) with outward normal o.
func (d *Domain) faceArea(i, j, k int, o types.Orientation) float64 {
	var (
		mx, my, mz = d.Meshes[0], d.Meshes[1], d.Meshes[2]
	)
	if d.isCylindrical() {
		r1, r2 := mx.Dividers[i], mx.Dividers[i+1]
		switch o.Axis() {
		case 0:
			r := r1
			if o.IsPositive() {
				r = r2
			}
			return 2 * math.Pi * r * mz.Deltas[k]
		default:
			return math.Pi * (r2*r2 - r1*r1)
		}
	}
	switch o.Axis() {
	case 0:
		return my.Deltas[j] * mz.Deltas[k]
	case 1:
		return mx.Deltas[i] * mz.Deltas[k]
	default:
		return mx.Deltas[i] * my.Deltas[j]
	}
}

func (d *Domain) computeFaces() {
	var (
		f    = d.Foundation
		dims = d.Dims()
		ijk  [3]int
	)
	d.SurfaceAreas = make([]float64, len(f.Surfaces))
	for n := range d.Cells {
		c := &d.Cells[n]
		ijk = [3]int{c.I, c.J, c.K}
		for o := types.ORIENT_XNeg; o <= types.ORIENT_ZPos; o++ {
			face := &c.Faces[o]
			face.Surface = -1
			a := o.Axis()
			if !f.IsActive(a) || c.Type != types.CELL_Solid {
				continue
			}
			m := d.Meshes[a]
			face.Area = d.faceArea(c.I, c.J, c.K, o)
			face.Center = c.Center
			half := 0.5 * m.Deltas[ijk[a]]
			if o.IsPositive() {
				face.Center[a] = m.Dividers[ijk[a]+1]
			} else {
				face.Center[a] = m.Dividers[ijk[a]]
			}
			nb := ijk
			if o.IsPositive() {
				nb[a]++
			} else {
				nb[a]--
			}
			if nb[a] >= 0 && nb[a] < dims[a] {
				nbCell := d.Cell(nb[0], nb[1], nb[2])
				if nbCell.Type == types.CELL_Solid {
					nbHalf := 0.5 * m.Deltas[nb[a]]
					face.Kind = FACE_Interior
					face.Neighbor = d.Index(nb[0], nb[1], nb[2])
					if face.Area > 0 {
						face.G = face.Area / (half/c.Material.Conductivity + nbHalf/nbCell.Material.Conductivity)
					}
					continue
				}
			}
			face.Kind = FACE_Boundary
			if face.Area > 0 {
				face.HalfResistance = half / (c.Material.Conductivity * face.Area)
			}
			face.Surface = d.matchSurface(o, face.Center)
			if face.Surface >= 0 {
				d.SurfaceAreas[face.Surface] += face.Area
			}
		}
	}
}

// matchSurface finds the last surface with the face's orientation containing the face center.
func (d *Domain) matchSurface(o types.Orientation, p [3]float64) int {
	var (
		f    = d.Foundation
		a    = o.Axis()
		axes = f.ActiveAxes()
	)
	for n := len(f.Surfaces) - 1; n >= 0; n-- {
		s := f.Surfaces[n]
		if s.Orientation != o || !nearlyEqual(s.Plane(), p[a]) {
			continue
		}
		if s.Box.Contains(p, axes) {
			return n
		}
	}
	return -1
}

// NeighborAcrossAir returns the air cell type across a boundary face, or false at a domain edge.
func (d *Domain) NeighborAcrossAir(c *Cell, o types.Orientation) (ct types.CellType, ok bool) {
	var (
		ijk = [3]int{c.I, c.J, c.K}
		a   = o.Axis()
	)
	if o.IsPositive() {
		ijk[a]++
	} else {
		ijk[a]--
	}
	if ijk[a] < 0 || ijk[a] >= d.Dims()[a] {
		return
	}
	nb := d.Cell(ijk[0], ijk[1], ijk[2])
	if nb.Type.IsAir() {
		ct, ok = nb.Type, true
	}
	return
}

// SurfaceArea is the total meshed area of surfaces of the given type.
func (d *Domain) SurfaceArea(st types.SurfaceType) (area float64) {
	for n, s := range d.Foundation.Surfaces {
		if s.Type == st {
			area += d.SurfaceAreas[n]
		}
	}
	return
}

// SameMesh compares all axis meshes.
func (d *Domain) SameMesh(o *Domain) bool {
	for a := 0; a < 3; a++ {
		if !d.Meshes[a].Equal(o.Meshes[a]) {
			return false
		}
	}
	return true
}
