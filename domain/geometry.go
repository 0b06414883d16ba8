package domain

import (
	"fmt"

	"github.com/notargets/gokiva/types"
	"gonum.org/v1/gonum/floats/scalar"
)

const GeomTol = 1.e-9

func nearlyEqual(a, b float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, GeomTol, GeomTol)
}

type Material struct {
	Name         string  `yaml:"Name"`
	Conductivity float64 `yaml:"Conductivity"` // W/m-K
	Density      float64 `yaml:"Density"`      // kg/m3
	SpecificHeat float64 `yaml:"SpecificHeat"` // J/kg-K
}

func (m Material) Validate() (err error) {
	if !(m.Conductivity > 0 && m.Density > 0 && m.SpecificHeat > 0) {
		err = fmt.Errorf("%w: material %q needs positive conductivity, density and specific heat, have %g, %g, %g",
			types.ErrConfiguration, m.Name, m.Conductivity, m.Density, m.SpecificHeat)
	}
	return
}

// HeatCapacity is the volumetric heat capacity rho*c, J/m3-K
func (m Material) HeatCapacity() float64 { return m.Density * m.SpecificHeat }

func (m Material) Diffusivity() float64 { return m.Conductivity / m.HeatCapacity() }

// Box is an axis aligned region. Min/Max are indexed by axis 0=X, 1=Y, 2=Z.
type Box struct {
	Min, Max [3]float64
}

func NewBox(xMin, xMax, yMin, yMax, zMin, zMax float64) Box {
	return Box{Min: [3]float64{xMin, yMin, zMin}, Max: [3]float64{xMax, yMax, zMax}}
}

// Contains tests the point on the given axes only, inclusive of the box edges.
func (b Box) Contains(p [3]float64, axes []int) bool {
	for _, a := range axes {
		if p[a] < b.Min[a]-GeomTol || p[a] > b.Max[a]+GeomTol {
			return false
		}
	}
	return true
}

// moveEdge replaces every coordinate on axis that sits at from with to.
func (b *Box) moveEdge(axis int, from, to float64) {
	if nearlyEqual(b.Min[axis], from) {
		b.Min[axis] = to
	}
	if nearlyEqual(b.Max[axis], from) {
		b.Max[axis] = to
	}
}

type Block struct {
	Name     string
	Box      Box
	Material Material
	CellType types.CellType
}

// Surface is a rectangle lying on a plane normal to its Orientation's axis.
type Surface struct {
	Name              string
	Type              types.SurfaceType
	Orientation       types.Orientation
	Box               Box // Degenerate on the orientation axis
	BoundaryCondition types.BoundaryConditionType
	Temperature       float64 // Constant temperature condition, C
	Emissivity        float64
	Absorptivity      float64
	Azimuth           float64 // Radians clockwise from north of the outward normal, vertical surfaces
	// Linear dT wall tops run from the interior temperature at LinearStart to the exterior
	// temperature at LinearEnd along LinearAxis.
	LinearAxis             int
	LinearStart, LinearEnd float64
}

func (s Surface) Plane() float64 { return s.Box.Min[s.Orientation.Axis()] }

func (s Surface) Tilt() float64 { return s.Orientation.Tilt() }

type MeshSettings struct {
	MinCellDim             float64
	MaxNearGrowthCoeff     float64
	MaxDepthGrowthCoeff    float64
	MaxInteriorGrowthCoeff float64
	MaxExteriorGrowthCoeff float64
	MaxCellDim             float64
	MaxCellsPerAxis        int
}

func DefaultMeshSettings() MeshSettings {
	return MeshSettings{
		MinCellDim:             0.02,
		MaxNearGrowthCoeff:     1.5,
		MaxDepthGrowthCoeff:    1.5,
		MaxInteriorGrowthCoeff: 1.5,
		MaxExteriorGrowthCoeff: 1.5,
		MaxCellsPerAxis:        2000,
	}
}

// Foundation is already-built geometry: the domain box, blocks of material and boundary surfaces.
// X is the radius for cylindrical coordinates. Z is up.
type Foundation struct {
	NumberOfDimensions int
	CoordinateSystem   types.CoordinateSystem
	Extents            Box
	Blocks             []Block // Later blocks override earlier ones
	Surfaces           []Surface
	Mesh               MeshSettings
	Soil               Material
	// Upper limits for far-field growth of the X max (and Y max in 3D) edge and the Z min edge
	FarFieldWidth   float64
	DeepGroundDepth float64
}

// ActiveAxes are the axes that are meshed: Z for 1D, X and Z for 2D, all for 3D.
func (f *Foundation) ActiveAxes() (axes []int) {
	switch f.NumberOfDimensions {
	case 1:
		axes = []int{2}
	case 2:
		axes = []int{0, 2}
	default:
		axes = []int{0, 1, 2}
	}
	return
}

func (f *Foundation) IsActive(axis int) bool {
	for _, a := range f.ActiveAxes() {
		if a == axis {
			return true
		}
	}
	return false
}

func (f *Foundation) Validate() (err error) {
	if f.NumberOfDimensions < 1 || f.NumberOfDimensions > 3 {
		return fmt.Errorf("%w: number of dimensions must be 1, 2 or 3, have %d",
			types.ErrConfiguration, f.NumberOfDimensions)
	}
	if f.CoordinateSystem == types.COORD_Cylindrical {
		if f.NumberOfDimensions != 2 {
			return fmt.Errorf("%w: cylindrical coordinates require two dimensions", types.ErrConfiguration)
		}
		if f.Extents.Min[0] < 0 {
			return fmt.Errorf("%w: cylindrical radius must start at or above zero, have %g",
				types.ErrConfiguration, f.Extents.Min[0])
		}
	}
	for _, a := range f.ActiveAxes() {
		if !(f.Extents.Max[a] > f.Extents.Min[a]) {
			return fmt.Errorf("%w: domain extent on axis %d is empty", types.ErrConfiguration, a)
		}
	}
	if len(f.Blocks) == 0 {
		return fmt.Errorf("%w: foundation has no blocks", types.ErrConfiguration)
	}
	for _, b := range f.Blocks {
		if b.CellType == types.CELL_Solid {
			if err = b.Material.Validate(); err != nil {
				return fmt.Errorf("block %q: %w", b.Name, err)
			}
		}
	}
	for _, s := range f.Surfaces {
		a := s.Orientation.Axis()
		if !nearlyEqual(s.Box.Min[a], s.Box.Max[a]) {
			return fmt.Errorf("%w: surface %q is not planar on its normal axis", types.ErrConfiguration, s.Name)
		}
	}
	return
}

// EdgeSurfaces returns the surfaces lying on the domain edge with outward normal o.
func (f *Foundation) EdgeSurfaces(o types.Orientation) (surfs []Surface) {
	a := o.Axis()
	edge := f.Extents.Min[a]
	if o.IsPositive() {
		edge = f.Extents.Max[a]
	}
	for _, s := range f.Surfaces {
		if s.Orientation == o && nearlyEqual(s.Plane(), edge) {
			surfs = append(surfs, s)
		}
	}
	return
}

// IsCoarseEdge reports whether an edge only carries far-field, deep-ground or symmetry surfaces.
func (f *Foundation) IsCoarseEdge(o types.Orientation) bool {
	for _, s := range f.EdgeSurfaces(o) {
		if !s.Type.IsCoarse() {
			return false
		}
	}
	return true
}

// WithEdge returns a copy of the foundation with the domain edge o moved to pos. Block and surface
// coordinates sitting on the old edge move with it.
func (f *Foundation) WithEdge(o types.Orientation, pos float64) (g *Foundation) {
	var (
		a    = o.Axis()
		from = f.Extents.Min[a]
	)
	if o.IsPositive() {
		from = f.Extents.Max[a]
	}
	g = &Foundation{}
	*g = *f
	g.Blocks = make([]Block, len(f.Blocks))
	copy(g.Blocks, f.Blocks)
	g.Surfaces = make([]Surface, len(f.Surfaces))
	copy(g.Surfaces, f.Surfaces)
	g.Extents.moveEdge(a, from, pos)
	for i := range g.Blocks {
		g.Blocks[i].Box.moveEdge(a, from, pos)
	}
	for i := range g.Surfaces {
		g.Surfaces[i].Box.moveEdge(a, from, pos)
	}
	return
}
