package InputParameters

import (
	"fmt"
	"math"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/notargets/gokiva/boundary"
	"github.com/notargets/gokiva/domain"
	"github.com/notargets/gokiva/ground"
	"github.com/notargets/gokiva/readfiles"
	"github.com/notargets/gokiva/types"
)

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title      string                     `yaml:"Title"`
	Simulation SimulationParameters       `yaml:"Simulation"`
	Materials  map[string]domain.Material `yaml:"Materials"` // Referenced by name from Foundation
	Foundation FoundationParameters       `yaml:"Foundation"`
	Mesh       domain.MeshSettings        `yaml:"Mesh"`
	Boundaries BoundaryParameters         `yaml:"Boundaries"`
	Numerics   NumericalParameters        `yaml:"Numerics"`
}

type SimulationParameters struct {
	StartHour   float64 `yaml:"StartHour"` // Hours from the start of the year
	Days        float64 `yaml:"Days"`
	Timestep    float64 `yaml:"Timestep"` // s
	WeatherFile string  `yaml:"WeatherFile"`
	OutputFile  string  `yaml:"OutputFile"`
}

type MaterialLayer struct {
	Thickness float64 `yaml:"Thickness"`
	Material  string  `yaml:"Material"`
}

// LayerParameters is a single Thickness and Material, or a stack of Layers which replaces them.
// Slab layers are listed from the top down, wall layers from the interior out.
type LayerParameters struct {
	Thickness float64         `yaml:"Thickness"` // m, zero for none
	Material  string          `yaml:"Material"`
	Layers    []MaterialLayer `yaml:"Layers"`
}

func (lp LayerParameters) layers() []MaterialLayer {
	if len(lp.Layers) != 0 {
		return lp.Layers
	}
	if lp.Thickness > 0 {
		return []MaterialLayer{{Thickness: lp.Thickness, Material: lp.Material}}
	}
	return nil
}

func (lp LayerParameters) total() (t float64) {
	for _, l := range lp.layers() {
		t += l.Thickness
	}
	return
}

// InsulationParameters place an insulation board, absent when Thickness is zero. Vertical boards
// use Depth, measured below grade outside and below the wall top inside. Horizontal boards use
// Width, measured from the wall face, and outside a Depth of the board top below grade.
type InsulationParameters struct {
	Thickness float64 `yaml:"Thickness"`
	Depth     float64 `yaml:"Depth"`
	Width     float64 `yaml:"Width"`
	Material  string  `yaml:"Material"`
}

// FoundationParameters describe a rectangular foundation by its dimensions. X is the half width
// (the radius for cylindrical coordinates) and Y the half length in 3D, both measured from the
// center to the exterior face of the wall. Grade is at z = 0.
type FoundationParameters struct {
	Dimensions           int                  `yaml:"Dimensions"`
	CoordinateSystem     string               `yaml:"CoordinateSystem"`
	HalfWidth            float64              `yaml:"HalfWidth"`
	HalfLength           float64              `yaml:"HalfLength"`
	Depth                float64              `yaml:"Depth"` // Slab top below grade, zero for slab on grade
	WallHeightAboveGrade float64              `yaml:"WallHeightAboveGrade"`
	WallDepthBelowSlab   float64              `yaml:"WallDepthBelowSlab"`
	Slab                 LayerParameters      `yaml:"Slab"`
	Wall                 LayerParameters      `yaml:"Wall"`
	SlabInsulation       LayerParameters      `yaml:"SlabInsulation"`
	ExteriorInsulation   InsulationParameters `yaml:"ExteriorInsulation"`
	Soil                 string               `yaml:"Soil"`
	Orientation          float64              `yaml:"Orientation"` // Degrees clockwise from north of the X+ wall normal
	InteriorEmissivity   float64              `yaml:"InteriorEmissivity"`
	ExteriorEmissivity   float64              `yaml:"ExteriorEmissivity"`
	ExteriorAbsorptivity float64              `yaml:"ExteriorAbsorptivity"`
	// Interior vertical insulation must cover the wall from its top down to the slab
	InteriorVerticalInsulation   InsulationParameters `yaml:"InteriorVerticalInsulation"`
	InteriorHorizontalInsulation InsulationParameters `yaml:"InteriorHorizontalInsulation"`
	ExteriorHorizontalInsulation InsulationParameters `yaml:"ExteriorHorizontalInsulation"`
	PerimeterSurfaceWidth        float64              `yaml:"PerimeterSurfaceWidth"` // Slab edge reported apart from the core
	// Far-field growth limits and the starting domain, which defaults to the limits
	FarFieldWidth          float64 `yaml:"FarFieldWidth"`
	DeepGroundDepth        float64 `yaml:"DeepGroundDepth"`
	InitialFarFieldWidth   float64 `yaml:"InitialFarFieldWidth"`
	InitialDeepGroundDepth float64 `yaml:"InitialDeepGroundDepth"`
}

type BoundaryParameters struct {
	IndoorTemperature float64 `yaml:"IndoorTemperature"` // C
	// Annual outdoor cycle used without a weather file
	OutdoorMean             float64 `yaml:"OutdoorMean"`
	OutdoorAmplitude        float64 `yaml:"OutdoorAmplitude"`
	OutdoorMinimumDay       float64 `yaml:"OutdoorMinimumDay"`
	WindSpeed               float64 `yaml:"WindSpeed"`
	GroundAlbedo            float64 `yaml:"GroundAlbedo"`
	ConvectionMethod        string  `yaml:"ConvectionMethod"`
	InteriorConvectionCoeff float64 `yaml:"InteriorConvectionCoeff"`
	ExteriorConvectionCoeff float64 `yaml:"ExteriorConvectionCoeff"`
	SurfaceRoughness        float64 `yaml:"SurfaceRoughness"`
	DeepGround              string  `yaml:"DeepGround"`
	DeepGroundTemperature   float64 `yaml:"DeepGroundTemperature"`
}

type NumericalParameters struct {
	Scheme                string  `yaml:"Scheme"`
	FADI                  float64 `yaml:"FADI"`
	Solver                string  `yaml:"Solver"`
	Preconditioner        string  `yaml:"Preconditioner"`
	Tolerance             float64 `yaml:"Tolerance"`
	MaxIterations         int     `yaml:"MaxIterations"`
	Initialization        string  `yaml:"Initialization"`
	InitialTemperature    float64 `yaml:"InitialTemperature"`
	AccelTimestepHours    float64 `yaml:"AccelTimestepHours"`
	AccelPeriods          int     `yaml:"AccelPeriods"`
	WarmupDays            int     `yaml:"WarmupDays"`
	FarFieldCheckInterval int     `yaml:"FarFieldCheckInterval"`
	InfluenceThreshold    float64 `yaml:"InfluenceThreshold"`
	BoundaryLayer         string  `yaml:"BoundaryLayer"`
	ParallelDegree        int     `yaml:"ParallelDegree"`
}

func NewInputParameters() (ip *InputParameters) {
	gs := ground.DefaultSettings()
	ip = &InputParameters{
		Title: "Slab on Grade",
		Simulation: SimulationParameters{
			Days:     365,
			Timestep: 3600,
		},
		Materials: map[string]domain.Material{
			"soil":     {Name: "Soil", Conductivity: 1.73, Density: 1842, SpecificHeat: 419},
			"concrete": {Name: "Concrete", Conductivity: 1.98, Density: 1900, SpecificHeat: 665},
			"xps":      {Name: "XPS", Conductivity: 0.029, Density: 28, SpecificHeat: 1450},
		},
		Foundation: FoundationParameters{
			Dimensions:           2,
			CoordinateSystem:     "cartesian",
			HalfWidth:            5,
			HalfLength:           5,
			WallHeightAboveGrade: 0.2,
			Slab:                 LayerParameters{Thickness: 0.1, Material: "concrete"},
			Wall:                 LayerParameters{Thickness: 0.2, Material: "concrete"},
			SlabInsulation:       LayerParameters{Material: "xps"},
			ExteriorInsulation:   InsulationParameters{Material: "xps"},
			Soil:                 "soil",
			InteriorEmissivity:   0.8,
			ExteriorEmissivity:   0.8,
			ExteriorAbsorptivity: 0.8,
			FarFieldWidth:        40,
			DeepGroundDepth:      40,

			InteriorVerticalInsulation:   InsulationParameters{Material: "xps"},
			InteriorHorizontalInsulation: InsulationParameters{Material: "xps"},
			ExteriorHorizontalInsulation: InsulationParameters{Material: "xps"},
		},
		Mesh: domain.DefaultMeshSettings(),
		Boundaries: BoundaryParameters{
			IndoorTemperature:       22,
			OutdoorMean:             10,
			OutdoorAmplitude:        10,
			OutdoorMinimumDay:       15,
			GroundAlbedo:            0.2,
			ConvectionMethod:        "auto",
			InteriorConvectionCoeff: 3,
			ExteriorConvectionCoeff: 25,
			SurfaceRoughness:        boundary.RoughnessRough,
			DeepGround:              "zero-flux",
			DeepGroundTemperature:   10,
		},
		Numerics: NumericalParameters{
			Scheme:             "adi",
			FADI:               gs.FADI,
			Solver:             gs.Solver,
			Preconditioner:     gs.Precond,
			Tolerance:          gs.Tolerance,
			MaxIterations:      gs.MaxIterations,
			Initialization:     "steady-state",
			InitialTemperature: gs.InitialTemperature,
			AccelTimestepHours: gs.AccelTimestep / 3600,
			AccelPeriods:       gs.AccelPeriods,
			WarmupDays:         gs.WarmupDays,
			InfluenceThreshold: gs.InfluenceThreshold,
			BoundaryLayer:      "analytic",
		},
	}
	return
}

// Parse overlays the YAML input on the current values, normally the defaults.
func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.2f\t\t= Simulated Days\n", ip.Simulation.Days)
	fmt.Printf("%8.0f\t\t= Timestep [s]\n", ip.Simulation.Timestep)
	fmt.Printf("[%s]\t\t\t= Numerical Scheme\n", ip.Numerics.Scheme)
	fmt.Printf("[%s]\t= Initialization\n", ip.Numerics.Initialization)
	fmt.Printf("[%d]\t\t\t\t= Dimensions\n", ip.Foundation.Dimensions)
	fmt.Printf("%8.3f\t\t= Half Width [m]\n", ip.Foundation.HalfWidth)
	fmt.Printf("%8.3f\t\t= Foundation Depth [m]\n", ip.Foundation.Depth)
	keys := make([]string, len(ip.Materials))
	i := 0
	for k := range ip.Materials {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Materials[%s] = %v\n", key, ip.Materials[key])
	}
}

func (ip *InputParameters) material(name string) (m domain.Material, err error) {
	var ok bool
	if m, ok = ip.Materials[name]; !ok {
		err = fmt.Errorf("%w: unknown material %q", types.ErrConfiguration, name)
		return
	}
	err = m.Validate()
	return
}

func (ip *InputParameters) Validate() (err error) {
	var (
		fp = ip.Foundation
		sp = ip.Simulation
	)
	if !(sp.Timestep > 0 && sp.Days > 0) {
		return fmt.Errorf("%w: simulation needs a positive timestep and duration", types.ErrConfiguration)
	}
	if fp.Dimensions < 1 || fp.Dimensions > 3 {
		return fmt.Errorf("%w: dimensions must be 1, 2 or 3, have %d", types.ErrConfiguration, fp.Dimensions)
	}
	if _, err = ip.material(fp.Soil); err != nil {
		return
	}
	if !(fp.FarFieldWidth > 0 && fp.DeepGroundDepth > 0) {
		return fmt.Errorf("%w: far-field width and deep ground depth must be positive", types.ErrConfiguration)
	}
	if fp.Dimensions == 1 {
		return
	}
	if !(fp.Slab.total() > 0 && fp.Wall.total() > 0) {
		return fmt.Errorf("%w: slab and wall need a positive thickness", types.ErrConfiguration)
	}
	for _, lp := range []LayerParameters{fp.Slab, fp.Wall, fp.SlabInsulation} {
		for _, l := range lp.layers() {
			if !(l.Thickness > 0) {
				return fmt.Errorf("%w: layer thickness must be positive, have %g", types.ErrConfiguration, l.Thickness)
			}
			if _, err = ip.material(l.Material); err != nil {
				return
			}
		}
	}
	var (
		ivi, ihi  = fp.InteriorVerticalInsulation, fp.InteriorHorizontalInsulation
		evi, ehi  = fp.ExteriorInsulation, fp.ExteriorHorizontalInsulation
		ffw, dgd  = ip.initialExtents()
		fpt       = ip.footprint(ffw)
		zBase     = -fp.Depth - fp.Slab.total() - fp.SlabInsulation.total()
		zBottom   = zBase - fp.WallDepthBelowSlab
		slabToTop = fp.WallHeightAboveGrade + fp.Depth
	)
	for _, ins := range []InsulationParameters{evi, ivi, ihi, ehi} {
		if ins.Thickness < 0 {
			return fmt.Errorf("%w: insulation thickness must not be negative", types.ErrConfiguration)
		}
		if ins.Thickness > 0 {
			if _, err = ip.material(ins.Material); err != nil {
				return
			}
		}
	}
	for _, a := range fpt.horiz {
		if !(fpt.in[a] > 0) {
			return fmt.Errorf("%w: foundation must be wider than its wall", types.ErrConfiguration)
		}
		if !(fpt.face[a] > fp.PerimeterSurfaceWidth) || fp.PerimeterSurfaceWidth < 0 {
			return fmt.Errorf("%w: perimeter surface width %g does not fit the slab", types.ErrConfiguration, fp.PerimeterSurfaceWidth)
		}
		if ihi.Thickness > 0 && !(ihi.Width > 0 && ihi.Width <= fpt.in[a]) {
			return fmt.Errorf("%w: interior horizontal insulation width %g does not fit the slab", types.ErrConfiguration, ihi.Width)
		}
	}
	if !(fp.WallHeightAboveGrade > 0) || fp.Depth < 0 || fp.WallDepthBelowSlab < 0 || evi.Depth < 0 || ehi.Depth < 0 {
		return fmt.Errorf("%w: wall must rise above grade and depths must not be negative", types.ErrConfiguration)
	}
	if ivi.Thickness > 0 && ivi.Depth < slabToTop-domain.GeomTol {
		return fmt.Errorf("%w: interior vertical insulation depth %g does not reach the slab", types.ErrConfiguration, ivi.Depth)
	}
	if ehi.Thickness > 0 && !(ehi.Width > 0 && ehi.Width < ffw) {
		return fmt.Errorf("%w: exterior horizontal insulation width %g does not fit the far field", types.ErrConfiguration, ehi.Width)
	}
	zBottom = math.Min(zBottom, -evi.Depth)
	if ivi.Thickness > 0 {
		zBottom = math.Min(zBottom, fp.WallHeightAboveGrade-ivi.Depth)
	}
	if ihi.Thickness > 0 {
		zBottom = math.Min(zBottom, zBase-ihi.Thickness)
	}
	if ehi.Thickness > 0 {
		zBottom = math.Min(zBottom, -ehi.Depth-ehi.Thickness)
	}
	if !(dgd > -zBottom) {
		return fmt.Errorf("%w: deep ground depth %g does not clear the foundation", types.ErrConfiguration, dgd)
	}
	return
}

// footprint holds per-axis positions: interior wall face, exposed interior face (inside any
// interior vertical insulation), exterior wall face, outer face and domain edge. The unused Y
// entries are one so 2D boxes keep a unit depth.
type footprint struct {
	horiz                     []int
	in, face, half, out, edge [3]float64
}

func (ip *InputParameters) footprint(ffw float64) (fpt footprint) {
	var (
		fp = ip.Foundation
		tw = fp.Wall.total()
	)
	fpt.horiz = []int{0, 1}[:fp.Dimensions-1]
	fpt.in[1], fpt.face[1], fpt.half[1], fpt.out[1], fpt.edge[1] = 1, 1, 1, 1, 1
	for _, a := range fpt.horiz {
		fpt.half[a] = fp.HalfWidth
		if a == 1 {
			fpt.half[a] = fp.HalfLength
		}
		fpt.in[a], fpt.out[a] = fpt.half[a]-tw, fpt.half[a]+fp.ExteriorInsulation.Thickness
		fpt.face[a] = fpt.in[a] - fp.InteriorVerticalInsulation.Thickness
		fpt.edge[a] = fpt.out[a] + ffw
	}
	return
}

func (ip *InputParameters) initialExtents() (ffw, dgd float64) {
	fp := ip.Foundation
	ffw, dgd = fp.FarFieldWidth, fp.DeepGroundDepth
	if fp.InitialFarFieldWidth > 0 {
		ffw = math.Min(ffw, fp.InitialFarFieldWidth)
	}
	if fp.InitialDeepGroundDepth > 0 {
		dgd = math.Min(dgd, fp.InitialDeepGroundDepth)
	}
	return
}

// BuildFoundation generates the blocks and surfaces of the described foundation. Symmetry planes sit
// at x = 0 (and y = 0 in 3D), far-field edges at the maximum of each horizontal axis.
func (ip *InputParameters) BuildFoundation() (f *domain.Foundation, err error) {
	if err = ip.Validate(); err != nil {
		return
	}
	var (
		fp       = ip.Foundation
		soil, _  = ip.material(fp.Soil)
		ffw, dgd = ip.initialExtents()
		cs       types.CoordinateSystem
	)
	if cs, err = types.NewCoordinateSystem(fp.CoordinateSystem); err != nil {
		return
	}
	f = &domain.Foundation{
		NumberOfDimensions: fp.Dimensions,
		CoordinateSystem:   cs,
		Mesh:               ip.Mesh,
		Soil:               soil,
		FarFieldWidth:      fp.FarFieldWidth,
		DeepGroundDepth:    fp.DeepGroundDepth,
	}
	if fp.Dimensions == 1 {
		f.Extents = domain.NewBox(0, 1, 0, 1, -dgd, 0)
		f.Blocks = []domain.Block{{Name: "Soil", Box: f.Extents, Material: soil}}
		f.Surfaces = []domain.Surface{
			{Name: "Grade", Type: types.SURF_Grade, Orientation: types.ORIENT_ZPos,
				Box: domain.NewBox(0, 1, 0, 1, 0, 0), BoundaryCondition: types.BC_ExteriorFlux,
				Emissivity: fp.ExteriorEmissivity, Absorptivity: fp.ExteriorAbsorptivity},
			{Name: "Deep Ground", Type: types.SURF_DeepGround, Orientation: types.ORIENT_ZNeg,
				Box: domain.NewBox(0, 1, 0, 1, -dgd, -dgd), BoundaryCondition: types.BC_DeepGround},
		}
		return
	}
	var (
		fpt            = ip.footprint(ffw)
		horiz          = fpt.horiz
		in, face, half = fpt.in, fpt.face, fpt.half
		out, edge      = fpt.out, fpt.edge
		hg             = fp.WallHeightAboveGrade
		zTop           = -fp.Depth
		zBase          = zTop - fp.Slab.total() - fp.SlabInsulation.total()
		zWallBot       = zBase - fp.WallDepthBelowSlab
		azimuth        = [3]float64{fp.Orientation * math.Pi / 180, (fp.Orientation - 90) * math.Pi / 180}
	)
	// box spans [0, hi] on horizontal axes and [zLo, zHi] vertically
	box := func(hi [3]float64, zLo, zHi float64) domain.Box {
		return domain.NewBox(0, hi[0], 0, hi[1], zLo, zHi)
	}
	// along replaces the span of axis a with [lo, hi]
	along := func(b domain.Box, a int, lo, hi float64) domain.Box {
		b.Min[a], b.Max[a] = lo, hi
		return b
	}
	// named numbers the blocks of a stack with more than one layer
	named := func(name string, i, n int) string {
		if n > 1 {
			return fmt.Sprintf("%s %d", name, i+1)
		}
		return name
	}
	f.Extents = box(edge, -dgd, hg)
	f.Blocks = []domain.Block{
		{Name: "Soil", Box: box(edge, -dgd, 0), Material: soil},
		{Name: "Exterior Air", Box: box(edge, 0, hg), CellType: types.CELL_ExteriorAir},
		{Name: "Interior Air", Box: box(face, zTop, hg), CellType: types.CELL_InteriorAir},
	}
	z := zTop
	for _, lp := range []struct {
		name string
		ls   []MaterialLayer
	}{{"Slab", fp.Slab.layers()}, {"Slab Insulation", fp.SlabInsulation.layers()}} {
		for i, l := range lp.ls {
			m, _ := ip.material(l.Material)
			f.Blocks = append(f.Blocks, domain.Block{Name: named(lp.name, i, len(lp.ls)),
				Box: box(in, z-l.Thickness, z), Material: m})
			z -= l.Thickness
		}
	}
	if ihi := fp.InteriorHorizontalInsulation; ihi.Thickness > 0 {
		ins, _ := ip.material(ihi.Material)
		for _, a := range horiz {
			f.Blocks = append(f.Blocks, domain.Block{Name: "Interior Horizontal Insulation",
				Box: along(box(in, zBase-ihi.Thickness, zBase), a, in[a]-ihi.Width, in[a]), Material: ins})
		}
	}
	for _, a := range horiz {
		ls := fp.Wall.layers()
		x := in[a]
		for i, l := range ls {
			m, _ := ip.material(l.Material)
			f.Blocks = append(f.Blocks, domain.Block{Name: named("Wall", i, len(ls)),
				Box: along(box(half, zWallBot, hg), a, x, x+l.Thickness), Material: m})
			x += l.Thickness
		}
		// The last layer closes on the exterior face
		f.Blocks[len(f.Blocks)-1].Box.Max[a] = half[a]
	}
	if ivi := fp.InteriorVerticalInsulation; ivi.Thickness > 0 {
		ins, _ := ip.material(ivi.Material)
		for _, a := range horiz {
			f.Blocks = append(f.Blocks, domain.Block{Name: "Interior Vertical Insulation",
				Box: along(box(in, hg-ivi.Depth, hg), a, face[a], in[a]), Material: ins})
		}
	}
	if evi := fp.ExteriorInsulation; evi.Thickness > 0 {
		ins, _ := ip.material(evi.Material)
		for _, a := range horiz {
			f.Blocks = append(f.Blocks, domain.Block{Name: "Exterior Insulation",
				Box: along(box(out, -evi.Depth, hg), a, half[a], out[a]), Material: ins})
		}
	}
	if ehi := fp.ExteriorHorizontalInsulation; ehi.Thickness > 0 {
		ins, _ := ip.material(ehi.Material)
		reach := half
		for _, a := range horiz {
			reach[a] += ehi.Width
		}
		for _, a := range horiz {
			f.Blocks = append(f.Blocks, domain.Block{Name: "Exterior Horizontal Insulation",
				Box: along(box(reach, -ehi.Depth-ehi.Thickness, -ehi.Depth), a, half[a], reach[a]), Material: ins})
		}
	}

	interior := func(name string, st types.SurfaceType, o types.Orientation, b domain.Box) domain.Surface {
		return domain.Surface{Name: name, Type: st, Orientation: o, Box: b,
			BoundaryCondition: types.BC_InteriorFlux, Emissivity: fp.InteriorEmissivity}
	}
	exterior := func(name string, st types.SurfaceType, o types.Orientation, b domain.Box) domain.Surface {
		return domain.Surface{Name: name, Type: st, Orientation: o, Box: b,
			BoundaryCondition: types.BC_ExteriorFlux, Emissivity: fp.ExteriorEmissivity, Absorptivity: fp.ExteriorAbsorptivity}
	}
	core := face
	for _, a := range horiz {
		core[a] -= fp.PerimeterSurfaceWidth
	}
	f.Surfaces = []domain.Surface{interior("Slab", types.SURF_SlabCore, types.ORIENT_ZPos, box(core, zTop, zTop))}
	for i, a := range horiz {
		var (
			neg, pos = types.NewOrientationFromAxis(a, false), types.NewOrientationFromAxis(a, true)
		)
		if fp.PerimeterSurfaceWidth > 0 {
			// Perimeter strips ring the core like the grade strips below
			pb := along(box(face, zTop, zTop), a, core[a], face[a])
			for _, b := range horiz[:i] {
				pb = along(pb, b, 0, core[b])
			}
			f.Surfaces = append(f.Surfaces, interior("Slab Perimeter", types.SURF_SlabPerimeter, types.ORIENT_ZPos, pb))
		}
		f.Surfaces = append(f.Surfaces,
			interior("Wall Interior", types.SURF_WallInterior, neg, along(box(face, zTop, hg), a, face[a], face[a])))
		ext := exterior("Wall Exterior", types.SURF_WallExterior, pos, along(box(out, 0, hg), a, out[a], out[a]))
		ext.Azimuth = azimuth[a]
		f.Surfaces = append(f.Surfaces, ext)
		f.Surfaces = append(f.Surfaces, domain.Surface{Name: "Wall Top", Type: types.SURF_WallTop,
			Orientation: types.ORIENT_ZPos, Box: along(box(out, hg, hg), a, face[a], out[a]),
			BoundaryCondition: types.BC_LinearDT, Emissivity: fp.InteriorEmissivity,
			LinearAxis: a, LinearStart: face[a], LinearEnd: out[a]})
		// Grade strips tile the ground outside the foundation without overlap
		gb := along(box(edge, 0, 0), a, out[a], edge[a])
		for _, b := range horiz[:i] {
			gb = along(gb, b, 0, out[b])
		}
		f.Surfaces = append(f.Surfaces, exterior("Grade", types.SURF_Grade, types.ORIENT_ZPos, gb))
		f.Surfaces = append(f.Surfaces,
			domain.Surface{Name: "Far Field", Type: types.SURF_FarField, Orientation: pos,
				Box: along(box(edge, -dgd, 0), a, edge[a], edge[a]), BoundaryCondition: types.BC_ZeroFlux},
			domain.Surface{Name: "Symmetry", Type: types.SURF_Symmetry, Orientation: neg,
				Box: along(box(edge, -dgd, hg), a, 0, 0), BoundaryCondition: types.BC_ZeroFlux})
	}
	f.Surfaces = append(f.Surfaces, domain.Surface{Name: "Deep Ground", Type: types.SURF_DeepGround,
		Orientation: types.ORIENT_ZNeg, Box: box(edge, -dgd, -dgd), BoundaryCondition: types.BC_DeepGround})
	return
}

func (ip *InputParameters) Settings() (s ground.Settings, err error) {
	np := ip.Numerics
	s = ground.DefaultSettings()
	if s.Scheme, err = types.NewNumericalScheme(np.Scheme); err != nil {
		return
	}
	if s.Initialization, err = types.NewInitializationMethod(np.Initialization); err != nil {
		return
	}
	if s.BoundaryLayer, err = types.NewBoundaryLayerMethod(np.BoundaryLayer); err != nil {
		return
	}
	s.FADI = np.FADI
	s.Solver, s.Precond = np.Solver, np.Preconditioner
	s.Tolerance, s.MaxIterations = np.Tolerance, np.MaxIterations
	s.InitialTemperature = np.InitialTemperature
	s.AccelTimestep, s.AccelPeriods = np.AccelTimestepHours*3600, np.AccelPeriods
	s.WarmupDays = np.WarmupDays
	s.WarmupTimestep = ip.Simulation.Timestep
	s.FarFieldCheckInterval, s.InfluenceThreshold = np.FarFieldCheckInterval, np.InfluenceThreshold
	s.ParallelDegree = np.ParallelDegree
	err = s.Validate()
	return
}

// OutdoorCycle is the annual outdoor temperature used without a weather file, sampled daily.
func (ip *InputParameters) OutdoorCycle() (ts *boundary.TimeSeries, err error) {
	var (
		bp    = ip.Boundaries
		P     = boundary.SecondsPerYear
		tMin  = bp.OutdoorMinimumDay * 86400
		times = make([]float64, 365)
		vals  = make([]float64, 365)
	)
	for d := range times {
		times[d] = float64(d) * 86400
		vals[d] = bp.OutdoorMean - bp.OutdoorAmplitude*math.Cos(2*math.Pi*(times[d]-tMin)/P)
	}
	return boundary.NewTimeSeries(times, vals, P)
}

// BoundaryConditions builds the forcing from the input, with any columns present in the weather
// data (which may be nil) replacing the constants.
func (ip *InputParameters) BoundaryConditions(w *readfiles.Weather) (bcs *boundary.BoundaryConditions, err error) {
	var (
		bp      = ip.Boundaries
		soil, _ = ip.material(ip.Foundation.Soil)
		out     *boundary.TimeSeries
	)
	bcs = boundary.NewBoundaryConditions()
	if bcs.ConvectionMethod, err = types.NewConvectionMethod(bp.ConvectionMethod); err != nil {
		return
	}
	if bcs.DeepGround, err = types.NewDeepGroundBoundary(bp.DeepGround); err != nil {
		return
	}
	if out, err = ip.OutdoorCycle(); err != nil {
		return
	}
	bcs.OutdoorTemperature = boundary.Series(out)
	bcs.IndoorTemperature = boundary.Constant(bp.IndoorTemperature)
	bcs.WindSpeed = boundary.Constant(bp.WindSpeed)
	bcs.GroundAlbedo = bp.GroundAlbedo
	bcs.InteriorConvectionCoeff, bcs.ExteriorConvectionCoeff = bp.InteriorConvectionCoeff, bp.ExteriorConvectionCoeff
	bcs.SurfaceRoughness = bp.SurfaceRoughness
	bcs.DeepGroundTemperature = bp.DeepGroundTemperature
	bcs.DeepGroundDepth = ip.Foundation.DeepGroundDepth
	bcs.SoilDiffusivity = soil.Diffusivity()
	if w != nil {
		sources := []struct {
			column string
			dst    *boundary.Source
		}{
			{readfiles.ColOutdoorTemperature, &bcs.OutdoorTemperature},
			{readfiles.ColIndoorTemperature, &bcs.IndoorTemperature},
			{readfiles.ColWindSpeed, &bcs.WindSpeed},
			{readfiles.ColDirectNormal, &bcs.DirectNormal},
			{readfiles.ColDiffuseHorizontal, &bcs.DiffuseHorizontal},
			{readfiles.ColSolarAltitude, &bcs.SolarAltitude},
			{readfiles.ColSolarAzimuth, &bcs.SolarAzimuth},
		}
		for _, src := range sources {
			if !w.Has(src.column) {
				continue
			}
			var ts *boundary.TimeSeries
			if ts, err = w.Series(src.column, boundary.SecondsPerYear); err != nil {
				return
			}
			*src.dst = boundary.Series(ts)
		}
		if w.Has(readfiles.ColSkyTemperature) {
			var ts *boundary.TimeSeries
			if ts, err = w.Series(readfiles.ColSkyTemperature, boundary.SecondsPerYear); err != nil {
				return
			}
			sky := boundary.Series(ts)
			bcs.SkyTemperature = &sky
		}
	}
	err = bcs.Validate()
	return
}
