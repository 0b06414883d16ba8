package types

import (
	"fmt"
	"math"
	"strings"
)

func lookupLabel[T any](kind string, names map[string]T, label string) (v T, err error) {
	var ok bool
	if v, ok = names[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("%w: unknown %s named %q", ErrConfiguration, kind, label)
	}
	return
}

type NumericalScheme uint8

const (
	SCHEME_ADE NumericalScheme = iota
	SCHEME_Explicit
	SCHEME_ADI
	SCHEME_Implicit
	SCHEME_CrankNicolson
	SCHEME_SteadyState
)

var (
	SchemeNames = map[string]NumericalScheme{
		"ade":            SCHEME_ADE,
		"explicit":       SCHEME_Explicit,
		"adi":            SCHEME_ADI,
		"implicit":       SCHEME_Implicit,
		"crank-nicolson": SCHEME_CrankNicolson,
		"cn":             SCHEME_CrankNicolson,
		"steady-state":   SCHEME_SteadyState,
	}
	SchemePrintNames = []string{"ADE", "Explicit", "ADI", "Implicit", "Crank-Nicolson", "Steady-State"}
)

func (ns NumericalScheme) Print() (txt string) {
	txt = SchemePrintNames[ns]
	return
}

func (ns NumericalScheme) String() string { return ns.Print() }

func NewNumericalScheme(label string) (NumericalScheme, error) {
	return lookupLabel("numerical scheme", SchemeNames, label)
}

type BoundaryConditionType uint8

const (
	BC_ZeroFlux BoundaryConditionType = iota
	BC_ConstantTemperature
	BC_InteriorTemperature
	BC_ExteriorTemperature
	BC_InteriorFlux
	BC_ExteriorFlux
	BC_LinearDT
	BC_DeepGround
)

var (
	BoundaryConditionNames = map[string]BoundaryConditionType{
		"zero-flux":            BC_ZeroFlux,
		"constant-temperature": BC_ConstantTemperature,
		"interior-temperature": BC_InteriorTemperature,
		"exterior-temperature": BC_ExteriorTemperature,
		"interior-flux":        BC_InteriorFlux,
		"exterior-flux":        BC_ExteriorFlux,
		"linear-dt":            BC_LinearDT,
		"deep-ground":          BC_DeepGround,
	}
	BoundaryConditionPrintNames = []string{
		"Zero Flux", "Constant Temperature", "Interior Temperature", "Exterior Temperature",
		"Interior Flux", "Exterior Flux", "Linear dT", "Deep Ground",
	}
)

func (bc BoundaryConditionType) Print() (txt string) {
	txt = BoundaryConditionPrintNames[bc]
	return
}

func (bc BoundaryConditionType) String() string { return bc.Print() }

func NewBoundaryConditionType(label string) (BoundaryConditionType, error) {
	return lookupLabel("boundary condition", BoundaryConditionNames, label)
}

// IsExterior reports whether the condition couples to outdoor air.
func (bc BoundaryConditionType) IsExterior() bool {
	return bc == BC_ExteriorFlux || bc == BC_ExteriorTemperature
}

type SurfaceType uint8

const (
	SURF_FarField SurfaceType = iota
	SURF_DeepGround
	SURF_Grade
	SURF_SlabCore
	SURF_SlabPerimeter
	SURF_WallInterior
	SURF_WallExterior
	SURF_WallTop
	SURF_Symmetry
	SURF_TopAirInterior
	SURF_TopAirExterior
	NumSurfaceTypes
)

var (
	SurfaceNames = map[string]SurfaceType{
		"far-field":        SURF_FarField,
		"deep-ground":      SURF_DeepGround,
		"grade":            SURF_Grade,
		"slab-core":        SURF_SlabCore,
		"slab-perimeter":   SURF_SlabPerimeter,
		"wall-interior":    SURF_WallInterior,
		"wall-exterior":    SURF_WallExterior,
		"wall-top":         SURF_WallTop,
		"symmetry":         SURF_Symmetry,
		"top-air-interior": SURF_TopAirInterior,
		"top-air-exterior": SURF_TopAirExterior,
	}
	SurfacePrintNames = []string{
		"Far Field", "Deep Ground", "Grade", "Slab Core", "Slab Perimeter", "Wall Interior",
		"Wall Exterior", "Wall Top", "Symmetry", "Top Air Interior", "Top Air Exterior",
	}
)

func (st SurfaceType) Print() (txt string) {
	txt = SurfacePrintNames[st]
	return
}

func (st SurfaceType) String() string { return st.Print() }

func NewSurfaceType(label string) (SurfaceType, error) {
	return lookupLabel("surface type", SurfaceNames, label)
}

// IsCoarse reports whether a domain edge carrying only this surface type may be meshed coarsely.
func (st SurfaceType) IsCoarse() bool {
	return st == SURF_FarField || st == SURF_DeepGround || st == SURF_Symmetry
}

type CellType uint8

const (
	CELL_Solid CellType = iota
	CELL_InteriorAir
	CELL_ExteriorAir
)

var CellPrintNames = []string{"Solid", "Interior Air", "Exterior Air"}

func (ct CellType) Print() (txt string) {
	txt = CellPrintNames[ct]
	return
}

func (ct CellType) String() string { return ct.Print() }

func (ct CellType) IsAir() bool { return ct != CELL_Solid }

// Orientation is the outward normal of a boundary face.
type Orientation uint8

const (
	ORIENT_XNeg Orientation = iota
	ORIENT_XPos
	ORIENT_YNeg
	ORIENT_YPos
	ORIENT_ZNeg
	ORIENT_ZPos
)

var (
	OrientationNames = map[string]Orientation{
		"x-": ORIENT_XNeg, "x+": ORIENT_XPos,
		"y-": ORIENT_YNeg, "y+": ORIENT_YPos,
		"z-": ORIENT_ZNeg, "z+": ORIENT_ZPos,
	}
	OrientationPrintNames = []string{"X-", "X+", "Y-", "Y+", "Z-", "Z+"}
)

func (o Orientation) Print() (txt string) {
	txt = OrientationPrintNames[o]
	return
}

func (o Orientation) String() string { return o.Print() }

func NewOrientation(label string) (Orientation, error) {
	return lookupLabel("orientation", OrientationNames, label)
}

func NewOrientationFromAxis(axis int, positive bool) Orientation {
	o := Orientation(2 * axis)
	if positive {
		o++
	}
	return o
}

func (o Orientation) Axis() int { return int(o) / 2 }

func (o Orientation) IsPositive() bool { return o%2 == 1 }

func (o Orientation) Sign() float64 {
	if o.IsPositive() {
		return 1
	}
	return -1
}

func (o Orientation) Opposite() Orientation { return o ^ 1 }

// Tilt is the angle (radians) between the outward normal and the zenith.
func (o Orientation) Tilt() (tilt float64) {
	switch o {
	case ORIENT_ZPos:
		tilt = 0
	case ORIENT_ZNeg:
		tilt = math.Pi
	default:
		tilt = math.Pi / 2
	}
	return
}

type CoordinateSystem uint8

const (
	COORD_Cartesian CoordinateSystem = iota
	COORD_Cylindrical
)

var CoordinateNames = map[string]CoordinateSystem{
	"cartesian":   COORD_Cartesian,
	"cylindrical": COORD_Cylindrical,
}

func (cs CoordinateSystem) String() string {
	if cs == COORD_Cylindrical {
		return "Cylindrical"
	}
	return "Cartesian"
}

func NewCoordinateSystem(label string) (CoordinateSystem, error) {
	return lookupLabel("coordinate system", CoordinateNames, label)
}

type DeepGroundBoundary uint8

const (
	DG_ZeroFlux DeepGroundBoundary = iota
	DG_ConstantTemp
	DG_Auto
)

var (
	DeepGroundNames = map[string]DeepGroundBoundary{
		"zero-flux":     DG_ZeroFlux,
		"constant-temp": DG_ConstantTemp,
		"auto":          DG_Auto,
	}
	DeepGroundPrintNames = []string{"Zero Flux", "Constant Temperature", "Auto"}
)

func (dg DeepGroundBoundary) String() string { return DeepGroundPrintNames[dg] }

func NewDeepGroundBoundary(label string) (DeepGroundBoundary, error) {
	return lookupLabel("deep ground boundary", DeepGroundNames, label)
}

type ConvectionMethod uint8

const (
	CONV_Auto ConvectionMethod = iota
	CONV_Constant
)

var ConvectionNames = map[string]ConvectionMethod{
	"auto":     CONV_Auto,
	"constant": CONV_Constant,
}

func (cm ConvectionMethod) String() string {
	if cm == CONV_Constant {
		return "Constant"
	}
	return "Auto"
}

func NewConvectionMethod(label string) (ConvectionMethod, error) {
	return lookupLabel("convection method", ConvectionNames, label)
}

type InitializationMethod uint8

const (
	INIT_SteadyState InitializationMethod = iota
	INIT_Kusuda
	INIT_Constant
)

var (
	InitializationNames = map[string]InitializationMethod{
		"steady-state": INIT_SteadyState,
		"kusuda":       INIT_Kusuda,
		"constant":     INIT_Constant,
	}
	InitializationPrintNames = []string{"Steady-State", "Kusuda", "Constant"}
)

func (im InitializationMethod) String() string { return InitializationPrintNames[im] }

func NewInitializationMethod(label string) (InitializationMethod, error) {
	return lookupLabel("initialization method", InitializationNames, label)
}

// BoundaryLayerMethod selects how the far-field influence curve is built.
type BoundaryLayerMethod uint8

const (
	BL_Analytic BoundaryLayerMethod = iota
	BL_GradeFlux
)

var (
	BoundaryLayerNames = map[string]BoundaryLayerMethod{
		"analytic":   BL_Analytic,
		"grade-flux": BL_GradeFlux,
	}
	BoundaryLayerPrintNames = []string{"Analytic", "Grade Flux"}
)

func (bl BoundaryLayerMethod) String() string { return BoundaryLayerPrintNames[bl] }

func NewBoundaryLayerMethod(label string) (BoundaryLayerMethod, error) {
	return lookupLabel("boundary layer method", BoundaryLayerNames, label)
}

type OutputType uint8

const (
	OUT_Flux OutputType = iota
	OUT_Rate
	OUT_Temperature
	OUT_ConvectionCoefficient
)

var (
	OutputNames = map[string]OutputType{
		"flux":        OUT_Flux,
		"rate":        OUT_Rate,
		"temperature": OUT_Temperature,
		"convection":  OUT_ConvectionCoefficient,
	}
	OutputPrintNames = []string{"Heat Flux [W/m2]", "Heat Rate [W]", "Temperature [C]", "Convection Coefficient [W/m2-K]"}
)

func (ot OutputType) String() string { return OutputPrintNames[ot] }

func NewOutputType(label string) (OutputType, error) {
	return lookupLabel("output type", OutputNames, label)
}

type SolverType uint8

const (
	SOLVER_BiCGStab SolverType = iota
	SOLVER_CG
	SOLVER_LU
)

var SolverNames = map[string]SolverType{
	"bicgstab": SOLVER_BiCGStab,
	"cg":       SOLVER_CG,
	"lu":       SOLVER_LU,
}

func (s SolverType) String() string { return [...]string{"BiCGStab", "CG", "LU"}[s] }

func NewSolverType(label string) (SolverType, error) {
	return lookupLabel("linear solver", SolverNames, label)
}

type PreconditionerType uint8

const (
	PRECOND_ILU PreconditionerType = iota
	PRECOND_Jacobi
	PRECOND_None
)

var PreconditionerNames = map[string]PreconditionerType{
	"ilu":    PRECOND_ILU,
	"jacobi": PRECOND_Jacobi,
	"none":   PRECOND_None,
}

func (p PreconditionerType) String() string { return [...]string{"ILU(0)", "Jacobi", "None"}[p] }

func NewPreconditionerType(label string) (PreconditionerType, error) {
	return lookupLabel("preconditioner", PreconditionerNames, label)
}
