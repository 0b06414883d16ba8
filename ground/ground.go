package ground

import (
	"fmt"
	"math"

	"github.com/notargets/gokiva/boundary"
	"github.com/notargets/gokiva/boundarylayer"
	"github.com/notargets/gokiva/domain"
	"github.com/notargets/gokiva/types"
	"github.com/notargets/gokiva/utils"
	"github.com/sirupsen/logrus"
)

// Ground owns the meshed domain and the double buffered temperature field, and advances the field
// one timestep at a time with a scheme fixed at construction.
type Ground struct {
	Settings   Settings
	Foundation *domain.Foundation
	Domain     *domain.Domain
	TOld, TNew []float64 // Committed field and the field being computed, C
	Elapsed    float64   // Simulated time since initialization, s
	Steps      int

	// Boundary face state for the step, indexed 6*cell + orientation
	bcG, bcT, bcH []float64
	bfaces        []boundaryFace
	conditions    boundary.Conditions

	scheme     Scheme
	system     *utils.LinearSystem
	partitions *utils.PartitionMap
	layer      *boundarylayer.Curve
	averages   [types.NumSurfaceTypes]SurfaceAverage
	log        *logrus.Logger
}

func NewGround(f *domain.Foundation, s Settings, opts ...Option) (g *Ground, err error) {
	if err = s.Validate(); err != nil {
		return
	}
	g = &Ground{
		Settings:   s,
		Foundation: f,
		layer:      boundarylayer.NewCurve(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logrus.New()
		g.log.SetLevel(logrus.WarnLevel)
	}
	var solver utils.SparseSolver
	if solver, err = utils.NewSparseSolver(s.Solver, s.Precond, s.Tolerance, s.MaxIterations); err != nil {
		return nil, err
	}
	g.system = utils.NewLinearSystem(0, solver)
	if g.scheme, err = NewScheme(s.Scheme, s.FADI); err != nil {
		return nil, err
	}
	if g.Domain, err = domain.Build(f); err != nil {
		return nil, err
	}
	g.allocate()
	g.log.WithFields(logrus.Fields{
		"cells":  g.Domain.NumCells(),
		"dims":   g.Domain.Dims(),
		"scheme": g.scheme.Name(),
		"solver": g.system.SolverName(),
	}).Info("ground domain built")
	return
}

// allocate sizes the field and face state to the current domain.
func (g *Ground) allocate() {
	var (
		d = g.Domain
		N = d.NumCells()
	)
	g.TOld, g.TNew = make([]float64, N), make([]float64, N)
	g.bcG, g.bcT, g.bcH = make([]float64, 6*N), make([]float64, 6*N), make([]float64, 6*N)
	g.partitions = utils.NewPartitionMap(g.Settings.ParallelDegree, d.NZ)
	g.indexFaces()
}

func (g *Ground) At(i, j, k int) float64 { return g.TOld[g.Domain.Index(i, j, k)] }

// Field returns a copy of the committed temperature field.
func (g *Ground) Field() (T []float64) {
	T = make([]float64, len(g.TOld))
	copy(T, g.TOld)
	return
}

// SetField replaces the committed field, e.g. to restart from a saved state.
func (g *Ground) SetField(T []float64) (err error) {
	if len(T) != len(g.TOld) {
		return fmt.Errorf("%w: field has %d values, domain has %d cells",
			types.ErrConfiguration, len(T), len(g.TOld))
	}
	copy(g.TOld, T)
	return
}

func (g *Ground) SchemeName() string { return g.scheme.Name() }

// Conditions are the boundary conditions applied in the last step.
func (g *Ground) Conditions() boundary.Conditions { return g.conditions }

// Calculate advances the field by dt under the boundary conditions c.
func (g *Ground) Calculate(c boundary.Conditions, dt float64) (err error) {
	if iv := g.Settings.FarFieldCheckInterval; iv > 0 && g.Steps > 0 && g.Steps%iv == 0 {
		if err = g.CalculateBoundaryLayer(); err != nil {
			return
		}
		if _, err = g.SetNewBoundaryGeometry(); err != nil {
			return
		}
	}
	return g.step(g.scheme, c, dt)
}

func (g *Ground) step(s Scheme, c boundary.Conditions, dt float64) (err error) {
	if th, steady := s.(*thetaScheme); !(dt > 0) && !(steady && th.steady) {
		return fmt.Errorf("%w: timestep must be positive, have %g", types.ErrConfiguration, dt)
	}
	g.resolveBoundaries(c)
	if err = s.Advance(g, c, dt); err != nil {
		return g.stepError(s, err)
	}
	if n := utils.FirstNonFinite(g.TNew); n >= 0 {
		i, j, k := g.Domain.IJK(n)
		return g.stepError(s, fmt.Errorf("%w: cell (%d,%d,%d) is %g", ErrDivergence, i, j, k, g.TNew[n]))
	}
	g.TOld, g.TNew = g.TNew, g.TOld
	g.conditions = c
	g.Elapsed += dt
	g.Steps++
	g.CalculateSurfaceAverages()
	if g.log.IsLevelEnabled(logrus.DebugLevel) {
		stats := g.system.LastStats()
		g.log.WithFields(logrus.Fields{
			"step":       g.Steps,
			"time":       c.Time,
			"scheme":     s.Name(),
			"iterations": stats.Iterations,
			"residual":   stats.Residual,
		}).Debug("step complete")
	}
	return
}

func (g *Ground) stepError(s Scheme, err error) error {
	return &StepError{Step: g.Steps, Time: g.Elapsed, Scheme: s.Name(), Wrapped: err}
}

// StableTimestep is the largest explicit timestep that keeps every cell's diffusion number
// within bounds, min C/sum(G), using the face state of the last step.
func (g *Ground) StableTimestep() (dt float64) {
	dt = math.Inf(1)
	for n := range g.Domain.Cells {
		cell := &g.Domain.Cells[n]
		if cell.Type != types.CELL_Solid {
			continue
		}
		var sumG float64
		for o := range cell.Faces {
			face := &cell.Faces[o]
			switch face.Kind {
			case domain.FACE_Interior:
				sumG += face.G
			case domain.FACE_Boundary:
				sumG += g.bcG[6*n+o]
			}
		}
		if sumG > 0 {
			dt = math.Min(dt, cell.HeatCapacity/sumG)
		}
	}
	return
}

// fillAir holds air cells at their air temperature.
func (g *Ground) fillAir(c boundary.Conditions, T []float64) {
	for n := range g.Domain.Cells {
		switch g.Domain.Cells[n].Type {
		case types.CELL_InteriorAir:
			T[n] = c.IndoorTemperature
		case types.CELL_ExteriorAir:
			T[n] = c.OutdoorTemperature
		}
	}
}

// Close releases the linear system and scheme scratch space.
func (g *Ground) Close() {
	if g.scheme != nil {
		g.scheme.Close()
	}
	if g.system != nil {
		g.system.Close()
	}
}
