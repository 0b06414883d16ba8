package ground

import (
	"fmt"

	"github.com/notargets/gokiva/types"
	"github.com/sirupsen/logrus"
)

// Settings are the numerical parameters of a run.
type Settings struct {
	Scheme        types.NumericalScheme
	FADI          float64 // Explicit weight of cross terms in ADI sub-steps
	Solver        string  // bicgstab, cg or lu
	Precond       string  // ilu, jacobi or none
	Tolerance     float64 // Relative residual
	MaxIterations int

	Initialization     types.InitializationMethod
	InitialTemperature float64 // Constant initialization, C
	AccelTimestep      float64 // s, zero disables accelerated initialization
	AccelPeriods       int
	WarmupDays         int
	WarmupTimestep     float64 // s

	// Adaptive far field, checked every FarFieldCheckInterval steps (zero disables it)
	FarFieldCheckInterval int
	InfluenceThreshold    float64
	BoundaryLayer         types.BoundaryLayerMethod

	ParallelDegree int // Goroutines for explicit and ADI loops, zero uses every CPU
}

func DefaultSettings() Settings {
	return Settings{
		Scheme:             types.SCHEME_ADI,
		FADI:               1.e-5,
		Solver:             "bicgstab",
		Precond:            "ilu",
		Tolerance:          1.e-6,
		MaxIterations:      100000,
		Initialization:     types.INIT_SteadyState,
		InitialTemperature: 15,
		AccelTimestep:      168 * 3600,
		AccelPeriods:       12,
		WarmupDays:         365,
		WarmupTimestep:     3600,
		InfluenceThreshold: 0.99,
	}
}

func (s Settings) Validate() (err error) {
	if s.Scheme > types.SCHEME_SteadyState {
		return fmt.Errorf("%w: unknown numerical scheme %d", types.ErrConfiguration, s.Scheme)
	}
	if s.FADI < 0 || s.FADI > 1 {
		return fmt.Errorf("%w: f-ADI must lie in [0,1], have %g", types.ErrConfiguration, s.FADI)
	}
	if !(s.Tolerance > 0) || s.MaxIterations <= 0 {
		return fmt.Errorf("%w: solver tolerance and iteration budget must be positive", types.ErrConfiguration)
	}
	if s.AccelTimestep < 0 || s.AccelPeriods < 0 || s.WarmupDays < 0 {
		return fmt.Errorf("%w: initialization periods must not be negative", types.ErrConfiguration)
	}
	if s.WarmupDays > 0 && !(s.WarmupTimestep > 0) {
		return fmt.Errorf("%w: warm-up needs a positive timestep", types.ErrConfiguration)
	}
	if s.BoundaryLayer > types.BL_GradeFlux {
		return fmt.Errorf("%w: unknown boundary layer method %d", types.ErrConfiguration, s.BoundaryLayer)
	}
	if s.FarFieldCheckInterval < 0 || s.InfluenceThreshold <= 0 || s.InfluenceThreshold >= 1 {
		return fmt.Errorf("%w: far-field check interval %d or influence threshold %g out of range",
			types.ErrConfiguration, s.FarFieldCheckInterval, s.InfluenceThreshold)
	}
	return
}

func (s Settings) Print() {
	fmt.Printf("Numerical Scheme = %s\n", s.Scheme.Print())
	if s.Scheme == types.SCHEME_ADI {
		fmt.Printf("f-ADI = %8.3g\n", s.FADI)
	}
	fmt.Printf("Linear Solver = %s, Preconditioner = %s, Tolerance = %8.3g, Max Iterations = %d\n",
		s.Solver, s.Precond, s.Tolerance, s.MaxIterations)
	fmt.Printf("Initialization = %s, Accelerated Periods = %d x %8.0f s, Warm-up Days = %d\n",
		s.Initialization, s.AccelPeriods, s.AccelTimestep, s.WarmupDays)
}

type Option func(g *Ground)

func WithLogger(l *logrus.Logger) Option {
	return func(g *Ground) { g.log = l }
}

func WithParallelDegree(n int) Option {
	return func(g *Ground) { g.Settings.ParallelDegree = n }
}
