package ground

import (
	"fmt"
	"math"

	"github.com/notargets/gokiva/boundary"
	"github.com/notargets/gokiva/types"
	"github.com/notargets/gokiva/utils"
	"github.com/sirupsen/logrus"
)

// Initialize sets the field for a run starting at t0. The initial field is set at the start of
// the accelerated and warm-up periods, which then run up to t0: accelerated periods with the
// implicit scheme and long steps, warm-up days with the configured scheme.
func (g *Ground) Initialize(bcs *boundary.BoundaryConditions, t0 float64) (err error) {
	if err = bcs.Validate(); err != nil {
		return
	}
	var (
		s         = g.Settings
		nAccel    int
		nWarm     int
		accelSpan float64
		warmSpan  float64
	)
	if s.AccelTimestep > 0 {
		nAccel = s.AccelPeriods
		accelSpan = float64(nAccel) * s.AccelTimestep
	}
	if s.WarmupDays > 0 {
		nWarm = int(math.Ceil(float64(s.WarmupDays) * 86400 / s.WarmupTimestep))
		warmSpan = float64(nWarm) * s.WarmupTimestep
	}
	t := t0 - accelSpan - warmSpan
	c := bcs.Resolve(t)
	switch s.Initialization {
	case types.INIT_Constant:
		copy(g.TOld, utils.ConstArray(len(g.TOld), s.InitialTemperature))
		g.commit(c)
	case types.INIT_Kusuda:
		g.initKusuda(bcs, t)
		g.commit(c)
	case types.INIT_SteadyState:
		steady, _ := NewScheme(types.SCHEME_SteadyState, 0)
		if err = g.step(steady, c, 0); err != nil {
			return
		}
	default:
		return fmt.Errorf("%w: unknown initialization method %d", types.ErrConfiguration, s.Initialization)
	}
	if nAccel > 0 {
		implicit, _ := NewScheme(types.SCHEME_Implicit, 0)
		for p := 0; p < nAccel; p++ {
			t += s.AccelTimestep
			if err = g.step(implicit, bcs.Resolve(t), s.AccelTimestep); err != nil {
				return
			}
		}
	}
	for p := 0; p < nWarm; p++ {
		t += s.WarmupTimestep
		if err = g.Calculate(bcs.Resolve(t), s.WarmupTimestep); err != nil {
			return
		}
	}
	g.log.WithFields(logrus.Fields{
		"method":      s.Initialization,
		"accelerated": nAccel,
		"warmup":      nWarm,
		"t0":          t0,
	}).Info("ground initialized")
	return
}

// initKusuda sets solid cells to the undisturbed ground temperature at their depth below grade
// (z = 0).
func (g *Ground) initKusuda(bcs *boundary.BoundaryConditions, t float64) {
	var (
		o     = bcs.OutdoorTemperature
		alpha = g.Foundation.Soil.Diffusivity()
	)
	for n := range g.Domain.Cells {
		depth := math.Max(-g.Domain.Cells[n].Center[2], 0)
		g.TOld[n] = boundary.KusudaTemperature(depth, t, o.Mean(), o.Amplitude(), o.PhaseOfMinimum(), alpha, bcs.Period)
	}
}

// commit makes a directly set field the committed state under conditions c.
func (g *Ground) commit(c boundary.Conditions) {
	g.fillAir(c, g.TOld)
	g.resolveBoundaries(c)
	g.conditions = c
	g.CalculateSurfaceAverages()
}
