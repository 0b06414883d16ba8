package boundarylayer

import (
	"fmt"
	"math"

	"github.com/notargets/gokiva/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

const (
	DefaultThreshold = 0.99
	// Number of points sampled along the erf response
	curvePoints = 64
	// The erf response reaches 1 to double precision beyond this many diffusion lengths
	curveSpan = 6.
)

// Curve maps distance from the foundation to the normalized influence of the foundation on the
// ground, rising monotonically from 0 to 1.
type Curve struct {
	Distances, Values []float64
	Elapsed           float64
	Diffusivity       float64
	fwd, inv          interp.PiecewiseLinear
	invMin, invMax    float64
	ready             bool
}

func NewCurve() *Curve {
	return &Curve{}
}

// Calculate rebuilds the curve from the semi-infinite conduction response erf(d/(2*sqrt(alpha*t))).
// Nothing changes unless elapsed time has grown.
func (c *Curve) Calculate(elapsed, diffusivity float64) (err error) {
	if !(diffusivity > 0) {
		return fmt.Errorf("%w: boundary layer diffusivity must be positive, got %g",
			types.ErrConfiguration, diffusivity)
	}
	if elapsed <= 0 || (c.ready && elapsed <= c.Elapsed && diffusivity == c.Diffusivity) {
		return
	}
	var (
		L  = 2 * math.Sqrt(diffusivity*elapsed)
		ds = floats.Span(make([]float64, curvePoints), 0, curveSpan*L)
		vs = make([]float64, curvePoints)
	)
	for i, d := range ds {
		vs[i] = math.Erf(d / L)
	}
	if err = c.set(ds, vs); err != nil {
		return
	}
	c.Elapsed, c.Diffusivity = elapsed, diffusivity
	return
}

// FromFlux builds the curve from a flux profile sampled at increasing distances from the foundation:
// the influence at a distance is the cumulative share of the total absolute flux.
func (c *Curve) FromFlux(distances, fluxes []float64) (err error) {
	if len(distances) < 2 || len(distances) != len(fluxes) {
		return fmt.Errorf("%w: flux profile needs at least two matching points, got %d and %d",
			types.ErrConfiguration, len(distances), len(fluxes))
	}
	var (
		n     = len(distances)
		vs    = make([]float64, n)
		total float64
	)
	for i := 1; i < n; i++ {
		dx := distances[i] - distances[i-1]
		total += 0.5 * (math.Abs(fluxes[i]) + math.Abs(fluxes[i-1])) * dx
		vs[i] = total
	}
	if total == 0 {
		return fmt.Errorf("%w: flux profile carries no heat", types.ErrConfiguration)
	}
	floats.Scale(1/total, vs)
	vs[n-1] = 1
	if err = c.set(distances, vs); err != nil {
		return
	}
	// A flux-built curve carries no elapsed time
	c.Elapsed, c.Diffusivity = 0, 0
	return
}

func (c *Curve) set(ds, vs []float64) (err error) {
	for i := 1; i < len(ds); i++ {
		if !(ds[i] > ds[i-1]) {
			return fmt.Errorf("%w: boundary layer distances must increase, %g follows %g",
				types.ErrConfiguration, ds[i], ds[i-1])
		}
		if vs[i] < vs[i-1] {
			return fmt.Errorf("%w: boundary layer values must not decrease", types.ErrConfiguration)
		}
	}
	if err = c.fwd.Fit(ds, vs); err != nil {
		return
	}
	// The inverse needs strictly increasing values, so plateaus keep their first point
	var xs, ys []float64
	for i := range vs {
		if i == 0 || vs[i] > xs[len(xs)-1] {
			xs = append(xs, vs[i])
			ys = append(ys, ds[i])
		}
	}
	if len(xs) < 2 {
		return fmt.Errorf("%w: boundary layer curve is flat", types.ErrConfiguration)
	}
	if err = c.inv.Fit(xs, ys); err != nil {
		return
	}
	c.invMin, c.invMax = xs[0], xs[len(xs)-1]
	c.Distances, c.Values = ds, vs
	c.ready = true
	return
}

// Value is the influence at distance d: zero before the first point, one past the last.
func (c *Curve) Value(d float64) float64 {
	switch {
	case !c.ready:
		return 0
	case d <= c.Distances[0]:
		return c.Values[0]
	case d >= c.Distances[len(c.Distances)-1]:
		return 1
	}
	return c.fwd.Predict(d)
}

// Distance is the smallest distance at which the influence reaches v.
func (c *Curve) Distance(v float64) (d float64, err error) {
	if v < 0 || v > 1 || math.IsNaN(v) {
		err = fmt.Errorf("%w: boundary layer value %g is outside [0,1]", types.ErrConfiguration, v)
		return
	}
	if !c.ready {
		return
	}
	switch {
	case v <= c.invMin:
		d = c.Distances[0]
	case v >= c.invMax:
		d = c.inv.Predict(c.invMax)
	default:
		d = c.inv.Predict(v)
	}
	return
}

// InfluenceRadius is the distance at which the influence reaches threshold.
func (c *Curve) InfluenceRadius(threshold float64) (float64, error) {
	return c.Distance(threshold)
}

func (c *Curve) Ready() bool { return c.ready }
