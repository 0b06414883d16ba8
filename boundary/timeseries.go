package boundary

import (
	"fmt"
	"math"

	"github.com/notargets/gokiva/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

// TimeSeries is a linearly interpolated series, clamped at its ends unless Period is set, in which
// case time wraps and the last point connects to the first.
type TimeSeries struct {
	Times, Values []float64
	Period        float64
	pl            interp.PiecewiseLinear
	single        bool
}

func NewTimeSeries(times, values []float64, period float64) (ts *TimeSeries, err error) {
	if len(times) == 0 || len(times) != len(values) {
		err = fmt.Errorf("%w: time series needs matching, non-empty times and values (%d, %d)",
			types.ErrConfiguration, len(times), len(values))
		return
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			err = fmt.Errorf("%w: time series times must increase, %g follows %g",
				types.ErrConfiguration, times[i], times[i-1])
			return
		}
	}
	if period > 0 && times[len(times)-1]-times[0] >= period {
		err = fmt.Errorf("%w: time series spans %g s, not shorter than its period %g s",
			types.ErrConfiguration, times[len(times)-1]-times[0], period)
		return
	}
	ts = &TimeSeries{Times: times, Values: values, Period: period}
	if len(times) == 1 {
		ts.single = true
		return
	}
	xs, ys := times, values
	if period > 0 {
		xs = append(append([]float64{}, times...), times[0]+period)
		ys = append(append([]float64{}, values...), values[0])
	}
	if err = ts.pl.Fit(xs, ys); err != nil {
		err = fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	return
}

func (ts *TimeSeries) At(t float64) float64 {
	if ts.single {
		return ts.Values[0]
	}
	t0, tn := ts.Times[0], ts.Times[len(ts.Times)-1]
	if ts.Period > 0 {
		t = t0 + math.Mod(math.Mod(t-t0, ts.Period)+ts.Period, ts.Period)
	} else {
		t = math.Min(math.Max(t, t0), tn)
	}
	return ts.pl.Predict(t)
}

// weights are the trapezoid rule weights of the samples over the series span.
func (ts *TimeSeries) weights() (w []float64) {
	var (
		n = len(ts.Times)
	)
	w = make([]float64, n)
	if n == 1 {
		w[0] = 1
		return
	}
	for i := 0; i < n-1; i++ {
		dt := ts.Times[i+1] - ts.Times[i]
		w[i] += dt / 2
		w[i+1] += dt / 2
	}
	if ts.Period > 0 {
		dt := ts.Times[0] + ts.Period - ts.Times[n-1]
		w[n-1] += dt / 2
		w[0] += dt / 2
	}
	return
}

// Mean is the time weighted average over the series.
func (ts *TimeSeries) Mean() float64 {
	return stat.Mean(ts.Values, ts.weights())
}

// Amplitude is half the range of the series.
func (ts *TimeSeries) Amplitude() float64 {
	return 0.5 * (floats.Max(ts.Values) - floats.Min(ts.Values))
}

// PhaseOfMinimum is the time of the minimum value.
func (ts *TimeSeries) PhaseOfMinimum() float64 {
	return ts.Times[floats.MinIdx(ts.Values)]
}

// Source is either a constant or a time series.
type Source struct {
	Value  float64
	Series *TimeSeries
}

func Constant(v float64) Source { return Source{Value: v} }

func Series(ts *TimeSeries) Source { return Source{Series: ts} }

func (s Source) At(t float64) float64 {
	if s.Series != nil {
		return s.Series.At(t)
	}
	return s.Value
}

func (s Source) Mean() float64 {
	if s.Series != nil {
		return s.Series.Mean()
	}
	return s.Value
}

func (s Source) Amplitude() float64 {
	if s.Series != nil {
		return s.Series.Amplitude()
	}
	return 0
}

func (s Source) PhaseOfMinimum() float64 {
	if s.Series != nil {
		return s.Series.PhaseOfMinimum()
	}
	return 0
}
