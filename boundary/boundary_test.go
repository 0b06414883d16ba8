package boundary

import (
	"math"
	"testing"

	"github.com/notargets/gokiva/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSeries(t *testing.T) {
	{
		ts, err := NewTimeSeries([]float64{0, 10, 20}, []float64{0, 10, 0}, 0)
		require.NoError(t, err)
		assert.InDelta(t, 5., ts.At(5), 1.e-12)
		assert.InDelta(t, 7., ts.At(13), 1.e-12)
		assert.Equal(t, 0., ts.At(-5))
		assert.Equal(t, 0., ts.At(50))
		assert.InDelta(t, 5., ts.Mean(), 1.e-12)
		assert.Equal(t, 5., ts.Amplitude())
		assert.Equal(t, 0., ts.PhaseOfMinimum())
	}
	{ // Periodic wrap joins the last point to the first
		ts, err := NewTimeSeries([]float64{0, 10}, []float64{0, 10}, 20)
		require.NoError(t, err)
		assert.InDelta(t, 5., ts.At(15), 1.e-12)
		assert.InDelta(t, 5., ts.At(35), 1.e-12)
		assert.InDelta(t, 5., ts.At(-5), 1.e-12)
		assert.InDelta(t, 5., ts.Mean(), 1.e-12)
	}
	{
		ts, err := NewTimeSeries([]float64{3}, []float64{7}, 0)
		require.NoError(t, err)
		assert.Equal(t, 7., ts.At(100))
	}
	{
		_, err := NewTimeSeries([]float64{0, 0}, []float64{1, 2}, 0)
		assert.ErrorIs(t, err, types.ErrConfiguration)
		_, err = NewTimeSeries([]float64{0, 1}, []float64{1}, 0)
		assert.ErrorIs(t, err, types.ErrConfiguration)
		_, err = NewTimeSeries([]float64{0, 30}, []float64{1, 2}, 20)
		assert.ErrorIs(t, err, types.ErrConfiguration)
	}
	{
		s := Constant(4)
		assert.Equal(t, 4., s.At(1.e9))
		assert.Equal(t, 4., s.Mean())
		assert.Equal(t, 0., s.Amplitude())
	}
}

func TestConvection(t *testing.T) {
	{ // Vertical natural convection
		assert.InDelta(t, 1.31*2, NaturalConvection(8, math.Pi/2), 1.e-9)
		assert.InDelta(t, 1.31*2, NaturalConvection(-8, math.Pi/2), 1.e-9)
	}
	{ // Warm floor facing up is enhanced, cold floor facing up is reduced
		up := NaturalConvection(8, 0)
		assert.InDelta(t, 9.482*2/(7.238-1), up, 1.e-9)
		down := NaturalConvection(-8, 0)
		assert.InDelta(t, 1.810*2/(1.382+1), down, 1.e-9)
		assert.Greater(t, up, down)
		assert.InDelta(t, up, NaturalConvection(-8, math.Pi), 1.e-9)
	}
	{ // Forced blend is continuous and reduces to natural at zero wind
		hn := NaturalConvection(5, 0)
		assert.InDelta(t, hn, ConvectionCoefficient(5, 0, 0, RoughnessRough, true, 0), 1.e-12)
		assert.InDelta(t, hn, ConvectionCoefficient(5, 0, 10, RoughnessRough, false, 0), 1.e-12)
		prev := hn
		for v := 0.1; v < 20; v += 0.1 {
			h := ConvectionCoefficient(5, 0, v, RoughnessRough, true, 0)
			assert.Greater(t, h, prev)
			assert.Less(t, h-prev, 1.)
			prev = h
		}
		// Strong wind: h -> hn + Rf*(hf - hn) approximately
		hf := 3.26 * math.Pow(10, 0.89)
		assert.InDelta(t, hn+RoughnessRough*(math.Sqrt(hn*hn+hf*hf)-hn),
			ConvectionCoefficient(5, 0, 10, RoughnessRough, true, 0), 1.e-12)
	}
	{
		hr := RadiationCoefficient(0.9, 20, 20)
		T := 20 + CelsiusToKelvin
		assert.InDelta(t, 4*0.9*StefanBoltzmann*T*T*T, hr, 1.e-9)
	}
	{
		w := DefaultWindProfile()
		assert.InDelta(t, math.Pow(27, 0.14)*math.Pow(10./370, 0.22)*5, w.LocalWindSpeed(5), 1.e-12)
		// Matching terrain at the station height leaves the speed unchanged
		w.LocalAlpha = 0.14
		w.LocalDelta = 270
		assert.InDelta(t, 5., w.LocalWindSpeed(5), 1.e-12)
	}
}

func TestSolar(t *testing.T) {
	// Sun at zenith on a horizontal surface
	assert.InDelta(t, 900., IncidentSolar(800, 100, math.Pi/2, 0, 0.2, 0, 0), 1.e-9)
	// Sun below the horizon leaves diffuse only
	assert.InDelta(t, 100., IncidentSolar(800, 100, -0.1, 0, 0.2, 0, 0), 1.e-9)
	// South facing wall, sun due south at 30 degrees altitude
	var (
		alt  = math.Pi / 6
		wall = IncidentSolar(800, 100, alt, math.Pi, 0.2, math.Pi/2, math.Pi)
	)
	expected := 800*math.Cos(alt) + 100*0.5 + (800*math.Sin(alt)+100)*0.2*0.5
	assert.InDelta(t, expected, wall, 1.e-9)
	// North facing wall sees no beam
	north := IncidentSolar(800, 100, alt, math.Pi, 0.2, math.Pi/2, 0)
	assert.InDelta(t, 100*0.5+(800*math.Sin(alt)+100)*0.2*0.5, north, 1.e-9)
}

func TestKusuda(t *testing.T) {
	var (
		P     = SecondsPerYear
		alpha = 5.e-7
		tMin  = 30 * 86400.
	)
	// Surface follows the forcing exactly
	assert.InDelta(t, 0., KusudaTemperature(0, tMin, 10, 10, tMin, alpha, P), 1.e-9)
	assert.InDelta(t, 20., KusudaTemperature(0, tMin+P/2, 10, 10, tMin, alpha, P), 1.e-9)
	// Deep ground is the mean
	assert.InDelta(t, 10., KusudaTemperature(40, 0, 10, 10, tMin, alpha, P), 1.e-6)
	// Amplitude decays with depth
	var maxT float64
	for d := 0.; d < 365; d++ {
		maxT = math.Max(maxT, KusudaTemperature(2, d*86400, 10, 10, tMin, alpha, P))
	}
	assert.Less(t, maxT, 20.)
	assert.Greater(t, maxT, 10.)
}

func TestResolve(t *testing.T) {
	out, err := NewTimeSeries([]float64{0, 3600}, []float64{-5, 5}, 0)
	require.NoError(t, err)
	bc := NewBoundaryConditions()
	bc.OutdoorTemperature = Series(out)
	bc.WindSpeed = Constant(4)
	require.NoError(t, bc.Validate())
	c := bc.Resolve(1800)
	assert.InDelta(t, 0., c.OutdoorTemperature, 1.e-12)
	assert.Equal(t, 22., c.IndoorTemperature)
	assert.Equal(t, c.OutdoorTemperature, c.SkyTemperature)
	assert.Equal(t, 10., c.DeepGroundTemperature)
	assert.InDelta(t, bc.Wind.LocalWindSpeed(4), c.LocalWindSpeed, 1.e-12)
	assert.Equal(t, 22., c.AirTemperature(false))
	assert.Equal(t, c, bc.Resolve(1800))

	sky := Constant(-20)
	bc.SkyTemperature = &sky
	assert.Equal(t, -20., bc.Resolve(0).SkyTemperature)

	bc.ConvectionMethod = types.CONV_Constant
	c = bc.Resolve(0)
	assert.Equal(t, 25., c.ConvectionCoefficient(10, 0, true, 0))
	assert.Equal(t, 3., c.ConvectionCoefficient(10, 0, false, 0))

	bc.DeepGround = types.DG_Auto
	assert.ErrorIs(t, bc.Validate(), types.ErrConfiguration)
	bc.SoilDiffusivity = 5.e-7
	bc.DeepGroundDepth = 40
	require.NoError(t, bc.Validate())
	assert.InDelta(t, 0., bc.Resolve(0).DeepGroundTemperature, 1.e-3)

	bc.SurfaceRoughness = 0.5
	assert.ErrorIs(t, bc.Validate(), types.ErrConfiguration)
}
