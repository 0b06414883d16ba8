package readfiles

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/gokiva/boundary"
	"github.com/notargets/gokiva/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weatherFile = []byte(`hour,outdoor_temperature,wind_speed,solar_altitude
0,-5,2,0
6,0,4,30
12,10,6,90
18,5,4,0
`)

func TestParseWeather(t *testing.T) {
	w, err := ParseWeather(weatherFile)
	require.NoError(t, err)
	require.Len(t, w.Records, 4)
	assert.True(t, w.Has(ColOutdoorTemperature))
	assert.True(t, w.Has(ColWindSpeed))
	assert.False(t, w.Has(ColIndoorTemperature))
	{ // Periodic over a day
		ts, err := w.Series(ColOutdoorTemperature, 86400)
		require.NoError(t, err)
		assert.InDelta(t, 10., ts.At(12*3600), 1.e-12)
		assert.InDelta(t, 5., ts.At(9*3600), 1.e-12)
		assert.InDelta(t, 0., ts.At(21*3600), 1.e-12)
		assert.InDelta(t, ts.At(3600), ts.At(25*3600), 1.e-12)
	}
	{ // Clamped when the data covers the period
		ts, err := w.Series(ColWindSpeed, 3600)
		require.NoError(t, err)
		assert.InDelta(t, 4., ts.At(100*3600), 1.e-12)
		assert.InDelta(t, 2., ts.At(-3600), 1.e-12)
	}
	{ // Degrees become radians
		ts, err := w.Series(ColSolarAltitude, boundary.SecondsPerYear)
		require.NoError(t, err)
		assert.InDelta(t, math.Pi/2, ts.At(12*3600), 1.e-12)
	}
	{
		_, err := w.Series(ColIndoorTemperature, boundary.SecondsPerYear)
		assert.ErrorIs(t, err, types.ErrConfiguration)
		_, err = w.Series("humidity", boundary.SecondsPerYear)
		assert.ErrorIs(t, err, types.ErrConfiguration)
	}
}

func TestParseWeatherErrors(t *testing.T) {
	{
		_, err := ParseWeather([]byte("outdoor_temperature\n10\n"))
		assert.ErrorIs(t, err, types.ErrConfiguration)
	}
	{
		_, err := ParseWeather([]byte("hour,outdoor_temperature\n"))
		assert.ErrorIs(t, err, types.ErrConfiguration)
	}
	{
		_, err := ParseWeather([]byte("hour,outdoor_temperature\n0,1\n0,2\n"))
		assert.ErrorIs(t, err, types.ErrConfiguration)
	}
}

func TestReadWeather(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "weather.csv")
	require.NoError(t, os.WriteFile(filename, weatherFile, 0o644))
	w, err := ReadWeather(filename, false)
	require.NoError(t, err)
	assert.Len(t, w.Records, 4)
	assert.Equal(t, 18., w.Records[3].Hour)
	_, err = ReadWeather(filepath.Join(t.TempDir(), "missing.csv"), false)
	assert.Error(t, err)
}
