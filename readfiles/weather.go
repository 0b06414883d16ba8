package readfiles

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/notargets/gokiva/boundary"
	"github.com/notargets/gokiva/types"
)

// Weather file column names
const (
	ColHour               = "hour" // Hours from the start of the year
	ColOutdoorTemperature = "outdoor_temperature"
	ColIndoorTemperature  = "indoor_temperature"
	ColWindSpeed          = "wind_speed"
	ColSkyTemperature     = "sky_temperature"
	ColDirectNormal       = "direct_normal"
	ColDiffuseHorizontal  = "diffuse_horizontal"
	ColSolarAltitude      = "solar_altitude" // Degrees
	ColSolarAzimuth       = "solar_azimuth"  // Degrees clockwise from north
)

type WeatherRecord struct {
	Hour               float64 `csv:"hour"`
	OutdoorTemperature float64 `csv:"outdoor_temperature"`
	IndoorTemperature  float64 `csv:"indoor_temperature"`
	WindSpeed          float64 `csv:"wind_speed"`
	SkyTemperature     float64 `csv:"sky_temperature"`
	DirectNormal       float64 `csv:"direct_normal"`
	DiffuseHorizontal  float64 `csv:"diffuse_horizontal"`
	SolarAltitude      float64 `csv:"solar_altitude"`
	SolarAzimuth       float64 `csv:"solar_azimuth"`
}

var columnValue = map[string]func(r *WeatherRecord) float64{
	ColOutdoorTemperature: func(r *WeatherRecord) float64 { return r.OutdoorTemperature },
	ColIndoorTemperature:  func(r *WeatherRecord) float64 { return r.IndoorTemperature },
	ColWindSpeed:          func(r *WeatherRecord) float64 { return r.WindSpeed },
	ColSkyTemperature:     func(r *WeatherRecord) float64 { return r.SkyTemperature },
	ColDirectNormal:       func(r *WeatherRecord) float64 { return r.DirectNormal },
	ColDiffuseHorizontal:  func(r *WeatherRecord) float64 { return r.DiffuseHorizontal },
	ColSolarAltitude:      func(r *WeatherRecord) float64 { return r.SolarAltitude * math.Pi / 180 },
	ColSolarAzimuth:       func(r *WeatherRecord) float64 { return r.SolarAzimuth * math.Pi / 180 },
}

// Weather holds the rows of a weather CSV file and which of the known columns it carries.
type Weather struct {
	Records []*WeatherRecord
	columns map[string]bool
}

func ReadWeather(filename string, verbose bool) (w *Weather, err error) {
	var data []byte
	if verbose {
		fmt.Printf("Reading weather file named: %s\n", filename)
	}
	if data, err = os.ReadFile(filename); err != nil {
		return nil, fmt.Errorf("unable to read weather file %s: %w", filename, err)
	}
	if w, err = ParseWeather(data); err != nil {
		return nil, fmt.Errorf("weather file %s: %w", filename, err)
	}
	if verbose {
		fmt.Printf("Read %d weather records\n", len(w.Records))
	}
	return
}

func ParseWeather(data []byte) (w *Weather, err error) {
	var rows []map[string]string
	if rows, err = gocsv.CSVToMaps(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: weather data has no records", types.ErrConfiguration)
	}
	w = &Weather{columns: make(map[string]bool)}
	for name := range rows[0] {
		w.columns[name] = true
	}
	if !w.Has(ColHour) {
		return nil, fmt.Errorf("%w: weather data has no %q column", types.ErrConfiguration, ColHour)
	}
	if err = gocsv.UnmarshalBytes(data, &w.Records); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	for i := 1; i < len(w.Records); i++ {
		if !(w.Records[i].Hour > w.Records[i-1].Hour) {
			return nil, fmt.Errorf("%w: weather hours must increase, %g follows %g at record %d",
				types.ErrConfiguration, w.Records[i].Hour, w.Records[i-1].Hour, i)
		}
	}
	return
}

func (w *Weather) Has(column string) bool { return w.columns[column] }

// Series is one column as a time series in seconds, angles in radians. Data spanning less than
// the period repeats with it, longer data is clamped at its ends.
func (w *Weather) Series(column string, period float64) (ts *boundary.TimeSeries, err error) {
	value, ok := columnValue[column]
	if !ok || !w.Has(column) {
		return nil, fmt.Errorf("%w: weather data has no %q column", types.ErrConfiguration, column)
	}
	var (
		n     = len(w.Records)
		times = make([]float64, n)
		vals  = make([]float64, n)
	)
	for i, r := range w.Records {
		times[i], vals[i] = r.Hour*3600, value(r)
	}
	if times[n-1]-times[0] >= period {
		period = 0
	}
	return boundary.NewTimeSeries(times, vals, period)
}
