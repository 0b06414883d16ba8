package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gokiva/InputParameters"
	"github.com/notargets/gokiva/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columnInput = []byte(`
Title: Bare Ground
Simulation:
  StartHour: 24
  Days: 0.25
  Timestep: 3600
  OutputFile: column.csv
Foundation:
  Dimensions: 1
  DeepGroundDepth: 5
Numerics:
  Scheme: implicit
  Initialization: constant
  InitialTemperature: 15
  AccelPeriods: 0
  WarmupDays: 0
`)

func TestProcessInput(t *testing.T) {
	{
		_, err := processInput(&Simulation{})
		assert.Error(t, err)
	}
	{
		_, err := processInput(&Simulation{InputFile: filepath.Join(t.TempDir(), "missing.yaml")})
		assert.Error(t, err)
	}
	filename := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(filename, columnInput, 0o644))
	{
		sim := &Simulation{InputFile: filename}
		ip, err := processInput(sim)
		require.NoError(t, err)
		assert.Equal(t, "Bare Ground", ip.Title)
		assert.Equal(t, 1, ip.Foundation.Dimensions)
		assert.Equal(t, "column.csv", sim.OutputFile)
		assert.Equal(t, "", sim.WeatherFile)
	}
	{ // Command line wins over the input file
		sim := &Simulation{InputFile: filename, OutputFile: "other.csv"}
		_, err := processInput(sim)
		require.NoError(t, err)
		assert.Equal(t, "other.csv", sim.OutputFile)
	}
}

func TestRunSimulation(t *testing.T) {
	{ // Bare ground column driven by a weather file
		var (
			dir     = t.TempDir()
			weather = filepath.Join(dir, "weather.csv")
			buf     bytes.Buffer
		)
		require.NoError(t, os.WriteFile(weather, []byte("hour,outdoor_temperature\n0,0\n24,0\n30,6\n"), 0o644))
		ip := InputParameters.NewInputParameters()
		require.NoError(t, ip.Parse(columnInput))
		sim := &Simulation{WeatherFile: weather}
		rw := report.NewWriter(&buf)
		require.NoError(t, RunSimulation(sim, ip, rw, newLogger(false)))
		assert.Equal(t, 6, rw.Rows)
		recs, err := report.ReadRecords(strings.NewReader(buf.String()))
		require.NoError(t, err)
		require.Len(t, recs, 6)
		assert.InDelta(t, 25., recs[0].Hour, 1.e-9)
		assert.InDelta(t, 30., recs[5].Hour, 1.e-9)
		assert.InDelta(t, 6., recs[5].OutdoorTemperature, 1.e-9)
		assert.Less(t, recs[0].GradeFlux, 0.)
	}
	{ // Small slab on grade with ADI
		var buf bytes.Buffer
		ip := InputParameters.NewInputParameters()
		ip.Simulation.Days = 0.125
		ip.Foundation.HalfWidth = 2
		ip.Foundation.FarFieldWidth, ip.Foundation.DeepGroundDepth = 3, 3
		ip.Mesh.MinCellDim = 0.1
		ip.Mesh.MaxNearGrowthCoeff, ip.Mesh.MaxDepthGrowthCoeff = 2, 2
		ip.Mesh.MaxInteriorGrowthCoeff, ip.Mesh.MaxExteriorGrowthCoeff = 2, 2
		ip.Numerics.Initialization = "constant"
		ip.Numerics.AccelPeriods, ip.Numerics.WarmupDays = 0, 0
		rw := report.NewWriter(&buf)
		require.NoError(t, RunSimulation(&Simulation{}, ip, rw, newLogger(false)))
		recs, err := report.ReadRecords(strings.NewReader(buf.String()))
		require.NoError(t, err)
		require.Len(t, recs, 3)
		// Indoor air at 22 C heats a 15 C slab
		assert.Greater(t, recs[2].SlabFlux, 0.)
		assert.Greater(t, recs[2].FoundationRate, 0.)
	}
	{
		ip := InputParameters.NewInputParameters()
		ip.Numerics.Scheme = "leapfrog"
		assert.Error(t, RunSimulation(&Simulation{}, ip, report.NewWriter(&bytes.Buffer{}), newLogger(false)))
	}
}

func TestSimulateCommand(t *testing.T) {
	var (
		dir    = t.TempDir()
		input  = filepath.Join(dir, "input.yaml")
		output = filepath.Join(dir, "out.csv")
	)
	require.NoError(t, os.WriteFile(input, columnInput, 0o644))
	{ // Output is flushed and closed when the command returns
		rootCmd.SetArgs([]string{"simulate", "-I", input, "-o", output})
		require.NoError(t, rootCmd.Execute())
		f, err := os.Open(output)
		require.NoError(t, err)
		defer f.Close()
		recs, err := report.ReadRecords(f)
		require.NoError(t, err)
		assert.Len(t, recs, 6)
	}
	{ // Failures come back as errors instead of exiting
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad,
			[]byte(strings.Replace(string(columnInput), "Scheme: implicit", "Scheme: leapfrog", 1)), 0o644))
		rootCmd.SetArgs([]string{"simulate", "-I", bad, "-o", filepath.Join(dir, "bad.csv")})
		assert.Error(t, rootCmd.Execute())
	}
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "gokiva "+Version+"\n", buf.String())
}
