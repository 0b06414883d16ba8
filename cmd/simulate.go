/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/notargets/gokiva/InputParameters"
	"github.com/notargets/gokiva/ground"
	"github.com/notargets/gokiva/readfiles"
	"github.com/notargets/gokiva/report"
	"github.com/notargets/gokiva/utils"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Simulation struct {
	InputFile   string
	WeatherFile string
	OutputFile  string
	Profile     bool
	Verbose     bool
}

const exampleFile = `
########################################
Title: "Slab on Grade"
Simulation:
  Days: 365
  Timestep: 3600 # seconds
  WeatherFile: weather.csv # columns hour, outdoor_temperature, ...
Foundation:
  Dimensions: 2
  HalfWidth: 5
  Depth: 0 # slab top below grade
Numerics:
  Scheme: adi # ade, explicit, implicit, crank-nicolson, steady-state
  Initialization: steady-state # kusuda, constant
########################################
`

// SimulateCmd represents the simulate command
var SimulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a ground heat transfer simulation from a YAML input file",
	Long: `Run a ground heat transfer simulation from a YAML input file, writing one CSV row of
surface heat fluxes and temperatures per timestep`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		sim := &Simulation{
			InputFile:   viper.GetString("input"),
			WeatherFile: viper.GetString("weather"),
			OutputFile:  viper.GetString("output"),
			Profile:     viper.GetBool("profile"),
			Verbose:     viper.GetBool("verbose"),
		}
		ip, err := processInput(sim)
		if err != nil {
			return
		}
		if sim.Profile {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		var rw *report.Writer
		if len(sim.OutputFile) == 0 {
			rw = report.NewWriter(cmd.OutOrStdout())
		} else if rw, err = report.Create(sim.OutputFile); err != nil {
			return
		}
		defer func() {
			if cerr := rw.Close(); err == nil {
				err = cerr
			}
		}()
		return RunSimulation(sim, ip, rw, newLogger(sim.Verbose))
	},
}

func init() {
	rootCmd.AddCommand(SimulateCmd)
	SimulateCmd.Flags().StringP("inputFile", "I", "", "YAML file for input parameters like:\n\t- foundation dimensions and materials\n\t- numerical scheme")
	SimulateCmd.Flags().StringP("weatherFile", "W", "", "CSV weather file, overrides the input file's WeatherFile")
	SimulateCmd.Flags().StringP("outputFile", "o", "", "CSV output file, stdout when empty")
	SimulateCmd.Flags().BoolP("profile", "p", false, "write a CPU profile to the current directory")
	_ = viper.BindPFlag("input", SimulateCmd.Flags().Lookup("inputFile"))
	_ = viper.BindPFlag("weather", SimulateCmd.Flags().Lookup("weatherFile"))
	_ = viper.BindPFlag("output", SimulateCmd.Flags().Lookup("outputFile"))
	_ = viper.BindPFlag("profile", SimulateCmd.Flags().Lookup("profile"))
}

// processInput reads the input file, filling weather and output files from it where the
// command line left them empty.
func processInput(sim *Simulation) (ip *InputParameters.InputParameters, err error) {
	if len(sim.InputFile) == 0 {
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputFile) in YAML format")
	}
	var data []byte
	if data, err = os.ReadFile(sim.InputFile); err != nil {
		return
	}
	ip = InputParameters.NewInputParameters()
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("input file %s: %w", sim.InputFile, err)
	}
	if len(sim.WeatherFile) == 0 {
		sim.WeatherFile = ip.Simulation.WeatherFile
	}
	if len(sim.OutputFile) == 0 {
		sim.OutputFile = ip.Simulation.OutputFile
	}
	if sim.Verbose {
		ip.Print()
	}
	return
}

// RunSimulation initializes the ground up to the start hour, then steps through the simulated
// days writing a record after every step.
func RunSimulation(sim *Simulation, ip *InputParameters.InputParameters, rw *report.Writer, log *logrus.Logger) (err error) {
	var (
		s       ground.Settings
		weather *readfiles.Weather
		g       *ground.Ground
		start   = time.Now()
	)
	f, err := ip.BuildFoundation()
	if err != nil {
		return
	}
	if s, err = ip.Settings(); err != nil {
		return
	}
	if len(sim.WeatherFile) != 0 {
		if weather, err = readfiles.ReadWeather(sim.WeatherFile, sim.Verbose); err != nil {
			return
		}
	}
	bcs, err := ip.BoundaryConditions(weather)
	if err != nil {
		return
	}
	if g, err = ground.NewGround(f, s, ground.WithLogger(log)); err != nil {
		return
	}
	defer g.Close()
	var (
		t0    = ip.Simulation.StartHour * 3600
		dt    = ip.Simulation.Timestep
		steps = int(math.Ceil(ip.Simulation.Days * 86400 / dt))
	)
	if err = g.Initialize(bcs, t0); err != nil {
		return
	}
	for n := 1; n <= steps; n++ {
		if err = g.Calculate(bcs.Resolve(t0+float64(n)*dt), dt); err != nil {
			return
		}
		if err = rw.Write(report.NewRecord(g)); err != nil {
			return
		}
	}
	log.WithFields(logrus.Fields{
		"title":   ip.Title,
		"steps":   steps,
		"cells":   g.Domain.NumCells(),
		"elapsed": time.Since(start).String(),
		"memory":  utils.GetMemUsage(),
	}).Info("simulation complete")
	return
}
