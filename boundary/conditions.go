package boundary

import (
	"fmt"

	"github.com/notargets/gokiva/types"
)

const SecondsPerYear = 365 * 24 * 3600.

// BoundaryConditions is the external forcing configuration. Resolve is a pure function of time.
type BoundaryConditions struct {
	OutdoorTemperature Source  // C
	IndoorTemperature  Source  // C
	WindSpeed          Source  // m/s at the weather station
	SkyTemperature     *Source // C, outdoor temperature when nil
	DirectNormal       Source  // W/m2
	DiffuseHorizontal  Source  // W/m2
	SolarAltitude      Source  // radians
	SolarAzimuth       Source  // radians clockwise from north
	GroundAlbedo       float64

	Wind WindProfile

	ConvectionMethod        types.ConvectionMethod
	InteriorConvectionCoeff float64 // W/m2-K, constant method
	ExteriorConvectionCoeff float64
	SurfaceRoughness        float64 // DOE-2 roughness multiplier

	DeepGround            types.DeepGroundBoundary
	DeepGroundTemperature float64 // C, constant temperature method
	// Depth and soil diffusivity for the automatic deep-ground temperature
	DeepGroundDepth float64
	SoilDiffusivity float64
	Period          float64 // Annual cycle used by Kusuda, s
}

func NewBoundaryConditions() *BoundaryConditions {
	return &BoundaryConditions{
		OutdoorTemperature:      Constant(10),
		IndoorTemperature:       Constant(22),
		GroundAlbedo:            0.2,
		Wind:                    DefaultWindProfile(),
		ConvectionMethod:        types.CONV_Auto,
		InteriorConvectionCoeff: 3.,
		ExteriorConvectionCoeff: 25.,
		SurfaceRoughness:        RoughnessRough,
		DeepGround:              types.DG_ZeroFlux,
		DeepGroundTemperature:   10,
		Period:                  SecondsPerYear,
	}
}

func (bc *BoundaryConditions) Validate() (err error) {
	if bc.ConvectionMethod == types.CONV_Constant && (bc.InteriorConvectionCoeff < 0 || bc.ExteriorConvectionCoeff < 0) {
		return fmt.Errorf("%w: constant convection coefficients must not be negative", types.ErrConfiguration)
	}
	if bc.SurfaceRoughness < 1 {
		return fmt.Errorf("%w: surface roughness multiplier %g is below 1", types.ErrConfiguration, bc.SurfaceRoughness)
	}
	if bc.DeepGround == types.DG_Auto && !(bc.SoilDiffusivity > 0 && bc.Period > 0) {
		return fmt.Errorf("%w: automatic deep ground temperature needs soil diffusivity and period", types.ErrConfiguration)
	}
	w := bc.Wind
	if !(w.StationHeight > 0 && w.StationDelta > 0 && w.LocalDelta > 0 && w.Height > 0) {
		return fmt.Errorf("%w: wind profile heights must be positive", types.ErrConfiguration)
	}
	return
}

// Conditions are the boundary conditions resolved at one instant.
type Conditions struct {
	Time                  float64
	OutdoorTemperature    float64
	IndoorTemperature     float64
	LocalWindSpeed        float64
	SkyTemperature        float64
	DirectNormal          float64
	DiffuseHorizontal     float64
	SolarAltitude         float64
	SolarAzimuth          float64
	GroundAlbedo          float64
	DeepGround            types.DeepGroundBoundary
	DeepGroundTemperature float64

	ConvectionMethod        types.ConvectionMethod
	InteriorConvectionCoeff float64
	ExteriorConvectionCoeff float64
	SurfaceRoughness        float64
}

func (bc *BoundaryConditions) Resolve(t float64) (c Conditions) {
	c = Conditions{
		Time:                    t,
		OutdoorTemperature:      bc.OutdoorTemperature.At(t),
		IndoorTemperature:       bc.IndoorTemperature.At(t),
		LocalWindSpeed:          bc.Wind.LocalWindSpeed(bc.WindSpeed.At(t)),
		DirectNormal:            bc.DirectNormal.At(t),
		DiffuseHorizontal:       bc.DiffuseHorizontal.At(t),
		SolarAltitude:           bc.SolarAltitude.At(t),
		SolarAzimuth:            bc.SolarAzimuth.At(t),
		GroundAlbedo:            bc.GroundAlbedo,
		DeepGround:              bc.DeepGround,
		ConvectionMethod:        bc.ConvectionMethod,
		InteriorConvectionCoeff: bc.InteriorConvectionCoeff,
		ExteriorConvectionCoeff: bc.ExteriorConvectionCoeff,
		SurfaceRoughness:        bc.SurfaceRoughness,
	}
	c.SkyTemperature = c.OutdoorTemperature
	if bc.SkyTemperature != nil {
		c.SkyTemperature = bc.SkyTemperature.At(t)
	}
	switch bc.DeepGround {
	case types.DG_Auto:
		c.DeepGroundTemperature = bc.GroundTemperature(bc.DeepGroundDepth, t)
	default:
		c.DeepGroundTemperature = bc.DeepGroundTemperature
	}
	return
}

// GroundTemperature is the undisturbed (Kusuda) soil temperature at depth z driven by the outdoor
// temperature's mean, amplitude and phase.
func (bc *BoundaryConditions) GroundTemperature(z, t float64) float64 {
	o := bc.OutdoorTemperature
	return KusudaTemperature(z, t, o.Mean(), o.Amplitude(), o.PhaseOfMinimum(), bc.SoilDiffusivity, bc.Period)
}

// ConvectionCoefficient for a surface at Tsurf facing air at Tamb.
func (c Conditions) ConvectionCoefficient(Tsurf, Tamb float64, isExterior bool, tilt float64) float64 {
	if c.ConvectionMethod == types.CONV_Constant {
		if isExterior {
			return c.ExteriorConvectionCoeff
		}
		return c.InteriorConvectionCoeff
	}
	return ConvectionCoefficient(Tsurf, Tamb, c.LocalWindSpeed, c.SurfaceRoughness, isExterior, tilt)
}

// IncidentSolar on a surface, W/m2.
func (c Conditions) IncidentSolar(tilt, azimuth float64) float64 {
	return IncidentSolar(c.DirectNormal, c.DiffuseHorizontal, c.SolarAltitude, c.SolarAzimuth,
		c.GroundAlbedo, tilt, azimuth)
}

// AirTemperature for interior or exterior surfaces.
func (c Conditions) AirTemperature(isExterior bool) float64 {
	if isExterior {
		return c.OutdoorTemperature
	}
	return c.IndoorTemperature
}
