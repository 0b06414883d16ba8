package boundary

import "math"

const (
	StefanBoltzmann = 5.6704e-8 // W/m2-K4
	CelsiusToKelvin = 273.15

	// DOE-2 forced convection fit, h_forced = a*V^b
	doe2A = 3.26
	doe2B = 0.89
)

// Roughness multipliers Rf for the DOE-2 blend
const (
	RoughnessVeryRough    = 2.17
	RoughnessRough        = 1.67
	RoughnessMediumRough  = 1.52
	RoughnessMediumSmooth = 1.13
	RoughnessSmooth       = 1.11
	RoughnessVerySmooth   = 1.00
)

// NaturalConvection is the Walton correlation for a surface with the given tilt (radians between
// the outward normal and the zenith) and surface minus air temperature dT.
func NaturalConvection(dT, tilt float64) (h float64) {
	var (
		cosTilt = math.Cos(tilt)
		cubeRt  = math.Cbrt(math.Abs(dT))
	)
	switch {
	case math.Abs(cosTilt) < 1.e-6 || dT == 0:
		h = 1.31 * cubeRt
	case dT*cosTilt > 0: // Warm facing up or cool facing down
		h = 9.482 * cubeRt / (7.238 - math.Abs(cosTilt))
	default:
		h = 1.810 * cubeRt / (1.382 + math.Abs(cosTilt))
	}
	return
}

// ConvectionCoefficient blends natural and forced convection continuously for exterior surfaces.
// Interior surfaces see natural convection only.
func ConvectionCoefficient(Tsurf, Tamb, Vair, roughness float64, isExterior bool, tilt float64) (h float64) {
	hn := NaturalConvection(Tsurf-Tamb, tilt)
	if !isExterior {
		return hn
	}
	hf := doe2A * math.Pow(math.Max(Vair, 0), doe2B)
	h = hn + roughness*(math.Sqrt(hn*hn+hf*hf)-hn)
	return
}

// RadiationCoefficient linearizes exchange between a surface at Ts and surroundings at Tr (C).
func RadiationCoefficient(emissivity, Ts, Tr float64) float64 {
	ts, tr := Ts+CelsiusToKelvin, Tr+CelsiusToKelvin
	return emissivity * StefanBoltzmann * (ts*ts + tr*tr) * (ts + tr)
}

type WindProfile struct {
	StationHeight float64 // m
	StationDelta  float64 // Boundary layer thickness at the weather station, m
	StationAlpha  float64
	LocalDelta    float64
	LocalAlpha    float64
	Height        float64 // Height at which local wind is evaluated, m
}

func DefaultWindProfile() WindProfile {
	return WindProfile{
		StationHeight: 10,
		StationDelta:  270,
		StationAlpha:  0.14,
		LocalDelta:    370,
		LocalAlpha:    0.22,
		Height:        10,
	}
}

// LocalWindSpeed corrects a weather station wind speed for terrain and height.
func (w WindProfile) LocalWindSpeed(V float64) float64 {
	return V * math.Pow(w.StationDelta/w.StationHeight, w.StationAlpha) *
		math.Pow(w.Height/w.LocalDelta, w.LocalAlpha)
}

// IncidentSolar on a surface from beam, isotropic sky diffuse and ground reflected components.
// Angles are radians; azimuths are measured clockwise from north.
func IncidentSolar(directNormal, diffuseHorizontal, altitude, solarAzimuth, albedo, tilt, azimuth float64) (q float64) {
	var (
		cosTilt = math.Cos(tilt)
		sinAlt  = math.Sin(altitude)
	)
	if altitude > 0 {
		cosInc := sinAlt*cosTilt + math.Cos(altitude)*math.Sin(tilt)*math.Cos(solarAzimuth-azimuth)
		q += directNormal * math.Max(cosInc, 0)
	} else {
		sinAlt = 0
	}
	q += diffuseHorizontal * (1 + cosTilt) / 2
	q += (directNormal*sinAlt + diffuseHorizontal) * albedo * (1 - cosTilt) / 2
	return
}

// KusudaTemperature is the undisturbed ground temperature at depth z (m, positive down) and time t
// (s) for a surface temperature with the given mean, amplitude and time of minimum over period P.
func KusudaTemperature(z, t, mean, amplitude, tMin, diffusivity, P float64) float64 {
	if amplitude == 0 || P <= 0 {
		return mean
	}
	var (
		damp = z * math.Sqrt(math.Pi/(diffusivity*P))
	)
	return mean - amplitude*math.Exp(-damp)*math.Cos(2*math.Pi/P*(t-tMin)-damp)
}
