// Package sunpos computes the sun's position for a given instant and
// location. The math follows the standard suncalc formulation (Astronomy
// Answers, Meeus-derived), computed in double precision.
package sunpos

import (
	"math"
	"time"
)

const (
	rad      = math.Pi / 180
	j1970    = 2440588
	j2000    = 2451545
	msPerDay = 1000 * 60 * 60 * 24

	// Obliquity of the ecliptic.
	e = rad * 23.4397
)

// Position returns the sun's azimuth and altitude in radians for the given
// instant and observer location. Azimuth is measured from south, positive
// westward; altitude is positive above the horizon.
func Position(t time.Time, lat, lon float64) (azimuth, altitude float64) {
	lw := rad * -lon
	phi := rad * lat
	d := toDays(t)

	dec, ra := sunCoords(d)
	h := siderealTime(d, lw) - ra

	azimuth = math.Atan2(math.Sin(h), math.Cos(h)*math.Sin(phi)-math.Tan(dec)*math.Cos(phi))
	altitude = math.Asin(math.Sin(phi)*math.Sin(dec) + math.Cos(phi)*math.Cos(dec)*math.Cos(h))
	return azimuth, altitude
}

func toDays(t time.Time) float64 {
	ms := float64(t.UnixMilli())
	return ms/msPerDay - 0.5 + j1970 - j2000
}

func solarMeanAnomaly(d float64) float64 {
	return rad * (357.5291 + 0.98560028*d)
}

func eclipticLongitude(m float64) float64 {
	// Equation of center plus perihelion of the Earth.
	c := rad * (1.9148*math.Sin(m) + 0.02*math.Sin(2*m) + 0.0003*math.Sin(3*m))
	p := rad * 102.9372
	return m + c + p + math.Pi
}

func sunCoords(d float64) (dec, ra float64) {
	m := solarMeanAnomaly(d)
	l := eclipticLongitude(m)
	dec = math.Asin(math.Sin(e) * math.Sin(l))
	ra = math.Atan2(math.Sin(l)*math.Cos(e), math.Cos(l))
	return dec, ra
}

func siderealTime(d, lw float64) float64 {
	return rad*(280.16+360.9856235*d) - lw
}
