package geo

import "math"

// EarthRadiusKm is the Earth mean radius in kilometers.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in km between two points
// (lat/lng in degrees). The acos argument is clamped to [-1, 1]: floating
// point overshoot at near-zero or near-antipodal separations would otherwise
// push it out of the acos domain and produce NaN.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	φ1, φ2 := rad(lat1), rad(lat2)
	Δλ := rad(lng2 - lng1)
	x := math.Cos(φ1)*math.Cos(φ2)*math.Cos(Δλ) + math.Sin(φ1)*math.Sin(φ2)
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return EarthRadiusKm * math.Acos(x)
}
