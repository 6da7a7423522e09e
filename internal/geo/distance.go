// Package geo resolves building names to coordinates and measures distances.
package geo

import "math"

const earthRadiusKm = 6371.0

// Distance approximates the distance in kilometres between two points with the
// equirectangular projection. Accurate enough at city scale.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	lambda1 := toRadians(lng1)
	lambda2 := toRadians(lng2)

	x := (lambda2 - lambda1) * math.Cos((phi1+phi2)/2)
	y := phi2 - phi1

	return math.Sqrt(x*x+y*y) * earthRadiusKm
}

// Round2 rounds a distance to two decimals for presentation.
func Round2(km float64) float64 {
	return math.Round(km*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
