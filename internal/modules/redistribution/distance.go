// Package redistribution matches surplus stock to deficits and manages the approval of transfers.
package redistribution

import "math"

// EarthRadiusKm is the sphere radius used for great-circle distance
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points given in degrees.
// NaN coordinates yield NaN.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	a := sinLat*sinLat + math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
