package geo

import (
	"math"

	"tripdash/internal/model"
)

// EarthRadiusMiles is the mean Earth radius used for all user-facing
// distances.
const EarthRadiusMiles = 3958.8

// SquaredPlanarDistance treats degrees as a flat plane and returns
// (dLat)^2 + (dLng)^2. It is a ranking metric for nearest-vertex matching
// over short spans, never a real distance; there is no unit conversion and
// no square root on purpose.
func SquaredPlanarDistance(a, b model.Coordinate) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}

// NearestIndex returns the index of the path vertex closest to p under
// SquaredPlanarDistance, or -1 for an empty path. Ties go to the lowest
// index so repeated calls over the same inputs agree.
func NearestIndex(path []model.Coordinate, p model.Coordinate) int {
	best := -1
	bestDist := math.Inf(1)
	for i, v := range path {
		d := SquaredPlanarDistance(v, p)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// HaversineMiles is the great-circle distance between two coordinates in
// statute miles.
func HaversineMiles(a, b model.Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMiles * c
}

// PathMiles sums HaversineMiles over consecutive points.
func PathMiles(points []model.Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += HaversineMiles(points[i-1], points[i])
	}
	return total
}
