package geo

import "math"

const (
	earthRadiusM = 6371000.0
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

// HaversineDistance returns the great-circle distance between two
// coordinates in meters. Symmetric, non-negative, zero iff both points
// are identical. Never overestimates road distance, so it is a valid
// A* heuristic.
func HaversineDistance(latOne, lngOne, latTwo, lngTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	lngOne = degreeToRadians(lngOne)
	latTwo = degreeToRadians(latTwo)
	lngTwo = degreeToRadians(lngTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(lngOne-lngTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusM * c
}

// ValidCoordinate reports whether lat/lng are inside the WGS84 domain.
func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
