package geo

import (
	"github.com/golang/geo/s2"
)

// ProjectPointToLine projects point onto the segment (segStart, segEnd)
// and returns the projected coordinate. Used when a maneuver location
// reported by the upstream routing service does not coincide with any
// waypoint and has to be snapped onto the route line.
func ProjectPointToLine(segStartLat, segStartLng, segEndLat, segEndLng,
	pointLat, pointLng float64) (float64, float64) {

	segStartS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(segStartLat, segStartLng))
	segEndS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(segEndLat, segEndLng))
	pointS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointLat, pointLng))

	projection := s2.Project(pointS2, segStartS2, segEndS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees()
}
