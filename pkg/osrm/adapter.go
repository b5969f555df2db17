package osrm

import (
	"errors"
	"fmt"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
)

type response struct {
	Routes []route `json:"routes"`
}

type route struct {
	Distance float64  `json:"distance"` // meters
	Duration float64  `json:"duration"` // seconds
	Geometry geometry `json:"geometry"`
	Legs     []leg    `json:"legs"`
}

type geometry struct {
	// geojson, [lng, lat] pairs
	Coordinates [][]float64 `json:"coordinates"`
}

type leg struct {
	Steps []step `json:"steps"`
}

type step struct {
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Name     string    `json:"name"`
	Maneuver maneuver  `json:"maneuver"`
	Geometry *geometry `json:"geometry,omitempty"`
}

type maneuver struct {
	Type     string    `json:"type"`
	Modifier string    `json:"modifier"`
	Location []float64 `json:"location"` // [lng, lat]
}

// ExtractRoute converts an OSRM response into the standardized
// RouteData the graph builder consumes. Waypoints come from each step's
// maneuver location in route order; the first is tagged start and the
// route's final coordinate is appended as the destination.
func ExtractRoute(resp response) (datastructure.RouteData, error) {
	if len(resp.Routes) == 0 {
		return datastructure.RouteData{}, errors.New("no routes found in osrm response")
	}

	first := resp.Routes[0]

	waypoints := []datastructure.Waypoint{}
	steps := []datastructure.Step{}

	for legIdx, currLeg := range first.Legs {
		for stepIdx, currStep := range currLeg.Steps {
			if len(currStep.Maneuver.Location) < 2 {
				continue
			}
			startLat := currStep.Maneuver.Location[1]
			startLng := currStep.Maneuver.Location[0]

			endLat, endLng := stepEndLocation(first, currLeg, stepIdx)

			name := currStep.Name
			if name == "" {
				name = fmt.Sprintf("Step %d.%d", legIdx+1, stepIdx+1)
			}

			steps = append(steps, datastructure.Step{
				Distance: currStep.Distance,
				Duration: currStep.Duration,
				From:     &datastructure.StepNode{Lat: startLat, Lng: startLng, Name: name},
				To:       &datastructure.StepNode{Lat: endLat, Lng: endLng},
				Name:     name,
			})

			waypoints = append(waypoints, datastructure.Waypoint{
				Lat:  startLat,
				Lng:  startLng,
				Name: name,
				Type: "waypoint",
			})
		}
	}

	if len(first.Geometry.Coordinates) > 0 {
		finalCoord := first.Geometry.Coordinates[len(first.Geometry.Coordinates)-1]
		waypoints = append(waypoints, datastructure.Waypoint{
			Lat:  finalCoord[1],
			Lng:  finalCoord[0],
			Name: "Destination",
			Type: "destination",
		})
	}

	if len(waypoints) > 0 {
		waypoints[0].Name = "Start"
		waypoints[0].Type = "start"
	}

	polyline := make([]datastructure.Coordinate, 0, len(first.Geometry.Coordinates))
	for _, coord := range first.Geometry.Coordinates {
		if len(coord) < 2 {
			continue
		}
		polyline = append(polyline, datastructure.NewCoordinate(coord[1], coord[0]))
	}

	return datastructure.RouteData{
		TotalDistance: first.Distance,
		TotalDuration: first.Duration,
		Waypoints:     waypoints,
		Steps:         steps,
		Polyline:      polyline,
	}, nil
}

// stepEndLocation is the next step's maneuver location, or the last
// coordinate of this step's geometry, or the route's final coordinate.
func stepEndLocation(first route, currLeg leg, stepIdx int) (float64, float64) {
	if stepIdx < len(currLeg.Steps)-1 {
		next := currLeg.Steps[stepIdx+1].Maneuver.Location
		if len(next) >= 2 {
			return next[1], next[0]
		}
	}

	currStep := currLeg.Steps[stepIdx]
	if currStep.Geometry != nil && len(currStep.Geometry.Coordinates) > 0 {
		last := currStep.Geometry.Coordinates[len(currStep.Geometry.Coordinates)-1]
		if len(last) >= 2 {
			return last[1], last[0]
		}
	}

	if len(first.Geometry.Coordinates) > 0 {
		last := first.Geometry.Coordinates[len(first.Geometry.Coordinates)-1]
		return last[1], last[0]
	}
	return 0, 0
}
