package service

import (
	"context"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
)

type RoutingMode int

const (
	ModeOnline RoutingMode = iota
	ModeOffline
)

func (m RoutingMode) String() string {
	if m == ModeOffline {
		return "offline"
	}
	return "online"
}

type RouteFetcher interface {
	FetchRoute(ctx context.Context, origin, destination datastructure.Coordinate,
		profile string) (datastructure.RouteData, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, location string) (float64, float64, error)
}

type Scorer interface {
	Score(origin, destination datastructure.Coordinate,
		avoid datastructure.AvoidancePreferences) (datastructure.ScoringResult, error)
}

// RouteCache is the precomputed-route snapshot opened while offline.
type RouteCache interface {
	Lookup(origin, destination datastructure.Coordinate,
		avoid datastructure.AvoidancePreferences) (datastructure.CachedRoute, error)
	Len() (int, error)
	Close() error
}

// RouteRequest carries endpoints either as coordinates or as free-form
// location text. Text endpoints are geocoded before routing.
type RouteRequest struct {
	Origin          *datastructure.Coordinate
	Destination     *datastructure.Coordinate
	OriginText      string
	DestinationText string

	Mode       string // "astar" forces the plain search, "ml" the scored one
	TravelMode string // osrm profile: driving, cycling, walking
	Avoid      datastructure.AvoidancePreferences
}

const (
	AlgorithmAStar  = "astar"
	AlgorithmML     = "ml"
	AlgorithmCached = "cached"
)

type RouteResult struct {
	Waypoints     []datastructure.Waypoint
	TotalDistance float64
	TotalDuration float64
	Polyline      string

	Algorithm string
	Fallback  bool
	Scores    *datastructure.ScoringResult
}

// Status is the health snapshot of the controller.
type Status struct {
	Mode         RoutingMode
	ModelLoaded  bool
	CachedRoutes int
}
