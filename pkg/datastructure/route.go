package datastructure

// Waypoint is one named point of the upstream route geometry.
type Waypoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
	Type string  `json:"type"`
}

// Step is a richer route segment with explicit endpoints and known
// distance/duration, optionally carrying hazard attributes.
type Step struct {
	Distance   float64   `json:"distance"`
	Duration   float64   `json:"duration"`
	From       *StepNode `json:"from,omitempty"`
	To         *StepNode `json:"to,omitempty"`
	Name       string    `json:"name,omitempty"`
	Toll       bool      `json:"toll,omitempty"`
	Highway    bool      `json:"highway,omitempty"`
	FloodRisk  float64   `json:"flood_risk,omitempty"`
	DebrisRisk float64   `json:"debris_risk,omitempty"`
}

type StepNode struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

// RouteData is the standardized route produced by the upstream
// route-geometry adapter.
type RouteData struct {
	TotalDistance float64      `json:"total_distance"`
	TotalDuration float64      `json:"total_duration"`
	Waypoints     []Waypoint   `json:"waypoints"`
	Steps         []Step       `json:"steps"`
	Polyline      []Coordinate `json:"polyline,omitempty"`

	// fallback endpoints for degenerate route data
	Origin      *Waypoint `json:"origin,omitempty"`
	Destination *Waypoint `json:"destination,omitempty"`
}

// AvoidancePreferences are four independent flags. They feed the
// scoring model and discriminate cache keys.
type AvoidancePreferences struct {
	Tolls    bool `json:"tolls"`
	Highways bool `json:"highways"`
	Floods   bool `json:"floods"`
	Debris   bool `json:"debris"`
}

// Bits packs the four flags into the low nibble, toll first.
func (a AvoidancePreferences) Bits() uint8 {
	var b uint8
	if a.Tolls {
		b |= 1
	}
	if a.Highways {
		b |= 1 << 1
	}
	if a.Floods {
		b |= 1 << 2
	}
	if a.Debris {
		b |= 1 << 3
	}
	return b
}

type RoutePoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// CachedRoute is a precomputed route snapshot entry. Valid for a
// request only when Avoid matches the request flags exactly.
type CachedRoute struct {
	Points []RoutePoint
	Avoid  AvoidancePreferences
}

// ScoringResult is the (cost, safety) scalar pair produced by the
// weight scorer for one origin/destination/preferences triple.
type ScoringResult struct {
	PathCost   float64 `json:"path_cost"`
	PathSafety float64 `json:"path_safety"`
}
