package routingalgorithm

import (
	"github.com/annwhocodes/ResQMap/pkg/datastructure"
)

type RouteAlgorithm struct {
	graph *datastructure.Graph
}

func NewRouteAlgorithm(graph *datastructure.Graph) *RouteAlgorithm {
	return &RouteAlgorithm{graph: graph}
}

type cameFromPair struct {
	EdgeID int32
	NodeID int32
}

// WeightFunc selects the base weight field of an edge.
type WeightFunc func(datastructure.Edge) float64

func WeightByDistance(e datastructure.Edge) float64 {
	return e.Dist
}

// WeightByDuration falls back to distance when duration is unknown.
func WeightByDuration(e datastructure.Edge) float64 {
	if e.Duration > 0 {
		return e.Duration
	}
	return e.Dist
}

// SearchOptions control edge weighting. CostWeight/SafetyWeight of 1.0
// mean no ML bias.
type SearchOptions struct {
	Weight       WeightFunc
	CostWeight   float64
	SafetyWeight float64
}

func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Weight:       WeightByDistance,
		CostWeight:   1.0,
		SafetyWeight: 1.0,
	}
}

// blendScale is the 50/50 cost/safety blend applied to every base edge
// weight. It biases search as directed by the scorer; with scales below
// 1.0 the haversine heuristic can overestimate the scaled weights, so
// strict optimality is not guaranteed in weighted mode. Kept as-is, the
// trade-off is intentional. Unset scalars mean no bias, so the zero
// value of SearchOptions keeps plain distance weights.
func (o SearchOptions) blendScale() float64 {
	safety, cost := o.SafetyWeight, o.CostWeight
	if safety == 0 {
		safety = 1.0
	}
	if cost == 0 {
		cost = 1.0
	}
	return 0.5*safety + 0.5*cost
}

const (
	FallbackReasonMissingStart = "start node not in graph"
	FallbackReasonMissingGoal  = "goal node not in graph"
	FallbackReasonNoPath       = "no path found"
)

// SearchResult distinguishes a found path from a degraded direct
// fallback so callers can observe degraded-path situations.
type SearchResult struct {
	Path  []datastructure.Node
	Edges []datastructure.Edge
	Dist  float64 // meters along the path
	Cost  float64 // accumulated (possibly blended) weight

	Fallback bool
	Reason   string
}
