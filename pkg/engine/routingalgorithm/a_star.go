package routingalgorithm

import (
	"github.com/annwhocodes/ResQMap/pkg/datastructure"
	"github.com/annwhocodes/ResQMap/pkg/geo"
	"github.com/annwhocodes/ResQMap/pkg/util"
)

// https://www.cs.princeton.edu/courses/archive/spr06/cos423/Handouts/GH05.pdf

// ShortestPathAStar finds a minimum-weight path between from and to.
// Frontier is ordered by g(n) + h(n) with h the haversine distance to
// the goal. A missing endpoint or an exhausted frontier is not an
// error: the result carries the direct two-node path with Fallback set.
func (rt *RouteAlgorithm) ShortestPathAStar(from, to int32, opts SearchOptions) SearchResult {
	if opts.Weight == nil {
		opts.Weight = WeightByDistance
	}

	if !rt.graph.HasNode(from) {
		return rt.directFallback(from, to, FallbackReasonMissingStart)
	}
	if !rt.graph.HasNode(to) {
		return rt.directFallback(from, to, FallbackReasonMissingGoal)
	}

	if from == to {
		return SearchResult{
			Path:  []datastructure.Node{rt.graph.GetNode(from)},
			Edges: []datastructure.Edge{},
		}
	}

	scale := opts.blendScale()
	goal := rt.graph.GetNode(to)

	pq := datastructure.NewMinHeap[int32]()

	costSoFar := make(map[int32]float64)
	costSoFar[from] = 0.0

	distSoFar := make(map[int32]float64)
	distSoFar[from] = 0.0

	pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: 0, Item: from})

	cameFrom := make(map[int32]cameFromPair)
	cameFrom[from] = cameFromPair{EdgeID: -1, NodeID: -1}

	visited := make(map[int32]struct{})

	for {
		if pq.Size() == 0 {
			return rt.directFallback(from, to, FallbackReasonNoPath)
		}

		current, _ := pq.ExtractMin()
		if current.Item == to {
			path, edges := rt.reconstructPath(from, to, cameFrom)
			return SearchResult{
				Path:  path,
				Edges: edges,
				Dist:  distSoFar[to],
				Cost:  costSoFar[to],
			}
		}

		for _, edgeID := range rt.graph.GetNodeOutEdges(current.Item) {
			edge := rt.graph.GetEdge(edgeID)
			if _, ok := visited[edge.To]; ok {
				continue
			}

			newCost := costSoFar[current.Item] + opts.Weight(edge)*scale
			dist := distSoFar[current.Item] + edge.Dist
			neighbor := rt.graph.GetNode(edge.To)

			_, ok := costSoFar[neighbor.ID]
			if !ok {
				priority := newCost + rt.pathEstimatedCost(neighbor, goal)

				costSoFar[neighbor.ID] = newCost
				distSoFar[neighbor.ID] = dist

				pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: priority, Item: neighbor.ID})
				cameFrom[edge.To] = cameFromPair{EdgeID: edgeID, NodeID: current.Item}
			} else if newCost < costSoFar[neighbor.ID] {
				priority := newCost + rt.pathEstimatedCost(neighbor, goal)

				costSoFar[neighbor.ID] = newCost
				distSoFar[neighbor.ID] = dist

				pq.DecreaseKey(datastructure.PriorityQueueNode[int32]{Rank: priority, Item: neighbor.ID})
				cameFrom[edge.To] = cameFromPair{EdgeID: edgeID, NodeID: current.Item}
			}
		}

		visited[current.Item] = struct{}{}
	}
}

func (rt *RouteAlgorithm) reconstructPath(from, to int32, cameFrom map[int32]cameFromPair) ([]datastructure.Node, []datastructure.Edge) {
	path := []datastructure.Node{}
	edges := []datastructure.Edge{}

	currNode := rt.graph.GetNode(to)
	for cameFrom[currNode.ID].NodeID != -1 {
		path = append(path, currNode)
		edges = append(edges, rt.graph.GetEdge(cameFrom[currNode.ID].EdgeID))
		currNode = rt.graph.GetNode(cameFrom[currNode.ID].NodeID)
	}
	path = append(path, rt.graph.GetNode(from))

	return util.ReverseG(path), util.ReverseG(edges)
}

func (rt *RouteAlgorithm) pathEstimatedCost(from, to datastructure.Node) float64 {
	return geo.HaversineDistance(from.Lat, from.Lng, to.Lat, to.Lng)
}

// directFallback builds the degenerate straight-line path between the
// requested endpoints, substituting the graph's first and last nodes
// when an endpoint id is absent.
func (rt *RouteAlgorithm) directFallback(from, to int32, reason string) SearchResult {
	if rt.graph.NumNodes() == 0 {
		return SearchResult{Path: []datastructure.Node{}, Edges: []datastructure.Edge{}, Fallback: true, Reason: reason}
	}

	startID := from
	if !rt.graph.HasNode(startID) {
		startID = 0
	}
	goalID := to
	if !rt.graph.HasNode(goalID) {
		goalID = int32(rt.graph.NumNodes() - 1)
	}

	start := rt.graph.GetNode(startID)
	goalNode := rt.graph.GetNode(goalID)
	dist := geo.HaversineDistance(start.Lat, start.Lng, goalNode.Lat, goalNode.Lng)

	return SearchResult{
		Path: []datastructure.Node{start, goalNode},
		Edges: []datastructure.Edge{
			{From: start.ID, To: goalNode.ID, Dist: dist},
		},
		Dist:     dist,
		Cost:     dist,
		Fallback: true,
		Reason:   reason,
	}
}
