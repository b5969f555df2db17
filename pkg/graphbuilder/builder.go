package graphbuilder

import (
	"log"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
	"github.com/annwhocodes/ResQMap/pkg/geo"
	"github.com/annwhocodes/ResQMap/pkg/server"

	"github.com/dhconnelly/rtreego"
)

const (
	// a step endpoint within this distance of an existing waypoint is
	// treated as that waypoint
	stepMatchToleranceMeters = 30.0
)

// BuildGraph turns upstream route data into a routing graph. Waypoints
// become nodes in input order, consecutive waypoints are connected by
// bidirectional edges whose distance is recomputed with the haversine
// formula. Step metadata (duration, hazard attributes) is merged into
// the sequential edges; step endpoints that match no waypoint are
// inserted as maneuver nodes projected onto the route line.
//
// Degenerate input does not fail: zero or one waypoint yields the
// minimal two-node origin/destination graph. The returned graph is
// always connected along the waypoint order. The only error is
// ErrInvalidCoordinates for out-of-range lat/lng.
func BuildGraph(route datastructure.RouteData) (*datastructure.Graph, error) {
	if err := validateCoordinates(route); err != nil {
		return nil, err
	}

	g := datastructure.NewGraph()
	g.TotalDistance = route.TotalDistance
	g.TotalDuration = route.TotalDuration
	g.Polyline = route.Polyline

	if len(route.Waypoints) == 0 {
		buildMinimalGraph(g, route)
		return g, nil
	}

	for i, wp := range route.Waypoints {
		kind := datastructure.NodeKindFromString(wp.Type)
		name := wp.Name
		if name == "" {
			name = defaultWaypointName(i, len(route.Waypoints))
		}
		g.AddNode(datastructure.NewNode(int32(i), wp.Lat, wp.Lng, name, kind))
	}

	for i := 0; i < len(route.Waypoints)-1; i++ {
		a := route.Waypoints[i]
		b := route.Waypoints[i+1]
		g.AddBidirectionalEdge(datastructure.Edge{
			From: int32(i),
			To:   int32(i + 1),
			Dist: geo.HaversineDistance(a.Lat, a.Lng, b.Lat, b.Lng),
		})
	}

	if g.NumNodes() == 1 {
		// duplicate the single waypoint so downstream search always has
		// a well-formed two-node graph
		only := g.GetNode(0)
		destID := g.AddNode(datastructure.NewNode(-1, only.Lat, only.Lng, "Destination", datastructure.NodeKindDestination))
		g.AddBidirectionalEdge(datastructure.Edge{From: 0, To: destID, Dist: 0})
	}

	mergeSteps(g, route.Steps)

	if g.TotalDistance == 0 {
		g.TotalDistance = sequentialDistance(route.Waypoints)
	}

	return g, nil
}

func validateCoordinates(route datastructure.RouteData) error {
	for _, wp := range route.Waypoints {
		if !geo.ValidCoordinate(wp.Lat, wp.Lng) {
			return server.NewErrorf(server.ErrInvalidCoordinates,
				"waypoint %q has out-of-range coordinates (%f, %f)", wp.Name, wp.Lat, wp.Lng)
		}
	}
	for _, wp := range []*datastructure.Waypoint{route.Origin, route.Destination} {
		if wp != nil && !geo.ValidCoordinate(wp.Lat, wp.Lng) {
			return server.NewErrorf(server.ErrInvalidCoordinates,
				"endpoint has out-of-range coordinates (%f, %f)", wp.Lat, wp.Lng)
		}
	}
	return nil
}

// buildMinimalGraph covers empty route data: the origin/destination
// fallback endpoints when present, two synthetic identical-coordinate
// nodes otherwise.
func buildMinimalGraph(g *datastructure.Graph, route datastructure.RouteData) {
	origin := datastructure.Waypoint{Name: "Origin"}
	destination := datastructure.Waypoint{Name: "Destination"}
	if route.Origin != nil {
		origin = *route.Origin
	}
	if route.Destination != nil {
		destination = *route.Destination
	}

	originID := g.AddNode(datastructure.NewNode(-1, origin.Lat, origin.Lng, "Origin", datastructure.NodeKindStart))
	destID := g.AddNode(datastructure.NewNode(-1, destination.Lat, destination.Lng, "Destination", datastructure.NodeKindDestination))
	g.AddBidirectionalEdge(datastructure.Edge{
		From: originID,
		To:   destID,
		Dist: geo.HaversineDistance(origin.Lat, origin.Lng, destination.Lat, destination.Lng),
	})
}

type nodePoint struct {
	id  int32
	loc rtreego.Point
}

func (p nodePoint) Bounds() rtreego.Rect {
	return p.loc.ToRect(1e-7)
}

// mergeSteps folds step metadata into the graph. Steps that cannot be
// resolved are skipped; they never disconnect the sequential-waypoint
// path.
func mergeSteps(g *datastructure.Graph, steps []datastructure.Step) {
	if len(steps) == 0 {
		return
	}

	tree := rtreego.NewTree(2, 25, 50)
	for _, node := range g.Nodes() {
		tree.Insert(nodePoint{id: node.ID, loc: rtreego.Point{node.Lat, node.Lng}})
	}

	for _, step := range steps {
		if step.From == nil || step.To == nil {
			continue
		}
		if !geo.ValidCoordinate(step.From.Lat, step.From.Lng) || !geo.ValidCoordinate(step.To.Lat, step.To.Lng) {
			log.Printf("skipping step %q: out-of-range endpoint", step.Name)
			continue
		}

		fromID := resolveStepNode(g, tree, step.From)
		toID := resolveStepNode(g, tree, step.To)
		if fromID == toID {
			continue
		}

		if edge := g.EdgeBetween(fromID, toID); edge != nil {
			applyStep(edge, step)
			if mirror := g.EdgeBetween(toID, fromID); mirror != nil {
				applyStep(mirror, step)
			}
			continue
		}

		from := g.GetNode(fromID)
		to := g.GetNode(toID)
		dist := step.Distance
		if dist <= 0 {
			dist = geo.HaversineDistance(from.Lat, from.Lng, to.Lat, to.Lng)
		}
		g.AddBidirectionalEdge(datastructure.Edge{
			From:       fromID,
			To:         toID,
			Dist:       dist,
			Duration:   step.Duration,
			Toll:       step.Toll,
			Highway:    step.Highway,
			FloodRisk:  step.FloodRisk,
			DebrisRisk: step.DebrisRisk,
		})
	}
}

func applyStep(edge *datastructure.Edge, step datastructure.Step) {
	if step.Duration > 0 {
		edge.Duration = step.Duration
	}
	edge.Toll = edge.Toll || step.Toll
	edge.Highway = edge.Highway || step.Highway
	if step.FloodRisk > edge.FloodRisk {
		edge.FloodRisk = step.FloodRisk
	}
	if step.DebrisRisk > edge.DebrisRisk {
		edge.DebrisRisk = step.DebrisRisk
	}
}

// resolveStepNode maps a step endpoint to an existing node within the
// match tolerance, or inserts a maneuver node snapped onto the nearest
// route segment.
func resolveStepNode(g *datastructure.Graph, tree *rtreego.Rtree, sn *datastructure.StepNode) int32 {
	nearest := tree.NearestNeighbor(rtreego.Point{sn.Lat, sn.Lng})
	nearestID := nearest.(nodePoint).id
	nearestNode := g.GetNode(nearestID)

	if geo.HaversineDistance(sn.Lat, sn.Lng, nearestNode.Lat, nearestNode.Lng) <= stepMatchToleranceMeters {
		return nearestID
	}

	// snap onto the segment between the nearest node and its waypoint
	// successor (predecessor for the last waypoint)
	segOtherID := nearestID + 1
	if !g.HasNode(segOtherID) {
		segOtherID = nearestID - 1
	}
	segOther := g.GetNode(segOtherID)

	lat, lng := geo.ProjectPointToLine(nearestNode.Lat, nearestNode.Lng, segOther.Lat, segOther.Lng, sn.Lat, sn.Lng)
	name := sn.Name
	if name == "" {
		name = "Maneuver"
	}
	maneuverID := g.AddNode(datastructure.NewNode(-1, lat, lng, name, datastructure.NodeKindManeuver))

	g.AddBidirectionalEdge(datastructure.Edge{
		From: nearestID,
		To:   maneuverID,
		Dist: geo.HaversineDistance(nearestNode.Lat, nearestNode.Lng, lat, lng),
	})
	g.AddBidirectionalEdge(datastructure.Edge{
		From: maneuverID,
		To:   segOtherID,
		Dist: geo.HaversineDistance(lat, lng, segOther.Lat, segOther.Lng),
	})

	tree.Insert(nodePoint{id: maneuverID, loc: rtreego.Point{lat, lng}})
	return maneuverID
}

func defaultWaypointName(i, total int) string {
	switch i {
	case 0:
		return "Start"
	case total - 1:
		return "Destination"
	default:
		return "Waypoint"
	}
}

func sequentialDistance(waypoints []datastructure.Waypoint) float64 {
	total := 0.0
	for i := 0; i < len(waypoints)-1; i++ {
		total += geo.HaversineDistance(waypoints[i].Lat, waypoints[i].Lng, waypoints[i+1].Lat, waypoints[i+1].Lng)
	}
	return total
}
