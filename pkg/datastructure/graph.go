package datastructure

import (
	"github.com/twpayne/go-polyline"
)

type Coordinate struct {
	Lat float64
	Lng float64
}

func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{Lat: lat, Lng: lng}
}

type NodeKind int

const (
	NodeKindStart NodeKind = iota
	NodeKindWaypoint
	NodeKindManeuver
	NodeKindIntersection
	NodeKindDestination
)

func (k NodeKind) String() string {
	switch k {
	case NodeKindStart:
		return "start"
	case NodeKindManeuver:
		return "maneuver"
	case NodeKindIntersection:
		return "intersection"
	case NodeKindDestination:
		return "destination"
	default:
		return "waypoint"
	}
}

func NodeKindFromString(s string) NodeKind {
	switch s {
	case "start":
		return NodeKindStart
	case "maneuver":
		return NodeKindManeuver
	case "intersection":
		return NodeKindIntersection
	case "destination":
		return NodeKindDestination
	default:
		return NodeKindWaypoint
	}
}

type Node struct {
	ID   int32
	Lat  float64
	Lng  float64
	Name string
	Kind NodeKind
}

func NewNode(id int32, lat, lng float64, name string, kind NodeKind) Node {
	return Node{ID: id, Lat: lat, Lng: lng, Name: name, Kind: kind}
}

type Edge struct {
	From       int32
	To         int32
	Dist       float64 // meters
	Duration   float64 // seconds, 0 = unknown
	Toll       bool
	Highway    bool
	FloodRisk  float64 // [0,1]
	DebrisRisk float64 // [0,1]
}

// Graph is an arena of nodes indexed by int32 id plus an adjacency list
// of edge indices. Built fresh per routing request, read-only once
// search starts.
type Graph struct {
	nodes     []Node
	edges     []Edge
	adjacency [][]int32

	TotalDistance float64
	TotalDuration float64
	Polyline      []Coordinate
}

func NewGraph() *Graph {
	return &Graph{
		nodes:     make([]Node, 0),
		edges:     make([]Edge, 0),
		adjacency: make([][]int32, 0),
	}
}

// AddNode appends node to the arena. The next sequential id is assigned
// when node.ID is negative.
func (g *Graph) AddNode(node Node) int32 {
	if node.ID < 0 {
		node.ID = int32(len(g.nodes))
	}
	g.nodes = append(g.nodes, node)
	g.adjacency = append(g.adjacency, []int32{})
	return node.ID
}

// AddEdge inserts a directed edge. Both endpoints must already exist.
func (g *Graph) AddEdge(edge Edge) bool {
	if !g.HasNode(edge.From) || !g.HasNode(edge.To) {
		return false
	}
	edgeID := int32(len(g.edges))
	g.edges = append(g.edges, edge)
	g.adjacency[edge.From] = append(g.adjacency[edge.From], edgeID)
	return true
}

// AddBidirectionalEdge inserts edge plus its mirror with swapped
// endpoints. Upstream route geometry is single-direction, so both
// directions are added with mirrored distance.
func (g *Graph) AddBidirectionalEdge(edge Edge) bool {
	if !g.AddEdge(edge) {
		return false
	}
	mirror := edge
	mirror.From, mirror.To = edge.To, edge.From
	return g.AddEdge(mirror)
}

func (g *Graph) HasNode(id int32) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

func (g *Graph) GetNode(id int32) Node {
	return g.nodes[id]
}

func (g *Graph) GetNodeOutEdges(id int32) []int32 {
	return g.adjacency[id]
}

func (g *Graph) GetEdge(edgeID int32) Edge {
	return g.edges[edgeID]
}

// EdgeBetween returns a pointer to the first directed edge (from, to),
// nil when absent. Only valid while the graph is still being built.
func (g *Graph) EdgeBetween(from, to int32) *Edge {
	if !g.HasNode(from) {
		return nil
	}
	for _, edgeID := range g.adjacency[from] {
		if g.edges[edgeID].To == to {
			return &g.edges[edgeID]
		}
	}
	return nil
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}

func (g *Graph) Nodes() []Node {
	return g.nodes
}

// RenderPath encodes a coordinate path as a google polyline string.
func RenderPath(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lng})
	}
	return string(polyline.EncodeCoords(coords))
}
