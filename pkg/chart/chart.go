package chart

import (
	"maps"
	"slices"

	"github.com/matzehuels/stepgraph/pkg/tree"
)

// =============================================================================
// Constants
// =============================================================================

// Port IDs. A link always leaves through PortOut and enters through PortIn.
const (
	PortIn  = "in"
	PortOut = "out"
)

// PortType tells renderers which side of the node a port sits on.
type PortType string

const (
	PortInput  PortType = "input"
	PortOutput PortType = "output"
)

// Viewport defaults carried by every model.
const (
	DefaultScale    = 1.0
	DefaultReadonly = true
)

// =============================================================================
// Geometry
// =============================================================================

// Point is a position in pixels. Node positions are absolute; port positions
// are relative to their node's top-left corner.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// =============================================================================
// Model
// =============================================================================

// Port is a connection point on a node.
type Port struct {
	ID       string   `json:"id" bson:"id"`
	Type     PortType `json:"type" bson:"type"`
	Position Point    `json:"position" bson:"position"`
}

// Node is a positioned element of the chart. Steps are drawn as boxes of the
// base size; containers span the full footprint of their branches and carry
// no ports.
type Node struct {
	ID         string          `json:"id" bson:"id"`
	Position   Point           `json:"position" bson:"position"`
	Size       Size            `json:"size" bson:"size"`
	Ports      map[string]Port `json:"ports" bson:"ports"`
	Properties tree.Node       `json:"properties" bson:"properties"`
}

// IsContainer reports whether the node stands for a Container tree node.
func (n Node) IsContainer() bool { return n.Properties.IsContainer() }

// Port returns the port with the given ID and whether it exists.
func (n Node) Port(id string) (Port, bool) {
	p, ok := n.Ports[id]
	return p, ok
}

// PortPosition returns the absolute position of the given port.
func (n Node) PortPosition(id string) (Point, bool) {
	p, ok := n.Ports[id]
	if !ok {
		return Point{}, false
	}
	return Point{X: n.Position.X + p.Position.X, Y: n.Position.Y + p.Position.Y}, true
}

// Center returns the absolute center of the node.
func (n Node) Center() Point {
	return Point{X: n.Position.X + n.Size.Width/2, Y: n.Position.Y + n.Size.Height/2}
}

// Endpoint identifies one end of a link.
type Endpoint struct {
	NodeID string `json:"nodeId" bson:"node_id"`
	PortID string `json:"portId" bson:"port_id"`
}

// Link connects the output port of one step to the input port of another.
type Link struct {
	ID   string   `json:"id" bson:"id"`
	From Endpoint `json:"from" bson:"from"`
	To   Endpoint `json:"to" bson:"to"`
}

// LinkID returns the ID of the link from source to target. IDs are plain
// concatenations, so distinct pairs may collide; the later link wins.
func LinkID(source, target string) string { return source + target }

// Model is the renderer-agnostic chart: every node and link with absolute
// positions, plus viewport defaults.
type Model struct {
	Offset   Point           `json:"offset" bson:"offset"`
	Scale    float64         `json:"scale" bson:"scale"`
	Readonly bool            `json:"readonly" bson:"readonly"`
	Width    float64         `json:"width" bson:"width"`
	Height   float64         `json:"height" bson:"height"`
	Nodes    map[string]Node `json:"nodes" bson:"nodes"`
	Links    map[string]Link `json:"links" bson:"links"`
}

// New returns an empty model of the given size with the viewport defaults.
func New(width, height float64) Model {
	return Model{
		Scale:    DefaultScale,
		Readonly: DefaultReadonly,
		Width:    width,
		Height:   height,
		Nodes:    make(map[string]Node),
		Links:    make(map[string]Link),
	}
}

// NodeIDs returns all node IDs in sorted order.
func (m Model) NodeIDs() []string {
	return slices.Sorted(maps.Keys(m.Nodes))
}

// LinkIDs returns all link IDs in sorted order.
func (m Model) LinkIDs() []string {
	return slices.Sorted(maps.Keys(m.Links))
}

// Steps returns the step nodes (not containers) sorted by ID.
func (m Model) Steps() []Node {
	var out []Node
	for _, id := range m.NodeIDs() {
		if n := m.Nodes[id]; !n.IsContainer() {
			out = append(out, n)
		}
	}
	return out
}

// Containers returns the container nodes sorted by ID.
func (m Model) Containers() []Node {
	var out []Node
	for _, id := range m.NodeIDs() {
		if n := m.Nodes[id]; n.IsContainer() {
			out = append(out, n)
		}
	}
	return out
}
