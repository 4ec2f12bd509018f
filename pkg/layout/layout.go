package layout

import (
	"github.com/matzehuels/stepgraph/pkg/chart"
	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/tree"
)

// direction is the axis along which a sequence is stacked.
type direction int

const (
	vertical direction = iota
	horizontal
)

// Build lays out t and returns the chart model.
//
// The top-level sequence is stacked vertically from the origin. A step's
// children are stacked vertically below it; a container's branches are
// stacked horizontally, each starting at the container's top edge.
//
// Every node reserves its measured footprint. In a vertical stack the
// footprint is centered under the parent's footprint; in a horizontal stack
// footprints are placed left to right. A step box is centered at the top of
// its own footprint.
//
// Build is pure: all cursor and memo state lives in one call.
func Build(t tree.Tree, opts ...Option) chart.Model {
	cfg := newConfig(opts)
	b := &builder{cfg: cfg, measure: newMeasurer(cfg)}

	size := b.measure.sequence(t, tree.RootPath)
	b.model = chart.New(size.Width, size.Height)
	b.sequence(t, tree.RootPath, 0, 0, size.Width, vertical)
	return b.model
}

// builder holds the state of one Build call.
type builder struct {
	cfg     Config
	measure *measurer
	model   chart.Model
}

// sequence places the nodes of t starting at (x, y). parentWidth is the
// footprint reserved by the enclosing node; vertical stacks center within it.
func (b *builder) sequence(t tree.Tree, prefix string, x, y, parentWidth float64, dir direction) {
	cursorX, cursorY := x, y
	for i, n := range t {
		path := tree.ChildPath(prefix, i)
		m := b.measure.node(n, path)

		var left, top float64
		switch dir {
		case horizontal:
			left, top = cursorX, y
		default:
			// Every node of a chain, leaf or not, is centered in the parent's
			// footprint. Offsetting non-leaf nodes from the cursor instead
			// would push a join that follows a container against the left
			// edge, under a centered start.
			left, top = x+(parentWidth-m.Width)/2, cursorY
		}

		switch n.Type {
		case tree.NodeContainer:
			b.container(n, path, left, top, m)
		case tree.NodeNormal:
			b.step(n, path, left, top, m)
		}

		switch dir {
		case horizontal:
			cursorX += m.Width + b.cfg.MarginX
		default:
			cursorY += m.Height + b.cfg.MarginY
		}
	}
}

func (b *builder) container(n tree.Node, path string, left, top float64, m Measurement) {
	b.model.Nodes[path] = chart.Node{
		ID:         path,
		Position:   chart.Point{X: left, Y: top},
		Size:       chart.Size{Width: m.Width, Height: m.Height},
		Ports:      map[string]chart.Port{},
		Properties: n,
	}
	b.sequence(n.Branches, path, left, top, m.Width, horizontal)
}

func (b *builder) step(n tree.Node, path string, left, top float64, m Measurement) {
	bw, bh := b.cfg.BaseWidth, b.cfg.BaseHeight
	b.model.Nodes[n.StepName] = chart.Node{
		ID:         n.StepName,
		Position:   chart.Point{X: left + m.Width/2 - bw/2, Y: top},
		Size:       chart.Size{Width: bw, Height: bh},
		Ports:      b.ports(n),
		Properties: n,
	}

	for _, next := range n.Original.Next {
		id := chart.LinkID(n.StepName, next)
		b.model.Links[id] = chart.Link{
			ID:   id,
			From: chart.Endpoint{NodeID: n.StepName, PortID: chart.PortOut},
			To:   chart.Endpoint{NodeID: next, PortID: chart.PortIn},
		}
	}

	if len(n.Children) > 0 {
		b.sequence(n.Children, path, left, top+bh+b.cfg.MarginY, m.Width, vertical)
	}
}

// ports returns the ports of a step box: "in" at the top center unless the
// step is start, "out" at the bottom center unless the step has no
// successors.
func (b *builder) ports(n tree.Node) map[string]chart.Port {
	ports := make(map[string]chart.Port, 2)
	if n.StepName != flow.StartStep {
		ports[chart.PortIn] = chart.Port{
			ID:       chart.PortIn,
			Type:     chart.PortInput,
			Position: chart.Point{X: b.cfg.BaseWidth / 2, Y: 0},
		}
	}
	if len(n.Original.Next) > 0 {
		ports[chart.PortOut] = chart.Port{
			ID:       chart.PortOut,
			Type:     chart.PortOutput,
			Position: chart.Point{X: b.cfg.BaseWidth / 2, Y: b.cfg.BaseHeight},
		}
	}
	return ports
}
