package layout

import (
	"github.com/matzehuels/stepgraph/pkg/tree"
)

// Measurement is the footprint a node reserves in the chart.
type Measurement struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measure returns the footprint of n.
//
//   - A step with no children is one base box.
//   - A step with children is as wide as its widest child and as tall as the
//     base box plus each child's height and vertical margin.
//   - A container is as wide as its branches side by side, with the
//     horizontal margin between neighbours, and as tall as its tallest
//     branch. An empty container measures 0×0.
//
// Measure is pure; nothing is cached between calls.
func Measure(n tree.Node, opts ...Option) Measurement {
	m := newMeasurer(newConfig(opts))
	return m.node(n, tree.RootPath)
}

// MeasureTree returns the footprint of a top-level sequence stacked
// vertically: the widest node, and the node heights with one vertical margin
// between each pair.
func MeasureTree(t tree.Tree, opts ...Option) Measurement {
	m := newMeasurer(newConfig(opts))
	return m.sequence(t, tree.RootPath)
}

// measurer memoizes measurements by tree path for the duration of one
// layout pass. Paths are unique within a tree, so the memo never confuses
// two nodes that share a step name.
type measurer struct {
	cfg  Config
	memo map[string]Measurement
}

func newMeasurer(cfg Config) *measurer {
	return &measurer{cfg: cfg, memo: make(map[string]Measurement)}
}

func (m *measurer) node(n tree.Node, path string) Measurement {
	if got, ok := m.memo[path]; ok {
		return got
	}

	var out Measurement
	switch n.Type {
	case tree.NodeContainer:
		for i, b := range n.Branches {
			bm := m.node(b, tree.ChildPath(path, i))
			if i > 0 {
				out.Width += m.cfg.MarginX
			}
			out.Width += bm.Width
			out.Height = max(out.Height, bm.Height)
		}
	case tree.NodeNormal:
		if len(n.Children) == 0 {
			out = Measurement{Width: m.cfg.BaseWidth, Height: m.cfg.BaseHeight}
			break
		}
		out.Height = m.cfg.BaseHeight
		for i, c := range n.Children {
			cm := m.node(c, tree.ChildPath(path, i))
			out.Width = max(out.Width, cm.Width)
			out.Height += cm.Height + m.cfg.MarginY
		}
	}

	m.memo[path] = out
	return out
}

func (m *measurer) sequence(t tree.Tree, prefix string) Measurement {
	var out Measurement
	for i, n := range t {
		nm := m.node(n, tree.ChildPath(prefix, i))
		if i > 0 {
			out.Height += m.cfg.MarginY
		}
		out.Width = max(out.Width, nm.Width)
		out.Height += nm.Height
	}
	return out
}
