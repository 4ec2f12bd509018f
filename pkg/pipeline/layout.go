package pipeline

import (
	"github.com/matzehuels/stepgraph/pkg/chart"
	"github.com/matzehuels/stepgraph/pkg/layout"
	"github.com/matzehuels/stepgraph/pkg/tree"
)

// ComputeChart lays out a step tree as a chart model.
// Only the layout options of opts are used.
func ComputeChart(t tree.Tree, opts Options) chart.Model {
	return layout.Build(t, layout.WithConfig(opts.LayoutConfig()))
}
