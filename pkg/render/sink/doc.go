// Package sink draws chart models as SVG.
//
// [RenderSVG] takes a [chart.Model] exactly as the layout engine produced it
// and draws step boxes, container frames and links at those coordinates. No
// positions are recomputed, so the SVG matches what any other renderer of
// the same model shows.
//
// Rendering is configured with functional options:
//
//	svg := sink.RenderSVG(m, sink.WithTooltips(), sink.WithPorts())
//
// For PDF or PNG output, pass the SVG to render.ToPDF or render.ToPNG.
//
// [chart.Model]: github.com/matzehuels/stepgraph/pkg/chart#Model
package sink
