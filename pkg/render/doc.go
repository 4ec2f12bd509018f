// Package render provides visualization rendering for step graphs.
//
// # Overview
//
// This package contains the renderers that turn a reconstructed step tree or
// its chart model into visual output:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Chart drawing at the layout engine's absolute positions (in [sink])
//   - Node-link diagrams laid out by Graphviz (in [nodelink])
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both renderers use them.
//
//	svg := sink.RenderSVG(model)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Chart Rendering
//
// The [sink] subpackage draws a [chart.Model] as is: step boxes, container
// frames, ports and orthogonal links. What the browser dashboard shows is
// what this SVG shows.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage emits Graphviz DOT from the step tree, with
// containers as clusters, and renders it in-process.
//
//	dot := nodelink.ToDOT(t, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [sink]: github.com/matzehuels/stepgraph/pkg/render/sink
// [nodelink]: github.com/matzehuels/stepgraph/pkg/render/nodelink
// [chart.Model]: github.com/matzehuels/stepgraph/pkg/chart#Model
package render
