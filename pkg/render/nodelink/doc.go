// Package nodelink renders step trees as Graphviz node-link diagrams.
//
// # Overview
//
// Where the chart model fixes every coordinate itself, this package hands the
// step tree to Graphviz and lets it choose positions. Steps appear as boxes
// connected by arrows along their declared successors; every container
// becomes a cluster, so the branches of a split or foreach stay grouped and
// the join lands below them.
//
// # Usage
//
// Convert a step tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(t, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: When true, node labels include the step type and docstring.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
