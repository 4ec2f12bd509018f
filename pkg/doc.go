// Package pkg provides the core libraries for Stepgraph workflow diagrams.
//
// # Overview
//
// Stepgraph turns the flat step graph of a workflow (each step naming its
// successors, with split and foreach steps opening boxes that a join closes)
// into a nested tree of parallel and foreach containers, and lays that tree
// out as a chart model of positioned boxes, ports and links that a diagram
// editor can load without further computation.
//
// # Architecture
//
// The data flow through Stepgraph:
//
//	Step graph JSON
//	       ↓
//	  [flow] package (schema check, decode, semantic validation)
//	       ↓
//	  [tree] package (reconstruct nested containers)
//	       ↓
//	  [layout] package (size, position, ports, links)
//	       ↓
//	  [chart] model JSON ── [render] SVG/PNG/PDF/DOT
//
// # Quick Start
//
//	g, err := flow.Parse(payload)
//	if err != nil {
//	    return err // carries an [errors] code such as MISSING_START
//	}
//	t, err := tree.Reconstruct(g)
//	if err != nil {
//	    return err
//	}
//	m := layout.Build(t)
//	data, _ := chart.Marshal(m)
//
// Or let the [pipeline] do all of it, with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, err := runner.Execute(ctx, payload, pipeline.Options{Formats: []string{"json", "svg"}})
//
// # Main Packages
//
// [flow] - The flat step graph, its JSON Schema and validation.
//
// [tree] - Reconstruction of the nested step tree, plus traversal helpers.
//
// [layout] - The layout engine: box sizes, positions, ports and links.
//
// [chart] - The renderer-agnostic chart model and its JSON encoding.
//
// [render] - SVG drawing of chart models, Graphviz node-link diagrams and
// SVG to PNG/PDF conversion.
//
// [pipeline] - Parse → reconstruct → layout → render, shared by the CLI and
// the HTTP server.
//
// [cache] - File, Redis, MongoDB and no-op caches for chart models and
// rendered artifacts.
//
// [errors] - Structured errors with stable codes.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -tags integration ./pkg/...  # Include MongoDB tests
//
// [flow]: https://pkg.go.dev/github.com/matzehuels/stepgraph/pkg/flow
// [tree]: https://pkg.go.dev/github.com/matzehuels/stepgraph/pkg/tree
// [layout]: https://pkg.go.dev/github.com/matzehuels/stepgraph/pkg/layout
// [chart]: https://pkg.go.dev/github.com/matzehuels/stepgraph/pkg/chart
// [render]: https://pkg.go.dev/github.com/matzehuels/stepgraph/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stepgraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stepgraph/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/stepgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stepgraph/pkg/observability
package pkg
