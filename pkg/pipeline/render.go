package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/stepgraph/pkg/chart"
	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/render"
	"github.com/matzehuels/stepgraph/pkg/render/nodelink"
	"github.com/matzehuels/stepgraph/pkg/render/sink"
	"github.com/matzehuels/stepgraph/pkg/tree"
)

// Render generates output artifacts in the requested formats.
// Chart views draw m; node-link views lay t out with Graphviz. JSON output
// is always the chart model.
func Render(ctx context.Context, m chart.Model, t tree.Tree, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return renderNodelink(ctx, m, t, opts)
	}
	return renderChart(ctx, m, opts)
}

// renderChart generates chart outputs.
func renderChart(ctx context.Context, m chart.Model, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte)

	var svg []byte
	chartSVG := func() []byte {
		if svg == nil {
			svg = sink.RenderSVG(m, svgOpts...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = chartSVG()
		case FormatPNG:
			data, err = render.ToPNG(ctx, chartSVG(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, chartSVG())
		case FormatJSON:
			data, err = chart.Marshal(m)
		default:
			return nil, fmt.Errorf("unsupported chart format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderNodelink generates node-link outputs from the step tree.
func renderNodelink(ctx context.Context, m chart.Model, t tree.Tree, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(t, nodelink.Options{Detailed: opts.Detailed})
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			data, err = chart.Marshal(m)
		default:
			return nil, fmt.Errorf("unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds chart SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Tooltips {
		svgOpts = append(svgOpts, sink.WithTooltips())
	}
	if opts.Ports {
		svgOpts = append(svgOpts, sink.WithPorts())
	}
	return svgOpts
}

// RenderFromChartData renders output from serialized chart data.
// The step tree is recovered from the node properties, so node-link output
// can be produced from a chart written by an earlier run.
func RenderFromChartData(ctx context.Context, data []byte, opts Options) (map[string][]byte, error) {
	m, err := chart.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parse chart: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	return Render(ctx, m, TreeFromChart(m), opts)
}

// TreeFromChart recovers the step tree stored in a chart model. Every step
// node carries its whole subtree, so the tree is the start step's node.
func TreeFromChart(m chart.Model) tree.Tree {
	n, ok := m.Nodes[flow.StartStep]
	if !ok || n.IsContainer() {
		return nil
	}
	return tree.Tree{n.Properties}
}
