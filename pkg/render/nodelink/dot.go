package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/render"
	"github.com/matzehuels/stepgraph/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the step type and docstring in node labels.
	// When false, only the step name is shown.
	Detailed bool
}

// ToDOT converts a step tree to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Containers become clusters so Graphviz keeps each box's branches together:
// foreach clusters are dashed, parallel clusters solid. Foreach steps get a
// double outline.
func ToDOT(t tree.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	writeSequence(&buf, t, tree.RootPath, 1, opts)

	buf.WriteString("\n")
	tree.Walk(t, func(_ string, _ int, n tree.Node) bool {
		if n.Type != tree.NodeNormal {
			return true
		}
		for _, next := range n.Original.Next {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.StepName, next)
		}
		return true
	})

	buf.WriteString("}\n")
	return buf.String()
}

func writeSequence(buf *bytes.Buffer, t tree.Tree, prefix string, depth int, opts Options) {
	indent := strings.Repeat("  ", depth)
	for i, n := range t {
		path := tree.ChildPath(prefix, i)
		switch n.Type {
		case tree.NodeContainer:
			fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+path)
			fmt.Fprintf(buf, "%s  label=%q;\n", indent, string(n.ContainerType))
			fmt.Fprintf(buf, "%s  %s;\n", indent, clusterStyle(n.ContainerType))
			writeSequence(buf, n.Branches, path, depth+1, opts)
			fmt.Fprintf(buf, "%s}\n", indent)
		case tree.NodeNormal:
			attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
			fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.StepName, strings.Join(attrs, ", "))
			writeSequence(buf, n.Children, path, depth, opts)
		}
	}
}

func clusterStyle(ct tree.ContainerType) string {
	if ct == tree.ContainerForeach {
		return `style="rounded,dashed"; color=grey40`
	}
	return `style=rounded; color=grey60`
}

func fmtLabel(n tree.Node, detailed bool) string {
	if !detailed {
		return n.StepName
	}

	parts := []string{"type: " + string(n.Original.Type)}
	if n.Original.Doc != "" {
		parts = append(parts, n.Original.Doc)
	}
	return n.StepName + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n tree.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Original.Doc != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Original.Doc))
	}
	if n.Kind == tree.KindLoop {
		attrs = append(attrs, "peripheries=2")
	}
	switch n.StepName {
	case flow.StartStep, flow.EndStep:
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
