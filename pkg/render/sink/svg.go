package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/stepgraph/pkg/chart"
	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/tree"
)

const chartCSS = `
    .step { fill: #ffffff; stroke: #37474f; stroke-width: 1.5; }
    .step.loop { stroke-dasharray: 6 3; }
    .step.terminal { fill: #e3f2fd; }
    .container { fill: none; stroke: #b0bec5; stroke-width: 1; }
    .container.foreach { stroke-dasharray: 4 4; }
    .container-label { font: 11px sans-serif; fill: #78909c; }
    .label { font: 14px sans-serif; fill: #263238; text-anchor: middle; dominant-baseline: central; }
    .link { fill: none; stroke: #607d8b; stroke-width: 1.5; marker-end: url(#arrow); }
    .port { fill: #607d8b; }`

const arrowMarker = `  <defs>
    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="#607d8b"/>
    </marker>
  </defs>
`

// Drawing constants, in pixels.
const (
	defaultPadding = 20.0
	portRadius     = 3.0
	labelFontSize  = 14.0
	labelCharWidth = 0.6
	bendOffset     = 20.0
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	padding    float64
	tooltips   bool
	containers bool
	ports      bool
}

// WithPadding sets the blank margin around the chart.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = max(0, p) } }

// WithTooltips adds each step's docstring as a hover tooltip.
func WithTooltips() SVGOption { return func(r *svgRenderer) { r.tooltips = true } }

// WithoutContainers omits the frames drawn around container footprints.
func WithoutContainers() SVGOption { return func(r *svgRenderer) { r.containers = false } }

// WithPorts draws a dot on each step port.
func WithPorts() SVGOption { return func(r *svgRenderer) { r.ports = true } }

// RenderSVG draws m at its absolute positions.
// Output is deterministic: nodes and links are emitted in ID order.
func RenderSVG(m chart.Model, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	w := m.Width + 2*r.padding
	h := m.Height + 2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	buf.WriteString(arrowMarker)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", chartCSS)
	fmt.Fprintf(&buf, "  <g transform=\"translate(%.1f,%.1f)\">\n", r.padding, r.padding)

	if r.containers {
		for _, c := range m.Containers() {
			renderContainer(&buf, c)
		}
	}
	for _, id := range m.LinkIDs() {
		renderLink(&buf, m, m.Links[id])
	}
	for _, s := range m.Steps() {
		r.renderStep(&buf, s)
	}

	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{padding: defaultPadding, containers: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderContainer(buf *bytes.Buffer, n chart.Node) {
	if n.Size.Width == 0 || n.Size.Height == 0 {
		return
	}
	ct := n.Properties.ContainerType
	fmt.Fprintf(buf, `    <rect id="container-%s" class="container %s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6"/>`+"\n",
		EscapeXML(n.ID), ct, n.Position.X-4, n.Position.Y-4, n.Size.Width+8, n.Size.Height+8)
	fmt.Fprintf(buf, `    <text class="container-label" x="%.1f" y="%.1f">%s</text>`+"\n",
		n.Position.X, n.Position.Y-8, ct)
}

func (r svgRenderer) renderStep(buf *bytes.Buffer, n chart.Node) {
	class := "step"
	if n.Properties.Kind == tree.KindLoop {
		class += " loop"
	}
	if n.ID == flow.StartStep || n.ID == flow.EndStep {
		class += " terminal"
	}

	fmt.Fprintf(buf, `    <g id="step-%s">`+"\n", EscapeXML(n.ID))
	if doc := n.Properties.Original.Doc; r.tooltips && doc != "" {
		fmt.Fprintf(buf, "      <title>%s</title>\n", EscapeXML(doc))
	}
	fmt.Fprintf(buf, `      <rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8"/>`+"\n",
		class, n.Position.X, n.Position.Y, n.Size.Width, n.Size.Height)

	c := n.Center()
	fmt.Fprintf(buf, `      <text class="label" x="%.1f" y="%.1f">%s</text>`+"\n",
		c.X, c.Y, EscapeXML(TruncateLabel(n.ID, n.Size.Width)))

	if r.ports {
		for _, id := range []string{chart.PortIn, chart.PortOut} {
			if p, ok := n.PortPosition(id); ok {
				fmt.Fprintf(buf, `      <circle class="port" cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", p.X, p.Y, portRadius)
			}
		}
	}
	buf.WriteString("    </g>\n")
}

func renderLink(buf *bytes.Buffer, m chart.Model, l chart.Link) {
	src, okS := m.Nodes[l.From.NodeID]
	dst, okD := m.Nodes[l.To.NodeID]
	if !okS || !okD {
		return
	}
	from, okF := src.PortPosition(l.From.PortID)
	to, okT := dst.PortPosition(l.To.PortID)
	if !okF || !okT {
		return
	}
	fmt.Fprintf(buf, `    <path id="link-%s" class="link" d="%s"/>`+"\n", EscapeXML(l.ID), linkPath(from, to))
}

// linkPath routes a link orthogonally: down from the source port, across,
// then down into the target port. The horizontal run sits just above the
// target so links into a join share one level.
func linkPath(from, to chart.Point) string {
	if from.X == to.X || to.Y <= from.Y {
		return fmt.Sprintf("M %.1f %.1f L %.1f %.1f", from.X, from.Y, to.X, to.Y)
	}
	mid := max(from.Y+(to.Y-from.Y)/2, to.Y-bendOffset)
	return fmt.Sprintf("M %.1f %.1f V %.1f H %.1f V %.1f", from.X, from.Y, mid, to.X, to.Y)
}
