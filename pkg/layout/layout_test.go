package layout_test

import (
	"bytes"
	"testing"

	"github.com/matzehuels/stepgraph/pkg/chart"
	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/flow/flowtest"
	"github.com/matzehuels/stepgraph/pkg/layout"
	"github.com/matzehuels/stepgraph/pkg/tree"
)

func build(t *testing.T, g flow.Graph, opts ...layout.Option) chart.Model {
	t.Helper()
	tr, err := tree.Reconstruct(g)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	return layout.Build(tr, opts...)
}

func TestMeasure(t *testing.T) {
	leaf := func(name string) tree.Node {
		return tree.NewNormal(name, flow.Step{Type: flow.StepLinear}, nil)
	}

	tests := []struct {
		name string
		node tree.Node
		want layout.Measurement
	}{
		{
			name: "leaf step",
			node: leaf("a"),
			want: layout.Measurement{Width: 200, Height: 60},
		},
		{
			name: "step with one child",
			node: tree.NewNormal("a", flow.Step{}, tree.Tree{leaf("b")}),
			want: layout.Measurement{Width: 200, Height: 60 + 60 + 40},
		},
		{
			name: "container of three",
			node: tree.NewContainer(tree.ContainerParallel, tree.Tree{leaf("a"), leaf("b"), leaf("c")}),
			want: layout.Measurement{Width: 3*200 + 2*40, Height: 60},
		},
		{
			name: "empty container",
			node: tree.NewContainer(tree.ContainerForeach, nil),
			want: layout.Measurement{},
		},
		{
			name: "container with uneven branches",
			node: tree.NewContainer(tree.ContainerParallel, tree.Tree{
				leaf("a"),
				tree.NewNormal("b", flow.Step{}, tree.Tree{leaf("c")}),
			}),
			want: layout.Measurement{Width: 440, Height: 160},
		},
		{
			name: "step opening a box",
			node: tree.NewNormal("s", flow.Step{}, tree.Tree{
				tree.NewContainer(tree.ContainerParallel, tree.Tree{leaf("a"), leaf("b")}),
				leaf("join"),
			}),
			want: layout.Measurement{Width: 440, Height: 60 + (60 + 40) + (60 + 40)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := layout.Measure(tt.node); got != tt.want {
				t.Errorf("Measure() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMeasureOptions(t *testing.T) {
	n := tree.NewContainer(tree.ContainerParallel, tree.Tree{
		tree.NewNormal("a", flow.Step{}, nil),
		tree.NewNormal("b", flow.Step{}, nil),
	})
	got := layout.Measure(n, layout.WithBaseSize(100, 30), layout.WithMargins(10, 5))
	want := layout.Measurement{Width: 210, Height: 30}
	if got != want {
		t.Errorf("Measure() = %+v, want %+v", got, want)
	}
}

func TestBuildLinear(t *testing.T) {
	m := build(t, flowtest.Linear())

	want := map[string]chart.Point{
		"start": {X: 0, Y: 0},
		"a":     {X: 0, Y: 100},
		"end":   {X: 0, Y: 200},
	}
	assertPositions(t, m, want)

	if m.Width != 200 || m.Height != 260 {
		t.Errorf("model size = %vx%v, want 200x260", m.Width, m.Height)
	}
	if len(m.Links) != 2 {
		t.Errorf("len(Links) = %d, want 2", len(m.Links))
	}
}

func TestBuildBasicSplit(t *testing.T) {
	m := build(t, flowtest.BasicSplit())

	want := map[string]chart.Point{
		"start":    {X: 120, Y: 0},
		"node.0.0": {X: 0, Y: 100},
		"a":        {X: 0, Y: 100},
		"b":        {X: 240, Y: 100},
		"join":     {X: 120, Y: 200},
		"end":      {X: 120, Y: 300},
	}
	assertPositions(t, m, want)

	if len(m.Nodes) != len(want) {
		t.Errorf("len(Nodes) = %d, want %d: %v", len(m.Nodes), len(want), m.NodeIDs())
	}

	container := m.Nodes["node.0.0"]
	if !container.IsContainer() {
		t.Fatal("node.0.0 should be a container")
	}
	if container.Size != (chart.Size{Width: 440, Height: 60}) {
		t.Errorf("container size = %+v, want 440x60", container.Size)
	}
	if len(container.Ports) != 0 {
		t.Errorf("container has %d ports, want 0", len(container.Ports))
	}

	if m.Width != 440 || m.Height != 360 {
		t.Errorf("model size = %vx%v, want 440x360", m.Width, m.Height)
	}

	wantLinks := []string{"ajoin", "bjoin", "joinend", "starta", "startb"}
	gotLinks := m.LinkIDs()
	if len(gotLinks) != len(wantLinks) {
		t.Fatalf("LinkIDs() = %v, want %v", gotLinks, wantLinks)
	}
	for i := range wantLinks {
		if gotLinks[i] != wantLinks[i] {
			t.Errorf("LinkIDs()[%d] = %q, want %q", i, gotLinks[i], wantLinks[i])
		}
	}
	l := m.Links["starta"]
	if l.From != (chart.Endpoint{NodeID: "start", PortID: "out"}) || l.To != (chart.Endpoint{NodeID: "a", PortID: "in"}) {
		t.Errorf("link starta = %+v", l)
	}
}

func TestBuildViewportDefaults(t *testing.T) {
	m := build(t, flowtest.Linear())
	if m.Scale != 1 || !m.Readonly || m.Offset != (chart.Point{}) {
		t.Errorf("viewport = scale %v readonly %v offset %+v", m.Scale, m.Readonly, m.Offset)
	}
}

func TestPortRules(t *testing.T) {
	fixtures := map[string]flow.Graph{
		"Linear":        flowtest.Linear(),
		"BasicSplit":    flowtest.BasicSplit(),
		"HugeFlow":      flowtest.HugeFlow(),
		"TripleForeach": flowtest.TripleForeach(),
		"TenWaySplit":   flowtest.TenWaySplit(),
	}

	for name, g := range fixtures {
		t.Run(name, func(t *testing.T) {
			m := build(t, g)
			for _, n := range m.Steps() {
				_, hasIn := n.Port(chart.PortIn)
				_, hasOut := n.Port(chart.PortOut)

				wantIn := n.ID != flow.StartStep
				wantOut := len(g[n.ID].Next) > 0
				if hasIn != wantIn {
					t.Errorf("%s: has in port = %v, want %v", n.ID, hasIn, wantIn)
				}
				if hasOut != wantOut {
					t.Errorf("%s: has out port = %v, want %v", n.ID, hasOut, wantOut)
				}
			}
		})
	}
}

func TestPortPositions(t *testing.T) {
	m := build(t, flowtest.Linear())
	a := m.Nodes["a"]

	in, _ := a.PortPosition(chart.PortIn)
	out, _ := a.PortPosition(chart.PortOut)
	if in != (chart.Point{X: 100, Y: 100}) {
		t.Errorf("in port = %+v, want {100 100}", in)
	}
	if out != (chart.Point{X: 100, Y: 160}) {
		t.Errorf("out port = %+v, want {100 160}", out)
	}
}

func TestLinksMatchSuccessors(t *testing.T) {
	g := flowtest.HugeFlow()
	m := build(t, g)

	if len(m.Links) != g.LinkCount() {
		t.Errorf("len(Links) = %d, want %d", len(m.Links), g.LinkCount())
	}
	for name, s := range g {
		for _, next := range s.Next {
			l, ok := m.Links[chart.LinkID(name, next)]
			if !ok {
				t.Errorf("missing link %s → %s", name, next)
				continue
			}
			if _, ok := m.Nodes[l.To.NodeID]; !ok {
				t.Errorf("link %s targets unknown node %s", l.ID, l.To.NodeID)
			}
		}
	}
}

func TestDuplicateLinkLastWins(t *testing.T) {
	tr := tree.Tree{
		tree.NewNormal("ab", flow.Step{Type: flow.StepLinear, Next: []string{"c"}}, nil),
		tree.NewNormal("a", flow.Step{Type: flow.StepLinear, Next: []string{"bc"}}, nil),
	}
	m := layout.Build(tr)

	if len(m.Links) != 1 {
		t.Fatalf("len(Links) = %d, want 1", len(m.Links))
	}
	if got := m.Links["abc"].From.NodeID; got != "a" {
		t.Errorf("link abc comes from %q, want the later link from a", got)
	}
}

func TestTenWayWidthLinear(t *testing.T) {
	for n := 1; n <= 10; n++ {
		m := build(t, flowtest.SplitN(n))
		want := float64(n)*layout.DefaultBaseWidth + float64(n-1)*layout.DefaultMarginX
		if m.Width != want {
			t.Errorf("SplitN(%d) width = %v, want %v", n, m.Width, want)
		}
	}

	m := build(t, flowtest.TenWaySplit())
	join := m.Nodes["join"]
	if want := (m.Width - layout.DefaultBaseWidth) / 2; join.Position.X != want {
		t.Errorf("join x = %v, want centered at %v", join.Position.X, want)
	}
}

func TestSizeMonotonic(t *testing.T) {
	base := flowtest.HugeFlow()
	baseTree, err := tree.Reconstruct(base)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	before := layout.MeasureTree(baseTree)

	mutations := map[string]func(g flow.Graph){
		"step in foreach body": func(g flow.Graph) {
			s := g["left_body"]
			s.Next = []string{"left_extra"}
			g["left_body"] = s
			g["left_extra"] = flow.Step{Type: flow.StepLinear, Next: []string{"left_join"}}
		},
		"extra branch": func(g flow.Graph) {
			s := g["split"]
			s.Next = append(s.Next, "middle")
			g["split"] = s
			g["middle"] = flow.Step{Type: flow.StepLinear, Next: []string{"join"}}
		},
		"step after join": func(g flow.Graph) {
			s := g["join"]
			s.Next = []string{"report"}
			g["join"] = s
			g["report"] = flow.Step{Type: flow.StepLinear, Next: []string{"end"}}
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			g := base.Clone()
			mutate(g)
			tr, err := tree.Reconstruct(g)
			if err != nil {
				t.Fatalf("Reconstruct() error = %v", err)
			}
			after := layout.MeasureTree(tr)
			if after.Width < before.Width || after.Height < before.Height {
				t.Errorf("size shrank from %+v to %+v", before, after)
			}
			if after == before {
				t.Errorf("size unchanged at %+v after adding a step", after)
			}
		})
	}
}

func TestBuildIdempotent(t *testing.T) {
	g := flowtest.TripleForeach()
	first, err := chart.Marshal(build(t, g))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for range 5 {
		again, err := chart.Marshal(build(t, g))
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Build() output differs between calls")
		}
	}
}

func TestStepsDoNotOverlap(t *testing.T) {
	fixtures := map[string]flow.Graph{
		"BasicSplit":    flowtest.BasicSplit(),
		"HugeFlow":      flowtest.HugeFlow(),
		"TripleForeach": flowtest.TripleForeach(),
		"TenWaySplit":   flowtest.TenWaySplit(),
	}

	for name, g := range fixtures {
		t.Run(name, func(t *testing.T) {
			m := build(t, g)
			steps := m.Steps()
			for i := range steps {
				a := steps[i]
				if a.Position.X < 0 || a.Position.Y < 0 ||
					a.Position.X+a.Size.Width > m.Width || a.Position.Y+a.Size.Height > m.Height {
					t.Errorf("%s at %+v lies outside %vx%v", a.ID, a.Position, m.Width, m.Height)
				}
				for _, b := range steps[i+1:] {
					if overlaps(a, b) {
						t.Errorf("%s at %+v overlaps %s at %+v", a.ID, a.Position, b.ID, b.Position)
					}
				}
			}
		})
	}
}

func TestContainersEncloseBranches(t *testing.T) {
	m := build(t, flowtest.HugeFlow())

	for _, c := range m.Containers() {
		for _, b := range c.Properties.Branches {
			n, ok := m.Nodes[b.StepName]
			if !ok {
				t.Errorf("branch %s of %s not in chart", b.StepName, c.ID)
				continue
			}
			if n.Position.X < c.Position.X || n.Position.X+n.Size.Width > c.Position.X+c.Size.Width {
				t.Errorf("branch %s x range escapes container %s", n.ID, c.ID)
			}
			if n.Position.Y != c.Position.Y {
				t.Errorf("branch %s y = %v, want container top %v", n.ID, n.Position.Y, c.Position.Y)
			}
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	m := layout.Build(nil)
	if len(m.Nodes) != 0 || len(m.Links) != 0 || m.Width != 0 || m.Height != 0 {
		t.Errorf("Build(nil) = %+v, want empty model", m)
	}
}

func assertPositions(t *testing.T, m chart.Model, want map[string]chart.Point) {
	t.Helper()
	for id, p := range want {
		n, ok := m.Nodes[id]
		if !ok {
			t.Errorf("node %s missing", id)
			continue
		}
		if n.Position != p {
			t.Errorf("%s position = %+v, want %+v", id, n.Position, p)
		}
	}
}

func overlaps(a, b chart.Node) bool {
	return a.Position.X < b.Position.X+b.Size.Width &&
		b.Position.X < a.Position.X+a.Size.Width &&
		a.Position.Y < b.Position.Y+b.Size.Height &&
		b.Position.Y < a.Position.Y+a.Size.Height
}
