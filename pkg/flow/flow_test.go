package flow_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/flow/flowtest"
)

func TestValidateFixtures(t *testing.T) {
	fixtures := map[string]flow.Graph{
		"Linear":        flowtest.Linear(),
		"BasicSplit":    flowtest.BasicSplit(),
		"HugeFlow":      flowtest.HugeFlow(),
		"TripleForeach": flowtest.TripleForeach(),
		"TenWaySplit":   flowtest.TenWaySplit(),
	}
	for name, g := range fixtures {
		t.Run(name, func(t *testing.T) {
			if err := flow.Validate(g); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(g flow.Graph)
		sentinel error
		code     apperrors.Code
	}{
		{
			name:     "missing start",
			mutate:   func(g flow.Graph) { delete(g, "start") },
			sentinel: flow.ErrMissingStart,
			code:     apperrors.ErrCodeMissingStart,
		},
		{
			name: "unknown type",
			mutate: func(g flow.Graph) {
				s := g["a"]
				s.Type = "split-or"
				g["a"] = s
			},
			sentinel: flow.ErrUnknownStepType,
			code:     apperrors.ErrCodeUnknownStepType,
		},
		{
			name: "dangling next",
			mutate: func(g flow.Graph) {
				s := g["a"]
				s.Next = []string{"missing"}
				g["a"] = s
			},
			sentinel: flow.ErrUnknownStep,
			code:     apperrors.ErrCodeUnknownStep,
		},
		{
			name: "dangling box_ends",
			mutate: func(g flow.Graph) {
				s := g["start"]
				s.BoxEnds = "nowhere"
				g["start"] = s
			},
			sentinel: flow.ErrUnknownStep,
			code:     apperrors.ErrCodeUnknownStep,
		},
		{
			name: "box without box_ends",
			mutate: func(g flow.Graph) {
				s := g["start"]
				s.BoxEnds = ""
				g["start"] = s
			},
			sentinel: flow.ErrInvalidBox,
			code:     apperrors.ErrCodeInvalidGraph,
		},
		{
			name: "box without branches",
			mutate: func(g flow.Graph) {
				s := g["start"]
				s.Next = nil
				g["start"] = s
			},
			sentinel: flow.ErrInvalidBox,
			code:     apperrors.ErrCodeInvalidGraph,
		},
		{
			name: "box_ends unreachable",
			mutate: func(g flow.Graph) {
				s := g["start"]
				s.BoxEnds = "end"
				g["start"] = s
				g["join"] = flow.Step{Type: flow.StepJoin, Next: []string{}}
			},
			sentinel: flow.ErrInvalidBox,
			code:     apperrors.ErrCodeInvalidGraph,
		},
		{
			name: "step named like a container",
			mutate: func(g flow.Graph) {
				g["node.0.0"] = flow.Step{Type: flow.StepLinear, Next: []string{"join"}}
				s := g["start"]
				s.Next = append(s.Next, "node.0.0")
				g["start"] = s
			},
			sentinel: flow.ErrReservedStepName,
			code:     apperrors.ErrCodeInvalidGraph,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := flowtest.BasicSplit()
			tt.mutate(g)

			err := flow.Validate(g)
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Validate() error = %v, want %v", err, tt.sentinel)
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Errorf("Validate() code = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestValidateContainerRootAlone(t *testing.T) {
	// Only "node." names collide with container IDs.
	g := flowtest.Linear()
	g["node"] = flow.Step{Type: flow.StepLinear, Next: []string{"end"}}
	a := g["a"]
	a.Next = []string{"node"}
	g["a"] = a

	if err := flow.Validate(g); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidateEndMayFlagBox(t *testing.T) {
	g := flowtest.Linear()
	end := g["end"]
	end.BoxNext = true
	g["end"] = end

	if err := flow.Validate(g); err != nil {
		t.Errorf("Validate() error = %v, want nil for end step with box_next", err)
	}
}

func TestValidateDeterministicError(t *testing.T) {
	g := flowtest.Linear()
	g["x"] = flow.Step{Type: flow.StepLinear, Next: []string{"missing-x"}}
	g["y"] = flow.Step{Type: flow.StepLinear, Next: []string{"missing-y"}}

	first := flow.Validate(g)
	for range 10 {
		if err := flow.Validate(g); err.Error() != first.Error() {
			t.Fatalf("Validate() error changed between runs: %v vs %v", first, err)
		}
	}
	if !strings.Contains(first.Error(), "missing-x") {
		t.Errorf("Validate() should report the first step in name order, got %v", first)
	}
}

func TestParse(t *testing.T) {
	g, err := flow.Parse([]byte(flowtest.BasicSplitJSON))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(g) != 5 {
		t.Errorf("len(g) = %d, want 5", len(g))
	}
	start := g["start"]
	if !start.BoxNext || start.BoxEnds != "join" {
		t.Errorf("start = %+v, want box_next with box_ends join", start)
	}
	if start.Doc != "Fan out." {
		t.Errorf("start.Doc = %q, want %q", start.Doc, "Fan out.")
	}
	if g["a"].BoxEnds != "" {
		t.Errorf("null box_ends should decode to empty, got %q", g["a"].BoxEnds)
	}
	if got := g.LinkCount(); got != 5 {
		t.Errorf("LinkCount() = %d, want 5", got)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  apperrors.Code
	}{
		{"not json", `{"start":`, apperrors.ErrCodeInvalidGraph},
		{"array", `[]`, apperrors.ErrCodeInvalidGraph},
		{"empty object", `{}`, apperrors.ErrCodeInvalidGraph},
		{"next not array", `{"start": {"type": "start", "next": "end"}}`, apperrors.ErrCodeInvalidGraph},
		{"missing next", `{"start": {"type": "start"}}`, apperrors.ErrCodeInvalidGraph},
		{"box_next not bool", `{"start": {"type": "start", "next": [], "box_next": "yes"}}`, apperrors.ErrCodeInvalidGraph},
		{"no start", `{"a": {"type": "linear", "next": []}}`, apperrors.ErrCodeMissingStart},
		{"bad type", `{"start": {"type": "loop", "next": []}}`, apperrors.ErrCodeUnknownStepType},
		{"dangling", `{"start": {"type": "start", "next": ["ghost"]}}`, apperrors.ErrCodeUnknownStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flow.Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Errorf("Parse() code = %v, want %v (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestMarshalGraphDeterministic(t *testing.T) {
	g := flowtest.HugeFlow()

	first, err := flow.MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error = %v", err)
	}
	for range 5 {
		data, err := flow.MarshalGraph(g.Clone())
		if err != nil {
			t.Fatalf("MarshalGraph() error = %v", err)
		}
		if !bytes.Equal(first, data) {
			t.Fatal("MarshalGraph() output differs between calls")
		}
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	want := flowtest.TripleForeach()

	if err := flow.WriteGraphFile(want, path); err != nil {
		t.Fatalf("WriteGraphFile() error = %v", err)
	}

	got, err := flow.ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for name, s := range want {
		if got[name].BoxEnds != s.BoxEnds || got[name].Type != s.Type {
			t.Errorf("step %s = %+v, want %+v", name, got[name], s)
		}
	}
}

func TestReadGraphFileMissing(t *testing.T) {
	_, err := flow.ReadGraphFile(filepath.Join(t.TempDir(), "nope.json"))
	if !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("ReadGraphFile() error = %v, want FILE_NOT_FOUND", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadGraphFile() error should wrap os.ErrNotExist")
	}
}

func TestStepTypeValid(t *testing.T) {
	for _, st := range flow.StepTypes {
		if !st.Valid() {
			t.Errorf("%q.Valid() = false", st)
		}
	}
	for _, st := range []flow.StepType{"", "split-or", "START"} {
		if st.Valid() {
			t.Errorf("%q.Valid() = true", st)
		}
	}
}
