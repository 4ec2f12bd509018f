package flow

import (
	"errors"
	"maps"
	"slices"
)

// StartStep is the step every graph must contain; reconstruction begins here.
const StartStep = "start"

// EndStep is the terminal step. It never opens a box, even when flagged.
const EndStep = "end"

// ContainerRoot is the root of the IDs a chart gives to containers
// ("node.0", "node.0.1", ...). Step names share the chart's node map, so none
// may start with ContainerRoot followed by a dot.
const ContainerRoot = "node"

var (
	// ErrMissingStart is returned when the graph has no "start" step.
	ErrMissingStart = errors.New("graph has no start step")

	// ErrUnknownStep is returned when a next or box_ends entry names a step
	// that is not defined in the graph.
	ErrUnknownStep = errors.New("unknown step")

	// ErrUnknownStepType is returned when a step's type is not one of the
	// six enumerated values.
	ErrUnknownStepType = errors.New("unknown step type")

	// ErrInvalidBox is returned when a step opens a box that is never closed:
	// box_next without box_ends, an empty next list, or a box_ends step that
	// is not reachable from next.
	ErrInvalidBox = errors.New("invalid box")

	// ErrReservedStepName is returned when a step name falls in the
	// container ID namespace.
	ErrReservedStepName = errors.New("reserved step name")

	// ErrInvalidPayload is returned when the JSON payload does not match the
	// graph schema.
	ErrInvalidPayload = errors.New("invalid graph payload")

	// ErrCyclicGraph is returned when a step is reached again from inside its
	// own descendants.
	ErrCyclicGraph = errors.New("cyclic graph detected")
)

// StepType is the closed set of step kinds a workflow graph may contain.
type StepType string

const (
	StepStart    StepType = "start"
	StepLinear   StepType = "linear"
	StepSplitAnd StepType = "split-and"
	StepForeach  StepType = "foreach"
	StepJoin     StepType = "join"
	StepEnd      StepType = "end"
)

// StepTypes lists every valid StepType in declaration order.
var StepTypes = []StepType{StepStart, StepLinear, StepSplitAnd, StepForeach, StepJoin, StepEnd}

// Valid reports whether t is one of the enumerated step types.
func (t StepType) Valid() bool {
	return slices.Contains(StepTypes, t)
}

// Step describes one node of the flat workflow graph, as produced by the
// workflow introspection service.
type Step struct {
	Type StepType `json:"type" bson:"type"`

	// Next lists successor step names. Order is significant: for split and
	// foreach steps it is the branch order.
	Next []string `json:"next" bson:"next"`

	// BoxNext is set when this step opens a parallel or foreach box.
	BoxNext bool `json:"box_next" bson:"box_next"`

	// BoxEnds names the join step that closes the box opened by this step.
	BoxEnds string `json:"box_ends,omitempty" bson:"box_ends,omitempty"`

	// Doc is the step's docstring, if the service provides one. Renderers
	// show it as a tooltip; reconstruction ignores it.
	Doc string `json:"doc,omitempty" bson:"doc,omitempty"`
}

// IsForeach reports whether the step fans out over a collection.
func (s Step) IsForeach() bool { return s.Type == StepForeach }

// Graph is the flat step graph keyed by step name.
type Graph map[string]Step

// Names returns all step names in sorted order.
func (g Graph) Names() []string {
	return slices.Sorted(maps.Keys(g))
}

// Step returns the step with the given name and whether it exists.
func (g Graph) Step(name string) (Step, bool) {
	s, ok := g[name]
	return s, ok
}

// LinkCount returns the total number of successor edges in the graph.
func (g Graph) LinkCount() int {
	n := 0
	for _, s := range g {
		n += len(s.Next)
	}
	return n
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for name, s := range g {
		s.Next = slices.Clone(s.Next)
		out[name] = s
	}
	return out
}
