// Package flowtest provides workflow graph fixtures for tests.
//
// The fixtures cover the shapes the reconstructor has to get right: a plain
// chain, a basic split, foreach boxes nested inside split branches, three
// foreach levels closing in reverse order, and a wide static split.
package flowtest

import (
	"fmt"

	"github.com/matzehuels/stepgraph/pkg/flow"
)

// Linear returns start → a → end with no boxes.
func Linear() flow.Graph {
	return flow.Graph{
		"start": {Type: flow.StepStart, Next: []string{"a"}},
		"a":     {Type: flow.StepLinear, Next: []string{"end"}},
		"end":   {Type: flow.StepEnd, Next: []string{}},
	}
}

// BasicSplit returns a start step that splits into a and b, joined at join.
func BasicSplit() flow.Graph {
	return flow.Graph{
		"start": {Type: flow.StepSplitAnd, Next: []string{"a", "b"}, BoxNext: true, BoxEnds: "join"},
		"a":     {Type: flow.StepLinear, Next: []string{"join"}},
		"b":     {Type: flow.StepLinear, Next: []string{"join"}},
		"join":  {Type: flow.StepJoin, Next: []string{"end"}},
		"end":   {Type: flow.StepEnd, Next: []string{}},
	}
}

// HugeFlow returns a split whose two branches each open and close their own
// foreach box before converging on the shared outer join.
func HugeFlow() flow.Graph {
	return flow.Graph{
		"start":      {Type: flow.StepStart, Next: []string{"split"}},
		"split":      {Type: flow.StepSplitAnd, Next: []string{"left", "right"}, BoxNext: true, BoxEnds: "join"},
		"left":       {Type: flow.StepForeach, Next: []string{"left_body"}, BoxNext: true, BoxEnds: "left_join"},
		"left_body":  {Type: flow.StepLinear, Next: []string{"left_join"}},
		"left_join":  {Type: flow.StepJoin, Next: []string{"join"}},
		"right":      {Type: flow.StepForeach, Next: []string{"right_body"}, BoxNext: true, BoxEnds: "right_join"},
		"right_body": {Type: flow.StepLinear, Next: []string{"right_post"}},
		"right_post": {Type: flow.StepLinear, Next: []string{"right_join"}},
		"right_join": {Type: flow.StepJoin, Next: []string{"join"}},
		"join":       {Type: flow.StepJoin, Next: []string{"end"}},
		"end":        {Type: flow.StepEnd, Next: []string{}},
	}
}

// TripleForeach returns three foreach boxes nested inside each other,
// closing at join_level3, join_level2 and join_level1 in that order.
func TripleForeach() flow.Graph {
	return flow.Graph{
		"start":       {Type: flow.StepStart, Next: []string{"level1"}},
		"level1":      {Type: flow.StepForeach, Next: []string{"level2"}, BoxNext: true, BoxEnds: "join_level1"},
		"level2":      {Type: flow.StepForeach, Next: []string{"level3"}, BoxNext: true, BoxEnds: "join_level2"},
		"level3":      {Type: flow.StepForeach, Next: []string{"work"}, BoxNext: true, BoxEnds: "join_level3"},
		"work":        {Type: flow.StepLinear, Next: []string{"join_level3"}},
		"join_level3": {Type: flow.StepJoin, Next: []string{"join_level2"}},
		"join_level2": {Type: flow.StepJoin, Next: []string{"join_level1"}},
		"join_level1": {Type: flow.StepJoin, Next: []string{"end"}},
		"end":         {Type: flow.StepEnd, Next: []string{}},
	}
}

// SplitN returns a start step splitting into n branches b0..b(n-1), all
// converging on join.
func SplitN(n int) flow.Graph {
	g := flow.Graph{
		"join": {Type: flow.StepJoin, Next: []string{"end"}},
		"end":  {Type: flow.StepEnd, Next: []string{}},
	}
	branches := BranchNames(n)
	for _, b := range branches {
		g[b] = flow.Step{Type: flow.StepLinear, Next: []string{"join"}}
	}
	g["start"] = flow.Step{Type: flow.StepSplitAnd, Next: branches, BoxNext: true, BoxEnds: "join"}
	return g
}

// TenWaySplit returns SplitN(10).
func TenWaySplit() flow.Graph { return SplitN(10) }

// BranchNames returns the branch step names used by SplitN.
func BranchNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("b%d", i)
	}
	return names
}

// BasicSplitJSON is BasicSplit as the introspection service sends it.
const BasicSplitJSON = `{
  "start": {"type": "split-and", "next": ["a", "b"], "box_next": true, "box_ends": "join", "doc": "Fan out."},
  "a":     {"type": "linear", "next": ["join"], "box_next": false, "box_ends": null},
  "b":     {"type": "linear", "next": ["join"], "box_next": false, "box_ends": null},
  "join":  {"type": "join", "next": ["end"], "box_next": false, "box_ends": null},
  "end":   {"type": "end", "next": [], "box_next": false, "box_ends": null}
}`
