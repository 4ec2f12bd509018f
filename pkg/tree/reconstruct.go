package tree

import (
	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
	"github.com/matzehuels/stepgraph/pkg/flow"
)

// Reconstruct converts a flat step graph into its nested step tree.
//
// The graph is validated first; a malformed graph is rejected as a whole
// and no partial tree is returned. Reconstruction starts at the "start" step
// with no barriers.
func Reconstruct(g flow.Graph) (Tree, error) {
	if err := flow.Validate(g); err != nil {
		return nil, err
	}
	r := reconstructor{graph: g}
	return r.frontier([]string{flow.StartStep}, nil, nil)
}

type reconstructor struct {
	graph flow.Graph
}

// frontier reconstructs each name independently under the same barriers and
// concatenates the results, one sibling per branch.
func (r reconstructor) frontier(names []string, barriers, ancestry nameSet) (Tree, error) {
	var out Tree
	for _, name := range names {
		sub, err := r.step(name, barriers, ancestry)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func (r reconstructor) step(name string, barriers, ancestry nameSet) (Tree, error) {
	if barriers.has(name) {
		return nil, nil
	}
	if ancestry.has(name) {
		return nil, apperrors.Wrap(apperrors.ErrCodeCyclicGraph, flow.ErrCyclicGraph,
			"step %q is reachable from itself", name)
	}

	s, ok := r.graph[name]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnknownStep, flow.ErrUnknownStep,
			"step %q is not defined", name)
	}

	inner := barriers
	if s.BoxEnds != "" {
		inner = barriers.with(s.BoxEnds)
	}
	ancestry = ancestry.with(name)

	var children Tree
	if s.BoxNext && name != flow.EndStep {
		branches, err := r.frontier(s.Next, inner, ancestry)
		if err != nil {
			return nil, err
		}
		ct := ContainerParallel
		if s.IsForeach() {
			ct = ContainerForeach
		}
		children = Tree{NewContainer(ct, branches)}

		if s.BoxEnds != "" {
			rest, err := r.frontier([]string{s.BoxEnds}, barriers, ancestry)
			if err != nil {
				return nil, err
			}
			children = append(children, rest...)
		}
	} else {
		var err error
		if children, err = r.frontier(s.Next, inner, ancestry); err != nil {
			return nil, err
		}
	}

	return Tree{NewNormal(name, s, children)}, nil
}

// nameSet is an immutable set of step names. with returns a new set and
// leaves the receiver untouched, so sets can be shared between sibling
// recursions.
type nameSet map[string]struct{}

func (s nameSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s nameSet) with(name string) nameSet {
	if s.has(name) {
		return s
	}
	out := make(nameSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	out[name] = struct{}{}
	return out
}
