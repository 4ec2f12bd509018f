package flow

import (
	"strings"

	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
)

// Validate checks that g is a usable workflow graph.
//
// Steps are checked in sorted name order so the reported error is the same
// on every run. The first violation found is returned; nil means every
// referenced name exists, every type is enumerated, and every box can close.
func Validate(g Graph) error {
	if _, ok := g[StartStep]; !ok {
		return apperrors.Wrap(apperrors.ErrCodeMissingStart, ErrMissingStart, "graph must define a %q step", StartStep)
	}

	for _, name := range g.Names() {
		if err := apperrors.ValidateStepName(name); err != nil {
			return err
		}
		if strings.HasPrefix(name, ContainerRoot+".") {
			return apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrReservedStepName,
				"step %q collides with container IDs (%s.*)", name, ContainerRoot)
		}
		if err := validateStep(g, name, g[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(g Graph, name string, s Step) error {
	if !s.Type.Valid() {
		return apperrors.Wrap(apperrors.ErrCodeUnknownStepType, ErrUnknownStepType,
			"step %q has type %q", name, s.Type)
	}

	for _, next := range s.Next {
		if _, ok := g[next]; !ok {
			return apperrors.Wrap(apperrors.ErrCodeUnknownStep, ErrUnknownStep,
				"step %q lists undefined successor %q", name, next)
		}
	}

	if s.BoxEnds != "" {
		if _, ok := g[s.BoxEnds]; !ok {
			return apperrors.Wrap(apperrors.ErrCodeUnknownStep, ErrUnknownStep,
				"step %q is closed by undefined step %q", name, s.BoxEnds)
		}
	}

	if !s.BoxNext || name == EndStep {
		return nil
	}
	if len(s.Next) == 0 {
		return apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrInvalidBox,
			"step %q opens a box with no branches", name)
	}
	if s.BoxEnds == "" {
		return apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrInvalidBox,
			"step %q opens a box without box_ends", name)
	}
	if !reachable(g, s.Next, s.BoxEnds) {
		return apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrInvalidBox,
			"step %q is closed by %q, which is not reachable from its branches", name, s.BoxEnds)
	}
	return nil
}

// reachable reports whether target can be reached by following next edges
// from any of the given roots (roots themselves included).
func reachable(g Graph, roots []string, target string) bool {
	seen := make(map[string]bool, len(g))
	queue := append([]string(nil), roots...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if name == target {
			return true
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		queue = append(queue, g[name].Next...)
	}
	return false
}
