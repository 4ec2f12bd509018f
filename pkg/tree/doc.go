// Package tree reconstructs the nested control structure of a workflow from
// its flat step graph.
//
// # Overview
//
// The workflow introspection service describes a run as a map of step name
// to successor list. That is enough to execute a flow, but not to draw it:
// a diagram needs to know which steps run in parallel, which ones repeat
// over a collection, and where the branches meet again. [Reconstruct]
// recovers that structure as a [Tree]:
//
//   - A Normal [Node] is one step. Its Children are what follows it.
//   - A Container [Node] groups the branches of a split-and (parallel) or a
//     foreach step. Each element of Branches is one branch.
//
// # Boxes and Barriers
//
// A step with box_next opens a box that box_ends closes. Every branch of the
// box reaches the closing join, so a naive walk would emit the join once per
// branch and nest everything after it inside the box. Reconstruct prevents
// this with a barrier set: while reconstructing a box body the join is a
// barrier and recursion stops there. The join is then reconstructed once,
// right after the Container, under the enclosing barriers.
//
// For a basic split:
//
//	start(split-and) ─┬─ a ─┬─ join ── end
//	                  └─ b ─┘
//
// Reconstruct yields:
//
//	start
//	└─ children
//	   ├─ Container(parallel)
//	   │  ├─ a
//	   │  └─ b
//	   └─ join
//	      └─ end
//
// [Outline] flattens this into the reading order [start, Container, join,
// end].
//
// # Errors
//
// The graph is validated with [flow.Validate] before reconstruction starts.
// A step reached again from within its own descendants returns
// [flow.ErrCyclicGraph] instead of recursing forever.
//
// Reconstruct is a pure function: the barrier set and the ancestry path are
// immutable values passed down the recursion, so repeated calls on the same
// graph return deep-equal trees.
package tree
