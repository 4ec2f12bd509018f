// Package layout assigns sizes and absolute positions to a step tree and
// wires its links, producing a [chart.Model].
//
// # Measurement
//
// [Measure] computes the footprint of a node bottom-up. Chains grow the
// diagram downward and branches grow it sideways:
//
//	step, no children   BaseWidth × BaseHeight
//	step with children  max(child widths) × (BaseHeight + Σ(child height + MarginY))
//	container           Σ(branch widths) + MarginX·(n−1) × max(branch heights)
//
// # Placement
//
// [Build] walks the tree top-down with a cursor. Within a chain the cursor
// moves down by each node's height plus MarginY and every node is centered
// under the footprint reserved by its parent. Within a container the cursor
// moves right by each branch's width plus MarginX and every branch starts at
// the container's top edge.
//
// Step nodes are keyed by step name; containers are keyed by their tree path
// ("node.0.0", ...), which is unique per nesting position. Links are derived
// from each step's declared successors.
//
// Example:
//
//	t, err := tree.Reconstruct(g)
//	if err != nil {
//	    return err
//	}
//	m := layout.Build(t, layout.WithMargins(60, 40))
package layout
