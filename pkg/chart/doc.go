// Package chart defines the chart model produced by the layout engine.
//
// A [Model] is what a box-and-link diagram renderer consumes: a map of
// positioned nodes, a map of links between node ports, and fixed viewport
// defaults (offset {0,0}, scale 1, readonly). Positions are absolute pixels
// with the origin at the top-left corner.
//
// Two kinds of node share the node map:
//
//   - Step nodes are keyed by step name. They carry an "in" port unless the
//     step is "start" and an "out" port unless the step has no successors.
//   - Container nodes are keyed by their tree path (for example "node.0.0").
//     They span the footprint of their branches and have no ports.
//
// Every node keeps the tree node it was laid out from in Properties.
//
// Links are keyed by the concatenation of source and target IDs. Encoding a
// model with [Marshal] is deterministic.
package chart
