package tree

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/stepgraph/pkg/flow"
)

// =============================================================================
// Constants
// =============================================================================

// NodeType discriminates the two node variants.
type NodeType string

const (
	NodeNormal    NodeType = "normal"
	NodeContainer NodeType = "container"
)

// Kind distinguishes plain steps from foreach steps on Normal nodes.
type Kind string

const (
	KindNormal Kind = "normal"
	KindLoop   Kind = "loop"
)

// ContainerType tells how a Container's branches execute.
type ContainerType string

const (
	ContainerParallel ContainerType = "parallel"
	ContainerForeach  ContainerType = "foreach"
)

// RootPath is the path prefix of the top-level sequence. Container IDs in
// the chart model are built from it, and flow.Validate keeps step names out
// of that namespace.
const RootPath = flow.ContainerRoot

// =============================================================================
// Node - Tagged Union
// =============================================================================

// Tree is an ordered sequence of nodes. Within a Normal node's Children it
// reads top to bottom; within a Container's Branches each element is one
// branch, left to right.
type Tree []Node

// Node is one element of the reconstructed step tree.
//
// Exactly one variant is populated, selected by Type:
//   - NodeNormal: StepName, Kind, Children, Original.
//   - NodeContainer: ContainerType, Branches.
//
// Consumers switch on Type; the fields of the other variant are zero.
type Node struct {
	Type NodeType

	StepName string
	Kind     Kind
	Children Tree
	Original flow.Step

	ContainerType ContainerType
	Branches      Tree
}

// NewNormal returns a Normal node for the named step.
// Kind is derived from the step type.
func NewNormal(name string, step flow.Step, children Tree) Node {
	kind := KindNormal
	if step.IsForeach() {
		kind = KindLoop
	}
	return Node{
		Type:     NodeNormal,
		StepName: name,
		Kind:     kind,
		Children: children,
		Original: step,
	}
}

// NewContainer returns a Container node holding one sub-tree per branch.
func NewContainer(ct ContainerType, branches Tree) Node {
	return Node{
		Type:          NodeContainer,
		ContainerType: ct,
		Branches:      branches,
	}
}

// IsContainer reports whether n is a Container node.
func (n Node) IsContainer() bool { return n.Type == NodeContainer }

// IsLeaf reports whether n has nothing nested below it.
func (n Node) IsLeaf() bool {
	switch n.Type {
	case NodeContainer:
		return len(n.Branches) == 0
	default:
		return len(n.Children) == 0
	}
}

// Label returns the step name for Normal nodes and the container type for
// Containers.
func (n Node) Label() string {
	if n.Type == NodeContainer {
		return string(n.ContainerType)
	}
	return n.StepName
}

// =============================================================================
// JSON Encoding
// =============================================================================

type normalJSON struct {
	NodeType NodeType  `json:"node_type"`
	StepName string    `json:"step_name"`
	Kind     Kind      `json:"type"`
	Children Tree      `json:"children"`
	Original flow.Step `json:"original"`
}

type containerJSON struct {
	NodeType      NodeType      `json:"node_type"`
	ContainerType ContainerType `json:"container_type"`
	Branches      Tree          `json:"steps"`
}

// MarshalJSON encodes only the fields of the populated variant.
// Empty sequences are written as [] so consumers never see null.
func (n Node) MarshalJSON() ([]byte, error) {
	switch n.Type {
	case NodeNormal:
		children := n.Children
		if children == nil {
			children = Tree{}
		}
		return json.Marshal(normalJSON{NodeNormal, n.StepName, n.Kind, children, n.Original})
	case NodeContainer:
		branches := n.Branches
		if branches == nil {
			branches = Tree{}
		}
		return json.Marshal(containerJSON{NodeContainer, n.ContainerType, branches})
	default:
		return nil, fmt.Errorf("tree: unknown node type %q", n.Type)
	}
}

// UnmarshalJSON decodes either variant, selected by node_type.
func (n *Node) UnmarshalJSON(data []byte) error {
	var head struct {
		NodeType NodeType `json:"node_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.NodeType {
	case NodeNormal:
		var v normalJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*n = Node{Type: NodeNormal, StepName: v.StepName, Kind: v.Kind, Children: v.Children, Original: v.Original}
	case NodeContainer:
		var v containerJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*n = Node{Type: NodeContainer, ContainerType: v.ContainerType, Branches: v.Branches}
	default:
		return fmt.Errorf("tree: unknown node type %q", head.NodeType)
	}
	return nil
}

// =============================================================================
// Traversal
// =============================================================================

// ChildPath returns the path of the i-th element of the sequence at prefix.
func ChildPath(prefix string, i int) string {
	return prefix + "." + strconv.Itoa(i)
}

// WalkFunc is called for every node in pre-order. path identifies the node
// uniquely within the tree. Returning false skips the node's descendants.
type WalkFunc func(path string, depth int, n Node) bool

// Walk visits t depth-first in pre-order, starting at RootPath.
// A Normal node's children and a Container's branches are both visited as
// sequences nested under the node's own path.
func Walk(t Tree, fn WalkFunc) {
	walk(t, RootPath, 0, fn)
}

func walk(t Tree, prefix string, depth int, fn WalkFunc) {
	for i, n := range t {
		path := ChildPath(prefix, i)
		if !fn(path, depth, n) {
			continue
		}
		switch n.Type {
		case NodeContainer:
			walk(n.Branches, path, depth+1, fn)
		case NodeNormal:
			walk(n.Children, path, depth+1, fn)
		}
	}
}

// Outline flattens t into its spine: each Normal node with its children
// removed, followed by those children, and each Container unchanged.
//
// For a basic split this yields [start, Container(parallel, [a, b]), join,
// end], the order in which a reader scans the diagram top to bottom.
func Outline(t Tree) Tree {
	var out Tree
	for _, n := range t {
		switch n.Type {
		case NodeContainer:
			out = append(out, n)
		case NodeNormal:
			head := n
			head.Children = nil
			out = append(out, head)
			out = append(out, Outline(n.Children)...)
		}
	}
	return out
}

// Count returns the number of Normal nodes named name anywhere in t.
func Count(t Tree, name string) int {
	count := 0
	Walk(t, func(_ string, _ int, n Node) bool {
		if n.Type == NodeNormal && n.StepName == name {
			count++
		}
		return true
	})
	return count
}

// StepNames returns the names of all Normal nodes in pre-order.
func StepNames(t Tree) []string {
	var names []string
	Walk(t, func(_ string, _ int, n Node) bool {
		if n.Type == NodeNormal {
			names = append(names, n.StepName)
		}
		return true
	})
	return names
}

// Containers returns the number of Container nodes in t.
func Containers(t Tree) int {
	count := 0
	Walk(t, func(_ string, _ int, n Node) bool {
		if n.Type == NodeContainer {
			count++
		}
		return true
	})
	return count
}

// Depth returns the maximum nesting depth of t. An empty tree has depth 0.
func Depth(t Tree) int {
	deepest := 0
	Walk(t, func(_ string, depth int, _ Node) bool {
		deepest = max(deepest, depth+1)
		return true
	})
	return deepest
}
