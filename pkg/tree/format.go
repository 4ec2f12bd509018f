package tree

import (
	"fmt"
	"io"
	"strings"
)

// Compact returns a one-line rendering of t.
//
// Normal nodes print their step name followed by their children in braces;
// Containers print their type followed by their branches in brackets:
//
//	start{parallel[a,b],join{end}}
func Compact(t Tree) string {
	var sb strings.Builder
	writeCompact(&sb, t)
	return sb.String()
}

func writeCompact(sb *strings.Builder, t Tree) {
	for i, n := range t {
		if i > 0 {
			sb.WriteByte(',')
		}
		switch n.Type {
		case NodeContainer:
			sb.WriteString(string(n.ContainerType))
			sb.WriteByte('[')
			writeCompact(sb, n.Branches)
			sb.WriteByte(']')
		case NodeNormal:
			sb.WriteString(n.StepName)
			if len(n.Children) > 0 {
				sb.WriteByte('{')
				writeCompact(sb, n.Children)
				sb.WriteByte('}')
			}
		}
	}
}

// Fprint writes t to w as an indented outline, one node per line.
func Fprint(w io.Writer, t Tree) error {
	var err error
	Walk(t, func(_ string, depth int, n Node) bool {
		if err != nil {
			return false
		}
		indent := strings.Repeat("  ", depth)
		switch n.Type {
		case NodeContainer:
			_, err = fmt.Fprintf(w, "%s[%s] %d branches\n", indent, n.ContainerType, len(n.Branches))
		case NodeNormal:
			suffix := ""
			if n.Kind == KindLoop {
				suffix = " (loop)"
			}
			_, err = fmt.Fprintf(w, "%s%s%s\n", indent, n.StepName, suffix)
		}
		return err == nil
	})
	return err
}
