package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/tree"
)

// Output styles for the tree command.
const (
	treeStyleOutline = "outline"
	treeStyleCompact = "compact"
	treeStyleJSON    = "json"
)

// treeCommand creates the tree command, which validates a graph and prints
// its reconstructed structure.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		style string
		flat  bool
	)

	cmd := &cobra.Command{
		Use:   "tree [graph.json]",
		Short: "Validate a step graph and print its reconstructed tree",
		Long: `Validate a step graph and print its reconstructed tree.

Parallel and foreach containers are shown with their branches nested below
them. Use --flat to lift each step's successors to its own level, giving the
top-to-bottom reading order, and --style to choose between an indented outline, a one-line
compact form, or the tree as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), args[0], style, flat)
		},
	}

	cmd.Flags().StringVar(&style, "style", treeStyleOutline, "output style: outline, compact, json")
	cmd.Flags().BoolVar(&flat, "flat", false, "flatten successors into reading order")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, input, style string, flat bool) error {
	prog := newProgress(loggerFromContext(ctx))

	g, err := flow.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	t, err := tree.Reconstruct(g)
	if err != nil {
		return fmt.Errorf("reconstruct %s: %w", input, err)
	}
	prog.done(fmt.Sprintf("Reconstructed %d steps", len(g)))

	if flat {
		t = tree.Outline(t)
	}

	switch style {
	case treeStyleOutline:
		if err := tree.Fprint(c.Out, t); err != nil {
			return err
		}
		fmt.Fprintln(c.Out)
		printKeyValue(c.Out, "steps", strconv.Itoa(len(tree.StepNames(t))))
		printKeyValue(c.Out, "containers", strconv.Itoa(tree.Containers(t)))
		printKeyValue(c.Out, "depth", strconv.Itoa(tree.Depth(t)))
		return nil
	case treeStyleCompact:
		_, err := fmt.Fprintln(c.Out, tree.Compact(t))
		return err
	case treeStyleJSON:
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	default:
		return apperrors.New(apperrors.ErrCodeInvalidStyle, "invalid style: %s (must be %q, %q, or %q)", style, treeStyleOutline, treeStyleCompact, treeStyleJSON)
	}
}
