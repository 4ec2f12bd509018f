package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
	"github.com/matzehuels/stepgraph/pkg/pipeline"
)

// layoutFlags are the box size flags shared by layout, render and serve.
// Only flags set on the command line override the config file.
type layoutFlags struct {
	baseWidth  float64
	baseHeight float64
	marginX    float64
	marginY    float64
}

func (f *layoutFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.baseWidth, "base-width", 0, "step box width (default 200)")
	fs.Float64Var(&f.baseHeight, "base-height", 0, "step box height (default 60)")
	fs.Float64Var(&f.marginX, "margin-x", 0, "horizontal spacing (default 40)")
	fs.Float64Var(&f.marginY, "margin-y", 0, "vertical spacing (default 40)")
}

// apply copies the flags the user set into opts.
func (f *layoutFlags) apply(fs *pflag.FlagSet, opts *pipeline.Options) {
	if fs.Changed("base-width") {
		opts.BaseWidth = f.baseWidth
	}
	if fs.Changed("base-height") {
		opts.BaseHeight = f.baseHeight
	}
	if fs.Changed("margin-x") {
		opts.MarginX = f.marginX
	}
	if fs.Changed("margin-y") {
		opts.MarginY = f.marginY
	}
}

// layoutCommand creates the layout command, which writes the chart model.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		sizes   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute the chart model for a step graph",
		Long: `Compute the chart model for a step graph.

The chart model is a JSON document of positioned nodes, containers, ports and
links that a diagram editor can load directly. It is written to stdout unless
--output is given.

Results are cached (see 'stepgraph cache') for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineDefaults()
			sizes.apply(cmd.Flags(), &opts)
			opts.Formats = []string{pipeline.FormatJSON}
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	sizes.register(cmd.Flags())

	return cmd
}

// runLayout runs the pipeline and writes the chart JSON.
func (c *CLI) runLayout(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	if output != "" {
		if err := apperrors.ValidateOutputPath(output); err != nil {
			return err
		}
	}

	payload, err := readPayload(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, c.Err, "Computing layout...")
	spin.Start()
	result, err := runner.Execute(ctx, payload, opts)
	if err != nil {
		spin.StopWithError("Layout failed")
		return err
	}
	spin.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data := result.Artifacts[pipeline.FormatJSON]
	if output == "" {
		_, err := fmt.Fprintf(c.Out, "%s\n", data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess(c.Out, "Layout complete (%.0f × %.0f)", result.Chart.Width, result.Chart.Height)
	printFile(c.Out, output)
	printStats(c.Out, result.Stats, result.CacheInfo.ChartHit)
	printNextStep(c.Out, "Render", "stepgraph render "+input+" -f svg")
	return nil
}

// readPayload reads a graph file, mapping a missing file to FILE_NOT_FOUND.
func readPayload(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "graph file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
