package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stepgraph/internal/server"
)

// serveCommand creates the serve command, which exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr         string
		maxBodyBytes int64
		cachePrefix  string
		noCache      bool
		sizes        layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		Long: `Serve the layout pipeline over HTTP.

  POST /v1/layout   graph payload in, chart model (or ?format=svg|dot|png|pdf) out
  GET  /healthz     liveness probe
  GET  /version     build information

Box sizes from the config file and flags are the defaults for every request;
query parameters override them. Instances sharing a Redis or MongoDB cache
can keep their entries apart with --cache-prefix (or [cache] prefix).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && c.config.Server.Addr != "" {
				addr = c.config.Server.Addr
			}
			if !cmd.Flags().Changed("max-body-bytes") && c.config.Server.MaxBodyBytes > 0 {
				maxBodyBytes = c.config.Server.MaxBodyBytes
			}
			if cmd.Flags().Changed("cache-prefix") {
				c.config.Cache.Prefix = cachePrefix
			}

			defaults := c.pipelineDefaults()
			sizes.apply(cmd.Flags(), &defaults)
			if err := defaults.ValidateForLayout(); err != nil {
				return err
			}
			defaults.Logger = nil

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, c.Logger,
				server.WithDefaults(defaults),
				server.WithMaxBodyBytes(maxBodyBytes))
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&maxBodyBytes, "max-body-bytes", server.DefaultMaxBodyBytes, "largest accepted graph payload")
	cmd.Flags().StringVar(&cachePrefix, "cache-prefix", "", "namespace for cache keys (overrides [cache] prefix)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	sizes.register(cmd.Flags())

	return cmd
}
