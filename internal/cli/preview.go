package cli

import (
	"context"

	"github.com/spf13/cobra"

	"voronoimap/pkg/pipeline"
	"voronoimap/pkg/preview"
)

// previewCommand creates the preview command, which renders a dataset and
// serves the HTML figure over a local HTTP listener instead of writing files.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		addr string
		opts renderOpts
	)

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Render a dataset and serve the figure in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			logger := loggerFromContext(cmd.Context())

			popts, err := opts.pipelineOptions(input)
			if err != nil {
				return err
			}
			popts.Formats = []string{pipeline.FormatHTML}

			runner := pipeline.NewRunner(logger)
			result, err := runner.Execute(cmd.Context(), popts)
			if err != nil {
				printError("Render failed: %v", err)
				return err
			}
			html, ok := result.Artifacts[pipeline.FormatHTML]
			if !ok {
				printWarning("Nothing to preview: the tessellation produced no country cells")
				return nil
			}

			server := preview.New(html, "text/html; charset=utf-8", logger)
			url, err := server.Start(addr)
			if err != nil {
				return err
			}
			defer server.Shutdown(context.Background())

			printSuccess("Serving %s", input)
			printKeyValue("URL", url)
			printDetail("Press Ctrl+C to stop")

			if opts.open {
				if err := preview.OpenBrowser(url); err != nil {
					logger.Warn("could not open browser", "url", url, "error", err)
				}
			}

			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", preview.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&opts.open, "open", true, "open the figure in the browser")
	cmd.Flags().BoolVar(&opts.flags, "flags", false, "render flag glyphs for rows with a flag column")
	cmd.Flags().StringVar(&opts.title, "title", "", "figure title")
	cmd.Flags().IntVar(&opts.sides, "sides", 0, "clip boundary vertex count (default 360)")
	cmd.Flags().IntVar(&opts.timeout, "timeout", 0, "tessellation timeout in seconds (default 60)")
	cmd.Flags().StringVar(&opts.node, "node", "", "tessellator command (default \"node\")")
	cmd.Flags().StringVar(&opts.nodeModules, "node-modules", "", "node_modules directory containing d3-voronoi-treemap")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML config file with render defaults")

	return cmd
}
