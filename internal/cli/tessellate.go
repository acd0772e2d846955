package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voronoimap/pkg/dataset"
	"voronoimap/pkg/hierarchy"
	"voronoimap/pkg/tessellate"
)

// tessellateCommand creates the tessellate command, which exports the raw
// polygon set (all depths) as JSON without rendering a figure.
func (c *CLI) tessellateCommand() *cobra.Command {
	var (
		output      string
		sides       int
		timeout     int
		node        string
		nodeModules string
	)

	cmd := &cobra.Command{
		Use:   "tessellate [file]",
		Short: "Compute the Voronoi tessellation and export the polygons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			logger := loggerFromContext(cmd.Context())

			rows, err := dataset.ImportCSV(input)
			if err != nil {
				return err
			}
			root := hierarchy.Build(rows)
			logger.Infof("Loaded %d rows across %d continents", len(rows), len(root.Children))

			tess := tessellate.New(logger)
			if node != "" {
				tess.Command = node
			}
			if nodeModules != "" {
				tess.NodeModules = nodeModules
			}
			if sides != 0 {
				tess.Sides = sides
			}
			if timeout != 0 {
				tess.Timeout = time.Duration(timeout) * time.Second
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Computing Voronoi tessellation...")
			spinner.Start()
			polygons, err := tess.Run(cmd.Context(), root)
			if err != nil {
				spinner.StopWithError(fmt.Sprintf("Tessellation failed: %v", err))
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Computed %d polygons", len(polygons)))

			data, err := tessellate.MarshalPolygons(polygons)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = strings.TrimSuffix(input, filepath.Ext(input)) + "_polygons.json"
			}
			if err := writeArtifact(path, data); err != nil {
				return err
			}
			if path != "-" {
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <input>_polygons.json, '-' for stdout)")
	cmd.Flags().IntVar(&sides, "sides", 0, "clip boundary vertex count (default 360)")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "tessellation timeout in seconds (default 60)")
	cmd.Flags().StringVar(&node, "node", "", "tessellator command (default \"node\")")
	cmd.Flags().StringVar(&nodeModules, "node-modules", "", "node_modules directory containing d3-voronoi-treemap")

	return cmd
}
