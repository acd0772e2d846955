package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voronoimap/pkg/pipeline"
	"voronoimap/pkg/preview"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string // output file path (or base path for multiple formats)
	formats     string // comma-separated output formats
	flags       bool   // render flag glyphs from the dataset's flag column
	title       string // figure title
	sides       int    // clip boundary vertex count
	timeout     int    // tessellation timeout in seconds
	node        string // tessellator command
	nodeModules string // node_modules directory for the driver script
	configPath  string // optional TOML config file
	open        bool   // open the rendered figure in the browser
}

// renderCommand creates the render command for generating figures.
//
// Default settings:
//   - format: html (self-contained interactive figure)
//   - output: input path with the format extension
//   - sides: 360 (near-circular clip boundary)
//   - timeout: 60s for the external tessellation
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a dataset as a Voronoi treemap figure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple), '-' for stdout")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): html (default), svg, png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.flags, "flags", false, "render flag glyphs for rows with a flag column")
	cmd.Flags().StringVar(&opts.title, "title", "", "figure title")
	cmd.Flags().IntVar(&opts.sides, "sides", 0, "clip boundary vertex count (default 360)")
	cmd.Flags().IntVar(&opts.timeout, "timeout", 0, "tessellation timeout in seconds (default 60)")
	cmd.Flags().StringVar(&opts.node, "node", "", "tessellator command (default \"node\")")
	cmd.Flags().StringVar(&opts.nodeModules, "node-modules", "", "node_modules directory containing d3-voronoi-treemap")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML config file with render defaults")
	cmd.Flags().BoolVar(&opts.open, "open", false, "open the rendered HTML figure in the browser")

	return cmd
}

// pipelineOptions translates the command flags into pipeline options,
// layering in the config file where flags are unset.
func (o *renderOpts) pipelineOptions(input string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Input:       input,
		Command:     o.node,
		NodeModules: o.nodeModules,
		Sides:       o.sides,
		Timeout:     time.Duration(o.timeout) * time.Second,
		Title:       o.title,
		Flags:       o.flags,
	}
	if o.formats != "" {
		opts.Formats = parseFormats(o.formats)
	}
	if err := applyConfig(o.configPath, &opts); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	logger := loggerFromContext(cmd.Context())
	logger.Infof("Rendering %s", input)

	popts, err := opts.pipelineOptions(input)
	if err != nil {
		return err
	}
	// Defaults must be applied here, not just inside Execute: the write
	// loop below iterates popts.Formats, and Execute only defaults its
	// own copy.
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if opts.output == "-" && len(popts.Formats) > 1 {
		return fmt.Errorf("writing to stdout supports a single format, got %v", popts.Formats)
	}

	prog := newProgress(logger)
	runner := pipeline.NewRunner(logger)
	result, err := runner.Execute(cmd.Context(), popts)
	if err != nil {
		printError("Render failed: %v", err)
		return err
	}

	if len(result.Artifacts) == 0 {
		printWarning("Nothing to render: the tessellation produced no country cells")
		return nil
	}
	prog.done(fmt.Sprintf("Rendered %d cells", result.Stats.Leaves))

	var htmlPath string
	for _, format := range popts.Formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(opts.output, input, format, len(popts.Formats))
		if err := writeArtifact(path, data); err != nil {
			return err
		}
		if path != "-" {
			printFile(path)
			if format == pipeline.FormatHTML {
				htmlPath = path
			}
		}
	}

	printSuccess("Rendered %s", input)
	printStats(result.Stats.Rows, result.Stats.Continents, result.Stats.Leaves)

	if opts.open && htmlPath != "" {
		abs, err := filepath.Abs(htmlPath)
		if err != nil {
			return err
		}
		url := "file://" + abs
		if err := preview.OpenBrowser(url); err != nil {
			logger.Warn("could not open browser", "url", url, "error", err)
		}
	} else if htmlPath != "" {
		printNextStep("Preview in browser", fmt.Sprintf("%s preview %s", appName, input))
	}

	return nil
}

// outputPath resolves the output path for one format. A single-format run
// with an explicit output uses it verbatim ('-' meaning stdout); otherwise
// the format extension is appended to the base path.
func outputPath(output, input, format string, formatCount int) string {
	if output == "-" {
		return "-"
	}
	if output != "" && formatCount == 1 {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.html, .svg, ...), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifact writes rendered bytes to path ('-' for stdout).
func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}
