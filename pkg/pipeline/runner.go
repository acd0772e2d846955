package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"voronoimap/pkg/dataset"
	"voronoimap/pkg/hierarchy"
	"voronoimap/pkg/render"
	"voronoimap/pkg/render/sink"
	"voronoimap/pkg/tessellate"
)

// Runner executes the load → tessellate → render pipeline.
//
// The Runner holds only a logger; it stores no pipeline results, and every
// Execute call is an independent, stateless run.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete load → tessellate → render pipeline.
//
// An empty leaf set after tessellation is logged as a warning and yields a
// Result with no artifacts; every other stage failure aborts the run.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	rows, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Rows = rows
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Rows = len(rows)

	root := hierarchy.Build(rows)
	result.Stats.Continents = len(root.Children)

	r.Logger.Info("loaded dataset",
		"rows", len(rows),
		"continents", len(root.Children),
		"total", dataset.Total(rows),
		"duration", result.Stats.LoadTime)

	// Stage 2: Tessellate
	tessStart := time.Now()
	polygons, err := r.Tessellate(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	result.Polygons = polygons
	result.Stats.TessellateTime = time.Since(tessStart)

	r.Logger.Info("tessellated hierarchy",
		"polygons", len(polygons),
		"duration", result.Stats.TessellateTime)

	// Stage 3: Render
	renderStart := time.Now()
	layout := render.ComputeLayout(polygons, rows, opts.Palette)
	result.Layout = layout
	result.Stats.Leaves = len(layout.Cells)

	if layout.Empty() {
		r.Logger.Warn("no country-level polygons to render; skipping output")
		return result, nil
	}

	artifacts, err := r.Render(layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"cells", len(layout.Cells),
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the dataset named by opts.Input.
func (r *Runner) Load(opts Options) ([]dataset.Row, error) {
	return dataset.ImportCSV(opts.Input)
}

// Tessellate invokes the external geometry process for the hierarchy.
func (r *Runner) Tessellate(ctx context.Context, root hierarchy.Node, opts Options) ([]tessellate.Polygon, error) {
	tess := tessellate.New(r.Logger)
	if opts.Command != "" {
		tess.Command = opts.Command
	}
	if opts.NodeModules != "" {
		tess.NodeModules = opts.NodeModules
	}
	if opts.Sides != 0 {
		tess.Sides = opts.Sides
	}
	if opts.Radius != 0 {
		tess.Radius = opts.Radius
	}
	tess.Timeout = opts.Timeout
	return tess.Run(ctx, root)
}

// Render produces the requested artifact formats from a computed layout.
// SVG is rendered once and reused for the raster/vector conversions.
func (r *Runner) Render(layout render.Layout, opts Options) (map[string][]byte, error) {
	sinkOpts := []sink.SVGOption{
		sink.WithTitle(opts.Title),
		sink.WithLogger(r.Logger),
	}
	if opts.Flags {
		sinkOpts = append(sinkOpts, sink.WithFlags())
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var svg []byte
	renderSVG := func() []byte {
		if svg == nil {
			svg = sink.RenderSVG(layout, sinkOpts...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatHTML:
			artifacts[format] = sink.RenderHTML(layout, sinkOpts...)
		case FormatSVG:
			artifacts[format] = renderSVG()
		case FormatJSON:
			data, err := sink.RenderJSON(layout)
			if err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			artifacts[format] = data
		case FormatPNG:
			data, err := render.ToPNG(renderSVG(), render.DefaultPNGScale)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatPDF:
			data, err := render.ToPDF(renderSVG())
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		default:
			if err := ValidateFormat(format); err != nil {
				return nil, err
			}
		}
	}
	return artifacts, nil
}
