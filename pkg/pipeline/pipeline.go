// Package pipeline provides the core visualization pipeline for voronoimap.
//
// The pipeline consists of three stages:
//
//  1. Load: read the tabular dataset into rows
//  2. Tessellate: build the hierarchy and delegate the weighted-Voronoi
//     partition to the external geometry process
//  3. Render: compute the cell layout and emit output artifacts
//
// Each stage can be run independently or as part of the complete pipeline.
// Runs are stateless and independent: there is no caching and no persisted
// state beyond the output artifacts the caller writes.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Input:   "gdp_2024.csv",
//	    Formats: []string{"html"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html := result.Artifacts["html"]
package pipeline

import (
	"time"

	"voronoimap/pkg/dataset"
	"voronoimap/pkg/errors"
	"voronoimap/pkg/render"
	"voronoimap/pkg/tessellate"
)

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: html, svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for the visualization pipeline.
type Options struct {
	// Input is the path to the tabular dataset (CSV).
	Input string

	// Tessellation options.
	Command     string        // external command (default "node")
	NodeModules string        // node_modules directory for the driver script
	Sides       int           // clip boundary vertex count (default 360)
	Radius      float64       // clip boundary radius (default 1)
	Timeout     time.Duration // subprocess deadline (default 60s)

	// Render options.
	Title   string   // figure title (optional)
	Flags   bool     // render flag glyphs for rows that carry a flag path
	Formats []string // output formats (default ["html"])
	Palette []string // continent color override (default render.Palette)

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return errors.New(errors.ErrCodeInternal, "input is required")
	}
	if o.Command == "" {
		o.Command = tessellate.DefaultCommand
	}
	if o.Sides == 0 {
		o.Sides = tessellate.DefaultSides
	}
	if o.Radius == 0 {
		o.Radius = tessellate.DefaultRadius
	}
	if o.Timeout == 0 {
		o.Timeout = tessellate.DefaultTimeout
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Rows is the loaded dataset.
	Rows []dataset.Row

	// Polygons is the full tessellator output (all depths).
	Polygons []tessellate.Polygon

	// Layout is the computed country-cell layout. Empty when the
	// tessellator returned no leaf polygons (a warning, not an error).
	Layout render.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows           int
	Continents     int
	Leaves         int
	LoadTime       time.Duration
	TessellateTime time.Duration
	RenderTime     time.Duration
}
