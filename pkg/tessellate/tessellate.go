// Package tessellate invokes the external weighted-Voronoi tessellator and
// parses its output.
//
// The tessellation algorithm itself is an architectural boundary, not part
// of this codebase: a Node.js driver script using d3-voronoi-treemap
// computes the nested partition. This package owns everything around that
// boundary: the scoped temporary workspace, the driver script, the
// synchronous subprocess call, and the polygon-set decoding.
//
// A run is deterministic for identical input, so failures are never
// retried. The workspace is removed on success and failure alike.
package tessellate

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"voronoimap/pkg/errors"
	"voronoimap/pkg/geometry"
	"voronoimap/pkg/hierarchy"
)

// Node depths in the tessellator output.
const (
	DepthRoot      = 0
	DepthContinent = 1
	DepthCountry   = 2
)

// Defaults for the external invocation.
const (
	DefaultCommand = "node"
	DefaultSides   = 360
	DefaultRadius  = 1.0
	DefaultTimeout = 60 * time.Second
)

// Workspace file names, shared with the driver script.
const (
	dataFile   = "data.json"
	scriptFile = "generate.js"
	resultFile = "result.json"
)

// Polygon is one cell of the tessellator output: a node of the hierarchy
// with its computed boundary ring.
type Polygon struct {
	Name   string
	Value  float64
	Depth  int
	Parent string
	Ring   geometry.Ring
}

// Leaf reports whether the polygon is a country-level (innermost) cell.
func (p Polygon) Leaf() bool {
	return p.Depth == DepthCountry
}

// Tessellator invokes the external geometry process.
// The zero value is not usable; call New.
type Tessellator struct {
	// Command is the executable to invoke (default "node").
	Command string
	// NodeModules is the directory containing d3 and d3-voronoi-treemap.
	// Defaults to "node_modules" in the current working directory.
	NodeModules string
	// Sides is the vertex count of the regular polygon approximating the
	// circular clip boundary (default 360).
	Sides int
	// Radius of the clip boundary (default 1).
	Radius float64
	// Timeout bounds the subprocess call (default 60s). The observed
	// behavior had no bound; this is a hardening choice.
	Timeout time.Duration
	// Logger for debug output. Never nil after New.
	Logger *log.Logger
}

// New returns a Tessellator with defaults applied.
func New(logger *log.Logger) *Tessellator {
	if logger == nil {
		logger = log.Default()
	}
	nodeModules := "node_modules"
	if abs, err := filepath.Abs(nodeModules); err == nil {
		nodeModules = abs
	}
	return &Tessellator{
		Command:     DefaultCommand,
		NodeModules: nodeModules,
		Sides:       DefaultSides,
		Radius:      DefaultRadius,
		Timeout:     DefaultTimeout,
		Logger:      logger,
	}
}

// Run writes the hierarchy to a temporary workspace, invokes the external
// tessellator synchronously, and returns the parsed polygon set.
//
// Non-zero exit (or a missing executable, or the deadline firing) returns
// an INTEGRATION_ERROR; malformed or empty output returns a FORMAT_ERROR.
// The workspace is removed before Run returns, on every path.
func (t *Tessellator) Run(ctx context.Context, root hierarchy.Node) ([]Polygon, error) {
	if _, err := exec.LookPath(t.Command); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIntegration, err,
			"tessellator command %q not found (install Node.js plus the d3 and d3-voronoi-treemap packages)", t.Command)
	}

	dir := filepath.Join(os.TempDir(), "voronoimap-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create workspace")
	}
	defer os.RemoveAll(dir)

	dataPath := filepath.Join(dir, dataFile)
	scriptPath := filepath.Join(dir, scriptFile)
	resultPath := filepath.Join(dir, resultFile)

	data, err := hierarchy.Marshal(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize hierarchy")
	}
	if err := os.WriteFile(dataPath, data, 0o600); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write hierarchy")
	}

	script, err := t.driverScript()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(scriptPath, []byte(script), 0o600); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write driver script")
	}

	runCtx := ctx
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	t.Logger.Debug("invoking tessellator",
		"command", t.Command,
		"sides", t.Sides,
		"workspace", dir)

	cmd := exec.CommandContext(runCtx, t.Command, scriptPath, dataPath, resultPath)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeIntegration, runCtx.Err(),
				"tessellator timed out after %s", t.Timeout)
		}
		return nil, errors.Wrap(errors.ErrCodeIntegration, err,
			"tessellator failed: %s", strings.TrimSpace(stderr.String()))
	}
	t.Logger.Debug("tessellator finished", "duration", time.Since(start).Round(time.Millisecond))

	out, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "tessellator produced no output")
	}
	return ParsePolygons(out)
}

// polygonWire mirrors one element of the tessellator's JSON output.
type polygonWire struct {
	Name    string      `json:"name"`
	Value   float64     `json:"value"`
	Depth   int         `json:"depth"`
	Parent  string      `json:"parent"`
	Polygon [][]float64 `json:"polygon"`
}

// ParsePolygons decodes the tessellator output: a JSON array where each
// element has {name, value, depth, parent, polygon:[[x,y],...]}.
// Malformed or empty output returns a FORMAT_ERROR.
func ParsePolygons(data []byte) ([]Polygon, error) {
	var wire []polygonWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "decode tessellator output")
	}
	if len(wire) == 0 {
		return nil, errors.New(errors.ErrCodeFormat, "tessellator output is empty")
	}

	polygons := make([]Polygon, 0, len(wire))
	for _, w := range wire {
		if len(w.Polygon) < 3 {
			return nil, errors.New(errors.ErrCodeFormat,
				"polygon %q has %d vertices, need at least 3", w.Name, len(w.Polygon))
		}
		ring := make(geometry.Ring, 0, len(w.Polygon))
		for _, pt := range w.Polygon {
			if len(pt) < 2 {
				return nil, errors.New(errors.ErrCodeFormat,
					"polygon %q has a vertex with %d coordinates", w.Name, len(pt))
			}
			ring = append(ring, geometry.Point{X: pt[0], Y: pt[1]})
		}
		polygons = append(polygons, Polygon{
			Name:   w.Name,
			Value:  w.Value,
			Depth:  w.Depth,
			Parent: w.Parent,
			Ring:   ring,
		})
	}
	return polygons, nil
}

// MarshalPolygons encodes a polygon set back into the tessellator's wire
// format, for the standalone tessellate command.
func MarshalPolygons(polygons []Polygon) ([]byte, error) {
	wire := make([]polygonWire, 0, len(polygons))
	for _, p := range polygons {
		pts := make([][]float64, 0, len(p.Ring))
		for _, pt := range p.Ring {
			pts = append(pts, []float64{pt.X, pt.Y})
		}
		wire = append(wire, polygonWire{
			Name:    p.Name,
			Value:   p.Value,
			Depth:   p.Depth,
			Parent:  p.Parent,
			Polygon: pts,
		})
	}
	return json.MarshalIndent(wire, "", "  ")
}

// Leaves filters the polygon set down to country-level cells.
func Leaves(polygons []Polygon) []Polygon {
	var leaves []Polygon
	for _, p := range polygons {
		if p.Leaf() {
			leaves = append(leaves, p)
		}
	}
	return leaves
}
