package tessellate

import (
	"encoding/json"
	"strings"

	"voronoimap/pkg/errors"
	"voronoimap/pkg/geometry"
)

// driverTemplate is the Node.js driver handed to the external process.
// Paths arrive via argv so the script itself is input-independent:
// argv[2] = hierarchy JSON, argv[3] = result path. The node_modules
// location and the clip ring are baked in at generation time.
const driverTemplate = `const fs = require("fs");
const path = require("path");

// Resolve modules using an absolute path to node_modules.
const d3 = Object.assign(
  {},
  require(path.join(@MODULES@, "d3")),
  require(path.join(@MODULES@, "d3-voronoi-treemap"))
);

const dataPath = process.argv[2];
const outPath = process.argv[3];

// Regular polygon approximating the circular clip boundary.
const clip = @CLIP@;

const root = d3.hierarchy(JSON.parse(fs.readFileSync(dataPath))).sum(d => d.value);
const treemap = d3.voronoiTreemap().clip(clip);
treemap(root);

const out = [];
root.each(d => {
  if (d.polygon && d.data.name !== "root") {
    out.push({
      name: d.data.name,
      value: d.value,
      depth: d.depth,
      parent: d.parent.data.name,
      polygon: d.polygon.map(p => [p[0], p[1]])
    });
  }
});
fs.writeFileSync(outPath, JSON.stringify(out, null, 2));
`

// driverScript renders the driver with this tessellator's node_modules path
// and clip boundary.
func (t *Tessellator) driverScript() (string, error) {
	ring := geometry.RegularPolygon(t.Radius, t.Sides)
	pts := make([][]float64, 0, len(ring))
	for _, p := range ring {
		pts = append(pts, []float64{p.X, p.Y})
	}
	clip, err := json.Marshal(pts)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode clip boundary")
	}
	modules, err := json.Marshal(t.NodeModules)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode module path")
	}

	script := strings.ReplaceAll(driverTemplate, "@MODULES@", string(modules))
	script = strings.ReplaceAll(script, "@CLIP@", string(clip))
	return script, nil
}
