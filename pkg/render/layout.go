// Package render turns the tessellator's leaf polygons into a renderable
// cell layout and emits it through the sinks in render/sink.
//
// Everything here is presentation heuristics from the observed output:
// palette assignment in first-seen parent order, centroid/area via the
// shoelace formulas, a radial correction pulling boundary labels inward,
// and font sizing interpolated across the observed area range. The one
// genuine algorithmic step (centroid/area) lives in pkg/geometry.
package render

import (
	"voronoimap/pkg/dataset"
	"voronoimap/pkg/geometry"
	"voronoimap/pkg/tessellate"
)

// Canvas geometry: a fixed square canvas mapped onto the axis range that
// the unit-disk tessellation (plus margin) occupies.
const (
	// CanvasSize is the output canvas edge in pixels (and data units of
	// the document viewport).
	CanvasSize = 1024.0
	// AxisRange is the half-extent of the data axes: data coordinates run
	// [-AxisRange, AxisRange] in both dimensions.
	AxisRange = 1.1
)

// Radial correction constants. Centroids beyond the threshold are scaled
// toward the origin so labels of boundary-clipped cells stay legible.
const (
	// RadialThreshold is the centroid distance beyond which correction
	// applies.
	RadialThreshold = 0.95
	// RadialOnset anchors the correction ramp: scale = 1 - (d - onset) * slope.
	RadialOnset = 0.9
	// RadialSlope is the ramp steepness.
	RadialSlope = 1.5
	// RadialFloor bounds the correction: scale never drops below it.
	RadialFloor = 0.85
)

// Font sizing: linear interpolation across the observed area range.
const (
	FontMin = 10.0
	FontMax = 16.0
)

// Cell is one renderable country cell with its derived presentation values.
type Cell struct {
	Name       string
	Parent     string
	Color      string
	Ring       geometry.Ring
	Centroid   geometry.Point // label anchor, radially corrected
	Area       float64
	Percentage float64
	FontSize   float64
	ShowLabel  bool
	Flag       string // flag image path, empty when absent
}

// Layout is the computed cell set ready for a sink.
type Layout struct {
	Cells   []Cell
	Total   float64 // sum of leaf values
	MinArea float64
	MaxArea float64
}

// Empty reports whether there is nothing to render.
func (l Layout) Empty() bool {
	return len(l.Cells) == 0
}

// CorrectCentroid applies the radial correction: identity for distances at
// or below the threshold, otherwise an inward scale bounded by RadialFloor.
func CorrectCentroid(p geometry.Point) geometry.Point {
	d := p.Distance()
	if d <= RadialThreshold {
		return p
	}
	scale := 1 - (d-RadialOnset)*RadialSlope
	if scale < RadialFloor {
		scale = RadialFloor
	}
	return p.Scale(scale)
}

// fontSize interpolates the label size across [minArea, maxArea], clamped
// to [FontMin, FontMax]. A degenerate range (all areas equal) yields
// FontMin rather than dividing by zero.
func fontSize(area, minArea, maxArea float64) float64 {
	if maxArea == minArea {
		return FontMin
	}
	size := FontMin + (FontMax-FontMin)*(area-minArea)/(maxArea-minArea)
	if size < FontMin {
		return FontMin
	}
	if size > FontMax {
		return FontMax
	}
	return size
}

// ComputeLayout filters the polygon set to country-level cells and derives
// the presentation values for each. Rows supply the flag lookup and may be
// nil; a nil palette uses the default. An input with no leaf polygons
// yields an empty layout; the caller decides whether that warrants a
// warning (it is not fatal).
func ComputeLayout(polygons []tessellate.Polygon, rows []dataset.Row, palette []string) Layout {
	leaves := tessellate.Leaves(polygons)
	if len(leaves) == 0 {
		return Layout{}
	}

	var total float64
	parents := make([]string, 0, len(leaves))
	for _, p := range leaves {
		total += p.Value
		parents = append(parents, p.Parent)
	}
	colors := ColorMap(parents, palette)

	// First pass: areas, for the font interpolation range.
	areas := make([]float64, len(leaves))
	minArea, maxArea := 0.0, 0.0
	for i, p := range leaves {
		areas[i] = p.Ring.Area()
		if i == 0 || areas[i] < minArea {
			minArea = areas[i]
		}
		if i == 0 || areas[i] > maxArea {
			maxArea = areas[i]
		}
	}

	cells := make([]Cell, 0, len(leaves))
	for i, p := range leaves {
		centroid := CorrectCentroid(p.Ring.Centroid())
		cell := Cell{
			Name:       p.Name,
			Parent:     p.Parent,
			Color:      colors[p.Parent],
			Ring:       p.Ring,
			Centroid:   centroid,
			Area:       areas[i],
			Percentage: p.Value / total * 100,
			FontSize:   fontSize(areas[i], minArea, maxArea),
			// Kept as observed: every filtered cell passes this guard in
			// practice, since minArea is the minimum over the same set and
			// the corrected distance never exceeds 1 on the unit disk.
			ShowLabel: areas[i] >= minArea && centroid.Distance() <= 1,
			Flag:      dataset.FlagFor(rows, p.Name),
		}
		cells = append(cells, cell)
	}

	return Layout{
		Cells:   cells,
		Total:   total,
		MinArea: minArea,
		MaxArea: maxArea,
	}
}
