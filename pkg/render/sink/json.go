package sink

import (
	"encoding/json"

	"voronoimap/pkg/render"
)

// cellJSON is the JSON export shape for one computed cell.
type cellJSON struct {
	Name       string    `json:"name"`
	Parent     string    `json:"parent"`
	Color      string    `json:"color"`
	Centroid   []float64 `json:"centroid"`
	Area       float64   `json:"area"`
	Percentage float64   `json:"percentage"`
	FontSize   float64   `json:"font_size"`
	Flag       string    `json:"flag,omitempty"`
}

type layoutJSON struct {
	Total   float64    `json:"total"`
	MinArea float64    `json:"min_area"`
	MaxArea float64    `json:"max_area"`
	Cells   []cellJSON `json:"cells"`
}

// RenderJSON exports the computed cell metrics (colors, centroids, areas,
// percentages, font sizes) for downstream tooling.
func RenderJSON(l render.Layout) ([]byte, error) {
	out := layoutJSON{
		Total:   l.Total,
		MinArea: l.MinArea,
		MaxArea: l.MaxArea,
		Cells:   make([]cellJSON, 0, len(l.Cells)),
	}
	for _, c := range l.Cells {
		out.Cells = append(out.Cells, cellJSON{
			Name:       c.Name,
			Parent:     c.Parent,
			Color:      c.Color,
			Centroid:   []float64{c.Centroid.X, c.Centroid.Y},
			Area:       c.Area,
			Percentage: c.Percentage,
			FontSize:   c.FontSize,
			Flag:       c.Flag,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
