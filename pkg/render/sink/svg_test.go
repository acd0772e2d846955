package sink

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"voronoimap/pkg/dataset"
	"voronoimap/pkg/errors"
	"voronoimap/pkg/geometry"
	"voronoimap/pkg/render"
	"voronoimap/pkg/tessellate"
)

func square(cx, cy, s float64) geometry.Ring {
	h := s / 2
	return geometry.Ring{
		{X: cx - h, Y: cy - h},
		{X: cx + h, Y: cy - h},
		{X: cx + h, Y: cy + h},
		{X: cx - h, Y: cy + h},
	}
}

func sampleLayout(rows []dataset.Row) render.Layout {
	polygons := []tessellate.Polygon{
		{Name: "China", Value: 17, Depth: tessellate.DepthCountry, Parent: "Asia", Ring: square(-0.3, 0.2, 0.8)},
		{Name: "India", Value: 9, Depth: tessellate.DepthCountry, Parent: "Asia", Ring: square(0.4, 0.3, 0.5)},
		{Name: "Germany", Value: 4, Depth: tessellate.DepthCountry, Parent: "Europe", Ring: square(0.2, -0.5, 0.3)},
	}
	return render.ComputeLayout(polygons, rows, nil)
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestRenderSVGCells(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(nil), WithLogger(quietLogger())))

	for _, want := range []string{
		`viewBox="0 0 1024 1024"`,
		`id="cell-china"`,
		`id="cell-india"`,
		`id="cell-germany"`,
		`fill="` + render.Palette[0] + `"`, // Asia
		`fill="` + render.Palette[1] + `"`, // Europe
		`stroke="white"`,
		`>China<`,
		`56.7%`,
		`<title>China`,
		".cell:hover",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestRenderSVGTitle(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(nil), WithTitle("Global GDP (2024)"), WithLogger(quietLogger())))
	if !strings.Contains(svg, ">Global GDP (2024)</text>") {
		t.Error("SVG missing title text")
	}

	untitled := string(RenderSVG(sampleLayout(nil), WithLogger(quietLogger())))
	if strings.Contains(untitled, `font-size="24"`) {
		t.Error("untitled SVG still renders a title element")
	}
}

func TestRenderSVGEscapesNames(t *testing.T) {
	polygons := []tessellate.Polygon{
		{Name: "Trinidad & Tobago", Value: 1, Depth: tessellate.DepthCountry, Parent: "Americas", Ring: square(0, 0, 0.5)},
		{Name: "Cuba", Value: 1, Depth: tessellate.DepthCountry, Parent: "Americas", Ring: square(0.5, 0, 0.3)},
	}
	svg := string(RenderSVG(render.ComputeLayout(polygons, nil, nil), WithLogger(quietLogger())))

	if !strings.Contains(svg, "Trinidad &amp; Tobago") {
		t.Error("ampersand not escaped in label")
	}
	if !strings.Contains(svg, `id="cell-trinidad---tobago"`) {
		t.Error("cell id not sanitized")
	}
}

func TestRenderSVGFlagGlyphs(t *testing.T) {
	rows := []dataset.Row{
		{Continent: "Asia", Country: "China", Value: 17, Flag: "flags/cn.png"},
	}
	loader := func(path string, sizePx int) (string, error) {
		if path != "flags/cn.png" {
			t.Errorf("loader got path %q", path)
		}
		if sizePx <= 0 {
			t.Errorf("loader got size %d", sizePx)
		}
		return "data:image/png;base64,AAAA", nil
	}

	svg := string(RenderSVG(sampleLayout(rows), WithFlags(), WithGlyphLoader(loader), WithLogger(quietLogger())))

	if !strings.Contains(svg, `xlink:href="data:image/png;base64,AAAA"`) {
		t.Error("SVG missing flag glyph image")
	}
	// Cells without a flag still render labels only.
	if strings.Count(svg, "<image") != 1 {
		t.Errorf("image count = %d, want 1", strings.Count(svg, "<image"))
	}
}

func TestRenderSVGMissingFlagDegrades(t *testing.T) {
	rows := []dataset.Row{
		{Continent: "Asia", Country: "China", Value: 17, Flag: "flags/missing.png"},
	}
	loader := func(path string, sizePx int) (string, error) {
		return "", errors.New(errors.ErrCodeResource, "flag image %s", path)
	}

	svg := string(RenderSVG(sampleLayout(rows), WithFlags(), WithGlyphLoader(loader), WithLogger(quietLogger())))

	if strings.Contains(svg, "<image") {
		t.Error("missing flag still produced an image element")
	}
	// The cell renders with its text labels regardless.
	if !strings.Contains(svg, ">China<") {
		t.Error("cell lost its name label")
	}
}

func TestRenderSVGFlagsDisabledIgnoresPaths(t *testing.T) {
	rows := []dataset.Row{
		{Continent: "Asia", Country: "China", Value: 17, Flag: "flags/cn.png"},
	}
	called := false
	loader := func(path string, sizePx int) (string, error) {
		called = true
		return "data:image/png;base64,AAAA", nil
	}

	svg := string(RenderSVG(sampleLayout(rows), WithGlyphLoader(loader), WithLogger(quietLogger())))
	if called {
		t.Error("glyph loader invoked without WithFlags")
	}
	if strings.Contains(svg, "<image") {
		t.Error("flags rendered without WithFlags")
	}
}

func TestRenderHTML(t *testing.T) {
	html := string(RenderHTML(sampleLayout(nil), WithTitle("GDP"), WithLogger(quietLogger())))

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>GDP</title>",
		"<svg xmlns=",
		"</html>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(sampleLayout(nil))
	if err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}

	var decoded struct {
		Total float64 `json:"total"`
		Cells []struct {
			Name       string    `json:"name"`
			Color      string    `json:"color"`
			Centroid   []float64 `json:"centroid"`
			Percentage float64   `json:"percentage"`
		} `json:"cells"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Total != 30 {
		t.Errorf("total = %v, want 30", decoded.Total)
	}
	if len(decoded.Cells) != 3 {
		t.Fatalf("cells = %d, want 3", len(decoded.Cells))
	}
	if len(decoded.Cells[0].Centroid) != 2 {
		t.Errorf("centroid shape = %v", decoded.Cells[0].Centroid)
	}
}

func TestRenderSVGCellIDsUnique(t *testing.T) {
	polygons := []tessellate.Polygon{
		{Name: "A&B", Value: 1, Depth: tessellate.DepthCountry, Parent: "X", Ring: square(-0.5, 0, 0.3)},
		{Name: "A B", Value: 1, Depth: tessellate.DepthCountry, Parent: "X", Ring: square(0, 0, 0.3)},
		{Name: "日本", Value: 1, Depth: tessellate.DepthCountry, Parent: "X", Ring: square(0.5, 0, 0.3)},
	}
	svg := string(RenderSVG(render.ComputeLayout(polygons, nil, nil), WithLogger(quietLogger())))

	for _, want := range []string{`id="cell-a-b"`, `id="cell-a-b-2"`, `id="cell-2"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, `id="cell-"`) {
		t.Error("empty cell id emitted")
	}
}

func TestCellIDs(t *testing.T) {
	cells := []render.Cell{
		{Name: "China"},
		{Name: "China"},
		{Name: "中国"},
	}
	got := cellIDs(cells)
	want := []string{"china", "china-2", "2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cellIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCellID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"China", "china"},
		{"United States", "united-states"},
		{"Côte d'Ivoire", "c-te-d-ivoire"},
		{"--X--", "x"},
	}
	for _, tt := range tests {
		if got := cellID(tt.in); got != tt.want {
			t.Errorf("cellID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
