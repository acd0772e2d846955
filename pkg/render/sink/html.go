package sink

import (
	"bytes"
	"fmt"

	"voronoimap/pkg/render"
)

// RenderHTML wraps the interactive SVG in a self-contained HTML document.
// This is the default output artifact: a single file that opens in any
// browser with no external assets.
func RenderHTML(l render.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	title := r.title
	if title == "" {
		title = "Voronoi Treemap"
	}

	svg := RenderSVG(l, opts...)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	buf.WriteString("<meta charset=\"utf-8\"/>\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", escape(title))
	fmt.Fprintf(&buf, `<style>
  body { margin: 0; background: white; display: flex; justify-content: center; }
  svg { max-width: %.0fpx; width: 100%%; height: auto; }
</style>
`, render.CanvasSize)
	buf.WriteString("</head>\n<body>\n")
	buf.Write(svg)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}
