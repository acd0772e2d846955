// Package sink emits the computed cell layout as output artifacts: an
// interactive SVG, a self-contained HTML document wrapping it, and a JSON
// export of the cell metrics.
package sink

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"voronoimap/pkg/render"
)

const cellInteractionCSS = `
    .cell { transition: stroke-width 0.2s ease; }
    .cell:hover { stroke-width: 9; }
    .cell-label, .cell-glyph { pointer-events: none; }`

// Hovered cells are re-appended so their thickened stroke draws above
// neighboring cells; labels live in a later group and stay on top.
const cellInteractionJS = `
    document.querySelectorAll('.cell').forEach(el => {
      el.addEventListener('mouseenter', () => el.parentNode.appendChild(el));
    });`

// GlyphLoader resolves a flag path into a data URI at the given pixel size.
// Swappable in tests; the default is render.LoadGlyph.
type GlyphLoader func(path string, sizePx int) (string, error)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title  string
	flags  bool
	loader GlyphLoader
	logger *log.Logger
}

// WithTitle sets the centered title above the figure.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithFlags enables flag glyphs for cells that carry a flag path.
func WithFlags() SVGOption { return func(r *svgRenderer) { r.flags = true } }

// WithGlyphLoader overrides the flag image loader.
func WithGlyphLoader(l GlyphLoader) SVGOption { return func(r *svgRenderer) { r.loader = l } }

// WithLogger sets the logger used for per-cell resource warnings.
func WithLogger(l *log.Logger) SVGOption { return func(r *svgRenderer) { r.logger = l } }

// RenderSVG renders the layout as a self-contained interactive SVG on the
// fixed 1024x1024 canvas. Missing flag images are logged and skipped per
// cell; they never fail the render.
func RenderSVG(l render.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{loader: render.LoadGlyph, logger: log.Default()}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n",
		render.CanvasSize, render.CanvasSize, render.CanvasSize, render.CanvasSize)
	fmt.Fprintf(&buf, `  <rect width="%.0f" height="%.0f" fill="white"/>`+"\n",
		render.CanvasSize, render.CanvasSize)

	ids := cellIDs(l.Cells)
	buf.WriteString(`  <g id="cells">` + "\n")
	for i, c := range l.Cells {
		renderCell(&buf, c, ids[i])
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g id="labels">` + "\n")
	for _, c := range l.Cells {
		if !c.ShowLabel {
			continue
		}
		r.renderLabels(&buf, c)
	}
	buf.WriteString("  </g>\n")

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.0f" y="34" text-anchor="middle" font-family="Arial, sans-serif" font-size="24" font-weight="bold" fill="#222">%s</text>`+"\n",
			render.CanvasSize/2, escape(r.title))
	}

	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cellInteractionCSS)
	fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", cellInteractionJS)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// dataToPx converts a data-unit length into canvas pixels.
const dataToPx = render.CanvasSize / (2 * render.AxisRange)

// px maps a data x coordinate onto the canvas.
func px(x float64) float64 {
	return (x + render.AxisRange) * dataToPx
}

// py maps a data y coordinate onto the canvas (SVG y grows downward).
func py(y float64) float64 {
	return (render.AxisRange - y) * dataToPx
}

// percentOffsetPx is the vertical gap between the name and percentage
// labels: 0.03 data units, as observed.
const percentOffsetPx = 0.03 * dataToPx

func renderCell(buf *bytes.Buffer, c render.Cell, id string) {
	var d strings.Builder
	for i, p := range c.Ring {
		if i == 0 {
			fmt.Fprintf(&d, "M%.2f %.2f", px(p.X), py(p.Y))
		} else {
			fmt.Fprintf(&d, " L%.2f %.2f", px(p.X), py(p.Y))
		}
	}
	d.WriteString(" Z")

	fmt.Fprintf(buf, `    <path class="cell" id="cell-%s" d="%s" fill="%s" stroke="white" stroke-width="6" stroke-linejoin="round">`,
		id, d.String(), c.Color)
	fmt.Fprintf(buf, `<title>%s
%.1f%%</title></path>`+"\n", escape(c.Name), c.Percentage)
}

func (r *svgRenderer) renderLabels(buf *bytes.Buffer, c render.Cell) {
	cx := px(c.Centroid.X)
	cy := py(c.Centroid.Y)

	glyph := ""
	if r.flags && c.Flag != "" {
		uri, err := r.loader(c.Flag, render.GlyphSize(c.FontSize))
		if err != nil {
			r.logger.Warn("skipping flag glyph", "country", c.Name, "err", err)
		} else {
			glyph = uri
		}
	}

	nameY := cy
	if glyph != "" {
		size := float64(render.GlyphSize(c.FontSize))
		gap := render.GlyphGap(c.FontSize)
		fmt.Fprintf(buf, `    <image class="cell-glyph" x="%.2f" y="%.2f" width="%.0f" height="%.0f" xlink:href="%s"/>`+"\n",
			cx-size/2, cy-size-gap, size, size, glyph)
		nameY = cy + c.FontSize*0.9
	}

	fmt.Fprintf(buf, `    <text class="cell-label" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="Verdana, sans-serif" font-size="%.1f" font-weight="bold" fill="white">%s</text>`+"\n",
		cx, nameY, c.FontSize*1.1, escape(c.Name))
	fmt.Fprintf(buf, `    <text class="cell-label" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="'Courier New', monospace" font-size="%.1f" font-weight="bold" fill="white">%.1f%%</text>`+"\n",
		cx, nameY+percentOffsetPx, c.FontSize, c.Percentage)
}

// cellIDs assigns a document-unique element id to every cell. Sanitizing
// can collapse distinct names to the same id ("A&B" and "A B" both reduce
// to "a-b") or empty it entirely for non-ASCII names, so empty ids fall
// back to the cell position and collisions get a numeric suffix.
func cellIDs(cells []render.Cell) []string {
	ids := make([]string, len(cells))
	seen := make(map[string]bool, len(cells))
	for i, c := range cells {
		base := cellID(c.Name)
		if base == "" {
			base = strconv.Itoa(i)
		}
		id := base
		for n := 2; seen[id]; n++ {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		seen[id] = true
		ids[i] = id
	}
	return ids
}

// cellID derives a stable element id from the cell name.
func cellID(name string) string {
	id := strings.ToLower(name)
	id = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, id)
	return strings.Trim(id, "-")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// escape replaces the XML special characters in text content.
func escape(s string) string {
	return xmlEscaper.Replace(s)
}
