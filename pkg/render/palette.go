package render

// Palette is the fixed qualitative palette assigned to continents, cycling
// when the continent count exceeds it. The ten colors match the G10 set the
// observed output used.
var Palette = []string{
	"#3366CC",
	"#DC3912",
	"#FF9900",
	"#109618",
	"#990099",
	"#0099C6",
	"#DD4477",
	"#66AA00",
	"#B82E2E",
	"#316395",
}

// ColorMap assigns a palette color to each parent name, in first-seen order.
func ColorMap(parents []string, palette []string) map[string]string {
	if len(palette) == 0 {
		palette = Palette
	}
	colors := make(map[string]string)
	next := 0
	for _, parent := range parents {
		if _, ok := colors[parent]; ok {
			continue
		}
		colors[parent] = palette[next%len(palette)]
		next++
	}
	return colors
}
