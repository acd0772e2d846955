package render

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"voronoimap/pkg/errors"
)

// Glyph sizing relative to the cell's font size, in canvas pixels.
// The ratios are fixed against the 1024px canvas mapped to [-1.1, 1.1].
const (
	// GlyphScale is the glyph edge in pixels per point of font size.
	GlyphScale = 3.0
	// GlyphGapScale is the vertical gap between glyph and labels, in
	// pixels per point of font size.
	GlyphGapScale = 0.5
)

// GlyphSize returns the flag glyph edge in canvas pixels for a label font
// size.
func GlyphSize(fontSize float64) int {
	return int(math.Round(fontSize * GlyphScale))
}

// GlyphGap returns the glyph-to-label gap in canvas pixels.
func GlyphGap(fontSize float64) float64 {
	return fontSize * GlyphGapScale
}

// LoadGlyph reads the flag image at path, scales it to a square glyph of
// the given pixel edge (preserving aspect ratio, Lanczos resampling), and
// returns it as a PNG data URI ready for embedding.
//
// A missing or undecodable image returns a RESOURCE_ERROR; callers log it
// and render the cell without its flag.
func LoadGlyph(path string, sizePx int) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResource, err, "flag image %s", path)
	}

	glyph := imaging.Fit(img, sizePx, sizePx, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, glyph); err != nil {
		return "", errors.Wrap(errors.ErrCodeResource, err, "encode flag glyph %s", path)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
