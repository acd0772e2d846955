package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"voronoimap/pkg/errors"
)

// PNG and PDF export delegate to rsvg-convert, the same external-tool
// boundary as the tessellator: resolve the binary, run it synchronously
// over stdin/stdout, and surface failure as an INTEGRATION_ERROR.

// DefaultPNGScale doubles the 1024px canvas: a 2048x2048 raster keeps the
// 10-16pt cell labels crisp.
const DefaultPNGScale = 2.0

// ToPDF converts the rendered SVG to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, "pdf")
}

// ToPNG converts the rendered SVG to PNG at the given scale factor.
// A scale of zero or less falls back to DefaultPNGScale.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = DefaultPNGScale
	}
	return rsvgConvert(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIntegration, err,
			"%s export needs rsvg-convert (brew install librsvg / apt install librsvg2-bin)", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIntegration, err,
			"rsvg-convert %s: %s", format, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
