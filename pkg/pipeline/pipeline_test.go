package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"voronoimap/pkg/errors"
)

const sampleCSV = `Continent,Country,Value
Asia,China,17
Asia,India,9
Europe,Germany,4
`

const fixtureOutput = `[
  {"name": "Asia", "value": 26, "depth": 1, "parent": "root",
   "polygon": [[-1, -1], [1, -1], [1, 1], [-1, 1]]},
  {"name": "Europe", "value": 4, "depth": 1, "parent": "root",
   "polygon": [[-1, -1], [0, -1], [0, 0], [-1, 0]]},
  {"name": "China", "value": 17, "depth": 2, "parent": "Asia",
   "polygon": [[0, 0], [0.6, 0], [0.6, 0.6], [0, 0.6]]},
  {"name": "India", "value": 9, "depth": 2, "parent": "Asia",
   "polygon": [[0, 0], [-0.5, 0], [-0.5, -0.5], [0, -0.5]]},
  {"name": "Germany", "value": 4, "depth": 2, "parent": "Europe",
   "polygon": [[0, 0], [0.3, 0], [0.3, 0.3], [0, 0.3]]}
]`

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gdp.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fakeTessellator(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tessellator requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-node")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func succeedingTessellator(t *testing.T) string {
	return fakeTessellator(t, `cat > "$3" <<'EOF'
`+fixtureOutput+`
EOF`)
}

func TestExecute(t *testing.T) {
	runner := NewRunner(quietLogger())
	opts := Options{
		Input:   writeSample(t),
		Command: succeedingTessellator(t),
		Formats: []string{FormatHTML, FormatSVG, FormatJSON},
		Title:   "Global GDP",
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Stats.Rows != 3 {
		t.Errorf("rows = %d, want 3", result.Stats.Rows)
	}
	if result.Stats.Continents != 2 {
		t.Errorf("continents = %d, want 2", result.Stats.Continents)
	}
	if result.Stats.Leaves != 3 {
		t.Errorf("leaves = %d, want 3", result.Stats.Leaves)
	}

	for _, format := range []string{FormatHTML, FormatSVG, FormatJSON} {
		if len(result.Artifacts[format]) == 0 {
			t.Errorf("artifact %q is empty", format)
		}
	}
	if !strings.Contains(string(result.Artifacts[FormatSVG]), "Global GDP") {
		t.Error("SVG missing title")
	}

	// Reference percentages from the observed run.
	var sum float64
	for _, c := range result.Layout.Cells {
		sum += c.Percentage
	}
	if sum < 99.999 || sum > 100.001 {
		t.Errorf("percentages sum to %v, want 100", sum)
	}
}

func TestExecuteTessellatorFailure(t *testing.T) {
	runner := NewRunner(quietLogger())
	opts := Options{
		Input:   writeSample(t),
		Command: fakeTessellator(t, "exit 1"),
	}

	result, err := runner.Execute(context.Background(), opts)
	if err == nil {
		t.Fatal("Execute() error = nil, want INTEGRATION_ERROR")
	}
	if !errors.Is(err, errors.ErrCodeIntegration) {
		t.Errorf("error code = %q, want INTEGRATION_ERROR (%v)", errors.GetCode(err), err)
	}
	if result != nil {
		t.Error("failed run returned a result; no artifacts may be produced")
	}
}

func TestExecuteNoLeavesWarnsAndSkipsRender(t *testing.T) {
	// Tessellator output with only continent-level polygons.
	runner := NewRunner(quietLogger())
	opts := Options{
		Input: writeSample(t),
		Command: fakeTessellator(t, `cat > "$3" <<'EOF'
[{"name": "Asia", "value": 26, "depth": 1, "parent": "root",
  "polygon": [[-1, -1], [1, -1], [1, 1], [-1, 1]]}]
EOF`),
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil (warning only)", err)
	}
	if !result.Layout.Empty() {
		t.Error("layout should be empty")
	}
	if len(result.Artifacts) != 0 {
		t.Errorf("artifacts = %d, want none", len(result.Artifacts))
	}
}

func TestExecuteMissingInput(t *testing.T) {
	runner := NewRunner(quietLogger())
	opts := Options{
		Input:   filepath.Join(t.TempDir(), "nope.csv"),
		Command: succeedingTessellator(t),
	}

	_, err := runner.Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %q, want FILE_NOT_FOUND (%v)", errors.GetCode(err), err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Input: "data.csv"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("error = %v", err)
	}

	if opts.Command != "node" {
		t.Errorf("Command = %q, want node", opts.Command)
	}
	if opts.Sides != 360 {
		t.Errorf("Sides = %d, want 360", opts.Sides)
	}
	if opts.Radius != 1 {
		t.Errorf("Radius = %v, want 1", opts.Radius)
	}
	if opts.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", opts.Timeout)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatHTML {
		t.Errorf("Formats = %v, want [html]", opts.Formats)
	}

	// Idempotent.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error = %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	var empty Options
	if err := empty.ValidateAndSetDefaults(); err == nil {
		t.Error("missing input accepted")
	}

	bad := Options{Input: "data.csv", Formats: []string{"gif"}}
	err := bad.ValidateAndSetDefaults()
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error code = %q, want INVALID_FORMAT", errors.GetCode(err))
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid html", []string{"html"}, false},
		{"valid all", []string{"html", "svg", "png", "pdf", "json"}, false},
		{"invalid format", []string{"gif"}, true},
		{"mixed valid invalid", []string{"svg", "gif"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}
