package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voronoimap/pkg/errors"
)

const sampleCSV = `Continent,Country,Value,Flag
Asia,China,17,flags/cn.png
Asia,India,9,
Europe,Germany,4,flags/de.png
`

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	want := Row{Continent: "Asia", Country: "China", Value: 17, Flag: "flags/cn.png"}
	if rows[0] != want {
		t.Errorf("rows[0] = %+v, want %+v", rows[0], want)
	}
	if rows[1].Flag != "" {
		t.Errorf("rows[1].Flag = %q, want empty", rows[1].Flag)
	}
}

func TestReadCSVHeaderCaseInsensitive(t *testing.T) {
	input := "CONTINENT,country,VaLuE\nAsia,China,17\n"
	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if rows[0].Country != "China" || rows[0].Value != 17 {
		t.Errorf("rows[0] = %+v", rows[0])
	}
}

func TestReadCSVNoFlagColumn(t *testing.T) {
	input := "Continent,Country,Value\nAsia,China,17\n"
	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if rows[0].Flag != "" {
		t.Errorf("Flag = %q, want empty", rows[0].Flag)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"missing value column", "Continent,Country\nAsia,China\n"},
		{"missing country column", "Continent,Value\nAsia,17\n"},
		{"unparsable value", "Continent,Country,Value\nAsia,China,lots\n"},
		{"negative value", "Continent,Country,Value\nAsia,China,-1\n"},
		{"empty country", "Continent,Country,Value\nAsia,,17\n"},
		{"header only", "Continent,Country,Value\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ReadCSV() error = nil, want PARSE_ERROR")
			}
			if !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("error code = %q, want PARSE_ERROR (%v)", errors.GetCode(err), err)
			}
		})
	}
}

func TestImportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gdp.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := ImportCSV(path)
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("len(rows) = %d, want 3", len(rows))
	}
}

func TestImportCSVMissingFile(t *testing.T) {
	_, err := ImportCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatal("ImportCSV() error = nil, want FILE_NOT_FOUND")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %q, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestTotalAndFlagFor(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	if got := Total(rows); got != 30 {
		t.Errorf("Total() = %v, want 30", got)
	}
	if got := FlagFor(rows, "Germany"); got != "flags/de.png" {
		t.Errorf("FlagFor(Germany) = %q, want flags/de.png", got)
	}
	if got := FlagFor(rows, "Atlantis"); got != "" {
		t.Errorf("FlagFor(Atlantis) = %q, want empty", got)
	}
}
