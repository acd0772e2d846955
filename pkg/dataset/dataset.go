// Package dataset loads the tabular input: one row per country with its
// continent, value, and optional flag-image path.
//
// The expected format is comma-separated with a header row. Header names are
// matched case-insensitively; Continent, Country, and Value are required,
// Flag is optional. Any malformed row fails the whole load with a
// PARSE_ERROR: the dataset is small and a silent partial load would skew
// every percentage downstream.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"voronoimap/pkg/errors"
)

// Row is a single country record.
type Row struct {
	Continent string  `json:"continent"`
	Country   string  `json:"country"`
	Value     float64 `json:"value"`
	Flag      string  `json:"flag,omitempty"` // path to a flag image, may be empty
}

// Column names recognized in the header (case-insensitive).
const (
	colContinent = "continent"
	colCountry   = "country"
	colValue     = "value"
	colFlag      = "flag"
)

// ReadCSV decodes comma-separated rows from r.
//
// The first record is the header. ReadCSV returns a PARSE_ERROR if a
// required column is missing, a value does not parse as a non-negative
// number, or the file contains no data rows.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeParse, "empty input: missing header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read header")
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colContinent, colCountry, colValue} {
		if _, ok := idx[required]; !ok {
			return nil, errors.New(errors.ErrCodeParse, "missing required column %q", required)
		}
	}
	flagIdx, hasFlag := idx[colFlag]

	var rows []Row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "line %d", line)
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(record[idx[colValue]]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "line %d: value %q", line, record[idx[colValue]])
		}
		if value < 0 {
			return nil, errors.New(errors.ErrCodeParse, "line %d: negative value %v", line, value)
		}

		row := Row{
			Continent: strings.TrimSpace(record[idx[colContinent]]),
			Country:   strings.TrimSpace(record[idx[colCountry]]),
			Value:     value,
		}
		if row.Continent == "" || row.Country == "" {
			return nil, errors.New(errors.ErrCodeParse, "line %d: empty continent or country", line)
		}
		if hasFlag && flagIdx < len(record) {
			row.Flag = strings.TrimSpace(record[flagIdx])
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "no data rows")
	}
	return rows, nil
}

// ImportCSV reads the file at path and returns the decoded rows.
// The error wraps the underlying cause with the file path for context.
func ImportCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Total returns the sum of all row values.
func Total(rows []Row) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.Value
	}
	return sum
}

// FlagFor returns the flag path for the named country, or "" if the country
// is unknown or carries no flag reference.
func FlagFor(rows []Row, country string) string {
	for _, r := range rows {
		if r.Country == country {
			return r.Flag
		}
	}
	return ""
}
