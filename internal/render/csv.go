// Package render generates the status page from the versions CSV.
//
// The CSV has one header row followed by one row per package. The first
// three columns are metadata (name, expected version, package type); every
// following column holds the versions found in each apt repository, joined
// with '|' in repository order.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// MetaColumns is the number of leading metadata columns in the CSV.
const MetaColumns = 3

// Missing marks a repository that has no version of a package.
const Missing = "None"

// Table is a parsed versions CSV.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV reads a versions table from r.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: no header row")
	}
	header := records[0]
	if len(header) < MetaColumns {
		return nil, fmt.Errorf("read csv: header has %d columns, need at least %d", len(header), MetaColumns)
	}

	t := &Table{Header: header}
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("read csv: row %d has %d columns, header has %d", i+2, len(rec), len(header))
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// VersionColumns returns the number of repository version columns.
func (t *Table) VersionColumns() int {
	return len(t.Header) - MetaColumns
}

// CellVersions splits a version cell into its per-repository versions.
func CellVersions(cell string) []string {
	return strings.Split(cell, "|")
}

var versionSuffix = regexp.MustCompile(`[0-9.-]+[0-9]`)

// StripVersionSuffix drops the distribution and build stamp from a Debian
// version, e.g. "1.9.9-0quantal-20121115" becomes "1.9.9-0". Values without
// a leading version number are returned unchanged.
func StripVersionSuffix(version string) string {
	if m := versionSuffix.FindString(version); m != "" {
		return m
	}
	return version
}
